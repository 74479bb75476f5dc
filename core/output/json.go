package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes indented JSON
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter { return &JSONFormatter{} }

func (*JSONFormatter) Format() Format { return FormatJSON }

// Render implements Formatter
func (*JSONFormatter) Render(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

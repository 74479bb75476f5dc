// Package output renders engine results for terminals and machines.
package output

import (
	"fmt"
	"io"
	"sort"

	"observatory/core/aggregate"
	"observatory/core/engine"
	"observatory/core/filter"
	"observatory/core/linkage"
	"observatory/core/records"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes every section present in doc
	Render(w io.Writer, doc *Document) error
}

// Document is one command's result. Nil sections are skipped.
type Document struct {
	// Filter is the filter the result was computed under
	Filter filter.State `json:"filter"`

	// Summaries are region rollups, usually in registry order
	Summaries []aggregate.Summary `json:"summaries,omitempty"`

	// Value is the single queried layer value
	Value *ValueResult `json:"value,omitempty"`

	// Linkages are FDI-to-policy pairs grouped by state
	Linkages []linkage.StateGroup `json:"linkages,omitempty"`

	// Records are filtered source records of one kind
	Records *RecordSet `json:"records,omitempty"`

	// Distribution is the ranking that accompanies the layer
	Distribution *engine.Distribution `json:"distribution,omitempty"`

	// Breakdown is the share chart of the layer
	Breakdown *engine.Breakdown `json:"breakdown,omitempty"`

	// Stats are the layer's headline figures
	Stats *engine.Stats `json:"stats,omitempty"`
}

// ValueResult is a region value query
type ValueResult struct {
	Region string       `json:"region"`
	Layer  filter.Layer `json:"layer"`
	Value  engine.Value `json:"value"`
}

// RecordSet is a filtered collection
type RecordSet struct {
	Kind  records.Kind     `json:"kind"`
	Items []records.Record `json:"items"`
}

// Registry maps formats to formatters
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry returns a registry with the CLI and JSON formatters
func NewRegistry() *Registry {
	r := &Registry{formatters: map[Format]Formatter{}}
	r.Register(NewCLIFormatter())
	r.Register(NewJSONFormatter())
	return r
}

// Register adds or replaces a formatter
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for format
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q", format)
	}
	return f, nil
}

// Formats lists registered formats, sorted
func (r *Registry) Formats() []Format {
	out := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

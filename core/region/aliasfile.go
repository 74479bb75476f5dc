package region

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// aliasDocument is the schema of an alias override file:
//
//	alias "Edo. de México" {
//	  region = "Estado de México"
//	}
type aliasDocument struct {
	Aliases []aliasBlock `hcl:"alias,block"`
}

type aliasBlock struct {
	Name   string `hcl:"name,label"`
	Region string `hcl:"region"`
}

// ParseAliases decodes HCL alias overrides. Targets are validated by the
// Normalizer they are merged into, not here.
func ParseAliases(src []byte, filename string) (map[string]ID, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse %s: %w", filename, diags)
	}

	var doc aliasDocument
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("decode %s: %w", filename, diags)
	}

	out := make(map[string]ID, len(doc.Aliases))
	for _, a := range doc.Aliases {
		if _, dup := out[a.Name]; dup {
			return nil, fmt.Errorf("%s: alias %q declared twice", filename, a.Name)
		}
		out[a.Name] = ID(a.Region)
	}
	return out, nil
}

// LoadAliasFile reads and decodes an alias override file from disk
func LoadAliasFile(path string) (map[string]ID, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseAliases(src, path)
}

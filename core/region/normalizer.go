package region

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule identifies which normalization step produced a match
type Rule int

const (
	// RuleNone means the name is unresolved
	RuleNone Rule = iota
	// RuleAlias is an exact alias table hit
	RuleAlias
	// RuleExact is an exact canonical name
	RuleExact
	// RuleFolded is an accent- and case-insensitive canonical name
	RuleFolded
	// RuleContains is the substring fallback
	RuleContains
)

// String returns the rule name
func (r Rule) String() string {
	switch r {
	case RuleAlias:
		return "alias"
	case RuleExact:
		return "exact"
	case RuleFolded:
		return "folded"
	case RuleContains:
		return "contains"
	default:
		return "none"
	}
}

// Match is the outcome of resolving one raw name
type Match struct {
	ID   ID
	Rule Rule
}

// Resolved reports whether the name mapped to a canonical region
func (m Match) Resolved() bool {
	return m.Rule != RuleNone
}

// Normalizer maps arbitrary region spellings to canonical IDs.
// It is read-only after construction and safe for concurrent use.
type Normalizer struct {
	registry *Registry
	aliases  map[string]ID
	folded   []foldedName
}

type foldedName struct {
	id     ID
	folded string
}

// NewNormalizer builds a normalizer over registry with the given alias table.
// Every alias must target a canonical region.
func NewNormalizer(registry *Registry, aliases map[string]ID) (*Normalizer, error) {
	n := &Normalizer{
		registry: registry,
		aliases:  make(map[string]ID, len(aliases)),
		folded:   make([]foldedName, 0, registry.Len()),
	}
	for raw, id := range aliases {
		if !registry.Contains(id) {
			return nil, fmt.Errorf("alias %q targets unknown region %q", raw, id)
		}
		n.aliases[raw] = id
	}
	for _, id := range registry.IDs() {
		n.folded = append(n.folded, foldedName{id: id, folded: Fold(string(id))})
	}
	return n, nil
}

// NewMexicoNormalizer is the normalizer over MexicoStates with MexicoAliases
func NewMexicoNormalizer() *Normalizer {
	n, err := NewNormalizer(MexicoStates(), MexicoAliases())
	if err != nil {
		panic(err)
	}
	return n
}

// Registry returns the registry the normalizer resolves against
func (n *Normalizer) Registry() *Registry {
	return n.registry
}

// Aliases returns a copy of the alias table in effect
func (n *Normalizer) Aliases() map[string]ID {
	out := make(map[string]ID, len(n.aliases))
	for k, v := range n.aliases {
		out[k] = v
	}
	return out
}

// WithAliases returns a normalizer whose alias table is extended (and overridden)
// by extra.
func (n *Normalizer) WithAliases(extra map[string]ID) (*Normalizer, error) {
	merged := n.Aliases()
	for k, v := range extra {
		merged[k] = v
	}
	return NewNormalizer(n.registry, merged)
}

// Normalize returns the canonical region for raw, or false when unresolved.
func (n *Normalizer) Normalize(raw string) (ID, bool) {
	m := n.Resolve(raw)
	return m.ID, m.Resolved()
}

// Resolve applies the rules in order; the first match wins.
//
// The substring fallback returns the first region in registry order whose name
// contains raw or is contained by it, so overlapping names ("Baja California" vs
// "Baja California Sur") resolve by order rather than by best fit.
func (n *Normalizer) Resolve(raw string) Match {
	if raw == "" {
		return Match{}
	}
	if id, ok := n.aliases[raw]; ok {
		return Match{ID: id, Rule: RuleAlias}
	}
	if n.registry.Contains(ID(raw)) {
		return Match{ID: ID(raw), Rule: RuleExact}
	}

	f := Fold(raw)
	for _, c := range n.folded {
		if c.folded == f {
			return Match{ID: c.id, Rule: RuleFolded}
		}
	}

	for _, c := range n.folded {
		name := string(c.id)
		if strings.Contains(raw, name) || strings.Contains(name, raw) {
			return Match{ID: c.id, Rule: RuleContains}
		}
	}
	return Match{}
}

// Fold strips combining marks and lower-cases s.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

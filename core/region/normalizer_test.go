package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRules(t *testing.T) {
	n := NewMexicoNormalizer()

	tests := []struct {
		name string
		raw  string
		want ID
		rule Rule
	}{
		{"empty is unresolved", "", "", RuleNone},
		{"alias for historical name", "Distrito Federal", "Ciudad de México", RuleAlias},
		{"alias wins over exact containment", "México", "Estado de México", RuleAlias},
		{"exact canonical", "Jalisco", "Jalisco", RuleExact},
		{"accent-free spelling", "Nuevo Leon", "Nuevo León", RuleFolded},
		{"upper case without accents", "YUCATAN", "Yucatán", RuleFolded},
		{"free text containing a state", "Planta en Sonora (norte)", "Sonora", RuleContains},
		{"first registry entry wins overlap", "California", "Baja California", RuleContains},
		{"unknown name", "Texas", "", RuleNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := n.Resolve(tt.raw)
			assert.Equal(t, tt.rule, m.Rule)
			assert.Equal(t, tt.want, m.ID)
			id, ok := n.Normalize(tt.raw)
			assert.Equal(t, tt.rule != RuleNone, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestNormalizeIdempotentForCanonicalNames(t *testing.T) {
	n := NewMexicoNormalizer()
	for _, id := range n.Registry().IDs() {
		first, ok := n.Normalize(string(id))
		require.True(t, ok, "canonical name %s must resolve", id)
		second, ok := n.Normalize(string(first))
		require.True(t, ok)
		assert.Equal(t, first, second)
		assert.Equal(t, id, first)
	}
}

func TestEveryAliasResolvesToItsTarget(t *testing.T) {
	n := NewMexicoNormalizer()
	for raw, target := range MexicoAliases() {
		m := n.Resolve(raw)
		assert.Equal(t, RuleAlias, m.Rule, raw)
		assert.Equal(t, target, m.ID, raw)
	}
}

func TestNewNormalizerRejectsDanglingAlias(t *testing.T) {
	_, err := NewNormalizer(MexicoStates(), map[string]ID{"Tejas": "Texas"})
	require.Error(t, err)
}

func TestWithAliasesOverrides(t *testing.T) {
	n, err := NewMexicoNormalizer().WithAliases(map[string]ID{
		"Edo. Mex.": "Estado de México",
		"Mexico":    "Ciudad de México",
	})
	require.NoError(t, err)

	id, ok := n.Normalize("Edo. Mex.")
	require.True(t, ok)
	assert.Equal(t, ID("Estado de México"), id)

	id, _ = n.Normalize("Mexico")
	assert.Equal(t, ID("Ciudad de México"), id)

	// the base table is untouched
	id, _ = NewMexicoNormalizer().Normalize("Mexico")
	assert.Equal(t, ID("Estado de México"), id)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "michoacan", Fold("Michoacán"))
	assert.Equal(t, "san luis potosi", Fold("San Luis Potosí"))
	assert.Equal(t, "ciudad de mexico", Fold("CIUDAD DE MÉXICO"))
}

func TestRegistry(t *testing.T) {
	r := MexicoStates()
	assert.Equal(t, 32, r.Len())
	assert.Equal(t, ID("Aguascalientes"), r.IDs()[0])

	jal, ok := r.Get("Jalisco")
	require.True(t, ok)
	assert.InDelta(t, -103.35, jal.Centroid.Lon(), 1e-9)
	assert.InDelta(t, 20.66, jal.Centroid.Lat(), 1e-9)

	_, err := NewRegistry([]Region{{ID: "A"}, {ID: "A"}})
	assert.Error(t, err)
}

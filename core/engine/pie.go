package engine

import (
	"sort"

	"observatory/core/filter"
	"observatory/core/records"
)

// commodityLimit caps the mines breakdown
const commodityLimit = 8

// poleCategories is the fixed display order of development-pole categories.
// Categories outside it are not charted.
var poleCategories = []struct{ key, label string }{
	{"En marcha", "Concessions Awarded"},
	{"En proceso", "In Procurement"},
	{"Nuevos polos", "Approved"},
	{"En evaluación", "Under Evaluation"},
}

// Slice is one share of a breakdown. Key is the source value when it differs
// from the label.
type Slice struct {
	Key   string `json:"key,omitempty"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Breakdown is the share chart that accompanies a layer
type Breakdown struct {
	Layer  filter.Layer `json:"layer"`
	Title  string       `json:"title"`
	Slices []Slice      `json:"slices"`
}

// tally counts keys in first-seen order
type tally struct {
	keys   []string
	counts map[string]int
}

func newTally() *tally { return &tally{counts: map[string]int{}} }

func (t *tally) inc(key string) {
	if _, ok := t.counts[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.counts[key]++
}

func (t *tally) slices(keys []string) []Slice {
	out := make([]Slice, len(keys))
	for i, k := range keys {
		out[i] = Slice{Label: k, Count: t.counts[k]}
	}
	return out
}

func split(yes, no string, n, total int) []Slice {
	return []Slice{{Label: yes, Count: n}, {Label: no, Count: total - n}}
}

func countWhere[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, it := range items {
		if pred(it) {
			n++
		}
	}
	return n
}

// Breakdown returns the share chart for layer over the filtered records.
// Energy and FDI show their linkage split, falling back to clean and green
// shares when nothing is linked. Layers without a chart of their own show the
// green share of policies.
func (e *Engine) Breakdown(layer filter.Layer) Breakdown {
	st := e.snap().table.Filter
	if !layer.Valid() {
		layer = filter.LayerPolicies
	}
	b := Breakdown{Layer: layer}

	switch layer {
	case filter.LayerEnergy:
		data := filterItems(st, e.store.Energy())
		linked := countWhere(data, func(r *records.Energy) bool { return r.LinkedFederalProgram.Set() })
		if linked > 0 {
			b.Title = "Federal Linkage"
			b.Slices = split("Fed. Linked", "Unlinked", linked, len(data))
			break
		}
		clean := countWhere(data, func(r *records.Energy) bool { return bool(r.CleanEnergy) })
		b.Title = "Clean vs. Conventional"
		b.Slices = split("Clean Energy", "Conventional", clean, len(data))
	case filter.LayerGreenMfg:
		t := newTally()
		for _, r := range filterItems(st, e.store.GreenMfg()) {
			t.inc(orUnknown(r.Status))
		}
		b.Title = "By Status"
		b.Slices = t.slices(t.keys)
	case filter.LayerMines:
		t := newTally()
		for _, r := range filterItems(st, e.store.Mines()) {
			c := r.PrimaryCommodity
			if c == "" {
				c = "Other"
			}
			t.inc(c)
		}
		keys := append([]string(nil), t.keys...)
		sort.SliceStable(keys, func(i, j int) bool { return t.counts[keys[i]] > t.counts[keys[j]] })
		if len(keys) > commodityLimit {
			keys = keys[:commodityLimit]
		}
		b.Title = "Top Commodities"
		b.Slices = t.slices(keys)
	case filter.LayerPoles:
		t := newTally()
		for _, r := range filterItems(st, e.store.Poles()) {
			t.inc(orUnknown(r.Category))
		}
		b.Title = "By Category"
		b.Slices = []Slice{}
		for _, c := range poleCategories {
			if n := t.counts[c.key]; n > 0 {
				b.Slices = append(b.Slices, Slice{Key: c.key, Label: c.label, Count: n})
			}
		}
	case filter.LayerFDI:
		data := filterItems(st, e.store.FDI())
		linked := countWhere(data, func(r *records.FDI) bool { return r.HasPolicyLinks() })
		if linked > 0 {
			b.Title = "Policy Linkage"
			b.Slices = split("Policy Linked", "Unlinked", linked, len(data))
			break
		}
		green := countWhere(data, func(r *records.FDI) bool { return bool(r.Green) })
		b.Title = "Green vs. Non-Green FDI"
		b.Slices = split("Green", "Non-Green", green, len(data))
	default:
		data := filterItems(st, e.store.Policies())
		green := countWhere(data, func(r *records.Policy) bool { return bool(r.Green) })
		b.Title = "Green vs. Non-Green"
		b.Slices = split("Green", "Non-Green", green, len(data))
	}
	return b
}

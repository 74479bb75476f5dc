package engine

import (
	"github.com/shopspring/decimal"

	"observatory/core/filter"
	"observatory/core/records"
)

// Stat is one headline figure
type Stat struct {
	Label string `json:"label"`
	Value Value  `json:"value"`
}

// Stats are the headline figures of a layer. They cover every filtered
// record, with or without a resolvable region.
type Stats struct {
	Layer filter.Layer `json:"layer"`
	Items []Stat       `json:"stats"`
}

// Get returns the figure with label
func (s Stats) Get(label string) (Value, bool) {
	for _, it := range s.Items {
		if it.Label == label {
			return it.Value, true
		}
	}
	return Value{}, false
}

func sumOf(vals ...*float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range vals {
		if v != nil {
			total = total.Add(decimal.NewFromFloat(*v))
		}
	}
	return total
}

// Stats returns the headline figures for layer. Optional third figures appear
// only when non-zero. Layers without figures of their own report policies.
func (e *Engine) Stats(layer filter.Layer) Stats {
	st := e.snap().table.Filter
	n := e.store.Normalizer()
	if !layer.Valid() {
		layer = filter.LayerPolicies
	}
	out := Stats{Layer: layer}
	add := func(label string, v Value) { out.Items = append(out.Items, Stat{Label: label, Value: v}) }
	optional := func(label string, count int) {
		if count > 0 {
			add(label, Count(count))
		}
	}
	// regions counts distinct resolvable regions
	regions := func(names []string) int {
		seen := map[string]bool{}
		for _, raw := range names {
			if id, ok := n.Normalize(raw); ok {
				seen[string(id)] = true
			}
		}
		return len(seen)
	}

	switch layer {
	case filter.LayerEnergy:
		data := filterItems(st, e.store.Energy())
		mw := make([]*float64, len(data))
		for i, r := range data {
			mw[i] = r.CapacityMW
		}
		add("PROJECTS", Count(len(data)))
		add("TOTAL MW", Number(sumOf(mw...)))
		optional("FED. PROGRAM", countWhere(data, func(r *records.Energy) bool { return r.LinkedFederalProgram.Set() }))
	case filter.LayerGreenMfg:
		data := filterItems(st, e.store.GreenMfg())
		inv := make([]*float64, len(data))
		for i, r := range data {
			inv[i] = r.InvestmentUSDMillions
		}
		add("FACILITIES", Count(len(data)))
		add("INVESTMENT", Number(sumOf(inv...).Round(0)))
	case filter.LayerMines:
		data := filterItems(st, e.store.Mines())
		states := map[string]bool{}
		for _, r := range data {
			states[r.State] = true
		}
		add("MINES", Count(len(data)))
		add("STATES", Count(len(states)))
	case filter.LayerPoles:
		data := filterItems(st, e.store.Poles())
		names := make([]string, len(data))
		for i, r := range data {
			names[i] = r.State
		}
		add("DEV. POLES", Count(len(data)))
		add("STATES", Count(regions(names)))
		optional("CIIT", countWhere(data, func(r *records.DevelopmentPole) bool { return bool(r.CIITConnected) }))
	case filter.LayerFDI:
		data := filterItems(st, e.store.FDI())
		inv := make([]*float64, len(data))
		for i, r := range data {
			inv[i] = r.InvestmentUSDMillions
		}
		add("INVESTMENTS", Count(len(data)))
		add("TOTAL USD", Number(sumOf(inv...).Round(0)))
		optional("POLICY LINKED", countWhere(data, func(r *records.FDI) bool { return r.HasPolicyLinks() }))
	case filter.LayerFederal:
		add("PROGRAMS", Count(len(filterItems(st, e.store.Federal()))))
		add("STATES", Count(e.store.Registry().Len()))
	default:
		data := filterItems(st, e.store.Policies())
		names := make([]string, len(data))
		for i, r := range data {
			names[i] = r.State
		}
		add("POLICIES", Count(len(data)))
		add("STATES", Count(regions(names)))
	}
	return out
}

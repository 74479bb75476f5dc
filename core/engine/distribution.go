package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"observatory/core/aggregate"
	"observatory/core/filter"
	"observatory/core/records"
)

// rankingLimit caps region and sector rankings
const rankingLimit = 15

// Bar is one labelled value of a distribution
type Bar struct {
	Label string `json:"label"`
	Value Value  `json:"value"`
}

// Distribution is the ranked breakdown that accompanies a layer
type Distribution struct {
	Layer filter.Layer `json:"layer"`
	Title string       `json:"title"`
	Bars  []Bar        `json:"bars"`
}

// counter accumulates counts or sums in first-seen order
type counter struct {
	keys   []string
	values map[string]decimal.Decimal
}

func newCounter() *counter {
	return &counter{values: map[string]decimal.Decimal{}}
}

func (c *counter) add(key string, v decimal.Decimal) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = c.values[key].Add(v)
}

func (c *counter) inc(key string) { c.add(key, decimal.NewFromInt(1)) }

// ranked sorts descending by value, ties in first-seen order, truncated to limit when limit > 0
func (c *counter) ranked(limit int) []Bar {
	keys := append([]string(nil), c.keys...)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.values[keys[i]].GreaterThan(c.values[keys[j]])
	})
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}
	bars := make([]Bar, len(keys))
	for i, k := range keys {
		bars[i] = Bar{Label: k, Value: Number(c.values[k])}
	}
	return bars
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

// Distribution returns the ranking shown next to the map for layer. Region
// rankings and the sector ranking keep the top 15; unknown layers fall back to
// the policy ranking.
func (e *Engine) Distribution(layer filter.Layer) Distribution {
	tbl := e.snap().table
	st := tbl.Filter
	c := newCounter()
	limit := 0
	var title string

	byRegion := func(metric func(s *aggregate.Summary) decimal.Decimal) {
		tbl.Each(func(s *aggregate.Summary) {
			if v := metric(s); v.IsPositive() {
				c.add(string(s.Region), v)
			}
		})
		limit = rankingLimit
	}
	count := func(n func(s *aggregate.Summary) int) func(s *aggregate.Summary) decimal.Decimal {
		return func(s *aggregate.Summary) decimal.Decimal { return decimal.NewFromInt(int64(n(s))) }
	}

	switch layer {
	case filter.LayerInstruments:
		title = "Instrument Distribution"
		labels := records.InstrumentLabels()
		for _, p := range filterItems(st, e.store.Policies()) {
			label, ok := labels[p.Instrument]
			if !ok {
				label = "Other"
			}
			c.inc(label)
		}
	case filter.LayerFederal:
		title = "Federal Programs by State"
		byRegion(count(func(s *aggregate.Summary) int { return s.FederalCount }))
	case filter.LayerFDI:
		title = "FDI by State (USD Millions)"
		tbl.Each(func(s *aggregate.Summary) {
			if s.FDITotalUSD.IsPositive() {
				c.add(string(s.Region), s.FDITotalUSD.Round(0))
			}
		})
		limit = rankingLimit
	case filter.LayerSectors:
		title = "Top Sectors"
		for _, p := range filterItems(st, e.store.Policies()) {
			if p.Sector != "" {
				c.inc(p.Sector)
			}
		}
		limit = rankingLimit
	case filter.LayerHSCodes:
		title = "HS Section Distribution"
		for _, p := range filterItems(st, e.store.Policies()) {
			if p.HSSectionName != "" {
				c.inc(p.HSSectionName)
			}
		}
	case filter.LayerEducation:
		title = "Education Policies by State"
		byRegion(count(func(s *aggregate.Summary) int { return s.EducationCount }))
	case filter.LayerRD:
		title = "R&D Policies by State"
		byRegion(count(func(s *aggregate.Summary) int { return s.RDCount }))
	case filter.LayerEnergy:
		title = "Projects by Technology"
		for _, r := range filterItems(st, e.store.Energy()) {
			c.inc(orUnknown(r.Technology))
		}
	case filter.LayerGreenMfg:
		title = "Facilities by Sector"
		for _, r := range filterItems(st, e.store.GreenMfg()) {
			c.inc(orUnknown(r.Sector))
		}
	case filter.LayerMines:
		title = "Mines by Commodity"
		for _, r := range filterItems(st, e.store.Mines()) {
			c.inc(orUnknown(r.PrimaryCommodity))
		}
	case filter.LayerPoles:
		title = "Development Poles by State"
		n := e.store.Normalizer()
		for _, r := range filterItems(st, e.store.Poles()) {
			if id, ok := n.Normalize(r.State); ok {
				c.inc(string(id))
			} else {
				c.inc(orUnknown(r.State))
			}
		}
		limit = rankingLimit
	default:
		layer = filter.LayerPolicies
		title = "Subnational Industrial Policies by State"
		byRegion(count(func(s *aggregate.Summary) int { return s.PoliciesCount }))
	}

	return Distribution{Layer: layer, Title: title, Bars: c.ranked(limit)}
}

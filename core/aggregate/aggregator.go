package aggregate

import (
	"sort"

	"observatory/core/filter"
	"observatory/core/records"
	"observatory/core/region"
)

// KindReport counts what happened to one dataset during a recompute
type KindReport struct {
	Scanned    int `json:"scanned"`
	Passed     int `json:"passed"`
	Aggregated int `json:"aggregated"`
	Unresolved int `json:"unresolved"`

	// UnresolvedNames are distinct raw region names that matched nothing, sorted
	UnresolvedNames []string `json:"unresolved_names,omitempty"`
}

// Report is the per-kind diagnostics of a recompute
type Report map[records.Kind]KindReport

// Unresolved sums unresolved records over all kinds
func (r Report) Unresolved() int {
	n := 0
	for _, kr := range r {
		n += kr.Unresolved
	}
	return n
}

// Table is the published result of one recompute. It is never modified
// after Recompute returns.
type Table struct {
	Filter    filter.State
	summaries []*Summary
	byRegion  map[region.ID]*Summary
	report    Report
}

// Summary returns a copy of the summary for id
func (t *Table) Summary(id region.ID) (Summary, bool) {
	s, ok := t.byRegion[id]
	if !ok {
		return Summary{}, false
	}
	return s.Clone(), true
}

// Peek returns the summary for id without copying. It must not be modified.
func (t *Table) Peek(id region.ID) (*Summary, bool) {
	s, ok := t.byRegion[id]
	return s, ok
}

// Summaries returns copies of every summary in registry order
func (t *Table) Summaries() []Summary {
	out := make([]Summary, len(t.summaries))
	for i, s := range t.summaries {
		out[i] = s.Clone()
	}
	return out
}

// Each visits each summary in registry order without copying. fn must not
// retain or modify s.
func (t *Table) Each(fn func(s *Summary)) {
	for _, s := range t.summaries {
		fn(s)
	}
}

// Report returns a copy of the diagnostics
func (t *Table) Report() Report {
	out := make(Report, len(t.report))
	for k, kr := range t.report {
		kr.UnresolvedNames = append([]string(nil), kr.UnresolvedNames...)
		out[k] = kr
	}
	return out
}

// tally tracks a KindReport while scanning
type tally struct {
	KindReport
	names map[string]bool
}

func (t *tally) unresolved(raw string) {
	t.Unresolved++
	if t.names == nil {
		t.names = make(map[string]bool)
	}
	t.names[raw] = true
}

func (t *tally) report() KindReport {
	kr := t.KindReport
	for name := range t.names {
		kr.UnresolvedNames = append(kr.UnresolvedNames, name)
	}
	sort.Strings(kr.UnresolvedNames)
	return kr
}

type pass struct {
	store    *records.Store
	state    filter.State
	byRegion map[region.ID]*Summary
	tallies  map[records.Kind]*tally
}

// scan walks one collection, calling fn with the target summary of every record that
// passes the filter and resolves to a region.
func scan[T records.Record](p *pass, kind records.Kind, items []T, fn func(rec T, s *Summary)) {
	t := p.tallies[kind]
	for _, rec := range items {
		t.Scanned++
		if !p.state.Passes(rec) {
			continue
		}
		t.Passed++
		id, ok := p.store.Normalizer().Normalize(rec.RegionName())
		if !ok {
			t.unresolved(rec.RegionName())
			continue
		}
		s, ok := p.byRegion[id]
		if !ok {
			t.unresolved(rec.RegionName())
			continue
		}
		t.Aggregated++
		fn(rec, s)
	}
}

// Recompute rebuilds every region summary from scratch under state.
func Recompute(store *records.Store, state filter.State) *Table {
	reg := store.Registry()
	tbl := &Table{
		Filter:    state,
		summaries: make([]*Summary, 0, reg.Len()),
		byRegion:  make(map[region.ID]*Summary, reg.Len()),
	}
	for _, id := range reg.IDs() {
		s := newSummary(id)
		tbl.summaries = append(tbl.summaries, s)
		tbl.byRegion[id] = s
	}

	p := &pass{
		store:    store,
		state:    state,
		byRegion: tbl.byRegion,
		tallies:  make(map[records.Kind]*tally, len(records.Kinds())),
	}
	for _, k := range records.Kinds() {
		p.tallies[k] = &tally{}
	}

	scan(p, records.KindPolicy, store.Policies(), func(pol *records.Policy, s *Summary) {
		s.PoliciesCount++
		s.Instruments.Add(pol.InstrumentLabel())
		if pol.Sector != "" {
			s.Sectors.Add(pol.Sector)
		}
		if pol.HSSectionName != "" {
			s.HSSections.Add(pol.HSSectionName)
		}
		if pol.HasTraining {
			s.EducationCount++
		}
		if pol.RD {
			s.RDCount++
		}
		if pol.Conditionality {
			s.ConditionalityCount++
			s.ConditionalityNames = append(s.ConditionalityNames, pol.DisplayName())
		}
		if pol.PlanMexico {
			s.PlanMexicoCount++
			s.PlanMexicoNames = append(s.PlanMexicoNames, pol.DisplayName())
		}
	})

	scan(p, records.KindFDI, store.FDI(), func(f *records.FDI, s *Summary) {
		s.FDICount++
		s.FDITotalUSD = add(s.FDITotalUSD, f.InvestmentUSDMillions)
		if f.HasPolicyLinks() {
			s.FDILinkedCount++
		}
	})

	p.federal(store.Federal())

	scan(p, records.KindEnergy, store.Energy(), func(e *records.Energy, s *Summary) {
		s.EnergyCount++
		s.EnergyTotalMW = add(s.EnergyTotalMW, e.CapacityMW)
		if e.InvestmentUSDMillions != nil && *e.InvestmentUSDMillions != 0 {
			s.EnergyVerifiedCapex = add(s.EnergyVerifiedCapex, e.InvestmentUSDMillions)
		}
		if e.LinkedFederalProgram.Set() {
			s.EnergyLinkedCount++
		}
	})

	scan(p, records.KindGreenMfg, store.GreenMfg(), func(g *records.GreenManufacturing, s *Summary) {
		s.GreenMfgCount++
		s.GreenMfgInvestment = add(s.GreenMfgInvestment, g.InvestmentUSDMillions)
	})

	scan(p, records.KindMine, store.Mines(), func(_ *records.Mine, s *Summary) {
		s.MinesCount++
	})

	scan(p, records.KindPole, store.Poles(), func(pole *records.DevelopmentPole, s *Summary) {
		s.PolesCount++
		s.PolesInvestmentCommitted = add(s.PolesInvestmentCommitted, pole.InvestmentCommittedUSDMillions)
		s.PolesInvestmentProjected = add(s.PolesInvestmentProjected, pole.InvestmentProjectedUSDMillions)
		if pole.CIITConnected {
			s.PolesCIITCount++
		}
	})

	tbl.report = make(Report, len(p.tallies))
	for k, t := range p.tallies {
		tbl.report[k] = t.report()
	}
	return tbl
}

// federal fans each program out to the regions normalized at ingestion. A
// program with no resolvable region counts as unresolved.
func (p *pass) federal(programs []*records.FederalProgram) {
	t := p.tallies[records.KindFederal]
	for _, fp := range programs {
		t.Scanned++
		if !p.state.Passes(fp) {
			continue
		}
		t.Passed++
		hit := false
		for _, id := range fp.Regions {
			if s, ok := p.byRegion[id]; ok {
				s.FederalCount++
				hit = true
			}
		}
		if !hit {
			t.unresolved(fp.RegionName())
			continue
		}
		t.Aggregated++
	}
}

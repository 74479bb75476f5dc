// Package engine is the query facade over the loaded datasets. It owns the
// filter state and republishes region summaries on every filter change.
// Rendering layers (HTTP, CLI) only talk to this package.
package engine

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"observatory/core/aggregate"
	"observatory/core/filter"
	"observatory/core/linkage"
	"observatory/core/records"
	"observatory/core/region"
	"observatory/internal/errors"
	"observatory/internal/metrics"
)

// snapshot is everything derived from one filter state
type snapshot struct {
	table *aggregate.Table
	links linkage.Result
}

// Engine is safe for concurrent use. Readers always see a complete snapshot;
// filter changes are serialized.
type Engine struct {
	store    *records.Store
	resolver *linkage.Resolver
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger; the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New builds an engine over store and computes the initial snapshot under initial.
func New(store *records.Store, initial filter.State, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New(errors.TypeInternal, "engine requires a record store")
	}
	if err := validate(initial); err != nil {
		return nil, err
	}

	e := &Engine{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.resolver = linkage.NewResolver(store, store.Normalizer())

	for _, k := range records.Kinds() {
		e.metrics.SetLoaded(string(k), store.Len(k))
	}
	e.mu.Lock()
	e.publish(initial)
	e.mu.Unlock()
	return e, nil
}

func validate(s filter.State) error {
	if !s.Layer.Valid() {
		return errors.Newf(errors.TypeInput, "unknown layer %q", s.Layer)
	}
	return nil
}

// publish recomputes under s and swaps the snapshot. Caller holds mu.
func (e *Engine) publish(s filter.State) {
	start := time.Now()
	tbl := aggregate.Recompute(e.store, s)
	snap := &snapshot{
		table: tbl,
		links: e.resolver.All(filterItems(s, e.store.FDI())),
	}
	e.current.Store(snap)

	elapsed := time.Since(start)
	report := tbl.Report()
	e.metrics.ObserveRecompute(elapsed)
	e.metrics.SetDangling(snap.links.Dangling)
	for k, kr := range report {
		e.metrics.SetUnresolved(string(k), kr.Unresolved)
	}
	e.logger.Debug("recomputed region summaries",
		zap.String("layer", string(s.Layer)),
		zap.String("status", s.Status),
		zap.Int("year", s.Year),
		zap.Bool("cumulative", s.Cumulative),
		zap.Bool("show_undated", s.IncludeUndated),
		zap.Int("unresolved", report.Unresolved()),
		zap.Int("dangling_links", snap.links.Dangling),
		zap.Duration("duration", elapsed),
	)
}

func (e *Engine) snap() *snapshot { return e.current.Load() }

// Filter returns the active filter state
func (e *Engine) Filter() filter.State { return e.snap().table.Filter }

// update applies fn to a copy of the current filter and republishes
func (e *Engine) update(fn func(*filter.State)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.snap().table.Filter
	fn(&s)
	if err := validate(s); err != nil {
		return err
	}
	e.publish(s)
	return nil
}

// SetLayer selects the displayed layer
func (e *Engine) SetLayer(l filter.Layer) error {
	return e.update(func(s *filter.State) { s.Layer = l })
}

// SetStatus selects the status to match exactly; empty clears it
func (e *Engine) SetStatus(status string) error {
	return e.update(func(s *filter.State) { s.Status = status })
}

// SetYear sets the year cutoff
func (e *Engine) SetYear(year int) error {
	return e.update(func(s *filter.State) { s.Year = year })
}

// SetCumulative switches between "up to year" and "in year"
func (e *Engine) SetCumulative(on bool) error {
	return e.update(func(s *filter.State) { s.Cumulative = on })
}

// SetIncludeUndated controls whether records without a year pass
func (e *Engine) SetIncludeUndated(on bool) error {
	return e.update(func(s *filter.State) { s.IncludeUndated = on })
}

// SetFilter replaces the whole filter state
func (e *Engine) SetFilter(next filter.State) error {
	return e.update(func(s *filter.State) { *s = next })
}

// Store returns the underlying record store
func (e *Engine) Store() *records.Store { return e.store }

// Registry returns the canonical regions
func (e *Engine) Registry() *region.Registry { return e.store.Registry() }

func filterItems[T records.Record](s filter.State, items []T) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if s.Passes(it) {
			out = append(out, it)
		}
	}
	return out
}

// FilteredRecords returns the records of kind that pass the active filter, in
// source order. Unknown kinds yield nil.
func (e *Engine) FilteredRecords(kind records.Kind) []records.Record {
	all := e.store.Records(kind)
	if all == nil {
		return nil
	}
	return filterItems(e.Filter(), all)
}

func (e *Engine) Policies() []*records.Policy {
	return filterItems(e.Filter(), e.store.Policies())
}

func (e *Engine) Federal() []*records.FederalProgram {
	return filterItems(e.Filter(), e.store.Federal())
}

func (e *Engine) FDI() []*records.FDI {
	return filterItems(e.Filter(), e.store.FDI())
}

func (e *Engine) Energy() []*records.Energy {
	return filterItems(e.Filter(), e.store.Energy())
}

func (e *Engine) GreenMfg() []*records.GreenManufacturing {
	return filterItems(e.Filter(), e.store.GreenMfg())
}

func (e *Engine) Mines() []*records.Mine {
	return filterItems(e.Filter(), e.store.Mines())
}

func (e *Engine) Poles() []*records.DevelopmentPole {
	return filterItems(e.Filter(), e.store.Poles())
}

// RegionSummary returns a copy of the summary of a canonical region
func (e *Engine) RegionSummary(id region.ID) (aggregate.Summary, bool) {
	return e.snap().table.Summary(id)
}

// Summaries returns every summary in registry order
func (e *Engine) Summaries() []aggregate.Summary {
	return e.snap().table.Summaries()
}

// RegionValue returns the value of layer for region id. Unknown regions get
// the layer's empty value; unknown layers read as numeric zero.
func (e *Engine) RegionValue(id region.ID, layer filter.Layer) Value {
	s, ok := e.snap().table.Peek(id)
	if !ok {
		return zeroValue(layer.Categorical())
	}
	return layerValue(s, layer)
}

func layerValue(s *aggregate.Summary, layer filter.Layer) Value {
	switch layer {
	case filter.LayerPolicies:
		return Count(s.PoliciesCount)
	case filter.LayerInstruments:
		return Category(s.DominantInstrument())
	case filter.LayerFederal:
		return Count(s.FederalCount)
	case filter.LayerFDI:
		return Number(s.FDITotalUSD)
	case filter.LayerSectors:
		return Category(s.DominantSector())
	case filter.LayerHSCodes:
		return Category(s.DominantHSSection())
	case filter.LayerEducation:
		return Count(s.EducationCount)
	case filter.LayerRD:
		return Count(s.RDCount)
	case filter.LayerEnergy:
		return Count(s.EnergyCount)
	case filter.LayerGreenMfg:
		return Count(s.GreenMfgCount)
	case filter.LayerMines:
		return Count(s.MinesCount)
	case filter.LayerPoles:
		return Count(s.PolesCount)
	}
	return Count(0)
}

// Report is the diagnostics of the active snapshot
type Report struct {
	Filter        filter.State         `json:"filter"`
	Kinds         aggregate.Report     `json:"kinds"`
	DanglingLinks int                  `json:"dangling_links"`
	Ingest        records.IngestReport `json:"ingest"`
	Loaded        map[records.Kind]int `json:"loaded"`
	Geometry      *GeometryReport      `json:"geometry,omitempty"`
}

// GeometryReport lists regions without a shape and shapes without a region
type GeometryReport struct {
	Missing   []region.ID `json:"missing,omitempty"`
	Unmatched []string    `json:"unmatched,omitempty"`
}

// Report returns diagnostics for the active filter
func (e *Engine) Report() Report {
	snap := e.snap()
	r := Report{
		Filter:        snap.table.Filter,
		Kinds:         snap.table.Report(),
		DanglingLinks: snap.links.Dangling,
		Ingest:        e.store.IngestReport(),
		Loaded:        make(map[records.Kind]int, len(records.Kinds())),
	}
	for _, k := range records.Kinds() {
		r.Loaded[k] = e.store.Len(k)
	}
	if g := e.store.Geometry(); g != nil {
		r.Geometry = &GeometryReport{
			Missing:   g.Missing(e.store.Registry()),
			Unmatched: append([]string(nil), g.Unmatched...),
		}
	}
	return r
}

// Linkages returns every FDI-to-policy pair under the active filter
func (e *Engine) Linkages() []linkage.Linkage {
	return append([]linkage.Linkage(nil), e.snap().links.Links...)
}

// LinkagesForRegion restricts Linkages to FDI records in region id
func (e *Engine) LinkagesForRegion(id region.ID) []linkage.Linkage {
	return e.resolver.ForRegion(e.FDI(), id).Links
}

// LinkedFDIForRegion returns filtered FDI records in region id with at least one policy link
func (e *Engine) LinkedFDIForRegion(id region.ID) []*records.FDI {
	return e.resolver.LinkedFDIForRegion(e.FDI(), id)
}

// LinkageGroups groups Linkages for the linkage explorer
func (e *Engine) LinkageGroups() []linkage.StateGroup {
	return linkage.GroupByRegion(e.snap().links.Links)
}

// YearRange is the selectable year span
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// YearRange derives the slider bounds from the dated records. Federal programs
// and mines do not widen the range.
func (e *Engine) YearRange() YearRange {
	lowest := math.Inf(1)
	visit := func(y *float64) {
		if y != nil && *y > 1990 && *y < lowest {
			lowest = *y
		}
	}
	for _, p := range e.store.Policies() {
		visit(p.Year)
	}
	for _, f := range e.store.FDI() {
		visit(f.Year)
	}
	for _, en := range e.store.Energy() {
		visit(en.Year)
	}
	for _, g := range e.store.GreenMfg() {
		visit(g.Year)
	}
	for _, p := range e.store.Poles() {
		visit(p.Year)
	}

	lo := filter.MinYearFloor
	if !math.IsInf(lowest, 1) {
		if y := int(math.Round(lowest)); y > lo {
			lo = y
		}
	}
	return YearRange{Min: lo, Max: filter.MaxYear}
}

// Statuses lists the distinct non-empty statuses of kind, sorted
func (e *Engine) Statuses(kind records.Kind) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range e.store.Records(kind) {
		if s := r.StatusValue(); s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// LayerCount is the number of filtered records a layer draws. Choropleth
// layers count the filtered records they are computed from.
func (e *Engine) LayerCount(layer filter.Layer) int {
	switch layer {
	case filter.LayerEnergy:
		return len(e.Energy())
	case filter.LayerGreenMfg:
		return len(e.GreenMfg())
	case filter.LayerMines:
		return len(e.Mines())
	case filter.LayerPoles:
		return len(e.Poles())
	case filter.LayerFederal:
		return len(e.Federal())
	case filter.LayerFDI:
		return len(e.FDI())
	case filter.LayerPolicies, filter.LayerInstruments, filter.LayerSectors,
		filter.LayerHSCodes, filter.LayerEducation, filter.LayerRD:
		return len(e.Policies())
	}
	return 0
}

package records

import (
	"observatory/core/region"
)

// Dataset is the already-parsed input of the seven collections
type Dataset struct {
	Policies []*Policy             `json:"policies"`
	Federal  []*FederalProgram     `json:"federal"`
	FDI      []*FDI                `json:"fdi"`
	Energy   []*Energy             `json:"energy"`
	GreenMfg []*GreenManufacturing `json:"greenmfg"`
	Mines    []*Mine               `json:"mines"`
	Poles    []*DevelopmentPole    `json:"polos"`
}

// IngestReport lists what ingestion could not place
type IngestReport struct {
	// FederalUnresolved are raw federal-program state names that matched no region
	FederalUnresolved []string `json:"federal_unresolved,omitempty"`

	// DuplicatePolicyIDs are IDs seen more than once; lookups return the first
	DuplicatePolicyIDs []int `json:"duplicate_policy_ids,omitempty"`

	// NullRecords counts null collection elements dropped per kind
	NullRecords map[Kind]int `json:"null_records,omitempty"`
}

// Nulls returns the total number of dropped null elements
func (r IngestReport) Nulls() int {
	n := 0
	for _, c := range r.NullRecords {
		n += c
	}
	return n
}

// Store holds the seven collections plus canonical region metadata.
// It is immutable once built.
type Store struct {
	normalizer *region.Normalizer
	geometry   *region.Geometry
	data       Dataset
	policyByID map[int]*Policy
	report     IngestReport
}

// NewStore ingests data: null elements are dropped, federal-program region
// lists are normalized once and the policy ID index is built. geometry may be
// nil.
func NewStore(n *region.Normalizer, data Dataset, geometry *region.Geometry) *Store {
	s := &Store{
		normalizer: n,
		geometry:   geometry,
	}
	s.data = Dataset{
		Policies: dropNulls(s, KindPolicy, data.Policies),
		Federal:  dropNulls(s, KindFederal, data.Federal),
		FDI:      dropNulls(s, KindFDI, data.FDI),
		Energy:   dropNulls(s, KindEnergy, data.Energy),
		GreenMfg: dropNulls(s, KindGreenMfg, data.GreenMfg),
		Mines:    dropNulls(s, KindMine, data.Mines),
		Poles:    dropNulls(s, KindPole, data.Poles),
	}
	data = s.data
	s.policyByID = make(map[int]*Policy, len(data.Policies))

	for _, p := range data.Policies {
		if _, dup := s.policyByID[p.ID]; dup {
			s.report.DuplicatePolicyIDs = append(s.report.DuplicatePolicyIDs, p.ID)
			continue
		}
		s.policyByID[p.ID] = p
	}

	for _, fp := range data.Federal {
		fp.Regions = fp.Regions[:0]
		seen := make(map[region.ID]bool, len(fp.States))
		for _, raw := range fp.States {
			id, ok := n.Normalize(raw)
			if !ok {
				s.report.FederalUnresolved = append(s.report.FederalUnresolved, raw)
				continue
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			fp.Regions = append(fp.Regions, id)
		}
	}
	return s
}

// Normalizer returns the region normalizer
func (s *Store) Normalizer() *region.Normalizer { return s.normalizer }

// Registry returns the canonical region registry
func (s *Store) Registry() *region.Registry { return s.normalizer.Registry() }

// Geometry returns bound region shapes; nil when none were loaded
func (s *Store) Geometry() *region.Geometry { return s.geometry }

// IngestReport returns ingestion diagnostics
func (s *Store) IngestReport() IngestReport { return s.report }

func (s *Store) Policies() []*Policy             { return s.data.Policies }
func (s *Store) Federal() []*FederalProgram      { return s.data.Federal }
func (s *Store) FDI() []*FDI                     { return s.data.FDI }
func (s *Store) Energy() []*Energy               { return s.data.Energy }
func (s *Store) GreenMfg() []*GreenManufacturing { return s.data.GreenMfg }
func (s *Store) Mines() []*Mine                  { return s.data.Mines }
func (s *Store) Poles() []*DevelopmentPole       { return s.data.Poles }

// PolicyByID looks a policy up regardless of any filter
func (s *Store) PolicyByID(id int) (*Policy, bool) {
	p, ok := s.policyByID[id]
	return p, ok
}

// Records returns the collection of kind k as generic records
func (s *Store) Records(k Kind) []Record {
	switch k {
	case KindPolicy:
		return asRecords(s.data.Policies)
	case KindFederal:
		return asRecords(s.data.Federal)
	case KindFDI:
		return asRecords(s.data.FDI)
	case KindEnergy:
		return asRecords(s.data.Energy)
	case KindGreenMfg:
		return asRecords(s.data.GreenMfg)
	case KindMine:
		return asRecords(s.data.Mines)
	case KindPole:
		return asRecords(s.data.Poles)
	}
	return nil
}

// Len returns the size of a collection
func (s *Store) Len(k Kind) int {
	switch k {
	case KindPolicy:
		return len(s.data.Policies)
	case KindFederal:
		return len(s.data.Federal)
	case KindFDI:
		return len(s.data.FDI)
	case KindEnergy:
		return len(s.data.Energy)
	case KindGreenMfg:
		return len(s.data.GreenMfg)
	case KindMine:
		return len(s.data.Mines)
	case KindPole:
		return len(s.data.Poles)
	}
	return 0
}

// dropNulls returns items without nil elements, counting what it removed
func dropNulls[T any](s *Store, k Kind, items []*T) []*T {
	out := items[:0:0]
	for _, it := range items {
		if it == nil {
			if s.report.NullRecords == nil {
				s.report.NullRecords = make(map[Kind]int)
			}
			s.report.NullRecords[k]++
			continue
		}
		out = append(out, it)
	}
	return out
}

func asRecords[T Record](items []T) []Record {
	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

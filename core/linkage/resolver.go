// Package linkage joins FDI announcements to the policies they declare.
package linkage

import (
	"fmt"
	"sort"

	"observatory/core/records"
	"observatory/core/region"
)

// Unknown fills empty descriptive fields of a linkage
const Unknown = "Unknown"

// Linkage is one resolved FDI-to-policy pair
type Linkage struct {
	FDI          *records.FDI    `json:"fdi"`
	Policy       *records.Policy `json:"policy"`
	Company      string          `json:"company"`
	FDISector    string          `json:"fdi_sector"`
	FDIState     string          `json:"fdi_state"`
	PolicyName   string          `json:"policy_name"`
	PolicySector string          `json:"policy_sector"`
}

// Result holds the resolved pairs plus the IDs that pointed nowhere
type Result struct {
	Links []Linkage `json:"links"`

	// Dangling counts linked policy IDs with no matching policy
	Dangling int `json:"dangling"`
}

// PolicyIndex looks policies up by ID, ignoring any filter
type PolicyIndex interface {
	PolicyByID(id int) (*records.Policy, bool)
}

// Resolver resolves linkages against an unfiltered policy index.
type Resolver struct {
	policies   PolicyIndex
	normalizer *region.Normalizer
}

// NewResolver creates a resolver
func NewResolver(policies PolicyIndex, n *region.Normalizer) *Resolver {
	return &Resolver{policies: policies, normalizer: n}
}

// All emits one linkage per (FDI, resolvable policy ID), in FDI order and then
// declared ID order. fdis is expected to be already filtered.
func (r *Resolver) All(fdis []*records.FDI) Result {
	var res Result
	for _, f := range fdis {
		for _, pid := range f.LinkedPolicyIDs {
			pol, ok := r.policies.PolicyByID(pid)
			if !ok {
				res.Dangling++
				continue
			}
			res.Links = append(res.Links, build(f, pol, pid))
		}
	}
	return res
}

// ForRegion restricts All to FDI records whose region normalizes to id
func (r *Resolver) ForRegion(fdis []*records.FDI, id region.ID) Result {
	return r.All(r.LinkedFDIForRegion(fdis, id))
}

// LinkedFDIForRegion returns the FDI records in region id that declare at least one policy link
func (r *Resolver) LinkedFDIForRegion(fdis []*records.FDI, id region.ID) []*records.FDI {
	var out []*records.FDI
	for _, f := range fdis {
		if !f.HasPolicyLinks() {
			continue
		}
		if got, ok := r.normalizer.Normalize(f.State); ok && got == id {
			out = append(out, f)
		}
	}
	return out
}

func build(f *records.FDI, pol *records.Policy, pid int) Linkage {
	policyName := pol.Name
	if policyName == "" {
		policyName = fmt.Sprintf("Policy #%d", pid)
	}
	return Linkage{
		FDI:          f,
		Policy:       pol,
		Company:      orUnknown(f.CompanyName),
		FDISector:    orUnknown(f.Sector),
		FDIState:     orUnknown(f.State),
		PolicyName:   policyName,
		PolicySector: orUnknown(pol.Sector),
	}
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

// CompanyGroup is the linkages of one FDI record
type CompanyGroup struct {
	FDI      *records.FDI `json:"fdi"`
	Company  string       `json:"company"`
	Sector   string       `json:"sector"`
	Policies []Linkage    `json:"policies"`
}

// StateGroup is the linkages of one raw FDI state
type StateGroup struct {
	State     string         `json:"state"`
	Linkages  int            `json:"linkages"`
	Companies []CompanyGroup `json:"companies"`
}

// GroupByRegion groups links by raw FDI state, largest group first with ties
// in first-seen order, and within a state by company and FDI ID in first-seen
// order.
func GroupByRegion(links []Linkage) []StateGroup {
	var groups []StateGroup
	stateIdx := map[string]int{}
	companyIdx := map[string]map[string]int{}

	for _, l := range links {
		si, ok := stateIdx[l.FDIState]
		if !ok {
			si = len(groups)
			stateIdx[l.FDIState] = si
			companyIdx[l.FDIState] = map[string]int{}
			groups = append(groups, StateGroup{State: l.FDIState})
		}
		g := &groups[si]
		g.Linkages++

		key := fmt.Sprintf("%s|%d", l.Company, l.FDI.ID)
		ci, ok := companyIdx[l.FDIState][key]
		if !ok {
			ci = len(g.Companies)
			companyIdx[l.FDIState][key] = ci
			g.Companies = append(g.Companies, CompanyGroup{FDI: l.FDI, Company: l.Company, Sector: l.FDISector})
		}
		g.Companies[ci].Policies = append(g.Companies[ci].Policies, l)
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Linkages > groups[j].Linkages })
	return groups
}

// Package aggregate rolls filtered records up into per-region summaries.
package aggregate

import (
	"github.com/shopspring/decimal"

	"observatory/core/region"
)

// Summary is the rollup of every dataset for one region under one filter.
// Monetary fields are USD millions.
type Summary struct {
	Region region.ID `json:"region"`

	PoliciesCount int       `json:"policies_count"`
	Instruments   Breakdown `json:"instruments_data"`
	Sectors       Breakdown `json:"sectors_data"`
	HSSections    Breakdown `json:"hs_data"`

	EducationCount int `json:"education_count"`
	RDCount        int `json:"rd_count"`

	FDICount       int             `json:"fdi_count"`
	FDITotalUSD    decimal.Decimal `json:"fdi_total_usd"`
	FDILinkedCount int             `json:"fdi_linked_count"`

	FederalCount int `json:"federal_count"`

	EnergyCount         int             `json:"energy_count"`
	EnergyTotalMW       decimal.Decimal `json:"energy_total_mw"`
	EnergyVerifiedCapex decimal.Decimal `json:"energy_verified_capex"`
	EnergyLinkedCount   int             `json:"energy_linked_count"`

	GreenMfgCount      int             `json:"greenmfg_count"`
	GreenMfgInvestment decimal.Decimal `json:"greenmfg_investment"`

	MinesCount int `json:"mines_count"`

	PolesCount               int             `json:"polos_count"`
	PolesInvestmentCommitted decimal.Decimal `json:"polos_investment_committed"`
	PolesInvestmentProjected decimal.Decimal `json:"polos_investment_projected"`
	PolesCIITCount           int             `json:"polos_ciit_count"`

	ConditionalityCount int      `json:"conditionality_count"`
	ConditionalityNames []string `json:"conditionality_names"`
	PlanMexicoCount     int      `json:"planmex_count"`
	PlanMexicoNames     []string `json:"planmex_names"`
}

func newSummary(id region.ID) *Summary {
	return &Summary{
		Region:              id,
		ConditionalityNames: []string{},
		PlanMexicoNames:     []string{},
	}
}

// Clone returns a deep copy
func (s *Summary) Clone() Summary {
	c := *s
	c.Instruments = s.Instruments.clone()
	c.Sectors = s.Sectors.clone()
	c.HSSections = s.HSSections.clone()
	c.ConditionalityNames = append([]string{}, s.ConditionalityNames...)
	c.PlanMexicoNames = append([]string{}, s.PlanMexicoNames...)
	return c
}

// Empty reports whether no record of any kind was aggregated into s
func (s *Summary) Empty() bool {
	return s.PoliciesCount == 0 && s.FDICount == 0 && s.FederalCount == 0 &&
		s.EnergyCount == 0 && s.GreenMfgCount == 0 && s.MinesCount == 0 && s.PolesCount == 0
}

// DominantInstrument is the most common instrument label, or None
func (s *Summary) DominantInstrument() string { return s.Instruments.Dominant() }

// DominantSector is the most common policy sector, or None
func (s *Summary) DominantSector() string { return s.Sectors.Dominant() }

// DominantHSSection is the most common HS section, or None
func (s *Summary) DominantHSSection() string { return s.HSSections.Dominant() }

// add adds v to sum; a nil metric contributes zero
func add(sum decimal.Decimal, v *float64) decimal.Decimal {
	if v == nil {
		return sum
	}
	return sum.Add(decimal.NewFromFloat(*v))
}

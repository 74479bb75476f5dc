package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/core/filter"
	"observatory/core/records"
)

func statLabels(s Stats) []string {
	out := make([]string, len(s.Items))
	for i, it := range s.Items {
		out[i] = it.Label
	}
	return out
}

func stat(t *testing.T, s Stats, label string) string {
	t.Helper()
	v, ok := s.Get(label)
	require.True(t, ok, label)
	return v.String()
}

func TestStatsEnergy(t *testing.T) {
	e := newEngine(t, records.Dataset{Energy: []*records.Energy{
		{Common: records.Common{ID: 1, State: "Sonora"}, CapacityMW: yr(120.5), LinkedFederalProgram: "Plan Sonora"},
		{Common: records.Common{ID: 2, State: "Narnia"}, CapacityMW: yr(30)},
		{Common: records.Common{ID: 3, State: "Sonora"}},
	}})

	s := e.Stats(filter.LayerEnergy)
	assert.Equal(t, []string{"PROJECTS", "TOTAL MW", "FED. PROGRAM"}, statLabels(s))
	assert.Equal(t, "3", stat(t, s, "PROJECTS"))
	assert.Equal(t, "150.5", stat(t, s, "TOTAL MW"), "unresolved regions still count")
	assert.Equal(t, "1", stat(t, s, "FED. PROGRAM"))
}

func TestStatsOptionalFigureHiddenWhenZero(t *testing.T) {
	e := newEngine(t, records.Dataset{
		Energy: []*records.Energy{{Common: records.Common{ID: 1, State: "Sonora"}}},
		FDI:    []*records.FDI{{Common: records.Common{ID: 2, State: "Jalisco"}, InvestmentUSDMillions: yr(10.4)}},
		Poles:  []*records.DevelopmentPole{{Common: records.Common{ID: 3, State: "Oaxaca"}}},
	})

	assert.Equal(t, []string{"PROJECTS", "TOTAL MW"}, statLabels(e.Stats(filter.LayerEnergy)))
	assert.Equal(t, []string{"INVESTMENTS", "TOTAL USD"}, statLabels(e.Stats(filter.LayerFDI)))
	assert.Equal(t, []string{"DEV. POLES", "STATES"}, statLabels(e.Stats(filter.LayerPoles)))
}

func TestStatsFDIRoundsTotal(t *testing.T) {
	e := newEngine(t, records.Dataset{FDI: []*records.FDI{
		{Common: records.Common{ID: 1, State: "Jalisco"}, InvestmentUSDMillions: yr(100.25), LinkedPolicyIDs: []int{1}},
		{Common: records.Common{ID: 2, State: "Atlantis"}, InvestmentUSDMillions: yr(0.5)},
		{Common: records.Common{ID: 3, State: "Jalisco"}},
	}})

	s := e.Stats(filter.LayerFDI)
	assert.Equal(t, "3", stat(t, s, "INVESTMENTS"))
	assert.Equal(t, "101", stat(t, s, "TOTAL USD"))
	assert.Equal(t, "1", stat(t, s, "POLICY LINKED"))
}

func TestStatsGreenMfg(t *testing.T) {
	e := newEngine(t, records.Dataset{GreenMfg: []*records.GreenManufacturing{
		{Common: records.Common{ID: 1, State: "Coahuila"}, InvestmentUSDMillions: yr(250.6)},
		{Common: records.Common{ID: 2, State: "Coahuila"}},
	}})

	s := e.Stats(filter.LayerGreenMfg)
	assert.Equal(t, []string{"FACILITIES", "INVESTMENT"}, statLabels(s))
	assert.Equal(t, "2", stat(t, s, "FACILITIES"))
	assert.Equal(t, "251", stat(t, s, "INVESTMENT"))
}

func TestStatsDistinctStates(t *testing.T) {
	e := newEngine(t, records.Dataset{
		Policies: []*records.Policy{
			{Common: records.Common{ID: 1, State: "Distrito Federal"}},
			{Common: records.Common{ID: 2, State: "Ciudad de Mexico"}},
			{Common: records.Common{ID: 3, State: "Jalisco"}},
			{Common: records.Common{ID: 4, State: "Narnia"}},
		},
		Mines: []*records.Mine{
			{Common: records.Common{ID: 5, State: "Zacatecas"}},
			{Common: records.Common{ID: 6, State: "Zacatecas"}},
			{Common: records.Common{ID: 7, State: "Sonora"}},
		},
		Poles: []*records.DevelopmentPole{
			{Common: records.Common{ID: 8, State: "Oaxaca"}, CIITConnected: true},
			{Common: records.Common{ID: 9, State: "oaxaca"}, CIITConnected: true},
			{Common: records.Common{ID: 10, State: "Veracruz"}},
		},
	})

	policies := e.Stats(filter.LayerPolicies)
	assert.Equal(t, "4", stat(t, policies, "POLICIES"))
	assert.Equal(t, "2", stat(t, policies, "STATES"), "aliases collapse and unresolved names are not states")

	mines := e.Stats(filter.LayerMines)
	assert.Equal(t, "3", stat(t, mines, "MINES"))
	assert.Equal(t, "2", stat(t, mines, "STATES"))

	poles := e.Stats(filter.LayerPoles)
	assert.Equal(t, "3", stat(t, poles, "DEV. POLES"))
	assert.Equal(t, "2", stat(t, poles, "STATES"))
	assert.Equal(t, "2", stat(t, poles, "CIIT"))
}

func TestStatsFederalAndFallback(t *testing.T) {
	e := newEngine(t, records.Dataset{
		Federal: []*records.FederalProgram{
			{Common: records.Common{ID: 1}, States: records.RegionList{"Chiapas"}},
			{Common: records.Common{ID: 2}, States: records.RegionList{"Sonora"}},
		},
		Policies: []*records.Policy{{Common: records.Common{ID: 3, State: "Jalisco"}}},
	})

	fed := e.Stats(filter.LayerFederal)
	assert.Equal(t, "2", stat(t, fed, "PROGRAMS"))
	assert.Equal(t, "32", stat(t, fed, "STATES"))

	for _, layer := range []filter.Layer{filter.LayerInstruments, filter.LayerRD, "roads"} {
		s := e.Stats(layer)
		assert.Equal(t, []string{"POLICIES", "STATES"}, statLabels(s), layer)
	}
	assert.Equal(t, filter.LayerPolicies, e.Stats("roads").Layer)

	_, ok := fed.Get("CIIT")
	assert.False(t, ok)
}

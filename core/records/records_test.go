package records

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"observatory/core/region"
)

func TestDecodePolicy(t *testing.T) {
	raw := `{"id": 7, "state": "Jalisco", "_year": 2021.4, "status": "Active",
		"instrument": 3, "sector": "Automotive", "hs_section_name": "Vehicles",
		"has_training": 1, "r&d": 0, "conditionality": true, "planmex": null}`

	var p Policy
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, 7, p.RecordID())
	assert.Equal(t, "Jalisco", p.RegionName())
	require.NotNil(t, p.YearValue())
	assert.InDelta(t, 2021.4, *p.YearValue(), 1e-9)
	assert.Equal(t, "Active", p.StatusValue())
	assert.Equal(t, "Tax relief", p.InstrumentLabel())
	assert.True(t, bool(p.HasTraining))
	assert.False(t, bool(p.RD))
	assert.True(t, bool(p.Conditionality))
	assert.False(t, bool(p.PlanMexico))
	assert.Equal(t, "Policy #7", p.DisplayName())
}

func TestInstrumentLabelFallback(t *testing.T) {
	p := Policy{Instrument: 42}
	assert.Equal(t, "Type 42", p.InstrumentLabel())
}

func TestRegionListDecoding(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want RegionList
	}{
		{"comma and semicolon separated", `"Jalisco, Colima; Nayarit"`, RegionList{"Jalisco", "Colima", "Nayarit"}},
		{"blank entries dropped", `" Sonora ,, ;"`, RegionList{"Sonora"}},
		{"array of names", `["Puebla", "Tlaxcala; Hidalgo"]`, RegionList{"Puebla", "Tlaxcala", "Hidalgo"}},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fp FederalProgram
			require.NoError(t, json.Unmarshal([]byte(`{"states": `+tt.raw+`}`), &fp))
			assert.Equal(t, tt.want, fp.States)
		})
	}
}

func TestLinkDecoding(t *testing.T) {
	tests := map[string]bool{
		`"Sembrando Vida"`: true,
		`""`:               false,
		`true`:             true,
		`false`:            false,
		`null`:             false,
		`0`:                false,
	}
	for raw, want := range tests {
		var e Energy
		require.NoError(t, json.Unmarshal([]byte(`{"linked_federal_program": `+raw+`}`), &e), raw)
		assert.Equal(t, want, e.LinkedFederalProgram.Set(), raw)
	}
}

func TestStoreIngestion(t *testing.T) {
	n := region.NewMexicoNormalizer()
	data := Dataset{
		Policies: []*Policy{
			{Common: Common{ID: 1, State: "Jalisco"}, Name: "first"},
			{Common: Common{ID: 1, State: "Colima"}, Name: "duplicate"},
			{Common: Common{ID: 2, State: "Sonora"}},
		},
		Federal: []*FederalProgram{
			{Common: Common{ID: 10}, States: RegionList{"Distrito Federal", "Ciudad de Mexico", "Atlantis", "Jalisco"}},
		},
	}

	s := NewStore(n, data, nil)

	p, ok := s.PolicyByID(1)
	require.True(t, ok)
	assert.Equal(t, "first", p.Name)
	_, ok = s.PolicyByID(999)
	assert.False(t, ok)

	assert.Equal(t, []region.ID{"Ciudad de México", "Jalisco"}, s.Federal()[0].Regions)

	report := s.IngestReport()
	assert.Equal(t, []string{"Atlantis"}, report.FederalUnresolved)
	assert.Equal(t, []int{1}, report.DuplicatePolicyIDs)

	assert.Equal(t, 3, s.Len(KindPolicy))
	assert.Len(t, s.Records(KindPolicy), 3)
	assert.Len(t, s.Records(KindMine), 0)
	assert.Nil(t, s.Records(Kind("roads")))
	assert.Equal(t, 32, s.Registry().Len())
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("polos")
	assert.True(t, ok)
	assert.Equal(t, KindPole, k)

	_, ok = ParseKind("roads")
	assert.False(t, ok)
}

func TestDecodeFloatEncodedPolicy(t *testing.T) {
	raw := `[
		{"id": 1, "instrument": 3.0, "has_training": 1.0, "r&d": 1.0, "conditionality": 2, "planmex": "1"},
		{"id": 2, "instrument": "4"},
		{"id": 3, "instrument": 2.5},
		{"id": 4, "instrument": {"code": 1}}
	]`

	var ps []*Policy
	require.NoError(t, json.Unmarshal([]byte(raw), &ps))
	require.Len(t, ps, 4)

	assert.Equal(t, "Tax relief", ps[0].InstrumentLabel())
	assert.True(t, bool(ps[0].HasTraining))
	assert.True(t, bool(ps[0].RD))
	assert.False(t, bool(ps[0].Conditionality), "only the value 1 sets a flag")
	assert.False(t, bool(ps[0].PlanMexico), "a quoted 1 is not a flag")
	assert.Equal(t, 1, ps[0].ID)

	assert.Equal(t, "Subsidy/Support", ps[1].InstrumentLabel())
	assert.Equal(t, 0, ps[2].Instrument)
	assert.Equal(t, 0, ps[3].Instrument)
	assert.Equal(t, 4, ps[3].ID)
}

func TestDecodeLinkedPolicyIDs(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want IDList
	}{
		{"integers", `[1, 2]`, IDList{1, 2}},
		{"integral floats", `[1.0, 2.0]`, IDList{1, 2}},
		{"numeric strings", `["3", " 4 "]`, IDList{3, 4}},
		{"bad elements dropped", `[1, 2.5, "x", null, 5]`, IDList{1, 5}},
		{"scalar", `7`, nil},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FDI
			require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "linked_policy_ids": `+tt.raw+`}`), &f))
			if tt.want == nil {
				assert.Empty(t, f.LinkedPolicyIDs)
				assert.False(t, f.HasPolicyLinks())
				return
			}
			assert.Equal(t, tt.want, f.LinkedPolicyIDs)
			assert.True(t, f.HasPolicyLinks())
		})
	}
}

func TestDecodeFlag(t *testing.T) {
	tests := map[string]bool{
		`1`:     true,
		`1.0`:   true,
		`1e0`:   true,
		`true`:  true,
		`0`:     false,
		`2`:     false,
		`"1"`:   false,
		`false`: false,
		`null`:  false,
	}
	for raw, want := range tests {
		var e Energy
		require.NoError(t, json.Unmarshal([]byte(`{"clean_energy": `+raw+`}`), &e), raw)
		assert.Equal(t, want, bool(e.CleanEnergy), raw)
	}
}

func TestDecodeCIITConnected(t *testing.T) {
	tests := map[string]bool{
		`"Sí"`:  true,
		`"0"`:   true,
		`1`:     true,
		`0.5`:   true,
		`true`:  true,
		`[]`:    true,
		`""`:    false,
		`0`:     false,
		`0.0`:   false,
		`false`: false,
		`null`:  false,
	}
	for raw, want := range tests {
		var p DevelopmentPole
		require.NoError(t, json.Unmarshal([]byte(`{"ciit_connected": `+raw+`}`), &p), raw)
		assert.Equal(t, want, bool(p.CIITConnected), raw)
	}
}

func TestStoreDropsNullElements(t *testing.T) {
	var data Dataset
	require.NoError(t, json.Unmarshal([]byte(`{
		"policies": [{"id": 1, "state": "Jalisco"}, null],
		"federal": [null, {"id": 2, "states": "Sonora"}],
		"polos": [null, null]
	}`), &data))

	s := NewStore(region.NewMexicoNormalizer(), data, nil)

	assert.Equal(t, 1, s.Len(KindPolicy))
	assert.Len(t, s.Records(KindPolicy), 1)
	assert.Equal(t, 1, s.Len(KindFederal))
	assert.Equal(t, []region.ID{"Sonora"}, s.Federal()[0].Regions)
	assert.Equal(t, 0, s.Len(KindPole))

	report := s.IngestReport()
	assert.Equal(t, map[Kind]int{KindPolicy: 1, KindFederal: 1, KindPole: 2}, report.NullRecords)
	assert.Equal(t, 4, report.Nulls())
}

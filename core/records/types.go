// Package records defines the seven source-record kinds and the store that
// holds them after loading.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"observatory/core/region"
)

// Kind identifies a dataset
type Kind string

const (
	KindPolicy   Kind = "policies"
	KindFederal  Kind = "federal"
	KindFDI      Kind = "fdi"
	KindEnergy   Kind = "energy"
	KindGreenMfg Kind = "greenmfg"
	KindMine     Kind = "mines"
	KindPole     Kind = "polos"
)

// Kinds lists every dataset kind in load order
func Kinds() []Kind {
	return []Kind{KindPolicy, KindFederal, KindFDI, KindEnergy, KindGreenMfg, KindMine, KindPole}
}

// ParseKind validates a kind key
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Record is the view the filter and aggregator need of any source record.
type Record interface {
	Kind() Kind
	RecordID() int
	// RegionName is the unnormalized region field
	RegionName() string
	// YearValue is nil for undated records
	YearValue() *float64
	StatusValue() string
}

// Common holds the fields every dataset shares
type Common struct {
	ID        int      `json:"id"`
	State     string   `json:"state,omitempty"`
	Year      *float64 `json:"_year,omitempty"`
	Status    string   `json:"status,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

func (c *Common) RecordID() int       { return c.ID }
func (c *Common) RegionName() string  { return c.State }
func (c *Common) YearValue() *float64 { return c.Year }
func (c *Common) StatusValue() string { return c.Status }

// HasCoordinates reports whether the record can be placed as a marker
func (c *Common) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil && *c.Latitude != 0 && *c.Longitude != 0
}

// Flag is a 0/1 indicator as published in the source data. Any number equal
// to 1 and true set it; anything else is unset.
type Flag bool

// UnmarshalJSON implements json.Unmarshaler
func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "true" {
		*f = true
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		*f = false
		return nil
	}
	v, ok := jsonNumber(data)
	*f = Flag(ok && v == 1)
	return nil
}

// Link is a free-form reference to another dataset. Strings are kept trimmed;
// other truthy values keep their JSON text, and false, zero and null leave it
// empty.
type Link string

// UnmarshalJSON implements json.Unmarshaler
func (l *Link) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = Link(strings.TrimSpace(s))
		return nil
	}
	if truthy(data) {
		*l = Link(data)
	} else {
		*l = ""
	}
	return nil
}

// Set reports whether the reference is present
func (l Link) Set() bool { return l != "" }

// Policy is a subnational industrial policy
type Policy struct {
	Common
	Name           string `json:"name,omitempty"`
	Instrument     int    `json:"instrument"`
	Sector         string `json:"sector,omitempty"`
	HSSectionName  string `json:"hs_section_name,omitempty"`
	Green          Flag   `json:"green,omitempty"`
	HasTraining    Flag   `json:"has_training,omitempty"`
	RD             Flag   `json:"r&d,omitempty"`
	Conditionality Flag   `json:"conditionality,omitempty"`
	PlanMexico     Flag   `json:"planmex,omitempty"`
}

func (*Policy) Kind() Kind { return KindPolicy }

// UnmarshalJSON reads the instrument code leniently; an unreadable code is 0
func (p *Policy) UnmarshalJSON(data []byte) error {
	type plain Policy
	aux := struct {
		*plain
		Instrument looseInt `json:"instrument"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Instrument = int(aux.Instrument)
	return nil
}

// DisplayName falls back to "Policy #id" for unnamed policies
func (p *Policy) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Policy #%d", p.ID)
}

// InstrumentLabel maps the instrument code to its label; unknown codes read "Type N".
func (p *Policy) InstrumentLabel() string {
	if label, ok := instrumentLabels[p.Instrument]; ok {
		return label
	}
	return "Type " + strconv.Itoa(p.Instrument)
}

var instrumentLabels = map[int]string{
	1:  "Grant",
	2:  "Loan",
	3:  "Tax relief",
	4:  "Subsidy/Support",
	5:  "Loan guarantee",
	6:  "Joint venture",
	7:  "Public procurement",
	8:  "Infrastructure",
	9:  "Coordination mechanism",
	10: "FDI measures",
	11: "Workforce development",
}

// InstrumentLabels returns the code-to-label table
func InstrumentLabels() map[int]string {
	out := make(map[int]string, len(instrumentLabels))
	for k, v := range instrumentLabels {
		out[k] = v
	}
	return out
}

// FederalProgram is a national program that names one or more states
type FederalProgram struct {
	Common
	Name   string     `json:"name,omitempty"`
	States RegionList `json:"states,omitempty"`

	// Regions is States normalized at ingestion, one entry per distinct region
	Regions []region.ID `json:"-"`
}

func (*FederalProgram) Kind() Kind { return KindFederal }

// RegionName joins the raw state list
func (f *FederalProgram) RegionName() string { return strings.Join(f.States, ", ") }

// RegionList is the raw multi-region field of a federal program. The source
// publishes it as "A, B; C"; JSON arrays and scalars are accepted too.
type RegionList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *RegionList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*l = nil
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitRegionList(s)
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		var out []string
		for _, it := range items {
			out = append(out, SplitRegionList(it)...)
		}
		*l = out
	default:
		*l = SplitRegionList(string(data))
	}
	return nil
}

// SplitRegionList splits on ',' and ';', trimming blanks
func SplitRegionList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FDI is a foreign direct investment announcement
type FDI struct {
	Common
	CompanyName           string   `json:"company_name,omitempty"`
	Sector                string   `json:"sector,omitempty"`
	CountryOfOrigin       string   `json:"country_of_origin,omitempty"`
	InvestmentUSDMillions *float64 `json:"investment_usd_millions,omitempty"`
	Green                 Flag     `json:"green,omitempty"`
	LinkedPolicyIDs       IDList   `json:"linked_policy_ids,omitempty"`
}

func (*FDI) Kind() Kind { return KindFDI }

// HasPolicyLinks reports whether the record declares at least one policy link
func (f *FDI) HasPolicyLinks() bool { return len(f.LinkedPolicyIDs) > 0 }

// Energy is a generation, storage or grid project
type Energy struct {
	Common
	ProjectName           string   `json:"project_name,omitempty"`
	Technology            string   `json:"technology,omitempty"`
	ProjectType           string   `json:"project_type,omitempty"`
	Developer             string   `json:"developer,omitempty"`
	CapacityMW            *float64 `json:"capacity_mw,omitempty"`
	CleanEnergy           Flag     `json:"clean_energy,omitempty"`
	InvestmentUSDMillions *float64 `json:"investment_usd_millions,omitempty"`
	LinkedFederalProgram  Link     `json:"linked_federal_program,omitempty"`
}

func (*Energy) Kind() Kind { return KindEnergy }

// GreenManufacturing is a clean-technology manufacturing facility
type GreenManufacturing struct {
	Common
	Name                  string   `json:"name,omitempty"`
	Company               string   `json:"company,omitempty"`
	Sector                string   `json:"sector,omitempty"`
	Product               string   `json:"product,omitempty"`
	InvestmentUSDMillions *float64 `json:"investment_usd_millions,omitempty"`
}

func (*GreenManufacturing) Kind() Kind { return KindGreenMfg }

// Mine is a mining property
type Mine struct {
	Common
	PropertyName     string `json:"property_name,omitempty"`
	PrimaryCommodity string `json:"primary_commodity,omitempty"`
	DevelopmentStage string `json:"development_stage,omitempty"`
}

func (*Mine) Kind() Kind { return KindMine }

// DevelopmentPole is a "Polo de Bienestar" industrial development pole
type DevelopmentPole struct {
	Common
	Name                           string   `json:"name,omitempty"`
	Category                       string   `json:"category,omitempty"`
	InvestmentCommittedUSDMillions *float64 `json:"investment_committed_usd_millions,omitempty"`
	InvestmentProjectedUSDMillions *float64 `json:"investment_projected_usd_millions,omitempty"`
	CIITConnected                  Truthy   `json:"ciit_connected,omitempty"`
}

func (*DevelopmentPole) Kind() Kind { return KindPole }

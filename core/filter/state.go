package filter

import (
	"math"

	"observatory/core/records"
)

// MaxYear is the latest selectable year and the default cutoff
const MaxYear = 2026

// MinYearFloor bounds the year slider from below
const MinYearFloor = 2015

// State is the active set of filter controls. The zero value is not the
// default; use Default.
type State struct {
	Layer          Layer  `json:"layer" mapstructure:"layer"`
	Status         string `json:"status" mapstructure:"status"`
	Year           int    `json:"year" mapstructure:"year"`
	Cumulative     bool   `json:"cumulative" mapstructure:"cumulative"`
	IncludeUndated bool   `json:"show_undated" mapstructure:"show_undated"`
}

// Default returns the initial filter: all policies up to MaxYear, undated included
func Default() State {
	return State{
		Layer:          LayerPolicies,
		Status:         "",
		Year:           MaxYear,
		Cumulative:     true,
		IncludeUndated: true,
	}
}

// Passes evaluates the status and time predicates against r.
func (s State) Passes(r records.Record) bool {
	return s.PassesStatus(r.StatusValue()) && s.PassesYear(r.YearValue())
}

// PassesStatus matches exactly when a status is selected
func (s State) PassesStatus(status string) bool {
	return s.Status == "" || status == s.Status
}

// PassesYear applies the time window. Years are rounded half away from zero.
func (s State) PassesYear(year *float64) bool {
	if year == nil {
		return s.IncludeUndated
	}
	y := math.Round(*year)
	if s.Cumulative {
		return y <= float64(s.Year)
	}
	return y == float64(s.Year)
}

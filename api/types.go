// Package api - Request and response types of the HTTP read adapter.
package api

import (
	"github.com/paulmach/orb"

	"observatory/core/aggregate"
	"observatory/core/engine"
	"observatory/core/filter"
	"observatory/core/records"
)

// FilterRequest is the body of PUT /filter. Absent fields keep their current value.
type FilterRequest struct {
	Layer          *filter.Layer `json:"layer,omitempty"`
	Status         *string       `json:"status,omitempty"`
	Year           *int          `json:"year,omitempty"`
	Cumulative     *bool         `json:"cumulative,omitempty"`
	IncludeUndated *bool         `json:"show_undated,omitempty"`
}

// apply merges the request into s
func (f *FilterRequest) apply(s filter.State) filter.State {
	if f.Layer != nil {
		s.Layer = *f.Layer
	}
	if f.Status != nil {
		s.Status = *f.Status
	}
	if f.Year != nil {
		s.Year = *f.Year
	}
	if f.Cumulative != nil {
		s.Cumulative = *f.Cumulative
	}
	if f.IncludeUndated != nil {
		s.IncludeUndated = *f.IncludeUndated
	}
	return s
}

// FilterResponse describes the active filter and its controls
type FilterResponse struct {
	Filter   filter.State       `json:"filter"`
	Years    engine.YearRange   `json:"years"`
	Layers   []filter.LayerInfo `json:"layers"`
	Statuses []string           `json:"statuses"`
}

// RegionEntry is one row of GET /regions
type RegionEntry struct {
	Region   string       `json:"region"`
	Centroid orb.Point    `json:"centroid"`
	Value    engine.Value `json:"value"`
	HasShape bool         `json:"has_shape"`
}

// RegionsResponse is the map view for the active layer
type RegionsResponse struct {
	Layer   filter.Layer  `json:"layer"`
	Regions []RegionEntry `json:"regions"`
}

// RegionResponse is GET /regions/{region}
type RegionResponse struct {
	Region    string            `json:"region"`
	MatchedBy string            `json:"matched_by"`
	Centroid  orb.Point         `json:"centroid"`
	Summary   aggregate.Summary `json:"summary"`
}

// ValueResponse is GET /regions/{region}/value
type ValueResponse struct {
	Region string       `json:"region"`
	Layer  filter.Layer `json:"layer"`
	Value  engine.Value `json:"value"`
}

// RecordsResponse is GET /records/{kind}
type RecordsResponse struct {
	Kind  records.Kind     `json:"kind"`
	Count int              `json:"count"`
	Items []records.Record `json:"items"`
}

// ErrorBody is the envelope of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes a failed request
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

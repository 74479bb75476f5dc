// Package api - Thin read adapter over the query engine.
// Handlers decode input, call the engine, and serialize its results.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"observatory/core/engine"
	"observatory/core/filter"
	"observatory/core/linkage"
	"observatory/core/records"
	"observatory/core/region"
	"observatory/internal/errors"
	"observatory/internal/metrics"
)

// Server is the API server
type Server struct {
	engine  *engine.Engine
	metrics *metrics.Metrics
	logger  *zap.Logger
	mux     *http.ServeMux
	version string
}

// NewServer creates a new API server. m may be nil, in which case /metrics is not served.
func NewServer(version string, e *engine.Engine, m *metrics.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine:  e,
		metrics: m,
		logger:  logger,
		mux:     http.NewServeMux(),
		version: version,
	}

	s.registerRoutes()
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)

	// Filter state
	s.mux.HandleFunc("GET /filter", s.handleGetFilter)
	s.mux.HandleFunc("PUT /filter", s.handlePutFilter)

	// Region views
	s.mux.HandleFunc("GET /regions", s.handleRegions)
	s.mux.HandleFunc("GET /regions/{region}", s.handleRegion)
	s.mux.HandleFunc("GET /regions/{region}/value", s.handleRegionValue)
	s.mux.HandleFunc("GET /regions/{region}/shape", s.handleRegionShape)

	// Records and linkages
	s.mux.HandleFunc("GET /records/{kind}", s.handleRecords)
	s.mux.HandleFunc("GET /linkages", s.handleLinkages)
	s.mux.HandleFunc("GET /linkages/groups", s.handleLinkageGroups)
	s.mux.HandleFunc("GET /distribution/{layer}", s.handleDistribution)
	s.mux.HandleFunc("GET /distribution/{layer}/pie", s.handleBreakdown)
	s.mux.HandleFunc("GET /stats/{layer}", s.handleStats)
	s.mux.HandleFunc("GET /report", s.handleReport)

	if s.metrics != nil {
		s.mux.Handle("GET /metrics", s.metrics.Handler())
	}
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "observatory",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) filterResponse() FilterResponse {
	return FilterResponse{
		Filter:   s.engine.Filter(),
		Years:    s.engine.YearRange(),
		Layers:   filter.Layers(),
		Statuses: s.engine.Statuses(records.KindPolicy),
	}
}

// handleGetFilter handles GET /filter
func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.filterResponse(), http.StatusOK)
}

// handlePutFilter handles PUT /filter
func (s *Server) handlePutFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, errors.Wrap(errors.TypeTooLarge, "request body too large", err).
				WithContext("limit", tooLarge.Limit))
			return
		}
		s.writeError(w, errors.Wrap(errors.TypeInput, "invalid JSON body", err))
		return
	}

	next := req.apply(s.engine.Filter())
	if err := s.engine.SetFilter(next); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("filter changed",
		zap.String("layer", string(next.Layer)),
		zap.String("status", next.Status),
		zap.Int("year", next.Year),
		zap.Bool("cumulative", next.Cumulative),
		zap.Bool("show_undated", next.IncludeUndated),
	)
	s.writeJSON(w, s.filterResponse(), http.StatusOK)
}

// handleRegions handles GET /regions; ?layer= overrides the active layer
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	layer, err := s.layerParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	geometry := s.engine.Store().Geometry()
	resp := RegionsResponse{Layer: layer}
	for _, reg := range s.engine.Registry().Regions() {
		_, hasShape := geometry.Shape(reg.ID)
		resp.Regions = append(resp.Regions, RegionEntry{
			Region:   string(reg.ID),
			Centroid: reg.Centroid,
			Value:    s.engine.RegionValue(reg.ID, layer),
			HasShape: hasShape,
		})
	}
	s.writeJSON(w, resp, http.StatusOK)
}

// handleRegion handles GET /regions/{region}
func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	reg, match, err := s.regionParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	summary, _ := s.engine.RegionSummary(reg.ID)
	s.writeJSON(w, RegionResponse{
		Region:    string(reg.ID),
		MatchedBy: match.Rule.String(),
		Centroid:  reg.Centroid,
		Summary:   summary,
	}, http.StatusOK)
}

// handleRegionValue handles GET /regions/{region}/value?layer=
func (s *Server) handleRegionValue(w http.ResponseWriter, r *http.Request) {
	reg, _, err := s.regionParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	layer, err := s.layerParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, ValueResponse{
		Region: string(reg.ID),
		Layer:  layer,
		Value:  s.engine.RegionValue(reg.ID, layer),
	}, http.StatusOK)
}

// handleRegionShape handles GET /regions/{region}/shape as a GeoJSON Feature
func (s *Server) handleRegionShape(w http.ResponseWriter, r *http.Request) {
	reg, _, err := s.regionParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	shape, ok := s.engine.Store().Geometry().Shape(reg.ID)
	if !ok {
		s.writeError(w, errors.NotFound("region shape", string(reg.ID)))
		return
	}

	f := geojson.NewFeature(shape)
	f.Properties["name"] = string(reg.ID)
	if summary, ok := s.engine.RegionSummary(reg.ID); ok {
		f.Properties["policies_count"] = summary.PoliciesCount
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(f); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// handleRecords handles GET /records/{kind}
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	kind, ok := records.ParseKind(r.PathValue("kind"))
	if !ok {
		s.writeError(w, errors.NotFound("dataset", r.PathValue("kind")))
		return
	}
	items := s.engine.FilteredRecords(kind)
	s.writeJSON(w, RecordsResponse{Kind: kind, Count: len(items), Items: items}, http.StatusOK)
}

// handleLinkages handles GET /linkages[?region=]
func (s *Server) handleLinkages(w http.ResponseWriter, r *http.Request) {
	links := s.engine.Linkages()
	if raw := r.URL.Query().Get("region"); raw != "" {
		id, ok := s.engine.Store().Normalizer().Normalize(raw)
		if !ok {
			s.writeError(w, errors.NotFound("region", raw))
			return
		}
		links = s.engine.LinkagesForRegion(id)
	}
	if links == nil {
		links = []linkage.Linkage{}
	}
	s.writeJSON(w, map[string]interface{}{
		"linkages": links,
		"count":    len(links),
	}, http.StatusOK)
}

// handleLinkageGroups handles GET /linkages/groups
func (s *Server) handleLinkageGroups(w http.ResponseWriter, r *http.Request) {
	groups := s.engine.LinkageGroups()
	if groups == nil {
		groups = []linkage.StateGroup{}
	}
	s.writeJSON(w, map[string]interface{}{"groups": groups}, http.StatusOK)
}

// handleDistribution handles GET /distribution/{layer}
func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	layer, ok := filter.ParseLayer(r.PathValue("layer"))
	if !ok {
		s.writeError(w, errors.NotFound("layer", r.PathValue("layer")))
		return
	}
	s.writeJSON(w, s.engine.Distribution(layer), http.StatusOK)
}

// handleBreakdown handles GET /distribution/{layer}/pie
func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	layer, ok := filter.ParseLayer(r.PathValue("layer"))
	if !ok {
		s.writeError(w, errors.NotFound("layer", r.PathValue("layer")))
		return
	}
	s.writeJSON(w, s.engine.Breakdown(layer), http.StatusOK)
}

// handleStats handles GET /stats/{layer}
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	layer, ok := filter.ParseLayer(r.PathValue("layer"))
	if !ok {
		s.writeError(w, errors.NotFound("layer", r.PathValue("layer")))
		return
	}
	s.writeJSON(w, s.engine.Stats(layer), http.StatusOK)
}

// handleReport handles GET /report
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.engine.Report(), http.StatusOK)
}

// regionParam resolves the {region} path value through the normalizer, so
// aliases and unaccented names are accepted.
func (s *Server) regionParam(r *http.Request) (region.Region, region.Match, error) {
	raw := r.PathValue("region")
	match := s.engine.Store().Normalizer().Resolve(raw)
	if !match.Resolved() {
		return region.Region{}, match, errors.NotFound("region", raw)
	}
	reg, _ := s.engine.Registry().Get(match.ID)
	return reg, match, nil
}

func (s *Server) layerParam(r *http.Request) (filter.Layer, error) {
	raw := r.URL.Query().Get("layer")
	if raw == "" {
		return s.engine.Filter().Layer, nil
	}
	layer, ok := filter.ParseLayer(raw)
	if !ok {
		return "", errors.Input("unknown layer").WithContext("layer", raw)
	}
	return layer, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	typ := errors.TypeOf(err)
	status := http.StatusInternalServerError
	switch typ {
	case errors.TypeInput, errors.TypeParsing:
		status = http.StatusBadRequest
	case errors.TypeNotFound:
		status = http.StatusNotFound
	case errors.TypeTooLarge:
		status = http.StatusRequestEntityTooLarge
	default:
		s.logger.Error("request failed", zap.Error(err))
	}
	s.writeJSON(w, ErrorBody{Error: ErrorDetail{Code: string(typ), Message: err.Error()}}, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}

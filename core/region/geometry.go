package region

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// nameProperties are the feature properties probed, in order, for a region name.
var nameProperties = []string{"name", "ESTADO", "state_name"}

// Geometry binds boundary features of a region-geometry collection to canonical
// regions. Only the name lookup is performed; shapes are carried unchanged.
type Geometry struct {
	shapes    map[ID]orb.Geometry
	Unmatched []string
}

// BindGeometry parses a GeoJSON FeatureCollection and resolves each feature's
// name through n. Features whose name does not resolve are listed in Unmatched.
// A later feature for the same region replaces an earlier one.
func BindGeometry(data []byte, n *Normalizer) (*Geometry, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}

	g := &Geometry{shapes: make(map[ID]orb.Geometry, len(fc.Features))}
	for _, f := range fc.Features {
		name := featureName(f)
		id, ok := n.Normalize(name)
		if !ok {
			g.Unmatched = append(g.Unmatched, name)
			continue
		}
		g.shapes[id] = f.Geometry
	}
	return g, nil
}

func featureName(f *geojson.Feature) string {
	for _, key := range nameProperties {
		if s := f.Properties.MustString(key, ""); s != "" {
			return s
		}
	}
	return ""
}

// Shape returns the bound geometry for a region
func (g *Geometry) Shape(id ID) (orb.Geometry, bool) {
	if g == nil {
		return nil, false
	}
	s, ok := g.shapes[id]
	return s, ok
}

// Len returns the number of regions with a bound shape
func (g *Geometry) Len() int {
	if g == nil {
		return 0
	}
	return len(g.shapes)
}

// Missing lists registry regions without a bound shape, in registry order.
// Those regions fall back to their centroid for display.
func (g *Geometry) Missing(r *Registry) []ID {
	var out []ID
	for _, id := range r.IDs() {
		if _, ok := g.Shape(id); !ok {
			out = append(out, id)
		}
	}
	return out
}

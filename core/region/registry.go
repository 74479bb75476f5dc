// Package region holds the canonical region registry and the name normalizer
// that maps free-text region spellings onto it.
package region

import (
	"fmt"

	"github.com/paulmach/orb"
)

// ID is a canonical region identifier. It is the region's official display name.
type ID string

// String returns the identifier as a plain string
func (id ID) String() string {
	return string(id)
}

// Region is one entry of the closed canonical set
type Region struct {
	// ID is the canonical name
	ID ID `json:"id"`

	// Centroid is the label/marker anchor in lon/lat order
	Centroid orb.Point `json:"centroid"`
}

// Registry is the fixed, ordered set of canonical regions.
// Order is significant: it drives normalization fallbacks and summary listings.
type Registry struct {
	regions []Region
	index   map[ID]int
}

// NewRegistry builds a registry from regions in the given order.
func NewRegistry(regions []Region) (*Registry, error) {
	r := &Registry{
		regions: make([]Region, 0, len(regions)),
		index:   make(map[ID]int, len(regions)),
	}
	for _, reg := range regions {
		if reg.ID == "" {
			return nil, fmt.Errorf("region with empty id")
		}
		if _, exists := r.index[reg.ID]; exists {
			return nil, fmt.Errorf("region registered twice: %s", reg.ID)
		}
		r.index[reg.ID] = len(r.regions)
		r.regions = append(r.regions, reg)
	}
	return r, nil
}

// MustRegistry is NewRegistry that panics on a malformed static table
func MustRegistry(regions []Region) *Registry {
	r, err := NewRegistry(regions)
	if err != nil {
		panic(err)
	}
	return r
}

// Get returns a region by ID
func (r *Registry) Get(id ID) (Region, bool) {
	i, ok := r.index[id]
	if !ok {
		return Region{}, false
	}
	return r.regions[i], true
}

// Contains reports whether id is canonical
func (r *Registry) Contains(id ID) bool {
	_, ok := r.index[id]
	return ok
}

// IDs returns all identifiers in registry order
func (r *Registry) IDs() []ID {
	ids := make([]ID, len(r.regions))
	for i, reg := range r.regions {
		ids[i] = reg.ID
	}
	return ids
}

// Regions returns a copy of all regions in registry order
func (r *Registry) Regions() []Region {
	out := make([]Region, len(r.regions))
	copy(out, r.regions)
	return out
}

// Len returns the number of canonical regions
func (r *Registry) Len() int {
	return len(r.regions)
}

// pt converts the [lat, lon] pairs of the source table to an orb.Point
func pt(lat, lon float64) orb.Point {
	return orb.Point{lon, lat}
}

// MexicoStates returns the 32 federal entities of Mexico in dashboard order.
func MexicoStates() *Registry {
	return MustRegistry([]Region{
		{ID: "Aguascalientes", Centroid: pt(21.88, -102.29)},
		{ID: "Baja California", Centroid: pt(30.84, -115.28)},
		{ID: "Baja California Sur", Centroid: pt(26.04, -111.66)},
		{ID: "Campeche", Centroid: pt(19.83, -90.53)},
		{ID: "Chiapas", Centroid: pt(16.75, -93.13)},
		{ID: "Chihuahua", Centroid: pt(28.63, -106.09)},
		{ID: "Ciudad de México", Centroid: pt(19.43, -99.13)},
		{ID: "Coahuila", Centroid: pt(27.06, -101.71)},
		{ID: "Colima", Centroid: pt(19.24, -103.72)},
		{ID: "Durango", Centroid: pt(24.02, -104.66)},
		{ID: "Estado de México", Centroid: pt(19.49, -99.87)},
		{ID: "Guanajuato", Centroid: pt(21.02, -101.26)},
		{ID: "Guerrero", Centroid: pt(17.44, -99.55)},
		{ID: "Hidalgo", Centroid: pt(20.47, -98.99)},
		{ID: "Jalisco", Centroid: pt(20.66, -103.35)},
		{ID: "Michoacán", Centroid: pt(19.57, -101.71)},
		{ID: "Morelos", Centroid: pt(18.68, -99.23)},
		{ID: "Nayarit", Centroid: pt(21.75, -104.85)},
		{ID: "Nuevo León", Centroid: pt(25.59, -99.99)},
		{ID: "Oaxaca", Centroid: pt(17.07, -96.73)},
		{ID: "Puebla", Centroid: pt(19.04, -98.21)},
		{ID: "Querétaro", Centroid: pt(20.59, -100.39)},
		{ID: "Quintana Roo", Centroid: pt(19.18, -88.48)},
		{ID: "San Luis Potosí", Centroid: pt(22.15, -100.98)},
		{ID: "Sinaloa", Centroid: pt(24.81, -107.39)},
		{ID: "Sonora", Centroid: pt(29.07, -110.96)},
		{ID: "Tabasco", Centroid: pt(17.99, -92.93)},
		{ID: "Tamaulipas", Centroid: pt(24.27, -98.84)},
		{ID: "Tlaxcala", Centroid: pt(19.32, -98.24)},
		{ID: "Veracruz", Centroid: pt(19.18, -96.14)},
		{ID: "Yucatán", Centroid: pt(20.97, -89.62)},
		{ID: "Zacatecas", Centroid: pt(22.77, -102.58)},
	})
}

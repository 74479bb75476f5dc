// Package filter holds the dashboard filter state and the predicate every
// record kind is evaluated against.
package filter

// Layer selects which metric the map colours regions by
type Layer string

const (
	LayerPolicies    Layer = "policies"
	LayerInstruments Layer = "instruments"
	LayerFederal     Layer = "federal"
	LayerFDI         Layer = "fdi"
	LayerSectors     Layer = "sectors"
	LayerHSCodes     Layer = "hs_codes"
	LayerEducation   Layer = "education"
	LayerRD          Layer = "rd"
	LayerEnergy      Layer = "energy"
	LayerGreenMfg    Layer = "greenmfg"
	LayerMines       Layer = "mines"
	LayerPoles       Layer = "polos"
)

// LayerType is how a layer is drawn
type LayerType int

const (
	// Sequential colours regions on a numeric scale
	Sequential LayerType = iota
	// Categorical colours regions by their dominant category
	Categorical
	// Markers draws one point per record
	Markers
)

func (t LayerType) String() string {
	switch t {
	case Sequential:
		return "choropleth"
	case Categorical:
		return "choropleth-categorical"
	case Markers:
		return "markers"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (t LayerType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// LayerInfo describes one layer
type LayerInfo struct {
	Key   Layer     `json:"key"`
	Title string    `json:"title"`
	Type  LayerType `json:"type"`
}

var layers = []LayerInfo{
	{LayerPolicies, "Subnational Industrial Policies", Sequential},
	{LayerInstruments, "Instruments", Categorical},
	{LayerFederal, "Federal Programs", Sequential},
	{LayerFDI, "Foreign Direct Investment (FDI)", Sequential},
	{LayerSectors, "Dominant Sector", Categorical},
	{LayerHSCodes, "HS Code Sectors", Categorical},
	{LayerEducation, "Education Policies", Sequential},
	{LayerRD, "R&D Policies", Sequential},
	{LayerEnergy, "Energy Projects", Markers},
	{LayerGreenMfg, "Green Manufacturing", Markers},
	{LayerMines, "Mines", Markers},
	{LayerPoles, "Development Poles (Polos de Bienestar)", Markers},
}

// Layers returns every layer in menu order
func Layers() []LayerInfo {
	out := make([]LayerInfo, len(layers))
	copy(out, layers)
	return out
}

// Info returns the description of l
func (l Layer) Info() (LayerInfo, bool) {
	for _, li := range layers {
		if li.Key == l {
			return li, true
		}
	}
	return LayerInfo{}, false
}

// Valid reports whether l is a known layer
func (l Layer) Valid() bool {
	_, ok := l.Info()
	return ok
}

// Categorical reports whether the layer value is a category label rather than a number
func (l Layer) Categorical() bool {
	li, ok := l.Info()
	return ok && li.Type == Categorical
}

// ParseLayer validates a layer key
func ParseLayer(s string) (Layer, bool) {
	l := Layer(s)
	return l, l.Valid()
}

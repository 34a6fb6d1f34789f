package maps

import (
	"encoding/json"
)

type dimJSON struct {
	Name  string    `json:"name"`
	Unit  string    `json:"unit"`
	IsLog bool      `json:"is_log"`
	Edges []float64 `json:"bin_edges"`
}

type mapJSON struct {
	Name    string    `json:"name"`
	Binning []dimJSON `json:"binning"`
	Hist    []float64 `json:"hist"`
}

type mapSetJSON struct {
	Name string `json:"name"`
	Maps []*Map `json:"maps"`
}

// MarshalJSON encodes the map with its binning edges.
func (m *Map) MarshalJSON() ([]byte, error) {
	out := mapJSON{Name: m.Name, Hist: m.Hist}
	for _, d := range m.Binning.Dims() {
		out.Binning = append(out.Binning, dimJSON{
			Name:  d.Name(),
			Unit:  d.Unit().String(),
			IsLog: d.IsLog(),
			Edges: d.Edges(),
		})
	}
	return json.Marshal(out)
}

// MarshalJSON encodes the set and its maps in order.
func (s *MapSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(mapSetJSON{Name: s.Name, Maps: s.maps})
}

// Package facility models the fixed facility locations ("sedes") that are
// evaluated against every drawn zone alongside the uploaded personnel.
package facility

import (
	"sort"

	"github.com/turtacn/Continuity-Map/internal/config"
)

// Display carries presentation hints only.
type Display struct {
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// FixedLocation is one configured facility.
type FixedLocation struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Display   Display `json:"display"`
}

// Registry is the immutable facility set loaded at process start.
type Registry struct {
	locations []FixedLocation
	byName    map[string]int
}

// NewRegistry validates list and builds a Registry.  Configuration order is
// preserved; it is the order facilities appear in reports.
func NewRegistry(list []config.FacilityConfig) (*Registry, error) {
	if err := config.ValidateFacilities(list); err != nil {
		return nil, err
	}
	r := &Registry{
		locations: make([]FixedLocation, len(list)),
		byName:    make(map[string]int, len(list)),
	}
	for i, f := range list {
		r.locations[i] = FixedLocation{
			Name:      f.Name,
			Address:   f.Address,
			Latitude:  f.Latitude,
			Longitude: f.Longitude,
			Display:   Display{Color: f.Color, Icon: f.Icon},
		}
		r.byName[f.Name] = i
	}
	return r, nil
}

// All returns a copy of every facility in configuration order.
func (r *Registry) All() []FixedLocation {
	out := make([]FixedLocation, len(r.locations))
	copy(out, r.locations)
	return out
}

// Len returns the number of facilities.
func (r *Registry) Len() int { return len(r.locations) }

// Lookup finds a facility by exact name.
func (r *Registry) Lookup(name string) (FixedLocation, bool) {
	i, ok := r.byName[name]
	if !ok {
		return FixedLocation{}, false
	}
	return r.locations[i], true
}

// Names returns the facility names sorted alphabetically.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, l.Name)
	}
	sort.Strings(out)
	return out
}

//Personal.AI order the ending

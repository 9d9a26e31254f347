// Package solar holds the per-city solar radiation and electricity rate
// tables the energy calculation reads from.
package solar

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/facade-energy/internal/model"
)

// ErrUnknownCity is returned when a city is absent from the tables.
var ErrUnknownCity = eris.New("city not in radiation/rate tables")

// RadiationTable maps city -> direction -> solar irradiance.
type RadiationTable map[string]map[model.Direction]float64

// RateTable maps city -> electricity rate (currency per kWh).
type RateTable map[string]float64

// CityEntry is one city's row in a tables file.
type CityEntry struct {
	Name      string                      `yaml:"name"`
	Rate      float64                     `yaml:"rate"`
	Radiation map[model.Direction]float64 `yaml:"radiation"`
}

// requiredDirections must be present for every city.
var requiredDirections = []model.Direction{model.North, model.South, model.East, model.West, model.Roof}

// Tables is an immutable pair of radiation and rate tables sharing one
// ordered city list. Safe for concurrent reads.
type Tables struct {
	cities    []string
	radiation RadiationTable
	rates     RateTable
}

// New builds Tables from city entries. City order follows the entries.
func New(entries []CityEntry) (*Tables, error) {
	t := &Tables{
		cities:    make([]string, 0, len(entries)),
		radiation: make(RadiationTable, len(entries)),
		rates:     make(RateTable, len(entries)),
	}
	for _, e := range entries {
		if e.Name == "" {
			return nil, eris.New("solar: city entry without name")
		}
		if _, dup := t.rates[e.Name]; dup {
			return nil, eris.Errorf("solar: duplicate city %q", e.Name)
		}
		byDir := make(map[model.Direction]float64, len(e.Radiation))
		for d, g := range e.Radiation {
			byDir[d] = g
		}
		t.cities = append(t.cities, e.Name)
		t.radiation[e.Name] = byDir
		t.rates[e.Name] = e.Rate
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromMaps builds Tables from separate radiation and rate maps. Cities are
// ordered by name since maps carry no order.
func FromMaps(radiation RadiationTable, rates RateTable) (*Tables, error) {
	names := make([]string, 0, len(radiation))
	for city := range radiation {
		names = append(names, city)
	}
	sort.Strings(names)

	entries := make([]CityEntry, 0, len(names))
	for _, city := range names {
		rate, ok := rates[city]
		if !ok {
			return nil, eris.Errorf("solar: city %q has radiation but no rate", city)
		}
		entries = append(entries, CityEntry{Name: city, Rate: rate, Radiation: radiation[city]})
	}
	for city := range rates {
		if _, ok := radiation[city]; !ok {
			return nil, eris.Errorf("solar: city %q has a rate but no radiation", city)
		}
	}
	return New(entries)
}

// Validate checks that every city has a non-negative rate and a
// non-negative irradiance for all five directions.
func (t *Tables) Validate() error {
	if len(t.cities) == 0 {
		return eris.New("solar: no cities")
	}
	for _, city := range t.cities {
		if t.rates[city] < 0 {
			return eris.Errorf("solar: negative rate for %q", city)
		}
		for _, d := range requiredDirections {
			g, ok := t.radiation[city][d]
			if !ok {
				return eris.Errorf("solar: %q missing %s radiation", city, d)
			}
			if g < 0 {
				return eris.Errorf("solar: negative %s radiation for %q", d, city)
			}
		}
	}
	return nil
}

// Cities returns the supported cities in table order.
func (t *Tables) Cities() []string {
	out := make([]string, len(t.cities))
	copy(out, t.cities)
	return out
}

// Has reports whether city is in the tables.
func (t *Tables) Has(city string) bool {
	_, ok := t.rates[city]
	return ok
}

// Radiation returns the irradiance for a city and direction.
func (t *Tables) Radiation(city string, dir model.Direction) (float64, error) {
	byDir, ok := t.radiation[city]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownCity, "radiation for %q", city)
	}
	g, ok := byDir[dir]
	if !ok {
		return 0, eris.Errorf("solar: %q has no %s radiation", city, dir)
	}
	return g, nil
}

// Rate returns the electricity rate for a city.
func (t *Tables) Rate(city string) (float64, error) {
	r, ok := t.rates[city]
	if !ok {
		return 0, eris.Wrapf(ErrUnknownCity, "rate for %q", city)
	}
	return r, nil
}

package solar

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/facade-energy/internal/model"
)

type tablesFile struct {
	Cities []CityEntry `yaml:"cities"`
}

// Parse decodes a YAML tables document.
func Parse(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "solar: decode tables")
	}
	return New(f.Cities)
}

// LoadFile reads a YAML tables file from disk.
func LoadFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "solar: read %s", path)
	}
	t, err := Parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "solar: load %s", path)
	}
	return t, nil
}

// Load returns the tables at path, or the built-in tables when path is empty.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// Default returns the built-in tables for Bangalore, Mumbai, Kolkata and Delhi.
func Default() *Tables {
	t, err := New(defaultEntries())
	if err != nil {
		panic(err)
	}
	return t
}

func defaultEntries() []CityEntry {
	return []CityEntry{
		{
			Name: "Bangalore", Rate: 6.5,
			Radiation: map[model.Direction]float64{
				model.North: 140, model.South: 220, model.East: 300, model.West: 290, model.Roof: 530,
			},
		},
		{
			Name: "Mumbai", Rate: 9.5,
			Radiation: map[model.Direction]float64{
				model.North: 150, model.South: 250, model.East: 320, model.West: 310, model.Roof: 560,
			},
		},
		{
			Name: "Kolkata", Rate: 7.5,
			Radiation: map[model.Direction]float64{
				model.North: 155, model.South: 260, model.East: 330, model.West: 320, model.Roof: 580,
			},
		},
		{
			Name: "Delhi", Rate: 8.5,
			Radiation: map[model.Direction]float64{
				model.North: 170, model.South: 280, model.East: 350, model.West: 340, model.Roof: 620,
			},
		},
	}
}

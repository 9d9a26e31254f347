package energy

import (
	"context"
	"sync"

	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/solar"
)

type mockFinder struct {
	mu        sync.Mutex
	buildings map[string]*model.Building
	err       error
	calls     int
}

func newMockFinder(buildings ...*model.Building) *mockFinder {
	m := &mockFinder{buildings: make(map[string]*model.Building)}
	for _, b := range buildings {
		m.buildings[b.ID] = b
	}
	return m
}

func (m *mockFinder) GetBuilding(_ context.Context, id string) (*model.Building, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.buildings[id]
	if !ok {
		return nil, model.ErrBuildingNotFound
	}
	cp := *b
	return &cp, nil
}

// nilFinder mimics a lookup that reports absence with a nil building.
type nilFinder struct{}

func (nilFinder) GetBuilding(context.Context, string) (*model.Building, error) { return nil, nil }

func uniformRadiation(g float64) map[model.Direction]float64 {
	return map[model.Direction]float64{
		model.North: g, model.South: g, model.East: g, model.West: g, model.Roof: g,
	}
}

func testTables(t interface{ Fatalf(string, ...any) }) *solar.Tables {
	tables, err := solar.New([]solar.CityEntry{
		{Name: "Mumbai", Rate: 10, Radiation: map[model.Direction]float64{
			model.North: 200, model.South: 300, model.East: 400, model.West: 500, model.Roof: 800,
		}},
		{Name: "Delhi", Rate: 8, Radiation: uniformRadiation(250)},
		{Name: "Kolkata", Rate: 5, Radiation: uniformRadiation(100)},
	})
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	return tables
}

func boxBuilding(id string) *model.Building {
	return &model.Building{
		ID:     id,
		Name:   "box-" + id,
		Height: 10,
		Dimensions: model.Dimensions{
			North: model.Facade{Width: 5},
			South: model.Facade{Width: 5},
			East:  model.Facade{Width: 5},
			West:  model.Facade{Width: 5},
		},
		WWR:  0.2,
		SHGC: 0.3,
	}
}

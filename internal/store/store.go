package store

import (
	"context"

	"github.com/sells-group/facade-energy/internal/model"
)

// BuildingFilter specifies criteria for listing buildings.
type BuildingFilter struct {
	Name   string `json:"name,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for buildings and their analyses.
// Lookups of unknown ids return model.ErrBuildingNotFound.
type Store interface {
	// Buildings
	CreateBuilding(ctx context.Context, b model.Building) (*model.Building, error)
	ImportBuildings(ctx context.Context, buildings []model.Building) ([]model.Building, error)
	GetBuilding(ctx context.Context, id string) (*model.Building, error)
	ListBuildings(ctx context.Context, filter BuildingFilter) ([]model.Building, error)
	UpdateBuilding(ctx context.Context, id string, b model.Building) (*model.Building, error)
	DeleteBuilding(ctx context.Context, id string) (*model.Building, error)

	// Analysis history
	RecordAnalysis(ctx context.Context, buildingID, city string, totals model.Totals) (*model.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, buildingID string, limit int) ([]model.AnalysisRecord, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Migrate(ctx context.Context) error
	Close() error
}

const defaultListLimit = 100

func listLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

// skylightColumns flattens an optional skylight into nullable columns.
func skylightColumns(s *model.Skylight) (height, width *float64) {
	if s == nil {
		return nil, nil
	}
	h, w := s.Height, s.Width
	return &h, &w
}

func skylightFromColumns(height, width *float64) *model.Skylight {
	if height == nil && width == nil {
		return nil
	}
	s := &model.Skylight{}
	if height != nil {
		s.Height = *height
	}
	if width != nil {
		s.Width = *width
	}
	return s
}

package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// ErrBuildingNotFound is returned when a building id does not resolve.
var ErrBuildingNotFound = eris.New("building not found")

// Direction names a façade. The four cardinal directions are walls; Roof is
// the skylight.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
	Roof  Direction = "roof"
)

// CardinalDirections lists the wall façades in evaluation order.
var CardinalDirections = []Direction{North, South, East, West}

// Facade holds the dimensions of one wall.
type Facade struct {
	Width float64 `json:"width"`
}

// Dimensions holds the wall widths of a building.
type Dimensions struct {
	North Facade `json:"north"`
	South Facade `json:"south"`
	East  Facade `json:"east"`
	West  Facade `json:"west"`
}

// Width returns the wall width for a cardinal direction, 0 for anything else.
func (d Dimensions) Width(dir Direction) float64 {
	switch dir {
	case North:
		return d.North.Width
	case South:
		return d.South.Width
	case East:
		return d.East.Width
	case West:
		return d.West.Width
	default:
		return 0
	}
}

// Skylight holds the roof glazing dimensions.
type Skylight struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Area returns the glazed roof area.
func (s Skylight) Area() float64 {
	return s.Height * s.Width
}

// Building is the geometry and glazing description of a building.
type Building struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Height     float64    `json:"height"`
	Dimensions Dimensions `json:"dimensions"`
	WWR        float64    `json:"wwr"`
	SHGC       float64    `json:"shgc"`
	Skylight   *Skylight  `json:"skylight,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// HasSkylight reports whether the roof contributes to an analysis. Both
// dimensions must be strictly positive.
func (b *Building) HasSkylight() bool {
	return b.Skylight != nil && b.Skylight.Height > 0 && b.Skylight.Width > 0
}

// Package energy computes solar heat gain, cooling load, energy use and
// electricity cost for building façades, and aggregates them per building,
// per pair of buildings and per city.
package energy

import "github.com/sells-group/facade-energy/internal/model"

const (
	// DeltaT is the fixed temperature-difference factor in the heat gain formula.
	DeltaT = 1.0
	// BTUPerKWh converts BTU to kWh.
	BTUPerKWh = 3412.0
	// EquipmentEfficiency divides cooling load into consumed energy.
	EquipmentEfficiency = 4.0
)

// Glazing computes the result for a glazed area admitting irradiance g at
// the given solar heat gain coefficient, priced at rate per kWh.
func Glazing(area, shgc, g, rate float64) model.FacadeResult {
	heatGain := area * shgc * g * DeltaT
	coolingLoad := heatGain / BTUPerKWh
	energy := coolingLoad / EquipmentEfficiency
	return model.FacadeResult{
		WindowArea:        area,
		HeatGainBTU:       heatGain,
		CoolingLoadKWh:    coolingLoad,
		EnergyConsumedKWh: energy,
		Cost:              energy * rate,
	}
}

// Wall computes one wall façade. The glazed area is height * width * wwr.
func Wall(height, width, wwr, shgc, g, rate float64) model.FacadeResult {
	return Glazing(height*width*wwr, shgc, g, rate)
}

// Skylight computes the roof façade from the skylight area.
func Skylight(s model.Skylight, shgc, g, rate float64) model.FacadeResult {
	r := Glazing(s.Area(), shgc, g, rate)
	r.SkylightArea = r.WindowArea
	return r
}

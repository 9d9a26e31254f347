package model

import "time"

// FacadeResult is the energy breakdown for one façade. For the roof,
// WindowArea and SkylightArea both hold the skylight area.
type FacadeResult struct {
	WindowArea        float64 `json:"windowArea"`
	SkylightArea      float64 `json:"skylightArea,omitempty"`
	HeatGainBTU       float64 `json:"heatGainBTU"`
	CoolingLoadKWh    float64 `json:"coolingLoadKWh"`
	EnergyConsumedKWh float64 `json:"energyConsumedKWh"`
	Cost              float64 `json:"cost"`
}

// Totals are the building-level sums over all façades.
type Totals struct {
	TotalHeatGainBTU       float64 `json:"totalHeatGainBTU"`
	TotalCoolingLoadKWh    float64 `json:"totalCoolingLoadKWh"`
	TotalEnergyConsumedKWh float64 `json:"totalEnergyConsumedKWh"`
	TotalCost              float64 `json:"totalCost"`
}

// Add accumulates a façade result into the totals.
func (t *Totals) Add(r FacadeResult) {
	t.TotalHeatGainBTU += r.HeatGainBTU
	t.TotalCoolingLoadKWh += r.CoolingLoadKWh
	t.TotalEnergyConsumedKWh += r.EnergyConsumedKWh
	t.TotalCost += r.Cost
}

// AnalysisResult is the outcome of analyzing one building in one city.
type AnalysisResult struct {
	Totals
	FacadeResults map[Direction]FacadeResult `json:"facadeResults"`
}

// CityRanking is one row of a building's cross-city ranking.
type CityRanking struct {
	City string `json:"city"`
	Totals
}

// Comparison pairs the analyses of two buildings in the same city.
type Comparison struct {
	Result1 AnalysisResult `json:"result1"`
	Result2 AnalysisResult `json:"result2"`
}

// AnalysisRecord is a persisted snapshot of one analysis.
type AnalysisRecord struct {
	ID         string `json:"id"`
	BuildingID string `json:"buildingId"`
	City       string `json:"city"`
	Totals
	CreatedAt time.Time `json:"createdAt"`
}

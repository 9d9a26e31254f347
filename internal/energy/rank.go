package energy

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/facade-energy/internal/model"
)

// Rank analyzes one building in every city of the tables and returns the
// results ordered by total cost, highest first. Cities with equal cost keep
// table order. Any per-city failure fails the ranking.
func (a *Analyzer) Rank(ctx context.Context, buildingID string) ([]model.CityRanking, error) {
	start := time.Now()
	res, err := a.rank(ctx, buildingID)
	a.metrics.ObserveAnalysis("rank", outcome(err), time.Since(start))
	return res, err
}

func (a *Analyzer) rank(ctx context.Context, buildingID string) ([]model.CityRanking, error) {
	cities := a.tables.Cities()
	rankings := make([]model.CityRanking, len(cities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, city := range cities {
		g.Go(func() error {
			res, err := a.analyze(gctx, buildingID, city)
			if err != nil {
				return err
			}
			rankings[i] = model.CityRanking{City: city, Totals: res.Totals}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByCost(rankings)

	zap.L().Debug("building ranked",
		zap.String("building_id", buildingID),
		zap.Int("cities", len(rankings)),
	)
	return rankings, nil
}

// SortByCost orders rankings by TotalCost descending, keeping the input
// order of equal costs.
func SortByCost(rankings []model.CityRanking) {
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].TotalCost > rankings[j].TotalCost
	})
}

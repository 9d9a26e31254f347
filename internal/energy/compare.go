package energy

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/facade-energy/internal/model"
)

// Compare analyzes two buildings in the same city concurrently. Either
// failure fails the comparison; no partial result is returned.
func (a *Analyzer) Compare(ctx context.Context, buildingID1, buildingID2, city string) (*model.Comparison, error) {
	start := time.Now()
	res, err := a.compare(ctx, buildingID1, buildingID2, city)
	a.metrics.ObserveAnalysis("compare", outcome(err), time.Since(start))
	return res, err
}

func (a *Analyzer) compare(ctx context.Context, buildingID1, buildingID2, city string) (*model.Comparison, error) {
	var r1, r2 *model.AnalysisResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r1, err = a.analyze(gctx, buildingID1, city)
		return err
	})
	g.Go(func() error {
		var err error
		r2, err = a.analyze(gctx, buildingID2, city)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.Comparison{Result1: *r1, Result2: *r2}, nil
}

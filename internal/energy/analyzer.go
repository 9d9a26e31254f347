package energy

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/facade-energy/internal/model"
	"github.com/sells-group/facade-energy/internal/monitoring"
	"github.com/sells-group/facade-energy/internal/solar"
)

// BuildingFinder resolves a building by id. Implementations return
// model.ErrBuildingNotFound (or a nil building) when the id does not resolve.
type BuildingFinder interface {
	GetBuilding(ctx context.Context, id string) (*model.Building, error)
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithConcurrency bounds the number of per-city analyses Rank runs at once.
func WithConcurrency(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithMetrics records operation outcomes and durations.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// Analyzer evaluates buildings against immutable radiation and rate tables.
// It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	tables      *solar.Tables
	finder      BuildingFinder
	concurrency int
	metrics     *monitoring.Metrics
}

// NewAnalyzer creates an Analyzer reading buildings from finder.
func NewAnalyzer(tables *solar.Tables, finder BuildingFinder, opts ...Option) *Analyzer {
	a := &Analyzer{
		tables:      tables,
		finder:      finder,
		concurrency: 4,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Tables returns the tables the analyzer reads from.
func (a *Analyzer) Tables() *solar.Tables {
	return a.tables
}

// Analyze loads a building and evaluates it in city.
func (a *Analyzer) Analyze(ctx context.Context, buildingID, city string) (*model.AnalysisResult, error) {
	start := time.Now()
	res, err := a.analyze(ctx, buildingID, city)
	a.metrics.ObserveAnalysis("analyze", outcome(err), time.Since(start))
	return res, err
}

func (a *Analyzer) analyze(ctx context.Context, buildingID, city string) (*model.AnalysisResult, error) {
	b, err := a.building(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeBuilding(b, city)
}

func (a *Analyzer) building(ctx context.Context, id string) (*model.Building, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "energy: load building")
	}
	b, err := a.finder.GetBuilding(ctx, id)
	if err != nil {
		return nil, eris.Wrapf(err, "energy: load building %s", id)
	}
	if b == nil {
		return nil, eris.Wrapf(model.ErrBuildingNotFound, "energy: load building %s", id)
	}
	return b, nil
}

// AnalyzeBuilding evaluates the four walls and, when present, the skylight
// of b in city. It does not check city against any enumeration: a city
// absent from the tables fails with solar.ErrUnknownCity.
func (a *Analyzer) AnalyzeBuilding(b *model.Building, city string) (*model.AnalysisResult, error) {
	rate, err := a.tables.Rate(city)
	if err != nil {
		return nil, err
	}

	res := &model.AnalysisResult{
		FacadeResults: make(map[model.Direction]model.FacadeResult, 5),
	}

	for _, dir := range model.CardinalDirections {
		g, err := a.tables.Radiation(city, dir)
		if err != nil {
			return nil, err
		}
		fr := Wall(b.Height, b.Dimensions.Width(dir), b.WWR, b.SHGC, g, rate)
		res.FacadeResults[dir] = fr
		res.Add(fr)
		a.metrics.ObserveFacade(string(dir))
	}

	if b.HasSkylight() {
		g, err := a.tables.Radiation(city, model.Roof)
		if err != nil {
			return nil, err
		}
		fr := Skylight(*b.Skylight, b.SHGC, g, rate)
		res.FacadeResults[model.Roof] = fr
		res.Add(fr)
		a.metrics.ObserveFacade(string(model.Roof))
	}

	zap.L().Debug("building analyzed",
		zap.String("building_id", b.ID),
		zap.String("city", city),
		zap.Float64("total_cost", res.TotalCost),
	)

	return res, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return monitoring.OutcomeSuccess
	case eris.Is(err, model.ErrBuildingNotFound):
		return monitoring.OutcomeNotFound
	case eris.Is(err, solar.ErrUnknownCity):
		return monitoring.OutcomeUnknownCity
	default:
		return monitoring.OutcomeError
	}
}

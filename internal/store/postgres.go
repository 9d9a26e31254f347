package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/facade-energy/internal/db"
	"github.com/sells-group/facade-energy/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS buildings (
	id              TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name            TEXT NOT NULL,
	height          DOUBLE PRECISION NOT NULL,
	north_width     DOUBLE PRECISION NOT NULL,
	south_width     DOUBLE PRECISION NOT NULL,
	east_width      DOUBLE PRECISION NOT NULL,
	west_width      DOUBLE PRECISION NOT NULL,
	wwr             DOUBLE PRECISION NOT NULL,
	shgc            DOUBLE PRECISION NOT NULL,
	skylight_height DOUBLE PRECISION,
	skylight_width  DOUBLE PRECISION,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS analyses (
	id                        TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	building_id               TEXT NOT NULL REFERENCES buildings(id) ON DELETE CASCADE,
	city                      TEXT NOT NULL,
	total_heat_gain_btu       DOUBLE PRECISION NOT NULL,
	total_cooling_load_kwh    DOUBLE PRECISION NOT NULL,
	total_energy_consumed_kwh DOUBLE PRECISION NOT NULL,
	total_cost                DOUBLE PRECISION NOT NULL,
	created_at                TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_buildings_name ON buildings(name);
CREATE INDEX IF NOT EXISTS idx_analyses_building_id ON analyses(building_id, created_at DESC);
`

var buildingCopyColumns = []string{
	"id", "name", "height", "north_width", "south_width", "east_width", "west_width",
	"wwr", "shgc", "skylight_height", "skylight_width", "created_at", "updated_at",
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func buildingRow(b *model.Building) []any {
	skyH, skyW := skylightColumns(b.Skylight)
	return []any{
		b.ID, b.Name, b.Height,
		b.Dimensions.North.Width, b.Dimensions.South.Width, b.Dimensions.East.Width, b.Dimensions.West.Width,
		b.WWR, b.SHGC, skyH, skyW, b.CreatedAt, b.UpdatedAt,
	}
}

func (s *PostgresStore) CreateBuilding(ctx context.Context, b model.Building) (*model.Building, error) {
	now := time.Now().UTC()
	b.ID = uuid.New().String()
	b.CreatedAt, b.UpdatedAt = now, now

	_, err := s.pool.Exec(ctx,
		`INSERT INTO buildings (`+buildingColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		buildingRow(&b)...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert building")
	}
	return &b, nil
}

// ImportBuildings bulk-loads buildings with COPY in a single transaction.
func (s *PostgresStore) ImportBuildings(ctx context.Context, buildings []model.Building) ([]model.Building, error) {
	if len(buildings) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	out := make([]model.Building, len(buildings))
	rows := make([][]any, len(buildings))
	for i, b := range buildings {
		b.ID = uuid.New().String()
		b.CreatedAt, b.UpdatedAt = now, now
		out[i] = b
		rows[i] = buildingRow(&out[i])
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: import begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := db.CopyFrom(ctx, tx, "buildings", buildingCopyColumns, rows); err != nil {
		return nil, eris.Wrap(err, "postgres: import buildings")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: import commit")
	}
	return out, nil
}

func (s *PostgresStore) GetBuilding(ctx context.Context, id string) (*model.Building, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+buildingColumns+` FROM buildings WHERE id = $1`, id,
	)
	b, err := scanPgBuilding(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get building %s", id)
	}
	return b, nil
}

func (s *PostgresStore) ListBuildings(ctx context.Context, filter BuildingFilter) ([]model.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC, id LIMIT $2 OFFSET $3`

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := s.pool.Query(ctx, query, filter.Name, listLimit(filter.Limit), offset)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list buildings")
	}
	defer rows.Close()

	var buildings []model.Building
	for rows.Next() {
		b, err := scanPgBuilding(rows)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, *b)
	}
	return buildings, eris.Wrap(rows.Err(), "postgres: list buildings iterate")
}

func (s *PostgresStore) UpdateBuilding(ctx context.Context, id string, b model.Building) (*model.Building, error) {
	skyH, skyW := skylightColumns(b.Skylight)

	row := s.pool.QueryRow(ctx,
		`UPDATE buildings SET name = $1, height = $2, north_width = $3, south_width = $4, east_width = $5, west_width = $6,
			wwr = $7, shgc = $8, skylight_height = $9, skylight_width = $10, updated_at = $11
		 WHERE id = $12 RETURNING `+buildingColumns,
		b.Name, b.Height,
		b.Dimensions.North.Width, b.Dimensions.South.Width, b.Dimensions.East.Width, b.Dimensions.West.Width,
		b.WWR, b.SHGC, skyH, skyW, time.Now().UTC(), id,
	)
	updated, err := scanPgBuilding(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update building %s", id)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteBuilding(ctx context.Context, id string) (*model.Building, error) {
	row := s.pool.QueryRow(ctx,
		`DELETE FROM buildings WHERE id = $1 RETURNING `+buildingColumns, id,
	)
	b, err := scanPgBuilding(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: delete building %s", id)
	}
	return b, nil
}

func (s *PostgresStore) RecordAnalysis(ctx context.Context, buildingID, city string, totals model.Totals) (*model.AnalysisRecord, error) {
	rec := &model.AnalysisRecord{
		ID:         uuid.New().String(),
		BuildingID: buildingID,
		City:       city,
		Totals:     totals,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO analyses (id, building_id, city, total_heat_gain_btu, total_cooling_load_kwh, total_energy_consumed_kwh, total_cost, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.BuildingID, rec.City,
		totals.TotalHeatGainBTU, totals.TotalCoolingLoadKWh, totals.TotalEnergyConsumedKWh, totals.TotalCost,
		rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert analysis for %s", buildingID)
	}
	return rec, nil
}

func (s *PostgresStore) ListAnalyses(ctx context.Context, buildingID string, limit int) ([]model.AnalysisRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, building_id, city, total_heat_gain_btu, total_cooling_load_kwh, total_energy_consumed_kwh, total_cost, created_at
		 FROM analyses WHERE building_id = $1 ORDER BY created_at DESC, id LIMIT $2`,
		buildingID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list analyses for %s", buildingID)
	}
	defer rows.Close()

	var records []model.AnalysisRecord
	for rows.Next() {
		var r model.AnalysisRecord
		if err := rows.Scan(&r.ID, &r.BuildingID, &r.City,
			&r.TotalHeatGainBTU, &r.TotalCoolingLoadKWh, &r.TotalEnergyConsumedKWh, &r.TotalCost,
			&r.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "postgres: scan analysis")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list analyses iterate")
}

func scanPgBuilding(row pgx.Row) (*model.Building, error) {
	var b model.Building
	var skyH, skyW *float64

	err := row.Scan(&b.ID, &b.Name, &b.Height,
		&b.Dimensions.North.Width, &b.Dimensions.South.Width, &b.Dimensions.East.Width, &b.Dimensions.West.Width,
		&b.WWR, &b.SHGC, &skyH, &skyW, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBuildingNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan building")
	}

	b.Skylight = skylightFromColumns(skyH, skyW)
	return &b, nil
}

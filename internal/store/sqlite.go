package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/facade-energy/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS buildings (
	id              TEXT PRIMARY KEY,
	name            TEXT NOT NULL,
	height          REAL NOT NULL,
	north_width     REAL NOT NULL,
	south_width     REAL NOT NULL,
	east_width      REAL NOT NULL,
	west_width      REAL NOT NULL,
	wwr             REAL NOT NULL,
	shgc            REAL NOT NULL,
	skylight_height REAL,
	skylight_width  REAL,
	created_at      DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS analyses (
	id                        TEXT PRIMARY KEY,
	building_id               TEXT NOT NULL REFERENCES buildings(id),
	city                      TEXT NOT NULL,
	total_heat_gain_btu       REAL NOT NULL,
	total_cooling_load_kwh    REAL NOT NULL,
	total_energy_consumed_kwh REAL NOT NULL,
	total_cost                REAL NOT NULL,
	created_at                DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_buildings_name ON buildings(name);
CREATE INDEX IF NOT EXISTS idx_analyses_building_id ON analyses(building_id, created_at);
`

const buildingColumns = `id, name, height, north_width, south_width, east_width, west_width, wwr, shgc, skylight_height, skylight_width, created_at, updated_at`

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBuilding(ctx context.Context, ex execer, b *model.Building) error {
	skyH, skyW := skylightColumns(b.Skylight)
	_, err := ex.ExecContext(ctx,
		`INSERT INTO buildings (`+buildingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Height,
		b.Dimensions.North.Width, b.Dimensions.South.Width, b.Dimensions.East.Width, b.Dimensions.West.Width,
		b.WWR, b.SHGC, skyH, skyW, b.CreatedAt, b.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) CreateBuilding(ctx context.Context, b model.Building) (*model.Building, error) {
	now := time.Now().UTC()
	b.ID = uuid.New().String()
	b.CreatedAt, b.UpdatedAt = now, now

	if err := insertBuilding(ctx, s.db, &b); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert building")
	}
	return &b, nil
}

func (s *SQLiteStore) ImportBuildings(ctx context.Context, buildings []model.Building) ([]model.Building, error) {
	if len(buildings) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: import begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC()
	out := make([]model.Building, len(buildings))
	for i, b := range buildings {
		b.ID = uuid.New().String()
		b.CreatedAt, b.UpdatedAt = now, now
		if err := insertBuilding(ctx, tx, &b); err != nil {
			return nil, eris.Wrapf(err, "sqlite: import building %q", b.Name)
		}
		out[i] = b
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: import commit")
	}
	return out, nil
}

func (s *SQLiteStore) GetBuilding(ctx context.Context, id string) (*model.Building, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+buildingColumns+` FROM buildings WHERE id = ?`, id,
	)
	b, err := scanBuilding(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get building %s", id)
	}
	return b, nil
}

func (s *SQLiteStore) ListBuildings(ctx context.Context, filter BuildingFilter) ([]model.Building, error) {
	query := `SELECT ` + buildingColumns + ` FROM buildings WHERE 1=1`
	var args []any

	if filter.Name != "" {
		query += ` AND name LIKE ?`
		args = append(args, "%"+filter.Name+"%")
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list buildings")
	}
	defer rows.Close()

	var buildings []model.Building
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		buildings = append(buildings, *b)
	}
	return buildings, eris.Wrap(rows.Err(), "sqlite: list buildings iterate")
}

func (s *SQLiteStore) UpdateBuilding(ctx context.Context, id string, b model.Building) (*model.Building, error) {
	skyH, skyW := skylightColumns(b.Skylight)
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`UPDATE buildings SET name = ?, height = ?, north_width = ?, south_width = ?, east_width = ?, west_width = ?,
			wwr = ?, shgc = ?, skylight_height = ?, skylight_width = ?, updated_at = ? WHERE id = ?`,
		b.Name, b.Height,
		b.Dimensions.North.Width, b.Dimensions.South.Width, b.Dimensions.East.Width, b.Dimensions.West.Width,
		b.WWR, b.SHGC, skyH, skyW, now, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update building %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return nil, err
	}
	return s.GetBuilding(ctx, id)
}

func (s *SQLiteStore) DeleteBuilding(ctx context.Context, id string) (*model.Building, error) {
	b, err := s.GetBuilding(ctx, id)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: delete begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM analyses WHERE building_id = ?`, id); err != nil {
		return nil, eris.Wrapf(err, "sqlite: delete analyses for %s", id)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM buildings WHERE id = ?`, id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: delete building %s", id)
	}
	if err := checkRowsAffected(res, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: delete commit")
	}
	return b, nil
}

func (s *SQLiteStore) RecordAnalysis(ctx context.Context, buildingID, city string, totals model.Totals) (*model.AnalysisRecord, error) {
	rec := &model.AnalysisRecord{
		ID:         uuid.New().String(),
		BuildingID: buildingID,
		City:       city,
		Totals:     totals,
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, building_id, city, total_heat_gain_btu, total_cooling_load_kwh, total_energy_consumed_kwh, total_cost, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.BuildingID, rec.City,
		totals.TotalHeatGainBTU, totals.TotalCoolingLoadKWh, totals.TotalEnergyConsumedKWh, totals.TotalCost,
		rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert analysis for %s", buildingID)
	}
	return rec, nil
}

func (s *SQLiteStore) ListAnalyses(ctx context.Context, buildingID string, limit int) ([]model.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, building_id, city, total_heat_gain_btu, total_cooling_load_kwh, total_energy_consumed_kwh, total_cost, created_at
		 FROM analyses WHERE building_id = ? ORDER BY created_at DESC, id LIMIT ?`,
		buildingID, listLimit(limit),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list analyses for %s", buildingID)
	}
	defer rows.Close()

	var records []model.AnalysisRecord
	for rows.Next() {
		var r model.AnalysisRecord
		if err := rows.Scan(&r.ID, &r.BuildingID, &r.City,
			&r.TotalHeatGainBTU, &r.TotalCoolingLoadKWh, &r.TotalEnergyConsumedKWh, &r.TotalCost,
			&r.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan analysis")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list analyses iterate")
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(model.ErrBuildingNotFound, "building %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanBuilding(row scannable) (*model.Building, error) {
	var b model.Building
	var skyH, skyW sql.NullFloat64

	err := row.Scan(&b.ID, &b.Name, &b.Height,
		&b.Dimensions.North.Width, &b.Dimensions.South.Width, &b.Dimensions.East.Width, &b.Dimensions.West.Width,
		&b.WWR, &b.SHGC, &skyH, &skyW, &b.CreatedAt, &b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrBuildingNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan building")
	}

	b.Skylight = skylightFromColumns(nullFloat(skyH), nullFloat(skyW))
	return &b, nil
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

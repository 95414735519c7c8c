package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/models"
)

// Dialect holds the statements that differ between SQL engines.
type Dialect struct {
	Name       string
	Driver     string
	CreateDDL  string
	InsertStmt string
	FindStmt   string
}

var (
	MySQL = Dialect{
		Name:   "mysql",
		Driver: "mysql",
		CreateDDL: `CREATE TABLE IF NOT EXISTS stations (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	line VARCHAR(255) NOT NULL,
	station VARCHAR(255) NOT NULL,
	distance DOUBLE NOT NULL,
	UNIQUE KEY uq_stations_station (station)
) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin`,
		// A duplicate leaves the row unchanged and reports 0 affected rows.
		// Other errors, such as an over-long name, still fail the insert.
		InsertStmt: `INSERT INTO stations (line, station, distance) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE id = id`,
		FindStmt:   `SELECT id, line, station, distance FROM stations WHERE station = ?`,
	}

	Postgres = Dialect{
		Name:   "postgres",
		Driver: "postgres",
		CreateDDL: `CREATE TABLE IF NOT EXISTS stations (
	id BIGSERIAL PRIMARY KEY,
	line TEXT NOT NULL,
	station TEXT NOT NULL UNIQUE,
	distance DOUBLE PRECISION NOT NULL
)`,
		InsertStmt: `INSERT INTO stations (line, station, distance) VALUES ($1, $2, $3) ON CONFLICT (station) DO NOTHING`,
		FindStmt:   `SELECT id, line, station, distance FROM stations WHERE station = $1`,
	}
)

const (
	listStmt      = `SELECT id, line, station, distance FROM stations ORDER BY id ASC`
	deleteAllStmt = `DELETE FROM stations`
)

// DialectFor maps a backend name onto its dialect.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case MySQL.Name:
		return MySQL, nil
	case Postgres.Name:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported SQL dialect %q", name)
	}
}

// SQLStore keeps stations in a relational table with a unique station column.
// Every operation is a single statement.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

var _ models.StationStore = (*SQLStore)(nil)

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQL opens and pings a pooled connection.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect.Name, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", dialect.Name, err)
	}

	log.Info().Str("dialect", dialect.Name).Msg("Connected to station database")
	return db, nil
}

// EnsureSchema creates the stations table when missing.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.CreateDDL); err != nil {
		return fmt.Errorf("creating stations table: %w", err)
	}
	return nil
}

func (s *SQLStore) InsertIfAbsent(ctx context.Context, st models.Station) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.dialect.InsertStmt, st.Line, st.Name, st.Position)
	if err != nil {
		return false, fmt.Errorf("inserting station: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return affected > 0, nil
}

func (s *SQLStore) FindByName(ctx context.Context, name string) (*models.Station, error) {
	var st models.Station
	err := s.db.QueryRowContext(ctx, s.dialect.FindStmt, name).Scan(&st.Seq, &st.Line, &st.Name, &st.Position)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding station: %w", err)
	}
	return &st, nil
}

func (s *SQLStore) ListAll(ctx context.Context) ([]models.Station, error) {
	rows, err := s.db.QueryContext(ctx, listStmt)
	if err != nil {
		return nil, fmt.Errorf("listing stations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing station rows")
		}
	}()

	out := make([]models.Station, 0)
	for rows.Next() {
		var st models.Station
		if err := rows.Scan(&st.Seq, &st.Line, &st.Name, &st.Position); err != nil {
			return nil, fmt.Errorf("scanning station: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stations: %w", err)
	}
	return out, nil
}

func (s *SQLStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, deleteAllStmt); err != nil {
		return fmt.Errorf("deleting stations: %w", err)
	}
	return nil
}

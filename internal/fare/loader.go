package fare

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/fareroute/backend-go/internal/models"
)

// DefaultQuery reads bands from a fares table with (max, fare) columns.
const DefaultQuery = `SELECT max, fare FROM fares ORDER BY max ASC`

//go:embed fares.yml
var defaultTable []byte

type document struct {
	Currency string            `yaml:"currency"`
	Bands    []models.FareBand `yaml:"bands" validate:"required,min=1,dive"`
}

// Querier is the subset of *sql.DB used to load bands.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Default returns the table shipped with the service.
func Default() (*Table, error) {
	return Load(defaultTable)
}

// LoadFile reads a YAML fare table from path.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fare table: %w", err)
	}
	return Load(data)
}

// Load parses and validates a YAML fare table.
func Load(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding fare table: %w", err)
	}

	v := validator.New()
	if err := v.Struct(doc); err != nil {
		return nil, fmt.Errorf("validating fare table: %w", err)
	}

	table, err := NewTable(doc.Bands)
	if err != nil {
		return nil, err
	}
	table.currency = doc.Currency

	log.Debug().
		Int("bands", len(table.bands)).
		Float64("max_distance", table.MaxDistance()).
		Str("currency", table.currency).
		Msg("Fare table loaded")

	return table, nil
}

// LoadSQL reads (max distance, fare) rows with query. An empty query uses
// DefaultQuery.
func LoadSQL(ctx context.Context, q Querier, query string) (*Table, error) {
	if query == "" {
		query = DefaultQuery
	}

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying fares: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing fare rows")
		}
	}()

	var bands []models.FareBand
	for rows.Next() {
		var band models.FareBand
		if err := rows.Scan(&band.MaxDistance, &band.Fare); err != nil {
			return nil, fmt.Errorf("scanning fare row: %w", err)
		}
		bands = append(bands, band)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fares: %w", err)
	}

	return NewTable(bands)
}

package city

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

// pgxQuerier is the slice of pgxpool.Pool the repository needs. Narrowed so
// tests can substitute a pgxmock pool.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresCityRepo)(nil)

type Repository interface {
	Search(ctx context.Context, query string) ([]models.City, error)
	GetByNameCountry(ctx context.Context, name, country string) (*models.City, error)
	GetByName(ctx context.Context, name string) (*models.City, error)
	GetOrCreate(ctx context.Context, name, country, region string) (*models.City, error)
	SaveExternalPlace(ctx context.Context, place models.ExternalPlace) error
}

type PostgresCityRepo struct {
	logger *zap.Logger
	db     pgxQuerier
}

func NewCityRepository(db pgxQuerier, logger *zap.Logger) *PostgresCityRepo {
	return &PostgresCityRepo{
		logger: logger,
		db:     db,
	}
}

const cityColumns = "id, name, country, region, cost_index, popularity"

func scanCity(row pgx.Row) (*models.City, error) {
	var c models.City
	if err := row.Scan(&c.ID, &c.Name, &c.Country, &c.Region, &c.CostIndex, &c.Popularity); err != nil {
		return nil, err
	}
	return &c, nil
}

// Search lists cities, optionally filtered by a substring over name,
// country and region.
func (r *PostgresCityRepo) Search(ctx context.Context, query string) ([]models.City, error) {
	builder := sq.Select(cityColumns).
		From("cities").
		OrderBy("name, country").
		PlaceholderFormat(sq.Dollar)

	if query != "" {
		like := "%" + query + "%"
		builder = builder.Where(sq.Or{
			sq.ILike{"name": like},
			sq.ILike{"country": like},
			sq.ILike{"region": like},
		})
	}

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building city search query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Error("Error searching cities", zap.Error(err))
		return nil, fmt.Errorf("database error searching cities: %w", err)
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		var c models.City
		if err := rows.Scan(&c.ID, &c.Name, &c.Country, &c.Region, &c.CostIndex, &c.Popularity); err != nil {
			return nil, fmt.Errorf("scanning city row: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *PostgresCityRepo) GetByNameCountry(ctx context.Context, name, country string) (*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities
	          WHERE LOWER(name) = LOWER($1) AND LOWER(country) = LOWER($2)
	          ORDER BY created_at LIMIT 1`
	c, err := scanCity(r.db.QueryRow(ctx, query, name, country))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("city %s, %s: %w", name, country, models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching city: %w", err)
	}
	return c, nil
}

func (r *PostgresCityRepo) GetByName(ctx context.Context, name string) (*models.City, error) {
	query := `SELECT ` + cityColumns + ` FROM cities
	          WHERE LOWER(name) = LOWER($1)
	          ORDER BY created_at LIMIT 1`
	c, err := scanCity(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("city %s: %w", name, models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching city: %w", err)
	}
	return c, nil
}

// GetOrCreate matches by (name, country) case-insensitively and inserts a
// new row when no match exists. City identity is enforced here, not by a
// database constraint.
func (r *PostgresCityRepo) GetOrCreate(ctx context.Context, name, country, region string) (*models.City, error) {
	existing, err := r.GetByNameCountry(ctx, name, country)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	query := `INSERT INTO cities (name, country, region) VALUES ($1, $2, $3)
	          RETURNING ` + cityColumns
	c, err := scanCity(r.db.QueryRow(ctx, query, name, country, region))
	if err != nil {
		r.logger.Error("Error inserting city", zap.Error(err), zap.String("name", name))
		return nil, fmt.Errorf("database error inserting city: %w", err)
	}
	return c, nil
}

// SaveExternalPlace snapshots a geocoding hit for dataset building,
// deduplicated on (source, external_id).
func (r *PostgresCityRepo) SaveExternalPlace(ctx context.Context, place models.ExternalPlace) error {
	query := `INSERT INTO external_places (source, query, external_id, name, country, lat, lon, raw)
	          SELECT $1, $2, $3, $4, $5, $6, $7, $8
	          WHERE NOT EXISTS (
	              SELECT 1 FROM external_places WHERE source = $1 AND external_id = $3
	          )`
	_, err := r.db.Exec(ctx, query,
		place.Source, place.Query, place.ExternalID, place.Name, place.Country,
		place.Lat, place.Lon, place.Raw,
	)
	if err != nil {
		return fmt.Errorf("database error saving external place: %w", err)
	}
	return nil
}

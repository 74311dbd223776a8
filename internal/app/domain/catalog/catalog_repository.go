// Package catalog exposes the read-only activity seed data used by the
// heuristic itinerary generator and the public demo itinerary.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

var _ Repository = (*PostgresCatalogRepo)(nil)

type Repository interface {
	FirstN(ctx context.Context, n int) ([]models.CatalogEntry, error)
	DistinctCities(ctx context.Context, limit int) ([]models.City, error)
}

type PostgresCatalogRepo struct {
	logger *zap.Logger
	db     pgxQuerier
}

func NewCatalogRepository(db pgxQuerier, logger *zap.Logger) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{
		logger: logger,
		db:     db,
	}
}

// FirstN returns the first n catalog entries ordered by title. The order is
// deterministic so generated itineraries are stable across runs.
func (r *PostgresCatalogRepo) FirstN(ctx context.Context, n int) ([]models.CatalogEntry, error) {
	query := `SELECT id, title, category, avg_cost, duration_minutes, city_id
	          FROM activity_catalog ORDER BY title LIMIT $1`
	rows, err := r.db.Query(ctx, query, n)
	if err != nil {
		r.logger.Error("Error listing catalog entries", zap.Error(err))
		return nil, fmt.Errorf("database error listing catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.AvgCost, &e.DurationMinutes, &e.CityID); err != nil {
			return nil, fmt.Errorf("scanning catalog entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DistinctCities returns cities that have catalog activities, capped at
// limit. The join keeps ad-hoc cities created for user stops out of the
// generator's default route.
func (r *PostgresCatalogRepo) DistinctCities(ctx context.Context, limit int) ([]models.City, error) {
	query := `SELECT DISTINCT c.id, c.name, c.country, c.region, c.cost_index, c.popularity
	          FROM cities c
	          JOIN activity_catalog ac ON ac.city_id = c.id
	          ORDER BY c.name LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		r.logger.Error("Error listing catalog cities", zap.Error(err))
		return nil, fmt.Errorf("database error listing catalog cities: %w", err)
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

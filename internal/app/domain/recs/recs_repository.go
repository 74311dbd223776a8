package recs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
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

var _ Repository = (*PostgresRecsRepo)(nil)

// Repository is the append-only personalization cache. Rows are never
// updated; lookups always take the newest match.
type Repository interface {
	Insert(ctx context.Context, userID uuid.UUID, signature, city, country string, data json.RawMessage) error
	NewestByUserSignature(ctx context.Context, userID uuid.UUID, signature string) (*models.PersonalizedRec, error)
	NewestByCityCountry(ctx context.Context, city, country string) (*models.PersonalizedRec, error)
}

type PostgresRecsRepo struct {
	logger *zap.Logger
	db     pgxQuerier
}

func NewRecsRepository(db pgxQuerier, logger *zap.Logger) *PostgresRecsRepo {
	return &PostgresRecsRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresRecsRepo) Insert(ctx context.Context, userID uuid.UUID, signature, city, country string, data json.RawMessage) error {
	query := `INSERT INTO personalized_recs (user_id, signature, city, country, data)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, query, userID, signature, city, country, data)
	if err != nil {
		r.logger.Error("Error inserting personalized rec", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("database error inserting personalized rec: %w", err)
	}
	return nil
}

const recColumns = "id, user_id, signature, city, country, data, created_at"

func scanRec(row pgx.Row) (*models.PersonalizedRec, error) {
	var rec models.PersonalizedRec
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Signature, &rec.City, &rec.Country, &rec.Data, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PostgresRecsRepo) NewestByUserSignature(ctx context.Context, userID uuid.UUID, signature string) (*models.PersonalizedRec, error) {
	query := `SELECT ` + recColumns + ` FROM personalized_recs
	          WHERE user_id = $1 AND signature = $2
	          ORDER BY created_at DESC LIMIT 1`
	rec, err := scanRec(r.db.QueryRow(ctx, query, userID, signature))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("personalized rec: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching personalized rec: %w", err)
	}
	return rec, nil
}

func (r *PostgresRecsRepo) NewestByCityCountry(ctx context.Context, city, country string) (*models.PersonalizedRec, error) {
	query := `SELECT ` + recColumns + ` FROM personalized_recs
	          WHERE LOWER(city) = LOWER($1) AND LOWER(country) = LOWER($2)
	          ORDER BY created_at DESC LIMIT 1`
	rec, err := scanRec(r.db.QueryRow(ctx, query, city, country))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("personalized rec: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching personalized rec: %w", err)
	}
	return rec, nil
}

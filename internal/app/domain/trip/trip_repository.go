package trip

import (
	"context"
	"errors"
	"fmt"
	"time"

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

var _ Repository = (*PostgresTripRepo)(nil)

type CreateTripParams struct {
	Name         string
	StartDate    models.Date
	EndDate      models.Date
	OriginCityID *uuid.UUID
	Description  string
	CoverImage   string
}

type UpdateTripParams struct {
	Name         *string
	StartDate    *models.Date
	EndDate      *models.Date
	OriginCityID *uuid.UUID
	Description  *string
	CoverImage   *string
}

type CreateStopParams struct {
	CityID    uuid.UUID
	StartDate models.Date
	EndDate   models.Date
	Order     int
}

type UpdateStopParams struct {
	CityID    *uuid.UUID
	StartDate *models.Date
	EndDate   *models.Date
	Order     *int
}

type CreateActivityParams struct {
	Title      string
	Category   string
	StartTime  *string
	EndTime    *string
	CostAmount int
	Currency   string
	Notes      string
}

type UpdateActivityParams struct {
	Title      *string
	Category   *string
	StartTime  *string
	EndTime    *string
	CostAmount *int
	Currency   *string
	Notes      *string
}

type Repository interface {
	CreateTrip(ctx context.Context, userID uuid.UUID, params CreateTripParams) (*models.Trip, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]models.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error)
	GetTripWithDetails(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params UpdateTripParams) (*models.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error
	SetPublicSlug(ctx context.Context, tripID uuid.UUID, slug string) error
	MarkPublic(ctx context.Context, tripID uuid.UUID) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetPublicTripBySlug(ctx context.Context, slug string) (*models.Trip, error)
	RecentTrips(ctx context.Context, userID uuid.UUID, limit int) ([]models.Trip, error)

	CreateStop(ctx context.Context, tripID uuid.UUID, params CreateStopParams) (*models.TripStop, error)
	ListStops(ctx context.Context, tripID uuid.UUID) ([]models.TripStop, error)
	GetStop(ctx context.Context, tripID, stopID uuid.UUID) (*models.TripStop, error)
	UpdateStop(ctx context.Context, tripID, stopID uuid.UUID, params UpdateStopParams) (*models.TripStop, error)
	DeleteStop(ctx context.Context, tripID, stopID uuid.UUID) error
	DeleteStopsForTrip(ctx context.Context, tripID uuid.UUID) error
	SetStopOrder(ctx context.Context, stopID uuid.UUID, order int) error

	CreateActivity(ctx context.Context, stopID uuid.UUID, params CreateActivityParams) (*models.Activity, error)
	ListActivities(ctx context.Context, stopID uuid.UUID) ([]models.Activity, error)
	GetActivity(ctx context.Context, stopID, activityID uuid.UUID) (*models.Activity, error)
	UpdateActivity(ctx context.Context, stopID, activityID uuid.UUID, params UpdateActivityParams) (*models.Activity, error)
	DeleteActivity(ctx context.Context, stopID, activityID uuid.UUID) error
}

type PostgresTripRepo struct {
	logger *zap.Logger
	db     pgxQuerier
}

func NewTripRepository(db pgxQuerier, logger *zap.Logger) *PostgresTripRepo {
	return &PostgresTripRepo{
		logger: logger,
		db:     db,
	}
}

const tripColumns = `t.id, t.user_id, t.name, t.start_date, t.end_date, t.origin_city_id,
	t.description, t.cover_image, t.is_public, t.public_slug, t.created_at, t.updated_at,
	c.id, c.name, c.country, c.region, c.cost_index, c.popularity`

const tripFrom = ` FROM trips t LEFT JOIN cities c ON c.id = t.origin_city_id `

func scanTrip(row pgx.Row) (*models.Trip, error) {
	var (
		t          models.Trip
		start, end time.Time
		cityID     *uuid.UUID
		cityName   *string
		cityCtry   *string
		cityRegion *string
		costIndex  *int
		popularity *int
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Name, &start, &end, &t.OriginCityID,
		&t.Description, &t.CoverImage, &t.IsPublic, &t.PublicSlug, &t.CreatedAt, &t.UpdatedAt,
		&cityID, &cityName, &cityCtry, &cityRegion, &costIndex, &popularity,
	)
	if err != nil {
		return nil, err
	}
	t.StartDate = models.DateOf(start)
	t.EndDate = models.DateOf(end)
	if cityID != nil {
		t.OriginCity = &models.City{
			ID:         *cityID,
			Name:       *cityName,
			Country:    *cityCtry,
			Region:     *cityRegion,
			CostIndex:  costIndex,
			Popularity: popularity,
		}
	}
	return &t, nil
}

func (r *PostgresTripRepo) CreateTrip(ctx context.Context, userID uuid.UUID, params CreateTripParams) (*models.Trip, error) {
	query := `INSERT INTO trips (user_id, name, start_date, end_date, origin_city_id, description, cover_image)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	var tripID uuid.UUID
	err := r.db.QueryRow(ctx, query,
		userID, params.Name, params.StartDate.Time, params.EndDate.Time,
		params.OriginCityID, params.Description, params.CoverImage,
	).Scan(&tripID)
	if err != nil {
		r.logger.Error("Error creating trip", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("database error creating trip: %w", err)
	}
	return r.GetTrip(ctx, userID, tripID)
}

func (r *PostgresTripRepo) ListTrips(ctx context.Context, userID uuid.UUID) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + tripFrom + `WHERE t.user_id = $1 ORDER BY t.created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("database error listing trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trip row: %w", err)
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (r *PostgresTripRepo) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + tripFrom + `WHERE t.id = $1 AND t.user_id = $2`
	t, err := scanTrip(r.db.QueryRow(ctx, query, tripID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trip %s: %w", tripID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching trip: %w", err)
	}
	return t, nil
}

// GetTripWithDetails returns the trip with its stops ordered by
// (ord, start_date) and each stop's activities ordered by (created_at, id).
func (r *PostgresTripRepo) GetTripWithDetails(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error) {
	t, err := r.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	if err := r.attachDetails(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresTripRepo) attachDetails(ctx context.Context, t *models.Trip) error {
	stops, err := r.ListStops(ctx, t.ID)
	if err != nil {
		return err
	}
	for i := range stops {
		acts, err := r.ListActivities(ctx, stops[i].ID)
		if err != nil {
			return err
		}
		stops[i].Activities = acts
	}
	t.Stops = stops
	return nil
}

func (r *PostgresTripRepo) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params UpdateTripParams) (*models.Trip, error) {
	var start, end *time.Time
	if params.StartDate != nil {
		start = &params.StartDate.Time
	}
	if params.EndDate != nil {
		end = &params.EndDate.Time
	}

	query := `UPDATE trips SET
	              name = COALESCE($3, name),
	              start_date = COALESCE($4, start_date),
	              end_date = COALESCE($5, end_date),
	              origin_city_id = COALESCE($6, origin_city_id),
	              description = COALESCE($7, description),
	              cover_image = COALESCE($8, cover_image),
	              updated_at = NOW()
	          WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query, tripID, userID,
		params.Name, start, end, params.OriginCityID, params.Description, params.CoverImage)
	if err != nil {
		return nil, fmt.Errorf("database error updating trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("trip %s: %w", tripID, models.ErrNotFound)
	}
	return r.GetTrip(ctx, userID, tripID)
}

func (r *PostgresTripRepo) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return fmt.Errorf("database error deleting trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip %s: %w", tripID, models.ErrNotFound)
	}
	return nil
}

// SetPublicSlug assigns the slug only when none exists yet. The slug is
// immutable after first assignment.
func (r *PostgresTripRepo) SetPublicSlug(ctx context.Context, tripID uuid.UUID, slug string) error {
	query := `UPDATE trips SET public_slug = $2, is_public = TRUE, updated_at = NOW()
	          WHERE id = $1 AND public_slug IS NULL`
	_, err := r.db.Exec(ctx, query, tripID, slug)
	if err != nil {
		return fmt.Errorf("database error setting public slug: %w", err)
	}
	return nil
}

func (r *PostgresTripRepo) MarkPublic(ctx context.Context, tripID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE trips SET is_public = TRUE, updated_at = NOW() WHERE id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("database error marking trip public: %w", err)
	}
	return nil
}

func (r *PostgresTripRepo) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM trips WHERE public_slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("database error checking slug: %w", err)
	}
	return exists, nil
}

func (r *PostgresTripRepo) GetPublicTripBySlug(ctx context.Context, slug string) (*models.Trip, error) {
	query := `SELECT ` + tripColumns + tripFrom + `WHERE t.public_slug = $1 AND t.is_public = TRUE`
	t, err := scanTrip(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("public itinerary %s: %w", slug, models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching public trip: %w", err)
	}
	if err := r.attachDetails(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// RecentTrips returns the newest trips for personalization signatures.
func (r *PostgresTripRepo) RecentTrips(ctx context.Context, userID uuid.UUID, limit int) ([]models.Trip, error) {
	query := `SELECT ` + tripColumns + tripFrom + `WHERE t.user_id = $1 ORDER BY t.created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("database error listing recent trips: %w", err)
	}
	defer rows.Close()

	var trips []models.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trip row: %w", err)
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

const stopColumns = `s.id, s.trip_id, s.city_id, s.start_date, s.end_date, s.ord, s.created_at,
	c.id, c.name, c.country, c.region, c.cost_index, c.popularity`

func scanStop(row pgx.Row) (*models.TripStop, error) {
	var (
		s          models.TripStop
		start, end time.Time
		city       models.City
	)
	err := row.Scan(
		&s.ID, &s.TripID, &s.CityID, &start, &end, &s.Order, &s.CreatedAt,
		&city.ID, &city.Name, &city.Country, &city.Region, &city.CostIndex, &city.Popularity,
	)
	if err != nil {
		return nil, err
	}
	s.StartDate = models.DateOf(start)
	s.EndDate = models.DateOf(end)
	s.City = &city
	return &s, nil
}

func (r *PostgresTripRepo) CreateStop(ctx context.Context, tripID uuid.UUID, params CreateStopParams) (*models.TripStop, error) {
	query := `INSERT INTO trip_stops (trip_id, city_id, start_date, end_date, ord)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	var stopID uuid.UUID
	err := r.db.QueryRow(ctx, query,
		tripID, params.CityID, params.StartDate.Time, params.EndDate.Time, params.Order,
	).Scan(&stopID)
	if err != nil {
		r.logger.Error("Error creating trip stop", zap.Error(err), zap.String("tripID", tripID.String()))
		return nil, fmt.Errorf("database error creating trip stop: %w", err)
	}
	return r.GetStop(ctx, tripID, stopID)
}

func (r *PostgresTripRepo) ListStops(ctx context.Context, tripID uuid.UUID) ([]models.TripStop, error) {
	query := `SELECT ` + stopColumns + `
	          FROM trip_stops s JOIN cities c ON c.id = s.city_id
	          WHERE s.trip_id = $1
	          ORDER BY s.ord, s.start_date`
	rows, err := r.db.Query(ctx, query, tripID)
	if err != nil {
		return nil, fmt.Errorf("database error listing trip stops: %w", err)
	}
	defer rows.Close()

	var stops []models.TripStop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning trip stop row: %w", err)
		}
		stops = append(stops, *s)
	}
	return stops, rows.Err()
}

func (r *PostgresTripRepo) GetStop(ctx context.Context, tripID, stopID uuid.UUID) (*models.TripStop, error) {
	query := `SELECT ` + stopColumns + `
	          FROM trip_stops s JOIN cities c ON c.id = s.city_id
	          WHERE s.id = $1 AND s.trip_id = $2`
	s, err := scanStop(r.db.QueryRow(ctx, query, stopID, tripID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("trip stop %s: %w", stopID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching trip stop: %w", err)
	}
	return s, nil
}

func (r *PostgresTripRepo) UpdateStop(ctx context.Context, tripID, stopID uuid.UUID, params UpdateStopParams) (*models.TripStop, error) {
	var start, end *time.Time
	if params.StartDate != nil {
		start = &params.StartDate.Time
	}
	if params.EndDate != nil {
		end = &params.EndDate.Time
	}

	query := `UPDATE trip_stops SET
	              city_id = COALESCE($3, city_id),
	              start_date = COALESCE($4, start_date),
	              end_date = COALESCE($5, end_date),
	              ord = COALESCE($6, ord)
	          WHERE id = $1 AND trip_id = $2`
	tag, err := r.db.Exec(ctx, query, stopID, tripID, params.CityID, start, end, params.Order)
	if err != nil {
		return nil, fmt.Errorf("database error updating trip stop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("trip stop %s: %w", stopID, models.ErrNotFound)
	}
	return r.GetStop(ctx, tripID, stopID)
}

func (r *PostgresTripRepo) DeleteStop(ctx context.Context, tripID, stopID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trip_stops WHERE id = $1 AND trip_id = $2`, stopID, tripID)
	if err != nil {
		return fmt.Errorf("database error deleting trip stop: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip stop %s: %w", stopID, models.ErrNotFound)
	}
	return nil
}

// DeleteStopsForTrip clears every stop of the trip; activities go with them
// via ON DELETE CASCADE.
func (r *PostgresTripRepo) DeleteStopsForTrip(ctx context.Context, tripID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM trip_stops WHERE trip_id = $1`, tripID)
	if err != nil {
		return fmt.Errorf("database error clearing trip stops: %w", err)
	}
	return nil
}

func (r *PostgresTripRepo) SetStopOrder(ctx context.Context, stopID uuid.UUID, order int) error {
	_, err := r.db.Exec(ctx, `UPDATE trip_stops SET ord = $2 WHERE id = $1`, stopID, order)
	if err != nil {
		return fmt.Errorf("database error setting stop order: %w", err)
	}
	return nil
}

const activityColumns = `id, trip_stop_id, title, category, start_time, end_time,
	cost_amount, currency, notes, created_at`

func scanActivity(row pgx.Row) (*models.Activity, error) {
	var a models.Activity
	err := row.Scan(
		&a.ID, &a.TripStopID, &a.Title, &a.Category, &a.StartTime, &a.EndTime,
		&a.CostAmount, &a.Currency, &a.Notes, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PostgresTripRepo) CreateActivity(ctx context.Context, stopID uuid.UUID, params CreateActivityParams) (*models.Activity, error) {
	query := `INSERT INTO activities (trip_stop_id, title, category, start_time, end_time, cost_amount, currency, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING ` + activityColumns
	a, err := scanActivity(r.db.QueryRow(ctx, query,
		stopID, params.Title, params.Category, params.StartTime, params.EndTime,
		params.CostAmount, params.Currency, params.Notes,
	))
	if err != nil {
		r.logger.Error("Error creating activity", zap.Error(err), zap.String("stopID", stopID.String()))
		return nil, fmt.Errorf("database error creating activity: %w", err)
	}
	return a, nil
}

func (r *PostgresTripRepo) ListActivities(ctx context.Context, stopID uuid.UUID) ([]models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
	          WHERE trip_stop_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, stopID)
	if err != nil {
		return nil, fmt.Errorf("database error listing activities: %w", err)
	}
	defer rows.Close()

	var activities []models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity row: %w", err)
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func (r *PostgresTripRepo) GetActivity(ctx context.Context, stopID, activityID uuid.UUID) (*models.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities
	          WHERE id = $1 AND trip_stop_id = $2`
	a, err := scanActivity(r.db.QueryRow(ctx, query, activityID, stopID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("activity %s: %w", activityID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching activity: %w", err)
	}
	return a, nil
}

func (r *PostgresTripRepo) UpdateActivity(ctx context.Context, stopID, activityID uuid.UUID, params UpdateActivityParams) (*models.Activity, error) {
	query := `UPDATE activities SET
	              title = COALESCE($3, title),
	              category = COALESCE($4, category),
	              start_time = COALESCE($5, start_time),
	              end_time = COALESCE($6, end_time),
	              cost_amount = COALESCE($7, cost_amount),
	              currency = COALESCE($8, currency),
	              notes = COALESCE($9, notes)
	          WHERE id = $1 AND trip_stop_id = $2`
	tag, err := r.db.Exec(ctx, query, activityID, stopID,
		params.Title, params.Category, params.StartTime, params.EndTime,
		params.CostAmount, params.Currency, params.Notes)
	if err != nil {
		return nil, fmt.Errorf("database error updating activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("activity %s: %w", activityID, models.ErrNotFound)
	}
	return r.GetActivity(ctx, stopID, activityID)
}

func (r *PostgresTripRepo) DeleteActivity(ctx context.Context, stopID, activityID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM activities WHERE id = $1 AND trip_stop_id = $2`, activityID, stopID)
	if err != nil {
		return fmt.Errorf("database error deleting activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", activityID, models.ErrNotFound)
	}
	return nil
}

package trip

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/catalog"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/city"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

const maxSlugBase = 220

// StopInput is the service-level stop creation input. Callers may pass an
// existing city id or a city name to get-or-create.
type StopInput struct {
	CityID      uuid.UUID
	CityName    string
	CityCountry string
	StartDate   models.Date
	EndDate     models.Date
	Order       int
}

type TripService interface {
	CreateTrip(ctx context.Context, userID uuid.UUID, params CreateTripParams) (*models.Trip, error)
	ListTrips(ctx context.Context, userID uuid.UUID) ([]models.Trip, error)
	GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params UpdateTripParams) (*models.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error
	ShareTrip(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error)
	PublicItinerary(ctx context.Context, slug string, demo DemoParams) (*models.Trip, error)

	CreateStop(ctx context.Context, userID, tripID uuid.UUID, in StopInput) (*models.TripStop, error)
	ListStops(ctx context.Context, userID, tripID uuid.UUID) ([]models.TripStop, error)
	UpdateStop(ctx context.Context, userID, tripID, stopID uuid.UUID, params UpdateStopParams) (*models.TripStop, error)
	DeleteStop(ctx context.Context, userID, tripID, stopID uuid.UUID) error
	ReorderStops(ctx context.Context, userID, tripID uuid.UUID, order []uuid.UUID) ([]models.TripStop, error)

	CreateActivity(ctx context.Context, userID, tripID, stopID uuid.UUID, params CreateActivityParams) (*models.Activity, error)
	ListActivities(ctx context.Context, userID, tripID, stopID uuid.UUID) ([]models.Activity, error)
	UpdateActivity(ctx context.Context, userID, tripID, stopID, activityID uuid.UUID, params UpdateActivityParams) (*models.Activity, error)
	DeleteActivity(ctx context.Context, userID, tripID, stopID, activityID uuid.UUID) error
}

// DemoParams drive the synthetic public itinerary served under the
// sample/demo slugs. Nothing is persisted.
type DemoParams struct {
	Origin      string
	Cities      []string
	Start       models.Date
	DaysPerCity int
	Currency    string
}

type ServiceImpl struct {
	repo    Repository
	cities  city.Repository
	catalog catalog.Repository
	logger  *zap.Logger
}

// timeNow is stubbed in tests for deterministic demo itineraries.
var timeNow = time.Now

var _ TripService = (*ServiceImpl)(nil)

func NewTripService(repo Repository, cityRepo city.Repository, catalogRepo catalog.Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:    repo,
		cities:  cityRepo,
		catalog: catalogRepo,
		logger:  logger,
	}
}

func (s *ServiceImpl) CreateTrip(ctx context.Context, userID uuid.UUID, params CreateTripParams) (*models.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateTrip")
	defer span.End()

	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("trip name is required: %w", models.ErrValidation)
	}
	return s.repo.CreateTrip(ctx, userID, params)
}

func (s *ServiceImpl) ListTrips(ctx context.Context, userID uuid.UUID) ([]models.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ListTrips")
	defer span.End()

	return s.repo.ListTrips(ctx, userID)
}

func (s *ServiceImpl) GetTrip(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "GetTrip")
	defer span.End()

	return s.repo.GetTripWithDetails(ctx, userID, tripID)
}

func (s *ServiceImpl) UpdateTrip(ctx context.Context, userID, tripID uuid.UUID, params UpdateTripParams) (*models.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateTrip")
	defer span.End()

	return s.repo.UpdateTrip(ctx, userID, tripID, params)
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, userID, tripID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "DeleteTrip")
	defer span.End()

	return s.repo.DeleteTrip(ctx, userID, tripID)
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ShareTrip flips the trip public and assigns its slug on first share. The
// slug never changes afterwards, even if the trip is renamed.
func (s *ServiceImpl) ShareTrip(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ShareTrip")
	defer span.End()

	l := s.logger.With(zap.String("method", "ShareTrip"))

	t, err := s.repo.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	if t.PublicSlug == nil {
		base := slugify(userID.String()[:8] + "-" + t.Name)
		if len(base) > maxSlugBase {
			base = base[:maxSlugBase]
		}
		slug := base + "-" + tripID.String()[:8]

		taken, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Slug lookup failed")
			return nil, err
		}
		if taken {
			slug += "-s"
		}

		if err := s.repo.SetPublicSlug(ctx, tripID, slug); err != nil {
			return nil, err
		}
		l.Info("Trip shared", zap.String("tripID", tripID.String()), zap.String("slug", slug))
	} else if err := s.repo.MarkPublic(ctx, tripID); err != nil {
		return nil, err
	}

	return s.repo.GetTrip(ctx, userID, tripID)
}

// PublicItinerary resolves a shared trip by slug. The reserved slugs
// "sample" and "demo" build a synthetic itinerary from the demo params
// instead of hitting user data.
func (s *ServiceImpl) PublicItinerary(ctx context.Context, slug string, demo DemoParams) (*models.Trip, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "PublicItinerary")
	defer span.End()

	if slug == "sample" || slug == "demo" {
		return s.demoItinerary(ctx, demo)
	}
	return s.repo.GetPublicTripBySlug(ctx, slug)
}

func (s *ServiceImpl) demoItinerary(ctx context.Context, demo DemoParams) (*models.Trip, error) {
	if demo.DaysPerCity < 1 {
		demo.DaysPerCity = 2
	}
	if demo.Currency == "" {
		demo.Currency = "USD"
	}
	if len(demo.Cities) == 0 {
		demo.Cities = []string{"Paris", "Rome"}
	}
	if demo.Start.IsZero() {
		demo.Start = models.DateOf(timeNow())
	}

	entries, err := s.catalog.FirstN(ctx, 3)
	if err != nil {
		s.logger.Warn("Catalog unavailable for demo itinerary", zap.Error(err))
		entries = nil
	}

	t := &models.Trip{
		Name:      "Sample Itinerary",
		StartDate: demo.Start,
		EndDate:   demo.Start.AddDays(demo.DaysPerCity * len(demo.Cities)),
	}
	if demo.Origin != "" {
		t.OriginCity = &models.City{Name: demo.Origin}
	}

	cursor := demo.Start
	for i, name := range demo.Cities {
		stop := models.TripStop{
			City:      &models.City{Name: name},
			StartDate: cursor,
			EndDate:   cursor.AddDays(demo.DaysPerCity),
			Order:     i + 1,
		}
		for _, e := range entries {
			stop.Activities = append(stop.Activities, models.Activity{
				Title:      e.Title,
				Category:   e.Category,
				CostAmount: e.AvgCost,
				Currency:   demo.Currency,
			})
		}
		t.Stops = append(t.Stops, stop)
		cursor = cursor.AddDays(demo.DaysPerCity)
	}
	return t, nil
}

func (s *ServiceImpl) CreateStop(ctx context.Context, userID, tripID uuid.UUID, in StopInput) (*models.TripStop, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateStop")
	defer span.End()

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	cityID := in.CityID
	if cityID == uuid.Nil {
		if strings.TrimSpace(in.CityName) == "" {
			return nil, fmt.Errorf("city is required: %w", models.ErrValidation)
		}
		c, err := s.cities.GetOrCreate(ctx, in.CityName, in.CityCountry, "")
		if err != nil {
			return nil, err
		}
		cityID = c.ID
	}

	return s.repo.CreateStop(ctx, tripID, CreateStopParams{
		CityID:    cityID,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Order:     in.Order,
	})
}

func (s *ServiceImpl) ListStops(ctx context.Context, userID, tripID uuid.UUID) ([]models.TripStop, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ListStops")
	defer span.End()

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.repo.ListStops(ctx, tripID)
}

func (s *ServiceImpl) UpdateStop(ctx context.Context, userID, tripID, stopID uuid.UUID, params UpdateStopParams) (*models.TripStop, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateStop")
	defer span.End()

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.repo.UpdateStop(ctx, tripID, stopID, params)
}

func (s *ServiceImpl) DeleteStop(ctx context.Context, userID, tripID, stopID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "DeleteStop")
	defer span.End()

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return err
	}
	return s.repo.DeleteStop(ctx, tripID, stopID)
}

// ReorderStops renumbers the trip's stops. Stops named in order get
// positions 1..k in the given sequence; unknown ids are skipped; every
// remaining stop is appended after, keeping its previous relative position.
func (s *ServiceImpl) ReorderStops(ctx context.Context, userID, tripID uuid.UUID, order []uuid.UUID) ([]models.TripStop, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ReorderStops")
	defer span.End()

	if len(order) == 0 {
		return nil, fmt.Errorf("order list required: %w", models.ErrValidation)
	}

	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}

	stops, err := s.repo.ListStops(ctx, tripID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*models.TripStop, len(stops))
	for i := range stops {
		byID[stops[i].ID] = &stops[i]
	}

	sequence := make([]uuid.UUID, 0, len(stops))
	placed := make(map[uuid.UUID]bool, len(stops))
	for _, id := range order {
		if _, ok := byID[id]; ok && !placed[id] {
			sequence = append(sequence, id)
			placed[id] = true
		}
	}
	// Tail keeps the prior (ord, start_date) order from ListStops.
	for i := range stops {
		if !placed[stops[i].ID] {
			sequence = append(sequence, stops[i].ID)
		}
	}

	for pos, id := range sequence {
		if err := s.repo.SetStopOrder(ctx, id, pos+1); err != nil {
			return nil, err
		}
	}
	return s.repo.ListStops(ctx, tripID)
}

func (s *ServiceImpl) CreateActivity(ctx context.Context, userID, tripID, stopID uuid.UUID, params CreateActivityParams) (*models.Activity, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "CreateActivity")
	defer span.End()

	if _, err := s.ownedStop(ctx, userID, tripID, stopID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(params.Title) == "" {
		return nil, fmt.Errorf("activity title is required: %w", models.ErrValidation)
	}
	if params.Currency == "" {
		params.Currency = "USD"
	}
	return s.repo.CreateActivity(ctx, stopID, params)
}

func (s *ServiceImpl) ListActivities(ctx context.Context, userID, tripID, stopID uuid.UUID) ([]models.Activity, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "ListActivities")
	defer span.End()

	if _, err := s.ownedStop(ctx, userID, tripID, stopID); err != nil {
		return nil, err
	}
	return s.repo.ListActivities(ctx, stopID)
}

func (s *ServiceImpl) UpdateActivity(ctx context.Context, userID, tripID, stopID, activityID uuid.UUID, params UpdateActivityParams) (*models.Activity, error) {
	ctx, span := otel.Tracer("TripService").Start(ctx, "UpdateActivity")
	defer span.End()

	if _, err := s.ownedStop(ctx, userID, tripID, stopID); err != nil {
		return nil, err
	}
	return s.repo.UpdateActivity(ctx, stopID, activityID, params)
}

func (s *ServiceImpl) DeleteActivity(ctx context.Context, userID, tripID, stopID, activityID uuid.UUID) error {
	ctx, span := otel.Tracer("TripService").Start(ctx, "DeleteActivity")
	defer span.End()

	if _, err := s.ownedStop(ctx, userID, tripID, stopID); err != nil {
		return err
	}
	return s.repo.DeleteActivity(ctx, stopID, activityID)
}

func (s *ServiceImpl) ownedStop(ctx context.Context, userID, tripID, stopID uuid.UUID) (*models.TripStop, error) {
	if _, err := s.repo.GetTrip(ctx, userID, tripID); err != nil {
		return nil, err
	}
	return s.repo.GetStop(ctx, tripID, stopID)
}

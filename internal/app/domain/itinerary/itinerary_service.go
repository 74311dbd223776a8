// Package itinerary builds derived views over a trip: generated stop
// sequences, budget summaries, the day-wise calendar, and exports.
package itinerary

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/catalog"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/city"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/trip"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/llm"
)

type ItineraryService interface {
	Generate(ctx context.Context, userID, tripID uuid.UUID, in GenerateInput) ([]models.TripStop, error)
	Budget(ctx context.Context, userID, tripID uuid.UUID) (*models.BudgetSummary, error)
	Calendar(ctx context.Context, userID, tripID uuid.UUID) (*models.CalendarView, error)
	ExportPDF(ctx context.Context, userID, tripID uuid.UUID) ([]byte, string, error)
	ExportICS(ctx context.Context, userID, tripID uuid.UUID) ([]byte, string, error)
}

type ServiceImpl struct {
	trips         trip.Repository
	cities        city.Repository
	catalog       catalog.Repository
	llm           llm.Generator
	logger        *zap.Logger
	generateGroup singleflight.Group
}

var _ ItineraryService = (*ServiceImpl)(nil)

func NewItineraryService(trips trip.Repository, cities city.Repository, catalogRepo catalog.Repository, generator llm.Generator, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		trips:   trips,
		cities:  cities,
		catalog: catalogRepo,
		llm:     generator,
		logger:  logger,
	}
}

func (s *ServiceImpl) Budget(ctx context.Context, userID, tripID uuid.UUID) (*models.BudgetSummary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Budget")
	defer span.End()

	t, err := s.trips.GetTripWithDetails(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	summary := BuildBudget(t, defaultCurrency)
	return &summary, nil
}

func (s *ServiceImpl) Calendar(ctx context.Context, userID, tripID uuid.UUID) (*models.CalendarView, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Calendar")
	defer span.End()

	t, err := s.trips.GetTripWithDetails(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}
	view := BuildCalendar(t)
	return &view, nil
}

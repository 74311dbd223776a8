package itinerary

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/trip"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
	"github.com/FACorreiaa/go-globetrotters/internal/observability/metrics"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/llm"
)

const (
	defaultDaysPerCity   = 2
	defaultCurrency      = "USD"
	maxLLMActivities     = 5
	maxCatalogActivities = 3
	maxFallbackCities    = 3
)

// GenerateInput is the caller-facing knobs of itinerary generation.
type GenerateInput struct {
	DaysPerCity int
	Currency    string
	Force       bool
}

type llmItinerary struct {
	Cities []struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"cities"`
	Activities map[string][]struct {
		Title     string `json:"title"`
		Category  string `json:"category"`
		CostMinor int    `json:"cost_minor"`
	} `json:"activities"`
}

const generatorSystemPrompt = "You are a travel planning assistant. Return only valid JSON, no prose."

// Generate replaces the trip's stops with a generated sequence. External
// failures never surface: any problem on the text-generation path degrades
// to the catalog heuristic. The only caller-visible error is an unknown or
// unowned trip.
func (s *ServiceImpl) Generate(ctx context.Context, userID, tripID uuid.UUID, in GenerateInput) ([]models.TripStop, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate")
	defer span.End()

	l := s.logger.With(zap.String("method", "Generate"), zap.String("tripID", tripID.String()))

	t, err := s.trips.GetTrip(ctx, userID, tripID)
	if err != nil {
		return nil, err
	}

	if in.DaysPerCity < 1 {
		in.DaysPerCity = defaultDaysPerCity
	}
	in.Currency = normalizeCurrency(in.Currency)

	// Concurrent generates on the same trip share one rebuild; the
	// delete-then-recreate sequence never interleaves.
	result, err, _ := s.generateGroup.Do(tripID.String(), func() (any, error) {
		return s.generateLocked(ctx, t, in, l)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.TripStop), nil
}

func (s *ServiceImpl) generateLocked(ctx context.Context, t *models.Trip, in GenerateInput, l *zap.Logger) ([]models.TripStop, error) {
	existing, err := s.trips.ListStops(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 && !in.Force {
		return s.stopsWithActivities(ctx, t.ID)
	}

	if err := s.trips.DeleteStopsForTrip(ctx, t.ID); err != nil {
		return nil, err
	}

	plan := s.planCities(ctx, t, in, l)

	cursor := t.StartDate
	for i, pc := range plan.cities {
		cityRow, err := s.cities.GetOrCreate(ctx, pc.name, pc.country, "")
		if err != nil {
			return nil, err
		}

		stop, err := s.trips.CreateStop(ctx, t.ID, trip.CreateStopParams{
			CityID:    cityRow.ID,
			StartDate: cursor,
			EndDate:   cursor.AddDays(in.DaysPerCity),
			Order:     i + 1,
		})
		if err != nil {
			return nil, err
		}
		cursor = cursor.AddDays(in.DaysPerCity)

		for _, act := range s.activitiesFor(ctx, plan, pc.name, l) {
			_, err := s.trips.CreateActivity(ctx, stop.ID, trip.CreateActivityParams{
				Title:      act.title,
				Category:   act.category,
				CostAmount: act.costMinor,
				Currency:   in.Currency,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	metrics.Get().ItinerariesGenerated.Add(ctx, 1)
	l.Info("Itinerary generated", zap.Int("cities", len(plan.cities)), zap.Bool("llm", plan.fromLLM))
	return s.stopsWithActivities(ctx, t.ID)
}

type plannedCity struct {
	name    string
	country string
}

type plannedActivity struct {
	title     string
	category  string
	costMinor int
}

type cityPlan struct {
	cities     []plannedCity
	activities map[string][]plannedActivity
	fromLLM    bool
}

// planCities asks the text-generation service for a city route and per-city
// activities, degrading to the catalog heuristic on any failure.
func (s *ServiceImpl) planCities(ctx context.Context, t *models.Trip, in GenerateInput, l *zap.Logger) cityPlan {
	if parsed := s.llmPlan(ctx, t, in, l); parsed != nil {
		return *parsed
	}

	metrics.Get().LLMFallbacksTotal.Add(ctx, 1)

	plan := cityPlan{activities: map[string][]plannedActivity{}}
	cities, err := s.catalog.DistinctCities(ctx, maxFallbackCities)
	if err != nil {
		l.Warn("Catalog city lookup failed", zap.Error(err))
	}
	for _, c := range cities {
		plan.cities = append(plan.cities, plannedCity{name: c.Name, country: c.Country})
	}
	if len(plan.cities) == 0 {
		plan.cities = []plannedCity{{name: "Paris", country: "France"}, {name: "Rome", country: "Italy"}}
	}
	return plan
}

func (s *ServiceImpl) llmPlan(ctx context.Context, t *models.Trip, in GenerateInput, l *zap.Logger) *cityPlan {
	metrics.Get().LLMRequestsTotal.Add(ctx, 1)

	prompt := fmt.Sprintf(
		`Plan a trip named %q from %s to %s, spending %d days in each city.
Respond with a JSON object of this exact shape:
{"cities":[{"name":"City","country":"Country"}],"activities":{"City":[{"title":"...","category":"...","cost_minor":1234}]}}
Costs are integer minor units of %s. Suggest 2 to 4 cities and up to 5 activities per city.`,
		t.Name, t.StartDate, t.EndDate, in.DaysPerCity, in.Currency,
	)

	reply, err := s.llm.Generate(ctx, generatorSystemPrompt, prompt)
	if err != nil {
		l.Warn("Text generation failed, using heuristic route", zap.Error(err))
		return nil
	}

	var parsed llmItinerary
	if err := llm.DecodeJSONObject(reply, &parsed); err != nil {
		l.Warn("Unparseable generation reply, using heuristic route", zap.Error(err))
		return nil
	}
	if len(parsed.Cities) == 0 {
		return nil
	}

	plan := cityPlan{activities: map[string][]plannedActivity{}, fromLLM: true}
	for _, c := range parsed.Cities {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		plan.cities = append(plan.cities, plannedCity{name: c.Name, country: c.Country})
	}
	if len(plan.cities) == 0 {
		return nil
	}
	for cityName, acts := range parsed.Activities {
		for _, a := range acts {
			if strings.TrimSpace(a.Title) == "" {
				continue
			}
			plan.activities[cityName] = append(plan.activities[cityName], plannedActivity{
				title:     a.Title,
				category:  a.Category,
				costMinor: a.CostMinor,
			})
		}
	}
	return &plan
}

// activitiesFor returns up to 5 generated activities for the city, or the
// first 3 catalog entries when the generated payload has none.
func (s *ServiceImpl) activitiesFor(ctx context.Context, plan cityPlan, cityName string, l *zap.Logger) []plannedActivity {
	if acts := plan.activities[cityName]; len(acts) > 0 {
		if len(acts) > maxLLMActivities {
			acts = acts[:maxLLMActivities]
		}
		return acts
	}

	entries, err := s.catalog.FirstN(ctx, maxCatalogActivities)
	if err != nil {
		l.Warn("Catalog activity lookup failed", zap.Error(err))
		return nil
	}
	out := make([]plannedActivity, 0, len(entries))
	for _, e := range entries {
		out = append(out, plannedActivity{title: e.Title, category: e.Category, costMinor: e.AvgCost})
	}
	return out
}

func (s *ServiceImpl) stopsWithActivities(ctx context.Context, tripID uuid.UUID) ([]models.TripStop, error) {
	stops, err := s.trips.ListStops(ctx, tripID)
	if err != nil {
		return nil, err
	}
	for i := range stops {
		acts, err := s.trips.ListActivities(ctx, stops[i].ID)
		if err != nil {
			return nil, err
		}
		stops[i].Activities = acts
	}
	if stops == nil {
		stops = []models.TripStop{}
	}
	return stops, nil
}

func normalizeCurrency(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return defaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return defaultCurrency
	}
	return unit.String()
}

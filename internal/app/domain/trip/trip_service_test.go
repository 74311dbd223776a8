package trip

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

// fakeRepo keeps trips and stops in memory for service-level tests.
type fakeRepo struct {
	trip  *models.Trip
	stops map[uuid.UUID]*models.TripStop
	slugs map[string]bool
}

func newFakeRepo(t *models.Trip) *fakeRepo {
	return &fakeRepo{trip: t, stops: map[uuid.UUID]*models.TripStop{}, slugs: map[string]bool{}}
}

func (f *fakeRepo) addStop(order int, start models.Date, days int) *models.TripStop {
	stop := &models.TripStop{
		ID:        uuid.New(),
		TripID:    f.trip.ID,
		City:      &models.City{ID: uuid.New(), Name: "City"},
		StartDate: start,
		EndDate:   start.AddDays(days),
		Order:     order,
		CreatedAt: time.Now(),
	}
	f.stops[stop.ID] = stop
	return stop
}

func (f *fakeRepo) GetTrip(_ context.Context, userID, tripID uuid.UUID) (*models.Trip, error) {
	if f.trip == nil || f.trip.ID != tripID || f.trip.UserID != userID {
		return nil, fmt.Errorf("trip %s: %w", tripID, models.ErrNotFound)
	}
	return f.trip, nil
}

func (f *fakeRepo) ListStops(_ context.Context, tripID uuid.UUID) ([]models.TripStop, error) {
	out := make([]models.TripStop, 0, len(f.stops))
	for _, s := range f.stops {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].StartDate.Before(out[j].StartDate.Time)
	})
	return out, nil
}

func (f *fakeRepo) SetStopOrder(_ context.Context, stopID uuid.UUID, order int) error {
	stop, ok := f.stops[stopID]
	if !ok {
		return models.ErrNotFound
	}
	stop.Order = order
	return nil
}

func (f *fakeRepo) SetPublicSlug(_ context.Context, tripID uuid.UUID, slug string) error {
	if f.trip.PublicSlug == nil {
		f.trip.PublicSlug = &slug
		f.trip.IsPublic = true
		f.slugs[slug] = true
	}
	return nil
}

func (f *fakeRepo) MarkPublic(_ context.Context, tripID uuid.UUID) error {
	f.trip.IsPublic = true
	return nil
}

func (f *fakeRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	return f.slugs[slug], nil
}

// Unused parts of the repository contract.
func (f *fakeRepo) CreateTrip(context.Context, uuid.UUID, CreateTripParams) (*models.Trip, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) ListTrips(context.Context, uuid.UUID) ([]models.Trip, error) { return nil, nil }
func (f *fakeRepo) GetTripWithDetails(ctx context.Context, userID, tripID uuid.UUID) (*models.Trip, error) {
	return f.GetTrip(ctx, userID, tripID)
}
func (f *fakeRepo) UpdateTrip(context.Context, uuid.UUID, uuid.UUID, UpdateTripParams) (*models.Trip, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) DeleteTrip(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (f *fakeRepo) GetPublicTripBySlug(context.Context, string) (*models.Trip, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) RecentTrips(context.Context, uuid.UUID, int) ([]models.Trip, error) {
	return nil, nil
}
func (f *fakeRepo) CreateStop(context.Context, uuid.UUID, CreateStopParams) (*models.TripStop, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) GetStop(context.Context, uuid.UUID, uuid.UUID) (*models.TripStop, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) UpdateStop(context.Context, uuid.UUID, uuid.UUID, UpdateStopParams) (*models.TripStop, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) DeleteStop(context.Context, uuid.UUID, uuid.UUID) error      { return nil }
func (f *fakeRepo) DeleteStopsForTrip(context.Context, uuid.UUID) error         { return nil }
func (f *fakeRepo) CreateActivity(context.Context, uuid.UUID, CreateActivityParams) (*models.Activity, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) ListActivities(context.Context, uuid.UUID) ([]models.Activity, error) {
	return nil, nil
}
func (f *fakeRepo) GetActivity(context.Context, uuid.UUID, uuid.UUID) (*models.Activity, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) UpdateActivity(context.Context, uuid.UUID, uuid.UUID, UpdateActivityParams) (*models.Activity, error) {
	return nil, models.ErrNotFound
}
func (f *fakeRepo) DeleteActivity(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type stubCityRepo struct{}

func (stubCityRepo) Search(context.Context, string) ([]models.City, error) { return nil, nil }
func (stubCityRepo) GetByNameCountry(context.Context, string, string) (*models.City, error) {
	return nil, models.ErrNotFound
}
func (stubCityRepo) GetByName(context.Context, string) (*models.City, error) {
	return nil, models.ErrNotFound
}
func (stubCityRepo) GetOrCreate(_ context.Context, name, country, _ string) (*models.City, error) {
	return &models.City{ID: uuid.New(), Name: name, Country: country}, nil
}
func (stubCityRepo) SaveExternalPlace(context.Context, models.ExternalPlace) error { return nil }

type stubCatalogRepo struct{}

func (stubCatalogRepo) FirstN(context.Context, int) ([]models.CatalogEntry, error) {
	return []models.CatalogEntry{
		{Title: "Walking Tour", Category: "sightseeing", AvgCost: 2000},
	}, nil
}
func (stubCatalogRepo) DistinctCities(context.Context, int) ([]models.City, error) {
	return nil, nil
}

func serviceFixture() (*ServiceImpl, *fakeRepo, uuid.UUID, *models.Trip) {
	userID := uuid.New()
	start := models.NewDate(2026, time.May, 10)
	t := &models.Trip{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      "Euro Summer",
		StartDate: start,
		EndDate:   start.AddDays(9),
	}
	repo := newFakeRepo(t)
	svc := NewTripService(repo, stubCityRepo{}, stubCatalogRepo{}, zap.NewNop())
	return svc, repo, userID, t
}

func TestReorderStopsStableTail(t *testing.T) {
	svc, repo, userID, tr := serviceFixture()
	a := repo.addStop(1, tr.StartDate, 2)
	b := repo.addStop(2, tr.StartDate.AddDays(2), 2)
	c := repo.addStop(3, tr.StartDate.AddDays(4), 2)

	stops, err := svc.ReorderStops(context.Background(), userID, tr.ID, []uuid.UUID{c.ID, a.ID})
	require.NoError(t, err)
	require.Len(t, stops, 3)

	// Named stops first in the given sequence, B appended after.
	assert.Equal(t, c.ID, stops[0].ID)
	assert.Equal(t, a.ID, stops[1].ID)
	assert.Equal(t, b.ID, stops[2].ID)
	for i, s := range stops {
		assert.Equal(t, i+1, s.Order)
	}
}

func TestReorderStopsIgnoresUnknownIDs(t *testing.T) {
	svc, repo, userID, tr := serviceFixture()
	a := repo.addStop(1, tr.StartDate, 2)
	b := repo.addStop(2, tr.StartDate.AddDays(2), 2)

	stops, err := svc.ReorderStops(context.Background(), userID, tr.ID, []uuid.UUID{uuid.New(), b.ID})
	require.NoError(t, err)
	require.Len(t, stops, 2)
	assert.Equal(t, b.ID, stops[0].ID)
	assert.Equal(t, a.ID, stops[1].ID)
}

func TestReorderStopsEmptyList(t *testing.T) {
	svc, _, userID, tr := serviceFixture()

	_, err := svc.ReorderStops(context.Background(), userID, tr.ID, nil)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestShareTripAssignsSlugOnce(t *testing.T) {
	svc, repo, userID, tr := serviceFixture()

	shared, err := svc.ShareTrip(context.Background(), userID, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, shared.PublicSlug)
	assert.True(t, shared.IsPublic)

	first := *shared.PublicSlug
	assert.Contains(t, first, "euro-summer")
	assert.Contains(t, first, tr.ID.String()[:8])

	// A second share keeps the original slug even after a rename.
	repo.trip.Name = "Renamed"
	again, err := svc.ShareTrip(context.Background(), userID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, first, *again.PublicSlug)
}

func TestShareTripCollisionSuffix(t *testing.T) {
	svc, repo, userID, tr := serviceFixture()
	base := slugify(userID.String()[:8]+"-"+tr.Name) + "-" + tr.ID.String()[:8]
	repo.slugs[base] = true

	shared, err := svc.ShareTrip(context.Background(), userID, tr.ID)
	require.NoError(t, err)
	require.NotNil(t, shared.PublicSlug)
	assert.Equal(t, base+"-s", *shared.PublicSlug)
}

func TestPublicItineraryDemo(t *testing.T) {
	svc, _, _, _ := serviceFixture()

	start := models.NewDate(2026, time.June, 1)
	demo, err := svc.PublicItinerary(context.Background(), "demo", DemoParams{
		Origin:      "Berlin",
		Cities:      []string{"Lisbon", "Porto"},
		Start:       start,
		DaysPerCity: 3,
		Currency:    "EUR",
	})
	require.NoError(t, err)
	require.Len(t, demo.Stops, 2)
	assert.Equal(t, "Lisbon", demo.Stops[0].City.Name)
	assert.Equal(t, start.AddDays(3), demo.Stops[0].EndDate)
	assert.Equal(t, start.AddDays(3), demo.Stops[1].StartDate)
	assert.Equal(t, start.AddDays(6), demo.EndDate)
	require.NotEmpty(t, demo.Stops[0].Activities)
	assert.Equal(t, "EUR", demo.Stops[0].Activities[0].Currency)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "euro-summer-2026", slugify("Euro Summer 2026"))
	assert.Equal(t, "a-b", slugify("  A__B  "))
	assert.Equal(t, "", slugify("!!!"))
}

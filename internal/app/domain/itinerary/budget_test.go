package itinerary

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     string
	}{
		{"food keyword", "Food & Drink", "meals"},
		{"restaurant keyword", "fancy restaurant", "meals"},
		{"flight keyword", "Flight to Rome", "transport"},
		{"taxi keyword", "airport taxi", "transport"},
		{"hotel keyword", "hotel stay", "stay"},
		{"accommodation keyword", "Accommodation", "stay"},
		{"sightseeing", "sightseeing", "activities"},
		{"museum", "museum visit", "activities"},
		{"unmatched non-empty", "yoga retreat", "activities"},
		{"blank", "", "other"},
		{"whitespace only", "   ", "other"},
		{"meals beats transport", "food transport", "meals"},
		{"case insensitive", "RESTAURANT", "meals"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.category))
		})
	}
}

func testTrip(days int) *models.Trip {
	start := models.NewDate(2026, time.March, 1)
	return &models.Trip{
		ID:        uuid.New(),
		Name:      "Test Trip",
		StartDate: start,
		EndDate:   start.AddDays(days),
	}
}

func stopWithActivities(start models.Date, days, order int, activities ...models.Activity) models.TripStop {
	return models.TripStop{
		ID:         uuid.New(),
		City:       &models.City{ID: uuid.New(), Name: "Paris", Country: "France"},
		StartDate:  start,
		EndDate:    start.AddDays(days),
		Order:      order,
		Activities: activities,
	}
}

func act(category string, cost int) models.Activity {
	return models.Activity{
		ID:         uuid.New(),
		Title:      category,
		Category:   category,
		CostAmount: cost,
		Currency:   "EUR",
	}
}

func TestBuildBudgetEmptyTrip(t *testing.T) {
	trip := testTrip(4)

	got := BuildBudget(trip, "USD")

	assert.Equal(t, 0, got.TotalMinor)
	assert.Equal(t, 0, got.AvgPerDayMinor)
	assert.Equal(t, models.CategoryTotals{}, got.Categories)
	assert.Equal(t, "USD", got.Currency)
	assert.Empty(t, got.PerCity)
}

func TestBuildBudgetWorkedExample(t *testing.T) {
	trip := testTrip(4)
	trip.Stops = []models.TripStop{
		stopWithActivities(trip.StartDate, 4, 1,
			act("sightseeing", 2000),
			act("food", 3500),
			act("hotel stay", 5000),
		),
	}

	got := BuildBudget(trip, "USD")

	assert.Equal(t, 10500, got.TotalMinor)
	assert.Equal(t, models.CategoryTotals{
		Meals:      3500,
		Stay:       5000,
		Activities: 2000,
	}, got.Categories)
	assert.Equal(t, 10500/4, got.AvgPerDayMinor)
	assert.Equal(t, "EUR", got.Currency)
}

func TestBuildBudgetPerCitySumsToTotal(t *testing.T) {
	trip := testTrip(6)
	trip.Stops = []models.TripStop{
		stopWithActivities(trip.StartDate, 3, 1, act("food", 1200), act("museum", 800)),
		stopWithActivities(trip.StartDate.AddDays(3), 3, 2, act("train", 4000), act("", 300)),
	}

	got := BuildBudget(trip, "USD")

	require.Len(t, got.PerCity, 2)
	var perCitySum int
	for _, cb := range got.PerCity {
		assert.Equal(t, cb.Categories.Sum(), cb.TotalMinor)
		perCitySum += cb.TotalMinor
	}
	assert.Equal(t, got.TotalMinor, perCitySum)
	assert.Equal(t, 300, got.Categories.Other)
}

func TestBuildBudgetFloorsZeroSpanToOneDay(t *testing.T) {
	trip := testTrip(0)
	trip.Stops = []models.TripStop{
		stopWithActivities(trip.StartDate, 1, 1, act("food", 900)),
	}

	got := BuildBudget(trip, "USD")

	assert.Equal(t, 1, got.Days)
	assert.Equal(t, 900, got.AvgPerDayMinor)
}

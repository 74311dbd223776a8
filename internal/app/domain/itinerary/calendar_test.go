package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

func TestBuildCalendarDayCount(t *testing.T) {
	trip := testTrip(5)

	view := BuildCalendar(trip)

	assert.Equal(t, 5, view.TotalDays)
	require.Len(t, view.Days, 5)
	for i, day := range view.Days {
		assert.Equal(t, i+1, day.DayIndex)
		assert.Equal(t, trip.StartDate.AddDays(i), day.Date)
	}
}

func TestBuildCalendarZeroSpanIsOneDay(t *testing.T) {
	trip := testTrip(0)

	view := BuildCalendar(trip)

	assert.Equal(t, 1, view.TotalDays)
	require.Len(t, view.Days, 1)
}

func TestBuildCalendarUncoveredDay(t *testing.T) {
	trip := testTrip(3)
	// Stop only covers the first two days.
	trip.Stops = []models.TripStop{
		stopWithActivities(trip.StartDate, 2, 1, act("food", 100)),
	}

	view := BuildCalendar(trip)

	require.Len(t, view.Days, 3)
	assert.NotNil(t, view.Days[0].StopID)
	assert.NotNil(t, view.Days[1].StopID)
	assert.Nil(t, view.Days[2].StopID)
	assert.Nil(t, view.Days[2].City)
	assert.Empty(t, view.Days[2].Activities)
}

func TestBuildCalendarActivityPartition(t *testing.T) {
	trip := testTrip(3)
	activities := []models.Activity{
		act("a1", 1), act("a2", 2), act("a3", 3), act("a4", 4), act("a5", 5),
	}
	trip.Stops = []models.TripStop{
		stopWithActivities(trip.StartDate, 3, 1, activities...),
	}

	view := BuildCalendar(trip)

	// Every activity appears exactly once across the stop's days.
	seen := map[string]int{}
	var total int
	for _, day := range view.Days {
		for _, a := range day.Activities {
			seen[a.ID.String()]++
			total++
		}
	}
	assert.Equal(t, len(activities), total)
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}

	// Proportional bucketing: 5 activities over 3 days -> 2/2/1.
	assert.Len(t, view.Days[0].Activities, 2)
	assert.Len(t, view.Days[1].Activities, 2)
	assert.Len(t, view.Days[2].Activities, 1)

	// Order within the stop is preserved.
	assert.Equal(t, "a1", view.Days[0].Activities[0].Title)
	assert.Equal(t, "a2", view.Days[0].Activities[1].Title)
	assert.Equal(t, "a5", view.Days[2].Activities[0].Title)
}

func TestBuildCalendarFirstCoveringStopWins(t *testing.T) {
	trip := testTrip(2)
	first := stopWithActivities(trip.StartDate, 2, 1, act("food", 100))
	second := stopWithActivities(trip.StartDate, 2, 2, act("museum", 200))
	trip.Stops = []models.TripStop{first, second}

	view := BuildCalendar(trip)

	require.NotNil(t, view.Days[0].StopID)
	assert.Equal(t, first.ID, *view.Days[0].StopID)
}

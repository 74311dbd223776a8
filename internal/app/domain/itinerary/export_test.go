package itinerary

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/trip"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

func exportFixture(t *testing.T) (*ServiceImpl, *fakeTripRepo) {
	t.Helper()
	tr := testTrip(4)
	tr.UserID = uuid.New()
	repo := newFakeTripRepo(tr)
	svc := NewItineraryService(repo, fakeCityRepo{}, fakeCatalogRepo{}, &fakeLLM{}, zap.NewNop())

	stop, err := repo.CreateStop(context.Background(), tr.ID, trip.CreateStopParams{
		CityID:    uuid.New(),
		StartDate: tr.StartDate,
		EndDate:   tr.StartDate.AddDays(2),
		Order:     1,
	})
	require.NoError(t, err)
	_, err = repo.CreateActivity(context.Background(), stop.ID, trip.CreateActivityParams{
		Title:      "Tram 28 Ride",
		Category:   "transport",
		CostAmount: 300,
		Currency:   "EUR",
	})
	require.NoError(t, err)

	_, err = repo.CreateStop(context.Background(), tr.ID, trip.CreateStopParams{
		CityID:    uuid.New(),
		StartDate: tr.StartDate.AddDays(2),
		EndDate:   tr.StartDate.AddDays(4),
		Order:     2,
	})
	require.NoError(t, err)
	return svc, repo
}

func TestExportPDF(t *testing.T) {
	svc, repo := exportFixture(t)

	data, filename, err := svc.ExportPDF(context.Background(), repo.trip.UserID, repo.trip.ID)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Equal(t, "itinerary_"+repo.trip.ID.String()[:8]+".pdf", filename)
}

func TestExportPDFUnknownTrip(t *testing.T) {
	svc, repo := exportFixture(t)

	_, _, err := svc.ExportPDF(context.Background(), repo.trip.UserID, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestExportICS(t *testing.T) {
	svc, repo := exportFixture(t)

	data, filename, err := svc.ExportICS(context.Background(), repo.trip.UserID, repo.trip.ID)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "METHOD:PUBLISH")
	// One all-day event per stop.
	assert.Equal(t, 2, strings.Count(body, "BEGIN:VEVENT"))
	assert.Contains(t, body, "Tram 28 Ride")
	assert.Equal(t, "itinerary_"+repo.trip.ID.String()[:8]+".ics", filename)
}

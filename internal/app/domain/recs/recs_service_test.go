package recs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/auth"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/trip"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
	"github.com/FACorreiaa/go-globetrotters/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	m.Run()
}

// stubUsers only answers GetProfile; everything else is unused here.
type stubUsers struct {
	auth.AuthRepo
	profile *models.UserProfile
}

func (s stubUsers) GetProfile(context.Context, uuid.UUID) (*models.UserProfile, error) {
	return s.profile, nil
}

type stubTrips struct {
	trip.Repository
	trips []models.Trip
}

func (s stubTrips) RecentTrips(context.Context, uuid.UUID, int) ([]models.Trip, error) {
	return s.trips, nil
}

type fakeRecsRepo struct {
	rows []models.PersonalizedRec
}

func (f *fakeRecsRepo) Insert(_ context.Context, userID uuid.UUID, signature, city, country string, data json.RawMessage) error {
	f.rows = append(f.rows, models.PersonalizedRec{
		ID:        uuid.New(),
		UserID:    userID,
		Signature: signature,
		City:      city,
		Country:   country,
		Data:      data,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeRecsRepo) NewestByUserSignature(_ context.Context, userID uuid.UUID, signature string) (*models.PersonalizedRec, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID && f.rows[i].Signature == signature {
			return &f.rows[i], nil
		}
	}
	return nil, fmt.Errorf("personalized rec: %w", models.ErrNotFound)
}

func (f *fakeRecsRepo) NewestByCityCountry(_ context.Context, city, country string) (*models.PersonalizedRec, error) {
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].City == city && f.rows[i].Country == country {
			return &f.rows[i], nil
		}
	}
	return nil, fmt.Errorf("personalized rec: %w", models.ErrNotFound)
}

type stubGenerator struct {
	reply string
	err   error
	calls int
}

func (s *stubGenerator) Generate(context.Context, string, string) (string, error) {
	s.calls++
	return s.reply, s.err
}

const curatedReply = `{
  "bannerTitle": "Iberian escapes",
  "blurb": "Coastal towns within reach",
  "topSelections": [
    {"name": "Sintra", "country": "Portugal", "reason": "Palaces in the hills"},
    {"name": "Cascais", "country": "Portugal", "reason": "Beach day trips"}
  ],
  "groupings": ["Coast", "Hills"],
  "sortOptions": ["Trending"]
}`

func recsFixture(gen *stubGenerator) (*ServiceImpl, *fakeRecsRepo, uuid.UUID) {
	repo := &fakeRecsRepo{}
	svc := NewRecsService(repo, stubUsers{profile: sigProfile()}, stubTrips{trips: sigTrips()}, gen, zap.NewNop())
	return svc, repo, uuid.New()
}

func TestPersonalizedCuratesAndPersists(t *testing.T) {
	gen := &stubGenerator{reply: curatedReply}
	svc, repo, userID := recsFixture(gen)

	payload, err := svc.Personalized(context.Background(), userID, false)
	require.NoError(t, err)

	assert.Equal(t, models.RecSourceOpenRouter, payload.Source)
	assert.Equal(t, "Iberian escapes", payload.BannerTitle)
	assert.Len(t, payload.TopSelections, 2)
	assert.Equal(t, 1, gen.calls)

	require.Len(t, repo.rows, 1)
	assert.Equal(t, userID, repo.rows[0].UserID)
	assert.Equal(t, "Lisbon", repo.rows[0].City)
}

func TestPersonalizedFallbackWhenGenerationFails(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream timeout")}
	svc, repo, userID := recsFixture(gen)

	payload, err := svc.Personalized(context.Background(), userID, false)
	require.NoError(t, err)

	assert.Equal(t, models.RecSourceFallback, payload.Source)
	assert.Equal(t, "Explore Portugal", payload.BannerTitle)
	assert.Equal(t, "Handpicked getaways near Lisbon", payload.Blurb)
	assert.Len(t, payload.TopSelections, 6)
	// Degraded payloads still land in the cache table.
	assert.Len(t, repo.rows, 1)
}

func TestPersonalizedFallbackOnUnparseableReply(t *testing.T) {
	gen := &stubGenerator{reply: "sorry, I cannot help with that"}
	svc, _, userID := recsFixture(gen)

	payload, err := svc.Personalized(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Equal(t, models.RecSourceFallback, payload.Source)
}

func TestPersonalizedHotCacheOnRepeat(t *testing.T) {
	gen := &stubGenerator{reply: curatedReply}
	svc, _, userID := recsFixture(gen)

	first, err := svc.Personalized(context.Background(), userID, false)
	require.NoError(t, err)
	second, err := svc.Personalized(context.Background(), userID, false)
	require.NoError(t, err)

	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, first, second)
}

func TestPersonalizedUserCacheTier(t *testing.T) {
	gen := &stubGenerator{reply: curatedReply}
	svc, repo, userID := recsFixture(gen)

	signature := BuildSignature(sigProfile(), sigTrips())
	data, err := json.Marshal(fallbackPayload("Lisbon", "Portugal"))
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), userID, signature, "Lisbon", "Portugal", data))

	payload, err := svc.Personalized(context.Background(), userID, false)
	require.NoError(t, err)

	assert.Equal(t, models.RecSourceUserCache, payload.Source)
	assert.Equal(t, 0, gen.calls)
}

func TestPersonalizedCityCacheTier(t *testing.T) {
	gen := &stubGenerator{reply: curatedReply}
	svc, repo, userID := recsFixture(gen)

	// A different user's payload for the same home city.
	data, err := json.Marshal(fallbackPayload("Lisbon", "Portugal"))
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), uuid.New(), "other-signature", "Lisbon", "Portugal", data))

	payload, err := svc.Personalized(context.Background(), userID, false)
	require.NoError(t, err)

	assert.Equal(t, models.RecSourceCityCache, payload.Source)
	assert.Equal(t, 0, gen.calls)
}

func TestPersonalizedForceSkipsCaches(t *testing.T) {
	gen := &stubGenerator{reply: curatedReply}
	svc, repo, userID := recsFixture(gen)

	signature := BuildSignature(sigProfile(), sigTrips())
	data, err := json.Marshal(fallbackPayload("Lisbon", "Portugal"))
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), userID, signature, "Lisbon", "Portugal", data))

	payload, err := svc.Personalized(context.Background(), userID, true)
	require.NoError(t, err)

	assert.Equal(t, models.RecSourceOpenRouter, payload.Source)
	assert.Equal(t, 1, gen.calls)
	assert.Len(t, repo.rows, 2)
}

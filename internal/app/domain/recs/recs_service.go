// Package recs serves personalized homepage content. Resolution walks an
// ordered list of cache tiers and degrades to a deterministic payload when
// the text-generation service is unavailable; the endpoint never fails for
// reasons other than authentication.
package recs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/auth"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/trip"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
	"github.com/FACorreiaa/go-globetrotters/internal/observability/metrics"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/llm"
)

const hotCacheTTL = 5 * time.Minute

const curationSystemPrompt = "Return only valid JSON"

const curationPrompt = "You are a travel curator. Based on the user's profile and recent trips, propose: " +
	"bannerTitle (<=6 words), blurb (<=20 words), topSelections: 6 destination cards with { name, country, reason }, " +
	"groupings: short headings, sortOptions: short options. Respond as compact JSON with keys: " +
	"bannerTitle, blurb, topSelections, groupings, sortOptions."

type RecsService interface {
	Personalized(ctx context.Context, userID uuid.UUID, force bool) (*models.RecPayload, error)
}

type ServiceImpl struct {
	repo     Repository
	users    auth.AuthRepo
	trips    trip.Repository
	llm      llm.Generator
	hotCache *gocache.Cache
	logger   *zap.Logger
}

var _ RecsService = (*ServiceImpl)(nil)

func NewRecsService(repo Repository, users auth.AuthRepo, trips trip.Repository, generator llm.Generator, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		users:    users,
		trips:    trips,
		llm:      generator,
		hotCache: gocache.New(hotCacheTTL, 2*hotCacheTTL),
		logger:   logger,
	}
}

// strategy is one cache tier: given the signature and profile, either
// resolve a payload or pass.
type strategy struct {
	name string
	fn   func(ctx context.Context, userID uuid.UUID, signature string, profile *models.UserProfile) *models.RecPayload
}

// Personalized resolves the user's homepage payload. Tier order: in-process
// hot cache, the user's own cached signature row, any user's row for the
// same city/country, then a fresh curation call with deterministic
// fallback. force skips every cache tier.
func (s *ServiceImpl) Personalized(ctx context.Context, userID uuid.UUID, force bool) (*models.RecPayload, error) {
	ctx, span := otel.Tracer("RecsService").Start(ctx, "Personalized")
	defer span.End()

	l := s.logger.With(zap.String("method", "Personalized"), zap.String("userID", userID.String()))

	profile, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	trips, err := s.trips.RecentTrips(ctx, userID, signatureMaxTrips)
	if err != nil {
		l.Warn("Recent trips lookup failed, signing profile only", zap.Error(err))
		trips = nil
	}
	signature := BuildSignature(profile, trips)

	if !force {
		tiers := []strategy{
			{name: "hot", fn: s.fromHotCache},
			{name: "user", fn: s.fromUserCache},
			{name: "city", fn: s.fromCityCache},
		}
		for _, tier := range tiers {
			if payload := tier.fn(ctx, userID, signature, profile); payload != nil {
				metrics.Get().RecCacheHitsTotal.Add(ctx, 1)
				l.Debug("Personalization cache hit", zap.String("tier", tier.name))
				return payload, nil
			}
		}
	}

	payload := s.curate(ctx, profile, trips, l)

	if raw, err := json.Marshal(payload); err == nil {
		if err := s.repo.Insert(ctx, userID, signature, profile.City, profile.Country, raw); err != nil {
			l.Warn("Failed to persist personalization payload", zap.Error(err))
		}
		s.hotCache.SetDefault(signature, payload)
	}
	return payload, nil
}

func (s *ServiceImpl) fromHotCache(_ context.Context, _ uuid.UUID, signature string, _ *models.UserProfile) *models.RecPayload {
	if cached, found := s.hotCache.Get(signature); found {
		return cached.(*models.RecPayload)
	}
	return nil
}

func (s *ServiceImpl) fromUserCache(ctx context.Context, userID uuid.UUID, signature string, _ *models.UserProfile) *models.RecPayload {
	rec, err := s.repo.NewestByUserSignature(ctx, userID, signature)
	if err != nil {
		return nil
	}
	return decodePayload(rec.Data, models.RecSourceUserCache)
}

func (s *ServiceImpl) fromCityCache(ctx context.Context, _ uuid.UUID, _ string, profile *models.UserProfile) *models.RecPayload {
	if profile.City == "" || profile.Country == "" {
		return nil
	}
	rec, err := s.repo.NewestByCityCountry(ctx, profile.City, profile.Country)
	if err != nil {
		return nil
	}
	return decodePayload(rec.Data, models.RecSourceCityCache)
}

func decodePayload(raw json.RawMessage, source string) *models.RecPayload {
	var payload models.RecPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	payload.Source = source
	return &payload
}

// curate calls the text-generation service and falls back to the templated
// payload on any failure.
func (s *ServiceImpl) curate(ctx context.Context, profile *models.UserProfile, trips []models.Trip, l *zap.Logger) *models.RecPayload {
	metrics.Get().LLMRequestsTotal.Add(ctx, 1)

	prompt := fmt.Sprintf("%s\nProfile: %s\nRecentTrips: %s",
		curationPrompt, profileSummary(profile), tripSummary(trips))

	reply, err := s.llm.Generate(ctx, curationSystemPrompt, prompt)
	if err == nil {
		var payload models.RecPayload
		if err := llm.DecodeJSONObject(reply, &payload); err == nil && len(payload.TopSelections) > 0 {
			payload.Source = models.RecSourceOpenRouter
			return &payload
		}
		l.Warn("Curation reply did not parse, using fallback")
	} else {
		l.Warn("Curation call failed, using fallback", zap.Error(err))
	}

	metrics.Get().LLMFallbacksTotal.Add(ctx, 1)
	return fallbackPayload(profile.City, profile.Country)
}

func profileSummary(profile *models.UserProfile) string {
	raw, _ := json.Marshal(map[string]string{
		"display_name": profile.DisplayName,
		"city":         profile.City,
		"country":      profile.Country,
		"bio":          profile.Bio,
	})
	return string(raw)
}

func tripSummary(trips []models.Trip) string {
	summaries := make([]map[string]string, 0, len(trips))
	for _, t := range trips {
		summaries = append(summaries, map[string]string{
			"name":       t.Name,
			"start_date": t.StartDate.String(),
			"end_date":   t.EndDate.String(),
		})
	}
	raw, _ := json.Marshal(summaries)
	return string(raw)
}

// fallbackPayload is the deterministic degraded response, templated from
// the user's home city and country.
func fallbackPayload(city, country string) *models.RecPayload {
	if city == "" {
		city = "Bengaluru"
	}
	if country == "" {
		country = "India"
	}
	return &models.RecPayload{
		BannerTitle: "Explore " + country,
		Blurb:       "Handpicked getaways near " + city,
		TopSelections: []models.RecSelection{
			{Name: "Goa", Country: "India", Reason: "Beaches and nightlife", ImageURL: "https://images.unsplash.com/photo-1507525428034-b723cf961d3e"},
			{Name: "Coorg", Country: "India", Reason: "Coffee estates & waterfalls", ImageURL: "https://images.unsplash.com/photo-1585042453039-3dffb2f9b258"},
			{Name: "Udaipur", Country: "India", Reason: "Lakes and palaces", ImageURL: "https://images.unsplash.com/photo-1600783481548-7c4f43e78b9b"},
			{Name: "Hampi", Country: "India", Reason: "Ruins and boulders", ImageURL: "https://images.unsplash.com/photo-1524499982521-1ffd58dd89ea"},
			{Name: "Pondicherry", Country: "India", Reason: "French vibes by the sea", ImageURL: "https://images.unsplash.com/photo-1512453979798-5ea266f8880c"},
			{Name: "Munnar", Country: "India", Reason: "Tea hills & mist", ImageURL: "https://images.unsplash.com/photo-1500530855697-b586d89ba3ee"},
		},
		Groupings:   []string{"Beaches", "Hills", "Culture", "Food"},
		SortOptions: []string{"Trending", "Budget friendly", "Weekend trips"},
		Source:      models.RecSourceFallback,
	}
}

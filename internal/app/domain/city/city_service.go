package city

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
	"github.com/FACorreiaa/go-globetrotters/internal/observability/metrics"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/geo"
)

const geoSource = "nominatim"

type CityService interface {
	ListCities(ctx context.Context, search string) ([]models.City, error)
	EnsureCity(ctx context.Context, name, country, region string) (*models.City, error)
	SearchExternal(ctx context.Context, query string) ([]models.GeoPlace, error)
}

type ServiceImpl struct {
	repo   Repository
	geo    *geo.Client
	logger *zap.Logger
}

var _ CityService = (*ServiceImpl)(nil)

func NewCityService(repo Repository, geoClient *geo.Client, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		geo:    geoClient,
		logger: logger,
	}
}

func (s *ServiceImpl) ListCities(ctx context.Context, search string) ([]models.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "ListCities")
	defer span.End()

	return s.repo.Search(ctx, strings.TrimSpace(search))
}

func (s *ServiceImpl) EnsureCity(ctx context.Context, name, country, region string) (*models.City, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "EnsureCity")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name required: %w", models.ErrValidation)
	}

	return s.repo.GetOrCreate(ctx, name, strings.TrimSpace(country), strings.TrimSpace(region))
}

// SearchExternal geocodes a free-text query and maps the hits onto local
// city rows when one exists. Geocoder failures degrade to an empty result,
// never an error; the search box should not break when OSM is down.
func (s *ServiceImpl) SearchExternal(ctx context.Context, query string) ([]models.GeoPlace, error) {
	ctx, span := otel.Tracer("CityService").Start(ctx, "SearchExternal")
	defer span.End()

	l := s.logger.With(zap.String("method", "SearchExternal"))

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", models.ErrValidation)
	}

	metrics.Get().GeocodeRequestsTotal.Add(ctx, 1)
	span.SetAttributes(attribute.String("geo.query", query))

	hits, err := s.geo.Search(ctx, query)
	if err != nil {
		l.Warn("Geocoding failed, returning empty result", zap.String("query", query), zap.Error(err))
		return []models.GeoPlace{}, nil
	}

	results := make([]models.GeoPlace, 0, len(hits))
	for _, hit := range hits {
		place := s.toGeoPlace(ctx, query, hit)
		if place.Name == "" {
			continue
		}
		results = append(results, place)
	}

	// Nominatim returns one hit per OSM object, so a city often shows up
	// several times. Keep the first hit per (name, country).
	results = lo.UniqBy(results, func(p models.GeoPlace) string {
		return strings.ToLower(p.Name + "|" + p.Country)
	})
	return results, nil
}

func (s *ServiceImpl) toGeoPlace(ctx context.Context, query string, hit geo.Place) models.GeoPlace {
	lat, lon := hit.Coordinates()
	place := models.GeoPlace{
		Name:       hit.CityName(),
		Country:    hit.Address.Country,
		Lat:        lat,
		Lon:        lon,
		ExternalID: hit.ExternalID(),
	}

	// Snapshot the raw hit for offline dataset building. Best effort.
	if place.ExternalID != "" {
		err := s.repo.SaveExternalPlace(ctx, models.ExternalPlace{
			Source:     geoSource,
			Query:      query,
			ExternalID: place.ExternalID,
			Name:       place.Name,
			Country:    place.Country,
			Lat:        lat,
			Lon:        lon,
			Raw:        hit.Raw,
		})
		if err != nil {
			s.logger.Warn("Failed to snapshot external place", zap.String("externalID", place.ExternalID), zap.Error(err))
		}
	}

	// Attach the local city id when the hit matches a known city, so the
	// client can link straight into trip planning.
	if local, err := s.resolveLocal(ctx, place.Name, place.Country); err == nil {
		place.ID = &local.ID
	}
	return place
}

func (s *ServiceImpl) resolveLocal(ctx context.Context, name, country string) (*models.City, error) {
	if country != "" {
		c, err := s.repo.GetByNameCountry(ctx, name, country)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}
	return s.repo.GetByName(ctx, name)
}

// Package geo is a thin Nominatim (OpenStreetMap) search client. Failures
// are expected and cheap; callers degrade to empty results.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/pkg/config"
)

const searchLimit = 8

// Place is one raw Nominatim search hit.
type Place struct {
	PlaceID     int64           `json:"place_id"`
	OSMID       int64           `json:"osm_id"`
	DisplayName string          `json:"display_name"`
	Lat         string          `json:"lat"`
	Lon         string          `json:"lon"`
	Address     Address         `json:"address"`
	Raw         json.RawMessage `json:"-"`
}

type Address struct {
	City    string `json:"city"`
	Town    string `json:"town"`
	Village string `json:"village"`
	Country string `json:"country"`
}

// CityName resolves the best city-level name for the hit, falling back to
// the first segment of the display name.
func (p Place) CityName() string {
	switch {
	case p.Address.City != "":
		return p.Address.City
	case p.Address.Town != "":
		return p.Address.Town
	case p.Address.Village != "":
		return p.Address.Village
	}
	if idx := strings.Index(p.DisplayName, ","); idx != -1 {
		return p.DisplayName[:idx]
	}
	return p.DisplayName
}

// ExternalID returns the stable identifier used for snapshot dedup.
func (p Place) ExternalID() string {
	if p.OSMID != 0 {
		return strconv.FormatInt(p.OSMID, 10)
	}
	if p.PlaceID != 0 {
		return strconv.FormatInt(p.PlaceID, 10)
	}
	return ""
}

// Coordinates parses lat/lon, returning nils when absent or malformed.
func (p Place) Coordinates() (lat, lon *float64) {
	if v, err := strconv.ParseFloat(p.Lat, 64); err == nil {
		lat = &v
	}
	if v, err := strconv.ParseFloat(p.Lon, 64); err == nil {
		lon = &v
	}
	return lat, lon
}

type Client struct {
	httpClient *http.Client
	cfg        config.NominatimConfig
	logger     *zap.Logger
	cache      *gocache.Cache
}

func NewClient(cfg config.NominatimConfig, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		logger:     logger,
		// Geocoding results barely change; cache per query for 15 minutes.
		cache: gocache.New(15*time.Minute, 30*time.Minute),
	}
}

// Search geocodes a free-text query. Results are cached by query text.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	cacheKey := strings.ToLower(strings.TrimSpace(query))
	if cached, found := c.cache.Get(cacheKey); found {
		return cached.([]Place), nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(searchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Nominatim request failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Nominatim returned non-OK status", zap.String("query", query), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding nominatim response: %w", err)
	}

	places := make([]Place, 0, len(items))
	for _, item := range items {
		var p Place
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		p.Raw = item
		places = append(places, p)
	}

	c.cache.SetDefault(cacheKey, places)
	return places, nil
}

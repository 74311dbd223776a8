package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// UserAuth carries the fields needed for credential checks and token issuance.
type UserAuth struct {
	ID       uuid.UUID
	Username string
	Email    string
	Password string // bcrypt hash
}

// UserProfile is the public view of an account, including the fields the
// recommendation signature is derived from (city, country, bio).
type UserProfile struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	PhoneNumber string    `json:"phone_number"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Bio         string    `json:"bio"`
}

type City struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Country    string    `json:"country"`
	Region     string    `json:"region"`
	CostIndex  *int      `json:"cost_index"`
	Popularity *int      `json:"popularity"`
}

type Trip struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"-"`
	Name         string     `json:"name"`
	StartDate    Date       `json:"start_date"`
	EndDate      Date       `json:"end_date"`
	OriginCityID *uuid.UUID `json:"-"`
	OriginCity   *City      `json:"origin_city"`
	Description  string     `json:"description"`
	CoverImage   string     `json:"cover_image"`
	IsPublic     bool       `json:"is_public"`
	PublicSlug   *string    `json:"public_slug"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Stops        []TripStop `json:"stops,omitempty"`
}

// Days returns the trip length in days, floored to one.
func (t Trip) Days() int {
	days := t.StartDate.DaysUntil(t.EndDate)
	if days < 1 {
		return 1
	}
	return days
}

type TripStop struct {
	ID         uuid.UUID  `json:"id"`
	TripID     uuid.UUID  `json:"trip"`
	CityID     uuid.UUID  `json:"-"`
	City       *City      `json:"city"`
	StartDate  Date       `json:"start_date"`
	EndDate    Date       `json:"end_date"`
	Order      int        `json:"order"`
	CreatedAt  time.Time  `json:"created_at"`
	Activities []Activity `json:"activities"`
}

// Span returns the stop length in days, floored to one.
func (s TripStop) Span() int {
	days := s.StartDate.DaysUntil(s.EndDate)
	if days < 1 {
		return 1
	}
	return days
}

// Covers reports whether day falls inside [start_date, end_date).
func (s TripStop) Covers(day Date) bool {
	return !day.Before(s.StartDate.Time) && day.Before(s.EndDate.Time)
}

type Activity struct {
	ID         uuid.UUID `json:"id"`
	TripStopID uuid.UUID `json:"trip_stop"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	StartTime  *string   `json:"start_time"`
	EndTime    *string   `json:"end_time"`
	CostAmount int       `json:"cost_amount"`
	Currency   string    `json:"currency"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

// CatalogEntry is read-only seed data used by the heuristic generator.
type CatalogEntry struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	AvgCost         int        `json:"avg_cost"`
	DurationMinutes *int       `json:"duration_minutes"`
	CityID          *uuid.UUID `json:"city_id"`
}

// ExternalPlace is a snapshot of a geocoding result kept for dataset building.
type ExternalPlace struct {
	ID         uuid.UUID `json:"id"`
	Source     string    `json:"source"`
	Query      string    `json:"query"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Country    string    `json:"country"`
	Lat        *float64  `json:"lat"`
	Lon        *float64  `json:"lon"`
	Raw        json.RawMessage
	CreatedAt  time.Time `json:"created_at"`
}

// GeoPlace is a single geocoding hit as returned to clients.
type GeoPlace struct {
	ID         *uuid.UUID `json:"id"`
	Name       string     `json:"name"`
	Country    string     `json:"country"`
	Lat        *float64   `json:"lat"`
	Lon        *float64   `json:"lon"`
	ExternalID string     `json:"-"`
}

// PersonalizedRec is one append-only cache row of a personalization payload.
// Rows are never updated in place; lookups take the newest matching row.
type PersonalizedRec struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Signature string
	City      string
	Country   string
	Data      json.RawMessage
	CreatedAt time.Time
}

// RecSelection is one destination card inside a personalization payload.
type RecSelection struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	Reason   string `json:"reason"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// RecPayload is the personalization payload shape. Source attributes where
// the payload came from; it is informational only and never an error signal.
type RecPayload struct {
	BannerTitle   string         `json:"bannerTitle"`
	Blurb         string         `json:"blurb"`
	TopSelections []RecSelection `json:"topSelections"`
	Groupings     []string       `json:"groupings"`
	SortOptions   []string       `json:"sortOptions"`
	Source        string         `json:"source"`
}

// Rec payload source tags.
const (
	RecSourceUserCache  = "user-cache"
	RecSourceCityCache  = "city-cache"
	RecSourceOpenRouter = "openrouter"
	RecSourceFallback   = "fallback"
)

// CategoryTotals holds the five budget buckets in minor currency units.
type CategoryTotals struct {
	Meals      int `json:"meals"`
	Transport  int `json:"transport"`
	Stay       int `json:"stay"`
	Activities int `json:"activities"`
	Other      int `json:"other"`
}

// Sum returns the total across all buckets.
func (c CategoryTotals) Sum() int {
	return c.Meals + c.Transport + c.Stay + c.Activities + c.Other
}

// CityBudget is the per-stop breakdown inside a budget summary.
type CityBudget struct {
	StopID     uuid.UUID      `json:"stop_id"`
	StopOrder  int            `json:"stop_order"`
	City       string         `json:"city"`
	Country    string         `json:"country"`
	TotalMinor int            `json:"total_minor"`
	Categories CategoryTotals `json:"categories"`
}

type BudgetSummary struct {
	TripID         uuid.UUID      `json:"trip_id"`
	Currency       string         `json:"currency"`
	TotalMinor     int            `json:"total_minor"`
	AvgPerDayMinor int            `json:"avg_per_day_minor"`
	NumActivities  int            `json:"num_activities"`
	Days           int            `json:"days"`
	Categories     CategoryTotals `json:"categories"`
	PerCity        []CityBudget   `json:"per_city"`
}

// CalendarDay is one entry per calendar day of a trip. Days not covered by
// any stop have a nil stop/city and an empty activity list.
type CalendarDay struct {
	DayIndex   int        `json:"day_index"`
	Date       Date       `json:"date"`
	StopID     *uuid.UUID `json:"stop_id"`
	StopOrder  *int       `json:"stop_order"`
	City       *City      `json:"city"`
	Activities []Activity `json:"activities"`
}

type CalendarView struct {
	TripID    uuid.UUID     `json:"trip_id"`
	TotalDays int           `json:"total_days"`
	Days      []CalendarDay `json:"days"`
}

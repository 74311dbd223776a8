package itinerary

import (
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

// Free-text activity categories collapse into five buckets. Keyword rules
// are checked in bucket order; the first bucket with any matching keyword
// wins. Non-empty text matching nothing lands in activities, blank text in
// other.
const (
	bucketMeals = iota
	bucketTransport
	bucketStay
	bucketActivities
)

var categoryKeywords = []struct {
	bucket   int
	keywords []string
}{
	{bucketMeals, []string{"food", "meal", "dine", "restaurant"}},
	{bucketTransport, []string{"transport", "flight", "train", "bus", "cab", "taxi"}},
	{bucketStay, []string{"stay", "hotel", "hostel", "accommodation"}},
	{bucketActivities, []string{"sight", "tour", "museum", "activity", "adventure", "culture"}},
}

var categoryMatcher = buildCategoryMatcher()

type categoryAutomaton struct {
	ac      ahocorasick.AhoCorasick
	buckets []int
}

func buildCategoryMatcher() *categoryAutomaton {
	var patterns []string
	var buckets []int
	for _, rule := range categoryKeywords {
		for _, kw := range rule.keywords {
			patterns = append(patterns, kw)
			buckets = append(buckets, rule.bucket)
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.StandardMatch,
		DFA:                  true,
	})
	ac := builder.Build(patterns)
	return &categoryAutomaton{ac: ac, buckets: buckets}
}

// NormalizeCategory maps a free-text category to one of the five budget
// bucket names.
func NormalizeCategory(category string) string {
	text := strings.TrimSpace(category)
	if text == "" {
		return "other"
	}

	best := -1
	for _, m := range categoryMatcher.ac.FindAll(text) {
		bucket := categoryMatcher.buckets[m.Pattern()]
		if best == -1 || bucket < best {
			best = bucket
		}
	}

	switch best {
	case bucketMeals:
		return "meals"
	case bucketTransport:
		return "transport"
	case bucketStay:
		return "stay"
	default:
		// Unmatched non-empty text is still something the traveller does.
		return "activities"
	}
}

func addToBucket(totals *models.CategoryTotals, category string, amount int) {
	switch NormalizeCategory(category) {
	case "meals":
		totals.Meals += amount
	case "transport":
		totals.Transport += amount
	case "stay":
		totals.Stay += amount
	case "activities":
		totals.Activities += amount
	default:
		totals.Other += amount
	}
}

// BuildBudget computes the trip's cost summary from its nested stops and
// activities. All amounts are integer minor units.
func BuildBudget(t *models.Trip, defaultCurrency string) models.BudgetSummary {
	summary := models.BudgetSummary{
		TripID:   t.ID,
		Currency: defaultCurrency,
		PerCity:  []models.CityBudget{},
	}

	currencySet := false
	for _, stop := range t.Stops {
		cb := models.CityBudget{
			StopID:    stop.ID,
			StopOrder: stop.Order,
		}
		if stop.City != nil {
			cb.City = stop.City.Name
			cb.Country = stop.City.Country
		}
		for _, a := range stop.Activities {
			if !currencySet && a.Currency != "" {
				summary.Currency = a.Currency
				currencySet = true
			}
			addToBucket(&summary.Categories, a.Category, a.CostAmount)
			addToBucket(&cb.Categories, a.Category, a.CostAmount)
			cb.TotalMinor += a.CostAmount
		}
		summary.NumActivities += len(stop.Activities)
		summary.PerCity = append(summary.PerCity, cb)
	}

	summary.Days = t.Days()
	summary.TotalMinor = summary.Categories.Sum()
	summary.AvgPerDayMinor = summary.TotalMinor / summary.Days
	return summary
}

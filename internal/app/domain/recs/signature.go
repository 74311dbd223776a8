package recs

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

const (
	signatureBioPrefix = 120
	signatureMaxTrips  = 10
)

// BuildSignature hashes the personalization inputs: profile city, country,
// the first 120 characters of the bio, and the newest 10 trips reduced to
// name and dates. Map keys sort during JSON encoding, so identical inputs
// always hash the same.
func BuildSignature(profile *models.UserProfile, trips []models.Trip) string {
	bio := []rune(profile.Bio)
	if len(bio) > signatureBioPrefix {
		bio = bio[:signatureBioPrefix]
	}

	if len(trips) > signatureMaxTrips {
		trips = trips[:signatureMaxTrips]
	}
	tripSummaries := make([]map[string]any, 0, len(trips))
	for _, t := range trips {
		tripSummaries = append(tripSummaries, map[string]any{
			"n": t.Name,
			"s": t.StartDate.String(),
			"e": t.EndDate.String(),
		})
	}

	payload := map[string]any{
		"city":    profile.City,
		"country": profile.Country,
		"bio":     string(bio),
		"trips":   tripSummaries,
	}

	encoded, _ := json.Marshal(payload)
	sum := sha1.Sum(encoded)
	return hex.EncodeToString(sum[:])
}

package itinerary

import (
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

// BuildCalendar maps every day of [start, end) to its covering stop and a
// fair share of that stop's activities. Zero or negative trip spans are
// treated as a single day.
func BuildCalendar(t *models.Trip) models.CalendarView {
	totalDays := t.Days()
	view := models.CalendarView{
		TripID:    t.ID,
		TotalDays: totalDays,
		Days:      make([]models.CalendarDay, 0, totalDays),
	}

	for i := 0; i < totalDays; i++ {
		day := t.StartDate.AddDays(i)
		entry := models.CalendarDay{
			DayIndex:   i + 1,
			Date:       day,
			Activities: []models.Activity{},
		}

		for s := range t.Stops {
			stop := &t.Stops[s]
			if !stop.Covers(day) {
				continue
			}
			entry.StopID = &stop.ID
			entry.StopOrder = &stop.Order
			entry.City = stop.City
			dayOfStop := stop.StartDate.DaysUntil(day)
			entry.Activities = activitiesForDay(stop, dayOfStop)
			break
		}

		view.Days = append(view.Days, entry)
	}
	return view
}

// activitiesForDay partitions the stop's activities (in creation order)
// across the stop's span using proportional-index bucketing. Every activity
// lands in exactly one bucket.
func activitiesForDay(stop *models.TripStop, dayOfStop int) []models.Activity {
	span := stop.Span()
	total := len(stop.Activities)
	if total == 0 || dayOfStop < 0 || dayOfStop >= span {
		return []models.Activity{}
	}

	out := []models.Activity{}
	for idx, a := range stop.Activities {
		bucket := (idx * span) / total
		if bucket > span-1 {
			bucket = span - 1
		}
		if bucket == dayOfStop {
			out = append(out, a)
		}
	}
	return out
}

package itinerary

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"go.opentelemetry.io/otel"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

// ExportPDF renders the trip itinerary as a one-pager.
func (s *ServiceImpl) ExportPDF(ctx context.Context, userID, tripID uuid.UUID) ([]byte, string, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ExportPDF")
	defer span.End()

	t, err := s.trips.GetTripWithDetails(ctx, userID, tripID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(t.Name, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, t.Name)
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("%s to %s (%d days)", t.StartDate, t.EndDate, t.Days()))
	pdf.Ln(10)

	for _, stop := range t.Stops {
		pdf.SetFont("Helvetica", "B", 13)
		cityName := "Unknown"
		if stop.City != nil {
			cityName = stop.City.Name
			if stop.City.Country != "" {
				cityName += ", " + stop.City.Country
			}
		}
		pdf.Cell(0, 8, fmt.Sprintf("%d. %s", stop.Order, cityName))
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, fmt.Sprintf("%s to %s", stop.StartDate, stop.EndDate))
		pdf.Ln(7)

		pdf.SetFont("Helvetica", "", 11)
		if len(stop.Activities) == 0 {
			pdf.Cell(0, 6, "No activities planned")
			pdf.Ln(7)
		}
		for _, a := range stop.Activities {
			line := "- " + a.Title
			if a.CostAmount > 0 {
				line += fmt.Sprintf(" (%d %s)", a.CostAmount, a.Currency)
			}
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("rendering itinerary pdf: %w", err)
	}

	filename := fmt.Sprintf("itinerary_%s.pdf", tripID.String()[:8])
	return buf.Bytes(), filename, nil
}

// ExportICS serializes the trip as a calendar with one all-day event per
// stop span.
func (s *ServiceImpl) ExportICS(ctx context.Context, userID, tripID uuid.UUID) ([]byte, string, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "ExportICS")
	defer span.End()

	t, err := s.trips.GetTripWithDetails(ctx, userID, tripID)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//globetrotters//itinerary//EN")

	for _, stop := range t.Stops {
		event := cal.AddEvent(stop.ID.String())
		event.SetCreatedTime(time.Now())
		event.SetDtStampTime(time.Now())

		summary := t.Name
		if stop.City != nil {
			summary = fmt.Sprintf("%s: %s", t.Name, stop.City.Name)
		}
		event.SetSummary(summary)
		event.SetAllDayStartAt(stop.StartDate.Time)
		event.SetAllDayEndAt(stop.EndDate.Time)

		if len(stop.Activities) > 0 {
			event.SetDescription(activitySummary(stop.Activities))
		}
	}

	filename := fmt.Sprintf("itinerary_%s.ics", tripID.String()[:8])
	return []byte(cal.Serialize()), filename, nil
}

func activitySummary(activities []models.Activity) string {
	var b bytes.Buffer
	for i, a := range activities {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + a.Title)
	}
	return b.String()
}

package itinerary

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

type GenerateRequest struct {
	DaysPerCity int    `json:"days_per_city"`
	Currency    string `json:"currency"`
	Force       bool   `json:"force"`
}

type ItineraryHandlers struct {
	*domain.BaseHandler
	service ItineraryService
}

func NewItineraryHandlers(service ItineraryService, base *domain.BaseHandler) *ItineraryHandlers {
	return &ItineraryHandlers{BaseHandler: base, service: service}
}

func (h *ItineraryHandlers) tripID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

// Generate handles POST /api/trips/:id/generate. An empty body is fine;
// defaults apply.
func (h *ItineraryHandlers) Generate(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}

	var req GenerateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	stops, err := h.service.Generate(c.Request.Context(), userID, tripID, GenerateInput{
		DaysPerCity: req.DaysPerCity,
		Currency:    req.Currency,
		Force:       req.Force,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}
	if stops == nil {
		stops = []models.TripStop{}
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func (h *ItineraryHandlers) Budget(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}
	summary, err := h.service.Budget(c.Request.Context(), userID, tripID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *ItineraryHandlers) Calendar(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}
	view, err := h.service.Calendar(c.Request.Context(), userID, tripID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ItineraryHandlers) ExportPDF(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}
	data, filename, err := h.service.ExportPDF(c.Request.Context(), userID, tripID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *ItineraryHandlers) ExportICS(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := h.tripID(c)
	if !ok {
		return
	}
	data, filename, err := h.service.ExportICS(c.Request.Context(), userID, tripID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/calendar", data)
}

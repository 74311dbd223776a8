package trip

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

type CreateTripRequest struct {
	Name         string      `json:"name" binding:"required"`
	StartDate    models.Date `json:"start_date" binding:"required"`
	EndDate      models.Date `json:"end_date" binding:"required"`
	OriginCityID *uuid.UUID  `json:"origin_city_id"`
	Description  string      `json:"description"`
	CoverImage   string      `json:"cover_image"`
}

type UpdateTripRequest struct {
	Name         *string      `json:"name"`
	StartDate    *models.Date `json:"start_date"`
	EndDate      *models.Date `json:"end_date"`
	OriginCityID *uuid.UUID   `json:"origin_city_id"`
	Description  *string      `json:"description"`
	CoverImage   *string      `json:"cover_image"`
}

type CreateStopRequest struct {
	CityID      *uuid.UUID  `json:"city_id"`
	CityName    string      `json:"city_name"`
	CityCountry string      `json:"city_country"`
	StartDate   models.Date `json:"start_date" binding:"required"`
	EndDate     models.Date `json:"end_date" binding:"required"`
	Order       int         `json:"order"`
}

type UpdateStopRequest struct {
	CityID    *uuid.UUID   `json:"city_id"`
	StartDate *models.Date `json:"start_date"`
	EndDate   *models.Date `json:"end_date"`
	Order     *int         `json:"order"`
}

type ReorderRequest struct {
	Order []uuid.UUID `json:"order"`
}

type CreateActivityRequest struct {
	Title      string  `json:"title" binding:"required"`
	Category   string  `json:"category"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	CostAmount int     `json:"cost_amount"`
	Currency   string  `json:"currency"`
	Notes      string  `json:"notes"`
}

type UpdateActivityRequest struct {
	Title      *string `json:"title"`
	Category   *string `json:"category"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	CostAmount *int    `json:"cost_amount"`
	Currency   *string `json:"currency"`
	Notes      *string `json:"notes"`
}

type TripHandlers struct {
	*domain.BaseHandler
	service TripService
}

func NewTripHandlers(service TripService, base *domain.BaseHandler) *TripHandlers {
	return &TripHandlers{BaseHandler: base, service: service}
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func (h *TripHandlers) CreateTrip(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.service.CreateTrip(c.Request.Context(), userID, CreateTripParams{
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		OriginCityID: req.OriginCityID,
		Description:  req.Description,
		CoverImage:   req.CoverImage,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *TripHandlers) ListTrips(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	trips, err := h.service.ListTrips(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	if trips == nil {
		trips = []models.Trip{}
	}
	c.JSON(http.StatusOK, gin.H{"trips": trips})
}

func (h *TripHandlers) GetTrip(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.service.GetTrip(c.Request.Context(), userID, tripID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TripHandlers) UpdateTrip(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t, err := h.service.UpdateTrip(c.Request.Context(), userID, tripID, UpdateTripParams{
		Name:         req.Name,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		OriginCityID: req.OriginCityID,
		Description:  req.Description,
		CoverImage:   req.CoverImage,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TripHandlers) DeleteTrip(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteTrip(c.Request.Context(), userID, tripID); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TripHandlers) ShareTrip(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	t, err := h.service.ShareTrip(c.Request.Context(), userID, tripID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_slug": t.PublicSlug, "is_public": t.IsPublic})
}

// PublicItinerary handles GET /api/public/itineraries/:slug without auth.
func (h *TripHandlers) PublicItinerary(c *gin.Context) {
	slug := c.Param("slug")

	demo := DemoParams{
		Origin:   c.Query("origin"),
		Currency: c.Query("currency"),
	}
	if raw := c.Query("cities"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				demo.Cities = append(demo.Cities, name)
			}
		}
	}
	if raw := c.Query("start"); raw != "" {
		if d, err := models.ParseDate(raw); err == nil {
			demo.Start = d
		}
	}
	if raw := c.Query("days_per_city"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			demo.DaysPerCity = n
		}
	}

	t, err := h.service.PublicItinerary(c.Request.Context(), slug, demo)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TripHandlers) CreateStop(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req CreateStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := StopInput{
		CityName:    req.CityName,
		CityCountry: req.CityCountry,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Order:       req.Order,
	}
	if req.CityID != nil {
		in.CityID = *req.CityID
	}

	stop, err := h.service.CreateStop(c.Request.Context(), userID, tripID, in)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, stop)
}

func (h *TripHandlers) ListStops(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stops, err := h.service.ListStops(c.Request.Context(), userID, tripID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	if stops == nil {
		stops = []models.TripStop{}
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func (h *TripHandlers) UpdateStop(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stopID, ok := pathUUID(c, "stopID")
	if !ok {
		return
	}
	var req UpdateStopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stop, err := h.service.UpdateStop(c.Request.Context(), userID, tripID, stopID, UpdateStopParams{
		CityID:    req.CityID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Order:     req.Order,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stop)
}

func (h *TripHandlers) DeleteStop(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stopID, ok := pathUUID(c, "stopID")
	if !ok {
		return
	}
	if err := h.service.DeleteStop(c.Request.Context(), userID, tripID, stopID); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderStops handles POST /api/trips/:id/stops/reorder.
func (h *TripHandlers) ReorderStops(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Order) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order list required"})
		return
	}

	stops, err := h.service.ReorderStops(c.Request.Context(), userID, tripID, req.Order)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stops": stops})
}

func (h *TripHandlers) CreateActivity(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stopID, ok := pathUUID(c, "stopID")
	if !ok {
		return
	}
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.service.CreateActivity(c.Request.Context(), userID, tripID, stopID, CreateActivityParams{
		Title:      req.Title,
		Category:   req.Category,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		CostAmount: req.CostAmount,
		Currency:   req.Currency,
		Notes:      req.Notes,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *TripHandlers) ListActivities(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stopID, ok := pathUUID(c, "stopID")
	if !ok {
		return
	}
	activities, err := h.service.ListActivities(c.Request.Context(), userID, tripID, stopID)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	if activities == nil {
		activities = []models.Activity{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *TripHandlers) UpdateActivity(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stopID, ok := pathUUID(c, "stopID")
	if !ok {
		return
	}
	activityID, ok := pathUUID(c, "activityID")
	if !ok {
		return
	}
	var req UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.service.UpdateActivity(c.Request.Context(), userID, tripID, stopID, activityID, UpdateActivityParams{
		Title:      req.Title,
		Category:   req.Category,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		CostAmount: req.CostAmount,
		Currency:   req.Currency,
		Notes:      req.Notes,
	})
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *TripHandlers) DeleteActivity(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}
	tripID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	stopID, ok := pathUUID(c, "stopID")
	if !ok {
		return
	}
	activityID, ok := pathUUID(c, "activityID")
	if !ok {
		return
	}
	if err := h.service.DeleteActivity(c.Request.Context(), userID, tripID, stopID, activityID); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

package city

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

type EnsureCityRequest struct {
	Name    string `json:"name" binding:"required"`
	Country string `json:"country"`
	Region  string `json:"region"`
}

type CityHandlers struct {
	*domain.BaseHandler
	service CityService
}

func NewCityHandlers(service CityService, base *domain.BaseHandler) *CityHandlers {
	return &CityHandlers{BaseHandler: base, service: service}
}

// ListCities handles GET /api/cities?search=.
func (h *CityHandlers) ListCities(c *gin.Context) {
	cities, err := h.service.ListCities(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	if cities == nil {
		cities = []models.City{}
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// EnsureCity handles POST /api/cities/ensure.
func (h *CityHandlers) EnsureCity(c *gin.Context) {
	var req EnsureCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	city, err := h.service.EnsureCity(c.Request.Context(), req.Name, req.Country, req.Region)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, city)
}

// SearchCities handles GET /api/search/cities?q=.
func (h *CityHandlers) SearchCities(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		query = c.Query("query")
	}

	places, err := h.service.SearchExternal(c.Request.Context(), query)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": places})
}

package catalog

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain"
	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

const defaultListLimit = 50

type CatalogHandlers struct {
	*domain.BaseHandler
	repo Repository
}

func NewCatalogHandlers(repo Repository, base *domain.BaseHandler) *CatalogHandlers {
	return &CatalogHandlers{BaseHandler: base, repo: repo}
}

// ListActivities handles GET /api/catalog/activities?limit=.
func (h *CatalogHandlers) ListActivities(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.repo.FirstN(c.Request.Context(), limit)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	if entries == nil {
		entries = []models.CatalogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"activities": entries})
}

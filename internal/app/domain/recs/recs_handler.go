package recs

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain"
)

type RecsHandlers struct {
	*domain.BaseHandler
	service RecsService
}

func NewRecsHandlers(service RecsService, base *domain.BaseHandler) *RecsHandlers {
	return &RecsHandlers{BaseHandler: base, service: service}
}

// Personalized handles POST /api/recs/personalized. Cache tiers can be
// bypassed with ?force=1. Every resolution branch answers 200.
func (h *RecsHandlers) Personalized(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	force := c.Query("force") == "1"
	payload, err := h.service.Personalized(c.Request.Context(), userID, force)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

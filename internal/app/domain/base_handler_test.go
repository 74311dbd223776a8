package domain

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	NewBaseHandler(zap.NewNop()).RespondError(c, err)
	return w, w.Body.String()
}

func TestRespondErrorClientMessages(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation wrap keeps only the service message",
			err:        fmt.Errorf("order list required: %w", models.ErrValidation),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"order list required"}`,
		},
		{
			name:       "bare validation sentinel passes through",
			err:        models.ErrValidation,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"validation failed"}`,
		},
		{
			name:       "conflict wrap keeps only the service message",
			err:        fmt.Errorf("username taken: %w", models.ErrConflict),
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"username taken"}`,
		},
		{
			name:       "bad request wrap keeps only the service message",
			err:        fmt.Errorf("invalid trip id: %w", models.ErrBadRequest),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"invalid trip id"}`,
		},
		{
			name:       "not found is generic",
			err:        fmt.Errorf("trip 123: %w", models.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"not found"}`,
		},
		{
			name:       "unknown errors stay opaque",
			err:        fmt.Errorf("pool exhausted"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, body)
		})
	}
}

// Package routes wires repositories, services and handlers and registers
// every HTTP endpoint.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/domain"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/auth"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/catalog"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/city"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/itinerary"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/recs"
	"github.com/FACorreiaa/go-globetrotters/internal/app/domain/trip"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/config"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/geo"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/llm"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/mail"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/middleware"
)

// AppHandlers groups the per-feature handler sets.
type AppHandlers struct {
	Auth      *auth.AuthHandlers
	City      *city.CityHandlers
	Trip      *trip.TripHandlers
	Itinerary *itinerary.ItineraryHandlers
	Recs      *recs.RecsHandlers
	Catalog   *catalog.CatalogHandlers
}

func setupDependencies(pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) *AppHandlers {
	base := domain.NewBaseHandler(logger)

	mailer := mail.NewResendSender(cfg.Resend, logger)
	generator := llm.NewOpenRouterClient(cfg.OpenRouter, logger)
	geoClient := geo.NewClient(cfg.Nominatim, logger)

	authRepo := auth.NewPostgresAuthRepo(pool, logger)
	cityRepo := city.NewCityRepository(pool, logger)
	catalogRepo := catalog.NewCatalogRepository(pool, logger)
	tripRepo := trip.NewTripRepository(pool, logger)
	recsRepo := recs.NewRecsRepository(pool, logger)

	authService := auth.NewAuthService(authRepo, mailer, cfg, logger)
	cityService := city.NewCityService(cityRepo, geoClient, logger)
	tripService := trip.NewTripService(tripRepo, cityRepo, catalogRepo, logger)
	itineraryService := itinerary.NewItineraryService(tripRepo, cityRepo, catalogRepo, generator, logger)
	recsService := recs.NewRecsService(recsRepo, authRepo, tripRepo, generator, logger)

	return &AppHandlers{
		Auth:      auth.NewAuthHandlers(authService, base),
		City:      city.NewCityHandlers(cityService, base),
		Trip:      trip.NewTripHandlers(tripService, base),
		Itinerary: itinerary.NewItineraryHandlers(itineraryService, base),
		Recs:      recs.NewRecsHandlers(recsService, base),
		Catalog:   catalog.NewCatalogHandlers(catalogRepo, base),
	}
}

// Setup registers all routes on the router.
func Setup(r *gin.Engine, pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) {
	h := setupDependencies(pool, cfg, logger)

	jwtCfg := middleware.JWTConfig{
		SecretKey:       cfg.Auth.JWTSecret,
		TokenExpiration: cfg.Auth.TokenExpiration,
		Logger:          logger,
	}
	requireAuth := middleware.JWTAuthMiddleware(jwtCfg)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// Public endpoints.
	api.POST("/auth/signup", h.Auth.Signup)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/forgot-password", h.Auth.ForgotPassword)
	api.POST("/auth/reset-password", h.Auth.ResetPassword)
	api.GET("/auth/check-username", h.Auth.CheckUsername)
	api.GET("/public/itineraries/:slug", h.Trip.PublicItinerary)

	// Authenticated endpoints.
	authed := api.Group("")
	authed.Use(requireAuth)

	authed.POST("/auth/logout", h.Auth.Logout)
	authed.GET("/auth/profile", h.Auth.GetProfile)
	authed.PUT("/auth/profile", h.Auth.UpdateProfile)

	authed.GET("/cities", h.City.ListCities)
	authed.POST("/cities/ensure", h.City.EnsureCity)
	authed.GET("/search/cities", h.City.SearchCities)

	authed.GET("/catalog/activities", h.Catalog.ListActivities)

	authed.POST("/trips", h.Trip.CreateTrip)
	authed.GET("/trips", h.Trip.ListTrips)
	authed.GET("/trips/:id", h.Trip.GetTrip)
	authed.PUT("/trips/:id", h.Trip.UpdateTrip)
	authed.DELETE("/trips/:id", h.Trip.DeleteTrip)
	authed.POST("/trips/:id/share", h.Trip.ShareTrip)

	authed.POST("/trips/:id/stops", h.Trip.CreateStop)
	authed.GET("/trips/:id/stops", h.Trip.ListStops)
	authed.POST("/trips/:id/stops/reorder", h.Trip.ReorderStops)
	authed.PUT("/trips/:id/stops/:stopID", h.Trip.UpdateStop)
	authed.DELETE("/trips/:id/stops/:stopID", h.Trip.DeleteStop)

	authed.POST("/trips/:id/stops/:stopID/activities", h.Trip.CreateActivity)
	authed.GET("/trips/:id/stops/:stopID/activities", h.Trip.ListActivities)
	authed.PUT("/trips/:id/stops/:stopID/activities/:activityID", h.Trip.UpdateActivity)
	authed.DELETE("/trips/:id/stops/:stopID/activities/:activityID", h.Trip.DeleteActivity)

	authed.POST("/trips/:id/generate", h.Itinerary.Generate)
	authed.GET("/trips/:id/budget", h.Itinerary.Budget)
	authed.GET("/trips/:id/calendar", h.Itinerary.Calendar)
	authed.GET("/trips/:id/export/pdf", h.Itinerary.ExportPDF)
	authed.GET("/trips/:id/calendar.ics", h.Itinerary.ExportICS)

	authed.POST("/recs/personalized", h.Recs.Personalized)
}

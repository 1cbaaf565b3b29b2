// Package routes wires repositories, services, and handlers onto the router.
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/imdeafyo/AdventureLog/internal/app/domain/collections"
	"github.com/imdeafyo/AdventureLog/internal/app/domain/geocoding"
	"github.com/imdeafyo/AdventureLog/internal/app/domain/itinerary"
	"github.com/imdeafyo/AdventureLog/internal/app/domain/recommendations"
	"github.com/imdeafyo/AdventureLog/internal/app/domain/worldtravel"
	"github.com/imdeafyo/AdventureLog/internal/pkg/config"
	"github.com/imdeafyo/AdventureLog/internal/pkg/middleware"
)

// Setup registers every API route on the router.
func Setup(r *gin.Engine, dbPool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) {
	jwtCfg := middleware.JWTConfig{
		SecretKey: cfg.JWTSecret,
		Logger:    logger,
	}

	// Repositories
	worldTravelRepo := worldtravel.NewRepository(dbPool, logger)
	itineraryRepo := itinerary.NewRepository(dbPool, logger)
	collectionsRepo := collections.NewRepository(dbPool, logger)

	// Services
	worldTravelSvc := worldtravel.NewService(worldTravelRepo, logger)
	itinerarySvc := itinerary.NewService(itineraryRepo, logger)
	collectionsSvc := collections.NewService(collectionsRepo, itinerarySvc, logger)

	geocodeClient := geocoding.NewHTTPClient(cfg.Geocoding, logger)
	resolver := geocoding.NewResolver(worldTravelRepo, logger)
	geocodingSvc := geocoding.NewService(geocodeClient, resolver, logger)

	// Google first: its entries carry richer metadata and win the
	// first-seen dedupe in the aggregator.
	poiHTTP := &http.Client{Timeout: cfg.Geocoding.ReadTimeout}
	var providers []recommendations.Provider
	if cfg.Recommendations.GoogleAPIKey != "" {
		providers = append(providers, recommendations.NewPlacesClient(cfg.Recommendations.GoogleAPIKey, poiHTTP, logger))
	}
	providers = append(providers,
		recommendations.NewOverpassClient(cfg.Recommendations.OverpassURL, cfg.Recommendations.OverpassMaxRadius, poiHTTP, logger))
	recommendationsSvc := recommendations.NewService(providers, logger)

	// Handlers
	worldTravelHandler := worldtravel.NewHandler(worldTravelSvc, logger)
	itineraryHandler := itinerary.NewHandler(itinerarySvc, logger)
	collectionsHandler := collections.NewHandler(collectionsSvc, logger)
	geocodingHandler := geocoding.NewHandler(geocodingSvc, logger)
	recommendationsHandler := recommendations.NewHandler(recommendationsSvc, logger)

	api := r.Group("/api")

	// Public reads. Optional auth lets the resolver flag visited regions and
	// public collections render for anonymous callers.
	public := api.Group("")
	public.Use(middleware.OptionalJWTMiddleware(jwtCfg))
	{
		public.GET("/geocode/reverse", geocodingHandler.ReverseGeocode)
		public.GET("/geocode/search", geocodingHandler.Search)
		public.GET("/recommendations", recommendationsHandler.Nearby)
		public.GET("/collections/:id", collectionsHandler.Get)
		public.GET("/collections/:id/itinerary", itineraryHandler.GetItinerary)
	}

	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(jwtCfg))
	{
		protected.POST("/geocode/mark-visited", worldTravelHandler.SyncVisited)

		protected.GET("/collections", collectionsHandler.List)
		protected.POST("/collections", collectionsHandler.Create)
		protected.PATCH("/collections/:id/dates", collectionsHandler.UpdateDates)
		protected.DELETE("/locations/:id", collectionsHandler.DeleteLocation)

		protected.POST("/collections/:id/itinerary/auto-generate", itineraryHandler.AutoGenerate)
		protected.PUT("/collections/:id/itinerary/days", itineraryHandler.UpsertDay)
		protected.DELETE("/collections/:id/itinerary/days/:date", itineraryHandler.DeleteDay)
		protected.POST("/itinerary/items", itineraryHandler.CreateItem)
		protected.PATCH("/itinerary/items/reorder", itineraryHandler.Reorder)
		protected.DELETE("/itinerary/items/:id", itineraryHandler.DeleteItem)
	}
}

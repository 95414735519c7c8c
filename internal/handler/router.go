package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/fareroute/backend-go/internal/api"
	"github.com/fareroute/backend-go/internal/models"
)

// FareService is the set of operations the transports expose.
type FareService interface {
	AddStation(ctx context.Context, req api.AddStationRequest) (api.AddStationResponse, error)
	Search(ctx context.Context, req api.SearchRequest) (models.SearchResult, error)
	ResetStations(ctx context.Context) (api.ResetResponse, error)
	ListStations(ctx context.Context) ([]models.Station, error)
	Fares() api.FareTableResponse
}

type RouterOptions struct {
	GinMode string
	// StaticDir holds index.html for "/". Skipped when the file is missing.
	StaticDir   string
	CORSOrigins []string
	Metrics     *Metrics
}

func NewRouter(svc FareService, opts RouterOptions) *gin.Engine {
	switch opts.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(opts.GinMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := opts.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	r := gin.New()
	r.Use(RequestID(), Logger(), gin.Recovery(), metrics.Instrument(), corsMiddleware(opts.CORSOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn().Err(err).Msg("Failed to set trusted proxies")
	}

	h := &fareHandler{svc: svc, metrics: metrics}

	r.POST("/addStation", h.addStation)
	r.POST("/search", h.search)
	r.POST("/resetStations", h.resetStations)
	r.GET("/stations", h.listStations)
	r.GET("/fares", h.fares)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, api.HealthResponse{
			Status: "healthy",
			Time:   time.Now().Format(time.RFC3339),
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if opts.StaticDir != "" {
		index := filepath.Join(opts.StaticDir, "index.html")
		if _, err := os.Stat(index); err == nil {
			r.StaticFile("/", index)
			r.StaticFile("/index.html", index)
		} else {
			log.Debug().Str("path", index).Msg("No static index page")
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.NewErrorResponse("route not found", GetRequestID(c)))
	})

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

package http

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/learnhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnhub-backend/internal/http/middleware"
	"github.com/yungbote/learnhub-backend/internal/observability"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger
	// TracedService enables otelgin spans under that service name.
	TracedService  string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	AuthMiddleware *httpMW.AuthMiddleware

	ArtifactHandler *httpH.ArtifactHandler
	StoryHandler    *httpH.StoryHandler
	HealthHandler   *httpH.HealthHandler

	// MediaRoot serves locally stored blobs under /media when set.
	MediaRoot string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if strings.TrimSpace(cfg.TracedService) != "" {
		r.Use(otelgin.Middleware(cfg.TracedService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}
	if cfg.MediaRoot != "" {
		r.Static("/media", cfg.MediaRoot)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		api.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Derived artifacts
		if cfg.ArtifactHandler != nil {
			api.POST("/artifacts", cfg.ArtifactHandler.RequestArtifact)
			api.POST("/artifacts/braille/preview", cfg.ArtifactHandler.RequestBraillePreview)
			api.POST("/artifacts/braille/export", cfg.ArtifactHandler.RequestBrailleExport)
			api.GET("/artifacts/:id", cfg.ArtifactHandler.GetArtifact)
		}

		// Story compiler
		if cfg.StoryHandler != nil {
			api.POST("/story/compile", cfg.StoryHandler.Compile)
			api.GET("/story/variants", cfg.StoryHandler.ListVariants)
		}
	}

	return r
}

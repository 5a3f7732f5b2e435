package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/learnhub-backend/internal/http"
	httpH "github.com/yungbote/learnhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/learnhub-backend/internal/http/middleware"
	"github.com/yungbote/learnhub-backend/internal/observability"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Artifact *httpH.ArtifactHandler
	Story    *httpH.StoryHandler
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, httpMW.AuthConfig{
			JWTSecret:       cfg.JWTSecret,
			AllowUserHeader: cfg.AllowUserHeader,
		}),
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(pingDB(db)),
		Artifact: httpH.NewArtifactHandler(services.Artifacts),
		Story:    httpH.NewStoryHandler(services.Artifacts),
	}
}

func wireServer(log *logger.Logger, cfg Config, services Services, handlers Handlers, middleware Middleware) *http.Server {
	var tracedService string
	if cfg.OTel.Enabled {
		tracedService = cfg.ServiceName
	}
	var mediaRoot string
	if rooted, ok := services.Blobs.(mediaRooted); ok {
		mediaRoot = rooted.Root()
	}
	return http.NewServer(http.RouterConfig{
		Log:             log,
		TracedService:   tracedService,
		CORSOrigins:     cfg.CORSOrigins,
		Metrics:         observability.Current(),
		AuthMiddleware:  middleware.Auth,
		ArtifactHandler: handlers.Artifact,
		StoryHandler:    handlers.Story,
		HealthHandler:   handlers.Health,
		MediaRoot:       mediaRoot,
	})
}

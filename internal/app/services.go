package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/learnhub-backend/internal/artifacts/scope"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/braille_generate"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/story_audio"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/story_plan"
	"github.com/yungbote/learnhub-backend/internal/jobs/pipeline/story_slides"
	jobrt "github.com/yungbote/learnhub-backend/internal/jobs/runtime"
	"github.com/yungbote/learnhub-backend/internal/jobs/worker"
	"github.com/yungbote/learnhub-backend/internal/platform/gcp"
	"github.com/yungbote/learnhub-backend/internal/platform/logger"
	"github.com/yungbote/learnhub-backend/internal/platform/openai"
	"github.com/yungbote/learnhub-backend/internal/platform/redisx"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type Services struct {
	Blobs     gcp.BlobStore
	Notifier  redisx.Notifier
	Providers openai.Providers

	Resolver  *scope.Resolver
	Payloads  services.PayloadSelector
	Enqueuer  services.JobEnqueuer
	Artifacts services.ArtifactService
	Queue     services.QueueAdmin

	Registry  *jobrt.Registry
	JobWorker *worker.Worker
}

// wireServices builds everything between the repos and the HTTP layer. The notifier,
// providers and blob store may be supplied in deps; nil members are built from cfg.
func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, deps Services) (Services, error) {
	log.Info("Wiring services...")
	out := deps

	if out.Blobs == nil {
		blobs, err := resolveBlobStore(ctx, log, cfg)
		if err != nil {
			return Services{}, err
		}
		out.Blobs = blobs
	}

	if out.Notifier == nil {
		out.Notifier = wireNotifier(ctx, log, cfg)
	}

	if noProviders(out.Providers) && cfg.GenerationProvidersEnabled {
		out.Providers = openai.NewProviders(log, cfg.OpenAI)
	}

	out.Resolver = scope.NewResolver(log, repos.Content, repos.Curriculum, scope.NewFileDocumentSource(cfg.StructuredContentDir))
	out.Payloads = services.NewPayloadSelector(log, repos.Content)
	out.Enqueuer = services.NewJobEnqueuer(log, repos.Jobs, out.Notifier)
	out.Artifacts = services.NewArtifactService(
		log,
		repos.Artifacts,
		out.Resolver,
		repos.Curriculum,
		out.Enqueuer,
		out.Blobs,
		nil,
		services.ArtifactServiceConfig{SignedURLTTL: cfg.SignedURLTTL, DefaultLocale: cfg.DefaultLocale},
	)

	out.Queue = services.NewQueueAdmin(log, repos.Jobs, repos.Artifacts, out.Enqueuer)

	out.Registry = jobrt.NewRegistry()
	if err := registerPipelines(out.Registry, log, repos, out); err != nil {
		return Services{}, fmt.Errorf("register pipelines: %w", err)
	}
	out.JobWorker = worker.NewWorker(db, log, repos.Jobs, repos.Artifacts, out.Registry, out.Notifier, cfg.Worker)
	return out, nil
}

func registerPipelines(reg *jobrt.Registry, log *logger.Logger, repos Repos, svc Services) error {
	handlers := []jobrt.Handler{
		braille_generate.NewPreview(log, repos.Artifacts, svc.Resolver, svc.Payloads),
		braille_generate.NewBRF(log, repos.Artifacts, svc.Resolver, svc.Payloads, svc.Blobs),
		story_plan.New(log, repos.Artifacts, svc.Resolver, svc.Payloads, svc.Enqueuer, svc.Providers.Text),
		story_slides.New(log, repos.Artifacts, svc.Blobs, svc.Enqueuer, svc.Providers.Image),
		story_audio.New(log, repos.Artifacts, svc.Blobs, svc.Providers.Speech),
	}
	for _, h := range handlers {
		if err := reg.Register(h); err != nil {
			return err
		}
	}
	return nil
}

// wireNotifier uses Redis when REDIS_ADDR is set and reachable, otherwise in-process wakes.
func wireNotifier(ctx context.Context, log *logger.Logger, cfg Config) redisx.Notifier {
	if cfg.RedisAddr == "" {
		return redisx.NewLocalNotifier()
	}
	n, err := redisx.NewRedisNotifier(ctx, log, cfg.RedisAddr, cfg.RedisChannel)
	if err != nil {
		log.Warn("Redis notifier unavailable; falling back to polling", "addr", cfg.RedisAddr, "error", err)
		return redisx.NewLocalNotifier()
	}
	return n
}

func noProviders(p openai.Providers) bool {
	return p.Text == nil && p.Image == nil && p.Speech == nil
}

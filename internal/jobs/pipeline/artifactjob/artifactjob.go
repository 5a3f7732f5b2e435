// Package artifactjob holds the steps every derived-artifact handler shares:
// loading the target, resolving its content keys, failing it and chaining siblings.
package artifactjob

import (
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"

	"github.com/yungbote/learnhub-backend/internal/artifacts/keys"
	"github.com/yungbote/learnhub-backend/internal/artifacts/scope"
	artifactrepo "github.com/yungbote/learnhub-backend/internal/data/repos/artifacts"
	types "github.com/yungbote/learnhub-backend/internal/domain"
	jobrt "github.com/yungbote/learnhub-backend/internal/jobs/runtime"
	"github.com/yungbote/learnhub-backend/internal/platform/apierr"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/services"
	"github.com/yungbote/learnhub-backend/internal/story"
)

// KeyResolver re-derives content keys when an artifact's metadata lacks them.
type KeyResolver interface {
	Resolve(dbc dbctx.Context, scopeType types.ScopeType, scopeID string) (*scope.Resolution, error)
}

// LoadTarget fetches the artifact a job targets. ok is false when there is nothing
// to do: the row is gone or already READY.
func LoadTarget(jc *jobrt.Context, repo artifactrepo.DerivedArtifactRepo) (*types.DerivedArtifact, bool, error) {
	a, err := repo.GetByCacheKey(jc.DBC(), jc.Job.TargetCacheKey)
	if err != nil {
		return nil, false, err
	}
	if a == nil {
		jc.Log.Info("target artifact missing; nothing to do")
		return nil, false, nil
	}
	if a.IsReady() {
		jc.Log.Debug("target artifact already READY", "artifact_id", a.ID.String())
		return a, false, nil
	}
	return a, true, nil
}

// Meta decodes artifact metadata into a map, never nil.
func Meta(a *types.DerivedArtifact) map[string]any {
	out := map[string]any{}
	if a == nil || len(a.Metadata) == 0 {
		return out
	}
	if err := json.Unmarshal(a.Metadata, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

func EncodeMeta(m map[string]any) (datatypes.JSON, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode artifact metadata: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// ContentKeys prefers metadata.contentKeys, then metadata.source.contentKeys, and
// otherwise resolves the artifact's scope again.
func ContentKeys(dbc dbctx.Context, resolver KeyResolver, a *types.DerivedArtifact, meta map[string]any) ([]string, error) {
	if ks := stringList(meta["contentKeys"]); len(ks) > 0 {
		return ks, nil
	}
	if src, ok := meta["source"].(map[string]any); ok {
		if ks := stringList(src["contentKeys"]); len(ks) > 0 {
			return ks, nil
		}
	}
	res, err := resolver.Resolve(dbc, a.ScopeType, a.ScopeID)
	if err != nil {
		return nil, err
	}
	return res.ContentKeys, nil
}

// Seed reads meta.seed.variantSeed, then meta.seed.baseSeed, else "0".
func Seed(meta map[string]any) string {
	seed, _ := meta["seed"].(map[string]any)
	for _, k := range []string{"variantSeed", "baseSeed"} {
		if v := scalar(seed[k]); v != "" {
			return v
		}
	}
	return "0"
}

// Fail records err on the artifact and returns err for the worker to fail the job with.
func Fail(jc *jobrt.Context, repo artifactrepo.DerivedArtifactRepo, a *types.DerivedArtifact, err error) error {
	if a == nil || err == nil {
		return err
	}
	payload := jobrt.NewArtifactError(jc.Job.JobType, a.Kind, err)
	if markErr := repo.MarkFailed(jc.DBC(), a.ID, payload.JSON()); markErr != nil {
		jc.Log.Error("failed to mark artifact FAILED", "artifact_id", a.ID.String(), "error", markErr)
	}
	jc.Log.Warn("artifact generation failed", "artifact_id", a.ID.String(), "error", err)
	return err
}

// ChainSibling enqueues the job for a's sibling of the given kind when that sibling
// exists and is not READY. It returns whether a job was enqueued.
func ChainSibling(jc *jobrt.Context, repo artifactrepo.DerivedArtifactRepo, enq services.JobEnqueuer, a *types.DerivedArtifact, kind types.ArtifactKind) (bool, error) {
	siblingKey, err := keys.Make(keys.Sibling(a, kind))
	if err != nil {
		return false, err
	}
	sib, err := repo.GetByCacheKey(jc.DBC(), siblingKey)
	if err != nil {
		return false, err
	}
	if sib == nil || sib.IsReady() {
		return false, nil
	}
	job, err := enq.EnqueueFor(jc.DBC(), sib)
	if err != nil {
		return false, err
	}
	jc.Log.Info("chained sibling job", "sibling_cache_key", siblingKey, "sibling_job_id", job.ID.String())
	return true, nil
}

func stringList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s := scalar(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func scalar(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// ReadyPlan loads the STORY_PLAN sibling of a. It fails with DependencyNotReady
// ("plan_not_ready") unless the plan is READY and carries scenes.
func ReadyPlan(jc *jobrt.Context, repo artifactrepo.DerivedArtifactRepo, a *types.DerivedArtifact) (story.Plan, map[string]any, error) {
	const op = "story.ReadyPlan"
	planKey, err := keys.Make(keys.Sibling(a, types.KindStoryPlan))
	if err != nil {
		return story.Plan{}, nil, err
	}
	planArtifact, err := repo.GetByCacheKey(jc.DBC(), planKey)
	if err != nil {
		return story.Plan{}, nil, err
	}
	if !planArtifact.IsReady() {
		return story.Plan{}, nil, apierr.DependencyNotReady(op, "plan_not_ready")
	}
	meta := Meta(planArtifact)
	raw, err := json.Marshal(meta["plan"])
	if err != nil {
		return story.Plan{}, nil, apierr.DependencyNotReady(op, "plan_not_ready")
	}
	plan, err := story.DecodePlan(raw)
	if err != nil {
		return story.Plan{}, nil, apierr.DependencyNotReady(op, "plan_not_ready")
	}
	return plan, meta, nil
}

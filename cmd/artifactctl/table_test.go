package main

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/learnhub-backend/internal/domain"
)

func TestRenderTableEmptyHeaders(t *testing.T) {
	if got := renderTable(nil, [][]string{{"x"}}, nil); got != "" {
		t.Fatalf("expected empty render, got %q", got)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable([]string{"A", "B"}, [][]string{{"only"}}, nil)
	if !strings.Contains(out, "only") || !strings.Contains(out, "A") || !strings.Contains(out, "B") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestRenderStatsTableOrdersKnownStatuses(t *testing.T) {
	out := renderStatsTable(map[types.JobStatus]int64{
		types.JobFailed: 2,
		types.JobQueued: 5,
	})
	q := strings.Index(out, "queued")
	c := strings.Index(out, "claimed")
	f := strings.Index(out, "failed")
	if q < 0 || c < 0 || f < 0 || !(q < c && c < f) {
		t.Fatalf("statuses out of order:\n%s", out)
	}
	if !strings.Contains(out, "5") || !strings.Contains(out, "2") {
		t.Fatalf("counts missing:\n%s", out)
	}
}

func TestRenderJobTableTruncatesErrors(t *testing.T) {
	job := &types.GenerationJob{
		ID:        uuid.New(),
		JobType:   "BRAILLE_BRF_GENERATE",
		Status:    types.JobFailed,
		Attempts:  3,
		Error:     strings.Repeat("e", 200),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	out := renderJobTable([]*types.GenerationJob{job})
	if strings.Contains(out, strings.Repeat("e", 49)) {
		t.Fatalf("error column not truncated:\n%s", out)
	}
	if !strings.Contains(out, job.ID.String()) || !strings.Contains(out, "2026-01-02T03:04:05Z") {
		t.Fatalf("job row missing fields:\n%s", out)
	}
}

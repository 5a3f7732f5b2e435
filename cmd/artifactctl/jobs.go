package main

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and retry generation jobs",
	}
	cmd.AddCommand(newJobsListCommand(ctx))
	cmd.AddCommand(newJobsStatsCommand(ctx))
	cmd.AddCommand(newJobsRetryCommand(ctx))
	return cmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var (
		status string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			jobs, err := a.Services.Queue.List(dbctx.Context{Ctx: cmdContext(cmd)}, types.JobStatus(status), limit)
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, jobs)
			}
			if len(jobs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderJobTable(jobs))
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (queued, claimed, succeeded, failed)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows")
	return cmd
}

func renderJobTable(jobs []*types.GenerationJob) string {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			j.ID.String(),
			j.JobType,
			string(j.Status),
			strconv.Itoa(j.Attempts),
			j.CreatedAt.Format(time.RFC3339),
			truncate(j.Error, 48),
		})
	}
	return renderTable(
		[]string{"ID", "Type", "Status", "Attempts", "Created", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func newJobsStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count jobs by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			stats, err := a.Services.Queue.Stats(dbctx.Context{Ctx: cmdContext(cmd)})
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, stats)
			}
			fmt.Fprint(cmd.OutOrStdout(), renderStatsTable(stats))
			return nil
		},
	}
}

func renderStatsTable(stats map[types.JobStatus]int64) string {
	statuses := []types.JobStatus{types.JobQueued, types.JobClaimed, types.JobSucceeded, types.JobFailed}
	seen := map[types.JobStatus]bool{}
	for _, s := range statuses {
		seen[s] = true
	}
	var extra []string
	for s := range stats {
		if !seen[s] {
			extra = append(extra, string(s))
		}
	}
	sort.Strings(extra)
	for _, s := range extra {
		statuses = append(statuses, types.JobStatus(s))
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		rows = append(rows, []string{string(s), strconv.FormatInt(stats[s], 10)})
	}
	return renderTable([]string{"Status", "Jobs"}, rows, []columnAlignment{alignLeft, alignRight})
}

func newJobsRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Re-arm a finished job, resetting its artifact unless it is READY",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUUID(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			job, err := a.Services.Queue.Retry(dbctx.Context{Ctx: cmdContext(cmd)}, id)
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, job)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s is %s\n", job.ID, job.Status)
			return nil
		},
	}
}

func newDrainCommand(ctx *commandContext) *cobra.Command {
	var max int
	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Process queued jobs in the foreground until the queue is empty",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			n, err := a.Services.JobWorker.Drain(cmdContext(cmd), max)
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, map[string]int{"processed": n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d job(s)\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&max, "max", 0, "Stop after this many jobs (0 means no limit)")
	return cmd
}

func parseUUID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

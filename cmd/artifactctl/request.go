package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/services"
)

func newRequestCommand(ctx *commandContext) *cobra.Command {
	var (
		kind      string
		scopeType string
		scopeID   string
		locale    string
		userID    string
	)
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Request a derived artifact and enqueue its generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			req := services.ArtifactRequest{
				UserID:    userID,
				ScopeType: types.ScopeType(strings.ToUpper(strings.TrimSpace(scopeType))),
				ScopeID:   scopeID,
				Locale:    locale,
				Kind:      types.ArtifactKind(strings.ToUpper(strings.TrimSpace(kind))),
			}
			t, err := a.Services.Artifacts.RequestArtifact(dbctx.Context{Ctx: cmdContext(cmd)}, req)
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, t)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", t.ArtifactID, t.Status, t.CacheKey)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(types.KindBraillePreview), "Artifact kind")
	cmd.Flags().StringVar(&scopeType, "scope-type", string(types.ScopeMicrosection), "MICROSECTION, LESSON or CHAPTER")
	cmd.Flags().StringVar(&scopeID, "scope-id", "", "Scope identifier")
	cmd.Flags().StringVar(&locale, "locale", "", "Locale (defaults to the configured locale)")
	cmd.Flags().StringVar(&userID, "user", "artifactctl", "Requesting user id")
	_ = cmd.MarkFlagRequired("scope-id")
	return cmd
}

func newGetCommand(ctx *commandContext) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "get <artifact-id>",
		Short: "Show an artifact with its metadata",
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
			view, err := a.Services.Artifacts.GetArtifact(dbctx.Context{Ctx: cmdContext(cmd)}, userID, id)
			if err != nil {
				return err
			}
			if ctx.jsonOutput {
				return writeJSON(cmd, view)
			}
			art := view.Artifact
			rows := [][]string{
				{"ID", art.ID.String()},
				{"Kind", string(art.Kind)},
				{"Status", string(art.Status)},
				{"Scope", fmt.Sprintf("%s %s", art.ScopeType, art.ScopeID)},
				{"Version", fmt.Sprintf("%d", art.ContentVersion)},
				{"Locale", art.Locale},
				{"Cache key", art.CacheKey},
			}
			if art.BlobKey != "" {
				rows = append(rows, []string{"Blob", art.BlobKey})
			}
			if view.DownloadURL != nil {
				rows = append(rows, []string{"Download", *view.DownloadURL})
			}
			fmt.Fprint(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "artifactctl", "Reading user id")
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}

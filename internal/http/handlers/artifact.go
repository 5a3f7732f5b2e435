package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/http/response"
	"github.com/yungbote/learnhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type ArtifactHandler struct {
	artifacts services.ArtifactService
}

func NewArtifactHandler(artifacts services.ArtifactService) *ArtifactHandler {
	return &ArtifactHandler{artifacts: artifacts}
}

type artifactRequestBody struct {
	ScopeType string `json:"scopeType"`
	ScopeID   string `json:"scopeId"`
	Locale    string `json:"locale"`
	Kind      string `json:"kind"`
}

// POST /api/artifacts/braille/preview
func (h *ArtifactHandler) RequestBraillePreview(c *gin.Context) {
	h.request(c, types.KindBraillePreview)
}

// POST /api/artifacts/braille/export
func (h *ArtifactHandler) RequestBrailleExport(c *gin.Context) {
	h.request(c, types.KindBrailleBRF)
}

// POST /api/artifacts
func (h *ArtifactHandler) RequestArtifact(c *gin.Context) {
	h.request(c, "")
}

func (h *ArtifactHandler) request(c *gin.Context, kind types.ArtifactKind) {
	var body artifactRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if kind == "" {
		kind = types.ArtifactKind(strings.ToUpper(strings.TrimSpace(body.Kind)))
	}
	scopeType, scopeID := parseScope(body.ScopeType, body.ScopeID)
	if scopeType == "" || scopeID == "" {
		response.RespondError(c, http.StatusBadRequest, "scope_required", errors.New("scopeType and scopeId are required"))
		return
	}

	ticket, err := h.artifacts.RequestArtifact(dbctx.Context{Ctx: c.Request.Context()}, services.ArtifactRequest{
		UserID:    ctxutil.UserID(c.Request.Context()),
		ScopeType: scopeType,
		ScopeID:   scopeID,
		Locale:    body.Locale,
		Kind:      kind,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, ticket)
}

// GET /api/artifacts/:id
func (h *ArtifactHandler) GetArtifact(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_artifact_id", err)
		return
	}
	view, err := h.artifacts.GetArtifact(dbctx.Context{Ctx: c.Request.Context()}, ctxutil.UserID(c.Request.Context()), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

func parseScope(rawType, rawID string) (types.ScopeType, string) {
	st := types.ScopeType(strings.ToUpper(strings.TrimSpace(rawType)))
	if !st.Valid() {
		return "", ""
	}
	return st, strings.TrimSpace(rawID)
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/learnhub-backend/internal/domain"
	"github.com/yungbote/learnhub-backend/internal/http/response"
	"github.com/yungbote/learnhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnhub-backend/internal/platform/dbctx"
	"github.com/yungbote/learnhub-backend/internal/services"
)

type StoryHandler struct {
	artifacts services.ArtifactService
}

func NewStoryHandler(artifacts services.ArtifactService) *StoryHandler {
	return &StoryHandler{artifacts: artifacts}
}

type storyCompileBody struct {
	ScopeType string `json:"scopeType"`
	ScopeID   string `json:"scopeId"`
	// LessonID is shorthand for scopeType=LESSON.
	LessonID    string `json:"lessonId"`
	Locale      string `json:"locale"`
	Seed        string `json:"seed"`
	ReuseLatest bool   `json:"reuseLatest"`
}

// POST /api/story/compile
func (h *StoryHandler) Compile(c *gin.Context) {
	var body storyCompileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if strings.TrimSpace(body.ScopeID) == "" && strings.TrimSpace(body.LessonID) != "" {
		body.ScopeType, body.ScopeID = string(types.ScopeLesson), body.LessonID
	}
	scopeType, scopeID := parseScope(body.ScopeType, body.ScopeID)
	if scopeType == "" || scopeID == "" {
		response.RespondError(c, http.StatusBadRequest, "scope_required", errors.New("scopeType and scopeId are required"))
		return
	}

	ticket, err := h.artifacts.CompileStory(dbctx.Context{Ctx: c.Request.Context()}, services.StoryRequest{
		UserID:      ctxutil.UserID(c.Request.Context()),
		ScopeType:   scopeType,
		ScopeID:     scopeID,
		Locale:      body.Locale,
		Seed:        strings.TrimSpace(body.Seed),
		ReuseLatest: body.ReuseLatest,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, ticket)
}

// GET /api/story/variants?scopeType=&scopeId=&locale=
func (h *StoryHandler) ListVariants(c *gin.Context) {
	scopeType, scopeID := parseScope(c.Query("scopeType"), c.Query("scopeId"))
	if scopeType == "" || scopeID == "" {
		response.RespondError(c, http.StatusBadRequest, "scope_required", errors.New("scopeType and scopeId are required"))
		return
	}
	variants, err := h.artifacts.ListStoryVariants(
		dbctx.Context{Ctx: c.Request.Context()},
		ctxutil.UserID(c.Request.Context()),
		scopeType,
		scopeID,
		c.Query("locale"),
	)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"variants": variants})
}

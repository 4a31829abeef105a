package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"nosybot/internal/model"
	"nosybot/internal/summary"
)

// SummaryEngine is the one engine query the facade re-exposes.
type SummaryEngine interface {
	ListCompletedInRange(ctx context.Context, userID int64, start, end time.Time) ([]model.Task, error)
}

// LLM covers both facade uses of the language model.
type LLM interface {
	summary.Summarizer
	summary.Completer
}

type APIHandler struct {
	engine SummaryEngine
	llm    LLM
}

func NewAPIHandler(engine SummaryEngine, llm LLM) *APIHandler {
	return &APIHandler{engine: engine, llm: llm}
}

// ChatRequest представляет запрос к языковой модели
type ChatRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ChatResponse представляет ответ языковой модели
type ChatResponse struct {
	Response string `json:"response"`
}

// SummaryResponse представляет сводку выполненных задач
type SummaryResponse struct {
	Summary   string `json:"summary"`
	Completed int    `json:"completed"`
	Days      int    `json:"days"`
}

// Test godoc
// @Summary      Health check
// @Tags         API
// @Produce      json
// @Success      200 {object} map[string]string
// @Router       /api/test [get]
func (h *APIHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "API is working!",
		"status":  "success",
	})
}

// Chat godoc
// @Summary      Forward a prompt to the language model
// @Tags         API
// @Accept       json
// @Produce      json
// @Param        request body ChatRequest true "Prompt"
// @Success      200 {object} ChatResponse
// @Failure      400 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /api/chat [post]
func (h *APIHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No prompt provided"})
		return
	}

	resp, err := h.llm.Complete(c.Request.Context(), req.Prompt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Response: resp})
}

// UserSummary godoc
// @Summary      Summarize a user's recently completed tasks
// @Tags         API
// @Produce      json
// @Param        id   path  int true  "User ID"
// @Param        days query int false "Trailing window in days (default 7)"
// @Success      200 {object} SummaryResponse
// @Failure      400 {object} map[string]string
// @Failure      500 {object} map[string]string
// @Router       /api/users/{id}/summary [get]
func (h *APIHandler) UserSummary(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil || days <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days value"})
			return
		}
	}

	end := time.Now()
	start := end.AddDate(0, 0, -days)

	tasks, err := h.engine.ListCompletedInRange(c.Request.Context(), userID, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tasks"})
		return
	}

	if len(tasks) == 0 {
		c.JSON(http.StatusOK, SummaryResponse{Summary: "", Completed: 0, Days: days})
		return
	}

	recap, err := h.llm.Summarize(c.Request.Context(), tasks)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Summarization failed"})
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{
		Summary:   recap,
		Completed: len(tasks),
		Days:      days,
	})
}

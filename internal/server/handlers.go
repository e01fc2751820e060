package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/feedback-insight-poc/server/internal/agent/graph"
	"github.com/feedback-insight-poc/server/internal/agent/model"
	errx "github.com/feedback-insight-poc/server/internal/core/error"
	logx "github.com/feedback-insight-poc/server/pkg/logger"
)

type messageRequest struct {
	Content  string `json:"content" binding:"required"`
	SheetURL string `json:"sheet_url"`
}

type resumeRequest struct {
	Value string `json:"value" binding:"required"`
}

type messageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type runResponse struct {
	ThreadID         string       `json:"thread_id"`
	Messages         []messageDTO `json:"messages"`
	AwaitingHuman    bool         `json:"awaiting_human"`
	InterruptMessage string       `json:"interrupt_message,omitempty"`
}

type inspectResponse struct {
	ThreadID  string             `json:"thread_id"`
	Suspended bool               `json:"suspended"`
	State     *model.SharedState `json:"state"`
}

func (s *Server) createThread(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"thread_id": uuid.NewString()})
}

func (s *Server) postMessage(c *gin.Context) {
	threadID := c.Param("id")

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.orch.Run(c.Request.Context(), graph.RunInput{
		ThreadID: threadID,
		Content:  req.Content,
		SheetURL: req.SheetURL,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRunResponse(threadID, res))
}

func (s *Server) resume(c *gin.Context) {
	threadID := c.Param("id")

	var req resumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.orch.Resume(c.Request.Context(), threadID, req.Value)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRunResponse(threadID, res))
}

func (s *Server) inspect(c *gin.Context) {
	threadID := c.Param("id")

	cp, err := s.orch.Inspect(c.Request.Context(), threadID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inspectResponse{
		ThreadID:  cp.ThreadID,
		Suspended: cp.Suspended,
		State:     cp.State,
	})
}

func (s *Server) reset(c *gin.Context) {
	threadID := c.Param("id")

	if err := s.orch.Reset(c.Request.Context(), threadID); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps engine and store errors onto HTTP statuses. Suspension
// protocol misuse is the caller's integration bug, reported as a conflict.
func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, graph.ErrThreadSuspended):
		c.JSON(http.StatusConflict, gin.H{"error": "thread is suspended, call resume"})
	case errors.Is(err, graph.ErrNotSuspended):
		c.JSON(http.StatusConflict, gin.H{"error": "thread is not suspended"})
	case errors.Is(err, model.ErrCheckpointNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "thread not found"})
	default:
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			c.JSON(appErr.Status, gin.H{"error": appErr.Message})
			return
		}
		logx.Error().Err(err).Str("path", c.Request.URL.Path).Msg("unhandled server error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toRunResponse(threadID string, res *graph.RunResult) runResponse {
	msgs := make([]messageDTO, 0, len(res.Messages))
	for _, m := range res.Messages {
		if m == nil {
			continue
		}
		msgs = append(msgs, messageDTO{Role: string(m.Role), Content: m.Content})
	}
	return runResponse{
		ThreadID:         threadID,
		Messages:         msgs,
		AwaitingHuman:    res.AwaitingHuman,
		InterruptMessage: res.InterruptMessage,
	}
}

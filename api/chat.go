package api

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/clipforge/backend/domain"
	"github.com/clipforge/backend/store"
)

type createSessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type sendMessageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type sessionHistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
}

// CreateSession creates a new chat session.
// POST /api/chat/create-session
func (h *Handler) CreateSession(c echo.Context) error {
	session, err := h.store.Create(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to create session")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create session"})
	}

	log.Info().Str("session_id", session.ID).Msg("session created")
	return c.JSON(http.StatusOK, createSessionResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// SendMessage appends the user message and streams the assistant reply
// back as plain text fragments.
// POST /api/chat/send-message
func (h *Handler) SendMessage(c echo.Context) error {
	ctx := c.Request().Context()

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.SessionID == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "session_id and message are required"})
	}

	if _, err := h.store.Get(ctx, req.SessionID); err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		}
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("session lookup failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load session"})
	}

	userMsg := domain.Message{Role: domain.RoleUser, Content: req.Message}
	if err := h.store.Append(ctx, req.SessionID, userMsg); err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		}
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to save user message")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save message"})
	}

	history, err := h.store.History(ctx, req.SessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to load history")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/plain; charset=utf-8")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().WriteHeader(http.StatusOK)

	usage := h.relay.Run(ctx, req.SessionID, history, func(fragment string) error {
		if _, err := io.WriteString(c.Response(), fragment); err != nil {
			return err
		}
		c.Response().Flush()
		return nil
	})

	log.Debug().
		Str("session_id", req.SessionID).
		Int("prompt_tokens", usage.PromptTokens).
		Int("completion_tokens", usage.CompletionTokens).
		Msg("completion finished")
	return nil
}

// SessionHistory returns the ordered messages of a session.
// GET /api/chat/session/:id/history
func (h *Handler) SessionHistory(c echo.Context) error {
	ctx := c.Request().Context()
	sessionID := c.Param("id")

	if _, err := h.store.Get(ctx, sessionID); err != nil {
		if err == store.ErrNotFound {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Session not found"})
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("session lookup failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load session"})
	}

	history, err := h.store.History(ctx, sessionID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("failed to load history")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
	}

	return c.JSON(http.StatusOK, sessionHistoryResponse{
		SessionID: sessionID,
		Messages:  history,
	})
}

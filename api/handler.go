// Package api provides the HTTP handlers for the backend.
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clipforge/backend/media"
	"github.com/clipforge/backend/relay"
	"github.com/clipforge/backend/store"
)

// Handler handles HTTP requests.
type Handler struct {
	store    store.Store
	relay    *relay.Relay
	probe    *media.Probe
	streamer *media.Streamer
	pacer    *media.Pacer
}

// NewHandler creates a new handler.
func NewHandler(st store.Store, rl *relay.Relay, probe *media.Probe, streamer *media.Streamer, pacer *media.Pacer) *Handler {
	return &Handler{
		store:    st,
		relay:    rl,
		probe:    probe,
		streamer: streamer,
		pacer:    pacer,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/health", h.Health)

	// Media API
	e.GET("/media", h.ListMedia)
	e.HEAD("/media/:name", h.ProbeMedia)
	e.GET("/media/:name", h.DownloadMedia)
	e.GET("/errormedia/:name", h.DownloadMediaFaulty)

	// Transfer rate configuration
	e.GET("/config/download-speed", h.GetDownloadSpeed)
	e.POST("/config/download-speed/:speed_mbps", h.SetDownloadSpeed)

	// Chat API
	e.POST("/api/chat/create-session", h.CreateSession)
	e.POST("/api/chat/send-message", h.SendMessage)
	e.GET("/api/chat/session/:id/history", h.SessionHistory)
}

// Root returns the service banner.
// GET /
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "AI Video Editor Backend is running",
	})
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/clipforge/backend/media"
)

const bytesPerMB = 1024 * 1024

type downloadSpeedResponse struct {
	BytesPerSecond int64   `json:"bytes_per_second"`
	MBPerSecond    float64 `json:"mb_per_second"`
	ChunkSize      int     `json:"chunk_size"`
}

// GetDownloadSpeed returns the current transfer rate configuration.
// GET /config/download-speed
func (h *Handler) GetDownloadSpeed(c echo.Context) error {
	s := h.pacer.Settings()
	return c.JSON(http.StatusOK, downloadSpeedResponse{
		BytesPerSecond: s.BytesPerSec,
		MBPerSecond:    float64(s.BytesPerSec) / bytesPerMB,
		ChunkSize:      s.ChunkSize,
	})
}

// SetDownloadSpeed updates the transfer rate. Takes effect for chunks
// scheduled after the change; already-computed delays are unaffected.
// POST /config/download-speed/:speed_mbps
func (h *Handler) SetDownloadSpeed(c echo.Context) error {
	raw := c.Param("speed_mbps")
	mbps, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid speed '" + raw + "'",
		})
	}

	if err := h.pacer.SetRate(int64(mbps * bytesPerMB)); err != nil {
		if err == media.ErrRateOutOfRange {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "speed must be greater than 0 and at most 100 MB/s",
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to set speed"})
	}

	s := h.pacer.Settings()
	log.Info().Int64("bytes_per_second", s.BytesPerSec).Msg("download speed updated")
	return c.JSON(http.StatusOK, downloadSpeedResponse{
		BytesPerSecond: s.BytesPerSec,
		MBPerSecond:    float64(s.BytesPerSec) / bytesPerMB,
		ChunkSize:      s.ChunkSize,
	})
}

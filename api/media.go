package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/clipforge/backend/domain"
	"github.com/clipforge/backend/media"
)

type mediaFileInfo struct {
	Name string           `json:"name"`
	Size int64            `json:"size"`
	URL  string           `json:"url"`
	Type domain.MediaType `json:"type"`
}

type mediaListResponse struct {
	Files []mediaFileInfo `json:"files"`
	Total int             `json:"total"`
}

// ListMedia returns all servable files under the media root.
// GET /media
func (h *Handler) ListMedia(c echo.Context) error {
	entries, err := h.probe.List()
	if err != nil {
		log.Error().Err(err).Msg("failed to list media files")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list media files"})
	}

	files := make([]mediaFileInfo, 0, len(entries))
	for _, e := range entries {
		files = append(files, mediaFileInfo{
			Name: e.Name,
			Size: e.Size,
			URL:  "/media/" + e.EncodedName,
			Type: e.Type,
		})
	}
	return c.JSON(http.StatusOK, mediaListResponse{Files: files, Total: len(files)})
}

// ProbeMedia answers a header-only metadata probe.
// HEAD /media/:name
func (h *Handler) ProbeMedia(c echo.Context) error {
	name := paramName(c)
	desc, _, err := h.probe.Resolve(name)
	if err != nil {
		return mediaError(c, name, err)
	}
	writeMediaHeaders(c, desc)
	return c.NoContent(http.StatusOK)
}

// DownloadMedia serves the file body at the configured transfer rate.
// GET /media/:name
func (h *Handler) DownloadMedia(c echo.Context) error {
	return h.download(c, false)
}

// DownloadMediaFaulty serves the file like DownloadMedia but deliberately
// drops the transfer halfway through, for client failure-mode testing.
// GET /errormedia/:name
func (h *Handler) DownloadMediaFaulty(c echo.Context) error {
	return h.download(c, true)
}

func (h *Handler) download(c echo.Context, faulty bool) error {
	name := paramName(c)
	desc, path, err := h.probe.Resolve(name)
	if err != nil {
		return mediaError(c, name, err)
	}

	writeMediaHeaders(c, desc)
	c.Response().WriteHeader(http.StatusOK)

	ctx := c.Request().Context()
	w := flushWriter{w: c.Response(), f: c.Response()}

	var sent int64
	if faulty {
		sent, err = h.streamer.StreamFaulty(ctx, path, w)
	} else {
		sent, err = h.streamer.Stream(ctx, path, w)
	}

	switch {
	case err == nil:
	case errors.Is(err, media.ErrTransferAborted):
		// Fewer bytes than Content-Length were written; the server closes
		// the connection short and the client observes a broken transfer.
		log.Info().Str("name", desc.Name).Int64("sent", sent).Msg("injected transfer fault")
	default:
		log.Warn().Err(err).Str("name", desc.Name).Int64("sent", sent).Msg("media stream ended early")
	}
	return nil
}

// paramName decodes the :name path parameter; names arrive percent-encoded.
func paramName(c echo.Context) string {
	raw := c.Param("name")
	name, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return name
}

// mediaError maps probe failures onto the HTTP surface.
func mediaError(c echo.Context, name string, err error) error {
	switch {
	case errors.Is(err, media.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "file '" + name + "' not found",
		})
	case errors.Is(err, media.ErrInvalidTarget):
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "'" + name + "' is not a file",
		})
	default:
		log.Error().Err(err).Str("name", name).Msg("media probe failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to probe file"})
	}
}

func writeMediaHeaders(c echo.Context, desc domain.MediaDescriptor) {
	header := c.Response().Header()
	header.Set(echo.HeaderContentType, desc.MIME)
	header.Set(echo.HeaderContentLength, strconv.FormatInt(desc.Size, 10))
	header.Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(desc.Name))
	header.Set("Accept-Ranges", "bytes")
}

// flushWriter flushes after every chunk so pacing is visible to the client
// instead of pooling in server buffers.
type flushWriter struct {
	w io.Writer
	f http.Flusher
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if fw.f != nil {
		fw.f.Flush()
	}
	return n, err
}

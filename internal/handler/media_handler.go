package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/model"
	"github.com/stemsi/exstem-enroll/internal/response"
	"github.com/stemsi/exstem-enroll/internal/service"
)

// MsgSnapshotSaved acknowledges a stored webcam snapshot.
const MsgSnapshotSaved = "Snapshot saved"

// MediaHandler handles webcam snapshot uploads.
type MediaHandler struct {
	mediaService *service.MediaService
	log          zerolog.Logger
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService, log zerolog.Logger) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		log:          log.With().Str("component", "media_handler").Logger(),
	}
}

// SaveSnapshot godoc
// POST /save_snapshot
// Accepts a base64 image (or data URL) in the "image" field, as form data or
// JSON, and answers with plain text.
func (h *MediaHandler) SaveSnapshot(c *gin.Context) {
	var req model.SnapshotRequest
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.AbortText(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.AbortText(c, http.StatusBadRequest, response.ErrInvalidSnapshot)
		return
	}

	name, err := h.mediaService.SaveSnapshot(c.Request.Context(), req.Image)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSnapshot):
			response.AbortText(c, http.StatusBadRequest, response.ErrInvalidSnapshot)
		case errors.Is(err, service.ErrFileTooLarge):
			response.AbortText(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		default:
			h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Failed to store snapshot")
			response.AbortText(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	h.log.Info().Str("file", name).Msg("Snapshot saved")
	response.Text(c, http.StatusOK, MsgSnapshotSaved)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/middleware"
	"github.com/stemsi/exstem-enroll/internal/repository"
	"github.com/stemsi/exstem-enroll/internal/response"
	"github.com/stemsi/exstem-enroll/internal/service"
)

// StudentPortalHandler serves the logged-in landing pages.
type StudentPortalHandler struct {
	studentService    *service.StudentService
	assessmentService *service.AssessmentService
	sessions          *middleware.SessionManager
	log               zerolog.Logger
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(
	studentService *service.StudentService,
	assessmentService *service.AssessmentService,
	sessions *middleware.SessionManager,
	log zerolog.Logger,
) *StudentPortalHandler {
	return &StudentPortalHandler{
		studentService:    studentService,
		assessmentService: assessmentService,
		sessions:          sessions,
		log:               log.With().Str("component", "portal_handler").Logger(),
	}
}

// Dashboard godoc
// GET /dashboard
// Shows the profile, photo and assessment status.
func (h *StudentPortalHandler) Dashboard(c *gin.Context) {
	sess := middleware.GetSession(c)
	ctx := c.Request.Context()

	student, err := h.studentService.GetByEmail(ctx, sess.Email)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			// The record is gone (store reset); the session is stale.
			_ = h.sessions.Destroy(c)
			response.Redirect(c, "/login")
			return
		}
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Failed to load student")
		response.ServerError(c, sess)
		return
	}

	status, err := h.assessmentService.Status(ctx, sess)
	if err != nil {
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Failed to load assessment status")
		response.ServerError(c, sess)
		return
	}

	response.Page(c, http.StatusOK, "dashboard.html", sess, gin.H{
		"Student":  student,
		"PhotoURL": h.studentService.PhotoURL(student),
		"Status":   status,
		"Mode":     h.assessmentService.Mode(),
	})
}

// Continue godoc
// GET /continue
// Interstitial shown before the quiz when webcam snapshots are enabled.
func (h *StudentPortalHandler) Continue(c *gin.Context) {
	response.Page(c, http.StatusOK, "continue.html", middleware.GetSession(c), nil)
}

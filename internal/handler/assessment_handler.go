package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/middleware"
	"github.com/stemsi/exstem-enroll/internal/response"
	"github.com/stemsi/exstem-enroll/internal/service"
)

// AssessmentHandler serves the quiz and its result.
type AssessmentHandler struct {
	assessmentService *service.AssessmentService
	log               zerolog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessmentService *service.AssessmentService, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentService: assessmentService,
		log:               log.With().Str("component", "assessment_handler").Logger(),
	}
}

// Show godoc
// GET /assessment
// Starts or resumes the quiz. A completed quiz redirects to its result.
func (h *AssessmentHandler) Show(c *gin.Context) {
	sess := middleware.GetSession(c)

	page, err := h.assessmentService.Start(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Page(c, http.StatusOK, "assessment.html", sess, gin.H{
		"Questions": page.Questions,
		"Answers":   page.Answers,
		"Snapshots": h.assessmentService.Mode() == config.AssessmentModeSession,
	})
}

// Submit godoc
// POST /assessment
// Scores the submitted form and redirects to the result.
func (h *AssessmentHandler) Submit(c *gin.Context) {
	sess := middleware.GetSession(c)

	if _, err := h.assessmentService.Submit(c.Request.Context(), sess, c.PostForm); err != nil {
		h.fail(c, err)
		return
	}
	response.Redirect(c, "/result")
}

// Result godoc
// GET /result
func (h *AssessmentHandler) Result(c *gin.Context) {
	sess := middleware.GetSession(c)

	summary, err := h.assessmentService.Result(c.Request.Context(), sess)
	if err != nil {
		h.fail(c, err)
		return
	}

	response.Page(c, http.StatusOK, "result.html", sess, gin.H{
		"Result": summary,
	})
}

func (h *AssessmentHandler) fail(c *gin.Context, err error) {
	sess := middleware.GetSession(c)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Redirect(c, "/login")
	case errors.Is(err, service.ErrAssessmentCompleted):
		response.Redirect(c, "/result")
	case errors.Is(err, service.ErrResultUnavailable):
		response.Redirect(c, "/dashboard")
	default:
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Assessment request failed")
		response.ServerError(c, sess)
	}
}

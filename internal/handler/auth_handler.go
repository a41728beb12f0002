package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/middleware"
	"github.com/stemsi/exstem-enroll/internal/model"
	"github.com/stemsi/exstem-enroll/internal/repository"
	"github.com/stemsi/exstem-enroll/internal/response"
	"github.com/stemsi/exstem-enroll/internal/service"
	"github.com/stemsi/exstem-enroll/internal/validator"
)

// MsgRegistered is flashed on the login page after a successful registration.
const MsgRegistered = "Registration successful. Login now."

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	studentService *service.StudentService
	sessions       *middleware.SessionManager
	log            zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	studentService *service.StudentService,
	sessions *middleware.SessionManager,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		studentService: studentService,
		sessions:       sessions,
		log:            log.With().Str("component", "auth_handler").Logger(),
	}
}

// RegisterForm godoc
// GET /
func (h *AuthHandler) RegisterForm(c *gin.Context) {
	response.Page(c, http.StatusOK, "register.html", middleware.GetSession(c), gin.H{
		"RollNoMin": service.RollNoMin,
		"RollNoMax": service.RollNoMax,
	})
}

// Register godoc
// POST /
// Creates the student record and stores the photo. Every rejection flashes a
// message and returns to the form.
func (h *AuthHandler) Register(c *gin.Context) {
	sess := middleware.GetSession(c)

	var req model.RegisterRequest
	if err := validator.Bind(c, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RedirectWithFlash(c, sess, response.ErrFileTooLarge, "/")
			return
		}
		msgs := validator.Messages(err)
		if len(msgs) == 0 {
			response.RedirectWithFlash(c, sess, response.ErrValidation, "/")
			return
		}
		for _, m := range msgs {
			sess.AddFlash(m)
		}
		response.Redirect(c, "/")
		return
	}

	_, err := h.studentService.Register(c.Request.Context(), service.RegistrationFromRequest(&req))
	if err != nil {
		code, ok := registrationErrCode(err)
		if !ok {
			h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Registration failed")
			response.ServerError(c, sess)
			return
		}
		response.RedirectWithFlash(c, sess, code, "/")
		return
	}

	response.RedirectWithMessage(c, sess, MsgRegistered, "/login")
}

func registrationErrCode(err error) (response.ErrCode, bool) {
	switch {
	case errors.Is(err, service.ErrRollNoNotNumeric):
		return response.ErrRollNoNotNumeric, true
	case errors.Is(err, service.ErrRollNoOutOfRange):
		return response.ErrRollNoOutOfRange, true
	case errors.Is(err, repository.ErrDuplicateRollNo):
		return response.ErrRollNoTaken, true
	case errors.Is(err, repository.ErrDuplicateEmail):
		return response.ErrEmailTaken, true
	case errors.Is(err, service.ErrPasswordTooLong):
		return response.ErrPasswordTooLong, true
	case errors.Is(err, service.ErrUnsupportedFileType):
		return response.ErrUnsupportedPhoto, true
	case errors.Is(err, service.ErrFileTooLarge):
		return response.ErrFileTooLarge, true
	}
	return "", false
}

// LoginForm godoc
// GET /login
func (h *AuthHandler) LoginForm(c *gin.Context) {
	response.Page(c, http.StatusOK, "login.html", middleware.GetSession(c), gin.H{"Email": ""})
}

// Login godoc
// POST /login
// On success the session is rotated and bound to the student.
func (h *AuthHandler) Login(c *gin.Context) {
	sess := middleware.GetSession(c)

	var req model.LoginRequest
	if err := validator.Bind(c, &req); err != nil {
		h.loginFailed(c, req.Email)
		return
	}

	student, err := h.studentService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.loginFailed(c, req.Email)
			return
		}
		h.log.Error().Err(err).Str("request_id", response.RequestID(c)).Msg("Login lookup failed")
		response.ServerError(c, sess)
		return
	}

	sess.Clear()
	if err := h.sessions.Renew(c); err != nil {
		h.log.Error().Err(err).Msg("Failed to rotate session")
		response.ServerError(c, sess)
		return
	}
	sess.Login(student.Email)

	h.log.Info().Str("email", student.Email).Msg("Student logged in")
	response.Redirect(c, "/dashboard")
}

func (h *AuthHandler) loginFailed(c *gin.Context, email string) {
	sess := middleware.GetSession(c)
	sess.AddFlash(response.GetMessage(response.ErrInvalidCredentials))
	response.Page(c, http.StatusOK, "login.html", sess, gin.H{"Email": email})
}

// Logout godoc
// GET /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.sessions.Destroy(c); err != nil {
		h.log.Warn().Err(err).Msg("Failed to reset session on logout")
	}
	response.Redirect(c, "/login")
}

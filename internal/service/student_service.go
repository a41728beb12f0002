package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/model"
	"github.com/stemsi/exstem-enroll/internal/monitoring"
	"github.com/stemsi/exstem-enroll/internal/quiz"
	"github.com/stemsi/exstem-enroll/internal/repository"
)

// Roll numbers handed out to the cohort.
const (
	RollNoMin = 100
	RollNoMax = 110
)

// Registration errors, checked in this order.
var (
	ErrRollNoNotNumeric = errors.New("roll number must be numeric")
	ErrRollNoOutOfRange = errors.New("roll number out of range")
)

// Registration is everything needed to create a student.
type Registration struct {
	Name     string
	Email    string
	Password string
	Course   string
	School   string
	Semester string
	RollNo   string
	Photo    *Upload
}

// RegistrationFromRequest adapts the bound registration form.
func RegistrationFromRequest(req *model.RegisterRequest) *Registration {
	return &Registration{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
		Course:   strings.TrimSpace(req.Course),
		School:   strings.TrimSpace(req.School),
		Semester: strings.TrimSpace(req.Semester),
		RollNo:   strings.TrimSpace(req.RollNo),
		Photo:    UploadFromFileHeader(req.Photo),
	}
}

// StudentService handles registration, login and profile lookups.
type StudentService struct {
	store repository.StudentStore
	auth  *AuthService
	media *MediaService
	log   zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(store repository.StudentStore, auth *AuthService, media *MediaService, log zerolog.Logger) *StudentService {
	return &StudentService{
		store: store,
		auth:  auth,
		media: media,
		log:   log.With().Str("component", "student_service").Logger(),
	}
}

// ParseRollNo accepts only plain digits within [RollNoMin, RollNoMax].
func ParseRollNo(raw string) (int, error) {
	if raw == "" {
		return 0, ErrRollNoNotNumeric
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, ErrRollNoNotNumeric
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrRollNoNotNumeric
	}
	if n < RollNoMin || n > RollNoMax {
		return 0, ErrRollNoOutOfRange
	}
	return n, nil
}

// Register validates reg, stores the photo and creates the student record.
// Nothing is written until every check has passed.
func (s *StudentService) Register(ctx context.Context, reg *Registration) (*model.Student, error) {
	rollNo, err := ParseRollNo(reg.RollNo)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetByRollNo(ctx, rollNo); err == nil {
		return nil, repository.ErrDuplicateRollNo
	} else if !errors.Is(err, repository.ErrStudentNotFound) {
		return nil, fmt.Errorf("check roll number: %w", err)
	}

	email := repository.NormalizeEmail(reg.Email)
	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, repository.ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrStudentNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	if err := s.media.CheckPhoto(reg.Photo); err != nil {
		return nil, err
	}

	hash, err := s.auth.HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	answers, err := quiz.EncodeAnswers(nil)
	if err != nil {
		return nil, err
	}

	photo, err := s.media.SavePhoto(ctx, reg.Photo)
	if err != nil {
		return nil, fmt.Errorf("save photo: %w", err)
	}

	student := &model.Student{
		Name:             reg.Name,
		Email:            email,
		PasswordHash:     hash,
		Course:           reg.Course,
		School:           reg.School,
		Semester:         reg.Semester,
		RollNo:           rollNo,
		Photo:            photo,
		AssessmentStatus: model.AssessmentNotStarted,
		Score:            0,
		Answers:          answers,
	}

	if err := s.store.Create(ctx, student); err != nil {
		if delErr := s.media.DeletePhoto(ctx, photo); delErr != nil {
			s.log.Warn().Err(delErr).Str("photo", photo).Msg("Failed to remove orphaned photo")
		}
		return nil, err
	}

	monitoring.RegistrationsTotal.Inc()
	s.log.Info().Str("email", student.Email).Int("roll_no", rollNo).Msg("Student registered")
	return student, nil
}

// Authenticate checks an email/password pair.
func (s *StudentService) Authenticate(ctx context.Context, email, password string) (*model.Student, error) {
	student, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			monitoring.LoginsTotal.WithLabelValues("rejected").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.auth.CheckPassword(student.PasswordHash, password); err != nil {
		monitoring.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	monitoring.LoginsTotal.WithLabelValues("accepted").Inc()
	return student, nil
}

// GetByEmail retrieves a student by email.
func (s *StudentService) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return s.store.GetByEmail(ctx, email)
}

// PhotoURL resolves the browser URL for a student's stored photo.
func (s *StudentService) PhotoURL(student *model.Student) string {
	return s.media.PhotoURL(student.Photo)
}

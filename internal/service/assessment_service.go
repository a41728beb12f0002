package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/model"
	"github.com/stemsi/exstem-enroll/internal/monitoring"
	"github.com/stemsi/exstem-enroll/internal/quiz"
	"github.com/stemsi/exstem-enroll/internal/repository"
	"github.com/stemsi/exstem-enroll/internal/session"
)

// Assessment workflow errors.
var (
	// ErrAssessmentCompleted means the quiz was already submitted and may not
	// be shown or submitted again.
	ErrAssessmentCompleted = errors.New("assessment already completed")
	// ErrResultUnavailable means there is no submitted attempt to report on.
	ErrResultUnavailable = errors.New("no completed assessment")
)

// QuizPage is what the quiz view renders: the questions and any answers to
// pre-select.
type QuizPage struct {
	Questions []model.Question
	Answers   model.AnswerSet
}

// AttemptTracker is where quiz progress lives. The record tracker persists it
// on the student row; the session tracker keeps it in the browser session.
type AttemptTracker interface {
	// Begin marks the attempt as started and returns answers to pre-fill.
	Begin(ctx context.Context, sess *session.Session, q quiz.Quiz) (model.AnswerSet, error)
	// Complete stores the final answers and score.
	Complete(ctx context.Context, sess *session.Session, q quiz.Quiz, answers model.AnswerSet, score int) error
	// Outcome returns the submitted answers and score.
	Outcome(ctx context.Context, sess *session.Session) (model.AnswerSet, int, error)
	// Status reports progress for the dashboard.
	Status(ctx context.Context, sess *session.Session) (model.AssessmentStatus, error)
	Mode() config.AssessmentMode
}

// AssessmentService orchestrates the quiz: start/resume, submit and result.
type AssessmentService struct {
	quiz    quiz.Quiz
	tracker AttemptTracker
	log     zerolog.Logger
}

// NewAssessmentService creates a new AssessmentService.
func NewAssessmentService(q quiz.Quiz, tracker AttemptTracker, log zerolog.Logger) *AssessmentService {
	return &AssessmentService{
		quiz:    q,
		tracker: tracker,
		log:     log.With().Str("component", "assessment").Str("mode", string(tracker.Mode())).Logger(),
	}
}

// NewAttemptTracker builds the tracker for the configured mode.
func NewAttemptTracker(mode config.AssessmentMode, store repository.StudentStore) AttemptTracker {
	if mode == config.AssessmentModeSession {
		return &sessionTracker{now: time.Now}
	}
	return &recordTracker{store: store}
}

// Mode reports where progress is stored.
func (s *AssessmentService) Mode() config.AssessmentMode { return s.tracker.Mode() }

// Start shows (or resumes) the quiz for the logged-in student.
func (s *AssessmentService) Start(ctx context.Context, sess *session.Session) (*QuizPage, error) {
	if !sess.LoggedIn() {
		return nil, ErrUnauthorized
	}

	answers, err := s.tracker.Begin(ctx, sess, s.quiz)
	if err != nil {
		return nil, err
	}

	return &QuizPage{Questions: s.quiz.Questions(), Answers: answers}, nil
}

// Submit scores the submitted form values and completes the attempt. get
// returns the submitted value for a question ID, or "" if absent.
func (s *AssessmentService) Submit(ctx context.Context, sess *session.Session, get func(id string) string) (*model.ResultSummary, error) {
	if !sess.LoggedIn() {
		return nil, ErrUnauthorized
	}

	answers := s.quiz.Collect(get)
	score := s.quiz.Score(answers)

	if err := s.tracker.Complete(ctx, sess, s.quiz, answers, score); err != nil {
		return nil, err
	}

	monitoring.AssessmentsSubmitted.WithLabelValues(string(s.tracker.Mode())).Inc()
	monitoring.AssessmentScores.Observe(float64(score))
	s.log.Info().
		Str("email", sess.Email).
		Int("score", score).
		Int("answered", len(answers)).
		Msg("Assessment submitted")

	summary := s.quiz.Summarize(answers, score)
	return &summary, nil
}

// Result reports the score sheet of a completed attempt. It never mutates
// state, so repeated views are identical.
func (s *AssessmentService) Result(ctx context.Context, sess *session.Session) (*model.ResultSummary, error) {
	if !sess.LoggedIn() {
		return nil, ErrUnauthorized
	}

	answers, score, err := s.tracker.Outcome(ctx, sess)
	if err != nil {
		return nil, err
	}

	summary := s.quiz.Summarize(answers, score)
	return &summary, nil
}

// Status reports the logged-in student's progress.
func (s *AssessmentService) Status(ctx context.Context, sess *session.Session) (model.AssessmentStatus, error) {
	if !sess.LoggedIn() {
		return "", ErrUnauthorized
	}
	return s.tracker.Status(ctx, sess)
}

// ────────────────────────────────────────────────────────────────────────────
// Record mode
// ────────────────────────────────────────────────────────────────────────────

// recordTracker keeps status, score and answers on the student record.
// NOT_STARTED -> IN_PROGRESS on first view, IN_PROGRESS -> COMPLETED on submit;
// COMPLETED is terminal.
type recordTracker struct {
	store repository.StudentStore
}

func (t *recordTracker) Mode() config.AssessmentMode { return config.AssessmentModeRecord }

func (t *recordTracker) Begin(ctx context.Context, sess *session.Session, _ quiz.Quiz) (model.AnswerSet, error) {
	student, err := t.store.GetByEmail(ctx, sess.Email)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student.AssessmentStatus == model.AssessmentCompleted {
		return nil, ErrAssessmentCompleted
	}

	if student.AssessmentStatus != model.AssessmentInProgress {
		student.AssessmentStatus = model.AssessmentInProgress
		if err := t.store.Update(ctx, student); err != nil {
			return nil, fmt.Errorf("mark in progress: %w", err)
		}
	}

	answers, err := quiz.DecodeAnswers(student.Answers)
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func (t *recordTracker) Complete(ctx context.Context, sess *session.Session, _ quiz.Quiz, answers model.AnswerSet, score int) error {
	student, err := t.store.GetByEmail(ctx, sess.Email)
	if err != nil {
		return fmt.Errorf("load student: %w", err)
	}
	if student.AssessmentStatus == model.AssessmentCompleted {
		return ErrAssessmentCompleted
	}

	encoded, err := quiz.EncodeAnswers(answers)
	if err != nil {
		return err
	}

	student.AssessmentStatus = model.AssessmentCompleted
	student.Score = score
	student.Answers = encoded
	if err := t.store.Update(ctx, student); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func (t *recordTracker) Outcome(ctx context.Context, sess *session.Session) (model.AnswerSet, int, error) {
	student, err := t.store.GetByEmail(ctx, sess.Email)
	if err != nil {
		return nil, 0, fmt.Errorf("load student: %w", err)
	}
	if student.AssessmentStatus != model.AssessmentCompleted {
		return nil, 0, ErrResultUnavailable
	}

	answers, err := quiz.DecodeAnswers(student.Answers)
	if err != nil {
		return nil, 0, err
	}
	return answers, student.Score, nil
}

func (t *recordTracker) Status(ctx context.Context, sess *session.Session) (model.AssessmentStatus, error) {
	student, err := t.store.GetByEmail(ctx, sess.Email)
	if err != nil {
		return "", fmt.Errorf("load student: %w", err)
	}
	return student.AssessmentStatus, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Session mode
// ────────────────────────────────────────────────────────────────────────────

// sessionTracker keeps the attempt in the browser session only. There is no
// completed guard: revisiting the quiz starts over and a new submission
// replaces the previous one.
type sessionTracker struct {
	now func() time.Time
}

func (t *sessionTracker) Mode() config.AssessmentMode { return config.AssessmentModeSession }

func (t *sessionTracker) Begin(_ context.Context, sess *session.Session, q quiz.Quiz) (model.AnswerSet, error) {
	attempt := sess.Attempt
	if attempt == nil {
		attempt = &session.Attempt{}
	} else {
		copied := *attempt
		attempt = &copied
	}
	attempt.QuizID = q.ID()
	sess.SetAttempt(attempt)
	return model.AnswerSet{}, nil
}

func (t *sessionTracker) Complete(_ context.Context, sess *session.Session, q quiz.Quiz, answers model.AnswerSet, score int) error {
	submittedAt := t.now().UTC()
	sess.SetAttempt(&session.Attempt{
		QuizID:      q.ID(),
		Answers:     answers,
		Score:       score,
		SubmittedAt: &submittedAt,
	})
	return nil
}

func (t *sessionTracker) Outcome(_ context.Context, sess *session.Session) (model.AnswerSet, int, error) {
	attempt := sess.Attempt
	if !attempt.Submitted() {
		return nil, 0, ErrResultUnavailable
	}
	if _, ok := quiz.Lookup(attempt.QuizID); !ok {
		return nil, 0, ErrResultUnavailable
	}
	return attempt.Answers, attempt.Score, nil
}

func (t *sessionTracker) Status(_ context.Context, sess *session.Session) (model.AssessmentStatus, error) {
	switch {
	case sess.Attempt.Submitted():
		return model.AssessmentCompleted, nil
	case sess.Attempt != nil:
		return model.AssessmentInProgress, nil
	default:
		return model.AssessmentNotStarted, nil
	}
}

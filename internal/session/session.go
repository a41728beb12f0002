// Package session keeps per-browser state on the server side. The browser
// only holds a signed token naming the session ID.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/exstem-enroll/internal/model"
)

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Attempt is a quiz attempt held in the session when assessment state is not
// persisted on the student record.
type Attempt struct {
	QuizID      string          `json:"quiz_id"`
	Answers     model.AnswerSet `json:"answers"`
	Score       int             `json:"score"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
}

// Submitted reports whether answers were recorded for this attempt.
func (a *Attempt) Submitted() bool {
	return a != nil && a.SubmittedAt != nil
}

// Session is the data behind one browser cookie.
type Session struct {
	ID      string   `json:"id"`
	Email   string   `json:"email,omitempty"`
	Flashes []string `json:"flashes,omitempty"`
	Attempt *Attempt `json:"attempt,omitempty"`

	dirty bool
}

// New returns an empty session with a fresh random ID.
func New() *Session {
	return &Session{ID: uuid.New().String(), dirty: true}
}

// LoggedIn reports whether a student is attached to the session.
func (s *Session) LoggedIn() bool {
	return s != nil && s.Email != ""
}

// Login attaches email to the session.
func (s *Session) Login(email string) {
	s.Email = email
	s.dirty = true
}

// Rotate moves the session to a fresh ID and returns the old one. Called on
// login so a pre-login cookie cannot ride into the authenticated session.
func (s *Session) Rotate() string {
	old := s.ID
	s.ID = uuid.New().String()
	s.dirty = true
	return old
}

// Clear drops the student, the attempt and queued flashes, keeping the ID.
func (s *Session) Clear() {
	s.Email = ""
	s.Attempt = nil
	s.Flashes = nil
	s.dirty = true
}

// AddFlash queues a one-time message for the next rendered page.
func (s *Session) AddFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
	s.dirty = true
}

// PopFlashes returns and clears queued messages.
func (s *Session) PopFlashes() []string {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.dirty = true
	return out
}

// SetAttempt replaces the in-session quiz attempt.
func (s *Session) SetAttempt(a *Attempt) {
	s.Attempt = a
	s.dirty = true
}

// Dirty reports whether the session changed since it was loaded.
func (s *Session) Dirty() bool { return s.dirty }

// MarkClean is called by stores after a successful save or load.
func (s *Session) MarkClean() { s.dirty = false }

// Store persists sessions by ID.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

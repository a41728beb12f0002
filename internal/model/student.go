package model

import "mime/multipart"

// AssessmentStatus enumerates a student's progress through the quiz.
type AssessmentStatus string

const (
	AssessmentNotStarted AssessmentStatus = "NOT_STARTED"
	AssessmentInProgress AssessmentStatus = "IN_PROGRESS"
	AssessmentCompleted  AssessmentStatus = "COMPLETED"
)

// Valid reports whether s is one of the known statuses.
func (s AssessmentStatus) Valid() bool {
	switch s {
	case AssessmentNotStarted, AssessmentInProgress, AssessmentCompleted:
		return true
	}
	return false
}

// Student is one row of the record store.
type Student struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Course       string `json:"course"`
	School       string `json:"school"`
	Semester     string `json:"semester"`
	RollNo       int    `json:"roll_no"`
	Photo        string `json:"photo"`

	// Assessment fields are only written in record mode.
	AssessmentStatus AssessmentStatus `json:"assessment_status"`
	Score            int              `json:"score"`
	// Answers holds the encoded answer set (see quiz.EncodeAnswers).
	Answers string `json:"-"`
}

// RegisterRequest is the registration form payload.
type RegisterRequest struct {
	Name     string                `form:"name" binding:"required,max=100"`
	Email    string                `form:"email" binding:"required,max=254"`
	Password string                `form:"password" binding:"required,max=72"`
	Course   string                `form:"course" binding:"required,max=100"`
	School   string                `form:"school" binding:"required,max=100"`
	Semester string                `form:"semester" binding:"required,max=20"`
	RollNo   string                `form:"roll_no"`
	Photo    *multipart.FileHeader `form:"photo"`
}

// LoginRequest is the login form payload.
type LoginRequest struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// SnapshotRequest carries a base64 webcam frame, optionally as a data URL.
type SnapshotRequest struct {
	Image string `form:"image" json:"image" binding:"required"`
}

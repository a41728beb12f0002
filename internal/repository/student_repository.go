package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/stemsi/exstem-enroll/internal/model"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrDuplicateEmail  = errors.New("student with this email already exists")
	ErrDuplicateRollNo = errors.New("student with this roll number already exists")
	ErrValueTooLong    = errors.New("value exceeds the store's cell limit")
)

// StudentStore is the record store for registered students. Emails are
// compared lower-cased and are unique, as are roll numbers.
type StudentStore interface {
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	GetByRollNo(ctx context.Context, rollNo int) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
	Create(ctx context.Context, s *model.Student) error
	// Update replaces the record identified by s.Email.
	Update(ctx context.Context, s *model.Student) error
}

// NormalizeEmail is the canonical key form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkUnique reports which uniqueness rule s would break against existing.
func checkUnique(existing []model.Student, s *model.Student) error {
	for i := range existing {
		if existing[i].Email == s.Email {
			return ErrDuplicateEmail
		}
		if existing[i].RollNo == s.RollNo {
			return ErrDuplicateRollNo
		}
	}
	return nil
}

package repository

import (
	"context"
	"sync"

	"github.com/stemsi/exstem-enroll/internal/model"
)

// MemoryStudentRepository keeps students in process memory.
type MemoryStudentRepository struct {
	mu       sync.RWMutex
	students []model.Student
}

// NewMemoryStudentRepository creates an empty MemoryStudentRepository.
func NewMemoryStudentRepository() *MemoryStudentRepository {
	return &MemoryStudentRepository{}
}

func (r *MemoryStudentRepository) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	email = NormalizeEmail(email)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.students {
		if r.students[i].Email == email {
			s := r.students[i]
			return &s, nil
		}
	}
	return nil, ErrStudentNotFound
}

func (r *MemoryStudentRepository) GetByRollNo(_ context.Context, rollNo int) (*model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.students {
		if r.students[i].RollNo == rollNo {
			s := r.students[i]
			return &s, nil
		}
	}
	return nil, ErrStudentNotFound
}

func (r *MemoryStudentRepository) List(_ context.Context) ([]model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]model.Student(nil), r.students...), nil
}

func (r *MemoryStudentRepository) Create(_ context.Context, s *model.Student) error {
	s.Email = NormalizeEmail(s.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := checkUnique(r.students, s); err != nil {
		return err
	}
	r.students = append(r.students, *s)
	return nil
}

func (r *MemoryStudentRepository) Update(_ context.Context, s *model.Student) error {
	s.Email = NormalizeEmail(s.Email)
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.students {
		if r.students[i].Email == s.Email {
			r.students[i] = *s
			return nil
		}
	}
	return ErrStudentNotFound
}

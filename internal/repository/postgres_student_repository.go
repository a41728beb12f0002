package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/exstem-enroll/internal/model"
)

const studentColumns = `name, email, password_hash, course, school, semester, roll_no, photo, assessment_status, score, answers`

// PostgresStudentRepository handles student data access in PostgreSQL.
type PostgresStudentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStudentRepository creates a new PostgresStudentRepository.
func NewPostgresStudentRepository(pool *pgxpool.Pool) *PostgresStudentRepository {
	return &PostgresStudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*model.Student, error) {
	s := &model.Student{}
	err := row.Scan(&s.Name, &s.Email, &s.PasswordHash, &s.Course, &s.School, &s.Semester,
		&s.RollNo, &s.Photo, &s.AssessmentStatus, &s.Score, &s.Answers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return s, nil
}

// GetByEmail retrieves a student by their unique email.
func (r *PostgresStudentRepository) GetByEmail(ctx context.Context, email string) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE email = $1`, NormalizeEmail(email)))
}

// GetByRollNo retrieves a student by their unique roll number.
func (r *PostgresStudentRepository) GetByRollNo(ctx context.Context, rollNo int) (*model.Student, error) {
	return scanStudent(r.pool.QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students WHERE roll_no = $1`, rollNo))
}

// List returns every student in registration order.
func (r *PostgresStudentRepository) List(ctx context.Context) ([]model.Student, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+studentColumns+` FROM students ORDER BY created_at, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// Create inserts a new student.
func (r *PostgresStudentRepository) Create(ctx context.Context, s *model.Student) error {
	s.Email = NormalizeEmail(s.Email)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO students (`+studentColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		s.Name, s.Email, s.PasswordHash, s.Course, s.School, s.Semester,
		s.RollNo, s.Photo, s.AssessmentStatus, s.Score, s.Answers,
	)
	return mapUniqueViolation(err)
}

// Update overwrites a student's mutable fields.
func (r *PostgresStudentRepository) Update(ctx context.Context, s *model.Student) error {
	s.Email = NormalizeEmail(s.Email)
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET name = $1, password_hash = $2, course = $3, school = $4, semester = $5,
		 roll_no = $6, photo = $7, assessment_status = $8, score = $9, answers = $10, updated_at = CURRENT_TIMESTAMP
		 WHERE email = $11`,
		s.Name, s.PasswordHash, s.Course, s.School, s.Semester,
		s.RollNo, s.Photo, s.AssessmentStatus, s.Score, s.Answers, s.Email,
	)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == "students_roll_no_key" {
			return ErrDuplicateRollNo
		}
		return ErrDuplicateEmail
	}
	return err
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/model"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// xlsxColumns is the fixed header row of the students workbook.
var xlsxColumns = []string{
	"name", "email", "password",
	"course", "school", "semester",
	"roll_no", "photo",
	"assessment_status", "score", "answers",
}

// XLSXStudentRepository stores students as rows of a spreadsheet that is read
// and rewritten whole on every call. The mutex serializes read-modify-write
// cycles inside one process only.
type XLSXStudentRepository struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

// NewXLSXStudentRepository opens the workbook at path, creating it with the
// header row if it does not exist yet.
func NewXLSXStudentRepository(path string, log zerolog.Logger) (*XLSXStudentRepository, error) {
	r := &XLSXStudentRepository{
		path: path,
		log:  log.With().Str("component", "xlsx_store").Str("path", path).Logger(),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.write(nil); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
		r.log.Info().Msg("Created empty students workbook")
	} else if err != nil {
		return nil, fmt.Errorf("stat workbook: %w", err)
	}

	return r, nil
}

func (r *XLSXStudentRepository) GetByEmail(_ context.Context, email string) (*model.Student, error) {
	email = NormalizeEmail(email)
	r.mu.Lock()
	defer r.mu.Unlock()

	students, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range students {
		if students[i].Email == email {
			return &students[i], nil
		}
	}
	return nil, ErrStudentNotFound
}

func (r *XLSXStudentRepository) GetByRollNo(_ context.Context, rollNo int) (*model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	students, err := r.read()
	if err != nil {
		return nil, err
	}
	for i := range students {
		if students[i].RollNo == rollNo {
			return &students[i], nil
		}
	}
	return nil, ErrStudentNotFound
}

func (r *XLSXStudentRepository) List(_ context.Context) ([]model.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

func (r *XLSXStudentRepository) Create(_ context.Context, s *model.Student) error {
	s.Email = NormalizeEmail(s.Email)
	r.mu.Lock()
	defer r.mu.Unlock()

	students, err := r.read()
	if err != nil {
		return err
	}
	if err := checkUnique(students, s); err != nil {
		return err
	}
	if err := checkCellLengths(s); err != nil {
		return err
	}
	return r.write(append(students, *s))
}

func (r *XLSXStudentRepository) Update(_ context.Context, s *model.Student) error {
	s.Email = NormalizeEmail(s.Email)
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := checkCellLengths(s); err != nil {
		return err
	}
	students, err := r.read()
	if err != nil {
		return err
	}
	for i := range students {
		if students[i].Email == s.Email {
			students[i] = *s
			return r.write(students)
		}
	}
	return ErrStudentNotFound
}

// checkCellLengths rejects text excelize would silently cut at
// TotalCellChars, which would corrupt the answers blob.
func checkCellLengths(s *model.Student) error {
	cells := map[string]string{
		"name": s.Name, "email": s.Email, "password": s.PasswordHash,
		"course": s.Course, "school": s.School, "semester": s.Semester,
		"photo": s.Photo, "answers": s.Answers,
	}
	for col, v := range cells {
		if n := utf16Len(v); n > excelize.TotalCellChars {
			return fmt.Errorf("%w: %s has %d UTF-16 units", ErrValueTooLong, col, n)
		}
	}
	return nil
}

// utf16Len counts the way excelize measures a cell.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// read loads every data row. Columns are located by header name so a file
// re-saved by a spreadsheet program with reordered columns still loads.
func (r *XLSXStudentRepository) read() ([]model.Student, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, col := range []string{"email", "password", "roll_no"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("workbook is missing column %q", col)
		}
	}

	cell := func(row []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	students := make([]model.Student, 0, len(rows)-1)
	for n, row := range rows[1:] {
		email := cell(row, "email")
		if email == "" {
			continue
		}

		rollNo, err := strconv.Atoi(strings.TrimSuffix(cell(row, "roll_no"), ".0"))
		if err != nil {
			r.log.Warn().Int("row", n+2).Str("roll_no", cell(row, "roll_no")).Msg("Skipping row with invalid roll number")
			continue
		}
		score, _ := strconv.Atoi(strings.TrimSuffix(cell(row, "score"), ".0"))

		status := model.AssessmentStatus(cell(row, "assessment_status"))
		if !status.Valid() {
			status = model.AssessmentNotStarted
		}

		students = append(students, model.Student{
			Name:             cell(row, "name"),
			Email:            NormalizeEmail(email),
			PasswordHash:     cell(row, "password"),
			Course:           cell(row, "course"),
			School:           cell(row, "school"),
			Semester:         cell(row, "semester"),
			RollNo:           rollNo,
			Photo:            cell(row, "photo"),
			AssessmentStatus: status,
			Score:            score,
			Answers:          cell(row, "answers"),
		})
	}
	return students, nil
}

// write rewrites the whole workbook through a temp file and rename so a
// crash mid-write never leaves a truncated file behind.
func (r *XLSXStudentRepository) write(students []model.Student) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(xlsxColumns))
	for i, c := range xlsxColumns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range students {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			s.Name, s.Email, s.PasswordHash,
			s.Course, s.School, s.Semester,
			s.RollNo, s.Photo,
			string(s.AssessmentStatus), s.Score, s.Answers,
		}
		if err := f.SetSheetRow(xlsxSheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".students-*.xlsx")
	if err != nil {
		return fmt.Errorf("create temp workbook: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp workbook: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		return fmt.Errorf("replace workbook: %w", err)
	}
	return nil
}

package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-enroll/internal/config"
	"github.com/stemsi/exstem-enroll/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// memoryStorage is a StorageProvider that keeps files in a map.
type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStorage) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = data
	m.types[name] = contentType
	return nil
}

func (m *memoryStorage) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
	return nil
}

func (m *memoryStorage) URL(name string) string { return "/files/" + name }

func (m *memoryStorage) names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for k := range m.files {
		out = append(out, k)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		SessionSecret:  "test-secret",
		SessionTTL:     time.Hour,
		BcryptCost:     bcrypt.MinCost,
		MaxUploadBytes: 1024,
		AssessmentMode: config.AssessmentModeRecord,
	}
}

func bytesUpload(name string, data []byte) *Upload {
	return &Upload{
		Filename: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type fixture struct {
	store    *repository.MemoryStudentRepository
	photos   *memoryStorage
	snaps    *memoryStorage
	auth     *AuthService
	media    *MediaService
	students *StudentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testConfig()
	f := &fixture{
		store:  repository.NewMemoryStudentRepository(),
		photos: newMemoryStorage(),
		snaps:  newMemoryStorage(),
		auth:   NewAuthService(cfg),
	}
	f.media = NewMediaService(f.photos, f.snaps, cfg.MaxUploadBytes, zerolog.Nop())
	f.students = NewStudentService(f.store, f.auth, f.media, zerolog.Nop())
	return f
}

func validRegistration(email, rollNo string) *Registration {
	return &Registration{
		Name:     "Ada Lovelace",
		Email:    email,
		Password: "secret123",
		Course:   "BCA",
		School:   "Engineering",
		Semester: "3",
		RollNo:   rollNo,
		Photo:    bytesUpload("My Photo.PNG", []byte("\x89PNG\r\n\x1a\nfake")),
	}
}

package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sentinel errors for media uploads.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidSnapshot     = errors.New("invalid snapshot payload")
)

// Allowed photo extensions and the content type stored with them.
var allowedPhotoExtensions = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
}

// Upload is a file handed to the media service, from a form or from disk.
type Upload struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// UploadFromFileHeader adapts a multipart form file.
func UploadFromFileHeader(h *multipart.FileHeader) *Upload {
	if h == nil {
		return nil
	}
	return &Upload{
		Filename: h.Filename,
		Size:     h.Size,
		Open: func() (io.ReadCloser, error) {
			return h.Open()
		},
	}
}

// UploadFromPath adapts a local file.
func UploadFromPath(p string) (*Upload, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	return &Upload{
		Filename: filepath.Base(p),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(p)
		},
	}, nil
}

// MediaService stores registration photos and webcam snapshots.
type MediaService struct {
	photos    StorageProvider
	snapshots StorageProvider
	maxBytes  int64
	log       zerolog.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(photos, snapshots StorageProvider, maxBytes int64, log zerolog.Logger) *MediaService {
	return &MediaService{
		photos:    photos,
		snapshots: snapshots,
		maxBytes:  maxBytes,
		log:       log.With().Str("component", "media").Logger(),
	}
}

// PhotoExtensionAllowed reports whether filename has a png/jpg/jpeg extension.
func PhotoExtensionAllowed(filename string) bool {
	_, ok := allowedPhotoExtensions[photoExtension(filename)]
	return ok
}

func photoExtension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// CheckPhoto validates an upload without storing it.
func (s *MediaService) CheckPhoto(up *Upload) error {
	if up == nil || up.Filename == "" || !PhotoExtensionAllowed(up.Filename) {
		return ErrUnsupportedFileType
	}
	if s.maxBytes > 0 && up.Size > s.maxBytes {
		return fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, up.Size, s.maxBytes)
	}
	return nil
}

// SavePhoto stores a registration photo as "<uuid>_<sanitized name>" and
// returns the stored name.
func (s *MediaService) SavePhoto(ctx context.Context, up *Upload) (string, error) {
	if err := s.CheckPhoto(up); err != nil {
		return "", err
	}

	name := SecureFilename(up.Filename)
	if name == "" || !PhotoExtensionAllowed(name) {
		name = "photo." + photoExtension(up.Filename)
	}
	filename := uuid.New().String() + "_" + name

	src, err := up.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	contentType := allowedPhotoExtensions[photoExtension(filename)]
	if err := s.photos.Put(ctx, filename, src, up.Size, contentType); err != nil {
		return "", err
	}

	s.log.Debug().Str("file", filename).Int64("size", up.Size).Msg("Photo stored")
	return filename, nil
}

// DeletePhoto removes a stored photo; used to undo a failed registration.
func (s *MediaService) DeletePhoto(ctx context.Context, filename string) error {
	return s.photos.Delete(ctx, filename)
}

// PhotoURL returns where the browser can load a stored photo.
func (s *MediaService) PhotoURL(filename string) string {
	if filename == "" {
		return ""
	}
	return s.photos.URL(filename)
}

// SaveSnapshot decodes a base64 image (optionally a data URL) and stores it
// under a fresh name. It returns the stored name.
func (s *MediaService) SaveSnapshot(ctx context.Context, payload string) (string, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		i := strings.Index(payload, ",")
		if i < 0 {
			return "", ErrInvalidSnapshot
		}
		payload = payload[i+1:]
	}
	if payload == "" {
		return "", ErrInvalidSnapshot
	}

	if s.maxBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxBytes {
		return "", ErrFileTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrInvalidSnapshot, mt.String())
	}

	filename := "snapshot_" + uuid.New().String() + mt.Extension()
	if err := s.snapshots.Put(ctx, filename, bytes.NewReader(data), int64(len(data)), mt.String()); err != nil {
		return "", err
	}

	s.log.Debug().Str("file", filename).Int("size", len(data)).Msg("Snapshot stored")
	return filename, nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	repeatedUnderscores = regexp.MustCompile(`_+`)
)

// SecureFilename reduces an uploaded filename to a safe ASCII basename.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = repeatedUnderscores.ReplaceAllString(name, "_")
	return strings.TrimLeft(name, "._")
}

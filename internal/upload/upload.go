package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/rebertiger/student-chat/internal/models"
)

var ErrTooLarge = errors.New("upload: file exceeds size limit")

// Descriptor is what the message layer consumes: an opaque URL, the message
// type derived from the detected MIME type, and the client's original name.
type Descriptor struct {
	URL          string
	MessageType  string
	OriginalName string
}

// Store writes uploaded files to a local directory and serves them under
// the /uploads path.
type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxMB int) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload: create dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: int64(maxMB) << 20}, nil
}

// Dir returns the directory served at /uploads.
func (s *Store) Dir() string { return s.dir }

// Save persists the multipart file under a unique name and classifies it.
// The MIME type is sniffed from content, not trusted from the request.
func (s *Store) Save(fh *multipart.FileHeader) (*Descriptor, error) {
	if fh.Size > s.maxBytes {
		return nil, ErrTooLarge
	}
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := uuid.NewString() + sanitizeExt(fh.Filename)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, s.maxBytes)); err != nil {
		return nil, err
	}

	mt, err := mimetype.DetectFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	return &Descriptor{
		URL:          "/uploads/" + name,
		MessageType:  Classify(mt.String()),
		OriginalName: fh.Filename,
	}, nil
}

// Classify maps a MIME type onto a message type: image/* becomes image,
// application/pdf becomes pdf, anything else is a generic file.
func Classify(mime string) string {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.MessageTypeImage
	case mime == "application/pdf":
		return models.MessageTypePDF
	default:
		return models.MessageTypeFile
	}
}

func sanitizeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 10 || strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return ext
}

package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
	"github.com/glassops/glassops-backend/pkg/types"
	"github.com/google/uuid"
	"go.uber.org/multierr"
)

const (
	DefaultMaxFileBytes int64 = 10 << 20
	DefaultMaxFiles           = 5
)

// DefaultAllowedTypes lists the MIME types accepted for quote attachments.
var DefaultAllowedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
	"image/heic",
	"application/pdf",
}

type Limits struct {
	MaxFileBytes int64
	MaxFiles     int
	AllowedTypes []string
}

// WithDefaults fills unset limits with the standard values.
func (l Limits) WithDefaults() Limits {
	if l.MaxFileBytes <= 0 {
		l.MaxFileBytes = DefaultMaxFileBytes
	}
	if l.MaxFiles <= 0 {
		l.MaxFiles = DefaultMaxFiles
	}
	if len(l.AllowedTypes) == 0 {
		l.AllowedTypes = DefaultAllowedTypes
	}
	return l
}

// Store persists quote attachments on local disk.
type Store struct {
	dir    string
	limits Limits
}

func NewStore(dir string, limits Limits) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("uploads dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir, limits: limits.WithDefaults()}, nil
}

func (s *Store) Limits() Limits {
	return s.limits
}

// Save validates and writes every part. On any failure the files already
// written by this call are removed before the error is returned.
func (s *Store) Save(ctx context.Context, headers []*multipart.FileHeader) (types.UploadedFiles, error) {
	if len(headers) > s.limits.MaxFiles {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d files may be uploaded", s.limits.MaxFiles).
			WithDetails(map[string]any{"files": fmt.Sprintf("received %d files", len(headers))})
	}

	saved := make(types.UploadedFiles, 0, len(headers))
	for _, fh := range headers {
		if err := ctx.Err(); err != nil {
			return nil, multierr.Append(err, s.Cleanup(saved))
		}
		file, err := s.saveOne(fh)
		if err != nil {
			return nil, multierr.Append(err, s.Cleanup(saved))
		}
		saved = append(saved, file)
	}
	return saved, nil
}

func (s *Store) saveOne(fh *multipart.FileHeader) (types.UploadedFile, error) {
	name := filepath.Base(fh.Filename)
	if fh.Size > s.limits.MaxFileBytes {
		return types.UploadedFile{}, fileError(name, fmt.Sprintf("exceeds the %d MB limit", s.limits.MaxFileBytes>>20))
	}

	src, err := fh.Open()
	if err != nil {
		return types.UploadedFile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable upload")
	}
	defer src.Close()

	mime, err := mimetype.DetectReader(src)
	if err != nil {
		return types.UploadedFile{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "detect file type")
	}
	if !s.allowed(mime) {
		return types.UploadedFile{}, fileError(name, fmt.Sprintf("type %s is not allowed", mime.String()))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return types.UploadedFile{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rewind upload")
	}

	stored := uuid.NewString() + mime.Extension()
	path := filepath.Join(s.dir, stored)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return types.UploadedFile{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload file")
	}

	written, err := io.Copy(dst, io.LimitReader(src, s.limits.MaxFileBytes+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return types.UploadedFile{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload file")
	}
	if written > s.limits.MaxFileBytes {
		_ = os.Remove(path)
		return types.UploadedFile{}, fileError(name, fmt.Sprintf("exceeds the %d MB limit", s.limits.MaxFileBytes>>20))
	}

	return types.UploadedFile{
		OriginalName: name,
		StoredName:   stored,
		MimeType:     mime.String(),
		Size:         written,
		Path:         path,
	}, nil
}

func (s *Store) allowed(mime *mimetype.MIME) bool {
	for _, candidate := range s.limits.AllowedTypes {
		if mime.Is(candidate) {
			return true
		}
	}
	return false
}

// Cleanup removes the given files from the uploads dir. Locations are rebuilt
// from StoredName and never leave the dir; the persisted Path is not trusted.
// Missing files are not an error.
func (s *Store) Cleanup(files types.UploadedFiles) error {
	var errs error
	for _, f := range files {
		path, ok := s.resolve(f.StoredName)
		if !ok {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", filepath.Base(path), err))
		}
	}
	return errs
}

func (s *Store) resolve(storedName string) (string, bool) {
	name := filepath.Base(strings.TrimSpace(storedName))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "", false
	}
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", false
	}
	path := filepath.Join(root, name)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel != name {
		return "", false
	}
	return path, true
}

func fileError(name, reason string) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "file %q %s", name, reason).
		WithDetails(map[string]any{"files": fmt.Sprintf("%s %s", name, reason)})
}

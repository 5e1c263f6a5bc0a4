package media

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/nazorat-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/google/uuid"
)

// Store keeps request attachments as flat files under one directory.
type Store struct {
	dir      string
	allowed  map[string]struct{}
	exts     []string
	maxBytes int64
}

func NewStore(cfg config.MediaConfig) (*Store, error) {
	dir := strings.TrimSpace(cfg.UploadDir)
	if dir == "" {
		return nil, fmt.Errorf("upload dir required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	exts := normalizeExtensions(cfg.AllowedExtensions)
	if len(exts) == 0 {
		return nil, fmt.Errorf("at least one allowed extension required")
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		allowed[e] = struct{}{}
	}
	maxBytes := int64(cfg.MaxUploadMB) * 1024 * 1024
	if maxBytes <= 0 {
		maxBytes = 50 * 1024 * 1024
	}
	return &Store{dir: dir, allowed: allowed, exts: exts, maxBytes: maxBytes}, nil
}

func (s *Store) Dir() string { return s.dir }

// Allowed reports whether an upload with this file name would be accepted.
func (s *Store) Allowed(filename string) bool {
	_, ok := s.allowed[Ext(filename)]
	return ok
}

// Save writes r under a fresh random name keeping the original extension and
// returns the stored name.
func (s *Store) Save(originalName string, r io.Reader) (string, error) {
	ext := Ext(originalName)
	if !s.Allowed(originalName) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "file type not allowed; expected "+describeAllowed(s.exts)).
			WithDetails(map[string]any{"extension": ext})
	}

	name := strings.ReplaceAll(uuid.NewString(), "-", "") + "." + ext
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create upload file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	written, err := io.Copy(tmp, io.LimitReader(r, s.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write upload")
	}
	if closeErr != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, closeErr, "close upload")
	}
	if written > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("file exceeds %d MB", s.maxBytes/(1024*1024)))
	}

	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store upload")
	}
	return name, nil
}

// Path resolves a stored name to its file path. Names that could escape the
// upload directory are rejected.
func (s *Store) Path(name string) (string, error) {
	clean := strings.TrimSpace(name)
	if clean == "" || clean == "." || clean == ".." || strings.ContainsAny(clean, `/\`) || filepath.Base(clean) != clean {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid media name")
	}
	return filepath.Join(s.dir, clean), nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *Store) Remove(name string) error {
	p, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

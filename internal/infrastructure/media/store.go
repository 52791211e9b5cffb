package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/spf13/afero"
)

// DefaultAllowedExtensions are the audio formats accepted for upload.
var DefaultAllowedExtensions = []string{"wav", "mp3"}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Store writes uploads below dir on fs. References it returns are "<prefix>/<file>".
type Store struct {
	fs      afero.Fs
	dir     string
	prefix  string
	allowed map[string]struct{}
}

func NewStore(fs afero.Fs, dir, prefix string, allowed []string) *Store {
	if len(allowed) == 0 {
		allowed = DefaultAllowedExtensions
	}
	set := make(map[string]struct{}, len(allowed))
	for _, ext := range allowed {
		set[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &Store{fs: fs, dir: dir, prefix: strings.Trim(prefix, "/"), allowed: set}
}

// Allowed reports whether name carries a permitted extension.
func (s *Store) Allowed(name string) bool {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	_, ok := s.allowed[strings.ToLower(name[idx+1:])]
	return ok
}

func (s *Store) Save(ctx context.Context, filename string, content io.Reader) (string, error) {
	const op = "media.Save"

	if filename == "" {
		return "", fmt.Errorf("%s: %w", op, catalog.ErrMissingFile)
	}
	if !s.Allowed(filename) {
		return "", fmt.Errorf("%s: %q: %w", op, filename, catalog.ErrUnsupportedFile)
	}
	name := SanitizeFilename(filename)
	if name == "" || !s.Allowed(name) {
		return "", fmt.Errorf("%s: %q: %w", op, filename, catalog.ErrUnsupportedFile)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%s: mkdir: %w", op, err)
	}
	f, err := s.fs.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("%s: open: %w", op, err)
	}
	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("%s: write: %w", op, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%s: close: %w", op, err)
	}

	if s.prefix == "" {
		return name, nil
	}
	return path.Join(s.prefix, name), nil
}

// SanitizeFilename reduces name to a safe base name: path components are dropped,
// spaces become underscores and anything outside [A-Za-z0-9_.-] is removed.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "." || name == "/" {
		return ""
	}
	return name
}

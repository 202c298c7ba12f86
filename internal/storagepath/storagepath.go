package storagepath

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPathEscapes  = errors.New("path resolves outside the storage root")
	ErrEmptyName    = errors.New("filename is empty")
	ErrInvalidScope = errors.New("invalid storage scope")
)

const maxStemLen = 80

// Manager computes and validates root-relative storage locations.
// It performs no I/O; callers create directories and files themselves.
type Manager struct {
	root string
}

func New(root string) (*Manager, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	return &Manager{root: abs}, nil
}

func (m *Manager) Root() string { return m.root }

// StoredPath returns a sanitized, collision-resistant path relative to the
// storage root: <scope>/<unixnano>-<uuid8>_<sanitized>. Two uploads with the
// same original name never collide: the nanosecond clock disambiguates, and
// the uuid fragment covers identical-timestamp races on coarse clocks.
func (m *Manager) StoredPath(scope, originalName string) (string, error) {
	if strings.TrimSpace(originalName) == "" {
		return "", ErrEmptyName
	}
	if scope == "" || scope != Sanitize(scope) {
		return "", ErrInvalidScope
	}

	token := fmt.Sprintf("%d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
	name := fmt.Sprintf("%s_%s", token, Sanitize(originalName))
	return filepath.ToSlash(filepath.Join(scope, name)), nil
}

// Resolve joins a relative path with the storage root and guarantees the
// result stays inside it. Anything that would escape is rejected, never
// clamped.
func (m *Manager) Resolve(rel string) (string, error) {
	rel = filepath.FromSlash(rel)
	if rel == "" || filepath.IsAbs(rel) || !filepath.IsLocal(rel) {
		return "", ErrPathEscapes
	}

	abs := filepath.Join(m.root, rel)
	if abs != m.root && !strings.HasPrefix(abs, m.root+string(filepath.Separator)) {
		return "", ErrPathEscapes
	}
	return abs, nil
}

// Sanitize reduces a user-supplied filename to a safe subset: the base name
// only, [A-Za-z0-9._-] characters, no traversal segments, bounded length.
// The extension is preserved so the file kind stays detectable.
func Sanitize(name string) string {
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	stem = mapSafe(stem)
	ext = mapSafe(strings.TrimPrefix(ext, "."))

	stem = strings.Trim(stem, "._-")
	if len(stem) > maxStemLen {
		stem = stem[:maxStemLen]
	}
	if stem == "" {
		stem = "file"
	}
	if ext == "" {
		return stem
	}
	return stem + "." + ext
}

func mapSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

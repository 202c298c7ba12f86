package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"scholarauxil/internal/storagepath"
)

// allowedUploadExts is the generic paper allow-list. The extraction endpoint
// keeps its own, image-extended table; the two lists are deliberately
// distinct.
var allowedUploadExts = map[string]bool{
	"pdf":  true,
	"txt":  true,
	"doc":  true,
	"docx": true,
}

// Service orchestrates repository and paper lifecycle: metadata rows through
// the Store, physical files under the storage root through the path manager.
// Compound operations clean up after themselves so a failure never leaves a
// dangling row or an orphaned row without its file.
type Service struct {
	store          Store
	paths          *storagepath.Manager
	maxUploadBytes int64
}

func NewService(store Store, paths *storagepath.Manager, maxUploadBytes int64) *Service {
	return &Service{store: store, paths: paths, maxUploadBytes: maxUploadBytes}
}

// CreateRepository rejects empty names and duplicate (name, owner) pairs.
// Racing creates resolve at the unique index: one winner, one ErrDuplicateName.
func (s *Service) CreateRepository(ctx context.Context, owner, name string) (*Repository, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	repo := &Repository{Name: name, UserID: owner, Papers: []Paper{}}
	if err := s.store.CreateRepository(ctx, repo); err != nil {
		return nil, err
	}
	return repo, nil
}

func (s *Service) ListRepositories(ctx context.Context, owner string) ([]*Repository, error) {
	return s.store.ListRepositories(ctx, owner)
}

func (s *Service) GetRepository(ctx context.Context, id int64) (*Repository, error) {
	return s.store.GetRepository(ctx, id)
}

// DeleteRepository cascades: every owned paper row is removed atomically with
// the repository row, then the files are removed best-effort. Only the
// recorded owner may delete.
func (s *Service) DeleteRepository(ctx context.Context, id int64, owner string) (*Repository, error) {
	repo, err := s.store.GetRepository(ctx, id)
	if err != nil {
		return nil, err
	}
	if repo.UserID != owner {
		return nil, ErrNotOwner
	}

	papers, err := s.store.DeleteRepositoryCascade(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range papers {
		s.removeStoredFile(p.StoredPath)
	}
	return repo, nil
}

// UploadPaper stores the byte stream under the repository's scope and then
// the metadata row. If the row insert fails the just-written file is removed;
// if the write fails no row is ever created.
func (s *Service) UploadPaper(ctx context.Context, repositoryID int64, title, originalFilename string, size int64, r io.Reader) (*Paper, error) {
	repo, err := s.store.GetRepository(ctx, repositoryID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(originalFilename) == "" {
		return nil, ErrNoFile
	}
	if size == 0 {
		return nil, ErrEmptyFile
	}
	if s.maxUploadBytes > 0 && size > s.maxUploadBytes {
		return nil, ErrFileTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalFilename), "."))
	if !allowedUploadExts[ext] {
		return nil, ErrUnsupportedFileType
	}

	title = strings.TrimSpace(title)
	if title == "" {
		base := filepath.Base(originalFilename)
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	scope := strconv.FormatInt(repo.ID, 10)
	rel, err := s.paths.StoredPath(scope, originalFilename)
	if err != nil {
		return nil, err
	}
	abs, err := s.paths.Resolve(rel)
	if err != nil {
		return nil, err
	}

	if err := writeFile(abs, r); err != nil {
		return nil, err
	}

	paper := &Paper{
		Title:            title,
		OriginalFilename: originalFilename,
		StoredPath:       rel,
		RepositoryID:     repo.ID,
	}
	if err := s.store.CreatePaper(ctx, paper); err != nil {
		_ = os.Remove(abs)
		return nil, fmt.Errorf("save paper record: %w", err)
	}
	return paper, nil
}

// GetPaper returns the paper and refreshes last_opened; this is the
// read-for-viewing path, metadata-only queries go through the nested
// repository listings and leave the timestamp alone.
func (s *Service) GetPaper(ctx context.Context, id int64) (*Paper, error) {
	paper, err := s.store.GetPaper(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	paper.LastOpened = &now
	if err := s.store.SavePaper(ctx, paper); err != nil {
		return nil, err
	}
	return paper, nil
}

// UpdatePaperInput carries a partial update. A nil Notes leaves notes
// untouched; an absent LastPageSeen leaves the reading position untouched,
// JSON null clears it.
type UpdatePaperInput struct {
	Notes        *string         `json:"notes"`
	LastPageSeen json.RawMessage `json:"last_page_seen"`
}

// UpdatePaper applies note and reading-position changes. A non-integer page
// value fails with ErrInvalidPageNumber and leaves the row unmodified.
func (s *Service) UpdatePaper(ctx context.Context, id int64, in UpdatePaperInput) (*Paper, error) {
	paper, err := s.store.GetPaper(ctx, id)
	if err != nil {
		return nil, err
	}

	page, set, err := parsePageNumber(in.LastPageSeen)
	if err != nil {
		return nil, err
	}

	if in.Notes != nil {
		paper.Notes = in.Notes
	}
	if set {
		paper.LastPageSeen = page
	}

	if err := s.store.SavePaper(ctx, paper); err != nil {
		return nil, err
	}
	return paper, nil
}

// DeletePaper removes the metadata row, then the file best-effort. A missing
// file is treated as already deleted so a racing reader never sees a crash.
func (s *Service) DeletePaper(ctx context.Context, id int64) (*Paper, error) {
	paper, err := s.store.GetPaper(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeletePaper(ctx, id); err != nil {
		return nil, err
	}
	s.removeStoredFile(paper.StoredPath)
	return paper, nil
}

// StoredFilePath resolves a root-relative stored path for reading. Paths that
// escape the storage root and missing files are both ErrFileNotFound.
func (s *Service) StoredFilePath(rel string) (string, error) {
	abs, err := s.paths.Resolve(rel)
	if err != nil {
		return "", ErrFileNotFound
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return "", ErrFileNotFound
	}
	return abs, nil
}

func (s *Service) removeStoredFile(rel string) {
	abs, err := s.paths.Resolve(rel)
	if err != nil {
		return
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		log.Printf("remove stored file %s: %v", rel, err)
	}
}

func writeFile(abs string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	dst, err := os.Create(abs)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		_ = os.Remove(abs)
		return fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(abs)
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// parsePageNumber accepts a JSON number or a numeric string; null clears the
// value. Anything else is ErrInvalidPageNumber.
func parsePageNumber(raw json.RawMessage) (value *int, set bool, err error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, false, nil
	}
	if trimmed == "null" {
		return nil, true, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 0 {
			return nil, false, ErrInvalidPageNumber
		}
		return &n, true, nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		n, convErr := strconv.Atoi(strings.TrimSpace(str))
		if convErr != nil || n < 0 {
			return nil, false, ErrInvalidPageNumber
		}
		return &n, true, nil
	}

	return nil, false, ErrInvalidPageNumber
}

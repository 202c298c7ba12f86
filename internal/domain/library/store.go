package library

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Store owns the metadata rows. File lifecycle stays in the Service; the
// store only ever touches the database.
type Store interface {
	CreateRepository(ctx context.Context, repo *Repository) error
	ListRepositories(ctx context.Context, owner string) ([]*Repository, error)
	GetRepository(ctx context.Context, id int64) (*Repository, error)
	// DeleteRepositoryCascade removes the repository row and every owned
	// paper row in one transaction and returns the removed papers so the
	// caller can clean up their files.
	DeleteRepositoryCascade(ctx context.Context, id int64) ([]Paper, error)

	CreatePaper(ctx context.Context, paper *Paper) error
	GetPaper(ctx context.Context, id int64) (*Paper, error)
	// SavePaper updates an existing row's mutable fields. A row that no
	// longer exists is ErrPaperNotFound, never a re-insert.
	SavePaper(ctx context.Context, paper *Paper) error
	DeletePaper(ctx context.Context, id int64) error
}

type store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &store{db: db}
}

func (s *store) CreateRepository(ctx context.Context, repo *Repository) error {
	err := s.db.WithContext(ctx).Create(repo).Error
	if isUniqueViolation(err) {
		return ErrDuplicateName
	}
	return err
}

// isUniqueViolation matches translated duplicate-key errors and, for the
// pure-Go sqlite driver whose errors gorm does not translate, the raw
// constraint message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *store) ListRepositories(ctx context.Context, owner string) ([]*Repository, error) {
	var repos []*Repository
	err := s.db.WithContext(ctx).
		Preload("Papers", papersNewestFirst).
		Where("user_id = ?", owner).
		Order("created_at DESC").
		Find(&repos).Error
	return repos, err
}

func (s *store) GetRepository(ctx context.Context, id int64) (*Repository, error) {
	var repo Repository
	err := s.db.WithContext(ctx).
		Preload("Papers", papersNewestFirst).
		First(&repo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRepositoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &repo, nil
}

func (s *store) DeleteRepositoryCascade(ctx context.Context, id int64) ([]Paper, error) {
	var papers []Paper
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("repository_id = ?", id).Find(&papers).Error; err != nil {
			return err
		}
		if err := tx.Where("repository_id = ?", id).Delete(&Paper{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&Repository{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRepositoryNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return papers, nil
}

func (s *store) CreatePaper(ctx context.Context, paper *Paper) error {
	return s.db.WithContext(ctx).Create(paper).Error
}

func (s *store) GetPaper(ctx context.Context, id int64) (*Paper, error) {
	var paper Paper
	err := s.db.WithContext(ctx).First(&paper, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPaperNotFound
	}
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

// SavePaper writes the mutable columns of an existing row. A plain Save would
// re-insert when the row is gone, so a touch racing a delete must not use it;
// a vanished row is reported as ErrPaperNotFound instead.
func (s *store) SavePaper(ctx context.Context, paper *Paper) error {
	res := s.db.WithContext(ctx).
		Model(&Paper{}).
		Where("id = ?", paper.ID).
		Updates(map[string]any{
			"title":          paper.Title,
			"notes":          paper.Notes,
			"last_opened":    paper.LastOpened,
			"last_page_seen": paper.LastPageSeen,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaperNotFound
	}
	return nil
}

func (s *store) DeletePaper(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&Paper{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaperNotFound
	}
	return nil
}

func papersNewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("uploaded_at DESC")
}

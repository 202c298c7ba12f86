package library

import "time"

// Repository is a named, user-owned collection of papers. The owner id comes
// from the identity gate and is treated as an opaque string.
type Repository struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	Name      string    `gorm:"column:name;size:100;not null;uniqueIndex:idx_repositories_name_owner" json:"name"`
	UserID    string    `gorm:"column:user_id;size:128;not null;uniqueIndex:idx_repositories_name_owner" json:"user_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Papers []Paper `gorm:"foreignKey:RepositoryID;constraint:OnDelete:CASCADE" json:"papers"`
}

func (Repository) TableName() string { return "repositories" }

// Paper is the metadata row for one uploaded document. StoredPath is the
// sanitized, globally unique location of its bytes relative to the storage
// root; OriginalFilename is kept as submitted, for display only.
type Paper struct {
	ID               int64      `gorm:"column:id;primaryKey" json:"id"`
	Title            string     `gorm:"column:title;size:200;not null" json:"title"`
	OriginalFilename string     `gorm:"column:original_filename;size:300;not null" json:"original_filename"`
	StoredPath       string     `gorm:"column:stored_path;size:300;not null;uniqueIndex" json:"stored_path"`
	Notes            *string    `gorm:"column:notes;type:text" json:"notes"`
	LastOpened       *time.Time `gorm:"column:last_opened" json:"last_opened"`
	LastPageSeen     *int       `gorm:"column:last_page_seen" json:"last_page_seen"`
	UploadedAt       time.Time  `gorm:"column:uploaded_at;autoCreateTime" json:"uploaded_at"`
	RepositoryID     int64      `gorm:"column:repository_id;not null;index" json:"repository_id"`
}

func (Paper) TableName() string { return "papers" }

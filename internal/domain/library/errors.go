package library

import "errors"

var (
	ErrRepositoryNotFound  = errors.New("repository not found")
	ErrPaperNotFound       = errors.New("paper not found")
	ErrFileNotFound        = errors.New("stored file not found")
	ErrDuplicateName       = errors.New("repository with this name already exists")
	ErrNotOwner            = errors.New("you do not own this repository")
	ErrEmptyName           = errors.New("repository name is required and cannot be empty")
	ErrNoFile              = errors.New("no file provided")
	ErrEmptyFile           = errors.New("file is empty")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnsupportedFileType = errors.New("file type is not allowed")
	ErrInvalidPageNumber   = errors.New("invalid page number")
)

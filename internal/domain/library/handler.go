package library

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scholarauxil/internal/middleware"
	"scholarauxil/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the owner-scoped repository and paper routes.
// The group must sit behind the identity-gate middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	repos := r.Group("/repositories")
	{
		repos.GET("", h.ListRepositories)
		repos.POST("", h.CreateRepository)
		repos.GET("/:id", h.GetRepository)
		repos.DELETE("/:id", h.DeleteRepository)
		repos.POST("/:id/papers", h.UploadPaper)
	}

	papers := r.Group("/papers")
	{
		papers.GET("/:id", h.GetPaper)
		papers.PUT("/:id", h.UpdatePaper)
		papers.DELETE("/:id", h.DeletePaper)
	}
}

// RegisterFileRoutes registers the raw-bytes route. It stays outside the
// authenticated group, mirroring the viewer integration it serves.
func (h *Handler) RegisterFileRoutes(r *gin.RouterGroup) {
	r.GET("/uploads/*path", h.ServeFile)
}

func (h *Handler) ListRepositories(c *gin.Context) {
	repos, err := h.service.ListRepositories(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "failed to list repositories")
		return
	}
	response.Success(c, http.StatusOK, repos)
}

type createRepositoryRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateRepository(c *gin.Context) {
	var req createRepositoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "request body must be JSON with a name field")
		return
	}

	repo, err := h.service.CreateRepository(c.Request.Context(), middleware.UserID(c), req.Name)
	switch {
	case err == nil:
		response.Success(c, http.StatusCreated, repo)
	case errors.Is(err, ErrEmptyName):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrDuplicateName):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "failed to create repository")
	}
}

func (h *Handler) GetRepository(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	repo, err := h.service.GetRepository(c.Request.Context(), id)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, repo)
	case errors.Is(err, ErrRepositoryNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "failed to load repository")
	}
}

func (h *Handler) DeleteRepository(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	repo, err := h.service.DeleteRepository(c.Request.Context(), id, middleware.UserID(c))
	switch {
	case err == nil:
		response.Message(c, http.StatusOK, fmt.Sprintf("Repository %q and all its papers deleted", repo.Name))
	case errors.Is(err, ErrRepositoryNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "failed to delete repository")
	}
}

func (h *Handler) UploadPaper(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "no file provided")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "could not read uploaded file")
		return
	}
	defer file.Close()

	title := c.PostForm("title")

	paper, err := h.service.UploadPaper(c.Request.Context(), id, title, fileHeader.Filename, fileHeader.Size, file)
	switch {
	case err == nil:
		response.Success(c, http.StatusCreated, paper)
	case errors.Is(err, ErrRepositoryNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNoFile), errors.Is(err, ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, ErrUnsupportedFileType):
		response.Error(c, http.StatusBadRequest, "UNSUPPORTED_TYPE", err.Error())
	case errors.Is(err, ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "VALIDATION", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "STORAGE", "failed to store paper")
	}
}

func (h *Handler) GetPaper(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	paper, err := h.service.GetPaper(c.Request.Context(), id)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, paper)
	case errors.Is(err, ErrPaperNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "failed to load paper")
	}
}

func (h *Handler) UpdatePaper(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in UpdatePaperInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "request body must be JSON")
		return
	}

	paper, err := h.service.UpdatePaper(c.Request.Context(), id, in)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, paper)
	case errors.Is(err, ErrPaperNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrInvalidPageNumber):
		response.Error(c, http.StatusBadRequest, "VALIDATION", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL", "failed to update paper")
	}
}

func (h *Handler) DeletePaper(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	paper, err := h.service.DeletePaper(c.Request.Context(), id)
	switch {
	case err == nil:
		response.Message(c, http.StatusOK, fmt.Sprintf("Paper %q deleted", paper.Title))
	case errors.Is(err, ErrPaperNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "STORAGE", "failed to delete paper")
	}
}

// ServeFile streams stored bytes by their root-relative path. Paths outside
// the storage root and missing files are both 404.
func (h *Handler) ServeFile(c *gin.Context) {
	rel := strings.TrimPrefix(c.Param("path"), "/")

	abs, err := h.service.StoredFilePath(rel)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "file not found")
		return
	}
	c.File(abs)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "invalid id")
		return 0, false
	}
	return id, true
}

package extract

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"scholarauxil/internal/pkg/response"
)

// Handler exposes one-shot text extraction: upload a file, get its plain
// text back. Nothing is persisted; the bytes only live for the request.
type Handler struct {
	dispatcher *Dispatcher
	maxBytes   int64
}

func NewHandler(dispatcher *Dispatcher, maxBytes int64) *Handler {
	return &Handler{dispatcher: dispatcher, maxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/extract", h.ExtractText)
}

func (h *Handler) ExtractText(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "no file provided")
		return
	}
	if h.maxBytes > 0 && fileHeader.Size > h.maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "VALIDATION", "file exceeds maximum allowed size")
		return
	}

	kind, err := DetectKind(fileHeader.Filename)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "UNSUPPORTED_TYPE", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION", "could not read uploaded file")
		return
	}
	defer file.Close()

	// maxBytes == 0 means no cap, matching the upload path
	var src io.Reader = file
	if h.maxBytes > 0 {
		src = io.LimitReader(file, h.maxBytes+1)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "STORAGE", "could not read uploaded file")
		return
	}
	if h.maxBytes > 0 && int64(len(data)) > h.maxBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "VALIDATION", "file exceeds maximum allowed size")
		return
	}

	text, err := h.dispatcher.Extract(c.Request.Context(), kind, data)
	if err != nil {
		var ee *Error
		switch {
		case errors.Is(err, ErrUnsupportedType):
			response.Error(c, http.StatusBadRequest, "UNSUPPORTED_TYPE", err.Error())
		case errors.As(err, &ee):
			response.Error(c, http.StatusInternalServerError, "EXTRACTION", ee.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "EXTRACTION", "extraction failed")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"extracted_text": text})
}

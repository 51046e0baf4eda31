package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pdfchatbot/internal/app"
	"pdfchatbot/internal/transport/http/response"
)

const uploadField = "pdf"

type Ingester interface {
	Ingest(ctx context.Context, input app.IngestInput) (*app.IngestResult, error)
}

// Stager keeps an upload on disk while it is ingested.
type Stager interface {
	Save(field, originalName string, r io.Reader) (string, error)
	Remove(path string) error
}

type UploadHandler struct {
	ingest      Ingester
	stager      Stager
	maxBytes    int64
	keepUploads bool
	logger      *zap.Logger
}

func NewUploadHandler(ingest Ingester, stager Stager, maxBytes int64, keepUploads bool, logger *zap.Logger) *UploadHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadHandler{
		ingest:      ingest,
		stager:      stager,
		maxBytes:    maxBytes,
		keepUploads: keepUploads,
		logger:      logger,
	}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		// leave room for the multipart envelope around the file
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	}

	file, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Text(c, http.StatusBadRequest, "File too large.")
			return
		}
		response.Text(c, http.StatusBadRequest, "No file uploaded.")
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		response.Text(c, http.StatusBadRequest, "File too large.")
		return
	}
	if !isPDF(file) {
		response.Text(c, http.StatusBadRequest, "Only PDF files are accepted.")
		return
	}
	if ok, err := hasPDFSignature(file); err != nil || !ok {
		h.logger.Info("rejected upload without pdf signature", zap.String("file", file.Filename), zap.Error(err))
		response.Text(c, http.StatusBadRequest, "Only PDF files are accepted.")
		return
	}

	path, err := h.stage(file)
	if err != nil {
		h.logger.Error("stage upload failed", zap.String("file", file.Filename), zap.Error(err))
		response.Text(c, http.StatusInternalServerError, "Failed to process file: "+err.Error())
		return
	}
	if !h.keepUploads {
		defer func() {
			if err := h.stager.Remove(path); err != nil {
				h.logger.Warn("remove staged upload failed", zap.String("path", path), zap.Error(err))
			}
		}()
	}

	result, err := h.ingest.Ingest(c.Request.Context(), app.IngestInput{
		FileName: file.Filename,
		Path:     path,
	})
	if err != nil {
		_ = c.Error(err)
		switch {
		case errors.Is(err, app.ErrNoExtractableText):
			response.Text(c, http.StatusBadRequest, "No extractable text found in the PDF.")
		case errors.Is(err, app.ErrInvalidInput):
			response.Text(c, http.StatusBadRequest, err.Error())
		default:
			response.Text(c, http.StatusInternalServerError, "Failed to process file: "+err.Error())
		}
		return
	}

	response.OK(c, response.UploadBody{
		Success:    true,
		Message:    "File processed successfully",
		DocumentID: result.DocumentID,
		Chunks:     result.Chunks,
	})
}

func (h *UploadHandler) stage(file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return h.stager.Save(uploadField, file.Filename, src)
}

func isPDF(file *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return true
	}
	contentType := strings.ToLower(file.Header.Get("Content-Type"))
	return strings.HasPrefix(contentType, "application/pdf")
}

// hasPDFSignature checks the content itself; the name and Content-Type come from the client.
func hasPDFSignature(file *multipart.FileHeader) (bool, error) {
	src, err := file.Open()
	if err != nil {
		return false, err
	}
	defer src.Close()
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return false, err
	}
	return mtype.Is("application/pdf"), nil
}

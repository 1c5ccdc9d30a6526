package analyses

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/extract"
	"resume-matcher/internal/shared/server/middleware"
	"resume-matcher/internal/shared/server/respond"
	"resume-matcher/internal/shared/telemetry"
)

const defaultMaxUploadBytes = 5 << 20 // 5MB

// ExtractFunc turns an uploaded file into plain text.
type ExtractFunc func(ctx context.Context, data []byte, mimeType, fileName string) (string, error)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc            *Service
	MaxUploadBytes int64
	Extract        ExtractFunc
}

// NewHandler constructs a Handler that extracts uploads with the extract package.
func NewHandler(svc *Service, maxUploadBytes int64) *Handler {
	return &Handler{Svc: svc, MaxUploadBytes: maxUploadBytes, Extract: extract.ExtractTextFromBytes}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.createFromUpload)
	rg.POST("/analyses/text", h.createFromText)
	rg.GET("/analyses/:id", h.getAnalysis)
}

type createResponse struct {
	Success    bool   `json:"success"`
	AnalysisID string `json:"analysisId"`
	Status     string `json:"status"`
}

func (h *Handler) createFromUpload(c *gin.Context) {
	limit := h.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	// Two files share the limit, plus room for multipart framing.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*limit+64<<10)

	resumeHeader, resumeErr := c.FormFile("resume")
	jdHeader, jdErr := c.FormFile("jobDescription")
	if tooLarge(resumeErr) || tooLarge(jdErr) {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Uploaded files are too large", nil)
		return
	}
	if resumeErr != nil || jdErr != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", MsgMissingFiles, nil)
		return
	}
	if resumeHeader.Size > limit || jdHeader.Size > limit {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "Uploaded files are too large", nil)
		return
	}

	ctx := c.Request.Context()
	resumeText, err := h.readText(ctx, resumeHeader)
	if err != nil {
		h.extractFailed(c, resumeHeader.Filename, err)
		return
	}
	jdText, err := h.readText(ctx, jdHeader)
	if err != nil {
		h.extractFailed(c, jdHeader.Filename, err)
		return
	}

	h.create(c, Submission{
		ResumeFilename:  resumeHeader.Filename,
		ResumeText:      resumeText,
		JobDescFilename: jdHeader.Filename,
		JobDescText:     jdText,
	})
}

type createTextRequest struct {
	ResumeText         string `json:"resumeText"`
	JobDescriptionText string `json:"jobDescriptionText"`
	ResumeFilename     string `json:"resumeFilename"`
	JobDescFilename    string `json:"jobDescFilename"`
}

func (h *Handler) createFromText(c *gin.Context) {
	var req createTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", MsgInvalidPayload, nil)
		return
	}
	h.create(c, Submission{
		ResumeFilename:  req.ResumeFilename,
		ResumeText:      req.ResumeText,
		JobDescFilename: req.JobDescFilename,
		JobDescText:     req.JobDescriptionText,
	})
}

func (h *Handler) create(c *gin.Context, sub Submission) {
	rec, err := h.Svc.Create(c.Request.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", InvalidInputMessage(err), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", MsgAnalyzeFailed, nil)
		}
		return
	}

	c.Set(middleware.AnalysisIDKey, rec.ID)
	c.Set(middleware.AnalysisStatusKey, string(rec.Status))
	respond.Created(c, createResponse{
		Success:    true,
		AnalysisID: rec.ID,
		Status:     string(rec.Status),
	})
}

func (h *Handler) getAnalysis(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.AnalysisIDKey, id)

	rec, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", MsgNotFound, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch analysis", nil)
		}
		return
	}

	c.Set(middleware.AnalysisStatusKey, string(rec.Status))
	respond.OK(c, rec)
}

func (h *Handler) readText(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	extractFn := h.Extract
	if extractFn == nil {
		extractFn = extract.ExtractTextFromBytes
	}
	return extractFn(ctx, data, fh.Header.Get("Content-Type"), fh.Filename)
}

func (h *Handler) extractFailed(c *gin.Context, fileName string, err error) {
	telemetry.Warn("analysis.extract_failed", map[string]any{
		"request_id": middleware.RequestIDFromContext(c),
		"file_name":  fileName,
		"err":        err,
	})
	respond.Error(c, http.StatusBadRequest, "validation_error", MsgExtractFailed, nil)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return err != nil && errors.As(err, &maxErr)
}

package api

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DaviiSA/JA-app/internal/domain"
	"github.com/DaviiSA/JA-app/internal/form"
	"github.com/DaviiSA/JA-app/internal/metrics"
	"github.com/DaviiSA/JA-app/internal/middleware"
	"github.com/DaviiSA/JA-app/internal/photo"
	"github.com/DaviiSA/JA-app/internal/report"
	"github.com/DaviiSA/JA-app/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionIDParam     = "id"
	controllerKey      = "formController"
	photoFormField     = "files"
	defaultUploadLimit = 64 << 20
)

type Dependencies struct {
	Sessions                  *session.Store
	Generator                 *report.Generator
	Logger                    *zap.Logger
	SessionRateLimitPerMinute int
	MaxUploadBytes            int64
}

type valueRequest struct {
	Value string `json:"value"`
}

type entryUpdateRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type handlers struct {
	deps    Dependencies
	limiter sessionRequestLimiter
}

func RegisterRoutes(router *gin.Engine, deps Dependencies) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = defaultUploadLimit
	}
	h := &handlers{
		deps:    deps,
		limiter: newSessionRateLimiter(deps.SessionRateLimitPerMinute),
	}

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.GET("/api/staff", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"staff":         domain.StaffRoster,
			"contractTypes": domain.ContractTypes(),
			"actionTypes":   domain.ActionTypes(),
		})
	})

	router.POST("/api/reports", h.generateReport)
	router.POST("/api/sessions", h.createSession)

	sessions := router.Group("/api/sessions/:" + sessionIDParam)
	sessions.Use(h.loadSession)
	sessions.GET("", h.view)
	sessions.DELETE("", h.deleteSession)
	sessions.PUT("/fields/:name", h.updateField)
	sessions.PUT("/contract-type", h.setContractType)
	sessions.POST("/staff/:name/toggle", h.toggleStaff)
	sessions.POST("/photos", h.ingestPhotos)
	sessions.DELETE("/photos/:index", h.removePhoto)
	sessions.POST("/labor-entries", h.addLaborEntry)
	sessions.PATCH("/labor-entries/:entryId", h.updateLaborEntry)
	sessions.DELETE("/labor-entries/:entryId", h.removeLaborEntry)
	sessions.POST("/submit", h.submit)
	sessions.POST("/reset", h.startNew)
	sessions.GET("/report", h.downloadReport)
}

func (h *handlers) createSession(c *gin.Context) {
	if !enforceSessionRateLimit(c, h.limiter) {
		return
	}

	id, controller := h.deps.Sessions.Create()
	h.deps.Logger.Info("form session created",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("session_id", id),
	)
	c.JSON(http.StatusCreated, domain.SessionResponse{
		SessionID: id,
		View:      controller.View(),
	})
}

func (h *handlers) loadSession(c *gin.Context) {
	controller, err := h.deps.Sessions.Get(c.Param(sessionIDParam))
	if err != nil {
		writeError(c, http.StatusNotFound, "session_not_found", "form session was not found or has expired")
		c.Abort()
		return
	}
	c.Set(controllerKey, controller)
	c.Next()
}

func controllerFrom(c *gin.Context) *form.Controller {
	return c.MustGet(controllerKey).(*form.Controller)
}

func (h *handlers) view(c *gin.Context) {
	c.JSON(http.StatusOK, controllerFrom(c).View())
}

func (h *handlers) deleteSession(c *gin.Context) {
	h.deps.Sessions.Delete(c.Param(sessionIDParam))
	c.Status(http.StatusNoContent)
}

func (h *handlers) updateField(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_payload", "invalid field payload")
		return
	}
	controller := controllerFrom(c)
	if err := controller.UpdateField(c.Param("name"), req.Value); err != nil {
		writeFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.View())
}

func (h *handlers) setContractType(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_payload", "invalid contract type payload")
		return
	}
	contract, err := domain.ParseContractType(strings.TrimSpace(req.Value))
	if err != nil {
		writeFormError(c, err)
		return
	}
	controller := controllerFrom(c)
	controller.SetContractType(contract)
	c.JSON(http.StatusOK, controller.View())
}

func (h *handlers) toggleStaff(c *gin.Context) {
	controller := controllerFrom(c)
	if err := controller.ToggleStaff(c.Param("name")); err != nil {
		writeFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.View())
}

func (h *handlers) ingestPhotos(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.deps.MaxUploadBytes)
	multipartForm, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, "upload_too_large", "photo upload exceeds the configured limit")
			return
		}
		writeError(c, http.StatusBadRequest, "invalid_payload", "photos must be sent as multipart form data")
		return
	}

	headers := multipartForm.File[photoFormField]
	sources := make([]photo.Source, 0, len(headers))
	for _, header := range headers {
		sources = append(sources, sourceFromHeader(header))
	}

	controller := controllerFrom(c)
	added, err := controller.IngestPhotos(c.Request.Context(), sources)
	if err != nil {
		h.deps.Logger.Warn("photo batch rejected",
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Int("files", len(sources)),
			zap.Error(err),
		)
		writeFormError(c, err)
		return
	}
	metrics.RecordPhotosIngested(added)

	c.JSON(http.StatusOK, gin.H{
		"added": added,
		"view":  controller.View(),
	})
}

func sourceFromHeader(header *multipart.FileHeader) photo.Source {
	return photo.Source{
		Name: header.Filename,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

func (h *handlers) removePhoto(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_photo_index", "photo index must be an integer")
		return
	}
	controller := controllerFrom(c)
	if err := controller.RemovePhoto(index); err != nil {
		writeFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.View())
}

func (h *handlers) addLaborEntry(c *gin.Context) {
	controller := controllerFrom(c)
	id := controller.AddLaborEntry()
	c.JSON(http.StatusCreated, gin.H{
		"entryId": id,
		"view":    controller.View(),
	})
}

func (h *handlers) updateLaborEntry(c *gin.Context) {
	var req entryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_payload", "field is required")
		return
	}
	controller := controllerFrom(c)
	if err := controller.UpdateLaborEntry(c.Param("entryId"), req.Field, req.Value); err != nil {
		writeFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.View())
}

func (h *handlers) removeLaborEntry(c *gin.Context) {
	controller := controllerFrom(c)
	if err := controller.RemoveLaborEntry(c.Param("entryId")); err != nil {
		writeFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.View())
}

func (h *handlers) submit(c *gin.Context) {
	started := time.Now()
	requestID := middleware.GetRequestID(c)
	controller := controllerFrom(c)

	result, err := controller.Submit(c.Request.Context())
	if err != nil {
		writeFormError(c, err)
		return
	}

	outcome := "invalid"
	switch {
	case !result.Valid:
	case result.Summary != nil && *result.Summary == domain.SummaryFallback:
		outcome = "fallback"
	default:
		outcome = "generated"
	}
	metrics.RecordSubmission(outcome)
	h.deps.Logger.Info("form submitted",
		zap.String("request_id", requestID),
		zap.String("outcome", outcome),
		zap.String("focus", result.Focus),
		zap.Int64("duration_ms", time.Since(started).Milliseconds()),
	)

	c.JSON(http.StatusOK, domain.SubmitResponse{
		Valid:   result.Valid,
		Focus:   result.Focus,
		Invalid: result.Invalid,
		Summary: result.Summary,
	})
}

func (h *handlers) startNew(c *gin.Context) {
	controller := controllerFrom(c)
	if err := controller.StartNew(); err != nil {
		writeFormError(c, err)
		return
	}
	c.JSON(http.StatusOK, controller.View())
}

func (h *handlers) downloadReport(c *gin.Context) {
	export, ok := controllerFrom(c).Download()
	if !ok {
		writeError(c, http.StatusNotFound, "report_not_generated", "no report has been generated for this form")
		return
	}
	writeAttachment(c, export)
}

// generateReport validates and reports on a complete form in one request.
func (h *handlers) generateReport(c *gin.Context) {
	var state domain.FormState
	if err := c.ShouldBindJSON(&state); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_payload", "invalid form payload: "+err.Error())
		return
	}
	if err := form.CheckState(state); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_payload", "invalid form payload: "+err.Error())
		return
	}

	started := time.Now()
	metadata := domain.Metadata{
		Provider:  h.deps.Generator.ProviderName(),
		RequestID: middleware.GetRequestID(c),
	}

	if invalid := form.InvalidFields(state); len(invalid) > 0 {
		metrics.RecordSubmission("invalid")
		metadata.ExecutionTimeMs = time.Since(started).Milliseconds()
		c.JSON(http.StatusOK, domain.ReportResponse{
			Valid:    false,
			Invalid:  invalid,
			Metadata: metadata,
		})
		return
	}

	summary, generated := h.deps.Generator.TryGenerate(c.Request.Context(), state)
	outcome := "generated"
	if !generated {
		outcome = "fallback"
	}
	metrics.RecordSubmission(outcome)
	metadata.ExecutionTimeMs = time.Since(started).Milliseconds()

	export := report.NewExport(state.WorkOrder, summary)
	if wantsDownload(c) {
		writeAttachment(c, export)
		return
	}

	c.JSON(http.StatusOK, domain.ReportResponse{
		Valid:    true,
		Summary:  summary,
		Filename: export.Filename,
		Metadata: metadata,
	})
}

func wantsDownload(c *gin.Context) bool {
	if c.Query("download") == "true" {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "text/plain") && !strings.Contains(accept, "application/json")
}

func writeAttachment(c *gin.Context, export report.Export) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename,
	}))
	c.Data(http.StatusOK, export.ContentType, export.Body)
}

func writeFormError(c *gin.Context, err error) {
	status, code, message := formOperationError(err)
	writeError(c, status, code, message)
}

func formOperationError(err error) (status int, code string, message string) {
	switch {
	case errors.Is(err, form.ErrSubmitInProgress):
		return http.StatusConflict, "submit_in_progress", "a report is already being generated for this form"
	case errors.Is(err, form.ErrLastEntry):
		return http.StatusConflict, "last_labor_entry", "the form must keep at least one labor entry"
	case errors.Is(err, form.ErrUnknownField):
		return http.StatusBadRequest, "unknown_field", err.Error()
	case errors.Is(err, form.ErrUnknownStaff):
		return http.StatusBadRequest, "unknown_staff", err.Error()
	case errors.Is(err, form.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid_quantity", err.Error()
	case errors.Is(err, form.ErrPhotoIndex):
		return http.StatusNotFound, "photo_not_found", err.Error()
	case errors.Is(err, domain.ErrInvalidChoice):
		return http.StatusBadRequest, "invalid_choice", err.Error()
	case errors.Is(err, photo.ErrNotImage):
		return http.StatusUnsupportedMediaType, "not_an_image", err.Error()
	default:
		return http.StatusInternalServerError, "internal_error", err.Error()
	}
}

func writeError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, domain.APIErrorResponse{
		Error: domain.APIError{
			Code:      code,
			Message:   message,
			RequestID: middleware.GetRequestID(c),
		},
	})
}

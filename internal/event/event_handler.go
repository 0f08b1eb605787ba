package event

import (
	"io"
	"net/http"
	"strconv"

	"hr-calendar/internal/domain"
	eventerrors "hr-calendar/internal/event/errors"
	"hr-calendar/internal/middleware"
	"hr-calendar/internal/rbac"
	"hr-calendar/internal/shared/apperror"
	"hr-calendar/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sickNoteFormField = "file"

type Handler struct {
	service Service
	rbac    rbac.Service
	logger  *zap.Logger
}

func NewHandler(service Service, rbacService rbac.Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("event.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("event.handler")
	}
	return &Handler{service: service, rbac: rbacService, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("event request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) writeBindError(c *gin.Context, op string, err error) {
	h.logger.Warn("http "+op+" validation failed", zap.Error(err))
	verr := apperror.MapValidationError(err)
	response.Error(c, http.StatusBadRequest, apperror.CodeValidation, verr.Message, verr.Details)
}

func (h *Handler) principal(c *gin.Context) (domain.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, apperror.ErrUnauthorized.Message, nil)
		return domain.Principal{}, false
	}
	return p, true
}

func (h *Handler) Create(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "create event", err)
		return
	}
	h.logger.Debug("http create event",
		zap.String("user_id", p.UserID.String()),
		zap.String("type", req.Type),
	)

	resp, err := h.service.Create(c.Request.Context(), p, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	resp, err := h.service.GetByID(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// List returns events overlapping [start, end). Filtering by another user or
// by department needs the event:filter_any permission.
func (h *Handler) List(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var q ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeBindError(c, "list events", err)
		return
	}
	if q.UserID != "" || q.Department != "" {
		allowed, err := h.rbac.Enforce(domain.EnforceRequest{
			Role:     p.Role,
			Resource: rbac.ResourceEvent,
			Action:   rbac.ActionFilterAny,
		})
		if err != nil {
			h.writeServiceError(c, err)
			return
		}
		if !allowed {
			h.writeServiceError(c, eventerrors.ErrAdminOnlyFilter)
			return
		}
	}

	resp, err := h.service.List(c.Request.Context(), p, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "update event", err)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) CreateLeaveRequest(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeBindError(c, "create leave request", err)
		return
	}
	h.logger.Debug("http create leave request",
		zap.String("user_id", p.UserID.String()),
		zap.String("start_ts", req.StartTS),
		zap.String("end_ts", req.EndTS),
	)

	resp, err := h.service.CreateLeaveRequest(c.Request.Context(), p, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListLeaveRequests(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var q ListLeaveRequestsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.writeBindError(c, "list leave requests", err)
		return
	}

	resp, err := h.service.ListLeaveRequests(c.Request.Context(), p, q)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Approve(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	h.logger.Debug("http approve leave request",
		zap.String("event_id", c.Param("id")),
		zap.String("approver_id", p.UserID.String()),
	)

	resp, err := h.service.Approve(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Reject(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	var req RejectRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.writeBindError(c, "reject leave request", err)
			return
		}
	}
	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}

	resp, err := h.service.Reject(c.Request.Context(), p, c.Param("id"), reason)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

// UploadSickNote accepts a multipart upload in the "file" field. The content
// type is sniffed from the bytes, not taken from the client.
func (h *Handler) UploadSickNote(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	header, err := c.FormFile(sickNoteFormField)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeValidation, "file is required", nil)
		return
	}
	f, err := header.Open()
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer f.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(f, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		h.writeServiceError(c, err)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp, err := h.service.AttachSickNote(c.Request.Context(), p, c.Param("id"), SickNoteUpload{
		FileName:    header.Filename,
		ContentType: http.DetectContentType(sniff[:n]),
		Size:        header.Size,
		Body:        f,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadSickNote(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}

	obj, err := h.service.OpenSickNote(c.Request.Context(), p, c.Param("name"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.ContentLength, obj.ContentType, obj.Body, map[string]string{
		"Content-Disposition": "inline; filename=" + strconv.Quote(c.Param("name")),
		"Cache-Control":       "private, no-store",
	})
}

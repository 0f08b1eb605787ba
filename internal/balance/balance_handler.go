package balance

import (
	"net/http"
	"time"

	balanceerrors "hr-calendar/internal/balance/errors"
	"hr-calendar/internal/domain"
	"hr-calendar/internal/shared/apperror"
	"hr-calendar/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{service: service, logger: l, now: time.Now}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) asOf(c *gin.Context) (time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return domain.Day(h.now().UTC()), nil
	}
	d, err := domain.ParseDay(raw)
	if err != nil {
		return time.Time{}, balanceerrors.ErrInvalidAsOf
	}
	return d, nil
}

// GetMine returns the balance of the authenticated user.
func (h *Handler) GetMine(c *gin.Context) {
	h.get(c, c.GetString("user_id"))
}

// GetForEmployee returns the balance of any employee in the caller's company.
func (h *Handler) GetForEmployee(c *gin.Context) {
	h.get(c, c.Param("employee_id"))
}

func (h *Handler) get(c *gin.Context, employeeID string) {
	companyID := c.GetString("company_id")
	asOf, err := h.asOf(c)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	h.logger.Debug("http get leave balance",
		zap.String("company_id", companyID),
		zap.String("employee_id", employeeID),
		zap.Time("as_of", asOf),
	)

	resp, err := h.service.GetBalance(c.Request.Context(), companyID, employeeID, asOf)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

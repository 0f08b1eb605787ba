package middleware

import (
	"net/http"

	"hr-calendar/internal/domain"
	"hr-calendar/internal/shared/apperror"
	"hr-calendar/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is satisfied by anything that can answer a role/resource/action
// question.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.AbortError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing auth context")
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role,
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			response.AbortError(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message)
			return
		}

		if !allowed {
			c.AbortWithStatusJSON(http.StatusForbidden, response.ApiEnvelope{
				Ok: false,
				Error: map[string]any{
					"code":    apperror.CodeForbidden,
					"message": apperror.ErrForbidden.Message,
					"details": gin.H{"required": resource + ":" + action},
				},
			})
			return
		}
		c.Next()
	}
}

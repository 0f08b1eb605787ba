package balance

import (
	"hr-calendar/internal/middleware"
	"hr-calendar/internal/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	jwtSecret string,
	logger *zap.Logger,
) {
	balance := r.Group("/leave/balance")
	balance.Use(middleware.AuthMiddleware(jwtSecret))
	balance.Use(middleware.ContextLogger(logger))
	{
		balance.GET("",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceBalance, rbac.ActionRead),
			handler.GetMine,
		)
		balance.GET("/:employee_id",
			middleware.RateLimitByUser(5, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceBalance, rbac.ActionReadAny),
			handler.GetForEmployee,
		)
	}
}

package rbac

import (
	"hr-calendar/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service Service, jwtSecret string, logger *zap.Logger) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware(jwtSecret))
	group.Use(middleware.ContextLogger(logger))
	{
		group.GET("/permissions/me", handler.MyPermissions)
		group.POST("/enforce",
			middleware.RBACAuthorize(service, ResourceRBAC, ActionRead),
			handler.Enforce,
		)
	}
}

package event

import (
	"time"

	"hr-calendar/internal/middleware"
	"hr-calendar/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const leaveRequestIdempotencyTTL = 24 * time.Hour

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb *redis.Client,
	jwtSecret string,
	logger *zap.Logger,
) {
	events := r.Group("/events")
	events.Use(middleware.AuthMiddleware(jwtSecret))
	events.Use(middleware.ContextLogger(logger))
	{
		events.GET("",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEvent, rbac.ActionRead),
			handler.List,
		)
		events.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEvent, rbac.ActionCreate),
			handler.Create,
		)
		events.GET("/:id",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEvent, rbac.ActionRead),
			handler.GetByID,
		)
		events.PATCH("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEvent, rbac.ActionUpdate),
			handler.Update,
		)
		events.DELETE("/:id",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEvent, rbac.ActionDelete),
			handler.Delete,
		)
		events.POST("/:id/sick-note",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, rbac.ResourceEvent, rbac.ActionUpdate),
			handler.UploadSickNote,
		)
	}

	files := r.Group("/files/sick-notes")
	files.Use(middleware.AuthMiddleware(jwtSecret))
	files.Use(middleware.ContextLogger(logger))
	{
		files.GET("/:name",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(rbacService, rbac.ResourceFile, rbac.ActionRead),
			handler.DownloadSickNote,
		)
	}

	leave := r.Group("/leave/requests")
	leave.Use(middleware.AuthMiddleware(jwtSecret))
	leave.Use(middleware.ContextLogger(logger))
	{
		leave.GET("",
			middleware.RateLimitByUser(5, 20),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionRead),
			handler.ListLeaveRequests,
		)
		leave.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionCreate),
			middleware.Idempotency(rdb, leaveRequestIdempotencyTTL),
			handler.CreateLeaveRequest,
		)
		leave.POST("/:id/approve",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide),
			handler.Approve,
		)
		leave.POST("/:id/reject",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, rbac.ResourceLeave, rbac.ActionDecide),
			handler.Reject,
		)
	}
}

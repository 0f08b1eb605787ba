package realtime

import (
	"net/http"

	"hr-calendar/internal/middleware"
	"hr-calendar/internal/shared/apperror"
	"hr-calendar/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Handler struct {
	hub       *Hub
	jwtSecret string
	upgrader  websocket.Upgrader
	logger    *zap.Logger
}

// NewHandler builds the /ws endpoint. An empty allowedOrigins accepts any
// origin.
func NewHandler(hub *Hub, jwtSecret string, allowedOrigins []string, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("realtime.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("realtime.handler")
	}

	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Handler{
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

func (h *Handler) ServeWS(c *gin.Context) {
	token := middleware.TokenFromRequest(c)
	if token == "" {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, middleware.ErrTokenNotFound.Error(), nil)
		return
	}
	principal, err := middleware.ParsePrincipal(h.jwtSecret, token)
	if err != nil {
		h.logger.Debug("websocket auth failed", zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(h.hub, conn, principal)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func RegisterRoutes(r gin.IRoutes, handler *Handler) {
	r.GET("/ws", handler.ServeWS)
}

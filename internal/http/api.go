package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"todo-api/internal/service"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users  service.UserService
	auth   service.AuthService
	tasks  service.TaskService
	logger logrus.FieldLogger
}

func NewHandler(users service.UserService, auth service.AuthService, tasks service.TaskService, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	registerValidatorTagNames()
	return &Handler{
		users:  users,
		auth:   auth,
		tasks:  tasks,
		logger: logger,
	}
}

// RegisterRoutes mounts the API at the root and under /api.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware(), requestLogger(h.logger))

	h.mount(&router.RouterGroup)
	h.mount(router.Group("/api"))
}

func (h *Handler) mount(rg *gin.RouterGroup) {
	rg.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	users := rg.Group("/users")
	{
		users.POST("/register", h.register)
		users.POST("/login", h.login)

		me := users.Group("", h.requireAuth())
		me.POST("/logout", h.logout)
		me.GET("/me", h.me)
		me.PATCH("/me", h.updateMe)
		me.POST("/me/password", h.changePassword)
	}

	token := rg.Group("/token")
	{
		token.POST("/refresh", h.refreshToken)
		token.POST("/verify", h.verifyToken)
	}

	tasks := rg.Group("/tasks", h.requireAuth())
	{
		tasks.GET("", h.listTasks)
		tasks.POST("", h.createTask)
		tasks.GET("/:id", h.getTask)
		tasks.PUT("/:id", h.replaceTask)
		tasks.PATCH("/:id", h.updateTask)
		tasks.DELETE("/:id", h.deleteTask)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

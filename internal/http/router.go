package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/avosuivi/actionplan-backend/internal/http/handlers"
	httpMW "github.com/avosuivi/actionplan-backend/internal/http/middleware"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	ConversationHandler *httpH.ConversationHandler
	SujetHandler        *httpH.SujetHandler
	ActionHandler       *httpH.ActionHandler

	// ServiceName labels otel spans; defaults to "actionplan-backend".
	ServiceName string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "actionplan-backend"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	r.GET("/health", httpH.HealthCheck)

	// Conversations
	if cfg.ConversationHandler != nil {
		r.POST("/save-conversation", cfg.ConversationHandler.Save)
		r.GET("/conversations", cfg.ConversationHandler.List)
		r.GET("/conversations/:id", cfg.ConversationHandler.Get)
		r.GET("/conversations/:id/image", cfg.ConversationHandler.Image)
		r.GET("/conversations/:id/export.txt", cfg.ConversationHandler.Export)
	}

	// Sujets
	if cfg.SujetHandler != nil {
		r.POST("/sujets", cfg.SujetHandler.Create)
		r.POST("/sous-sujets", cfg.SujetHandler.CreateChild)
		r.GET("/sujets/tree", cfg.SujetHandler.Tree)
	}

	// Actions
	if cfg.ActionHandler != nil {
		r.POST("/actions", cfg.ActionHandler.Create)
		r.POST("/actions/tree", cfg.ActionHandler.InsertTree)
		r.GET("/actions/tree", cfg.ActionHandler.Tree)
	}

	return r
}

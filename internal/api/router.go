package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/persona/internal/api/handlers"
	"github.com/your-org/persona/internal/api/ws"
	"github.com/your-org/persona/internal/auth"
	"github.com/your-org/persona/internal/queue"
	"github.com/your-org/persona/internal/service"
	"github.com/your-org/persona/internal/storage"
)

type RouterConfig struct {
	APIKey  string
	Service *service.PersonaService
	DB      storage.Store
	// Avatars and Producer are nil when MinIO/NATS are not configured.
	Avatars  *storage.AvatarStore
	Producer *queue.Producer
	Hub      *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.Avatars, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/api/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket
	if cfg.Hub != nil {
		v1.GET("/ws", cfg.Hub.HandleWS)
	}

	// Personas
	personaH := handlers.NewPersonaHandler(cfg.Service, cfg.Avatars)
	v1.GET("/personas", personaH.List)
	v1.POST("/personas", personaH.Create)
	v1.GET("/personas/:id", personaH.Get)
	v1.PUT("/personas/:id", personaH.Update)
	v1.PATCH("/personas/:id", personaH.Update)
	v1.DELETE("/personas/:id", personaH.Delete)

	// Avatars
	v1.POST("/personas/:id/avatar", personaH.UploadAvatar)
	v1.GET("/personas/:id/avatar", personaH.GetAvatar)
	v1.DELETE("/personas/:id/avatar", personaH.DeleteAvatar)

	// Dynamic attributes
	attributeH := handlers.NewAttributeHandler(cfg.Service)
	v1.GET("/personas/:id/attributes/:category", attributeH.Get)
	v1.PUT("/personas/:id/attributes/:category", attributeH.Update)
	v1.PATCH("/personas/:id/attributes/:category", attributeH.Update)

	// Field configuration
	fieldConfigH := handlers.NewFieldConfigHandler(cfg.Service)
	v1.GET("/field-config", fieldConfigH.Get)
	v1.POST("/validate", fieldConfigH.Validate)

	return r
}

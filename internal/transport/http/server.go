package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/trinetra/chatsim-server/internal/auth"
	"github.com/trinetra/chatsim-server/internal/catalog"
	"github.com/trinetra/chatsim-server/internal/config"
	"github.com/trinetra/chatsim-server/internal/core"
)

// Deps are the services the HTTP layer routes to.
type Deps struct {
	Hub     *core.Hub
	Auth    *auth.Service
	Catalog *catalog.Catalog
}

// NewServer builds an HTTP server with every route registered.
func NewServer(deps Deps, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(deps, cfg, logger),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

// NewHandler mounts the WebSocket endpoints on a plain mux in front of the
// gin router. The upgrade needs the raw ResponseWriter to hijack the connection.
func NewHandler(deps Deps, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws/chat", NewWSHandler(deps.Hub, core.KindChatRoom, deps.Auth, cfg, logger))
	mux.Handle("/ws/bot", NewWSHandler(deps.Hub, core.KindChatbot, deps.Auth, cfg, logger))
	mux.Handle("/", NewRouter(deps, cfg, logger))
	return mux
}

// NewRouter registers the HTTP API routes on a fresh gin engine.
func NewRouter(deps Deps, cfg *config.Config, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	apiHandlers := NewAPIHandlers(deps.Auth, logger)
	projectHandlers := NewProjectHandlers(deps.Catalog, logger)
	sessionHandlers := NewSessionHandlers(deps.Hub)

	api := router.Group("/api")
	api.POST("/login", apiHandlers.Login)
	api.POST("/signup", apiHandlers.Signup)
	api.GET("/projects", projectHandlers.List)
	api.GET("/projects/:id", projectHandlers.Get)
	api.GET("/sessions", sessionHandlers.List)

	protected := api.Group("")
	protected.Use(AuthMiddleware(deps.Auth, logger))
	protected.GET("/me", apiHandlers.Me)

	return router
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}

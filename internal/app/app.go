package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/trinetra/chatsim-server/internal/auth"
	"github.com/trinetra/chatsim-server/internal/catalog"
	"github.com/trinetra/chatsim-server/internal/config"
	"github.com/trinetra/chatsim-server/internal/content"
	"github.com/trinetra/chatsim-server/internal/core"
	transporthttp "github.com/trinetra/chatsim-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	hub, err := NewHub(cfg, logger)
	if err != nil {
		return nil, err
	}

	projects, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info().Int("projects", len(projects.List(catalog.Filter{}))).Msg("catalog loaded")

	authService := auth.NewService(JWTConfig(cfg))

	server := transporthttp.NewServer(transporthttp.Deps{
		Hub:     hub,
		Auth:    authService,
		Catalog: projects,
	}, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}, nil
}

// NewHub builds the session registry from the simulation config.
func NewHub(cfg *config.Config, logger *zerolog.Logger) (*core.Hub, error) {
	chatRoom, err := cfg.Simulation.ChatRoom.Core(core.KindChatRoom)
	if err != nil {
		return nil, fmt.Errorf("chatroom profile: %w", err)
	}
	chatbot, err := cfg.Simulation.Chatbot.Core(core.KindChatbot)
	if err != nil {
		return nil, fmt.Errorf("chatbot profile: %w", err)
	}

	return core.NewHub(core.HubConfig{
		ChatRoom:    chatRoom,
		Chatbot:     chatbot,
		MaxSessions: cfg.MaxSessions,
		Seed:        cfg.Simulation.Seed,
		Sanitize:    content.Sanitize,
		Logger:      *logger,
	}), nil
}

// JWTConfig extracts token settings from cfg.
func JWTConfig(cfg *config.Config) *auth.JWTConfig {
	return &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.hub.Run(gCtx)
		return nil
	})

	g.Go(func() error {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

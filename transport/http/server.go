// Package http exposes the motionedit editor backend over HTTP.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"motionedit/assist"
	"motionedit/config"
	"motionedit/logger"
	"motionedit/render"
	"motionedit/scenestore"
	"motionedit/session"
)

type Server struct {
	sessions *session.Manager
	assist   assist.Client
	renderer *render.Renderer
	scenes   *scenestore.Store
	watcher  *scenestore.Watcher
	config   *config.Config
	echo     *echo.Echo
	done     chan struct{}
}

func NewServer(cfg *config.Config) (*Server, error) {
	store, err := scenestore.NewStore(cfg.Scenes.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene store: %w", err)
	}
	tick := time.Duration(cfg.Playback.TickMillis) * time.Millisecond
	renderer := render.NewRenderer(
		&render.ChromiumCapturer{Binary: cfg.Render.BrowserPath},
		&render.FFmpegEncoder{Binary: cfg.Render.FFmpegPath},
	)
	return &Server{
		sessions: session.NewManager(tick),
		assist:   assist.NewOpenAI(cfg.Assist.BaseURL, cfg.Assist.Model, cfg.Assist.APIKey()),
		renderer: renderer,
		scenes:   store,
		config:   cfg,
		echo:     echo.New(),
		done:     make(chan struct{}),
	}, nil
}

func (s *Server) Start() error {
	s.setupEcho()
	go s.startCleanupGoroutine()
	if s.config.Scenes.Watch {
		watcher, err := scenestore.Watch(s.scenes)
		if err != nil {
			logger.Warn("Scene watcher unavailable", "dir", s.scenes.Dir(), "error", err)
		} else {
			s.watcher = watcher
			go s.watchScenes()
		}
	}
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	logger.Info("HTTP server starting to listen", "address", addr)
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	close(s.done)
	if s.watcher != nil {
		s.watcher.Close()
	}
	s.sessions.CloseAll()
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupEcho() {
	s.echo.HideBanner = true
	s.echo.Use(middleware.Logger())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "Last-Event-ID"},
	}))
	RegisterRoutes(s.echo, s)
}

func (s *Server) startCleanupGoroutine() {
	timeout := time.Duration(s.config.Playback.SessionTimeoutMinutes) * time.Minute
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if removed := s.sessions.Cleanup(timeout); removed > 0 {
				logger.Info("Expired idle sessions", "count", removed)
			}
		}
	}
}

func (s *Server) watchScenes() {
	for name := range s.watcher.Changes() {
		logger.Info("Scene changed on disk", "scene", name)
	}
}

func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

func (s *Server) Scenes() *scenestore.Store {
	return s.scenes
}

func (s *Server) Config() *config.Config {
	return s.config
}

package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"reelctl/internal/config"
	"reelctl/internal/generate"
	"reelctl/internal/localstore"
	"reelctl/internal/logging"
	"reelctl/internal/media"
	"reelctl/internal/merge"
	"reelctl/internal/notifications"
	"reelctl/internal/render"
	"reelctl/internal/webhook"
)

// Deps are the services the API exposes. Optional services may be nil; the
// matching routes then answer with a configuration error.
type Deps struct {
	Config   *config.Config
	Store    *localstore.Store
	Sync     *merge.Engine
	Remote   *webhook.Client
	Generate *generate.Service
	Uploader *media.Uploader
	Render   *render.Service
	Notifier notifications.Service
	Logger   *slog.Logger
}

// Server hosts the gin router.
type Server struct {
	deps   Deps
	token  string
	bind   string
	logger *slog.Logger
	router *gin.Engine

	mu       sync.Mutex
	trackers map[string]*render.Tracker

	listener   net.Listener
	httpServer *http.Server
}

// New builds the server and its routes.
func New(deps Deps) *Server {
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(nil)
	}
	s := &Server{
		deps:     deps,
		logger:   logging.NewComponentLogger(deps.Logger, "api"),
		trackers: map[string]*render.Tracker{},
	}
	if deps.Config != nil {
		s.token = deps.Config.Server.Token
		s.bind = deps.Config.Server.Bind
	}
	s.router = s.routes()
	return s
}

// Handler returns the router for use with httptest or a custom server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	authed := r.Group("/", s.authMiddleware())

	apiGroup := authed.Group("/api")
	apiGroup.GET("/scripts", s.listScripts)
	apiGroup.POST("/scripts", s.createScript)
	apiGroup.GET("/scripts/:id", s.getScript)
	apiGroup.PUT("/scripts/:id", s.updateScript)
	apiGroup.DELETE("/scripts/:id", s.deleteScript)
	apiGroup.POST("/scripts/:id/render", s.dispatchRender)

	apiGroup.GET("/history", s.listHistory)
	apiGroup.GET("/history/:id", s.getHistory)
	apiGroup.DELETE("/history/:id", s.deleteHistory)

	apiGroup.POST("/generate", s.generateScript)
	apiGroup.POST("/generate/questions", s.generateQuestions)
	apiGroup.POST("/generate/answers", s.generateAnswers)
	apiGroup.POST("/generate/theme", s.generateTheme)

	apiGroup.POST("/uploads", s.upload)

	apiGroup.GET("/render/:id", s.renderStatus)

	apiGroup.GET("/memo", s.getMemo)
	apiGroup.PUT("/memo", s.setMemo)
	apiGroup.DELETE("/memo", s.clearMemo)

	apiGroup.GET("/settings", s.getSettings)
	apiGroup.PATCH("/settings", s.patchSettings)

	authed.GET("/ws/render/:id", s.renderStream)
	return r
}

// Start listens on server.bind and serves until ctx ends or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr is the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down and waits for background re-publishes.
func (s *Server) Stop() {
	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}
	if s.deps.Sync != nil {
		s.deps.Sync.Wait()
	}
}

func (s *Server) tracker(id string) *render.Tracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trackers[id]
}

// remember keeps t for later status and stream calls. Trackers that are
// already terminal are not kept.
func (s *Server) remember(id string, t *render.Tracker) {
	if id == "" || t == nil || t.Done() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trackers[id] = t
}

// forget drops the tracker for id once its terminal outcome has been handed
// to a view.
func (s *Server) forget(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.trackers[id]; ok && t.Done() {
		delete(s.trackers, id)
	}
}

func (s *Server) notifySyncFailed(ctx context.Context, collection string, err error) {
	if nerr := s.deps.Notifier.NotifySyncFailed(ctx, collection, err); nerr != nil {
		s.logger.Warn("sync failure notification failed",
			logging.String("collection", collection),
			logging.Error(nerr),
		)
	}
}

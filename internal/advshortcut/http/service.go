package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/sjzar/advshortcut/internal/errors"
	"github.com/sjzar/advshortcut/internal/model"
	"github.com/sjzar/advshortcut/internal/store"
	"github.com/sjzar/advshortcut/internal/updater"
)

type Config interface {
	GetHTTPAddr() string
	GetDataDir() string
}

// Executor runs shortcuts and reports every finished run.
type Executor interface {
	Execute(ctx context.Context, sc model.Shortcut) ([]string, error)
	Subscribe(fn func(model.ExecutionResult)) func()
}

// System is the host side of the API.
type System interface {
	ProcessList(ctx context.Context) ([]model.ProcessInfo, error)
	WindowList(ctx context.Context) ([]model.WindowInfo, error)
	WindowPosition(ctx context.Context, processName string) (model.WindowConfig, error)
	InstalledApps(ctx context.Context) ([]model.InstalledApp, error)
	DesktopPath() (string, error)
	ResolveShortcutLink(ctx context.Context, path string) (model.ResolvedLink, error)
	CreateDesktopShortcut(ctx context.Context, req model.DesktopShortcutRequest) (string, error)
}

type Service struct {
	conf     Config
	store    *store.Store
	executor Executor
	system   System
	updater  *updater.Manager
	hub      *Hub

	router *gin.Engine
	server *http.Server

	mcpServer           *server.MCPServer
	mcpSSEServer        *server.SSEServer
	mcpStreamableServer *server.StreamableHTTPServer

	// ctx outlives requests; background installs run on it
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	unsubs []func()
}

func NewService(conf Config, st *store.Store, executor Executor, system System, upd *updater.Manager) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("failed to set trusted proxies")
	}

	router.Use(
		errors.RecoveryMiddleware(),
		errors.ErrorHandlerMiddleware(),
		gin.LoggerWithWriter(log.Logger, "/health"),
		corsMiddleware(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		conf:     conf,
		store:    st,
		executor: executor,
		system:   system,
		updater:  upd,
		hub:      NewHub(),
		router:   router,
		ctx:      ctx,
		cancel:   cancel,
	}

	s.initMCPServer()
	s.initRouter()
	s.subscribe()
	return s
}

// subscribe forwards store, update and execution events to websocket clients.
func (s *Service) subscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unsubs = append(s.unsubs,
		s.store.Subscribe(func(e store.Event) {
			s.hub.Broadcast(EventStore, e)
		}),
		s.executor.Subscribe(func(r model.ExecutionResult) {
			s.hub.Broadcast(EventExecution, r)
		}),
	)
	if s.updater != nil {
		s.unsubs = append(s.unsubs, s.updater.Subscribe(func(st updater.State) {
			s.hub.Broadcast(EventUpdate, st)
		}))
	}
}

func (s *Service) Start() error {

	s.server = &http.Server{
		Addr:    s.conf.GetHTTPAddr(),
		Handler: s.router,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("failed to start HTTP server")
		}
	}()

	log.Info().Msg("starting HTTP server on " + s.conf.GetHTTPAddr())

	return nil
}

func (s *Service) ListenAndServe() error {

	s.server = &http.Server{
		Addr:    s.conf.GetHTTPAddr(),
		Handler: s.router,
	}

	log.Info().Msg("starting HTTP server on " + s.conf.GetHTTPAddr())
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.HTTP("listen and serve", err)
	}
	return nil
}

func (s *Service) Stop() error {
	s.hub.Close()

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("failed to shutdown HTTP server")
		return nil
	}
	s.server = nil

	log.Info().Msg("HTTP server stopped")
	return nil
}

// Close stops the server and releases the event subscriptions.
func (s *Service) Close() error {
	err := s.Stop()
	s.cancel()
	s.mu.Lock()
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.mu.Unlock()
	return err
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}

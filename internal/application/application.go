package application

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/eugenenazirov/tracecfg"
	"github.com/eugenenazirov/tracecfg/internal/api"
)

// configFileEnv selects an optional configuration file (YAML, JSON or
// .env); schema fields themselves are settable per file, environment
// variable and generated CLI flag.
const configFileEnv = "CONFIG_FILE"

// App encapsulates the resolved configuration, HTTP router and server.
type App struct {
	server  ServerConfig
	runtime RuntimeConfig
	handler *api.Handler
	router  http.Handler
	logger  *zap.Logger
	httpSrv *http.Server
}

// Resolve runs the configuration pipeline for the service: application and
// runtime scope defaults, an optional file named by CONFIG_FILE, process
// environment variables and the given CLI arguments, merged in that order
// and installed behind the live handle.
func Resolve(argv []string, logger *zap.Logger) (ServerConfig, RuntimeConfig, error) {
	opts := []tracecfg.SetupOption{
		tracecfg.WithArgs(argv),
		tracecfg.WithLogger(logger),
	}
	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		opts = append(opts, tracecfg.WithFiles(path))
	}

	cfg, err := tracecfg.Setup(Defaults(), RuntimeDefaults(), opts...)
	if err != nil {
		return ServerConfig{}, RuntimeConfig{}, fmt.Errorf("resolve configuration: %w", err)
	}

	var server ServerConfig
	if err := cfg.Scan(&server); err != nil {
		return ServerConfig{}, RuntimeConfig{}, fmt.Errorf("scan server config: %w", err)
	}
	var runtime RuntimeConfig
	if err := cfg.Scan(&runtime); err != nil {
		return ServerConfig{}, RuntimeConfig{}, fmt.Errorf("scan runtime config: %w", err)
	}
	return server, runtime, nil
}

// New wires the handler, router and HTTP server from the resolved
// configuration.
func New(server ServerConfig, runtime RuntimeConfig, logger *zap.Logger) *App {
	handler := api.NewHandler(runtime.Environment)
	router := api.NewRouter(handler, logger,
		api.WithLogging(server.EnableRequestLogging),
		api.WithRateLimit(server.RateLimitRPS, server.RateLimitBurst),
	)

	return &App{
		server:  server,
		runtime: runtime,
		handler: handler,
		router:  router,
		logger:  logger,
		httpSrv: NewServer(server, router),
	}
}

// NewServer creates and configures an HTTP server from the provided
// configuration.
func NewServer(cfg ServerConfig, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening",
			zap.String("addr", a.httpSrv.Addr),
			zap.String("environment", a.runtime.Environment))
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.httpSrv
}

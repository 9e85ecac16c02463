// Package engine wires the handler packages into a route table and owns the
// server lifecycle: startup, signal handling and the /shutdown hook.
package engine

import (
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"fauxhost/pkg/echo"
	"fauxhost/pkg/models"
	"fauxhost/pkg/stream"
	"fauxhost/pkg/upload"
	"fauxhost/pkg/utils/fs"
	"fauxhost/pkg/utils/logger"

	"github.com/valyala/fasthttp"
	"gopkg.in/yaml.v3"
)

type route struct {
	methods []string
	path    string
	prefix  bool
	handler fasthttp.RequestHandler
}

type Engine struct {
	config   *models.FauxhostConfig
	logger   *logger.Logger
	server   *fasthttp.Server
	routes   []route
	stop     chan struct{}
	stopOnce sync.Once
}

// InstantiateEngine builds an engine from the yaml config at configPath.
// A missing config file is fine; the server then runs entirely on defaults.
func InstantiateEngine(configPath string) *Engine {
	config, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Unable to load the config at %s: %v", configPath, err)
	}

	engine, err := NewEngine(config)
	if err != nil {
		log.Fatalf("Unable to instantiate the engine: %v", err)
	}
	return engine
}

func NewEngine(config *models.FauxhostConfig) (*Engine, error) {
	applyDefaults(config)

	lg, err := logger.NewLogger(config.Log)
	if err != nil {
		return nil, fmt.Errorf("unable to instantiate the logger: %w", err)
	}

	if err := fs.EnsureDir(config.Files.Dir); err != nil {
		return nil, err
	}

	delays := make(map[string]time.Duration, len(config.Files.Delays))
	for name, seconds := range config.Files.Delays {
		delays[name] = time.Duration(seconds * float64(time.Second))
	}

	engine := &Engine{
		config: config,
		logger: lg,
		stop:   make(chan struct{}),
	}
	engine.buildRoutes(delays)

	engine.server = &fasthttp.Server{
		Handler:           engine.recoverMiddleware(engine.handleRequest),
		Name:              "fauxhost",
		StreamRequestBody: true,
	}

	return engine, nil
}

func loadConfig(configPath string) (*models.FauxhostConfig, error) {
	var config models.FauxhostConfig

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return &config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &config, nil
}

// Intelligent defaults
func applyDefaults(config *models.FauxhostConfig) {
	if config.Server == nil {
		config.Server = &models.ServerConfig{}
	}
	if config.Server.Host == "" {
		config.Server.Host = "127.0.0.1"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Files == nil {
		config.Files = &models.FilesConfig{}
	}
	if config.Files.Dir == "" {
		config.Files.Dir = "files"
	}
	if config.Files.Delays == nil {
		config.Files.Delays = map[string]float64{
			"5MB-test.ZIP":  1.0,
			"57MB-test.ZIP": 10.0,
			"1MB-test.bin":  0.5,
		}
	}
	if config.Log == nil {
		config.Log = &models.LogConfig{
			ToStdout: true,
			Prefix:   "fauxhost",
		}
	}
}

func (e *Engine) buildRoutes(delays map[string]time.Duration) {
	echoHandler := echo.NewHandler(e.logger)
	uploadHandler := upload.NewHandler(e.logger)
	streamer := stream.NewStreamer(e.config.Files.Dir, delays, e.logger)

	get := []string{fasthttp.MethodGet}
	post := []string{fasthttp.MethodPost}

	e.routes = []route{
		{methods: get, path: "/", handler: echoHandler.Index},
		{methods: get, path: "/fail", handler: echoHandler.Fail},
		{methods: post, path: "/echo_post", handler: echoHandler.EchoPost},
		{methods: []string{fasthttp.MethodGet, fasthttp.MethodPatch}, path: "/echo_get", handler: echoHandler.EchoGet},
		{methods: get, path: "/redirect", handler: echoHandler.Redirect},
		{methods: []string{fasthttp.MethodGet, fasthttp.MethodHead}, path: "/get", handler: echoHandler.BinGet},
		{methods: post, path: "/post", handler: echoHandler.BinBody},
		{methods: []string{fasthttp.MethodPut}, path: "/put", handler: echoHandler.BinBody},
		{methods: []string{fasthttp.MethodPatch}, path: "/patch", handler: echoHandler.BinBody},
		{methods: []string{fasthttp.MethodDelete}, path: "/delete", handler: echoHandler.BinBody},
		{methods: get, path: "/cookies", handler: echoHandler.Cookies},
		{methods: get, path: "/status/", prefix: true, handler: echoHandler.Status},
		{methods: post, path: "/refresh", handler: echoHandler.Refresh},
		{methods: get, path: "/response-headers", handler: echoHandler.ResponseHeaders},
		{methods: post, path: "/upload_file", handler: uploadHandler.UploadFile},
		{methods: post, path: "/upload_binary", handler: uploadHandler.UploadBinary},
		{methods: post, path: "/upload_multi", handler: uploadHandler.UploadMulti},
		{methods: get, path: "/files/", prefix: true, handler: streamer.ServeFile},
		{methods: post, path: "/shutdown", handler: e.handleShutdown},
	}
}

func (e *Engine) handleRequest(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())
	e.logger.Info(fmt.Sprintf("Incoming request - Method: %s, Path: %s", method, path))

	r, matched := e.matchRoute(path)
	if !matched {
		ctx.Error("Not Found", fasthttp.StatusNotFound)
		return
	}

	if !methodAllowed(r, method) {
		ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	r.handler(ctx)
}

func (e *Engine) matchRoute(path string) (*route, bool) {
	for i := range e.routes {
		r := &e.routes[i]
		if r.prefix {
			if len(path) > len(r.path) && path[:len(r.path)] == r.path {
				return r, true
			}
			continue
		}
		if path == r.path {
			return r, true
		}
	}
	return nil, false
}

func methodAllowed(r *route, method string) bool {
	for _, m := range r.methods {
		if m == method {
			return true
		}
	}
	return false
}

// recoverMiddleware converts a handler panic into a 500 so a single bad
// request can never take the process down with it.
func (e *Engine) recoverMiddleware(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if rec := recover(); rec != nil {
				e.logger.Error(fmt.Sprintf("Handler panic on %s %s: %v", ctx.Method(), ctx.Path(), rec))
				ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
			}
		}()
		next(ctx)
	}
}

// handleShutdown answers first, then trips the stop channel; the response is
// on the wire before graceful shutdown starts draining connections.
func (e *Engine) handleShutdown(ctx *fasthttp.RequestCtx) {
	e.logger.Info("Shutdown requested via endpoint")
	ctx.SetBodyString("Server shutting down...")
	ctx.SetConnectionClose()
	e.Stop()
}

// Stop triggers a graceful shutdown. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stop)
	})
}

// Serve runs the server on ln until Stop is called. In-flight requests,
// including slow paced downloads, are drained before it returns.
func (e *Engine) Serve(ln net.Listener) error {
	go func() {
		<-e.stop
		if err := e.server.Shutdown(); err != nil {
			e.logger.Error(fmt.Sprintf("Server shutdown error: %v", err))
		}
	}()
	return e.server.Serve(ln)
}

// Addr returns the configured listen address.
func (e *Engine) Addr() string {
	return fmt.Sprintf("%s:%d", e.config.Server.Host, e.config.Server.Port)
}

func (e *Engine) Run() {
	addr := e.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		e.logger.Error(fmt.Sprintf("Unable to listen on %s: %v", addr, err))
		os.Exit(1)
	}

	e.logger.Info(fmt.Sprintf("fauxhost starting on %s...", addr))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		e.logger.Info("Signal received; shutting down server...")
		e.Stop()
	}()

	if err := e.Serve(ln); err != nil {
		e.logger.Error(fmt.Sprintf("Fatal server error: %v", err))
		os.Exit(1)
	}

	e.logger.Info("Server stopped")
	e.logger.Close()
}

// Package server is the delegator's HTTP front-end: a host-routed mux
// serving the generic /evaluate surface, the health endpoint, the
// config-defined virtualhost routes and the built-in route bundles, behind
// CORS and request-id middleware.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/threadlane/delegator/internal/config_loader"
	"github.com/threadlane/delegator/internal/routes"
	"github.com/threadlane/delegator/pkg/logger"
)

const shutdownGracePeriod = 10 * time.Second

// Config wires a Server.
type Config struct {
	HTTP         config_loader.HTTPConfig
	Virtualhosts map[string]config_loader.Virtualhost
	Deps         routes.Deps
	Logger       logger.Logger
}

// Server owns the HTTP listener and its routing tree.
type Server struct {
	addr       string
	handler    http.Handler
	log        logger.Logger
	httpServer *http.Server
}

// New validates the configuration and assembles the routing tree.
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Deps.Evaluator == nil {
		return nil, fmt.Errorf("field Deps.Evaluator is required")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("field Logger is required")
	}

	router, err := buildRouter(cfg)
	if err != nil {
		return nil, err
	}

	var handler http.Handler = router
	handler = NewCORSMiddleware(handler, cfg.HTTP.CORS)
	handler = newRequestMiddleware(handler, cfg.Logger)

	return &Server{
		addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		handler: handler,
		log:     cfg.Logger,
	}, nil
}

// buildRouter assembles one mux per virtualhost plus the default mux. The
// host-independent surface (/evaluate, /health) is present on every mux.
func buildRouter(cfg *Config) (*hostRouter, error) {
	defaultMux := http.NewServeMux()
	registerCore(defaultMux, cfg.Deps)
	router := newHostRouter(defaultMux)

	for name, vhost := range cfg.Virtualhosts {
		mux := http.NewServeMux()
		registerCore(mux, cfg.Deps)

		if register, ok := routes.Builtin[name]; ok {
			register(mux, cfg.Deps)
		}
		for path, route := range vhost.Routes {
			handler, err := newConfigRouteHandler(cfg.Deps, route)
			if err != nil {
				return nil, fmt.Errorf("virtualhost %q route %q: %w", name, path, err)
			}
			mux.Handle("POST "+path, handler)
		}
		router.add(vhost.Host, mux)
	}
	return router, nil
}

// Handler returns the fully assembled routing tree. Used by tests; Start
// serves the same handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins serving in a background goroutine.
func (s *Server) Start(ctx context.Context) {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
	}
	s.log.Infof(ctx, "HTTP server listening on %s", s.addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Errorf(logger.WithError(ctx, err), "HTTP server terminated")
		}
	}()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()
	s.log.Infof(ctx, "Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/auth"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/config"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/http/handlers"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/ledger"
	"github.com/Tuning-Luna/hairdressing-member-manger-system/internal/middleware"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// Deps are the components the HTTP surface is built on.
type Deps struct {
	Ledger   *ledger.Service
	DB       handlers.Pinger
	Registry *prometheus.Registry
	Log      *logrus.Logger
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	return &Server{inner: &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}}
}

// Handler builds the routed, middleware-wrapped handler.
func Handler(cfg config.Config, deps Deps) http.Handler {
	mux := http.NewServeMux()

	health := handlers.NewHealthHandler(time.Now(), deps.DB)
	health.Register(mux)

	if deps.Registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	operator := auth.NewOperator(cfg.OperatorUsername, cfg.OperatorPasswordHash)
	handlers.NewAuthHandler(operator, tokens, deps.Log).Register(mux)

	protect := func(next http.Handler) http.Handler {
		return middleware.RequireBearer(tokens, next)
	}
	members := handlers.NewMemberHandler(deps.Ledger, deps.Log, cfg.ImportMaxBytes)
	members.Register(mux, protect)

	return middleware.RequestID(
		middleware.CORS(cfg.CORSOrigins, middleware.Logging(deps.Log, mux)),
	)
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}

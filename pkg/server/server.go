// Package server exposes the swap assistant over HTTP.
package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Mazzz-zzz/voca.fi/pkg/chat"
	"github.com/Mazzz-zzz/voca.fi/pkg/enso"
	"github.com/Mazzz-zzz/voca.fi/pkg/swap"
	"github.com/Mazzz-zzz/voca.fi/pkg/token"
)

// Config wires the HTTP server.
type Config struct {
	ListenAddr string
	ChainID    int64

	Session  *chat.Session
	Resolver *token.Resolver
	Preparer chat.Preparer
	Enso     *enso.Client
	Queue    *swap.Queue
	Executor swap.Executor

	Logger *logrus.Logger
}

// Server is the HTTP front of the assistant.
type Server struct {
	echo *echo.Echo
	cfg  Config
	log  *logrus.Logger
}

// New builds the server and registers routes.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	s := &Server{echo: e, cfg: cfg, log: cfg.Logger}

	e.GET("/healthz", s.handleHealth)
	e.POST("/chat", s.handleChat)
	e.GET("/tokens", s.handleTokens)
	e.GET("/tokens/resolve", s.handleResolve)
	e.GET("/quote", s.handleQuote)
	e.GET("/queue", s.handleQueueList)
	e.DELETE("/queue/:id", s.handleQueueDelete)
	e.POST("/queue/:id/move", s.handleQueueMove)
	e.POST("/queue/:id/execute", s.handleQueueExecute)
	e.POST("/queue/execute", s.handleQueueExecuteAll)

	return s
}

// Start blocks serving HTTP until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.WithField("addr", s.cfg.ListenAddr).Info("http server starting")
	return s.echo.Start(s.cfg.ListenAddr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Package web serves the administrative JSON API.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/config"
	fiberlogger "github.com/idam-admin/idam/internal/logger/adapter/fiber"
	"github.com/idam-admin/idam/internal/web/handler"
	"github.com/idam-admin/idam/internal/web/handler/catalog"
	"github.com/idam-admin/idam/internal/web/handler/claims"
	"github.com/idam-admin/idam/internal/web/handler/provider"
	"github.com/idam-admin/idam/internal/web/handler/role"
	"github.com/idam-admin/idam/internal/web/handler/terms"
	"github.com/idam-admin/idam/internal/web/handler/user"
	"github.com/idam-admin/idam/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers 200 while serving and 503 during graceful shutdown.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start listens on addr and blocks until the server is shut down.
func (s *Service) Start(addr string) error {
	if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err //nolint:wrapcheck
	}

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	s.Shutdown()
}

// Shutdown lets checkalive fail for the configured time, then stops the server.
func (s *Service) Shutdown() {
	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates the web service. A nil verifier leaves the API unauthenticated.
func New(cfg *config.Config, deps handler.Deps, verifier auth.TokenVerifier) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			AppName:       "idam",
			CaseSensitive: true,
			Prefork:       false,
			Immutable:     true,
			BodyLimit:     cfg.Webserver.BodyLimit,
			ReadTimeout:   cfg.Webserver.ReadTimeout,
			WriteTimeout:  cfg.Webserver.WriteTimeout,
			ErrorHandler:  handler.ErrorHandler,
		},
	)

	service := &Service{
		App:          app,
		cfg:          cfg,
		fastShutDown: cfg.DevMode || cfg.Webserver.ShutDownTime == 0,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	if cfg.Webserver.CleanPath {
		app.Use(cleanPath)
	}

	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	app.Get(CheckAlivePath, service.checkAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group(handler.APIPath)

	if verifier != nil {
		api.Use(auth.New(verifier))
	} else {
		log.Warn().Msg("bearer authentication disabled: the admin api is open")
	}

	handlers := []handler.Service{
		&user.Handler,
		&role.Handler,
		&claims.Handler,
		&provider.Handler,
		&catalog.Handler,
		&terms.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(api, deps); err != nil {
			return nil, err //nolint:wrapcheck
		}
	}

	return service, nil
}

func (s *Service) checkAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(fiber.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// cleanPath collapses repeated slashes so "/api//users" routes like "/api/users".
func cleanPath(c *fiber.Ctx) error {
	if p := c.Path(); strings.Contains(p, "//") {
		c.Path(path.Clean(p))
	}

	return c.Next()
}

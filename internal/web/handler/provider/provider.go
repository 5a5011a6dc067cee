// Package provider serves identity provider dashboard data.
package provider

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/idam-admin/idam/internal/identity"
	"github.com/idam-admin/idam/internal/web/handler"
)

// Path is the route group of the provider handler.
const Path = "/provider"

// Service is the provider handler service.
type Service struct {
	handler.Service
	identity *identity.Service
}

// Handler is the provider handler.
var Handler = Service{}

// Init registers the provider routes on router.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || deps.Identity == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.identity = deps.Identity

	router.Get(Path+"/users/recent", s.RecentUsers)

	return nil
}

// RecentUsers returns the provider's user total and newest users.
func (s *Service) RecentUsers(c *fiber.Ctx) error {
	recent, err := s.identity.RecentUsers(c.UserContext())
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(recent)
}

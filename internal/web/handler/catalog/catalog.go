// Package catalog serves CRUD routes for organisations, services, environments and websites.
package catalog

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/web/handler"
)

const (
	// OrganisationsPath is the route group of organisations.
	OrganisationsPath = "/organisations"
	// ServicesPath is the route group of services.
	ServicesPath = "/services"
	// EnvironmentsPath is the route group of environments.
	EnvironmentsPath = "/environments"
	// WebsitesPath is the route group of websites.
	WebsitesPath = "/websites"

	idPath = "/:id"
)

// NameRequest is the body of organisation and service writes.
type NameRequest struct {
	Name string `json:"name" validate:"required"`
}

// EnvironmentRequest is the body of environment writes.
type EnvironmentRequest struct {
	Name  string `json:"name"  validate:"required"`
	Order int    `json:"order"`
}

// Service is the catalog handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the catalog handler.
var Handler = Service{}

// Init registers the catalog routes on router.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || deps.DB == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.db = deps.DB
	s.validator = validator.New()

	router.Route(OrganisationsPath, func(r fiber.Router) {
		r.Get(handler.RouterRootPath, s.listOrganisations)
		r.Post(handler.RouterRootPath, s.createOrganisation)
		r.Get(idPath, s.getOrganisation)
		r.Put(idPath, s.updateOrganisation)
		r.Delete(idPath, s.deleteOrganisation)
	})

	router.Route(ServicesPath, func(r fiber.Router) {
		r.Get(handler.RouterRootPath, s.listServices)
		r.Post(handler.RouterRootPath, s.createService)
		r.Get(idPath, s.getService)
		r.Put(idPath, s.updateService)
		r.Delete(idPath, s.deleteService)
	})

	router.Route(EnvironmentsPath, func(r fiber.Router) {
		r.Get(handler.RouterRootPath, s.listEnvironments)
		r.Post(handler.RouterRootPath, s.createEnvironment)
		r.Get(idPath, s.getEnvironment)
		r.Put(idPath, s.updateEnvironment)
		r.Delete(idPath, s.deleteEnvironment)
	})

	router.Route(WebsitesPath, func(r fiber.Router) {
		r.Get(handler.RouterRootPath, s.listWebsites)
		r.Post(handler.RouterRootPath, s.createWebsite)
		r.Get(idPath, s.getWebsite)
		r.Put(idPath, s.updateWebsite)
		r.Delete(idPath, s.deleteWebsite)
	})

	return nil
}

// respond writes v as JSON with status, or returns err.
func respond(c *fiber.Ctx, status int, v any, err error) error {
	if err != nil {
		return err
	}

	return c.Status(status).JSON(v)
}

// deleted answers 204, or returns err.
func deleted(c *fiber.Ctx, err error) error {
	if err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Package terms serves terms and conditions versions and user acceptances.
package terms

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	termscontroller "github.com/idam-admin/idam/internal/db/controller/terms"
	"github.com/idam-admin/idam/internal/web/handler"
)

// Path is the route group of the terms handler.
const Path = "/terms"

// PublishRequest is the body of a new terms version.
type PublishRequest struct {
	VersionDate time.Time `json:"versionDate" validate:"required"`
}

// AcceptRequest records a user's acceptance of a version.
type AcceptRequest struct {
	UserID uint64 `json:"userId" validate:"required"`
}

// Service is the terms handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the terms handler.
var Handler = Service{}

// Init registers the terms routes on router.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || deps.DB == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.db = deps.DB
	s.validator = validator.New()

	router.Route(Path, func(r fiber.Router) {
		r.Get(handler.RouterRootPath, s.list)
		r.Post(handler.RouterRootPath, s.publish)
		r.Get("/latest", s.latest)
		r.Post("/:id/acceptances", s.accept)
	})

	return nil
}

func (s *Service) list(c *fiber.Ctx) error {
	versions, err := termscontroller.GetAll(s.db)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(versions)
}

func (s *Service) latest(c *fiber.Ctx) error {
	version, err := termscontroller.Latest(s.db)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(version)
}

func (s *Service) publish(c *fiber.Ctx) error {
	var req PublishRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	version, err := termscontroller.Publish(s.db, req.VersionDate)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.Status(fiber.StatusCreated).JSON(version)
}

func (s *Service) accept(c *fiber.Ctx) error {
	versionID, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var req AcceptRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	acceptance, err := termscontroller.Accept(s.db, req.UserID, versionID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.Status(fiber.StatusCreated).JSON(acceptance)
}

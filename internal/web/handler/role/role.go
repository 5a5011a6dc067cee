// Package role serves role definitions and role lookups for relying parties.
package role

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	rolecontroller "github.com/idam-admin/idam/internal/db/controller/role"
	"github.com/idam-admin/idam/internal/identity"
	"github.com/idam-admin/idam/internal/web/handler"
)

// Path is the route group of the role handler.
const Path = "/roles"

// FindRequest selects the role names of subjects on one website host.
type FindRequest struct {
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1,dive,required"`
	Host       string   `json:"host"       validate:"required"`
}

// Service is the role handler service.
type Service struct {
	handler.Service
	db        *gorm.DB
	identity  *identity.Service
	validator *validator.Validate
}

// Handler is the role handler.
var Handler = Service{}

// Init registers the role routes on router.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || deps.Identity == nil || deps.DB == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.db = deps.DB
	s.identity = deps.Identity
	s.validator = validator.New()

	router.Route(Path, func(r fiber.Router) {
		r.Post("/find", s.Find)
		r.Get(handler.RouterRootPath, s.list)
		r.Post(handler.RouterRootPath, s.create)
		r.Get("/:id", s.get)
		r.Put("/:id", s.update)
		r.Delete("/:id", s.delete)
	})

	return nil
}

// Find maps each posted subject id to its role names on the host.
func (s *Service) Find(c *fiber.Ctx) error {
	var req FindRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	roles, err := s.identity.FindRoles(c.UserContext(), req.SubjectIDs, req.Host)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(roles)
}

// list answers the roles of the website given by ?websiteId=.
func (s *Service) list(c *fiber.Ctx) error {
	websiteID := uint64(c.QueryInt("websiteId"))
	if websiteID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "query parameter websiteId is required")
	}

	roles, err := rolecontroller.GetByWebsite(s.db, websiteID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(roles)
}

func (s *Service) get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	r, err := rolecontroller.Get(s.db, id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(r)
}

func (s *Service) create(c *fiber.Ctx) error {
	var req rolecontroller.Role
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	if req.WebsiteID == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "field 'WebsiteID' failed validation tag 'required'")
	}

	r, err := rolecontroller.Create(s.db, req)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.Status(fiber.StatusCreated).JSON(r)
}

func (s *Service) update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var req rolecontroller.Role
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	r, err := rolecontroller.Update(s.db, id, req)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(r)
}

func (s *Service) delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err := rolecontroller.Delete(s.db, id); err != nil {
		return err //nolint:wrapcheck
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Package user serves the user administration routes.
package user

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/db/models"
	"github.com/idam-admin/idam/internal/identity"
	"github.com/idam-admin/idam/internal/web/handler"
)

const (
	// Path is the route group of the user handler.
	Path = "/users"

	paramWebsiteID = "websiteId"
)

// FindRequest selects users by subject id.
type FindRequest struct {
	SubjectIDs []string `json:"subjectIds" validate:"required,min=1,dive,required"`
}

// RolesRequest lists role ids to grant.
type RolesRequest struct {
	RoleIDs []uint64 `json:"roleIds" validate:"required,dive,required"`
}

// WebsiteRolesRequest lists the desired grant state of a website's roles.
type WebsiteRolesRequest struct {
	Roles []identity.RoleToggle `json:"roles" validate:"required,dive"`
}

// Service is the user handler service.
type Service struct {
	handler.Service
	identity  *identity.Service
	validator *validator.Validate
}

// Handler is the user handler.
var Handler = Service{}

// Init registers the user routes on router.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || deps.Identity == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.identity = deps.Identity
	s.validator = validator.New()

	router.Route(Path, func(r fiber.Router) {
		r.Get(handler.RouterRootPath, s.List)
		r.Post(handler.RouterRootPath, s.Create)
		r.Post("/find", s.Find)
		r.Post("/import", s.Import)
		r.Get("/:id", s.Get)
		r.Patch("/:id", s.Update)
		r.Delete("/:id", s.Delete)
		r.Post("/:id/revoke", s.Revoke)
		r.Get("/:id/roles", s.GetRoles)
		r.Put("/:id/roles", s.PutRoles)
		r.Get("/:id/websites/:websiteId/roles", s.GetWebsiteRoles)
		r.Put("/:id/websites/:websiteId/roles", s.PutWebsiteRoles)
	})

	return nil
}

// List returns users newest first, filtered by the q query parameter.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := s.identity.GetUsers(c.UserContext(), c.Query("q"))
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(users)
}

// Create reconciles the posted identity. A new user answers 201, a merge 200.
func (s *Service) Create(c *fiber.Ctx) error {
	var candidate identity.Candidate
	if err := handler.Bind(c, s.validator, &candidate); err != nil {
		return err //nolint:wrapcheck
	}

	out, err := s.identity.CreateUser(c.UserContext(), candidate)
	if err != nil {
		return err //nolint:wrapcheck
	}

	status := fiber.StatusOK
	if out.Kind == identity.OutcomeCreated {
		status = fiber.StatusCreated
	}

	return c.Status(status).JSON(out)
}

// Find returns the users bound to the posted subject ids.
func (s *Service) Find(c *fiber.Ctx) error {
	var req FindRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	users, err := s.identity.FindUsers(c.UserContext(), req.SubjectIDs)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(users)
}

// Import runs the importer over the posted records.
func (s *Service) Import(c *fiber.Ctx) error {
	var records []models.ImportUser
	if err := c.BodyParser(&records); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	for i := range records {
		for _, role := range records[i].Roles {
			if err := s.validator.Struct(role); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid role in record %d: %v", i, err))
			}
		}
	}

	summary, err := s.identity.Importer().ImportUsers(c.UserContext(), records)
	if err != nil {
		return err //nolint:wrapcheck
	}

	log.Info().Int("records", summary.Records).Int("created", summary.Created).Msg("users imported via api")

	return c.JSON(summary)
}

// Get returns one user.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	user, err := s.identity.GetUser(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(user)
}

// Update applies a partial update.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var update identity.UserUpdate
	if err := handler.Bind(c, s.validator, &update); err != nil {
		return err //nolint:wrapcheck
	}

	user, err := s.identity.UpdateUser(c.UserContext(), id, update)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(user)
}

// Delete removes a user and its provider account.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err := s.identity.DeleteUser(c.UserContext(), id); err != nil {
		return err //nolint:wrapcheck
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Revoke dispatches refresh token revocation. The job runs in the background.
func (s *Service) Revoke(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if err := s.identity.RevokeSessions(c.UserContext(), id); err != nil {
		return err //nolint:wrapcheck
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// GetRoles returns the user's grants across all websites.
func (s *Service) GetRoles(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	rows, err := s.identity.Roles().GetRolesForUser(c.UserContext(), id)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(rows)
}

// PutRoles grants the posted roles. Nothing is revoked.
func (s *Service) PutRoles(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var req RolesRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	rows, err := s.identity.Roles().UpdateRolesForUser(c.UserContext(), id, req.RoleIDs)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(rows)
}

// GetWebsiteRoles returns every role of the website with the user's grant state.
func (s *Service) GetWebsiteRoles(c *fiber.Ctx) error {
	id, websiteID, err := userAndWebsite(c)
	if err != nil {
		return err
	}

	view, err := s.identity.Roles().GetRolesForUserByWebsite(c.UserContext(), id, websiteID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(view)
}

// PutWebsiteRoles applies the posted grant states atomically.
func (s *Service) PutWebsiteRoles(c *fiber.Ctx) error {
	id, websiteID, err := userAndWebsite(c)
	if err != nil {
		return err
	}

	var req WebsiteRolesRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	view, err := s.identity.Roles().UpdateRolesForUserByWebsite(c.UserContext(), id, websiteID, req.Roles)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return c.JSON(view)
}

func userAndWebsite(c *fiber.Ctx) (uint64, uint64, error) {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return 0, 0, err //nolint:wrapcheck
	}

	websiteID, err := handler.ParseID(c, paramWebsiteID)
	if err != nil {
		return 0, 0, err //nolint:wrapcheck
	}

	return id, websiteID, nil
}

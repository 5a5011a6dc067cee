package catalog

import (
	"github.com/gofiber/fiber/v2"

	"github.com/idam-admin/idam/internal/db/controller/organisation"
	"github.com/idam-admin/idam/internal/web/handler"
)

func (s *Service) listOrganisations(c *fiber.Ctx) error {
	orgs, err := organisation.GetAll(s.db)

	return respond(c, fiber.StatusOK, orgs, err)
}

func (s *Service) getOrganisation(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	org, err := organisation.Get(s.db, id)

	return respond(c, fiber.StatusOK, org, err)
}

func (s *Service) createOrganisation(c *fiber.Ctx) error {
	var req NameRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	org, err := organisation.Create(s.db, req.Name)

	return respond(c, fiber.StatusCreated, org, err)
}

func (s *Service) updateOrganisation(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var req NameRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	org, err := organisation.Update(s.db, id, req.Name)

	return respond(c, fiber.StatusOK, org, err)
}

func (s *Service) deleteOrganisation(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return deleted(c, organisation.Delete(s.db, id))
}

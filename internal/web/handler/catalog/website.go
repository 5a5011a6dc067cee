package catalog

import (
	"github.com/gofiber/fiber/v2"

	"github.com/idam-admin/idam/internal/db/controller/website"
	"github.com/idam-admin/idam/internal/web/handler"
)

func (s *Service) listWebsites(c *fiber.Ctx) error {
	if host := c.Query("host"); host != "" {
		site, err := website.GetByHost(s.db, host)

		return respond(c, fiber.StatusOK, site, err)
	}

	sites, err := website.GetAll(s.db)

	return respond(c, fiber.StatusOK, sites, err)
}

func (s *Service) getWebsite(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	site, err := website.Get(s.db, id)

	return respond(c, fiber.StatusOK, site, err)
}

func (s *Service) createWebsite(c *fiber.Ctx) error {
	var req website.Website
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	site, err := website.Create(s.db, req)

	return respond(c, fiber.StatusCreated, site, err)
}

func (s *Service) updateWebsite(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var req website.Website
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	site, err := website.Update(s.db, id, req)

	return respond(c, fiber.StatusOK, site, err)
}

func (s *Service) deleteWebsite(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return deleted(c, website.Delete(s.db, id))
}

package catalog

import (
	"github.com/gofiber/fiber/v2"

	"github.com/idam-admin/idam/internal/db/controller/service"
	"github.com/idam-admin/idam/internal/web/handler"
)

func (s *Service) listServices(c *fiber.Ctx) error {
	services, err := service.GetAll(s.db)

	return respond(c, fiber.StatusOK, services, err)
}

func (s *Service) getService(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	svc, err := service.Get(s.db, id)

	return respond(c, fiber.StatusOK, svc, err)
}

func (s *Service) createService(c *fiber.Ctx) error {
	var req NameRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	svc, err := service.Create(s.db, req.Name)

	return respond(c, fiber.StatusCreated, svc, err)
}

func (s *Service) updateService(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var req NameRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	svc, err := service.Update(s.db, id, req.Name)

	return respond(c, fiber.StatusOK, svc, err)
}

func (s *Service) deleteService(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return deleted(c, service.Delete(s.db, id))
}

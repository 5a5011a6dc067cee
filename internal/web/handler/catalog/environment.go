package catalog

import (
	"github.com/gofiber/fiber/v2"

	"github.com/idam-admin/idam/internal/db/controller/environment"
	"github.com/idam-admin/idam/internal/web/handler"
)

func (s *Service) listEnvironments(c *fiber.Ctx) error {
	envs, err := environment.GetAll(s.db)

	return respond(c, fiber.StatusOK, envs, err)
}

func (s *Service) getEnvironment(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	env, err := environment.Get(s.db, id)

	return respond(c, fiber.StatusOK, env, err)
}

func (s *Service) createEnvironment(c *fiber.Ctx) error {
	var req EnvironmentRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	env, err := environment.Create(s.db, req.Name, req.Order)

	return respond(c, fiber.StatusCreated, env, err)
}

func (s *Service) updateEnvironment(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	var req EnvironmentRequest
	if err := handler.Bind(c, s.validator, &req); err != nil {
		return err //nolint:wrapcheck
	}

	env, err := environment.Update(s.db, id, req.Name, req.Order)

	return respond(c, fiber.StatusOK, env, err)
}

func (s *Service) deleteEnvironment(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, handler.ParamID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return deleted(c, environment.Delete(s.db, id))
}

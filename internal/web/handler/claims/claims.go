// Package claims serves the claim sets used at token issuance.
package claims

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/idam-admin/idam/internal/claims"
	"github.com/idam-admin/idam/internal/web/handler"
)

// Path is the route group of the claims handler.
const Path = "/claims"

// Service is the claims handler service.
type Service struct {
	handler.Service
	projector *claims.Projector
}

// Handler is the claims handler.
var Handler = Service{}

// Init registers the claims routes on router.
func (s *Service) Init(router fiber.Router, deps handler.Deps) error {
	if router == nil || deps.Claims == nil {
		return errors.New(handler.ErrNilDepsFatalLogMsg)
	}

	s.projector = deps.Claims

	router.Get(Path+"/:subjectId", s.Get)

	return nil
}

// Get returns the claims of the subject. With host=true role claims carry their website host.
// A subject without user answers 404.
func (s *Service) Get(c *fiber.Ctx) error {
	subjectID, err := url.PathUnescape(c.Params("subjectId"))
	if err != nil || subjectID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "invalid subject id")
	}

	project := s.projector.Project
	if c.QueryBool("host") {
		project = s.projector.ProjectForRelyingParty
	}

	out, err := project(c.UserContext(), subjectID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if out == nil {
		return fiber.NewError(fiber.StatusNotFound, "no user for subject "+subjectID)
	}

	return c.JSON(out)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/idam-admin/idam/internal/auth"
	"github.com/idam-admin/idam/internal/db/controller/environment"
	"github.com/idam-admin/idam/internal/db/controller/organisation"
	"github.com/idam-admin/idam/internal/db/controller/role"
	"github.com/idam-admin/idam/internal/db/controller/service"
	"github.com/idam-admin/idam/internal/db/controller/terms"
	"github.com/idam-admin/idam/internal/db/controller/website"
	"github.com/idam-admin/idam/internal/db/store"
	"github.com/idam-admin/idam/internal/identity"
	"github.com/idam-admin/idam/internal/provider"
)

// ContentTypeProblem is the media type of error responses.
const ContentTypeProblem = "application/problem+json"

// Problem is an RFC 9457 problem details body.
type Problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

var statusByError = []struct {
	status int
	errs   []error
}{
	{http.StatusUnauthorized, []error{auth.ErrMissingToken, auth.ErrInvalidToken}},
	{http.StatusForbidden, []error{auth.ErrForbidden}},
	{http.StatusConflict, []error{
		identity.ErrDuplicateEmail,
		store.ErrConflict,
		organisation.ErrOrganisationAlreadyExists,
		service.ErrServiceAlreadyExists,
		service.ErrServiceInUse,
		environment.ErrEnvironmentAlreadyExists,
		environment.ErrEnvironmentInUse,
		website.ErrWebsiteAlreadyExists,
		role.ErrRoleAlreadyExists,
	}},
	{http.StatusNotFound, []error{
		identity.ErrNotFound,
		organisation.ErrOrganisationNotFound,
		service.ErrServiceNotFound,
		environment.ErrEnvironmentNotFound,
		website.ErrWebsiteNotFound,
		role.ErrRoleNotFound,
		terms.ErrTermsVersionNotFound,
		terms.ErrUserNotFound,
	}},
	{http.StatusBadRequest, []error{
		identity.ErrValidation,
		organisation.ErrOrganisationNameEmpty,
		service.ErrServiceNameEmpty,
		environment.ErrEnvironmentNameEmpty,
		website.ErrWebsiteHostEmpty,
		website.ErrServiceNotFound,
		website.ErrEnvironmentNotFound,
		role.ErrRoleNameEmpty,
		role.ErrWebsiteNotFound,
		terms.ErrVersionDateZero,
	}},
	{http.StatusBadGateway, []error{provider.ErrProviderUnavailable}},
	{http.StatusServiceUnavailable, []error{identity.ErrProviderDisabled}},
}

// Status maps an error to its HTTP status.
func Status(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	for _, entry := range statusByError {
		for _, target := range entry.errs {
			if errors.Is(err, target) {
				return entry.status
			}
		}
	}

	return http.StatusInternalServerError
}

// ErrorHandler renders errors as problem details. Details of internal errors are not exposed.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status := Status(err)

	problem := Problem{
		Type:   "about:blank",
		Title:  http.StatusText(status),
		Status: status,
		Detail: err.Error(),
	}

	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		log.Error().Err(err).Str("path", c.Path()).Msg("request failed")

		problem.Detail = ""
	}

	return c.Status(status).JSON(problem, ContentTypeProblem)
}

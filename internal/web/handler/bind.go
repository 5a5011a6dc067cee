package handler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ParseID reads the numeric route parameter name.
func ParseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid %s %q", name, c.Params(name)))
	}

	return id, nil
}

// Bind parses the JSON body into out and validates it.
func Bind(c *fiber.Ctx, validate *validator.Validate, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}

	if err := validate.Struct(out); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		messages := make([]string, len(validationErrors))
		for i, ve := range validationErrors {
			messages[i] = "field '" + ve.Field() + "' failed validation tag '" + ve.Tag() + "'"
		}

		return fiber.NewError(fiber.StatusBadRequest, strings.Join(messages, "; "))
	}

	return nil
}

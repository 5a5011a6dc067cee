package handler

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/idam-admin/idam/internal/claims"
	"github.com/idam-admin/idam/internal/identity"
)

// Deps are the services handlers are built from.
type Deps struct {
	DB       *gorm.DB
	Identity *identity.Service
	Claims   *claims.Projector
}

// Service is the interface for an API handler service.
type Service interface {
	Init(router fiber.Router, deps Deps) error
}

package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var ErrMissingHandler = errors.New("missing handler")

type ServerRouter interface {
	BuildRoutes(router *fiber.App) error
}

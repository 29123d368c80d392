package server

import (
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/config"
	"github.com/NeuralTrust/LearnGate/pkg/middleware"
	"github.com/NeuralTrust/LearnGate/pkg/server/router"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// DefaultBodyLimit is the transport ceiling used when none is given.
const DefaultBodyLimit = 8 * 1024 * 1024

// Server interface defines the common behavior for all servers
type Server interface {
	Run() error
	Shutdown() error
}

type BaseServer struct {
	Config *config.Config
	Logger *logrus.Logger
	Router *fiber.App
}

// NewBaseServer creates the fiber app shared by every server. bodyLimit is
// the transport ceiling; requests over it are answered by ErrorHandler
// before any middleware runs.
func NewBaseServer(cfg *config.Config, logger *logrus.Logger, bodyLimit int) *BaseServer {
	if bodyLimit <= 0 {
		bodyLimit = DefaultBodyLimit
	}
	r := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReduceMemoryUsage:     true,
		Network:               fiber.NetworkTCP,
		EnablePrintRoutes:     false,
		BodyLimit:             bodyLimit,
		ReadTimeout:           60 * time.Second,
		WriteTimeout:          60 * time.Second,
		IdleTimeout:           120 * time.Second,
		Concurrency:           16384,
		ErrorHandler:          ErrorHandler(logger),
	})

	r.Server().MaxConnsPerIP = 1024
	r.Server().ReadBufferSize = 8192
	r.Server().WriteBufferSize = 8192
	r.Server().NoDefaultServerHeader = true

	return &BaseServer{
		Config: cfg,
		Logger: logger,
		Router: r,
	}
}

func (s *BaseServer) WithRouters(routers ...router.ServerRouter) *BaseServer {
	for _, r := range routers {
		err := r.BuildRoutes(s.Router)
		if err != nil {
			s.Logger.WithError(err).Error("failed to build routes")
		}
	}
	return s
}

func (s *BaseServer) listen(name string, port int) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, port)
	s.Logger.WithField("addr", addr).Infof("starting %s server", name)
	return s.Router.Listen(addr)
}

// ErrorHandler renders errors that escaped the handlers, including the ones
// fasthttp raises before routing, as the gateway error payload.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		message, code := "Internal server error", types.CodeInternalError
		switch status {
		case fiber.StatusRequestEntityTooLarge:
			message, code = "Request entity too large", types.CodeRequestTooLarge
		case fiber.StatusNotFound:
			message, code = "Not found", types.CodeNotFound
		case fiber.StatusInternalServerError:
			logger.WithError(err).WithField("path", c.Path()).Error("unhandled error")
		default:
			if fe != nil {
				message, code = fe.Message, types.CodeBadRequest
			}
		}

		middleware.ApplySecurityHeaders(c)
		c.Locals(common.RejectionCodeKey, code)
		return c.Status(status).JSON(types.NewErrorResponse(message, code))
	}
}

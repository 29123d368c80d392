package http

import (
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getPolicyHandler struct {
	logger *logrus.Logger
	policy *policy.Policy
}

func NewGetPolicyHandler(logger *logrus.Logger, p *policy.Policy) Handler {
	return &getPolicyHandler{
		logger: logger,
		policy: p,
	}
}

// Handle @Summary Get the active security policy
// @Description Returns the limits, threat pattern sources and field sets the pipeline enforces
// @Tags Policy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} policy.Description
// @Failure 401 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /api/v1/policy [get]
func (h *getPolicyHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.policy.Describe())
}

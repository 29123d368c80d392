package http

import (
	"errors"

	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SecurityEventSummaryResponse struct {
	Total  int64                      `json:"total"`
	Counts []security_event.CodeCount `json:"counts"`
}

type securityEventSummaryHandler struct {
	logger *logrus.Logger
	repo   security_event.Repository
}

func NewSecurityEventSummaryHandler(logger *logrus.Logger, repo security_event.Repository) Handler {
	return &securityEventSummaryHandler{
		logger: logger,
		repo:   repo,
	}
}

// Handle @Summary Summarize security events
// @Description Returns rejection counts grouped by code and stage
// @Tags Security Events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SecurityEventSummaryResponse
// @Failure 401 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/security-events/summary [get]
func (h *securityEventSummaryHandler) Handle(c *fiber.Ctx) error {
	counts, err := h.repo.Summary(c.Context())
	if err != nil {
		if errors.Is(err, security_event.ErrStorageDisabled) {
			return c.Status(fiber.StatusServiceUnavailable).
				JSON(types.NewErrorResponse("Security event storage is disabled", types.CodeStorageDisabled))
		}
		h.logger.WithError(err).Error("failed to summarize security events")
		return c.Status(fiber.StatusInternalServerError).
			JSON(types.NewErrorResponse("Internal server error", types.CodeInternalError))
	}

	resp := SecurityEventSummaryResponse{Counts: counts}
	if resp.Counts == nil {
		resp.Counts = []security_event.CodeCount{}
	}
	for _, cc := range resp.Counts {
		resp.Total += cc.Count
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

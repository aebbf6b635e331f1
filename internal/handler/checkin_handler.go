package handler

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/internal/utils"
)

// CheckInHandler serves the public scan page API.
type CheckInHandler struct {
	checkIns  service.CheckInService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCheckInHandler constructs the handler.
func NewCheckInHandler(checkIns service.CheckInService, validator *validator.Validate, logger zerolog.Logger) *CheckInHandler {
	return &CheckInHandler{
		checkIns:  checkIns,
		validator: validator,
		logger:    logger.With().Str("component", "checkin_handler").Logger(),
	}
}

// Register binds /scan routes.
func (h *CheckInHandler) Register(router fiber.Router) {
	router.Get("/:code", h.lookup)
	router.Post("/:code/check-in", h.checkIn)
}

// sessionCode upper-cases what students type; stored codes are always upper case.
func sessionCode(c *fiber.Ctx) string {
	return strings.ToUpper(strings.TrimSpace(c.Params("code")))
}

func (h *CheckInHandler) lookup(c *fiber.Ctx) error {
	session, err := h.checkIns.Lookup(requestContext(c), sessionCode(c))
	if err != nil {
		return respondError(c, h.logger, err, "look up session")
	}
	return utils.SendSuccess(c, "session found", session)
}

func (h *CheckInHandler) checkIn(c *fiber.Ctx) error {
	var payload dto.CheckInRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validatePayload(c, h.validator, payload); err != nil {
		return err
	}

	response, err := h.checkIns.CheckIn(requestContext(c), sessionCode(c), payload.StudentNumber)
	if err != nil {
		return respondError(c, h.logger, err, "check in")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "checked in", response)
}

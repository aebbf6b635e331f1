package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/middleware"
	"github.com/noah-isme/school-ledger-api/internal/observability"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/internal/store"
	"github.com/noah-isme/school-ledger-api/internal/utils"
)

func requestContext(c *fiber.Ctx) context.Context {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return observability.WithCorrelationID(ctx, middleware.GetCorrelationID(c))
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// validationDetails maps each failing field to the rule it broke.
func validationDetails(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		rule := fieldErr.Tag()
		if fieldErr.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fieldErr.Param())
		}
		details[fieldErr.Namespace()] = rule
	}
	return details
}

func validatePayload(c *fiber.Ctx, validate *validator.Validate, payload interface{}) error {
	if err := validate.Struct(payload); err != nil {
		return utils.SendFailure(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	}
	return nil
}

func requiredParam(c *fiber.Ctx, key string) (string, bool) {
	value := strings.TrimSpace(c.Params(key))
	return value, value != ""
}

// respondError translates ledger errors into HTTP statuses.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, action string) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "session not found")
	case errors.Is(err, service.ErrScoreUnitNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "score unit not found")
	case errors.Is(err, service.ErrClassNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "class not found")
	case errors.Is(err, service.ErrStudentNotEnrolled):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSessionExpired):
		return utils.SendError(c, fiber.StatusGone, "session has expired")
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		return utils.SendError(c, fiber.StatusConflict, "already checked in")
	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidExpiry):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidBackup):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, err.Error())
	case isValidationError(err):
		return utils.SendFailure(c, fiber.StatusUnprocessableEntity, "validation failed", validationDetails(err))
	case errors.Is(err, store.ErrStorage):
		requestLogger(logger, c).Error().Err(err).Msg("storage failure while trying to " + action)
		return utils.SendError(c, fiber.StatusServiceUnavailable, "storage unavailable, changes were not saved")
	default:
		requestLogger(logger, c).Error().Err(err).Msg("failed to " + action)
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to "+action)
	}
}

package handler

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/export"
	"github.com/noah-isme/school-ledger-api/internal/grading"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GradeHandler exposes the grade scale and class gradebooks.
type GradeHandler struct {
	grades    service.GradeScaleService
	gradebook service.GradebookService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(grades service.GradeScaleService, gradebook service.GradebookService, validator *validator.Validate, logger zerolog.Logger) *GradeHandler {
	return &GradeHandler{
		grades:    grades,
		gradebook: gradebook,
		validator: validator,
		logger:    logger.With().Str("component", "grade_handler").Logger(),
	}
}

// RegisterScale binds /grade-scale routes.
func (h *GradeHandler) RegisterScale(router fiber.Router) {
	router.Get("/", h.getScale)
	router.Put("/", h.saveScale)
	router.Post("/reset", h.resetScale)
	router.Get("/classify", h.classify)
}

// RegisterGradebook binds gradebook routes under /classes.
func (h *GradeHandler) RegisterGradebook(router fiber.Router) {
	router.Get("/:classId/gradebook", h.gradebookJSON)
	router.Get("/:classId/gradebook.xlsx", h.gradebookXLSX)
}

func (h *GradeHandler) getScale(c *fiber.Ctx) error {
	scale, err := h.grades.Get(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "load grade scale")
	}
	return utils.SendSuccess(c, "grade scale", dto.NewGradeScaleResponse(scale))
}

func (h *GradeHandler) saveScale(c *fiber.Ctx) error {
	var payload grading.Scale
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validatePayload(c, h.validator, payload); err != nil {
		return err
	}

	scale, err := h.grades.Save(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "save grade scale")
	}

	message := "grade scale saved"
	if !scale.Monotonic() {
		message = "grade scale saved; thresholds are not in descending order"
	}
	return utils.SendSuccess(c, message, dto.NewGradeScaleResponse(scale))
}

func (h *GradeHandler) resetScale(c *fiber.Ctx) error {
	scale, err := h.grades.Reset(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "reset grade scale")
	}
	return utils.SendSuccess(c, "grade scale reset", dto.NewGradeScaleResponse(scale))
}

func (h *GradeHandler) classify(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("percentage"))
	percentage, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "percentage must be a number")
	}

	letter, err := h.grades.Classify(requestContext(c), percentage)
	if err != nil {
		return respondError(c, h.logger, err, "classify percentage")
	}
	return utils.SendSuccess(c, "classified", dto.ClassifyResponse{
		Percentage: percentage,
		Letter:     letter,
		GradePoint: grading.GradePoint(letter),
	})
}

func (h *GradeHandler) gradebookJSON(c *fiber.Ctx) error {
	report, err := h.gradebook.Build(requestContext(c), c.Params("classId"))
	if err != nil {
		return respondError(c, h.logger, err, "build gradebook")
	}
	return utils.SendSuccess(c, "gradebook", report)
}

func (h *GradeHandler) gradebookXLSX(c *fiber.Ctx) error {
	report, err := h.gradebook.Build(requestContext(c), c.Params("classId"))
	if err != nil {
		return respondError(c, h.logger, err, "build gradebook")
	}

	var buf bytes.Buffer
	if err := export.WriteGradebook(&buf, report); err != nil {
		return respondError(c, h.logger, err, "render gradebook")
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, export.GradebookFilename(report)))
	return c.Send(buf.Bytes())
}

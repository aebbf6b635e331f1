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

// AttendanceHandler exposes the attendance ledger of a class.
type AttendanceHandler struct {
	service   service.AttendanceService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service service.AttendanceService, validator *validator.Validate, logger zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "attendance_handler").Logger(),
	}
}

// Register binds attendance routes under /classes.
func (h *AttendanceHandler) Register(router fiber.Router) {
	router.Get("/:classId/attendance", h.day)
	router.Put("/:classId/attendance", h.set)
	router.Post("/:classId/attendance/bulk", h.bulkSet)
	router.Get("/:classId/attendance/dates", h.dates)
	router.Get("/:classId/attendance/students/:studentId", h.student)
}

func (h *AttendanceHandler) day(c *fiber.Ctx) error {
	classID, ok := requiredParam(c, "classId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "class id required")
	}
	date := strings.TrimSpace(c.Query("date"))
	if date == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "date query parameter required")
	}

	summary, err := h.service.ClassSummary(requestContext(c), classID, date)
	if err != nil {
		return respondError(c, h.logger, err, "load attendance")
	}
	return utils.SendSuccess(c, "attendance retrieved", summary)
}

func (h *AttendanceHandler) set(c *fiber.Ctx) error {
	classID, ok := requiredParam(c, "classId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "class id required")
	}

	var payload dto.AttendanceSetRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validatePayload(c, h.validator, payload); err != nil {
		return err
	}

	record, err := h.service.Set(requestContext(c), classID, payload.StudentID, payload.Date, payload.Status)
	if err != nil {
		return respondError(c, h.logger, err, "record attendance")
	}
	return utils.SendSuccess(c, "attendance recorded", record)
}

func (h *AttendanceHandler) bulkSet(c *fiber.Ctx) error {
	classID, ok := requiredParam(c, "classId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "class id required")
	}

	var payload dto.AttendanceBulkRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validatePayload(c, h.validator, payload); err != nil {
		return err
	}

	records, err := h.service.BulkSet(requestContext(c), classID, payload.Date, payload.Entries)
	if err != nil {
		return respondError(c, h.logger, err, "record attendance")
	}
	return utils.SendSuccess(c, "attendance recorded", records)
}

func (h *AttendanceHandler) dates(c *fiber.Ctx) error {
	classID, ok := requiredParam(c, "classId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "class id required")
	}

	dates, err := h.service.GetDatesByClass(requestContext(c), classID)
	if err != nil {
		return respondError(c, h.logger, err, "list attendance dates")
	}
	return utils.SendSuccess(c, "attendance dates", dto.AttendanceDatesResponse{ClassID: classID, Dates: dates})
}

func (h *AttendanceHandler) student(c *fiber.Ctx) error {
	classID, ok := requiredParam(c, "classId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "class id required")
	}
	studentID, ok := requiredParam(c, "studentId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "student id required")
	}

	ctx := requestContext(c)
	records, err := h.service.GetByStudentClass(ctx, studentID, classID)
	if err != nil {
		return respondError(c, h.logger, err, "load attendance")
	}
	stats, err := h.service.CalculatePercentage(ctx, studentID, classID)
	if err != nil {
		return respondError(c, h.logger, err, "calculate attendance")
	}

	return utils.SendSuccess(c, "student attendance", dto.AttendanceStatsResponse{
		ClassID:         classID,
		StudentID:       studentID,
		AttendanceStats: stats,
		Records:         records,
	})
}

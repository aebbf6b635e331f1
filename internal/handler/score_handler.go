package handler

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/grading"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/internal/utils"
)

const maxImportRows = 2000

// ScoreHandler exposes score units and the score ledger.
type ScoreHandler struct {
	scores    service.ScoreService
	grades    service.GradeScaleService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewScoreHandler constructs the handler.
func NewScoreHandler(scores service.ScoreService, grades service.GradeScaleService, validator *validator.Validate, logger zerolog.Logger) *ScoreHandler {
	return &ScoreHandler{
		scores:    scores,
		grades:    grades,
		validator: validator,
		logger:    logger.With().Str("component", "score_handler").Logger(),
	}
}

// RegisterUnits binds /score-units routes.
func (h *ScoreHandler) RegisterUnits(router fiber.Router) {
	router.Post("/", h.createUnit)
	router.Get("/:id", h.getUnit)
	router.Put("/:id", h.updateUnit)
	router.Delete("/:id", h.deleteUnit)
	router.Get("/:id/scores", h.unitScores)
	router.Put("/:id/scores", h.setScore)
}

// RegisterClassRoutes binds the class scoped score routes under /classes.
func (h *ScoreHandler) RegisterClassRoutes(router fiber.Router) {
	router.Get("/:classId/score-units", h.listUnits)
	router.Post("/:classId/score-units/:id/import", h.importScores)
	router.Get("/:classId/students/:studentId/scores", h.studentTotal)
}

func (h *ScoreHandler) createUnit(c *fiber.Ctx) error {
	var payload dto.ScoreUnitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validatePayload(c, h.validator, payload); err != nil {
		return err
	}

	unit, err := h.scores.CreateUnit(requestContext(c), payload)
	if err != nil {
		return respondError(c, h.logger, err, "create score unit")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "score unit created", unit)
}

func (h *ScoreHandler) getUnit(c *fiber.Ctx) error {
	unit, err := h.scores.GetUnit(requestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "load score unit")
	}
	return utils.SendSuccess(c, "score unit retrieved", unit)
}

func (h *ScoreHandler) updateUnit(c *fiber.Ctx) error {
	var payload dto.ScoreUnitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validatePayload(c, h.validator, payload); err != nil {
		return err
	}

	unit, err := h.scores.UpdateUnit(requestContext(c), c.Params("id"), payload)
	if err != nil {
		return respondError(c, h.logger, err, "update score unit")
	}
	return utils.SendSuccess(c, "score unit updated", unit)
}

func (h *ScoreHandler) deleteUnit(c *fiber.Ctx) error {
	id := c.Params("id")
	removed, err := h.scores.DeleteUnit(requestContext(c), id)
	if err != nil {
		return respondError(c, h.logger, err, "delete score unit")
	}
	return utils.SendSuccess(c, "score unit deleted", dto.ScoreUnitDeleteResponse{UnitID: id, ScoresRemoved: removed})
}

func (h *ScoreHandler) listUnits(c *fiber.Ctx) error {
	classID, ok := requiredParam(c, "classId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "class id required")
	}

	ctx := requestContext(c)
	units, err := h.scores.ListUnits(ctx, classID)
	if err != nil {
		return respondError(c, h.logger, err, "list score units")
	}
	total, err := h.scores.TotalWeight(ctx, classID)
	if err != nil {
		return respondError(c, h.logger, err, "sum unit weights")
	}

	return utils.SendSuccess(c, "score units", dto.ScoreUnitListResponse{
		ClassID:       classID,
		Units:         units,
		TotalWeight:   total,
		WeightWarning: len(units) > 0 && math.Abs(total-100) > 1e-9,
	})
}

func (h *ScoreHandler) unitScores(c *fiber.Ctx) error {
	records, err := h.scores.GetByUnit(requestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "load scores")
	}
	return utils.SendSuccess(c, "scores retrieved", records)
}

func (h *ScoreHandler) setScore(c *fiber.Ctx) error {
	var payload dto.ScoreSetRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validatePayload(c, h.validator, payload); err != nil {
		return err
	}

	entry, err := h.scores.Set(requestContext(c), payload.StudentID, c.Params("id"), rawScore(payload.Score))
	if err != nil {
		return respondError(c, h.logger, err, "record score")
	}

	message := "score recorded"
	switch {
	case entry.Unparsed:
		message = "score was not a number and was recorded as 0"
	case entry.Clamped:
		message = "score was clamped to the unit range"
	}
	return utils.SendSuccess(c, message, entry)
}

// rawScore turns the decoded JSON value back into the text the ledger parses.
func rawScore(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (h *ScoreHandler) studentTotal(c *fiber.Ctx) error {
	classID, ok := requiredParam(c, "classId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "class id required")
	}
	studentID, ok := requiredParam(c, "studentId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "student id required")
	}

	ctx := requestContext(c)
	records, err := h.scores.GetByStudentClass(ctx, studentID, classID)
	if err != nil {
		return respondError(c, h.logger, err, "load scores")
	}
	total, err := h.scores.CalculateTotal(ctx, studentID, classID)
	if err != nil {
		return respondError(c, h.logger, err, "calculate total")
	}
	letter, err := h.grades.Classify(ctx, total.Percentage)
	if err != nil {
		return respondError(c, h.logger, err, "classify total")
	}

	return utils.SendSuccess(c, "student total", dto.ScoreTotalResponse{
		ClassID:    classID,
		StudentID:  studentID,
		ScoreTotal: total,
		Letter:     letter,
		GradePoint: grading.GradePoint(letter),
		Scores:     records,
	})
}

func (h *ScoreHandler) importScores(c *fiber.Ctx) error {
	classID, ok := requiredParam(c, "classId")
	if !ok {
		return utils.SendError(c, fiber.StatusBadRequest, "class id required")
	}

	rows, err := parseScoreCSV(c.Body())
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	result, err := h.scores.ImportScores(requestContext(c), classID, c.Params("id"), rows)
	if err != nil {
		return respondError(c, h.logger, err, "import scores")
	}
	return utils.SendSuccess(c, fmt.Sprintf("%d scores imported", result.Imported), result)
}

// parseScoreCSV reads "student_number,score" lines. A leading header row is skipped.
func parseScoreCSV(body []byte) ([]dto.ScoreImportRow, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.New("csv body is empty")
	}

	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows := make([]dto.ScoreImportRow, 0)
	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		line++
		if line == 1 && isScoreHeader(record) {
			continue
		}
		if len(rows) >= maxImportRows {
			return nil, fmt.Errorf("csv exceeds %d rows", maxImportRows)
		}

		row := dto.ScoreImportRow{Line: line}
		if len(record) > 0 {
			row.StudentNumber = strings.TrimSpace(record[0])
		}
		if len(record) > 1 {
			row.Score = strings.TrimSpace(record[1])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isScoreHeader(record []string) bool {
	if len(record) < 2 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	first := strings.ToLower(strings.TrimSpace(record[0]))
	return err != nil && (strings.Contains(first, "student") || strings.Contains(first, "number") || strings.Contains(first, "nim"))
}

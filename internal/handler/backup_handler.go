package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/internal/utils"
)

// BackupHandler exports and restores the whole dataset.
type BackupHandler struct {
	backup service.BackupService
	logger zerolog.Logger
}

// NewBackupHandler constructs the handler.
func NewBackupHandler(backup service.BackupService, logger zerolog.Logger) *BackupHandler {
	return &BackupHandler{
		backup: backup,
		logger: logger.With().Str("component", "backup_handler").Logger(),
	}
}

// Register binds /backup routes.
func (h *BackupHandler) Register(router fiber.Router) {
	router.Get("/", h.export)
	router.Post("/import", h.importBackup)
}

func (h *BackupHandler) export(c *fiber.Ctx) error {
	document, err := h.backup.Export(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "export dataset")
	}

	filename := fmt.Sprintf("ledger_backup_%s.json", document.ExportedAt.Format("2006-01-02"))
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.JSON(document)
}

func (h *BackupHandler) importBackup(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "backup document required")
	}

	result, err := h.backup.Import(requestContext(c), c.Body())
	if err != nil {
		return respondError(c, h.logger, err, "import dataset")
	}

	requestLogger(h.logger, c).Info().Strs("collections", result.Collections).Msg("dataset restored")
	return utils.SendSuccess(c, "dataset restored", result)
}

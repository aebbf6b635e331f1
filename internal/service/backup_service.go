package service

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

// ErrInvalidBackup indicates an import document that does not match the backup schema.
var ErrInvalidBackup = errors.New("invalid backup document")

//go:embed schema/backup.schema.json
var backupSchemaSource string

const backupSchemaURL = "backup.schema.json"

// BackupService exports and restores the whole dataset.
type BackupService interface {
	Export(ctx context.Context) (dto.BackupDocument, error)
	Import(ctx context.Context, raw []byte) (dto.BackupImportResponse, error)
}

type backupService struct {
	store  store.Store
	schema *jsonschema.Schema
	logger zerolog.Logger
	now    func() time.Time
}

// NewBackupService compiles the embedded schema and binds the service to a store.
func NewBackupService(s store.Store, logger zerolog.Logger) (BackupService, error) {
	schema, err := jsonschema.CompileString(backupSchemaURL, backupSchemaSource)
	if err != nil {
		return nil, fmt.Errorf("compile backup schema: %w", err)
	}
	return &backupService{
		store:  s,
		schema: schema,
		logger: logger.With().Str("component", "backup_service").Logger(),
		now:    time.Now,
	}, nil
}

func (s *backupService) Export(ctx context.Context) (dto.BackupDocument, error) {
	data := make(map[string]json.RawMessage, len(store.Collections))
	for _, name := range store.Collections {
		doc, err := s.store.Load(ctx, name)
		if err != nil {
			recordStorageFailure("backup.export", err)
			return dto.BackupDocument{}, err
		}
		if len(doc) == 0 {
			doc, err = emptyDocument(name)
			if err != nil {
				return dto.BackupDocument{}, err
			}
		}
		data[name] = json.RawMessage(doc)
	}

	return dto.BackupDocument{
		Version:    dto.BackupVersion,
		ExportedAt: s.now().UTC(),
		Data:       data,
	}, nil
}

// Import replaces every collection present in the document. Collections are written one
// by one, so a storage failure midway leaves the earlier ones restored.
func (s *backupService) Import(ctx context.Context, raw []byte) (dto.BackupImportResponse, error) {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return dto.BackupImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if err := s.schema.Validate(payload); err != nil {
		return dto.BackupImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	var document dto.BackupDocument
	if err := json.Unmarshal(raw, &document); err != nil {
		return dto.BackupImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	imported := make([]string, 0, len(document.Data))
	for _, name := range store.Collections {
		doc, ok := document.Data[name]
		if !ok {
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, doc); err != nil {
			return dto.BackupImportResponse{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
		}

		err := store.WithLock(s.store, name, func() error {
			return s.store.Save(ctx, name, compact.Bytes())
		})
		if err != nil {
			recordStorageFailure("backup.import", err)
			s.logger.Error().Err(err).Str("collection", name).Strs("imported", imported).Msg("backup import interrupted")
			return dto.BackupImportResponse{Collections: imported}, err
		}
		imported = append(imported, name)
	}

	s.logger.Info().Str("collections", strings.Join(imported, ",")).Msg("backup imported")
	return dto.BackupImportResponse{Collections: imported}, nil
}

func emptyDocument(name string) ([]byte, error) {
	if name == store.CollectionSettings {
		return json.Marshal(models.DefaultSettings())
	}
	return []byte("[]"), nil
}

package dto

import (
	"encoding/json"
	"time"
)

// BackupVersion tags exported datasets.
const BackupVersion = "1.0"

// BackupDocument is a whole-dataset export.
type BackupDocument struct {
	Version    string                     `json:"version"`
	ExportedAt time.Time                  `json:"exported_at"`
	Data       map[string]json.RawMessage `json:"data"`
}

// BackupImportResponse lists the collections replaced by an import.
type BackupImportResponse struct {
	Collections []string `json:"collections"`
}

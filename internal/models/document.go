package models

import (
	"time"

	"gorm.io/datatypes"
)

// StoredDocument persists one whole record collection as a JSON document.
type StoredDocument struct {
	Name      string         `gorm:"primaryKey;size:64" json:"name"`
	Body      datatypes.JSON `gorm:"type:json" json:"body"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName pins the table used by the document store.
func (StoredDocument) TableName() string {
	return "stored_documents"
}

package service

import (
	"errors"
	"math"
	"strings"

	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/observability"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

// ErrInvalidDate indicates a date that is not a YYYY-MM-DD calendar day.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// roundTenth rounds half away from zero on the tenths digit.
func roundTenth(value float64) float64 {
	return math.Round(value*10) / 10
}

func normalizeDate(value string) (string, error) {
	parsed, err := models.ParseDate(value)
	if err != nil {
		return "", ErrInvalidDate
	}
	return parsed.Format(models.DateLayout), nil
}

func stringPtr(value string) *string {
	return &value
}

func trimmed(value string) string {
	return strings.TrimSpace(value)
}

// recordStorageFailure counts failed store operations for the given operation label.
func recordStorageFailure(operation string, err error) {
	if errors.Is(err, store.ErrStorage) {
		observability.StorageFailures().WithLabelValues(operation).Inc()
	}
}

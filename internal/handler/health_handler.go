package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/school-ledger-api/internal/config"
	"github.com/noah-isme/school-ledger-api/internal/utils"
)

const healthProbeTimeout = 2 * time.Second

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Store       string    `json:"store"`
	StoreError  string    `json:"store_error,omitempty"`
}

// HealthCheck reports service identity and whether the record store answers.
// A nil probe skips the store check.
func HealthCheck(cfg config.Config, probe func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Store:       cfg.StoreDriver,
		}

		if probe != nil {
			ctx, cancel := context.WithTimeout(requestContext(c), healthProbeTimeout)
			defer cancel()
			if err := probe(ctx); err != nil {
				payload.Status = "degraded"
				payload.StoreError = err.Error()
				return utils.SendSuccessWithStatus(c, fiber.StatusServiceUnavailable, "record store unavailable", payload)
			}
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}

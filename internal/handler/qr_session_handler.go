package handler

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/events"
	"github.com/noah-isme/school-ledger-api/internal/models"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/internal/utils"
)

const liveFeedPingInterval = 20 * time.Second

// CheckInFeed streams check-in events of one session.
type CheckInFeed interface {
	Subscribe(sessionID string) (<-chan events.CheckInEvent, func())
}

// LiveFeedMessage is pushed to teachers watching a session.
type LiveFeedMessage struct {
	Type    string                 `json:"type"`
	Session *dto.QRSessionResponse `json:"session,omitempty"`
	CheckIn *events.CheckInEvent   `json:"check_in,omitempty"`
}

// QRSessionHandler lets teachers run check-in sessions.
type QRSessionHandler struct {
	sessions   service.QRSessionService
	feed       CheckInFeed
	validator  *validator.Validate
	defaultTTL time.Duration
	now        func() time.Time
	logger     zerolog.Logger
}

// NewQRSessionHandler constructs the handler. defaultTTL applies when a request omits the expiry.
func NewQRSessionHandler(sessions service.QRSessionService, feed CheckInFeed, validator *validator.Validate, defaultTTL time.Duration, logger zerolog.Logger) *QRSessionHandler {
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &QRSessionHandler{
		sessions:   sessions,
		feed:       feed,
		validator:  validator,
		defaultTTL: defaultTTL,
		now:        time.Now,
		logger:     logger.With().Str("component", "qr_session_handler").Logger(),
	}
}

// Register binds /qr-sessions routes.
func (h *QRSessionHandler) Register(router fiber.Router) {
	router.Post("/", h.create)
	router.Get("/", h.listOpen)
	router.Get("/:id", h.get)
	router.Post("/:id/deactivate", h.deactivate)

	router.Use("/:id/live", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("request_ctx", requestContext(c))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/:id/live", websocket.New(h.live))
}

// RegisterClassRoutes binds the class scoped session listing under /classes.
func (h *QRSessionHandler) RegisterClassRoutes(router fiber.Router) {
	router.Get("/:classId/qr-sessions", h.activeByClass)
}

func (h *QRSessionHandler) respond(session models.QRSession) dto.QRSessionResponse {
	return dto.NewQRSessionResponse(session, h.sessions.ScanURL(session.SessionCode), h.now().UTC())
}

func (h *QRSessionHandler) respondAll(sessions []models.QRSession) []dto.QRSessionResponse {
	result := make([]dto.QRSessionResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, h.respond(session))
	}
	return result
}

func (h *QRSessionHandler) create(c *fiber.Ctx) error {
	var payload dto.QRSessionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := validatePayload(c, h.validator, payload); err != nil {
		return err
	}

	now := h.now().UTC()
	date := payload.Date
	if date == "" {
		date = now.Format(models.DateLayout)
	}
	ttl := h.defaultTTL
	if payload.ExpiresInMinutes > 0 {
		ttl = time.Duration(payload.ExpiresInMinutes) * time.Minute
	}

	session, err := h.sessions.Create(requestContext(c), payload.ClassID, date, now.Add(ttl))
	if err != nil {
		return respondError(c, h.logger, err, "open session")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "session opened", h.respond(session))
}

func (h *QRSessionHandler) listOpen(c *fiber.Ctx) error {
	sessions, err := h.sessions.ListOpen(requestContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "list sessions")
	}
	return utils.SendSuccess(c, "open sessions", h.respondAll(sessions))
}

func (h *QRSessionHandler) activeByClass(c *fiber.Ctx) error {
	sessions, err := h.sessions.ActiveByClass(requestContext(c), c.Params("classId"))
	if err != nil {
		return respondError(c, h.logger, err, "list sessions")
	}
	return utils.SendSuccess(c, "open sessions", h.respondAll(sessions))
}

func (h *QRSessionHandler) get(c *fiber.Ctx) error {
	session, err := h.sessions.Get(requestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "load session")
	}
	return utils.SendSuccess(c, "session retrieved", h.respond(session))
}

func (h *QRSessionHandler) deactivate(c *fiber.Ctx) error {
	session, err := h.sessions.Deactivate(requestContext(c), c.Params("id"))
	if err != nil {
		return respondError(c, h.logger, err, "close session")
	}
	return utils.SendSuccess(c, "session closed", h.respond(session))
}

func (h *QRSessionHandler) live(conn *websocket.Conn) {
	sessionID := conn.Params("id")
	ctx, _ := conn.Locals("request_ctx").(context.Context)
	if ctx == nil {
		ctx = context.Background()
	}

	session, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "session not found"))
		_ = conn.Close()
		return
	}

	stream, cancel := h.feed.Subscribe(sessionID)
	defer cancel()

	snapshot := h.respond(session)
	if err := conn.WriteJSON(LiveFeedMessage{Type: "snapshot", Session: &snapshot}); err != nil {
		return
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(liveFeedPingInterval)
	defer ticker.Stop()

	h.logger.Debug().Str("session_id", sessionID).Msg("live feed connected")
	for {
		select {
		case event, ok := <-stream:
			if !ok {
				return
			}
			if err := conn.WriteJSON(LiveFeedMessage{Type: "check_in", CheckIn: &event}); err != nil {
				h.logger.Debug().Err(err).Str("session_id", sessionID).Msg("live feed write failed")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			h.logger.Debug().Str("session_id", sessionID).Msg("live feed disconnected")
			return
		}
	}
}

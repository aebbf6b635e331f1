package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/dto"
	"github.com/noah-isme/school-ledger-api/internal/handler"
	"github.com/noah-isme/school-ledger-api/internal/service"
	"github.com/noah-isme/school-ledger-api/internal/store"
)

type mockCheckInService struct {
	lastCode   string
	lastNumber string
	response   dto.CheckInResponse
	err        error
}

func (m *mockCheckInService) Lookup(_ context.Context, code string) (dto.ScanLookupResponse, error) {
	m.lastCode = code
	if m.err != nil {
		return dto.ScanLookupResponse{}, m.err
	}
	return dto.ScanLookupResponse{SessionCode: code, ClassID: "c1", Open: true}, nil
}

func (m *mockCheckInService) CheckIn(_ context.Context, code, studentNumber string) (dto.CheckInResponse, error) {
	m.lastCode = code
	m.lastNumber = studentNumber
	if m.err != nil {
		return dto.CheckInResponse{}, m.err
	}
	return m.response, nil
}

func newCheckInApp(svc service.CheckInService) *fiber.App {
	app := fiber.New()
	validate := validator.New(validator.WithRequiredStructEnabled())
	handler.NewCheckInHandler(svc, validate, zerolog.New(io.Discard)).Register(app.Group("/api/v1/scan"))
	return app
}

func postCheckIn(t *testing.T, app *fiber.App, code string, payload interface{}) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scan/"+code+"/check-in", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestCheckInHandler_Success(t *testing.T) {
	svc := &mockCheckInService{response: dto.CheckInResponse{SessionID: "q1", StudentID: "s1", ScannedCount: 3}}
	app := newCheckInApp(svc)

	resp := postCheckIn(t, app, "ab12cd", dto.CheckInRequest{StudentNumber: "1001"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.CheckInResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Equal(t, 3, response.Data.ScannedCount)
	require.Equal(t, "AB12CD", svc.lastCode)
	require.Equal(t, "1001", svc.lastNumber)
}

func TestCheckInHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: service.ErrSessionNotFound, status: fiber.StatusNotFound},
		{err: service.ErrStudentNotEnrolled, status: fiber.StatusNotFound},
		{err: service.ErrSessionExpired, status: fiber.StatusGone},
		{err: service.ErrAlreadyCheckedIn, status: fiber.StatusConflict},
		{err: fmt.Errorf("%w: quota exceeded", store.ErrStorage), status: fiber.StatusServiceUnavailable},
		{err: fmt.Errorf("boom"), status: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			app := newCheckInApp(&mockCheckInService{err: tc.err})
			resp := postCheckIn(t, app, "AB12CD", dto.CheckInRequest{StudentNumber: "1001"})
			require.Equal(t, tc.status, resp.StatusCode)

			var response struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			decodeResponse(t, resp, &response)
			require.False(t, response.Success)
			require.NotEmpty(t, response.Message)
		})
	}
}

func TestCheckInHandler_ValidatesPayload(t *testing.T) {
	svc := &mockCheckInService{}
	app := newCheckInApp(svc)

	resp := postCheckIn(t, app, "AB12CD", map[string]string{})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var response struct {
		Errors map[string]string `json:"errors"`
	}
	decodeResponse(t, resp, &response)
	require.Equal(t, "required", response.Errors["CheckInRequest.StudentNumber"])
	require.Empty(t, svc.lastNumber)
}

func TestCheckInHandler_Lookup(t *testing.T) {
	svc := &mockCheckInService{}
	app := newCheckInApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/scan/xy99zz", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "XY99ZZ", svc.lastCode)
}

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-ledger-api/internal/observability"
)

func TestCorrelationIDPropagation(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetCorrelationID(c) + "|" + observability.CorrelationID(c.UserContext()))
	})

	cases := []struct {
		name   string
		header string
		value  string
		want   string
	}{
		{name: "correlation header", header: "X-Correlation-ID", value: "abc-1", want: "abc-1"},
		{name: "request id fallback", header: "X-Request-ID", value: "req-9", want: "req-9"},
		{name: "generated", want: ""},
		{name: "oversized replaced", header: "X-Correlation-ID", value: strings.Repeat("x", 80), want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			id := resp.Header.Get("X-Correlation-ID")
			require.NotEmpty(t, id)
			if tc.want != "" {
				require.Equal(t, tc.want, id)
			} else {
				require.Len(t, id, 36)
			}

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Equal(t, id+"|"+id, string(body))
		})
	}
}

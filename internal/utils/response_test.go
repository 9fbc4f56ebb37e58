package utils_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ideaforge-api/internal/utils"
)

func TestResponseEnvelopes(t *testing.T) {
	cases := []struct {
		name    string
		handler fiber.Handler
		status  int
		want    utils.APIResponse
	}{
		{
			name:    "ok defaults message and keeps meta",
			handler: func(c *fiber.Ctx) error { return utils.OK(c, []string{"a"}, "", fiber.Map{"total": 1}) },
			status:  fiber.StatusOK,
			want:    utils.APIResponse{Success: true, Message: "success", Data: []interface{}{"a"}, Meta: map[string]interface{}{"total": float64(1)}},
		},
		{
			name: "created status",
			handler: func(c *fiber.Ctx) error {
				return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "analysis complete", nil)
			},
			status: fiber.StatusCreated,
			want:   utils.APIResponse{Success: true, Message: "analysis complete"},
		},
		{
			name: "fail with details",
			handler: func(c *fiber.Ctx) error {
				return utils.Fail(c, fiber.StatusBadRequest, "invalid payload", fiber.Map{"field": "text"})
			},
			status: fiber.StatusBadRequest,
			want:   utils.APIResponse{Message: "invalid payload", Details: map[string]interface{}{"field": "text"}},
		},
		{
			name: "coded failure defaults message",
			handler: func(c *fiber.Ctx) error {
				return utils.FailWithCode(c, fiber.StatusServiceUnavailable, "analyzer_not_configured", "")
			},
			status: fiber.StatusServiceUnavailable,
			want:   utils.APIResponse{Message: "error", Code: "analyzer_not_configured"},
		},
		{
			name:    "plain error",
			handler: func(c *fiber.Ctx) error { return utils.SendError(c, fiber.StatusNotFound, "idea not found") },
			status:  fiber.StatusNotFound,
			want:    utils.APIResponse{Message: "idea not found"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", tc.handler)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil), -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tc.status, resp.StatusCode)

			var got utils.APIResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			require.Equal(t, tc.want, got)
		})
	}
}

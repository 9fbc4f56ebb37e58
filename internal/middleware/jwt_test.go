package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ideaforge-api/internal/middleware"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func subjectApp(guard fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(guard)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(middleware.SubjectFromContext(c))
	})
	return app
}

func perform(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestJWTProtectedStoresSubject(t *testing.T) {
	app := subjectApp(middleware.JWTProtected(testSecret))
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "founder-7",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	resp := perform(t, app, "Bearer "+token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := make([]byte, 32)
	n, _ := resp.Body.Read(body)
	require.Equal(t, "founder-7", string(body[:n]))
}

func TestJWTProtectedRejectsMissingAndForgedTokens(t *testing.T) {
	app := subjectApp(middleware.JWTProtected(testSecret))

	require.Equal(t, fiber.StatusUnauthorized, perform(t, app, "").StatusCode)
	require.Equal(t, fiber.StatusUnauthorized, perform(t, app, "Token abc").StatusCode)

	forged := signToken(t, "other-secret", jwt.MapClaims{"sub": "intruder"})
	require.Equal(t, fiber.StatusUnauthorized, perform(t, app, "Bearer "+forged).StatusCode)

	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": "founder-7",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	require.Equal(t, fiber.StatusUnauthorized, perform(t, app, "Bearer "+expired).StatusCode)
}

func TestOptionalPassesThroughWithoutSecret(t *testing.T) {
	app := subjectApp(middleware.Optional(""))
	resp := perform(t, app, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	guarded := subjectApp(middleware.Optional(testSecret))
	require.Equal(t, fiber.StatusUnauthorized, perform(t, guarded, "").StatusCode)
}

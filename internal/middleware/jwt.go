package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/ideaforge-api/internal/utils"
)

const subjectLocal = "subject"

// JWTProtected returns a middleware that validates HMAC-signed bearer tokens and
// stores the token subject on the request.
func JWTProtected(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authorization := c.Get("Authorization")
		if authorization == "" {
			return utils.FailWithCode(c, fiber.StatusUnauthorized, "unauthorized", "authorization header missing")
		}

		const bearer = "Bearer "
		if len(authorization) < len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.FailWithCode(c, fiber.StatusUnauthorized, "unauthorized", "invalid authorization header")
		}

		tokenString := strings.TrimSpace(authorization[len(bearer):])
		if tokenString == "" {
			return utils.FailWithCode(c, fiber.StatusUnauthorized, "unauthorized", "invalid token")
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.FailWithCode(c, fiber.StatusUnauthorized, "unauthorized", "invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return utils.FailWithCode(c, fiber.StatusUnauthorized, "unauthorized", "invalid token claims")
		}

		if subject := subjectFromClaims(claims); subject != "" {
			c.Locals(subjectLocal, subject)
		}

		return c.Next()
	}
}

// Optional returns the JWT guard when a secret is configured and a pass-through otherwise.
func Optional(secret string) fiber.Handler {
	if strings.TrimSpace(secret) == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return JWTProtected(secret)
}

// SubjectFromContext returns the authenticated subject, or an empty string for anonymous requests.
func SubjectFromContext(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	subject, _ := c.Locals(subjectLocal).(string)
	return subject
}

func subjectFromClaims(claims jwt.MapClaims) string {
	for _, key := range []string{"sub", "user_id", "id"} {
		value, ok := claims[key]
		if !ok {
			continue
		}
		switch v := value.(type) {
		case string:
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

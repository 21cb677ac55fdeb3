package middleware

import (
	"fmt"
	"strings"

	"soundtrace/internal/models"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	UserKeyFiber = "User" // Fiber context key for the authenticated user
)

// RequireAuth validates the bearer token and resolves the caller to a user
// row. Tokens are HS256 with the caller's DID in the subject claim.
func (m *Middleware) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := logger.New("middleware").TraceFromContext(c.Context()).Function("RequireAuth")

		authHeader := c.Get("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization header required",
			})
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			log.Info("invalid authorization header format")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		did, err := m.validateToken(tokenParts[1])
		if err != nil {
			log.Info("token validation failed", "error", err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		user, err := m.userRepo.GetByDID(c.Context(), did)
		if err != nil {
			log.Er("failed to look up user", err, "did", did)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to resolve user",
			})
		}
		if user == nil {
			log.Info("user not found", "did", did)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unknown user",
			})
		}

		c.Locals(UserKeyFiber, user)
		return c.Next()
	}
}

func (m *Middleware) validateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.Config.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", fmt.Errorf("token is not valid")
	}

	did, err := token.Claims.GetSubject()
	if err != nil || did == "" {
		return "", fmt.Errorf("token missing subject claim")
	}

	return did, nil
}

// GetUser retrieves the authenticated user from Fiber context
func GetUser(c *fiber.Ctx) *models.User {
	if user, ok := c.Locals(UserKeyFiber).(*models.User); ok {
		return user
	}
	return nil
}

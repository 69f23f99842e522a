// Package middleware provides authentication, authorization, logging,
// rate-limiting and observability middleware for the application.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenIssuer and TokenAudience are validated on every request.
	TokenIssuer   = "inkwell-api"
	TokenAudience = "inkwell-client"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// AuthRequired enforces a valid bearer token and stores the caller's
// identity ({userID, isAdmin}) in Locals for downstream handlers. The user
// id is read from the RFC 7519 "sub" claim and the admin flag from the
// boolean "admin" claim; no other claim names are consulted.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("No token provided, access denied"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		userID, isAdmin, err := verifyToken(parts[1])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token, access denied"))
		}

		c.Locals("userID", userID)
		c.Locals("isAdmin", isAdmin)
		ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired rejects non-admin callers with 403.
// Must be placed after AuthRequired so the identity is available in Locals.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !c.Locals("isAdmin").(bool) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("You are not authorized to access this route, only admins"))
		}
		return c.Next()
	}
}

// SelfRequired rejects callers whose id differs from the user id named by
// the given path parameter. Must be placed after AuthRequired.
func SelfRequired(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target, err := paramUint(c, param)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid "+param))
		}
		if c.Locals("userID").(uint) != target {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("You are not authorized to access this route, only the user himself"))
		}
		return c.Next()
	}
}

// SelfOrAdminRequired rejects callers who are neither the user named by
// the path parameter nor an admin. Must be placed after AuthRequired.
func SelfOrAdminRequired(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target, err := paramUint(c, param)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid "+param))
		}
		if c.Locals("userID").(uint) != target && !c.Locals("isAdmin").(bool) {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("You are not authorized to access this route, only the user himself or an admin"))
		}
		return c.Next()
	}
}

// OptionalUserID extracts the caller's user id from the Authorization
// header without enforcing it. Used by public reads that personalize the
// response (e.g. liked flags on posts).
func OptionalUserID(c *fiber.Ctx) (uint, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return 0, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return 0, false
	}
	userID, _, err := verifyToken(parts[1])
	if err != nil {
		return 0, false
	}
	return userID, true
}

// verifyToken parses and validates a signed token, returning the caller's
// identity and admin flag.
func verifyToken(tokenString string) (uint, bool, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return 0, false, models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, false, models.NewUnauthorizedError("Invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, false, models.NewUnauthorizedError("Invalid token structure - missing subject")
	}

	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, false, models.NewUnauthorizedError("Invalid user ID in token")
	}

	isAdmin, _ := claims["admin"].(bool)

	return uint(userID), isAdmin, nil
}

func paramUint(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, models.NewValidationError("Invalid " + param)
	}
	return uint(id), nil
}

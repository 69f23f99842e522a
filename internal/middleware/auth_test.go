package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"inkwell/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-0123456789abcdef"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(userID uint, admin bool) jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(userID), 10),
		"admin": admin,
		"iss":   TokenIssuer,
		"aud":   TokenAudience,
		"exp":   now.Add(time.Hour).Unix(),
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
	}
}

func newAuthApp(t *testing.T) *fiber.App {
	t.Helper()
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiber.New()
	app.Get("/me", AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userID":  c.Locals("userID"),
			"isAdmin": c.Locals("isAdmin"),
		})
	})
	app.Get("/admin", AuthRequired(), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/self/:id", AuthRequired(), SelfRequired("id"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/selfadmin/:id", AuthRequired(), SelfOrAdminRequired("id"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func doAuthed(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAuthRequired(t *testing.T) {
	app := newAuthApp(t)

	t.Run("missing header", func(t *testing.T) {
		resp := doAuthed(t, app, "/me", "")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "NotBearer xyz")
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong signing key", func(t *testing.T) {
		token := signToken(t, validClaims(1, false), "some-other-secret-value-entirely")
		resp := doAuthed(t, app, "/me", token)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims(1, false)
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
		resp := doAuthed(t, app, "/me", signToken(t, claims, testSecret))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := validClaims(1, false)
		claims["iss"] = "someone-else"
		resp := doAuthed(t, app, "/me", signToken(t, claims, testSecret))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("valid token passes identity downstream", func(t *testing.T) {
		resp := doAuthed(t, app, "/me", signToken(t, validClaims(42, true), testSecret))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestAdminRequired(t *testing.T) {
	app := newAuthApp(t)

	t.Run("non-admin forbidden", func(t *testing.T) {
		resp := doAuthed(t, app, "/admin", signToken(t, validClaims(1, false), testSecret))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin allowed", func(t *testing.T) {
		resp := doAuthed(t, app, "/admin", signToken(t, validClaims(1, true), testSecret))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestSelfPolicies(t *testing.T) {
	app := newAuthApp(t)

	t.Run("self matches", func(t *testing.T) {
		resp := doAuthed(t, app, "/self/7", signToken(t, validClaims(7, false), testSecret))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("other user forbidden", func(t *testing.T) {
		resp := doAuthed(t, app, "/self/8", signToken(t, validClaims(7, false), testSecret))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("admin override only on self-or-admin routes", func(t *testing.T) {
		admin := signToken(t, validClaims(1, true), testSecret)

		resp := doAuthed(t, app, "/self/8", admin)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = doAuthed(t, app, "/selfadmin/8", admin)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("bad id parameter", func(t *testing.T) {
		resp := doAuthed(t, app, "/self/zero", signToken(t, validClaims(7, false), testSecret))
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestOptionalUserID(t *testing.T) {
	InitMiddleware(&config.Config{JWTSecret: testSecret})

	app := fiber.New()
	app.Get("/feed", func(c *fiber.Ctx) error {
		id, ok := OptionalUserID(c)
		return c.JSON(fiber.Map{"id": id, "ok": ok})
	})

	t.Run("anonymous yields zero", func(t *testing.T) {
		resp := doAuthed(t, app, "/feed", "")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("garbage token is treated as anonymous", func(t *testing.T) {
		resp := doAuthed(t, app, "/feed", "garbage")
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

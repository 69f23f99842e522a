package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/storage"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// captureMailer records outbound links instead of sending email.
type captureMailer struct {
	mu            sync.Mutex
	verifications []string
	resets        []string
}

func (m *captureMailer) SendVerificationEmail(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verifications = append(m.verifications, email+" "+link)
	return nil
}

func (m *captureMailer) SendPasswordResetEmail(_ context.Context, email, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, email+" "+link)
	return nil
}

var dbSeq atomic.Int64

type testEnv struct {
	server *Server
	db     *gorm.DB
	mail   *captureMailer
}

// newTestEnv wires a server against an in-memory SQLite database and
// filesystem blob storage under t.TempDir().
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:       "test-secret-0123456789-0123456789",
		Port:            "0",
		Env:             "test",
		ClientDomain:    "http://localhost:3000",
		MaxUploadSizeMB: 5,
	}
	middleware.InitMiddleware(cfg)

	// A uniquely named shared-cache in-memory database so every pooled
	// connection sees the same data while tests stay isolated.
	dsn := fmt.Sprintf("file:inkwell_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	blobs, err := storage.NewLocalStorage(t.TempDir(), "http://localhost:3000/media")
	require.NoError(t, err)

	mail := &captureMailer{}
	srv := NewServerWithDeps(cfg, db, nil, blobs, mail)

	return &testEnv{server: srv, db: db, mail: mail}
}

// createUser inserts a verified user directly and returns it with a token.
func (e *testEnv) createUser(t *testing.T, username string, admin bool) (*models.User, string) {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte("GoodPass12"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:          username,
		Email:             username + "@example.com",
		Password:          string(hashed),
		ProfilePhotoURL:   models.DefaultProfilePhotoURL,
		IsAdmin:           admin,
		IsAccountVerified: true,
	}
	require.NoError(t, e.db.Create(user).Error)

	token, err := e.server.generateToken(user.ID, user.IsAdmin)
	require.NoError(t, err)
	return user, token
}

// createPost inserts a post owned by the given user.
func (e *testEnv) createPost(t *testing.T, userID uint, title string) *models.Post {
	t.Helper()

	post := &models.Post{
		Title:          title,
		Description:    "A description long enough to pass validation",
		Category:       "travel",
		UserID:         userID,
		ImageURL:       "http://localhost:3000/media/posts/test.webp",
		ImageStorageID: "",
	}
	require.NoError(t, e.db.Create(post).Error)
	return post
}

func jsonRequest(t *testing.T, method, target string, body any, token string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 12, 12))
	for x := 0; x < 12; x++ {
		for y := 0; y < 12; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 144, B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartRequest builds a multipart form request with optional text fields
// and an optional PNG image under the given field name.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, imageField string, token string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if imageField != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename="cover.png"`, imageField)}
		h["Content-Type"] = []string{"image/png"}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(pngBytes(t))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

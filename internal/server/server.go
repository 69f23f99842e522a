// Package server wires configuration, storage, repositories and services
// together and exposes the HTTP API.
package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/mailer"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all application dependencies and the Fiber app.
type Server struct {
	cfg   *config.Config
	db    *gorm.DB
	redis *redis.Client
	app   *fiber.App
	prom  *fiberprometheus.FiberPrometheus

	tracingShutdown func(context.Context) error

	userRepo     repository.UserRepository
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	categoryRepo repository.CategoryRepository
	tokenRepo    repository.TokenRepository

	authService     *service.AuthService
	passwordService *service.PasswordService
	userService     *service.UserService
	postService     *service.PostService
	commentService  *service.CommentService
	categoryService *service.CategoryService
}

// NewServer builds a fully wired server from configuration: database,
// Redis, blob storage and mailer backends.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	blobs, err := newBlobStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("blob storage init failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), blobs, newMailer(cfg)), nil
}

// NewServerWithDeps builds a server from externally supplied dependencies.
// Used by NewServer and by tests that substitute in-memory backends.
func NewServerWithDeps(
	cfg *config.Config,
	db *gorm.DB,
	redisClient *redis.Client,
	blobs storage.BlobStorage,
	mail mailer.Mailer,
) *Server {
	s := &Server{
		cfg:   cfg,
		db:    db,
		redis: redisClient,
	}

	s.userRepo = repository.NewUserRepository(db)
	s.postRepo = repository.NewPostRepository(db)
	s.commentRepo = repository.NewCommentRepository(db)
	s.categoryRepo = repository.NewCategoryRepository(db)
	s.tokenRepo = repository.NewTokenRepository(db)

	s.authService = service.NewAuthService(s.userRepo, s.tokenRepo, mail, cfg.ClientDomain)
	s.passwordService = service.NewPasswordService(s.userRepo, s.tokenRepo, mail, cfg.ClientDomain)
	s.userService = service.NewUserService(s.userRepo, s.postRepo, s.commentRepo, s.tokenRepo, blobs)
	s.postService = service.NewPostService(s.postRepo, s.commentRepo, blobs, s.isAdminByUserID)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.userRepo, s.isAdminByUserID)
	s.categoryService = service.NewCategoryService(s.categoryRepo)

	s.app = fiber.New(fiber.Config{
		AppName:      "inkwell-api",
		BodyLimit:    cfg.MaxUploadSizeMB * 1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.prom = middleware.InitMetrics("inkwell-api")

	s.SetupMiddleware()
	s.SetupRoutes()

	return s
}

// errorHandler maps errors that escape handlers to JSON responses.
func errorHandler(c *fiber.Ctx, err error) error {
	if fiberErr, ok := err.(*fiber.Error); ok {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Error: fiberErr.Message})
	}
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// SetupMiddleware registers the global middleware chain. Order matters:
// requestid must precede ContextMiddleware, and CORS must precede the
// limiter so throttled responses still carry CORS headers.
func (s *Server) SetupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(middleware.ContextMiddleware())

	if s.cfg.TracingEnabled {
		s.app.Use(middleware.TracingMiddleware())
	}

	s.prom.RegisterAt(s.app, "/metrics")
	s.app.Use(middleware.MetricsMiddleware(s.prom))

	s.app.Use(helmet.New())
	s.app.Use(middleware.StructuredLogger())

	origins := s.cfg.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Global safety net; per-route limits below are stricter.
	globalLimiter := middleware.RateLimit(s.redis, 100, time.Minute, "global")
	s.app.Use(func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		return globalLimiter(c)
	})
}

// SetupRoutes registers all API routes.
func (s *Server) SetupRoutes() {
	s.app.Get("/health/live", s.LivenessCheck)
	s.app.Get("/health/ready", s.ReadinessCheck)

	api := s.app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 5, time.Minute, "auth_register"), s.Register)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, time.Minute, "auth_login"), s.Login)
	auth.Get("/:userId/verify/:token", s.VerifyEmail)

	password := api.Group("/password")
	password.Post("/reset-password-link", middleware.RateLimit(s.redis, 5, time.Minute, "password_link"), s.SendResetLink)
	password.Get("/reset-password/:userId/:token", s.ValidateResetLink)
	password.Post("/reset-password/:userId/:token", s.ResetPassword)

	users := api.Group("/users")
	users.Get("/profile", middleware.AuthRequired(), middleware.AdminRequired(), s.GetProfiles)
	users.Get("/count", middleware.AuthRequired(), middleware.AdminRequired(), s.CountUsers)
	users.Post("/profile/profile-photo-upload",
		middleware.AuthRequired(),
		middleware.RateLimit(s.redis, 10, time.Minute, "profile_photo"),
		s.UploadProfilePhoto)
	users.Get("/profile/:id", s.GetProfile)
	users.Put("/profile/:id", middleware.AuthRequired(), middleware.SelfRequired("id"), s.UpdateProfile)
	users.Delete("/profile/:id", middleware.AuthRequired(), middleware.SelfOrAdminRequired("id"), s.DeleteProfile)

	posts := api.Group("/posts")
	posts.Post("/", middleware.AuthRequired(), middleware.RateLimit(s.redis, 20, time.Minute, "post_create"), s.CreatePost)
	posts.Get("/", s.ListPosts)
	posts.Get("/count", middleware.AuthRequired(), middleware.AdminRequired(), s.CountPosts)
	// Specific segments before the generic /:id.
	posts.Put("/update-image/:id", middleware.AuthRequired(), s.UpdatePostImage)
	posts.Put("/like/:id", middleware.AuthRequired(), s.ToggleLike)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", middleware.AuthRequired(), s.UpdatePost)
	posts.Delete("/:id", middleware.AuthRequired(), s.DeletePost)

	comments := api.Group("/comments")
	comments.Post("/", middleware.AuthRequired(), middleware.RateLimit(s.redis, 30, time.Minute, "comment_create"), s.CreateComment)
	comments.Get("/", middleware.AuthRequired(), middleware.AdminRequired(), s.ListComments)
	comments.Put("/:id", middleware.AuthRequired(), s.UpdateComment)
	comments.Delete("/:id", middleware.AuthRequired(), s.DeleteComment)

	categories := api.Group("/categories")
	categories.Post("/", middleware.AuthRequired(), middleware.AdminRequired(), s.CreateCategory)
	categories.Get("/", s.ListCategories)
	categories.Delete("/:id", middleware.AuthRequired(), middleware.AdminRequired(), s.DeleteCategory)
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// ReadinessCheck verifies the server can reach its dependencies.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	checks := fiber.Map{}
	healthy := true

	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		checks["database"] = "unreachable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unreachable"
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	} else {
		checks["redis"] = "disabled"
	}

	status := fiber.StatusOK
	if !healthy {
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{
		"status": map[bool]string{true: "ready", false: "degraded"}[healthy],
		"checks": checks,
	})
}

// Start initializes tracing and begins serving.
func (s *Server) Start() error {
	if s.cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:    "inkwell-api",
			ServiceVersion: "1.0.0",
			Environment:    s.cfg.Env,
			Enabled:        true,
			Exporter:       s.cfg.TracingExporter,
			OTLPEndpoint:   s.cfg.OTLPEndpoint,
			SamplerRatio:   s.cfg.TracingSampleRate,
		})
		if err != nil {
			middleware.Logger.Warn("tracing init failed, continuing without tracing", "error", err)
		} else {
			s.tracingShutdown = shutdown
		}
	}

	middleware.Logger.Info("server starting", "port", s.cfg.Port, "env", s.cfg.Env)
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown stops the HTTP server and closes external connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return err
	}

	if s.tracingShutdown != nil {
		if err := s.tracingShutdown(ctx); err != nil {
			middleware.Logger.Warn("tracing shutdown failed", "error", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Warn("redis close failed", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			return err
		}
	}
	return nil
}

// isAdminByUserID is injected into services that allow admin overrides.
func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Select("is_admin").First(&user, userID).Error; err != nil {
		return false, err
	}
	return user.IsAdmin, nil
}

// newBlobStorage picks the configured blob storage backend.
func newBlobStorage(cfg *config.Config) (storage.BlobStorage, error) {
	switch cfg.StorageBackend {
	case "s3":
		return storage.NewS3Storage(context.Background(), storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			AccessKeySecret: cfg.S3SecretKey,
			PublicURL:       cfg.S3PublicBaseURL,
		})
	default:
		publicURL := strings.TrimSuffix(cfg.ClientDomain, "/") + "/media"
		return storage.NewLocalStorage(cfg.LocalStorageDir, publicURL)
	}
}

// newMailer picks the configured mail backend.
func newMailer(cfg *config.Config) mailer.Mailer {
	if cfg.MailBackend == "smtp" {
		return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}
	return mailer.NewLogMailer()
}

// Package server contains the HTTP handlers and routing for the API.
package server

import (
	"context"
	"fmt"
	"time"

	_ "github.com/andriinero/inkspace-backend/docs" // swagger docs
	"github.com/andriinero/inkspace-backend/internal/bootstrap"
	"github.com/andriinero/inkspace-backend/internal/cache"
	"github.com/andriinero/inkspace-backend/internal/config"
	"github.com/andriinero/inkspace-backend/internal/middleware"
	"github.com/andriinero/inkspace-backend/internal/models"
	"github.com/andriinero/inkspace-backend/internal/repository"
	"github.com/andriinero/inkspace-backend/internal/service"
	"github.com/andriinero/inkspace-backend/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	blobs          storage.BlobStore
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	authService     *service.AuthService
	userService     *service.UserService
	relService      *service.RelationshipService
	bookmarkService *service.BookmarkService
	topicService    *service.TopicService
	postService     *service.PostService
	commentService  *service.CommentService
	feedService     *service.FeedService
	imageService    *service.ImageService
}

// NewServer initializes the runtime and the blob store named by cfg and
// builds a server over them.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, redisClient, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		return nil, err
	}

	blobs, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("image store: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient, blobs)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redisClient runs without cache and with in-process rate limiting.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, blobs storage.BlobStore) (*Server, error) {
	if blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	blobs = storage.Instrument(blobs)
	store := cache.NewStore(redisClient)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	imageRepo := repository.NewImageRepository(db)
	edgeRepo := repository.NewRelationshipRepository(db)
	cascade := service.NewCascadeService(repository.NewCascadeRepository(db), blobs, store)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		blobs:          blobs,
		promMiddleware: middleware.InitMetrics("inkspace-api"),
	}

	s.authService = service.NewAuthService(userRepo, cfg)
	s.userService = service.NewUserService(userRepo, cascade, store, cfg.PageSize)
	isAdmin := s.userService.IsAdmin
	s.relService = service.NewRelationshipService(edgeRepo, userRepo, topicRepo, postRepo, cfg.PageSize)
	s.bookmarkService = service.NewBookmarkService(s.relService)
	s.topicService = service.NewTopicService(topicRepo, cascade, store, isAdmin, cfg.PageSize)
	s.postService = service.NewPostService(postRepo, topicRepo, imageRepo, cascade, blobs, store, isAdmin)
	s.commentService = service.NewCommentService(commentRepo, postRepo, store, isAdmin, cfg.PageSize)
	s.feedService = service.NewFeedService(postRepo, topicRepo, userRepo, cfg.PageSize)
	s.imageService = service.NewImageService(imageRepo, userRepo, blobs, store, cfg)

	return s, nil
}

// App builds the Fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}
	app := fiber.New(fiber.Config{
		AppName:   "inkspace API",
		BodyLimit: int(s.config.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, &models.AppError{Code: statusCode(fe.Code), Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: "X-Total-Count, X-Page, X-Per-Page, X-Trace-ID",
		MaxAge:        86400,
	}))

	// Global rate limiting (100 requests per minute per IP). Test and
	// stress profiles run without it.
	unlimited := s.config.Env == "test" || s.config.Env == "stress"
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return unlimited || c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				&models.AppError{Code: "RATE_LIMITED", Message: "Too many requests, please try again later."})
		},
	}))

	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.RequestTimeout(s.config.RequestTimeout))
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	secret := s.config.JWTSecret
	auth := middleware.RequireAccount(secret, s.userService.Exists)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/swagger/*", swagger.HandlerDefault)

	authRoutes := app.Group("/auth")
	authRoutes.Post("/sign-up", middleware.RateLimit(s.redis, 5, 10*time.Minute, "sign_up"), s.SignUp)
	authRoutes.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	api := app.Group("/api")
	api.Get("/health/live", s.LivenessCheck)
	api.Get("/health/ready", s.ReadinessCheck)

	posts := api.Group("/posts")
	posts.Get("/", middleware.OptionalAuth(secret), s.GetPosts)
	posts.Post("/", auth, s.CreatePost)
	posts.Get("/:id/likes", s.GetLikes)
	posts.Put("/:id/likes", s.LikePost)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", auth, s.CreateComment)
	posts.Get("/:id", middleware.OptionalAuth(secret), s.GetPost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/:id", s.GetComment)
	comments.Put("/:id", auth, s.UpdateComment)
	comments.Delete("/:id", auth, s.DeleteComment)

	topics := api.Group("/topics")
	topics.Get("/", s.GetTopics)
	topics.Post("/", auth, s.CreateTopic)
	topics.Get("/:id", s.GetTopic)
	topics.Put("/:id", auth, s.RenameTopic)
	topics.Delete("/:id", auth, s.DeleteTopic)

	authors := api.Group("/authors")
	authors.Get("/", s.GetAuthors)
	authors.Get("/:id", s.GetAuthor)

	users := api.Group("/users")
	users.Get("/", s.GetLatestUsers)
	users.Delete("/:id", auth, s.DeleteUser)

	profile := api.Group("/profile", auth)
	profile.Get("/", s.GetProfile)
	profile.Put("/bio", s.UpdateBio)
	profile.Put("/password", s.ChangePassword)
	profile.Put("/image", s.UpdateProfileImage)
	profile.Get("/bookmarks", s.GetBookmarks)
	profile.Post("/bookmarks", s.AddBookmark)
	profile.Delete("/bookmarks/:postid", s.RemoveBookmark)
	profile.Get("/users-following", s.GetFollowers)
	s.edgeRoutes(profile, "/followed-users", models.EdgeFollow, "userid")
	s.edgeRoutes(profile, "/ignored-users", models.EdgeIgnoreUser, "userid")
	s.edgeRoutes(profile, "/ignored-topics", models.EdgeIgnoreTopic, "topicid")
	s.edgeRoutes(profile, "/ignored-posts", models.EdgeIgnorePost, "postid")

	images := api.Group("/images")
	images.Post("/", auth, s.UploadImage)
	images.Get("/:id", s.GetImage)
}

func (s *Server) edgeRoutes(r fiber.Router, path string, kind models.EdgeKind, param string) {
	r.Get(path, s.listEdges(kind))
	r.Post(path, s.addEdge(kind))
	r.Delete(path+"/:"+param, s.removeEdge(kind, param))
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck reports database, Redis and blob store status. Redis is
// optional: without it the API runs uncached.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overall = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database":    dbStatus,
			"redis":       redisStatus,
			"image_store": s.blobs.Backend(),
		},
		"time": time.Now().UTC(),
	})
}

// Start serves on the configured port until the app is shut down.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	if err := storage.Close(ctx, s.blobs); err != nil {
		middleware.Logger.Error("error closing image store", "error", err)
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}

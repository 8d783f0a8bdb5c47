package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/abasiman/stylofitApp/internal/auth"
	"github.com/abasiman/stylofitApp/internal/blob"
	"github.com/abasiman/stylofitApp/internal/config"
	"github.com/abasiman/stylofitApp/internal/engagement"
	"github.com/abasiman/stylofitApp/internal/moderation"
	"github.com/abasiman/stylofitApp/internal/places"
	"github.com/abasiman/stylofitApp/internal/post"
	"github.com/abasiman/stylofitApp/internal/social"
	"github.com/abasiman/stylofitApp/internal/stream"
	"github.com/abasiman/stylofitApp/internal/upload"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Blobs  blob.Store
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, blobs blob.Store) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
		Blobs:  blobs,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	// Moderation is mandatory whenever a gate is configured; with no API key
	// the pipeline runs ungated (dev mode).
	var gate moderation.Gate
	if s.Cfg.VisionAPIKey != "" {
		gate = moderation.NewVisionGate(s.Cfg.VisionEndpoint, s.Cfg.VisionAPIKey)
	}

	postSvc := post.NewService(s.DB, s.Stream, s.Blobs)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB, s.Stream), jwtMiddleware)
	post.RegisterRoutes(s.App.Group("/posts"), postSvc, jwtMiddleware)
	engagement.RegisterRoutes(s.App.Group("/engagement"), engagement.NewService(s.DB, s.Stream), jwtMiddleware)
	social.RegisterRoutes(s.App.Group("/social"), social.NewService(s.DB, s.Stream), jwtMiddleware)
	upload.RegisterRoutes(s.App.Group("/uploads"), upload.NewPipeline(gate, s.Blobs, postSvc, s.Stream), jwtMiddleware)
	places.RegisterRoutes(s.App.Group("/places"), places.NewClient(s.Cfg.PlacesEndpoint, s.Cfg.PlacesAPIKey))
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

package server

import (
	"github.com/MacTheAnon/DriverPro/internal/auth"
	"github.com/MacTheAnon/DriverPro/internal/config"
	"github.com/MacTheAnon/DriverPro/internal/engine"
	"github.com/MacTheAnon/DriverPro/internal/expenses"
	"github.com/MacTheAnon/DriverPro/internal/geofence"
	"github.com/MacTheAnon/DriverPro/internal/location"
	"github.com/MacTheAnon/DriverPro/internal/maintenance"
	"github.com/MacTheAnon/DriverPro/internal/pending"
	"github.com/MacTheAnon/DriverPro/internal/places"
	"github.com/MacTheAnon/DriverPro/internal/profile"
	"github.com/MacTheAnon/DriverPro/internal/stream"
	"github.com/MacTheAnon/DriverPro/internal/trips"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub

	Feed    *location.Feed
	Engine  *engine.Manager
	Monitor *geofence.Monitor
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
		Feed:   location.NewFeed(),
	}

	profileSvc := profile.NewService(db)
	tripSvc := trips.NewService(db)
	placeSvc := places.NewService(db)
	queue := pending.NewStore(redisClient)

	s.Engine = engine.NewManager(engine.Config{
		MileageRateUSD:  cfg.MileageRateUSD,
		NoiseFloorMiles: cfg.NoiseFloorMiles,
		DedupEpsilon:    cfg.DedupEpsilon(),
		Intervals:       maintenance.DefaultIntervals(cfg.RotationIntervalMiles, cfg.ServiceIntervalMiles),
	}, engine.Deps{
		Source:     s.Feed,
		Background: s.Feed,
		Queue:      queue,
		Sink:       tripSvc,
		Profile:    profileSvc,
		Places:     placeSvc,
		Hub:        s.Stream,
	})
	s.Monitor = geofence.NewMonitor(geofence.NewLocalRegistrar(), s.Engine, profileSvc)

	registerRoutes(s, profileSvc, tripSvc, placeSvc, queue)
	return s
}

func registerRoutes(s *Server, profileSvc *profile.Service, tripSvc *trips.Service, placeSvc *places.Service, queue *pending.Store) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	engine.RegisterRoutes(s.App.Group("/track"), s.Engine, s.Feed, queue, jwtMiddleware)
	geofence.RegisterRoutes(s.App, s.Monitor, jwtMiddleware)
	trips.RegisterRoutes(s.App, tripSvc, jwtMiddleware)
	profile.RegisterRoutes(s.App, profileSvc, jwtMiddleware)
	places.RegisterRoutes(s.App, placeSvc, jwtMiddleware)
	expenses.RegisterRoutes(s.App, expenses.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

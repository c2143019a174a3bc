package server

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/halalbiye/halalbiye-server/src/controllers"
	"github.com/halalbiye/halalbiye-server/src/lib"
	"github.com/halalbiye/halalbiye-server/src/metrics"
	"github.com/halalbiye/halalbiye-server/src/middleware"
	"github.com/halalbiye/halalbiye-server/src/routes"
	"github.com/halalbiye/halalbiye-server/src/services"
	"github.com/halalbiye/halalbiye-server/src/store"
	"github.com/halalbiye/halalbiye-server/src/store/revocation"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Deps is everything the HTTP layer needs.
type Deps struct {
	Backend     store.Backend
	Tokens      *lib.TokenManager
	Revocations revocation.List
	Log         *zap.Logger

	BcryptCost  int
	CookieName  string
	CORSOrigins []string
	Production  bool
}

// New assembles the fiber app with every route mounted.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "halalbiye",
		ErrorHandler:          middleware.ErrorHandler(d.Log, !d.Production),
		DisableStartupMessage: true,
	})

	app.Use(middleware.RequestIDs())
	app.Use(middleware.RequestLogger(d.Log))
	app.Use(metrics.Middleware())
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(d.CORSOrigins)))

	auth := services.NewAuthService(d.Backend.Users(), d.Tokens, d.Revocations, d.Log)
	profiles := services.NewProfileService(d.Backend.Users(), d.Backend.Requests(), d.BcryptCost, d.Log)
	requests := services.NewRequestService(d.Backend.Users(), d.Backend.Requests(), d.Log)

	protect := middleware.ProtectRoute(auth, d.CookieName)
	cookie := controllers.SessionCookie{Name: d.CookieName, TTL: d.Tokens.TTL(), Secure: d.Production}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello from Halal Biye Server")
	})
	app.Get("/healthz", health(d.Backend))
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api/v1")
	routes.UserRoutes(api, controllers.NewUserController(profiles, auth, cookie), protect)
	routes.ConnectionRoutes(api, controllers.NewConnectionController(requests), protect)

	app.Use(middleware.NotFound)
	return app
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,OPTIONS",
	}
	if len(origins) > 0 {
		cfg.AllowOrigins = strings.Join(origins, ",")
		// fiber refuses credentials with a wildcard origin
		cfg.AllowCredentials = !slices.Contains(origins, "*")
	}
	return cfg
}

type pinger interface {
	Ping(ctx context.Context) error
}

func health(p pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

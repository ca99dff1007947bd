package server

import (
	"errors"
	"log"
	"strings"

	"rickshaw-client/internal/bootstrap"
	"rickshaw-client/internal/config"
	"rickshaw-client/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	// Initialize Fiber App
	app := fiber.New(fiber.Config{
		BodyLimit:    int(cfg.Upload.MaxBytes),
		ErrorHandler: newErrorHandler(cfg, container),
	})

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CorsAllowedOrigins,
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		ExposeHeaders:    "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (traces all HTTP requests)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.ErrorHandlerMiddleware())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(serverutils.SuccessResponse("ok", fiber.Map{
			"endpoint_configured": cfg.EndpointConfigured(),
			"sessions":            container.Sessions.Count(),
		}))
	})

	// Routes
	registerRoutes(app, cfg, container)

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Printf("✅ Server is running on http://localhost:%s", s.cfg.App.Port)
	return s.app.Listen(":" + s.cfg.App.Port)
}

func registerRoutes(app *fiber.App, cfg *config.Config, c *bootstrap.Container) {
	app.Use(serverutils.SessionMiddleware(cfg.Session.CookieName, cfg.Session.TTL))

	c.PageHandler.RegisterRoutes(app)

	api := app.Group("/api")
	c.AnalysisController.RegisterRoutes(api)
	c.LiveHandler.RegisterRoutes(api)
}

// newErrorHandler covers errors raised before any middleware runs. A body over the hard
// cap on the upload route is still recorded against the cookie's session.
func newErrorHandler(cfg *config.Config, c *bootstrap.Container) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code == fiber.StatusRequestEntityTooLarge &&
			strings.HasSuffix(ctx.Path(), "/session/file") {
			if sessionID, perr := uuid.Parse(ctx.Cookies(cfg.Session.CookieName)); perr == nil {
				return c.AnalysisController.RejectOversized(ctx, sessionID)
			}
		}

		code := serverutils.StatusFor(err)
		return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/bookswap-service/internal/api/http/handlers"
	"github.com/spec-kit/bookswap-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Profile        *handlers.ProfileHandler
	Books          *handlers.BooksHandler
	Exchanges      *handlers.ExchangesHandler
	Messages       *handlers.MessagesHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Browsing listings is public;
// everything that acts on behalf of a user sits behind the auth
// middleware.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	profile := app.Group("/profile", cfg.AuthMiddleware.Handle)
	profile.Get("/", cfg.Profile.Get)
	profile.Put("/", cfg.Profile.Update)
	profile.Get("/activity", cfg.Profile.Activity)

	books := app.Group("/books")
	books.Get("/", cfg.Books.Search)
	books.Get("/mine", cfg.AuthMiddleware.Handle, cfg.Books.ListMine)
	books.Get("/:id", cfg.Books.Get)
	books.Post("/", cfg.AuthMiddleware.Handle, cfg.Books.Create)
	books.Put("/:id", cfg.AuthMiddleware.Handle, cfg.Books.Update)
	books.Delete("/:id", cfg.AuthMiddleware.Handle, cfg.Books.Delete)

	exchanges := app.Group("/exchanges", cfg.AuthMiddleware.Handle)
	exchanges.Get("/", cfg.Exchanges.List)
	exchanges.Post("/", cfg.Exchanges.Create)
	exchanges.Patch("/:id/status", cfg.Exchanges.UpdateStatus)
	exchanges.Get("/:id/messages", cfg.Messages.List)
	exchanges.Post("/:id/messages", cfg.Messages.Send)

	messages := app.Group("/messages", cfg.AuthMiddleware.Handle)
	messages.Get("/unread", cfg.Messages.UnreadCount)
}

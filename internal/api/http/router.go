package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-api/internal/api/http/handlers"
	"github.com/spec-kit/marketplace-api/internal/auth"
	"github.com/spec-kit/marketplace-api/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Auth          *handlers.AuthHandler
	Products      *handlers.ProductsHandler
	Users         *handlers.UsersHandler
	Authenticator *auth.Authenticator
	Policy        *auth.PolicyEngine
}

// AccessRules is the route authorization table, matched first to last before
// dispatch. More specific patterns come before broader ones; anything the
// table misses falls back to any-authenticated.
func AccessRules() []auth.AccessRule {
	return []auth.AccessRule{
		auth.Public(fiber.MethodGet, "/health/*"),

		auth.RequireRoles(fiber.MethodPost, "/auth/register/admin", domain.RoleAdmin),
		auth.Public(fiber.MethodPost, "/auth/register"),
		auth.Public(fiber.MethodPost, "/auth/login"),
		auth.Public(fiber.MethodPost, "/auth/logout"),

		auth.RequireRoles(fiber.MethodGet, "/products/mine", domain.RoleSeller, domain.RoleAdmin),
		auth.Public(fiber.MethodGet, "/products"),
		auth.Public(fiber.MethodGet, "/products/:id"),
		auth.RequireRoles(fiber.MethodPost, "/products", domain.RoleSeller, domain.RoleAdmin),
		auth.RequireRoles(fiber.MethodPut, "/products/:id", domain.RoleSeller, domain.RoleAdmin),
		auth.RequireRoles(fiber.MethodPatch, "/products/:id/stock", domain.RoleSeller, domain.RoleAdmin),
		auth.RequireRoles(fiber.MethodDelete, "/products/:id", domain.RoleSeller, domain.RoleAdmin),

		auth.Authenticated("*", "/users/me"),
		auth.RequireRoles(fiber.MethodGet, "/users", domain.RoleAdmin),
		auth.RequireRoles(fiber.MethodGet, "/users/:id", domain.RoleAdmin),
		auth.RequireRoles(fiber.MethodDelete, "/users/:id", domain.RoleAdmin),
	}
}

// RegisterRoutes wires the auth chain and HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Authenticator.Handle)
	app.Use(cfg.Policy.Enforce())

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/register/admin", cfg.Auth.RegisterAdmin)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	products := app.Group("/products")
	products.Get("/", cfg.Products.List)
	products.Get("/mine", cfg.Products.Mine)
	products.Get("/:id", cfg.Products.Get)
	products.Post("/", cfg.Products.Create)
	products.Put("/:id", cfg.Products.Update)
	products.Patch("/:id/stock", cfg.Products.AdjustStock)
	products.Delete("/:id", cfg.Products.Delete)

	users := app.Group("/users")
	users.Get("/me", cfg.Users.Me)
	users.Put("/me", cfg.Users.UpdateMe)
	users.Delete("/me", cfg.Users.DeleteMe)
	users.Get("/", cfg.Users.List)
	users.Get("/:id", cfg.Users.Get)
	users.Delete("/:id", cfg.Users.Delete)
}

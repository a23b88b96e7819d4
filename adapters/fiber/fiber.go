package fiber

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/lumenapp/server/services"
)

// Services bundles everything the HTTP layer exposes.
type Services struct {
	Auth      *services.AuthService
	Reset     *services.ResetService
	Federated *services.FederatedService
	Content   *services.ContentService
	Sessions  *services.SessionIssuer
}

// Options tune transport behavior without touching the services.
type Options struct {
	// ExposeResetCode echoes the plaintext reset code in the
	// forgot-password response. Useful for client development against a
	// store without a mail provider; keep off in production.
	ExposeResetCode bool
	Logger          zerolog.Logger
}

// Adapter wires the service layer onto a Fiber app.
type Adapter struct {
	app      *fiber.App
	services Services
	opts     Options
	validate *validator.Validate
}

func New(app *fiber.App, svcs Services, opts Options) *Adapter {
	return &Adapter{
		app:      app,
		services: svcs,
		opts:     opts,
		validate: validator.New(),
	}
}

// RegisterRoutes mounts all routes. Paths mirror what the mobile clients
// already call.
func (a *Adapter) RegisterRoutes() {
	a.app.Use(a.requestLogger)

	a.app.Get("/", a.health)

	auth := a.app.Group("/auth")
	auth.Post("/signup", a.signup)
	auth.Post("/login", a.login)
	auth.Post("/google", a.google)
	auth.Post("/forgotpassword", a.forgotPassword)
	auth.Post("/resetpassword", a.resetPassword)
	auth.Get("/currentUser", a.currentUser, a.requireAuth)
	auth.Put("/profile", a.updateProfile, a.requireAuth)

	content := a.app.Group("/api/content", a.requireAuth)
	content.Post("/generate", a.generateContent)
	content.Get("/user", a.listUserContent)
	content.Get("/:id", a.contentByID)
}

func (a *Adapter) health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "the server is running"})
}

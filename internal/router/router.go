package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"notekeep/internal/config"
	"notekeep/internal/handler"
	"notekeep/internal/ratelimit"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	notesHandler *handler.NotesHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public auth routes, rate limited per client IP against brute forcing.
	limiter := ratelimit.New(cfg.AuthRateRPS, cfg.AuthRateBurst)
	public := api.Group("/auth", rateLimitMiddleware(limiter))
	public.POST("/signup", authHandler.SignUp)
	public.POST("/signin", authHandler.SignIn)
	public.POST("/forgot-password", authHandler.ForgotPassword)
	public.POST("/reset-password", authHandler.ResetPassword)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	secured.GET("/auth/me", authHandler.Me)

	notes := secured.Group("/notes")
	notes.POST("", notesHandler.Create)
	notes.GET("", notesHandler.List)
	notes.GET("/:id", notesHandler.Get)
	notes.PUT("/:id", notesHandler.Update)
	notes.DELETE("/:id", notesHandler.Delete)
}

// rateLimitMiddleware rejects requests exceeding the per-IP budget.
func rateLimitMiddleware(limiter *ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow(c.RealIP()) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

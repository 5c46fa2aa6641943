package router

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"craftopia/internal/auth"
	"craftopia/internal/config"
	"craftopia/internal/handler"
	"craftopia/internal/middleware"
)

const (
	jsonBodyLimit   = "1M"
	uploadBodyLimit = "60M"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Category *handler.CategoryHandler
	Decor    *handler.DecorHandler
	Health   *handler.HealthHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger *zap.Logger,
	jwtService *auth.JWTService,
	users middleware.UserFinder,
	h Handlers,
) {
	e.HideBanner = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = handler.NewErrorHandler(logger, !cfg.IsProduction())

	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/health", h.Health.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	requireAuth := middleware.Authenticate(jwtService, users)
	optionalAuth := middleware.OptionalAuthenticate(jwtService, users)
	adminOnly := middleware.AdminOrAbove()
	superAdminOnly := middleware.SuperAdminOnly()
	jsonBody := echomw.BodyLimit(jsonBodyLimit)

	// Documented paths are relative to /api.
	api := e.Group("/api")
	api.GET("", h.Health.Endpoints)
	api.GET("/", h.Health.Endpoints)
	api.GET("/health", h.Health.Health)

	authGroup := api.Group("/auth", jsonBody)
	limited := authGroup.Group("", authRateLimiter(cfg.RateLimitRPS))
	limited.POST("/register", h.Auth.Register)
	limited.POST("/login", h.Auth.Login)
	limited.POST("/refresh-token", h.Auth.RefreshToken)
	limited.POST("/logout", h.Auth.Logout)
	authGroup.GET("/profile", h.Auth.Profile, requireAuth)
	authGroup.PUT("/profile", h.Auth.UpdateProfile, requireAuth)
	authGroup.PUT("/change-password", h.Auth.ChangePassword, requireAuth)

	userGroup := api.Group("/users", jsonBody, requireAuth)
	userGroup.GET("", h.User.ListUsers, adminOnly)
	userGroup.GET("/:id", h.User.GetUser)
	userGroup.PUT("/:id", h.User.UpdateUser, adminOnly)
	userGroup.DELETE("/:id", h.User.DeleteUser, adminOnly)
	userGroup.PATCH("/:id/deactivate", h.User.DeactivateUser, adminOnly)
	userGroup.PATCH("/:id/activate", h.User.ActivateUser, adminOnly)
	userGroup.PATCH("/:id/promote", h.User.PromoteUser, superAdminOnly)
	userGroup.PATCH("/:id/demote", h.User.DemoteUser, superAdminOnly)

	categoryGroup := api.Group("/categories", jsonBody)
	categoryGroup.GET("/active", h.Category.ListActive)
	categoryGroup.GET("/admin/stats", h.Category.Stats, requireAuth, adminOnly)
	categoryGroup.GET("", h.Category.List, optionalAuth)
	categoryGroup.GET("/:id", h.Category.Get, optionalAuth)
	categoryGroup.GET("/:id/decors", h.Category.Decors, optionalAuth)
	categoryGroup.POST("", h.Category.Create, requireAuth, adminOnly)
	categoryGroup.PUT("/:id", h.Category.Update, requireAuth, adminOnly)
	categoryGroup.DELETE("/:id", h.Category.Delete, requireAuth, adminOnly)

	decorGroup := api.Group("/decors", echomw.BodyLimit(uploadBodyLimit))
	decorGroup.GET("", h.Decor.ListActive)
	decorGroup.GET("/featured", h.Decor.Featured)
	decorGroup.GET("/search", h.Decor.Search)
	decorGroup.GET("/admin/all", h.Decor.ListAll, requireAuth, adminOnly)
	decorGroup.GET("/admin/stats", h.Decor.Stats, requireAuth, adminOnly)
	decorGroup.GET("/:id", h.Decor.Get, optionalAuth)
	decorGroup.POST("", h.Decor.Create, requireAuth, adminOnly)
	decorGroup.PUT("/:id", h.Decor.Update, requireAuth, adminOnly)
	decorGroup.DELETE("/:id", h.Decor.Delete, requireAuth, adminOnly)
	decorGroup.PATCH("/:id/stock", h.Decor.UpdateStock, requireAuth, adminOnly)
}

// authRateLimiter throttles the public auth endpoints per client IP.
func authRateLimiter(rps int) echo.MiddlewareFunc {
	if rps <= 0 {
		rps = 10
	}
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     rps * 2,
		ExpiresIn: 3 * time.Minute,
	})
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(429, "Too many requests, please try again later.")
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator builds the request validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

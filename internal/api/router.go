package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/ghorer-khabar/mealclub/docs"
	"github.com/ghorer-khabar/mealclub/internal/api/handler"
	"github.com/ghorer-khabar/mealclub/internal/api/middleware"
	"github.com/ghorer-khabar/mealclub/internal/core/domain"
	"github.com/ghorer-khabar/mealclub/internal/core/ports"
	httpinfra "github.com/ghorer-khabar/mealclub/internal/infrastructure/http"
	"github.com/ghorer-khabar/mealclub/internal/infrastructure/http/handlers"
)

// AuthService is the auth port plus the gate's session resolution.
type AuthService interface {
	ports.AuthService
	middleware.Authenticator
}

// Dependencies is everything NewRouter wires into the route table.
type Dependencies struct {
	Auth     AuthService
	Tokens   ports.TokenVerifier
	Polls    ports.PollService
	Members  ports.MemberService
	Packages ports.PackageService
	Log      zerolog.Logger

	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
	// AuthRateLimit is requests per second per client IP on register and
	// login; zero disables the limiter.
	AuthRateLimit float64
	AuthRateBurst int

	// Probes are pinged by /health/ready.
	Probes map[string]handlers.Pinger

	// Registerer and Gatherer back the HTTP metrics; nil uses the default
	// Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Pre(middleware.RoutePolicy(deps.Tokens, middleware.DefaultRoutePolicyConfig))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "mealclub",
		Registerer: registerer(deps.Registerer),
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.SecureCookies)
	pollHandler := handler.NewPollHandler(deps.Polls)
	userHandler := handler.NewUserHandler(deps.Members)
	adminUserHandler := handler.NewAdminUserHandler(deps.Members)
	packageHandler := handler.NewPackageHandler(deps.Packages)
	protectedHandler := handler.NewProtectedHandler()
	pageHandler := handler.NewPageHandler()

	authenticated := middleware.RequireCapability(deps.Auth, middleware.Authenticated())
	memberOnly := middleware.RequireCapability(deps.Auth, middleware.RequireRole(domain.RoleMember))
	adminOnly := middleware.RequireCapability(deps.Auth, middleware.RequireRole(domain.RoleAdmin))

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	limited := authRateLimiter(deps.AuthRateLimit, deps.AuthRateBurst)
	auth.POST("/register", authHandler.Register, limited...)
	auth.POST("/login", authHandler.Login, limited...)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/me", authHandler.Me, authenticated)

	// --- Polls ---
	api.GET("/polls", pollHandler.List)
	api.POST("/polls", pollHandler.Create, adminOnly)
	api.GET("/polls/:id", pollHandler.Get, authenticated)
	api.DELETE("/polls/:id", pollHandler.Delete, adminOnly)
	api.POST("/polls/:id/responses", pollHandler.Respond, memberOnly)

	// --- Meal packages ---
	api.GET("/meal-packages", packageHandler.List)

	// --- Member self-service ---
	api.GET("/user/dashboard", userHandler.Dashboard, memberOnly)
	user := api.Group("/user", authenticated)
	user.GET("/payment", userHandler.PaymentInfo)
	user.POST("/payment", userHandler.RecordPayment)
	user.PUT("/meal-package", userHandler.SelectMealPackage)
	user.DELETE("/meal-package", userHandler.ClearMealPackage)
	user.GET("/votes", userHandler.Votes)

	// --- Administration ---
	admin := api.Group("/admin", adminOnly)
	admin.GET("/polls/:id/responses", pollHandler.Responses)
	admin.GET("/packages", packageHandler.List)
	admin.POST("/packages", packageHandler.Create)
	admin.PUT("/packages/:id", packageHandler.Update)
	admin.DELETE("/packages/:id", packageHandler.Delete)
	admin.GET("/users", adminUserHandler.List)
	admin.POST("/users", adminUserHandler.Create)
	admin.PUT("/users/:id", adminUserHandler.Update)
	admin.DELETE("/users/:id", adminUserHandler.Delete)

	// --- Capability probes ---
	api.GET("/protected/user", protectedHandler.User, memberOnly)
	api.GET("/protected/admin", protectedHandler.Admin, adminOnly)

	// --- Page shells (guarded by the route policy) ---
	for _, path := range []string{"/", "/login", "/unauthorized", "/user", "/user/*", "/admin", "/admin/*"} {
		e.GET(path, pageHandler.Show)
	}

	// --- Operations ---
	httpinfra.RegisterProbes(e, deps.Probes)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer(deps.Gatherer),
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// authRateLimiter throttles register and login per client IP. Returns no
// middleware when limit is not positive.
func authRateLimiter(limit float64, burst int) []echo.MiddlewareFunc {
	if limit <= 0 {
		return nil
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(limit),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Try again later")
		},
	})}
}

func registerer(r prometheus.Registerer) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func gatherer(g prometheus.Gatherer) prometheus.Gatherer {
	if g == nil {
		return prometheus.DefaultGatherer
	}
	return g
}

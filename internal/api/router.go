package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/recordhub/records-system/docs"
	"github.com/recordhub/records-system/internal/api/handler"
	"github.com/recordhub/records-system/internal/api/middleware"
	"github.com/recordhub/records-system/internal/core/policy"
	"github.com/recordhub/records-system/internal/core/ports"
)

// Services bundles the use cases the HTTP surface exposes.
type Services struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Employees ports.EmployeeService
	Clients   ports.ClientService
	Projects  ports.ProjectService
	Documents ports.DocumentService
	Reports   ports.ReportService
	Dashboard ports.DashboardService
}

// Options configures the global middleware chain.
type Options struct {
	JWTSecret   string
	Denylist    ports.TokenDenylist
	Readiness   map[string]handler.Pinger
	BodyLimit   string
	CORSOrigins []string
	// RateLimit requests are allowed per client IP within RateWindow.
	// Zero disables limiting.
	RateLimit  int
	RateWindow time.Duration
	Metrics    bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/swagger")
		},
	}))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: corsOrigins(opts.CORSOrigins),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	if opts.BodyLimit != "" {
		e.Use(echomiddleware.BodyLimit(opts.BodyLimit))
	}
	e.Use(echomiddleware.Gzip())
	if opts.RateLimit > 0 && opts.RateWindow > 0 {
		e.Use(rateLimiter(opts.RateLimit, opts.RateWindow))
	}
	if opts.Metrics {
		e.Use(echoprometheus.NewMiddleware("records"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	authMW := middleware.Auth(opts.JWTSecret, opts.Denylist)
	gate := middleware.RBAC

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Users)
	employeeHandler := handler.NewEmployeeHandler(svc.Employees)
	clientHandler := handler.NewClientHandler(svc.Clients)
	projectHandler := handler.NewProjectHandler(svc.Projects)
	documentHandler := handler.NewDocumentHandler(svc.Documents)
	reportHandler := handler.NewReportHandler(svc.Reports)
	dashboardHandler := handler.NewDashboardHandler(svc.Dashboard)

	api := e.Group("/api")

	// --- Auth routes ---
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.GET("/me", authHandler.Me, authMW)
	auth.POST("/logout", authHandler.Logout, authMW)

	// --- Users ---
	users := api.Group("/users", authMW)
	users.GET("", userHandler.List, gate(policy.ResourceUser, policy.ActionList))
	users.POST("", userHandler.Create, gate(policy.ResourceUser, policy.ActionCreate))
	users.GET("/profile/me", userHandler.Profile)
	users.PUT("/profile/me", userHandler.UpdateProfile)
	users.GET("/:id", userHandler.Get, gate(policy.ResourceUser, policy.ActionRead))
	users.PUT("/:id", userHandler.Update, gate(policy.ResourceUser, policy.ActionUpdate))
	users.PUT("/:id/password", userHandler.ChangePassword) // admin or self, checked by the service
	users.DELETE("/:id", userHandler.Delete, gate(policy.ResourceUser, policy.ActionDelete))

	// --- Employees ---
	employees := api.Group("/employees", authMW)
	employees.GET("", employeeHandler.List, gate(policy.ResourceEmployee, policy.ActionList))
	employees.POST("", employeeHandler.Create, gate(policy.ResourceEmployee, policy.ActionCreate))
	employees.GET("/:id", employeeHandler.Get, gate(policy.ResourceEmployee, policy.ActionRead))
	employees.PUT("/:id", employeeHandler.Update, gate(policy.ResourceEmployee, policy.ActionUpdate))
	employees.DELETE("/:id", employeeHandler.Delete, gate(policy.ResourceEmployee, policy.ActionDelete))

	// --- Clients ---
	clients := api.Group("/clients", authMW)
	clients.GET("", clientHandler.List, gate(policy.ResourceClient, policy.ActionList))
	clients.POST("", clientHandler.Create, gate(policy.ResourceClient, policy.ActionCreate))
	clients.GET("/:id", clientHandler.Get, gate(policy.ResourceClient, policy.ActionRead))
	clients.PUT("/:id", clientHandler.Update, gate(policy.ResourceClient, policy.ActionUpdate))
	clients.POST("/:id/contracts", clientHandler.AddContract, gate(policy.ResourceClient, policy.ActionUpdate))

	// --- Projects ---
	projects := api.Group("/projects", authMW)
	projects.GET("", projectHandler.List, gate(policy.ResourceProject, policy.ActionList))
	projects.POST("", projectHandler.Create, gate(policy.ResourceProject, policy.ActionCreate))
	projects.GET("/:id", projectHandler.Get, gate(policy.ResourceProject, policy.ActionRead))
	projects.PUT("/:id", projectHandler.Update, gate(policy.ResourceProject, policy.ActionUpdate))
	projects.POST("/:id/team", projectHandler.AddTeamMember, gate(policy.ResourceProject, policy.ActionAddTeam))
	projects.GET("/:id/milestones", projectHandler.Milestones, gate(policy.ResourceProject, policy.ActionRead))
	projects.POST("/:id/milestones", projectHandler.AddMilestone, gate(policy.ResourceProject, policy.ActionUpdate))

	// --- Documents ---
	documents := api.Group("/documents", authMW)
	documents.POST("/upload", documentHandler.Upload, gate(policy.ResourceDocument, policy.ActionCreate))
	documents.GET("", documentHandler.List, gate(policy.ResourceDocument, policy.ActionList))
	documents.GET("/:id", documentHandler.Get, gate(policy.ResourceDocument, policy.ActionRead))
	documents.GET("/:id/download", documentHandler.Download, gate(policy.ResourceDocument, policy.ActionRead))
	documents.PUT("/:id", documentHandler.Update, gate(policy.ResourceDocument, policy.ActionUpdate))
	documents.POST("/:id/versions", documentHandler.AddVersion, gate(policy.ResourceDocument, policy.ActionUpdate))
	documents.PUT("/:id/archive", documentHandler.Archive, gate(policy.ResourceDocument, policy.ActionArchive))

	// --- Reports and dashboard (per-report rules are applied by the service) ---
	reports := api.Group("/reports", authMW)
	reports.GET("/stats", reportHandler.Stats)
	reports.POST("/:report", reportHandler.Generate)

	dashboard := api.Group("/dashboard", authMW)
	dashboard.GET("/stats", dashboardHandler.Stats)
	dashboard.GET("/activities", dashboardHandler.Activities)

	// --- Stored files ---
	e.GET("/uploads/:name", documentHandler.ServeFile, authMW, gate(policy.ResourceDocument, policy.ActionRead))

	// --- Health checks (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(opts.Readiness)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness) // Mongo and Redis

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
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
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// rateLimiter allows limit requests per client IP over window, with the
// whole allowance available as burst.
func rateLimiter(limit int, window time.Duration) echo.MiddlewareFunc {
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: window,
	})
	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/health/ready" || c.Path() == "/metrics"
		},
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
		},
	})
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

package server

import (
	"context"
	"log/slog"
	"net/http"
	"subscription-tracker/internal/handler"
	authmw "subscription-tracker/internal/middleware"
	"subscription-tracker/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Services bundles what the HTTP layer calls into.
type Services struct {
	Identity     service.IdentityService
	Catalog      service.CatalogService
	Cart         service.CartService
	Purchase     service.PurchaseService
	Subscription service.SubscriptionService
	Dashboard    service.DashboardService
}

type Server struct {
	echo                *echo.Echo
	jwtSecret           []byte
	identityService     service.IdentityService
	catalogHandler      *handler.CatalogHandler
	cartHandler         *handler.CartHandler
	subscriptionHandler *handler.SubscriptionHandler
	userHandler         *handler.UserHandler
}

func NewServer(services Services, jwtSecret string, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", slog.Group("http", attrs...))
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo:                e,
		jwtSecret:           []byte(jwtSecret),
		identityService:     services.Identity,
		catalogHandler:      handler.NewCatalogHandler(services.Catalog, services.Purchase),
		cartHandler:         handler.NewCartHandler(services.Cart, services.Purchase),
		subscriptionHandler: handler.NewSubscriptionHandler(services.Subscription),
		userHandler:         handler.NewUserHandler(services.Dashboard),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	user := api.Group("", authmw.AuthMiddleware(s.jwtSecret, s.identityService))
	user.GET("/me", s.userHandler.Me)
	user.GET("/dashboard", s.userHandler.Dashboard)
	user.GET("/packages", s.catalogHandler.ListActivePackages)

	// -------- cart --------
	user.GET("/cart", s.cartHandler.GetCart)
	user.POST("/cart", s.cartHandler.AddToCart)
	user.POST("/cart/purchase", s.cartHandler.Purchase)
	user.DELETE("/cart/:id", s.cartHandler.RemoveFromCart)

	user.GET("/user-subscriptions", s.cartHandler.ListUserSubscriptions)
	user.POST("/user-subscriptions/:id/cancel", s.cartHandler.CancelUserSubscription)

	// -------- ledger --------
	user.GET("/subscriptions", s.subscriptionHandler.ListSubscriptions)
	user.POST("/subscriptions", s.subscriptionHandler.CreateSubscription)
	user.GET("/subscriptions/metrics", s.subscriptionHandler.Metrics)
	user.GET("/subscriptions/:id", s.subscriptionHandler.GetSubscription)
	user.PATCH("/subscriptions/:id", s.subscriptionHandler.UpdateSubscription)
	user.DELETE("/subscriptions/:id", s.subscriptionHandler.DeleteSubscription)
	user.PUT("/subscriptions/:id/active", s.subscriptionHandler.SetActive)
	user.PUT("/subscriptions/:id/usage", s.subscriptionHandler.UpdateUsage)
	user.GET("/subscriptions/:id/payments", s.subscriptionHandler.ListPayments)
	user.POST("/subscriptions/:id/payments", s.subscriptionHandler.RecordPayment)

	// -------- admin --------
	admin := user.Group("/admin", authmw.RequireAdmin())
	admin.GET("/packages", s.catalogHandler.ListPackages)
	admin.POST("/packages", s.catalogHandler.CreatePackage)
	admin.GET("/packages/:id", s.catalogHandler.GetPackage)
	admin.PUT("/packages/:id", s.catalogHandler.UpdatePackage)
	admin.DELETE("/packages/:id", s.catalogHandler.DeletePackage)
	admin.POST("/user-subscriptions/:id/credits", s.catalogHandler.GrantCredits)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

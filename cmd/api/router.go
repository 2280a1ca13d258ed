package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giovaniif/instrument-closet/infra/auth"
	"github.com/giovaniif/instrument-closet/infra/config"
	"github.com/giovaniif/instrument-closet/infra/logging"
	"github.com/giovaniif/instrument-closet/infra/metrics"
	"github.com/giovaniif/instrument-closet/infra/requestid"
	"github.com/giovaniif/instrument-closet/infra/tracing"
)

const serviceName = "instrument-closet"

func NewRouter(app *App, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestid.Middleware, tracing.Middleware(), logging.Middleware(logger), metrics.Middleware)
	r.Use(auth.Authenticate(app.Tokens))
	timeout := time.Duration(app.Config.RequestTimeoutSeconds) * time.Second
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		status, checks := app.Health(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"status": status, "checks": checks})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handlers{app: app}

	authGroup := r.Group("/auth")
	authGroup.POST("/token", h.token)
	authGroup.POST("/register", h.register)

	users := r.Group("/users")
	users.GET("", auth.RequireAdmin, h.listUsers)
	users.GET("/:username", auth.RequireCorrectUserOrAdmin, h.getUser)
	users.PATCH("/:username", auth.RequireCorrectUserOrAdmin, h.updateUser)
	users.DELETE("/:username", auth.RequireCorrectUserOrAdmin, h.deleteUser)

	instruments := r.Group("/instruments")
	instruments.POST("", auth.RequireAdmin, h.createInstrument)
	instruments.GET("", h.listInstruments)
	instruments.GET("/:id", h.getInstrument)
	instruments.PATCH("/:id", auth.RequireAdmin, h.updateInstrument)
	instruments.DELETE("/:id", auth.RequireAdmin, h.deleteInstrument)
	instruments.GET("/:id/availability", h.availability)
	instruments.PUT("/:id/image", auth.RequireAdmin, h.attachImage)
	instruments.POST("/:id/categories/:categoryId", auth.RequireAdmin, h.tag)
	instruments.DELETE("/:id/categories/:categoryId", auth.RequireAdmin, h.untag)

	categories := r.Group("/categories")
	categories.POST("", auth.RequireAdmin, h.createCategory)
	categories.GET("", h.listCategories)
	categories.GET("/:id", h.getCategory)
	categories.PATCH("/:id", auth.RequireAdmin, h.renameCategory)
	categories.DELETE("/:id", auth.RequireAdmin, h.deleteCategory)

	reservations := r.Group("/reservations", auth.RequireLoggedIn)
	reservations.POST("", h.createReservation)
	reservations.GET("", h.listReservations)
	reservations.GET("/:id", h.getReservation)
	reservations.PATCH("/:id", h.updateReservation)
	reservations.DELETE("/:id", h.deleteReservation)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"message": "Not Found", "status": http.StatusNotFound}})
	})
	return r
}

// StartServer serves the API until ctx is cancelled or SIGINT/SIGTERM arrives.
func StartServer(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, serviceName, cfg.OtelEndpoint)
	if err != nil {
		logger.WarnContext(ctx, "tracing disabled", "error", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	app, err := NewApp(ctx, cfg, Collaborators{})
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(context.Background()); err != nil {
			logger.Warn("close resources", "error", err)
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           NewRouter(app, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "instrument closet listening", "port", cfg.Port, "store", cfg.StoreDriver, "locker", cfg.Locker)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}

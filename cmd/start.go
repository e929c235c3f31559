package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postcard-sync/core/loader"
	"postcard-sync/core/logger"
	"postcard-sync/core/middleware/auth"
	"postcard-sync/core/middleware/rayid"
	"postcard-sync/core/storage"
	"postcard-sync/feature/card"
	"postcard-sync/feature/integrity"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "postcard-sync/docs/swagger"
)

// @title Postcard Sync API
// @version 1.0
// @description API for creating postcards locally and reconciling them with the remote service.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the postcard sync server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		d, err := buildDeps(reg)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		logg := d.logger
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// media routes fail until the bucket exists; cards still work without it
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := storage.EnsureBucket(ctx, d.storage, d.cfg.Storage.Bucket, d.cfg.Storage.Region); err != nil {
			logg.Warn("Storage bucket unavailable", zap.Error(err))
		}
		cancel()

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
			BodyLimit:             d.cfg.Server.BodyLimit(),
		})

		mgr := loader.NewManager(logg)
		mgr.Register(card.NewFeature(d.service))
		mgr.Register(integrity.NewFeature(d.integrityDeps()))

		// RayID first so every later log line carries it
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

		app.Use(auth.New(auth.Config{
			ApiKey: d.cfg.Server.ApiKey,
			Skip:   []string{"/swagger", "/metrics"},
		}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", d.cfg.Server.Port))
			if err := app.Listen(d.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

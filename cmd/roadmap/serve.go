package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gminsights/roadmap-api/internal/auth"
	"github.com/gminsights/roadmap-api/internal/catalog"
	"github.com/gminsights/roadmap-api/internal/database"
	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/handlers"
	"github.com/gminsights/roadmap-api/internal/middleware"
	"github.com/gminsights/roadmap-api/internal/prefs"
	"github.com/gminsights/roadmap-api/internal/routes"
	"github.com/gminsights/roadmap-api/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the roadmap HTTP API.

Optional integrations are enabled by configuration:
  REDIS_ADDR           keep last-viewed project in Redis instead of SQL
  AMQP_URL             publish change events to a RabbitMQ topic exchange
  FCM_SERVICE_ACCOUNT  push new status updates to registered devices`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (defaults to PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(a.db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	goals, err := catalog.Load(a.cfg.GoalsFile)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(a.store.Profiles, a.cfg.JWTSecret, log)
	hub := events.NewHub(log)
	publishers := events.Multi{hub, events.NewActivityLog(a.store.Activities, log)}

	if a.cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(a.cfg.AMQPURL, a.cfg.AMQPExchange, log)
		if err != nil {
			log.Warn("AMQP publishing disabled", zap.Error(err))
		} else {
			defer amqpPub.Close()
			publishers = append(publishers, amqpPub)
		}
	}

	push, err := services.NewPush(ctx, a.cfg.FCMServiceAccount, a.store.Profiles, log)
	if err != nil {
		log.Warn("push notifications disabled", zap.Error(err))
	} else {
		defer push.Wait()
		publishers = append(publishers, push)
	}

	var preferences prefs.Store = prefs.NewSQLStore(a.db)
	if a.cfg.RedisAddr != "" {
		rs := prefs.NewRedisStore(a.cfg.RedisAddr, a.cfg.RedisPassword, a.cfg.RedisDB)
		if err := rs.Ping(ctx); err != nil {
			log.Warn("redis unavailable, keeping preferences in SQL", zap.Error(err))
			_ = rs.Close()
		} else {
			defer rs.Close()
			preferences = rs
		}
	}

	h := handlers.New(handlers.Deps{
		Store:             a.store,
		Auth:              authSvc,
		Goals:             goals,
		Hub:               hub,
		Publisher:         publishers,
		Preferences:       preferences,
		Logger:            log,
		LegacyNotesOnLoad: a.cfg.LegacyNotesOnLoad,
	})
	defer h.Close()

	server := fiber.New(fiber.Config{AppName: "roadmap-api"})
	server.Use(recover.New())
	server.Use(cors.New())
	server.Use(middleware.Observe(log))
	routes.Setup(server, h, authSvc)

	port := servePort
	if port == "" {
		port = a.cfg.Port
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting roadmap API", zap.String("port", port))
		errCh <- server.Listen(":" + port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return server.ShutdownWithTimeout(10 * time.Second)
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"employee_tracker/handler"
	"employee_tracker/services"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	servePort        string
	serveNoScheduler bool
	serveNoConsumer  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the auto-checkout scheduler and the push consumer",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveNoScheduler, "no-scheduler", false, "Do not schedule the daily auto-checkout")
	serveCmd.Flags().BoolVar(&serveNoConsumer, "no-consumer", false, "Do not deliver queued push notifications from this process")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.setupIndexes(ctx); err != nil {
		return err
	}

	checks := map[string]handler.Pinger{
		"mongo": handler.PingFunc(func(ctx context.Context) error {
			return a.mongo.Ping(ctx, readpref.Primary())
		}),
		"redis": nil,
	}
	if a.redis != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}

	deps := handler.RouterDeps{
		Attendance:     a.attendance,
		Activity:       a.activity,
		Users:          a.users,
		Warehouses:     a.warehouses,
		Tokens:         a.tokens,
		Health:         handler.NewHealthHandler(checks),
		AllowedOrigins: a.cfg.AllowedOrigins,
	}
	if a.blacklist != nil {
		deps.Blacklist = a.blacklist
	}
	router := handler.NewRouter(deps)

	var scheduler *services.AutoCheckoutScheduler
	if !serveNoScheduler {
		scheduler, err = services.NewAutoCheckoutScheduler(a.cfg.AutoCheckoutCron, a.cfg.Timezone, func(ctx context.Context) error {
			_, err := a.attendance.ReconcileOpenSessions(ctx)
			return err
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		log.Printf("Next auto-checkout at %s", scheduler.Next(time.Now()).Format(time.RFC1123))
	}

	consumerDone := make(chan struct{})
	if a.cfg.RabbitMQURL != "" && !serveNoConsumer {
		consumer := services.NewPushConsumer(a.cfg.RabbitMQURL, services.NewExpoPushClient(a.cfg.ExpoPushURL))
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("push-consumer: stopped: %v", err)
			}
		}()
	} else {
		close(consumerDone)
	}

	port := a.cfg.Port
	if servePort != "" {
		port = servePort
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := a.attendance.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: pending notifications were not sent: %v", err)
	}
	select {
	case <-consumerDone:
	case <-shutdownCtx.Done():
	}

	log.Println("Server shutdown complete")
	return nil
}

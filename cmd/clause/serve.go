package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/benjaminschreck/go-clause/internal/config"
	"github.com/benjaminschreck/go-clause/internal/service"
	"github.com/benjaminschreck/go-clause/internal/store"
	"github.com/benjaminschreck/go-clause/internal/transport/rest"
)

func newServeCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("mongo-uri", "", "MongoDB URI; templates are kept in memory when empty")
	cmd.Flags().String("redis-addr", "", "Redis address for the template cache")
	c.viper.BindPFlag(config.KeyHTTPAddr, cmd.Flags().Lookup("addr"))
	c.viper.BindPFlag(config.KeyMongoURI, cmd.Flags().Lookup("mongo-uri"))
	c.viper.BindPFlag(config.KeyRedisAddr, cmd.Flags().Lookup("redis-addr"))
	return cmd
}

func (c *cli) serve(ctx context.Context) error {
	s := c.settings

	templates, cleanup, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	router := rest.NewRouter(&rest.Container{
		Templates:      service.NewTemplateService(templates, c.engine, c.logger),
		Metrics:        rest.MustNewMetrics(registry, c.engine.Cache()),
		Gatherer:       registry,
		Logger:         c.logger,
		MaxUploadBytes: s.HTTP.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              s.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.WithField("addr", s.HTTP.Addr).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	c.logger.Info("Server exited")
	return nil
}

// openStore connects the configured backends. The returned cleanup closes them.
func (c *cli) openStore(ctx context.Context) (store.Store, func(), error) {
	s := c.settings
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	templates := store.NewMemoryStore()
	if s.Mongo.URI != "" {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(s.Mongo.URI))
		if err != nil {
			return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
		}
		closers = append(closers, func() { client.Disconnect(context.Background()) })
		if err := client.Ping(connectCtx, nil); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("ping MongoDB: %w", err)
		}
		templates = store.NewMongoStore(client.Database(s.Mongo.Database))
		c.logger.WithField("database", s.Mongo.Database).Info("Connected to MongoDB")
	} else {
		c.logger.Warn("No MongoDB URI configured, templates are kept in memory")
	}

	if s.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: s.Redis.Addr})
		closers = append(closers, func() { rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("ping Redis: %w", err)
		}
		templates = store.NewRedisCache(templates, rdb, s.Redis.TTL, c.logger)
		c.logger.WithField("addr", s.Redis.Addr).Info("Connected to Redis")
	}

	return templates, cleanup, nil
}

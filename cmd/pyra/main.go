package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/emilythestrangee/pyra/backend/internal/config"
	"github.com/emilythestrangee/pyra/backend/internal/database"
	"github.com/emilythestrangee/pyra/backend/internal/lock"
	"github.com/emilythestrangee/pyra/backend/internal/logging"
	"github.com/emilythestrangee/pyra/backend/internal/server"
	"github.com/emilythestrangee/pyra/backend/internal/voting"
)

var version = "dev"

var (
	envFile string
	port    string
	cfg     *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "pyra",
	Short:        "Pyra news, fact-check and voting API",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		var err error
		cfg, err = config.Load(files...)
		if err != nil {
			// slog is not configured yet
			log.Printf("failed to load config: %v", err)
			return err
		}
		if port != "" {
			cfg.Port = port
		}

		logging.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "config-env-file", "", "Path to a .env file (default: ./.env if present)")

	serveCmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pyra", version)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return db.Migrate()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.IsDevelopment() {
			gin.SetMode(gin.ReleaseMode)
		}
		slog.Info("application starting", "env", cfg.AppEnv, "port", cfg.Port, "driver", cfg.DBDriver)

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Migrate(); err != nil {
			return err
		}

		var locker lock.Locker[voting.VoteKey] = lock.NewLocal[voting.VoteKey]()
		if cfg.RedisURL != "" {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			client, err := lock.NewRedisClient(ctx, cfg.RedisURL)
			cancel()
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			locker = lock.Chain[voting.VoteKey]{
				locker,
				lock.NewRedis[voting.VoteKey](client, "pyra:", cfg.VoteLockTTL),
			}
			slog.Info("redis vote lock enabled")
		}

		srv := server.New(server.Options{
			Config: cfg,
			DB:     db,
			Locker: locker,
			Clock:  clockwork.NewRealClock(),
			Logger: slog.Default(),
		}).HTTPServer()

		return run(srv)
	},
}

func openDB() (*database.Database, error) {
	return database.Open(database.Options{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DSN(),
		LogLevel: cfg.LogLevel,
		Logger:   slog.Default(),
	})
}

// run serves until SIGINT/SIGTERM, then drains in-flight requests.
func run(srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-sigChan:
		slog.Info("shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

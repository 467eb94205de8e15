package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/katalog/internal/api"
	"github.com/erazemk/katalog/internal/assets"
	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/config"
	"github.com/erazemk/katalog/internal/db"
	"github.com/erazemk/katalog/internal/logging"
	"github.com/erazemk/katalog/internal/metrics"
	"github.com/erazemk/katalog/internal/store"
	"github.com/erazemk/katalog/internal/web"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("katalog", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, "")
	fs.StringVar(&cfg.DatabaseURL, "d", cfg.DatabaseURL, "")

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fs.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")

	fs.BoolVar(&cfg.Seed, "seed", cfg.Seed, "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: katalog [flags]

Flags:
  -d, -db <path>          SQLite database path (default: katalog.sqlite3, env DATABASE_URL)
  -a, -addr <host:port>   listen address (default: :8080, env APP_ADDR)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -seed                   load sample data into an empty catalog
  -h, -help               show this help and exit

The write password for items is read from WRITE_SECRET.
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	closeLog, err := logging.Setup(logging.Options{
		Level:  cfg.LogLevel,
		Path:   cfg.LogPath,
		Pretty: cfg.IsDev(),
	})
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		return err
	}
	slog.Info("database ready", "path", cfg.DatabaseURL)

	ctx := context.Background()

	// An empty catalog is seeded in development.
	if cfg.Seed || cfg.IsDev() {
		seeded, err := store.Seed(ctx, database)
		if err != nil {
			return fmt.Errorf("seeding catalog: %w", err)
		}
		if seeded {
			slog.Info("catalog seeded with sample data")
		}
	}

	formKey, err := store.GetSecret(ctx, database, store.SettingFormKey)
	if err != nil {
		return fmt.Errorf("loading form key: %w", err)
	}

	gate, err := catalog.NewPasswordGate(cfg.WriteSecret)
	if err != nil {
		return err
	}

	m := metrics.New()

	backend, uploads, err := photoBackend(cfg)
	if err != nil {
		return err
	}
	manager := assets.NewManager(backend, assets.WithFailureCounter(m.RemovalFailures))

	handler, err := web.NewRouter(web.Options{
		DB:             database,
		Catalog:        catalog.New(database, gate, manager, catalog.WithOutcomes(m.Mutations)),
		FormKey:        formKey,
		Production:     cfg.IsProduction(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		Uploads:        uploads,
		Metrics:        m,
		API:            api.NewRouter(database),
	})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "env", cfg.Env)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serving: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// photoBackend picks S3 when configured, the upload directory otherwise.
// The returned handler serves disk uploads and is nil for S3.
func photoBackend(cfg *config.Config) (assets.Backend, http.Handler, error) {
	if cfg.S3.Enabled() {
		s3, err := assets.NewS3(assets.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		slog.Info("storing photos in S3", "bucket", cfg.S3.Bucket)
		return s3, nil, nil
	}

	disk, err := assets.NewDisk(cfg.UploadDir, cfg.UploadURLPrefix)
	if err != nil {
		return nil, nil, err
	}
	slog.Info("storing photos on disk", "dir", cfg.UploadDir)
	return disk, disk.Handler(), nil
}

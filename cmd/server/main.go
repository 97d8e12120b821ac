package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/geoguess/internal/catalog"
	"github.com/playperu/geoguess/internal/config"
	"github.com/playperu/geoguess/internal/database"
	"github.com/playperu/geoguess/internal/game"
	"github.com/playperu/geoguess/internal/handler/health"
	"github.com/playperu/geoguess/internal/migrations"
	"github.com/playperu/geoguess/internal/server"
)

const janitorInterval = time.Minute

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	// A missing .env is fine; the environment alone is enough.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	// --- Catalog ---
	store := catalog.NewStore(db)
	if err := seedCatalog(ctx, logger, store, cfg.CatalogFile); err != nil {
		return err
	}
	locations, err := server.NewCatalog(ctx, store, nil)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	logger.Info("catalog loaded", "locations", locations.Pool().Len())

	// --- Games ---
	broker := server.NewBroker()
	games := server.NewGames(logger, clockwork.NewRealClock(), locations, broker, server.GameSettings{
		MaxRounds:     cfg.MaxRounds,
		RoundDuration: cfg.RoundDuration,
		IdleTTL:       cfg.IdleTTL,
	})
	defer games.Close()

	var admin *server.AdminCredentials
	if cfg.AdminEnabled() {
		admin = &server.AdminCredentials{User: cfg.AdminUser, PasswordHash: cfg.AdminPasswordHash}
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
			"sqlite":  health.CheckerFunc(db.PingContext),
			"catalog": catalogChecker{store: store, catalog: locations},
		}).Routes())
		server.AddRoutes(r, logger, server.Deps{
			Games:   games,
			Catalog: locations,
			Broker:  broker,
			Admin:   admin,
		})
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	g.Go(func() error {
		return games.RunJanitor(gctx, janitorInterval)
	})

	return g.Wait()
}

// seedCatalog fills an empty catalog table from path, or from the embedded
// default catalog when path is blank.
func seedCatalog(ctx context.Context, logger *slog.Logger, store *catalog.Store, path string) error {
	source := "embedded"
	var locs []game.Location
	if path != "" {
		var err error
		if locs, err = catalog.LoadFile(path); err != nil {
			return fmt.Errorf("reading catalog file: %w", err)
		}
		source = path
	} else {
		locs = catalog.Default()
	}

	seeded, err := store.SeedIfEmpty(ctx, locs)
	if err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}
	if seeded {
		logger.Info("seeded catalog", "source", source, "locations", len(locs))
	}
	return nil
}

// catalogChecker reports the stored catalog and the in-memory pool.
type catalogChecker struct {
	store   *catalog.Store
	catalog *server.Catalog
}

func (c catalogChecker) Check(ctx context.Context) error {
	if err := c.store.Check(ctx); err != nil {
		return err
	}
	if c.catalog.Pool().Len() == 0 {
		return game.ErrCatalogEmpty
	}
	return nil
}

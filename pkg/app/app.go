// Package app wires configuration, storage, repositories and controllers
// into a runnable HTTP application and backs the CLI commands.
//
//	cfg, _ := config.Load(config.DefaultJSONPath, config.DefaultEnvPath)
//	a, err := app.New(ctx, cfg, app.WithLogger(log))
//	defer a.Close()
//	err = a.Serve(ctx)
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/commandes/config"
	"github.com/shashiranjanraj/commandes/database/seeders"
	"github.com/shashiranjanraj/commandes/internal/server"
	"github.com/shashiranjanraj/commandes/pkg/database"
	"github.com/shashiranjanraj/commandes/pkg/logger"
	"github.com/shashiranjanraj/commandes/pkg/migration"
	"github.com/shashiranjanraj/commandes/pkg/router"
	"github.com/shashiranjanraj/commandes/pkg/storage"

	// Registers the schema migrations with pkg/migration.
	_ "github.com/shashiranjanraj/commandes/database/migrations"
)

// App owns the long-lived resources of one process.
type App struct {
	cfg  *config.Config
	log  *slog.Logger
	db   *gorm.DB
	disk storage.Disk

	closers []func()
}

// Option customises New.
type Option func(*App)

// WithLogger replaces the logger built from APP_ENV.
func WithLogger(log *slog.Logger) Option {
	return func(a *App) { a.log = log }
}

// WithDB uses an already opened database instead of connecting from cfg.
// The caller keeps ownership of db.
func WithDB(db *gorm.DB) Option {
	return func(a *App) { a.db = db }
}

// WithDisk replaces the disk selected by STORAGE_DISK.
func WithDisk(d storage.Disk) Option {
	return func(a *App) { a.disk = d }
}

// New connects the database and storage disk described by cfg. When
// LOG_MONGO_URI is set, log records are also shipped to MongoDB.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.New(cfg.AppEnv)
	}

	if cfg.LogMongoURI != "" {
		mh, err := logger.NewMongoHandler(ctx, cfg.LogMongoURI, cfg.LogMongoDB, cfg.LogMongoCollection, nil)
		if err != nil {
			a.log.Warn("mongo log sink disabled", "error", err)
		} else {
			a.log = slog.New(logger.NewMultiHandler(a.log.Handler(), mh))
			a.closers = append(a.closers, mh.Close)
		}
	}

	if a.db == nil {
		db, err := database.Connect(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = db
		a.closers = append(a.closers, func() {
			if err := database.Close(db); err != nil {
				a.log.Error("database close failed", "error", err)
			}
		})
	}

	if a.disk == nil {
		disk, err := storage.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.disk = disk
	}

	return a, nil
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.log }

// DB returns the pooled database handle.
func (a *App) DB() *gorm.DB { return a.db }

// Handler builds the full HTTP handler.
func (a *App) Handler() http.Handler {
	return buildRouter(a.cfg, a.log, a.db, a.disk).Handler()
}

// Serve listens on APP_PORT until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	return server.Run(ctx, ":"+a.cfg.AppPort, a.Handler(), a.log)
}

// Migrator returns a migration runner writing progress to out.
func (a *App) Migrator(out io.Writer) *migration.Runner {
	return migration.New(a.db, a.log, out)
}

// Seed runs every registered seeder.
func (a *App) Seed(ctx context.Context, out io.Writer) error {
	return seeders.RunAll(ctx, a.db, a.cfg, out)
}

// Close releases what New opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// RouteList builds the router without touching the database and returns
// its API routes.
func RouteList(cfg *config.Config) []router.RouteInfo {
	return buildRouter(cfg, logger.Discard(), nil, nil).Routes()
}

// PrintRoutes writes routes as an aligned table.
func PrintRoutes(out io.Writer, routes []router.RouteInfo) {
	if len(routes) == 0 {
		fmt.Fprintln(out, "No routes registered.")
		return
	}
	fmt.Fprintf(out, "%-8s  %-40s  %s\n", "METHOD", "PATH", "NAME")
	for _, ri := range routes {
		fmt.Fprintf(out, "%-8s  %-40s  %s\n", ri.Method, ri.Path, ri.Name)
	}
}

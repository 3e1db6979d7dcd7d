package app

import (
	"log/slog"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/commandes/app/controllers"
	"github.com/shashiranjanraj/commandes/app/repositories"
	"github.com/shashiranjanraj/commandes/app/routes"
	"github.com/shashiranjanraj/commandes/app/services"
	"github.com/shashiranjanraj/commandes/config"
	"github.com/shashiranjanraj/commandes/pkg/auth"
	"github.com/shashiranjanraj/commandes/pkg/metrics"
	"github.com/shashiranjanraj/commandes/pkg/middleware"
	"github.com/shashiranjanraj/commandes/pkg/reqid"
	"github.com/shashiranjanraj/commandes/pkg/router"
	"github.com/shashiranjanraj/commandes/pkg/storage"
)

// buildRouter assembles middleware, controllers and routes. db and disk
// may be nil when only the route table is needed.
func buildRouter(cfg *config.Config, log *slog.Logger, db *gorm.DB, disk storage.Disk) *router.Router {
	r := router.New()

	// Global middleware stack (outermost → innermost):
	//  1. Prometheus metrics: outermost for accurate total latency
	//  2. Recovery: catches panics before they kill the goroutine
	//  3. Request ID: inject unique ID before anything logs
	//  4. Logger: logs request_id from context
	//  5. CORS: FRONTEND_URL with credentials
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery(log))
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(middleware.FrontendCORSOptions(cfg.FrontendURL)))

	r.Mount("/metrics", metrics.Handler())
	if local, ok := disk.(*storage.LocalDisk); ok && strings.HasPrefix(cfg.UploadURL, "/") {
		r.Mount(cfg.UploadURL, http.StripPrefix(cfg.UploadURL, http.FileServer(http.Dir(local.Root()))))
	}

	hasher := auth.NewBcrypt(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg)
	orders := repositories.NewOrderRepository(db, repositories.WithLocation(cfg.Location))
	users := repositories.NewUserRepository(db, hasher)

	api := routes.API{
		Orders: controllers.NewOrderController(orders, services.NewImageService(disk)),
		Users:  controllers.NewUserController(users),
		Auth:   controllers.NewAuthController(services.NewAuthService(users, hasher, tokens)),
	}
	if cfg.AuthRequired {
		api.Tokens = tokens
	}
	routes.RegisterAPI(r, api)

	return r
}

package routes

import (
	"net/http"

	"github.com/shashiranjanraj/commandes/app/controllers"
	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/pkg/ctx"
	"github.com/shashiranjanraj/commandes/pkg/middleware"
	"github.com/shashiranjanraj/commandes/pkg/rbac"
	"github.com/shashiranjanraj/commandes/pkg/response"
	"github.com/shashiranjanraj/commandes/pkg/router"
)

// API holds the controllers mounted under /api. When Tokens is set every
// order and user route requires a bearer token and user management is
// limited to admins.
type API struct {
	Orders *controllers.OrderController
	Users  *controllers.UserController
	Auth   *controllers.AuthController
	Tokens middleware.TokenParser
}

func RegisterAPI(r *router.Router, api API) {
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route non trouvée")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Méthode non autorisée")
	})

	r.Get("/health", "health", ctx.Wrap(controllers.Health))

	var protected, admin []router.Middleware
	if api.Tokens != nil {
		protected = []router.Middleware{middleware.Auth(api.Tokens)}
		admin = append(protected, rbac.HasRole(models.TypeAdmin))
	}

	orders := r.Group("/api/commandes", protected...)
	orders.Get("/today", "commandes.today", ctx.Wrap(api.Orders.Today))
	orders.Get("/week", "commandes.week", ctx.Wrap(api.Orders.Week))
	orders.Get("/stats/dashboard", "commandes.dashboard", ctx.Wrap(api.Orders.Dashboard))
	orders.Get("/stats", "commandes.stats", ctx.Wrap(api.Orders.Stats))
	orders.Get("/", "commandes.index", ctx.Wrap(api.Orders.Index))
	orders.Get("/{id}", "commandes.show", ctx.Wrap(api.Orders.Show))
	orders.Post("/", "commandes.store", ctx.Wrap(api.Orders.Store))
	orders.Put("/{id}", "commandes.update", ctx.Wrap(api.Orders.Update))
	orders.Delete("/{id}", "commandes.destroy", ctx.Wrap(api.Orders.Destroy))
	orders.Delete("/images/{imageId}", "commandes.images.destroy", ctx.Wrap(api.Orders.DestroyImage))

	r.Post("/api/users/login", "users.login", ctx.Wrap(api.Auth.Login))

	users := r.Group("/api/users", admin...)
	users.Get("/", "users.index", ctx.Wrap(api.Users.Index))
	users.Get("/{id}", "users.show", ctx.Wrap(api.Users.Show))
	users.Post("/", "users.store", ctx.Wrap(api.Users.Store))
	users.Put("/{id}", "users.update", ctx.Wrap(api.Users.Update))
	users.Delete("/{id}", "users.destroy", ctx.Wrap(api.Users.Destroy))
}

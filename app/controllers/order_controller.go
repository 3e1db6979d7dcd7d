package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/app/repositories"
	"github.com/shashiranjanraj/commandes/app/services"
	"github.com/shashiranjanraj/commandes/pkg/bind"
	"github.com/shashiranjanraj/commandes/pkg/ctx"
	"github.com/shashiranjanraj/commandes/pkg/metrics"
	"github.com/shashiranjanraj/commandes/pkg/response"
	"github.com/shashiranjanraj/commandes/pkg/validate"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

const (
	msgOrderNotFound = "Commande non trouvée"
	msgImageNotFound = "Image non trouvée"
	msgBadStatus     = "Statut invalide (confirmed, delivered ou cancelled)"
)

// OrderController serves /api/commandes.
type OrderController struct {
	orders *repositories.OrderRepository
	images *services.ImageService
}

func NewOrderController(orders *repositories.OrderRepository, images *services.ImageService) *OrderController {
	return &OrderController{orders: orders, images: images}
}

// orderInput is the writable shape of an order as it arrives in a form.
type orderInput struct {
	Nom         string `form:"nom"         validate:"required,max=255"`
	Prenom      string `form:"prenom"      validate:"required,max=255"`
	Wilaya      string `form:"wilaya"      validate:"required,max=100"`
	Total       string `form:"total"       validate:"required,numeric,gte=0"`
	Quantite    string `form:"quantite"    validate:"required,integer,gte=0"`
	Description string `form:"description"`
	Obs         string `form:"obs"`
	Status      string `form:"status"`
}

// Index lists orders, newest first.
func (c *OrderController) Index(x *ctx.Context) {
	page := x.QueryInt("page", 1)
	limit := x.QueryInt("limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}

	f := repositories.OrderFilters{Wilaya: x.Query("wilaya"), Month: x.Query("month")}
	if s := x.Query("status"); s != "" {
		st, ok := models.ParseStatus(s)
		if !ok {
			x.Error(http.StatusBadRequest, msgBadStatus)
			return
		}
		f.Status = st
	}

	orders, err := c.orders.FindAll(x.Context(), page, limit, f)
	if errors.Is(err, repositories.ErrInvalidMonth) {
		x.Error(http.StatusBadRequest, "Le paramètre month doit être au format AAAA-MM")
		return
	}
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}

	// total is the size of this page, not of the whole result set.
	x.Paginated(orders, response.Pagination{Page: page, Limit: limit, Total: len(orders)})
}

func (c *OrderController) Today(x *ctx.Context) {
	orders, err := c.orders.FindToday(x.Context())
	if err != nil {
		x.ServerError("Erreur serveur lors de la récupération des commandes du jour", err)
		return
	}
	x.Success(orders)
}

func (c *OrderController) Week(x *ctx.Context) {
	orders, err := c.orders.FindWeek(x.Context())
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}
	x.Success(orders)
}

func (c *OrderController) Stats(x *ctx.Context) {
	stats, err := c.orders.GetStats(x.Context())
	if err != nil {
		x.ServerError("Erreur serveur lors de la récupération des statistiques", err)
		return
	}
	x.Success(stats)
}

// Dashboard combines the current month, the trailing six months and the
// per-wilaya breakdown.
func (c *OrderController) Dashboard(x *ctx.Context) {
	current, err := c.orders.GetCurrentMonthStats(x.Context())
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}
	monthly, err := c.orders.GetMonthlyStats(x.Context())
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}
	wilayas, err := c.orders.GetStatsByWilaya(x.Context())
	if err != nil {
		x.ServerError("Erreur serveur", err)
		return
	}

	x.Success(map[string]interface{}{
		"currentMonth": current,
		"monthlyStats": monthly,
		"wilayaStats":  wilayas,
	})
}

func (c *OrderController) Show(x *ctx.Context) {
	id, ok := x.ParamUint("id")
	if !ok {
		x.NotFound(msgOrderNotFound)
		return
	}

	order, err := c.orders.FindByID(x.Context(), id)
	if errors.Is(err, repositories.ErrOrderNotFound) {
		x.NotFound(msgOrderNotFound)
		return
	}
	if err != nil {
		x.ServerError("Erreur serveur lors de la récupération de la commande", err)
		return
	}
	x.Success(order)
}

// Store creates an order from a multipart form. Pictures are written to
// the disk first and removed again if the insert fails.
func (c *OrderController) Store(x *ctx.Context) {
	order, files, ok := c.readOrder(x)
	if !ok {
		return
	}

	images, err := c.images.Store(x.Context(), files)
	if err != nil {
		x.ServerError("Erreur serveur lors de la création de la commande", err)
		return
	}

	created, err := c.orders.Create(x.Context(), order, images)
	if err != nil {
		c.discard(x, images)
		x.ServerError("Erreur serveur lors de la création de la commande", err)
		return
	}

	metrics.OrdersCreated.Inc()
	x.Created("Commande créée avec succès", created)
}

// Update replaces the order's fields and appends any uploaded pictures.
func (c *OrderController) Update(x *ctx.Context) {
	id, ok := x.ParamUint("id")
	if !ok {
		x.NotFound(msgOrderNotFound)
		return
	}

	if _, err := c.orders.FindByID(x.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			x.NotFound(msgOrderNotFound)
			return
		}
		x.ServerError("Erreur serveur lors de la mise à jour de la commande", err)
		return
	}

	order, files, ok := c.readOrder(x)
	if !ok {
		return
	}

	images, err := c.images.Store(x.Context(), files)
	if err != nil {
		x.ServerError("Erreur serveur lors de la mise à jour de la commande", err)
		return
	}

	updated, err := c.orders.Update(x.Context(), id, order, images)
	if err != nil {
		c.discard(x, images)
		if errors.Is(err, repositories.ErrOrderNotFound) {
			x.NotFound(msgOrderNotFound)
			return
		}
		x.ServerError("Erreur serveur lors de la mise à jour de la commande", err)
		return
	}
	x.Message("Commande mise à jour avec succès", updated)
}

// Destroy deletes the order, its image rows and, best-effort, the files.
func (c *OrderController) Destroy(x *ctx.Context) {
	id, ok := x.ParamUint("id")
	if !ok {
		x.NotFound(msgOrderNotFound)
		return
	}

	order, err := c.orders.FindByID(x.Context(), id)
	if errors.Is(err, repositories.ErrOrderNotFound) {
		x.NotFound(msgOrderNotFound)
		return
	}
	if err != nil {
		x.ServerError("Erreur serveur lors de la suppression de la commande", err)
		return
	}

	removed, err := c.orders.Delete(x.Context(), id)
	if err != nil {
		x.ServerError("Erreur serveur lors de la suppression de la commande", err)
		return
	}
	if !removed {
		x.NotFound(msgOrderNotFound)
		return
	}

	c.discard(x, order.Images)
	x.Message("Commande supprimée avec succès", nil)
}

// DestroyImage deletes one picture row, then its file.
func (c *OrderController) DestroyImage(x *ctx.Context) {
	id, ok := x.ParamUint("imageId")
	if !ok {
		x.NotFound(msgImageNotFound)
		return
	}

	img, err := c.orders.FindImage(x.Context(), id)
	if errors.Is(err, repositories.ErrImageNotFound) {
		x.NotFound(msgImageNotFound)
		return
	}
	if err != nil {
		x.ServerError("Erreur serveur lors de la suppression de l'image", err)
		return
	}

	removed, err := c.orders.DeleteImage(x.Context(), id)
	if err != nil {
		x.ServerError("Erreur serveur lors de la suppression de l'image", err)
		return
	}
	if !removed {
		x.NotFound(msgImageNotFound)
		return
	}

	c.discard(x, []models.OrderImage{*img})
	x.Message("Image supprimée avec succès", nil)
}

// readOrder binds and validates the form. On failure the 400 has already
// been written and ok is false.
func (c *OrderController) readOrder(x *ctx.Context) (*models.Order, []bind.File, bool) {
	values, files, err := x.Form(bind.ImageLimits)
	if err != nil {
		x.Error(http.StatusBadRequest, uploadMessage(err))
		return nil, nil, false
	}

	var in orderInput
	bind.Values(values, &in)
	if fe := validate.First(&in); fe != nil {
		x.Error(http.StatusBadRequest, fe.Message)
		return nil, nil, false
	}

	order := &models.Order{
		Nom:         strings.TrimSpace(in.Nom),
		Prenom:      strings.TrimSpace(in.Prenom),
		Wilaya:      strings.TrimSpace(in.Wilaya),
		Description: optional(in.Description),
		Obs:         optional(in.Obs),
	}
	if order.Total, err = decimal.NewFromString(strings.TrimSpace(in.Total)); err != nil {
		x.Error(http.StatusBadRequest, "Le champ total doit être un nombre")
		return nil, nil, false
	}
	if order.Quantite, err = strconv.Atoi(strings.TrimSpace(in.Quantite)); err != nil {
		x.Error(http.StatusBadRequest, "Le champ quantite doit être un entier")
		return nil, nil, false
	}

	if in.Status != "" {
		st, ok := models.ParseStatus(in.Status)
		if !ok {
			x.Error(http.StatusBadRequest, msgBadStatus)
			return nil, nil, false
		}
		order.Status = st
	}
	return order, files, true
}

// discard removes stored pictures, logging what could not be removed.
func (c *OrderController) discard(x *ctx.Context, images []models.OrderImage) {
	for _, err := range c.images.Remove(x.Context(), images...) {
		x.Logger().Warn("image file not removed", "error", err)
	}
}

func uploadMessage(err error) string {
	switch {
	case errors.Is(err, bind.ErrTooManyFiles):
		return "Trop de fichiers (10 images maximum)"
	case errors.Is(err, bind.ErrFileTooLarge):
		return "Fichier trop volumineux (5 Mo maximum)"
	case errors.Is(err, bind.ErrFileType):
		return "Type de fichier non autorisé. Seuls JPG, PNG et GIF sont acceptés."
	case errors.Is(err, bind.ErrBodyTooLarge):
		return "Corps de requête trop volumineux"
	}
	return "Corps de requête invalide"
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

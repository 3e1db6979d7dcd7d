package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/pkg/metrics"
	"github.com/shashiranjanraj/commandes/pkg/validate"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilters narrows FindAll. Empty fields are ignored.
type OrderFilters struct {
	Status models.OrderStatus
	Wilaya string
	Month  string // YYYY-MM in the repository's location
}

// OrderRepository persists orders and their images.
type OrderRepository struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// OrderOption customises an OrderRepository.
type OrderOption func(*OrderRepository)

// WithClock replaces time.Now for the day, week and month windows.
func WithClock(now func() time.Time) OrderOption {
	return func(r *OrderRepository) { r.now = now }
}

// WithLocation sets the time zone calendar windows are computed in.
func WithLocation(loc *time.Location) OrderOption {
	return func(r *OrderRepository) {
		if loc != nil {
			r.loc = loc
		}
	}
}

func NewOrderRepository(db *gorm.DB, opts ...OrderOption) *OrderRepository {
	r := &OrderRepository{db: db, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create inserts the order and one row per image in a single transaction.
// The order's status defaults to confirmed.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, images []models.OrderImage) (*models.Order, error) {
	defer metrics.ObserveDBQuery("orders.create", time.Now())

	if order.Status == "" {
		order.Status = models.StatusConfirmed
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.now()
	}
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.CreatedAt
	order.Images = nil

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		return insertImages(tx, order.ID, images)
	})
	if err != nil {
		return nil, fmt.Errorf("repositories: create order: %w", err)
	}

	order.Images = nonNilImages(images)
	return order, nil
}

// FindAll returns one page of orders, newest first, each with its images.
func (r *OrderRepository) FindAll(ctx context.Context, page, limit int, f OrderFilters) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("orders.find_all", time.Now())

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Wilaya != "" {
		q = q.Where("wilaya = ?", f.Wilaya)
	}
	if f.Month != "" {
		start, err := validate.Month(f.Month, r.loc)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMonth, f.Month)
		}
		q = q.Where("created_at >= ? AND created_at < ?", start.UTC(), start.AddDate(0, 1, 0).UTC())
	}

	var orders []models.Order
	err := q.Scopes(withImages, newestFirst).
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("repositories: find orders: %w", err)
	}
	return normalize(orders), nil
}

// FindToday returns the orders created since local midnight.
func (r *OrderRepository) FindToday(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("orders.find_today", time.Now())
	start := r.startOfDay(r.now())
	return r.findBetween(ctx, start, start.AddDate(0, 0, 1))
}

// FindWeek returns the orders of the current Monday-to-Sunday week.
func (r *OrderRepository) FindWeek(ctx context.Context) ([]models.Order, error) {
	defer metrics.ObserveDBQuery("orders.find_week", time.Now())
	start := r.startOfWeek(r.now())
	return r.findBetween(ctx, start, start.AddDate(0, 0, 7))
}

func (r *OrderRepository) findBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Scopes(withImages, newestFirst).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("repositories: find orders between %s and %s: %w", from.Format(time.DateOnly), to.Format(time.DateOnly), err)
	}
	return normalize(orders), nil
}

// FindByID returns the order with its images, or ErrOrderNotFound.
func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	defer metrics.ObserveDBQuery("orders.find_by_id", time.Now())

	var order models.Order
	err := r.db.WithContext(ctx).Scopes(withImages).First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: find order %d: %w", id, err)
	}
	if order.Images == nil {
		order.Images = []models.OrderImage{}
	}
	return &order, nil
}

// Update overwrites the mutable columns, appends newImages and returns
// the refreshed order. Existing images are kept, and so is the status when
// o.Status is empty.
func (r *OrderRepository) Update(ctx context.Context, id uint, o *models.Order, newImages []models.OrderImage) (*models.Order, error) {
	defer metrics.ObserveDBQuery("orders.update", time.Now())

	fields := map[string]interface{}{
		"nom":         o.Nom,
		"prenom":      o.Prenom,
		"wilaya":      o.Wilaya,
		"total":       o.Total,
		"quantite":    o.Quantite,
		"description": o.Description,
		"obs":         o.Obs,
		"updated_at":  r.now().UTC(),
	}
	// An omitted status keeps the stored one.
	if o.Status != "" {
		fields["status"] = o.Status
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		if err := tx.Select("id").First(&existing, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error; err != nil {
			return err
		}
		return insertImages(tx, id, newImages)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: update order %d: %w", id, err)
	}
	return r.FindByID(ctx, id)
}

// Delete removes the order and its image rows atomically. It reports
// whether an order row was removed. Stored files are the caller's concern.
func (r *OrderRepository) Delete(ctx context.Context, id uint) (bool, error) {
	defer metrics.ObserveDBQuery("orders.delete", time.Now())

	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("commande_id = ?", id).Delete(&models.OrderImage{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("repositories: delete order %d: %w", id, err)
	}
	return removed, nil
}

// FindImage returns one image row, or ErrImageNotFound.
func (r *OrderRepository) FindImage(ctx context.Context, imageID uint) (*models.OrderImage, error) {
	defer metrics.ObserveDBQuery("orders.find_image", time.Now())

	var img models.OrderImage
	err := r.db.WithContext(ctx).First(&img, imageID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("repositories: find image %d: %w", imageID, err)
	}
	return &img, nil
}

// DeleteImage removes one image row and reports whether it existed.
func (r *OrderRepository) DeleteImage(ctx context.Context, imageID uint) (bool, error) {
	defer metrics.ObserveDBQuery("orders.delete_image", time.Now())

	res := r.db.WithContext(ctx).Delete(&models.OrderImage{}, imageID)
	if res.Error != nil {
		return false, fmt.Errorf("repositories: delete image %d: %w", imageID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func insertImages(tx *gorm.DB, orderID uint, images []models.OrderImage) error {
	for i := range images {
		images[i].ID = 0
		images[i].CommandeID = orderID
		if err := tx.Create(&images[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func withImages(db *gorm.DB) *gorm.DB {
	return db.Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("commande_images.id ASC")
	})
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

func normalize(orders []models.Order) []models.Order {
	if orders == nil {
		return []models.Order{}
	}
	for i := range orders {
		orders[i].Images = nonNilImages(orders[i].Images)
	}
	return orders
}

func nonNilImages(images []models.OrderImage) []models.OrderImage {
	if images == nil {
		return []models.OrderImage{}
	}
	return images
}

func (r *OrderRepository) startOfDay(t time.Time) time.Time {
	y, m, d := t.In(r.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.loc)
}

func (r *OrderRepository) startOfWeek(t time.Time) time.Time {
	day := r.startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}

func (r *OrderRepository) startOfMonth(t time.Time) time.Time {
	y, m, _ := t.In(r.loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, r.loc)
}

package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/pkg/metrics"
	"github.com/shopspring/decimal"
)

// monthlyWindow is how many calendar months GetMonthlyStats covers,
// the current one included.
const monthlyWindow = 6

// OrderStats are the all-time totals. Revenue sums every order.
type OrderStats struct {
	Total     int64           `json:"total"`
	Confirmed int64           `json:"confirmed"`
	Delivered int64           `json:"delivered"`
	Cancelled int64           `json:"cancelled"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// PeriodStats summarise one calendar month. Active counts every order that
// is not cancelled; Revenue sums delivered orders only.
type PeriodStats struct {
	Total     int64           `json:"total"`
	Active    int64           `json:"active"`
	Delivered int64           `json:"delivered"`
	Confirmed int64           `json:"confirmed"`
	Cancelled int64           `json:"cancelled"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// MonthlyStats is one row of the trailing six month series.
type MonthlyStats struct {
	Month     string          `json:"month"` // YYYY-MM
	Label     string          `json:"label"` // e.g. "March 2024"
	Total     int64           `json:"total"`
	Delivered int64           `json:"delivered"`
	Confirmed int64           `json:"confirmed"`
	Cancelled int64           `json:"cancelled"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// WilayaStats groups orders by province. Revenue sums delivered orders.
type WilayaStats struct {
	Wilaya    string          `json:"wilaya"`
	Total     int64           `json:"total"`
	Delivered int64           `json:"delivered"`
	Confirmed int64           `json:"confirmed"`
	Cancelled int64           `json:"cancelled"`
	Revenue   decimal.Decimal `json:"revenue"`
}

const statusCounts = `COUNT(*) AS total,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS confirmed,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS delivered,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS cancelled`

const deliveredRevenue = `COALESCE(SUM(CASE WHEN status = ? THEN total ELSE 0 END), 0) AS revenue`

func statusArgs() []interface{} {
	return []interface{}{models.StatusConfirmed, models.StatusDelivered, models.StatusCancelled}
}

// GetStats returns all-time counts per status and the sum of every total.
func (r *OrderRepository) GetStats(ctx context.Context) (*OrderStats, error) {
	defer metrics.ObserveDBQuery("orders.stats", time.Now())

	var out OrderStats
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(statusCounts+`,
	COALESCE(SUM(total), 0) AS revenue`, statusArgs()...).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("repositories: order stats: %w", err)
	}
	out.Revenue = out.Revenue.Round(2)
	return &out, nil
}

// GetCurrentMonthStats summarises the calendar month containing now.
func (r *OrderRepository) GetCurrentMonthStats(ctx context.Context) (*PeriodStats, error) {
	defer metrics.ObserveDBQuery("orders.stats_current_month", time.Now())

	start := r.startOfMonth(r.now())
	args := append(statusArgs(), models.StatusCancelled, models.StatusDelivered)

	var out PeriodStats
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select(statusCounts+`,
	COALESCE(SUM(CASE WHEN status <> ? THEN 1 ELSE 0 END), 0) AS active,
	`+deliveredRevenue, args...).
		Where("created_at >= ? AND created_at < ?", start.UTC(), start.AddDate(0, 1, 0).UTC()).
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("repositories: current month stats: %w", err)
	}
	out.Revenue = out.Revenue.Round(2)
	return &out, nil
}

type monthAggregate struct {
	Total     int64
	Confirmed int64
	Delivered int64
	Cancelled int64
	Revenue   decimal.Decimal
}

// GetMonthlyStats returns exactly six rows, oldest month first, ending with
// the current month. Each month is aggregated by the database over its own
// window in the repository's location; months without orders are zero rows.
func (r *OrderRepository) GetMonthlyStats(ctx context.Context) ([]MonthlyStats, error) {
	defer metrics.ObserveDBQuery("orders.stats_monthly", time.Now())

	current := r.startOfMonth(r.now())
	first := current.AddDate(0, -(monthlyWindow - 1), 0)

	out := make([]MonthlyStats, monthlyWindow)
	args := append(statusArgs(), models.StatusDelivered)
	for i := range out {
		from := first.AddDate(0, i, 0)

		var agg monthAggregate
		err := r.db.WithContext(ctx).Model(&models.Order{}).
			Select(statusCounts+",\n\t"+deliveredRevenue, args...).
			Where("created_at >= ? AND created_at < ?", from.UTC(), from.AddDate(0, 1, 0).UTC()).
			Scan(&agg).Error
		if err != nil {
			return nil, fmt.Errorf("repositories: monthly stats %s: %w", from.Format("2006-01"), err)
		}

		out[i] = MonthlyStats{
			Month:     from.Format("2006-01"),
			Label:     from.Format("January 2006"),
			Total:     agg.Total,
			Confirmed: agg.Confirmed,
			Delivered: agg.Delivered,
			Cancelled: agg.Cancelled,
			Revenue:   agg.Revenue.Round(2),
		}
	}
	return out, nil
}

// GetStatsByWilaya returns one row per wilaya, most delivered first.
func (r *OrderRepository) GetStatsByWilaya(ctx context.Context) ([]WilayaStats, error) {
	defer metrics.ObserveDBQuery("orders.stats_wilaya", time.Now())

	args := append(statusArgs(), models.StatusDelivered)

	var out []WilayaStats
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("wilaya, "+statusCounts+`,
	`+deliveredRevenue, args...).
		Group("wilaya").
		Order("delivered DESC").
		Order("wilaya ASC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("repositories: wilaya stats: %w", err)
	}
	if out == nil {
		out = []WilayaStats{}
	}
	for i := range out {
		out[i].Revenue = out[i].Revenue.Round(2)
	}
	return out, nil
}

package reports

import (
	"context"
	"database/sql"
	"time"

	"github.com/anshikasharma148/restaurant-management-metro/internal/domain"
)

type SalesSummary struct {
	TotalSales        float64 `json:"total_sales"`
	TotalOrders       int     `json:"total_orders"`
	AverageOrderValue float64 `json:"average_order_value"`
}

type ItemSales struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type CategorySales struct {
	Name    string  `json:"name"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
}

type DashboardStats struct {
	TodaySales      float64 `json:"today_sales"`
	TodayOrders     int     `json:"today_orders"`
	ActiveOrders    int     `json:"active_orders"`
	PendingOrders   int     `json:"pending_orders"`
	PreparingOrders int     `json:"preparing_orders"`
	SalesTrend      float64 `json:"sales_trend"`
}

// ReportRepository aggregates completed-order sales straight in SQL.
type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) SalesSummary(ctx context.Context, from, to time.Time) (SalesSummary, error) {
	var summary SalesSummary

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE status = 'completed' AND created_at >= $1 AND created_at <= $2
	`, from, to).Scan(&summary.TotalSales, &summary.TotalOrders)
	if err != nil {
		return SalesSummary{}, err
	}

	if summary.TotalOrders > 0 {
		summary.AverageOrderValue = summary.TotalSales / float64(summary.TotalOrders)
	}
	return summary, nil
}

func (r *ReportRepository) TopItems(ctx context.Context, from, to time.Time, limit int) ([]ItemSales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.name, SUM(oi.quantity), SUM(oi.price * oi.quantity) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at <= $2
		GROUP BY oi.name
		ORDER BY revenue DESC
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []ItemSales{}
	for rows.Next() {
		var item ItemSales
		if err := rows.Scan(&item.Name, &item.Quantity, &item.Revenue); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *ReportRepository) CategorySales(ctx context.Context, from, to time.Time) ([]CategorySales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, COUNT(DISTINCT o.id), SUM(oi.price * oi.quantity) AS revenue
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN menu_items mi ON mi.id = oi.menu_item_id
		JOIN menu_categories c ON c.id = mi.category_id
		WHERE o.status = 'completed' AND o.created_at >= $1 AND o.created_at <= $2
		GROUP BY c.name
		ORDER BY revenue DESC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	categories := []CategorySales{}
	for rows.Next() {
		var c CategorySales
		if err := rows.Scan(&c.Name, &c.Orders, &c.Revenue); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *ReportRepository) Dashboard(ctx context.Context, now time.Time) (DashboardStats, error) {
	var stats DashboardStats

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE status = 'completed' AND created_at >= $1
	`, today).Scan(&stats.TodaySales, &stats.TodayOrders)
	if err != nil {
		return DashboardStats{}, err
	}

	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = $1),
			COUNT(*) FILTER (WHERE status = $2)
		FROM orders
		WHERE status IN ($1, $2)
	`, domain.OrderStatusPending, domain.OrderStatusPreparing).
		Scan(&stats.PendingOrders, &stats.PreparingOrders)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.ActiveOrders = stats.PendingOrders + stats.PreparingOrders

	var yesterdaySales float64
	err = r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total), 0)
		FROM orders
		WHERE status = 'completed' AND created_at >= $1 AND created_at < $2
	`, yesterday, today).Scan(&yesterdaySales)
	if err != nil {
		return DashboardStats{}, err
	}

	if yesterdaySales > 0 {
		stats.SalesTrend = (stats.TodaySales - yesterdaySales) / yesterdaySales * 100
	}

	return stats, nil
}

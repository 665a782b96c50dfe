package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

const (
	kpiQuery = `
		SELECT count(*),
		       COALESCE(SUM(price * stock), 0),
		       count(*) FILTER (WHERE stock <= reorder_threshold)
		FROM products
		WHERE active`

	movementsSinceQuery = `SELECT count(*) FROM movements WHERE created_at >= $1`

	criticalQuery = `
		SELECT ` + productColumns + `
		FROM products
		WHERE active AND stock <= reorder_threshold
		ORDER BY stock, lower(name)
		LIMIT $1`

	monthlyQuery = `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month,
		       count(*) FILTER (WHERE type = 'receipt'),
		       count(*) FILTER (WHERE type = 'withdrawal'),
		       count(*) FILTER (WHERE type = 'adjustment')
		FROM movements
		WHERE created_at >= $1
		GROUP BY month
		ORDER BY month`

	topWithdrawnQuery = `
		SELECT p.id, p.name, SUM(m.quantity)::int AS withdrawn
		FROM movements m
		JOIN products p ON p.id = m.product_id
		WHERE m.type = 'withdrawal' AND p.active
		GROUP BY p.id, p.name
		ORDER BY withdrawn DESC, p.name
		LIMIT $1`
)

// ReportRepo consultas agregadas de solo lectura para reportes.
type ReportRepo struct {
	q Querier
}

// NewReportRepository construye el repositorio de reportes.
func NewReportRepository(q Querier) *ReportRepo {
	return &ReportRepo{q: q}
}

func (r *ReportRepo) GetKPIs(ctx context.Context, dayStart time.Time) (*entity.InventoryKPIs, error) {
	var k entity.InventoryKPIs
	if err := r.q.QueryRow(ctx, kpiQuery).Scan(&k.ActiveProducts, &k.InventoryValue, &k.LowStockCount); err != nil {
		return nil, fmt.Errorf("inventory kpis: %w", err)
	}
	if err := r.q.QueryRow(ctx, movementsSinceQuery, dayStart).Scan(&k.MovementsToday); err != nil {
		return nil, fmt.Errorf("movements today: %w", err)
	}
	return &k, nil
}

func (r *ReportRepo) ListCriticalProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, criticalQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("critical products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ReportRepo) MonthlyMovements(ctx context.Context, since time.Time) ([]entity.MonthlyMovementCount, error) {
	rows, err := r.q.Query(ctx, monthlyQuery, since)
	if err != nil {
		return nil, fmt.Errorf("monthly movements: %w", err)
	}
	defer rows.Close()

	var list []entity.MonthlyMovementCount
	for rows.Next() {
		var c entity.MonthlyMovementCount
		if err := rows.Scan(&c.Month, &c.Receipts, &c.Withdrawals, &c.Adjustments); err != nil {
			return nil, fmt.Errorf("scan monthly: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (r *ReportRepo) TopWithdrawn(ctx context.Context, limit int) ([]entity.ProductWithdrawal, error) {
	rows, err := r.q.Query(ctx, topWithdrawnQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("top withdrawn: %w", err)
	}
	defer rows.Close()

	var list []entity.ProductWithdrawal
	for rows.Next() {
		var w entity.ProductWithdrawal
		if err := rows.Scan(&w.ProductID, &w.Name, &w.Withdrawn); err != nil {
			return nil, fmt.Errorf("scan top withdrawn: %w", err)
		}
		list = append(list, w)
	}
	return list, rows.Err()
}

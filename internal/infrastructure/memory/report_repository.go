package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de reportes sobre el estado confirmado.
type ReportRepo struct {
	s *Store
}

// NewReportRepository construye el repo de reportes.
func NewReportRepository(s *Store) *ReportRepo {
	return &ReportRepo{s: s}
}

func (r *ReportRepo) GetKPIs(_ context.Context, dayStart time.Time) (*entity.InventoryKPIs, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	k := &entity.InventoryKPIs{InventoryValue: decimal.Zero}
	for _, p := range r.s.products {
		if !p.Active {
			continue
		}
		k.ActiveProducts++
		k.InventoryValue = k.InventoryValue.Add(p.InventoryValue())
		if p.NeedsRestock() {
			k.LowStockCount++
		}
	}
	for _, m := range r.s.movements {
		if !m.CreatedAt.Before(dayStart) {
			k.MovementsToday++
		}
	}
	return k, nil
}

func (r *ReportRepo) ListCriticalProducts(_ context.Context, limit int) ([]*entity.Product, error) {
	r.s.mu.RLock()
	out := make([]*entity.Product, 0)
	for _, p := range r.s.products {
		if p.Active && p.NeedsRestock() {
			out = append(out, cloneProduct(p))
		}
	}
	r.s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *entity.Product) int {
		if a.Stock != b.Stock {
			return a.Stock - b.Stock
		}
		return strings.Compare(fold(a.Name), fold(b.Name))
	})
	return paginate(out, limit, 0), nil
}

func (r *ReportRepo) MonthlyMovements(_ context.Context, since time.Time) ([]entity.MonthlyMovementCount, error) {
	r.s.mu.RLock()
	byMonth := make(map[string]*entity.MonthlyMovementCount)
	for _, m := range r.s.movements {
		if m.CreatedAt.Before(since) {
			continue
		}
		key := m.CreatedAt.Format("2006-01")
		c, ok := byMonth[key]
		if !ok {
			c = &entity.MonthlyMovementCount{Month: key}
			byMonth[key] = c
		}
		switch m.Type {
		case entity.MovementReceipt:
			c.Receipts++
		case entity.MovementWithdrawal:
			c.Withdrawals++
		case entity.MovementAdjustment:
			c.Adjustments++
		}
	}
	r.s.mu.RUnlock()

	out := make([]entity.MonthlyMovementCount, 0, len(byMonth))
	for _, c := range byMonth {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(a, b entity.MonthlyMovementCount) int {
		return strings.Compare(a.Month, b.Month)
	})
	return out, nil
}

func (r *ReportRepo) TopWithdrawn(_ context.Context, limit int) ([]entity.ProductWithdrawal, error) {
	r.s.mu.RLock()
	totals := make(map[string]int)
	for _, m := range r.s.movements {
		if m.Type == entity.MovementWithdrawal {
			totals[m.ProductID] += m.Quantity
		}
	}
	out := make([]entity.ProductWithdrawal, 0, len(totals))
	for id, qty := range totals {
		p, ok := r.s.products[id]
		if !ok || !p.Active {
			continue
		}
		out = append(out, entity.ProductWithdrawal{ProductID: id, Name: p.Name, Withdrawn: qty})
	}
	r.s.mu.RUnlock()

	slices.SortFunc(out, func(a, b entity.ProductWithdrawal) int {
		if a.Withdrawn != b.Withdrawn {
			return b.Withdrawn - a.Withdrawn
		}
		return strings.Compare(a.Name, b.Name)
	})
	return paginate(out, limit, 0), nil
}

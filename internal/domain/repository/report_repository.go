package repository

import (
	"context"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
)

// ReportRepository consultas de solo lectura para los reportes de inventario.
type ReportRepository interface {
	// GetKPIs calcula los indicadores sobre productos activos; MovementsToday cuenta desde dayStart.
	GetKPIs(ctx context.Context, dayStart time.Time) (*entity.InventoryKPIs, error)
	// ListCriticalProducts devuelve los productos activos con stock <= umbral, ordenados por stock.
	ListCriticalProducts(ctx context.Context, limit int) ([]*entity.Product, error)
	// MonthlyMovements agrupa por mes (YYYY-MM) los movimientos desde since, en orden ascendente.
	MonthlyMovements(ctx context.Context, since time.Time) ([]entity.MonthlyMovementCount, error)
	// TopWithdrawn devuelve los productos con mayor cantidad retirada.
	TopWithdrawn(ctx context.Context, limit int) ([]entity.ProductWithdrawal, error)
}

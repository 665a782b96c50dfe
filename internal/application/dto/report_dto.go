package dto

import "github.com/shopspring/decimal"

// ReportSummaryDTO respuesta de GET /api/reports/summary.
type ReportSummaryDTO struct {
	ActiveProducts   int                   `json:"active_products"`
	InventoryValue   decimal.Decimal       `json:"inventory_value"` // Σ precio × stock de productos activos
	LowStockCount    int                   `json:"low_stock_count"`
	MovementsToday   int                   `json:"movements_today"`
	CriticalProducts []CriticalProductDTO  `json:"critical_products"`
	MonthlyMovements []MonthlyMovementsDTO `json:"monthly_movements"`
	TopWithdrawn     []TopWithdrawnDTO     `json:"top_withdrawn"`
	DateLabel        string                `json:"date_label"` // ej: "Octubre 2026"
}

// CriticalProductDTO producto en o por debajo de su umbral.
type CriticalProductDTO struct {
	ProductID        string `json:"product_id"`
	Name             string `json:"name"`
	Stock            int    `json:"stock"`
	ReorderThreshold int    `json:"reorder_threshold"`
}

// MonthlyMovementsDTO conteo de movimientos de un mes (YYYY-MM).
type MonthlyMovementsDTO struct {
	Month       string `json:"month"`
	Receipts    int    `json:"receipts"`
	Withdrawals int    `json:"withdrawals"`
	Adjustments int    `json:"adjustments"`
}

// TopWithdrawnDTO producto con más unidades retiradas.
type TopWithdrawnDTO struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Withdrawn int    `json:"withdrawn"`
}

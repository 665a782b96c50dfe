package entity

import "github.com/shopspring/decimal"

// InventoryKPIs indicadores globales del inventario activo.
type InventoryKPIs struct {
	ActiveProducts int
	InventoryValue decimal.Decimal
	LowStockCount  int
	MovementsToday int
}

// MonthlyMovementCount conteo de movimientos por tipo en un mes (YYYY-MM).
type MonthlyMovementCount struct {
	Month       string
	Receipts    int
	Withdrawals int
	Adjustments int
}

// ProductWithdrawal cantidad total retirada de un producto.
type ProductWithdrawal struct {
	ProductID string
	Name      string
	Withdrawn int
}

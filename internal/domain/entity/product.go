package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultReorderThreshold umbral de reposición cuando no se indica otro.
const DefaultReorderThreshold = 5

// Product representa un producto del catálogo.
// Stock solo lo modifica el ledger de movimientos; Active=false es la baja lógica.
type Product struct {
	ID               string
	Name             string
	Description      string
	CategoryID       *string         // nil si no tiene categoría
	Price            decimal.Decimal // precio de venta, >= 0, 2 decimales
	Stock            int
	ReorderThreshold int
	ImageRef         string
	Barcode          *string // único cuando existe
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NeedsRestock indica si el stock está en o por debajo del umbral de reposición.
func (p *Product) NeedsRestock() bool {
	return p.Stock <= p.ReorderThreshold
}

// InventoryValue devuelve precio × stock.
func (p *Product) InventoryValue() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Stock)))
}

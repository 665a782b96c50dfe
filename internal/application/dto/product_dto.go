package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto.
// InitialStock se registra como una entrada de apertura.
type CreateProductRequest struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	CategoryID       *string         `json:"category_id"`
	Price            decimal.Decimal `json:"price"`
	InitialStock     int             `json:"initial_stock"`
	ReorderThreshold *int            `json:"reorder_threshold"` // por defecto 5
	ImageRef         string          `json:"image_ref"`
	Barcode          *string         `json:"barcode"`
}

// UpdateProductRequest entrada para actualizar un producto (sin stock).
type UpdateProductRequest struct {
	Name             *string          `json:"name"`
	Description      *string          `json:"description"`
	CategoryID       *string          `json:"category_id"` // "" quita la categoría
	Price            *decimal.Decimal `json:"price"`
	ReorderThreshold *int             `json:"reorder_threshold"`
	ImageRef         *string          `json:"image_ref"`
	Barcode          *string          `json:"barcode"` // "" quita el código
}

// ProductListRequest filtros del listado de productos.
type ProductListRequest struct {
	PageRequest
	Query           string `query:"q"`
	CategoryID      string `query:"category_id"`
	LowStock        bool   `query:"low_stock"`
	IncludeInactive bool   `query:"include_inactive"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	CategoryID       *string         `json:"category_id"`
	Price            decimal.Decimal `json:"price"`
	Stock            int             `json:"stock"`
	ReorderThreshold int             `json:"reorder_threshold"`
	NeedsRestock     bool            `json:"needs_restock"`
	ImageRef         string          `json:"image_ref,omitempty"`
	Barcode          *string         `json:"barcode"`
	Active           bool            `json:"active"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// ProductDetailResponse producto con sus últimos movimientos.
type ProductDetailResponse struct {
	Product         ProductResponse    `json:"product"`
	RecentMovements []MovementResponse `json:"recent_movements"`
}

// StockResponse stock confirmado de un producto.
type StockResponse struct {
	ProductID    string `json:"product_id"`
	Stock        int    `json:"stock"`
	NeedsRestock bool   `json:"needs_restock"`
}

// CanDeleteResponse respuesta de GET /api/products/:id/can-delete.
type CanDeleteResponse struct {
	ProductID string `json:"product_id"`
	CanDelete bool   `json:"can_delete"`
}

// ReconcileResponse resultado de comparar stock con el historial.
type ReconcileResponse struct {
	ProductID  string `json:"product_id"`
	Stored     int    `json:"stored"`
	Folded     int    `json:"folded"`
	Movements  int    `json:"movements"`
	Consistent bool   `json:"consistent"`
}

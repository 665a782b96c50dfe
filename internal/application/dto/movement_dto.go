package dto

import "time"

// RegisterMovementRequest body para POST /api/movements.
// Para adjustment, quantity es el stock resultante deseado.
type RegisterMovementRequest struct {
	ProductID string `json:"product_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// MovementListRequest filtros del historial de movimientos.
type MovementListRequest struct {
	PageRequest
	ProductID string `query:"product_id"`
	Type      string `query:"type"`
	From      string `query:"from"` // YYYY-MM-DD o RFC3339
	To        string `query:"to"`
}

// MovementResponse salida de un movimiento.
type MovementResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	Type           string    `json:"type"`
	Quantity       int       `json:"quantity"`
	EffectiveDelta int       `json:"effective_delta"`
	StockAfter     int       `json:"stock_after"`
	Reason         string    `json:"reason,omitempty"`
	ActorID        *string   `json:"actor_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// InsufficientStockResponse error 409 de una salida mayor al stock disponible.
type InsufficientStockResponse struct {
	ErrorResponse
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
	Requested int    `json:"requested"`
}

package entity

import (
	"strings"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/domain"
)

// MovementType tipo cerrado de movimiento de stock.
type MovementType string

const (
	MovementReceipt    MovementType = "receipt"    // entrada
	MovementWithdrawal MovementType = "withdrawal" // salida
	MovementAdjustment MovementType = "adjustment" // ajuste a un valor absoluto
)

// Valid indica si t es uno de los tipos conocidos.
func (t MovementType) Valid() bool {
	switch t {
	case MovementReceipt, MovementWithdrawal, MovementAdjustment:
		return true
	}
	return false
}

// ParseMovementType acepta los nombres canónicos y sus equivalentes en español.
func ParseMovementType(s string) (MovementType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receipt", "entrada", "in":
		return MovementReceipt, nil
	case "withdrawal", "salida", "out":
		return MovementWithdrawal, nil
	case "adjustment", "ajuste":
		return MovementAdjustment, nil
	}
	return "", domain.ErrInvalidMovementType
}

// Movement registro inmutable del ledger de stock.
// Para adjustment, Quantity es el valor objetivo; EffectiveDelta es el cambio realmente aplicado.
type Movement struct {
	ID             string
	ProductID      string
	Type           MovementType
	Quantity       int
	EffectiveDelta int
	StockAfter     int
	Reason         string
	ActorID        *string
	CreatedAt      time.Time
}

// StockBefore stock del producto antes de aplicar el movimiento.
func (m *Movement) StockBefore() int {
	return m.StockAfter - m.EffectiveDelta
}

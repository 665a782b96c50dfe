// Package ledger contiene las reglas puras del ledger de stock: cómo cada tipo de
// movimiento transforma el stock y cómo el stock se reconstruye a partir del historial.
package ledger

import (
	"math"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
)

// MaxQuantity tope de cantidad y de stock; las columnas son INTEGER.
const MaxQuantity = math.MaxInt32

// ValidateQuantity verifica la cantidad según el tipo, sin mirar el stock actual.
func ValidateQuantity(t entity.MovementType, quantity int) error {
	switch t {
	case entity.MovementReceipt, entity.MovementWithdrawal:
		if quantity <= 0 || quantity > MaxQuantity {
			return domain.ErrInvalidQuantity
		}
	case entity.MovementAdjustment:
		if quantity < 0 || quantity > MaxQuantity {
			return domain.ErrInvalidQuantity
		}
	default:
		return domain.ErrInvalidMovementType
	}
	return nil
}

// ComputeDelta devuelve el cambio efectivo que produce el movimiento sobre current.
// Una salida que dejaría stock negativo devuelve *domain.InsufficientStockError.
func ComputeDelta(current int, t entity.MovementType, quantity int) (int, error) {
	if err := ValidateQuantity(t, quantity); err != nil {
		return 0, err
	}
	switch t {
	case entity.MovementReceipt:
		if current > MaxQuantity-quantity {
			return 0, domain.ErrInvalidQuantity
		}
		return quantity, nil
	case entity.MovementWithdrawal:
		if current-quantity < 0 {
			return 0, &domain.InsufficientStockError{Available: current, Requested: quantity}
		}
		return -quantity, nil
	default:
		return quantity - current, nil
	}
}

// Fold suma los effective_delta del historial. Debe coincidir con el stock almacenado.
func Fold(movements []*entity.Movement) int {
	total := 0
	for _, m := range movements {
		total += m.EffectiveDelta
	}
	return total
}

// Replay recalcula el stock aplicando los movimientos en orden cronológico desde cero
// y verifica que cada delta y stock_after registrados sean consistentes.
func Replay(movements []*entity.Movement) (int, error) {
	stock := 0
	for _, m := range movements {
		delta, err := ComputeDelta(stock, m.Type, m.Quantity)
		if err != nil {
			return stock, err
		}
		if delta != m.EffectiveDelta || stock+delta != m.StockAfter {
			return stock, &DriftError{MovementID: m.ID, Expected: stock + delta, Recorded: m.StockAfter}
		}
		stock += delta
	}
	return stock, nil
}

// DriftError movimiento cuyo registro no coincide con la reconstrucción del historial.
type DriftError struct {
	MovementID string
	Expected   int
	Recorded   int
}

func (e *DriftError) Error() string {
	return "ledger: movimiento " + e.MovementID + " inconsistente con el historial"
}

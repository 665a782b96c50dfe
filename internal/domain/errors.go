package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")

	// Motor de movimientos.
	ErrInvalidQuantity     = fmt.Errorf("%w: cantidad inválida", ErrInvalidInput)
	ErrInvalidMovementType = fmt.Errorf("%w: tipo de movimiento inválido", ErrInvalidInput)
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("el producto está bloqueado por otra operación, reintente")

	// Catálogo.
	ErrDuplicateBarcode = fmt.Errorf("%w: el código de barras ya existe", ErrDuplicate)
	ErrReferentialBlock = errors.New("el recurso tiene movimientos asociados y no puede eliminarse")

	// Autenticación.
	ErrInvalidCredentials = fmt.Errorf("%w: credenciales inválidas", ErrUnauthorized)
)

// InsufficientStockError detalla una salida rechazada. errors.Is(err, ErrInsufficientStock) es true.
type InsufficientStockError struct {
	ProductID string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el producto %s: disponible %d, solicitado %d",
		e.ProductID, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

package entity

import "time"

// Category agrupa productos. Eliminarla deja a sus productos sin categoría.
type Category struct {
	ID          string
	Name        string // único
	Description string
	CreatedAt   time.Time
}

package dto

import "github.com/jhoicas/solterito-inventario/internal/domain/entity"

// ToProductResponse convierte la entidad en su representación de salida.
func ToProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Description:      p.Description,
		CategoryID:       p.CategoryID,
		Price:            p.Price,
		Stock:            p.Stock,
		ReorderThreshold: p.ReorderThreshold,
		NeedsRestock:     p.NeedsRestock(),
		ImageRef:         p.ImageRef,
		Barcode:          p.Barcode,
		Active:           p.Active,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ToMovementResponse convierte un movimiento del ledger.
func ToMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		ProductID:      m.ProductID,
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		EffectiveDelta: m.EffectiveDelta,
		StockAfter:     m.StockAfter,
		Reason:         m.Reason,
		ActorID:        m.ActorID,
		CreatedAt:      m.CreatedAt,
	}
}

// ToMovementResponses convierte una lista de movimientos.
func ToMovementResponses(list []*entity.Movement) []MovementResponse {
	out := make([]MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, ToMovementResponse(m))
	}
	return out
}

// ToCategoryResponse convierte una categoría.
func ToCategoryResponse(c *entity.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}

// ToUserResponse convierte un usuario (sin hash).
func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

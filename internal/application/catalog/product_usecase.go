package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	domainledger "github.com/jhoicas/solterito-inventario/internal/domain/ledger"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

const (
	defaultProductPage = 12
	maxProductPage     = 100
	recentMovements    = 10
	maxProductName     = 200
)

// ProductUseCase casos de uso del catálogo de productos. El stock se maneja solo vía ledger.
type ProductUseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	ledger     ProductLedger
	onChange   []ChangeHook
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	ledger ProductLedger,
	hooks ...ChangeHook,
) *ProductUseCase {
	return &ProductUseCase{products: products, categories: categories, ledger: ledger, onChange: hooks}
}

// Create valida y registra un producto. El stock inicial entra como movimiento de apertura.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if in.InitialStock < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	threshold := entity.DefaultReorderThreshold
	if in.ReorderThreshold != nil {
		threshold = *in.ReorderThreshold
	}
	p := &entity.Product{
		Name:             strings.TrimSpace(in.Name),
		Description:      strings.TrimSpace(in.Description),
		CategoryID:       optional(in.CategoryID),
		Price:            in.Price,
		ReorderThreshold: threshold,
		ImageRef:         strings.TrimSpace(in.ImageRef),
		Barcode:          optional(in.Barcode),
		Active:           true,
	}
	if err := uc.validate(ctx, p); err != nil {
		return nil, err
	}
	if _, err := uc.ledger.RegisterProduct(ctx, p, in.InitialStock, actorID); err != nil {
		return nil, err
	}
	uc.changed(ctx)
	res := dto.ToProductResponse(p)
	return &res, nil
}

// Get obtiene un producto por ID.
func (uc *ProductUseCase) Get(ctx context.Context, id string) (*dto.ProductResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.ToProductResponse(p)
	return &res, nil
}

// Detail devuelve el producto y sus últimos movimientos.
func (uc *ProductUseCase) Detail(ctx context.Context, id string) (*dto.ProductDetailResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	movs, _, err := uc.ledger.ListMovements(ctx, repository.MovementFilter{ProductID: id}, recentMovements, 0)
	if err != nil {
		return nil, err
	}
	return &dto.ProductDetailResponse{
		Product:         dto.ToProductResponse(p),
		RecentMovements: dto.ToMovementResponses(movs),
	}, nil
}

// Update modifica los datos de catálogo. No permite modificar Stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.CategoryID != nil {
		p.CategoryID = optional(in.CategoryID)
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.ReorderThreshold != nil {
		p.ReorderThreshold = *in.ReorderThreshold
	}
	if in.ImageRef != nil {
		p.ImageRef = strings.TrimSpace(*in.ImageRef)
	}
	if in.Barcode != nil {
		p.Barcode = optional(in.Barcode)
	}
	if err := uc.validate(ctx, p); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now()
	if err := uc.products.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.changed(ctx)
	res := dto.ToProductResponse(p)
	return &res, nil
}

// Deactivate baja lógica: el producto deja de listarse pero conserva su historial.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id string) (*dto.ProductResponse, error) {
	return uc.setActive(ctx, id, false)
}

// Activate revierte la baja lógica.
func (uc *ProductUseCase) Activate(ctx context.Context, id string) (*dto.ProductResponse, error) {
	return uc.setActive(ctx, id, true)
}

// Delete elimina físicamente el producto; falla con ErrReferentialBlock si tiene movimientos.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.ledger.DeleteProduct(ctx, id); err != nil {
		return err
	}
	uc.changed(ctx)
	return nil
}

// List lista productos con búsqueda, filtros y paginación.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductListRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage(defaultProductPage, maxProductPage)
	filter := repository.ProductFilter{
		Query:           strings.TrimSpace(in.Query),
		CategoryID:      in.CategoryID,
		LowStock:        in.LowStock,
		IncludeInactive: in.IncludeInactive,
	}
	list, total, err := uc.products.List(ctx, filter, in.Limit, in.Offset)
	if err != nil {
		return nil, fmt.Errorf("catalog: listar productos: %w", err)
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, dto.ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

func (uc *ProductUseCase) setActive(ctx context.Context, id string, active bool) (*dto.ProductResponse, error) {
	p, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if err := uc.products.SetActive(ctx, id, active, now); err != nil {
		return nil, err
	}
	p.Active = active
	p.UpdatedAt = now
	uc.changed(ctx)
	res := dto.ToProductResponse(p)
	return &res, nil
}

func (uc *ProductUseCase) get(ctx context.Context, id string) (*entity.Product, error) {
	p, err := uc.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (uc *ProductUseCase) validate(ctx context.Context, p *entity.Product) error {
	if p.Name == "" || len([]rune(p.Name)) > maxProductName {
		return fmt.Errorf("%w: nombre requerido (máx. %d caracteres)", domain.ErrInvalidInput, maxProductName)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: el precio no puede ser negativo", domain.ErrInvalidInput)
	}
	if !p.Price.Equal(p.Price.Round(2)) {
		return fmt.Errorf("%w: el precio admite máximo 2 decimales", domain.ErrInvalidInput)
	}
	if p.Price.GreaterThanOrEqual(decimal.New(1, 8)) {
		return fmt.Errorf("%w: precio fuera de rango", domain.ErrInvalidInput)
	}
	if p.ReorderThreshold < 0 {
		return fmt.Errorf("%w: el umbral de reposición no puede ser negativo", domain.ErrInvalidInput)
	}
	if p.ReorderThreshold > domainledger.MaxQuantity {
		return fmt.Errorf("%w: umbral de reposición fuera de rango", domain.ErrInvalidInput)
	}
	if p.CategoryID != nil {
		c, err := uc.categories.GetByID(ctx, *p.CategoryID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: categoría", domain.ErrNotFound)
		}
	}
	return nil
}

func (uc *ProductUseCase) changed(ctx context.Context) {
	for _, h := range uc.onChange {
		h(ctx)
	}
}

// optional normaliza un puntero a string: vacío o solo espacios equivale a nil.
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

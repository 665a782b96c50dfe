package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

const maxCategoryName = 100

// CategoryUseCase casos de uso CRUD para categorías.
type CategoryUseCase struct {
	tx       TxRunner
	repo     repository.CategoryRepository
	onChange []ChangeHook
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(tx TxRunner, repo repository.CategoryRepository, hooks ...ChangeHook) *CategoryUseCase {
	return &CategoryUseCase{tx: tx, repo: repo, onChange: hooks}
}

// Create crea una categoría. El nombre es obligatorio y único.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name, err := validCategoryName(in.Name)
	if err != nil {
		return nil, err
	}
	c := &entity.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   time.Now(),
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	res := dto.ToCategoryResponse(c)
	return &res, nil
}

// Get obtiene una categoría por ID.
func (uc *CategoryUseCase) Get(ctx context.Context, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	res := dto.ToCategoryResponse(c)
	return &res, nil
}

// List devuelve todas las categorías ordenadas por nombre.
func (uc *CategoryUseCase) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.ToCategoryResponse(c))
	}
	return out, nil
}

// Update cambia nombre y descripción.
func (uc *CategoryUseCase) Update(ctx context.Context, id string, in dto.CategoryRequest) (*dto.CategoryResponse, error) {
	name, err := validCategoryName(in.Name)
	if err != nil {
		return nil, err
	}
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	c.Name = name
	c.Description = strings.TrimSpace(in.Description)
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.changed(ctx)
	res := dto.ToCategoryResponse(c)
	return &res, nil
}

// Delete elimina la categoría; sus productos quedan sin categoría en la misma transacción.
func (uc *CategoryUseCase) Delete(ctx context.Context, id string) error {
	err := uc.tx.RunCatalog(ctx, func(categories repository.CategoryRepository, products repository.ProductRepository) error {
		c, err := categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if err := products.ClearCategory(ctx, id); err != nil {
			return err
		}
		return categories.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.changed(ctx)
	return nil
}

func (uc *CategoryUseCase) changed(ctx context.Context) {
	for _, h := range uc.onChange {
		h(ctx)
	}
}

func validCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxCategoryName {
		return "", fmt.Errorf("%w: nombre de categoría requerido (máx. %d caracteres)", domain.ErrInvalidInput, maxCategoryName)
	}
	return name, nil
}

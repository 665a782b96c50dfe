package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo implementación en memoria de CategoryRepository.
type CategoryRepo struct {
	s  *Store
	tx *tx
}

// NewCategoryRepository construye el repo fuera de transacción.
func NewCategoryRepository(s *Store) *CategoryRepo {
	return &CategoryRepo{s: s}
}

func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	c := cloneCategory(category)
	o := func() (func(), error) {
		if _, ok := r.s.categories[c.ID]; ok {
			return nil, domain.ErrDuplicate
		}
		if r.s.categoryNameTaken(c.ID, c.Name) {
			return nil, domain.ErrDuplicate
		}
		r.s.categories[c.ID] = cloneCategory(c)
		return func() { delete(r.s.categories, c.ID) }, nil
	}
	return write(r.s, r.tx, o, r.stage(c.ID, c))
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	if r.tx != nil {
		if c, ok := r.tx.categories[id]; ok {
			return cloneCategory(c), nil
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneCategory(r.s.categories[id]), nil
}

// List devuelve las categorías confirmadas ordenadas por nombre.
func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	r.s.mu.RLock()
	out := make([]*entity.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, cloneCategory(c))
	}
	r.s.mu.RUnlock()
	slices.SortFunc(out, func(a, b *entity.Category) int {
		return strings.Compare(fold(a.Name), fold(b.Name))
	})
	return out, nil
}

func (r *CategoryRepo) Update(_ context.Context, category *entity.Category) error {
	c := cloneCategory(category)
	o := func() (func(), error) {
		prev, ok := r.s.categories[c.ID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		if r.s.categoryNameTaken(c.ID, c.Name) {
			return nil, domain.ErrDuplicate
		}
		next := cloneCategory(prev)
		next.Name = c.Name
		next.Description = c.Description
		r.s.categories[c.ID] = next
		return func() { r.s.categories[c.ID] = prev }, nil
	}
	return write(r.s, r.tx, o, r.stage(c.ID, c))
}

// Delete elimina la categoría y deja sin categoría a sus productos.
func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	o := func() (func(), error) {
		prev, ok := r.s.categories[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		restore := r.s.clearCategory(id)
		delete(r.s.categories, id)
		return func() {
			r.s.categories[id] = prev
			restore()
		}, nil
	}
	return write(r.s, r.tx, o, r.stage(id, nil))
}

func (r *CategoryRepo) stage(id string, c *entity.Category) func() {
	if r.tx == nil {
		return nil
	}
	return func() { r.tx.categories[id] = cloneCategory(c) }
}

// categoryNameTaken compara nombres sin mayúsculas ni tildes. Requiere mu tomado.
func (s *Store) categoryNameTaken(id, name string) bool {
	n := fold(name)
	for otherID, c := range s.categories {
		if otherID != id && fold(c.Name) == n {
			return true
		}
	}
	return false
}

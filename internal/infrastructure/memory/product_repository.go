package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación en memoria de ProductRepository (con o sin transacción).
type ProductRepo struct {
	s  *Store
	tx *tx
}

// NewProductRepository construye el repo fuera de transacción.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{s: s}
}

// view devuelve el producto visible para el repo: lo escrito en la tx o lo confirmado.
func (r *ProductRepo) view(id string) *entity.Product {
	if r.tx != nil {
		if p, ok := r.tx.products[id]; ok {
			return cloneProduct(p)
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneProduct(r.s.products[id])
}

// stage actualiza la vista de la tx a partir del estado visible.
func (r *ProductRepo) stage(id string, mutate func(p *entity.Product)) func() {
	return func() {
		p := r.view(id)
		if p != nil {
			mutate(p)
		}
		r.tx.products[id] = p
	}
}

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	p := cloneProduct(product)
	o := func() (func(), error) {
		if _, ok := r.s.products[p.ID]; ok {
			return nil, domain.ErrDuplicate
		}
		if err := r.s.checkProductRefs(p); err != nil {
			return nil, err
		}
		r.s.products[p.ID] = cloneProduct(p)
		return func() { delete(r.s.products, p.ID) }, nil
	}
	return write(r.s, r.tx, o, func() { r.tx.products[p.ID] = cloneProduct(p) })
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	return r.view(id), nil
}

// GetForUpdate bloquea el producto hasta el fin de la transacción. Fuera de tx equivale a GetByID.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	if r.tx != nil {
		if err := r.tx.lock(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.view(id), nil
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	p := cloneProduct(product)
	apply := func(cur *entity.Product) {
		cur.Name = p.Name
		cur.Description = p.Description
		cur.CategoryID = p.CategoryID
		cur.Price = p.Price
		cur.ReorderThreshold = p.ReorderThreshold
		cur.ImageRef = p.ImageRef
		cur.Barcode = p.Barcode
		cur.UpdatedAt = p.UpdatedAt
	}
	o := r.s.mutateProduct(p.ID, func(cur *entity.Product) error {
		apply(cur)
		return r.s.checkProductRefs(cur)
	})
	return write(r.s, r.tx, o, r.stageIfTx(p.ID, apply))
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock int, at time.Time) error {
	apply := func(cur *entity.Product) {
		cur.Stock = stock
		cur.UpdatedAt = at
	}
	o := r.s.mutateProduct(id, func(cur *entity.Product) error {
		if stock < 0 {
			return domain.ErrInvalidQuantity
		}
		apply(cur)
		return nil
	})
	return write(r.s, r.tx, o, r.stageIfTx(id, apply))
}

func (r *ProductRepo) SetActive(_ context.Context, id string, active bool, at time.Time) error {
	apply := func(cur *entity.Product) {
		cur.Active = active
		cur.UpdatedAt = at
	}
	o := r.s.mutateProduct(id, func(cur *entity.Product) error {
		apply(cur)
		return nil
	})
	return write(r.s, r.tx, o, r.stageIfTx(id, apply))
}

func (r *ProductRepo) Delete(_ context.Context, id string) error {
	o := func() (func(), error) {
		prev, ok := r.s.products[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		for _, m := range r.s.movements {
			if m.ProductID == id {
				return nil, domain.ErrReferentialBlock
			}
		}
		delete(r.s.products, id)
		return func() { r.s.products[id] = prev }, nil
	}
	var stage func()
	if r.tx != nil {
		stage = func() { r.tx.products[id] = nil }
	}
	return write(r.s, r.tx, o, stage)
}

// List lee solo datos confirmados, ordenados por nombre.
func (r *ProductRepo) List(_ context.Context, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, int, error) {
	q := fold(filter.Query)

	r.s.mu.RLock()
	matched := make([]*entity.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if !filter.IncludeInactive && !p.Active {
			continue
		}
		if filter.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != filter.CategoryID) {
			continue
		}
		if filter.LowStock && !p.NeedsRestock() {
			continue
		}
		if q != "" && !strings.Contains(fold(p.Name), q) && !strings.Contains(fold(p.Description), q) {
			continue
		}
		matched = append(matched, cloneProduct(p))
	}
	r.s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *entity.Product) int {
		if c := strings.Compare(fold(a.Name), fold(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return paginate(matched, limit, offset), len(matched), nil
}

func (r *ProductRepo) ClearCategory(_ context.Context, categoryID string) error {
	o := func() (func(), error) {
		return r.s.clearCategory(categoryID), nil
	}
	var stage func()
	if r.tx != nil {
		stage = func() {
			r.s.mu.RLock()
			ids := make([]string, 0)
			for id, p := range r.s.products {
				if p.CategoryID != nil && *p.CategoryID == categoryID {
					ids = append(ids, id)
				}
			}
			r.s.mu.RUnlock()
			for _, id := range ids {
				r.stage(id, func(p *entity.Product) { p.CategoryID = nil })()
			}
		}
	}
	return write(r.s, r.tx, o, stage)
}

func (r *ProductRepo) stageIfTx(id string, apply func(*entity.Product)) func() {
	if r.tx == nil {
		return nil
	}
	return r.stage(id, apply)
}

// mutateProduct aplica fn sobre una copia del producto confirmado y la guarda si no hay error.
func (s *Store) mutateProduct(id string, fn func(cur *entity.Product) error) op {
	return func() (func(), error) {
		prev, ok := s.products[id]
		if !ok {
			return nil, domain.ErrNotFound
		}
		next := cloneProduct(prev)
		if err := fn(next); err != nil {
			return nil, err
		}
		s.products[id] = next
		return func() { s.products[id] = prev }, nil
	}
}

// checkProductRefs valida código de barras único y categoría existente. Requiere mu tomado.
func (s *Store) checkProductRefs(p *entity.Product) error {
	if p.Barcode != nil {
		for id, other := range s.products {
			if id != p.ID && other.Barcode != nil && *other.Barcode == *p.Barcode {
				return domain.ErrDuplicateBarcode
			}
		}
	}
	if p.CategoryID != nil {
		if _, ok := s.categories[*p.CategoryID]; !ok {
			return domain.ErrNotFound
		}
	}
	return nil
}

// clearCategory deja sin categoría los productos de categoryID. Requiere mu tomado.
func (s *Store) clearCategory(categoryID string) func() {
	prevs := make(map[string]*entity.Product)
	for id, p := range s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			prevs[id] = p
			next := cloneProduct(p)
			next.CategoryID = nil
			s.products[id] = next
		}
	}
	return func() {
		for id, p := range prevs {
			s.products[id] = p
		}
	}
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

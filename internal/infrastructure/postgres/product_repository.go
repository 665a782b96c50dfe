package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, description, category_id, price, stock, reorder_threshold, image_ref, barcode, active, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row scanner) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.CategoryID, &p.Price, &p.Stock, &p.ReorderThreshold,
		&p.ImageRef, &p.Barcode, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// productWriteErr traduce violaciones de barcode único y de categoría inexistente.
func productWriteErr(op string, err error) error {
	switch {
	case isUniqueViolation(err) && violatedConstraint(err) == "products_barcode_key":
		return domain.ErrDuplicateBarcode
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isFKViolation(err):
		return fmt.Errorf("%w: categoría", domain.ErrNotFound)
	}
	return fmt.Errorf("%s product: %w", op, err)
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	if product.CategoryID != nil && !validID(*product.CategoryID) {
		return fmt.Errorf("%w: categoría", domain.ErrNotFound)
	}
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.CategoryID, product.Price, product.Stock,
		product.ReorderThreshold, product.ImageRef, product.Barcode, product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return productWriteErr("insert", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetForUpdate lee el producto con SELECT ... FOR UPDATE; solo tiene sentido dentro de una tx.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.get(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *ProductRepo) get(ctx context.Context, query, id string) (*entity.Product, error) {
	if !validID(id) {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update actualiza los datos de catálogo. Stock se maneja solo vía movimientos y Active vía SetActive.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	if !validID(product.ID) {
		return domain.ErrNotFound
	}
	if product.CategoryID != nil && !validID(*product.CategoryID) {
		return fmt.Errorf("%w: categoría", domain.ErrNotFound)
	}
	query := `
		UPDATE products SET name = $2, description = $3, category_id = $4, price = $5, reorder_threshold = $6,
			image_ref = $7, barcode = $8, updated_at = $9
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.CategoryID, product.Price, product.ReorderThreshold,
		product.ImageRef, product.Barcode, product.UpdatedAt,
	)
	if err != nil {
		return productWriteErr("update", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock fija el stock materializado (usado por el ledger tras validar el movimiento).
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, stock int, at time.Time) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `UPDATE products SET stock = $2, updated_at = $3 WHERE id = $1`, id, stock, at)
	if err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive baja o alta lógica.
func (r *ProductRepo) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `UPDATE products SET active = $2, updated_at = $3 WHERE id = $1`, id, active, at)
	if err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el producto. Con movimientos la FK RESTRICT lo impide.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isFKViolation(err) {
			return domain.ErrReferentialBlock
		}
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List filtra, cuenta y pagina ordenando por nombre.
func (r *ProductRepo) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, int, error) {
	var w whereBuilder
	if !filter.IncludeInactive {
		w.addRaw("active")
	}
	if filter.CategoryID != "" {
		if validID(filter.CategoryID) {
			w.add("category_id = $%d", filter.CategoryID)
		} else {
			w.addRaw("false")
		}
	}
	if filter.LowStock {
		w.addRaw("stock <= reorder_threshold")
	}
	if filter.Query != "" {
		p := w.next(likePattern(filter.Query))
		w.addRaw("(name ILIKE " + p + " OR description ILIKE " + p + ")")
	}
	where := w.sql()

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args := append(w.args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY lower(name), id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, total, rows.Err()
}

// ClearCategory deja sin categoría a los productos de categoryID.
func (r *ProductRepo) ClearCategory(ctx context.Context, categoryID string) error {
	if !validID(categoryID) {
		return nil
	}
	_, err := r.q.Exec(ctx, `UPDATE products SET category_id = NULL, updated_at = now() WHERE category_id = $1`, categoryID)
	if err != nil {
		return fmt.Errorf("clear product category: %w", err)
	}
	return nil
}

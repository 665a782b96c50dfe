package memory

import (
	"context"

	"github.com/jhoicas/solterito-inventario/internal/application/catalog"
	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

var (
	_ ledger.TxRunner  = (*TxRunner)(nil)
	_ catalog.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción en memoria.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repos de productos y movimientos atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, fn func(
	products repository.ProductRepository,
	movements repository.MovementRepository,
) error) error {
	t := newTx(r.s)
	defer t.releaseLocks()

	if err := fn(&ProductRepo{s: r.s, tx: t}, &MovementRepo{s: r.s, tx: t}); err != nil {
		return err
	}
	return t.commit()
}

// RunCatalog ejecuta fn con repos de categorías y productos atados a la transacción.
func (r *TxRunner) RunCatalog(ctx context.Context, fn func(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
) error) error {
	t := newTx(r.s)
	defer t.releaseLocks()

	if err := fn(&CategoryRepo{s: r.s, tx: t}, &ProductRepo{s: r.s, tx: t}); err != nil {
		return err
	}
	return t.commit()
}

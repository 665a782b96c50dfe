package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/memory"
)

type ledgerTestContext struct {
	svc       *ledger.Service
	movements repository.MovementRepository
	product   *entity.Product
	last      *entity.Movement
	err       error
}

func (c *ledgerTestContext) reset() {
	store := memory.NewStore(memory.WithLockTimeout(time.Second))
	c.movements = memory.NewMovementRepository(store)
	c.svc = ledger.NewService(memory.NewTxRunner(store), memory.NewProductRepository(store), c.movements)
	c.product = nil
	c.last = nil
	c.err = nil
}

func (c *ledgerTestContext) aProductWithStockAndThreshold(name string, stock, threshold int) error {
	c.product = &entity.Product{
		Name:             name,
		Price:            decimal.NewFromInt(2500),
		ReorderThreshold: threshold,
		Active:           true,
	}
	_, err := c.svc.RegisterProduct(context.Background(), c.product, stock, "")
	return err
}

func (c *ledgerTestContext) apply(t entity.MovementType, qty int) error {
	c.last, c.err = c.svc.ApplyMovement(context.Background(), ledger.ApplyMovementInput{
		ProductID: c.product.ID,
		Type:      t,
		Quantity:  qty,
	})
	return nil
}

func (c *ledgerTestContext) iApplyAReceiptOf(qty int) error {
	return c.apply(entity.MovementReceipt, qty)
}

func (c *ledgerTestContext) iApplyAWithdrawalOf(qty int) error {
	return c.apply(entity.MovementWithdrawal, qty)
}

func (c *ledgerTestContext) iApplyAnAdjustmentTo(target int) error {
	return c.apply(entity.MovementAdjustment, target)
}

func (c *ledgerTestContext) iTryToDeleteTheProduct() error {
	c.err = c.svc.DeleteProduct(context.Background(), c.product.ID)
	return nil
}

func (c *ledgerTestContext) theMovementIsAccepted() error {
	if c.err != nil {
		return fmt.Errorf("se esperaba éxito pero falló: %v", c.err)
	}
	return nil
}

var rejections = map[string]error{
	"insufficient stock": domain.ErrInsufficientStock,
	"invalid quantity":   domain.ErrInvalidQuantity,
	"referential block":  domain.ErrReferentialBlock,
	"not found":          domain.ErrNotFound,
}

func (c *ledgerTestContext) theMovementIsRejectedWith(kind string) error {
	want, ok := rejections[kind]
	if !ok {
		return fmt.Errorf("rechazo desconocido %q", kind)
	}
	if c.err == nil {
		return errors.New("se esperaba un error")
	}
	if !errors.Is(c.err, want) {
		return fmt.Errorf("se esperaba %v, se obtuvo %v", want, c.err)
	}
	return nil
}

func (c *ledgerTestContext) theStockIs(expected int) error {
	got, err := c.svc.CurrentStock(context.Background(), c.product.ID)
	if err != nil {
		return err
	}
	if got != expected {
		return fmt.Errorf("stock esperado %d, actual %d", expected, got)
	}
	return nil
}

func (c *ledgerTestContext) theProductHasMovements(expected int) error {
	n, err := c.movements.CountByProduct(context.Background(), c.product.ID)
	if err != nil {
		return err
	}
	if n != expected {
		return fmt.Errorf("movimientos esperados %d, actuales %d", expected, n)
	}
	return nil
}

func (c *ledgerTestContext) theLastMovementIsAWithEffectiveDelta(typ string, delta int) error {
	if c.last == nil {
		return errors.New("no hay movimiento")
	}
	if string(c.last.Type) != typ {
		return fmt.Errorf("tipo esperado %s, actual %s", typ, c.last.Type)
	}
	if c.last.EffectiveDelta != delta {
		return fmt.Errorf("delta esperado %d, actual %d", delta, c.last.EffectiveDelta)
	}
	return nil
}

func (c *ledgerTestContext) theProductNeedsRestock() error {
	need, err := c.svc.NeedsRestock(context.Background(), c.product.ID)
	if err != nil {
		return err
	}
	if !need {
		return errors.New("se esperaba que requiera reposición")
	}
	return nil
}

func (c *ledgerTestContext) canDelete(expected bool) error {
	ok, err := c.svc.CanDelete(context.Background(), c.product.ID)
	if err != nil {
		return err
	}
	if ok != expected {
		return fmt.Errorf("can_delete esperado %v, actual %v", expected, ok)
	}
	return nil
}

func (c *ledgerTestContext) theStockMatchesTheMovementHistory() error {
	rec, err := c.svc.Reconcile(context.Background(), c.product.ID)
	if err != nil {
		return err
	}
	if !rec.Consistent {
		return fmt.Errorf("stock %d distinto de la suma del historial %d", rec.Stored, rec.Folded)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &ledgerTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given
	ctx.Step(`^a product "([^"]*)" with stock (\d+) and reorder threshold (\d+)$`, tc.aProductWithStockAndThreshold)

	// When
	ctx.Step(`^I apply a receipt of (-?\d+)$`, tc.iApplyAReceiptOf)
	ctx.Step(`^I apply a withdrawal of (-?\d+)$`, tc.iApplyAWithdrawalOf)
	ctx.Step(`^I apply an adjustment to (-?\d+)$`, tc.iApplyAnAdjustmentTo)
	ctx.Step(`^I try to delete the product$`, tc.iTryToDeleteTheProduct)

	// Then
	ctx.Step(`^the movement is accepted$`, tc.theMovementIsAccepted)
	ctx.Step(`^the movement is rejected with "([^"]*)"$`, tc.theMovementIsRejectedWith)
	ctx.Step(`^the stock is (\d+)$`, tc.theStockIs)
	ctx.Step(`^the product has (\d+) movements$`, tc.theProductHasMovements)
	ctx.Step(`^the last movement is a "([^"]*)" with effective delta (-?\d+)$`, tc.theLastMovementIsAWithEffectiveDelta)
	ctx.Step(`^the product needs restock$`, tc.theProductNeedsRestock)
	ctx.Step(`^the product can be deleted$`, func() error { return tc.canDelete(true) })
	ctx.Step(`^the product cannot be deleted$`, func() error { return tc.canDelete(false) })
	ctx.Step(`^the stock matches the movement history$`, tc.theStockMatchesTheMovementHistory)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/ledger.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

package http

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/memory"
)

// flushCounter cuenta cuántas veces el bufio.Writer vacía hacia la conexión.
type flushCounter struct {
	bytes.Buffer
	writes int
}

func (f *flushCounter) Write(p []byte) (int, error) {
	f.writes++
	return f.Buffer.Write(p)
}

func TestWriteMovementsCSV_FlushesInChunks(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(memory.WithLockTimeout(time.Second))
	svc := ledger.NewService(memory.NewTxRunner(store),
		memory.NewProductRepository(store), memory.NewMovementRepository(store))

	p := &entity.Product{Name: "Clavos", Price: decimal.NewFromInt(50), ReorderThreshold: 5, Active: true}
	_, err := svc.RegisterProduct(ctx, p, 0, "")
	require.NoError(t, err)

	const rows = 2*exportFlushEvery + 50
	for i := 0; i < rows; i++ {
		_, err := svc.ApplyMovement(ctx, ledger.ApplyMovementInput{
			ProductID: p.ID, Type: entity.MovementReceipt, Quantity: 1,
		})
		require.NoError(t, err)
	}

	out := &flushCounter{}
	bw := bufio.NewWriterSize(out, 64<<10)
	writeMovementsCSV(ctx, bw, svc, repository.MovementFilter{ProductID: p.ID})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Len(t, lines, rows+1)
	assert.True(t, strings.HasPrefix(lines[0], "id,product_id,type"))
	assert.Contains(t, lines[1], ",receipt,1,1,")
	assert.GreaterOrEqual(t, out.writes, 3, "el cuerpo sale por partes, no de una vez")
}

package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solterito-inventario/internal/application/dto"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0,00", formatMoney(decimal.Zero))
	assert.Equal(t, "999,90", formatMoney(decimal.RequireFromString("999.9")))
	assert.Equal(t, "1.234.567,50", formatMoney(decimal.RequireFromString("1234567.5")))
}

func TestGenerateSummary(t *testing.T) {
	g := NewMarotoReportGenerator("Solterito")
	s := &dto.ReportSummaryDTO{
		ActiveProducts:   3,
		InventoryValue:   decimal.RequireFromString("1500.25"),
		LowStockCount:    1,
		CriticalProducts: []dto.CriticalProductDTO{{ProductID: "p1", Name: "Café", Stock: 2, ReorderThreshold: 5}},
		MonthlyMovements: []dto.MonthlyMovementsDTO{{Month: "2026-10", Receipts: 4, Withdrawals: 2}},
		DateLabel:        "Octubre 2026",
	}

	b, err := g.GenerateSummary(s, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

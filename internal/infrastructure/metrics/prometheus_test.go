package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/metrics"
)

func TestMetrics_RecordsLedgerEvents(t *testing.T) {
	m := metrics.New("test")

	m.MovementApplied(entity.MovementReceipt, 10)
	m.MovementApplied(entity.MovementWithdrawal, -3)
	m.MovementApplied(entity.MovementAdjustment, 0)
	m.MovementRejected(entity.MovementWithdrawal, "insufficient_stock")
	m.LockWait(20 * time.Millisecond)

	n, err := testutil.GatherAndCount(m.Registry(),
		"test_movements_applied_total", "test_movements_rejected_total", "test_stock_units_total")
	require.NoError(t, err)
	assert.Equal(t, 6, n) // 3 tipos aplicados + 1 rechazo + in/out

	expected := `
# HELP test_stock_units_total Unidades que entraron (in) o salieron (out) del inventario
# TYPE test_stock_units_total counter
test_stock_units_total{direction="in"} 10
test_stock_units_total{direction="out"} 3
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_stock_units_total"))
}

func TestMetrics_Handler(t *testing.T) {
	m := metrics.New("test")
	m.ObserveRequest("GET", "/api/products", 200, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",path="/api/products",status="200"} 1`)
}

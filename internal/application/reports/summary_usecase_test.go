package reports_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/application/reports"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
)

type reportRepoMock struct {
	mock.Mock
}

func (m *reportRepoMock) GetKPIs(ctx context.Context, dayStart time.Time) (*entity.InventoryKPIs, error) {
	args := m.Called(ctx, dayStart)
	k, _ := args.Get(0).(*entity.InventoryKPIs)
	return k, args.Error(1)
}

func (m *reportRepoMock) ListCriticalProducts(ctx context.Context, limit int) ([]*entity.Product, error) {
	args := m.Called(ctx, limit)
	p, _ := args.Get(0).([]*entity.Product)
	return p, args.Error(1)
}

func (m *reportRepoMock) MonthlyMovements(ctx context.Context, since time.Time) ([]entity.MonthlyMovementCount, error) {
	args := m.Called(ctx, since)
	c, _ := args.Get(0).([]entity.MonthlyMovementCount)
	return c, args.Error(1)
}

func (m *reportRepoMock) TopWithdrawn(ctx context.Context, limit int) ([]entity.ProductWithdrawal, error) {
	args := m.Called(ctx, limit)
	w, _ := args.Get(0).([]entity.ProductWithdrawal)
	return w, args.Error(1)
}

type cacheMock struct {
	mock.Mock
}

func (m *cacheMock) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *cacheMock) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *cacheMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type pdfMock struct {
	mock.Mock
}

func (m *pdfMock) GenerateSummary(s *dto.ReportSummaryDTO, at time.Time) ([]byte, error) {
	args := m.Called(s, at)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

var fixedNow = time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func expectQueries(repo *reportRepoMock) {
	dayStart := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	repo.On("GetKPIs", mock.Anything, dayStart).Return(&entity.InventoryKPIs{
		ActiveProducts: 3,
		InventoryValue: decimal.RequireFromString("150000.456"),
		LowStockCount:  1,
		MovementsToday: 4,
	}, nil).Once()
	repo.On("ListCriticalProducts", mock.Anything, 10).Return([]*entity.Product{
		{ID: "p1", Name: "Sal", Stock: 1, ReorderThreshold: 5},
	}, nil).Once()
	repo.On("MonthlyMovements", mock.Anything, dayStart.AddDate(0, 0, -180)).Return([]entity.MonthlyMovementCount{
		{Month: "2026-09", Receipts: 2, Withdrawals: 1},
		{Month: "2026-10", Receipts: 1, Adjustments: 1},
	}, nil).Once()
	repo.On("TopWithdrawn", mock.Anything, 5).Return([]entity.ProductWithdrawal{
		{ProductID: "p2", Name: "Arroz", Withdrawn: 12},
	}, nil).Once()
}

func TestGetSummary_WithoutCache(t *testing.T) {
	repo := new(reportRepoMock)
	expectQueries(repo)
	uc := reports.NewSummaryUseCase(repo, reports.WithClock(clock))

	s, err := uc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, s.ActiveProducts)
	assert.True(t, decimal.RequireFromString("150000.46").Equal(s.InventoryValue))
	assert.Equal(t, 4, s.MovementsToday)
	require.Len(t, s.CriticalProducts, 1)
	assert.Equal(t, "Sal", s.CriticalProducts[0].Name)
	require.Len(t, s.MonthlyMovements, 2)
	assert.Equal(t, "2026-10", s.MonthlyMovements[1].Month)
	assert.Equal(t, 12, s.TopWithdrawn[0].Withdrawn)
	assert.Equal(t, "Octubre 2026", s.DateLabel)
	repo.AssertExpectations(t)
}

func TestGetSummary_RepoError(t *testing.T) {
	repo := new(reportRepoMock)
	repo.On("GetKPIs", mock.Anything, mock.Anything).Return(nil, errors.New("db caída"))
	repo.On("ListCriticalProducts", mock.Anything, mock.Anything).Return([]*entity.Product{}, nil)
	repo.On("MonthlyMovements", mock.Anything, mock.Anything).Return([]entity.MonthlyMovementCount{}, nil)
	repo.On("TopWithdrawn", mock.Anything, mock.Anything).Return([]entity.ProductWithdrawal{}, nil)
	uc := reports.NewSummaryUseCase(repo, reports.WithClock(clock))

	_, err := uc.GetSummary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db caída")
}

func TestGetSummary_CacheMissThenStore(t *testing.T) {
	repo := new(reportRepoMock)
	expectQueries(repo)
	cache := new(cacheMock)
	cache.On("Get", mock.Anything, "reports:summary").Return(nil, reports.ErrCacheMiss).Once()
	cache.On("Set", mock.Anything, "reports:summary", mock.AnythingOfType("[]uint8"), time.Minute).Return(nil).Once()

	uc := reports.NewSummaryUseCase(repo, reports.WithClock(clock), reports.WithCache(cache, time.Minute))
	_, err := uc.GetSummary(context.Background())
	require.NoError(t, err)

	cache.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestGetSummary_CacheHitSkipsRepo(t *testing.T) {
	repo := new(reportRepoMock)
	cached, err := json.Marshal(dto.ReportSummaryDTO{ActiveProducts: 42, InventoryValue: decimal.NewFromInt(7)})
	require.NoError(t, err)
	cache := new(cacheMock)
	cache.On("Get", mock.Anything, "reports:summary").Return(cached, nil).Once()

	uc := reports.NewSummaryUseCase(repo, reports.WithCache(cache, time.Minute))
	s, err := uc.GetSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 42, s.ActiveProducts)
	repo.AssertNotCalled(t, "GetKPIs", mock.Anything, mock.Anything)
}

func TestGetSummary_CacheFailureFallsBackToRepo(t *testing.T) {
	repo := new(reportRepoMock)
	expectQueries(repo)
	cache := new(cacheMock)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("conexión rechazada"))
	cache.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("conexión rechazada"))

	uc := reports.NewSummaryUseCase(repo, reports.WithClock(clock), reports.WithCache(cache, time.Minute))
	s, err := uc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, s.ActiveProducts)
}

func TestInvalidate(t *testing.T) {
	cache := new(cacheMock)
	cache.On("Delete", mock.Anything, "reports:summary").Return(nil).Once()

	uc := reports.NewSummaryUseCase(new(reportRepoMock), reports.WithCache(cache, time.Minute))
	uc.Invalidate(context.Background())
	cache.AssertExpectations(t)

	// sin caché no hace nada
	reports.NewSummaryUseCase(new(reportRepoMock)).Invalidate(context.Background())
}

func TestGetSummary_ChangeDuringComputationIsNotCached(t *testing.T) {
	repo := new(reportRepoMock)
	cache := new(cacheMock)
	cache.On("Get", mock.Anything, "reports:summary").Return(nil, reports.ErrCacheMiss)
	cache.On("Delete", mock.Anything, "reports:summary").Return(nil)

	uc := reports.NewSummaryUseCase(repo, reports.WithClock(clock), reports.WithCache(cache, time.Minute))

	// un movimiento se confirma mientras se calculan los indicadores
	dayStart := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	repo.On("GetKPIs", mock.Anything, dayStart).
		Run(func(args mock.Arguments) { uc.Invalidate(context.Background()) }).
		Return(&entity.InventoryKPIs{ActiveProducts: 1, LowStockCount: 1}, nil).Once()
	repo.On("ListCriticalProducts", mock.Anything, 10).Return([]*entity.Product{}, nil).Once()
	repo.On("MonthlyMovements", mock.Anything, mock.Anything).Return([]entity.MonthlyMovementCount{}, nil).Once()
	repo.On("TopWithdrawn", mock.Anything, 5).Return([]entity.ProductWithdrawal{}, nil).Once()

	s, err := uc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, s.LowStockCount)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// sin cambios en curso el siguiente cálculo sí se guarda
	expectQueries(repo)
	cache.On("Set", mock.Anything, "reports:summary", mock.AnythingOfType("[]uint8"), time.Minute).Return(nil).Once()
	s, err = uc.GetSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, s.ActiveProducts)
	cache.AssertExpectations(t)
}

func TestSummaryPDF(t *testing.T) {
	repo := new(reportRepoMock)
	expectQueries(repo)
	gen := new(pdfMock)
	gen.On("GenerateSummary", mock.AnythingOfType("*dto.ReportSummaryDTO"), fixedNow).Return([]byte("%PDF-1.3"), nil).Once()

	uc := reports.NewSummaryUseCase(repo, reports.WithClock(clock), reports.WithPDF(gen))
	b, err := uc.SummaryPDF(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), b)
	gen.AssertExpectations(t)

	_, err = reports.NewSummaryUseCase(repo).SummaryPDF(context.Background())
	assert.Error(t, err)
}

// Package reports contiene las proyecciones de solo lectura del inventario:
// indicadores, productos críticos, tendencia mensual y productos más retirados.
package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
	"github.com/jhoicas/solterito-inventario/pkg/logger"
)

const (
	criticalLimit  = 10
	topWithdrawn   = 5
	trendDays      = 180
	summaryKey     = "reports:summary"
	defaultSummary = 30 * time.Second
)

// SummaryUseCase genera el resumen de inventario.
// El resultado puede cachearse; el stock individual de un producto nunca pasa por aquí.
type SummaryUseCase struct {
	repo     repository.ReportRepository
	cache    Cache
	cacheTTL time.Duration
	pdf      PDFGenerator
	log      *logger.Logger
	now      func() time.Time

	// gen cuenta invalidaciones. Un resumen calculado antes de la última invalidación
	// no se guarda en caché. mu ordena Invalidate frente a toCache.
	mu  sync.Mutex
	gen uint64
}

// Option configura el caso de uso.
type Option func(*SummaryUseCase)

// WithCache activa la caché del resumen con el TTL indicado.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(uc *SummaryUseCase) {
		uc.cache = c
		if ttl > 0 {
			uc.cacheTTL = ttl
		}
	}
}

// WithPDF asigna el generador de PDF.
func WithPDF(g PDFGenerator) Option {
	return func(uc *SummaryUseCase) { uc.pdf = g }
}

// WithLogger asigna el logger.
func WithLogger(l *logger.Logger) Option {
	return func(uc *SummaryUseCase) { uc.log = l.Component("reports") }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(uc *SummaryUseCase) { uc.now = now }
}

// NewSummaryUseCase construye el caso de uso.
func NewSummaryUseCase(repo repository.ReportRepository, opts ...Option) *SummaryUseCase {
	uc := &SummaryUseCase{
		repo:     repo,
		cacheTTL: defaultSummary,
		log:      logger.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetSummary devuelve el resumen, desde caché si está disponible.
//
// Cuatro consultas en paralelo:
//  1. GetKPIs(hoy)              → totales, valor, stock bajo, movimientos de hoy
//  2. ListCriticalProducts(10)  → productos críticos
//  3. MonthlyMovements(180 días) → tendencia mensual
//  4. TopWithdrawn(5)           → más retirados
func (uc *SummaryUseCase) GetSummary(ctx context.Context) (*dto.ReportSummaryDTO, error) {
	if cached, ok := uc.fromCache(ctx); ok {
		return cached, nil
	}
	gen := uc.generation()

	now := uc.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	since := dayStart.AddDate(0, 0, -trendDays)

	type kpisResult struct {
		kpis *entity.InventoryKPIs
		err  error
	}
	type criticalResult struct {
		products []*entity.Product
		err      error
	}
	type monthlyResult struct {
		months []entity.MonthlyMovementCount
		err    error
	}
	type topResult struct {
		top []entity.ProductWithdrawal
		err error
	}

	kpisCh := make(chan kpisResult, 1)
	criticalCh := make(chan criticalResult, 1)
	monthlyCh := make(chan monthlyResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		k, err := uc.repo.GetKPIs(ctx, dayStart)
		kpisCh <- kpisResult{k, err}
	}()
	go func() {
		p, err := uc.repo.ListCriticalProducts(ctx, criticalLimit)
		criticalCh <- criticalResult{p, err}
	}()
	go func() {
		m, err := uc.repo.MonthlyMovements(ctx, since)
		monthlyCh <- monthlyResult{m, err}
	}()
	go func() {
		t, err := uc.repo.TopWithdrawn(ctx, topWithdrawn)
		topCh <- topResult{t, err}
	}()

	kpis := <-kpisCh
	critical := <-criticalCh
	monthly := <-monthlyCh
	top := <-topCh

	if kpis.err != nil {
		return nil, fmt.Errorf("reports: indicadores: %w", kpis.err)
	}
	if critical.err != nil {
		return nil, fmt.Errorf("reports: productos críticos: %w", critical.err)
	}
	if monthly.err != nil {
		return nil, fmt.Errorf("reports: movimientos por mes: %w", monthly.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("reports: más retirados: %w", top.err)
	}

	summary := &dto.ReportSummaryDTO{
		ActiveProducts:   kpis.kpis.ActiveProducts,
		InventoryValue:   kpis.kpis.InventoryValue.Round(2),
		LowStockCount:    kpis.kpis.LowStockCount,
		MovementsToday:   kpis.kpis.MovementsToday,
		CriticalProducts: make([]dto.CriticalProductDTO, 0, len(critical.products)),
		MonthlyMovements: make([]dto.MonthlyMovementsDTO, 0, len(monthly.months)),
		TopWithdrawn:     make([]dto.TopWithdrawnDTO, 0, len(top.top)),
		DateLabel:        monthLabel(now),
	}
	for _, p := range critical.products {
		summary.CriticalProducts = append(summary.CriticalProducts, dto.CriticalProductDTO{
			ProductID:        p.ID,
			Name:             p.Name,
			Stock:            p.Stock,
			ReorderThreshold: p.ReorderThreshold,
		})
	}
	for _, m := range monthly.months {
		summary.MonthlyMovements = append(summary.MonthlyMovements, dto.MonthlyMovementsDTO(m))
	}
	for _, w := range top.top {
		summary.TopWithdrawn = append(summary.TopWithdrawn, dto.TopWithdrawnDTO(w))
	}

	uc.toCache(ctx, summary, gen)
	return summary, nil
}

// SummaryPDF genera el resumen en PDF.
func (uc *SummaryUseCase) SummaryPDF(ctx context.Context) ([]byte, error) {
	if uc.pdf == nil {
		return nil, errors.New("reports: generador PDF no configurado")
	}
	summary, err := uc.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	b, err := uc.pdf.GenerateSummary(summary, uc.now())
	if err != nil {
		return nil, fmt.Errorf("reports: generar PDF: %w", err)
	}
	return b, nil
}

// Invalidate descarta el resumen cacheado. Se invoca tras cada cambio confirmado.
func (uc *SummaryUseCase) Invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.gen++
	if err := uc.cache.Delete(ctx, summaryKey); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar el resumen en caché")
	}
}

func (uc *SummaryUseCase) generation() uint64 {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.gen
}

func (uc *SummaryUseCase) fromCache(ctx context.Context) (*dto.ReportSummaryDTO, bool) {
	if uc.cache == nil {
		return nil, false
	}
	raw, err := uc.cache.Get(ctx, summaryKey)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			uc.log.Warn().Err(err).Msg("caché de reportes no disponible")
		}
		return nil, false
	}
	var s dto.ReportSummaryDTO
	if err := json.Unmarshal(raw, &s); err != nil {
		uc.log.Warn().Err(err).Msg("resumen en caché corrupto")
		return nil, false
	}
	return &s, true
}

// toCache guarda el resumen solo si no hubo invalidaciones desde gen.
func (uc *SummaryUseCase) toCache(ctx context.Context, s *dto.ReportSummaryDTO, gen uint64) {
	if uc.cache == nil {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.gen != gen {
		uc.log.Debug().Msg("resumen descartado: hubo cambios durante el cálculo")
		return
	}
	if err := uc.cache.Set(ctx, summaryKey, raw, uc.cacheTTL); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo guardar el resumen en caché")
	}
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Febrero 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}

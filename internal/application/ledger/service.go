// Package ledger implementa el motor de consistencia del stock: cada movimiento se valida,
// se aplica sobre el stock bloqueado y se persiste junto con el nuevo stock en una sola transacción.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	domainledger "github.com/jhoicas/solterito-inventario/internal/domain/ledger"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
	"github.com/jhoicas/solterito-inventario/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	openingReason = "Stock inicial"
)

// ApplyMovementInput datos de un movimiento a registrar.
// Para adjustment, Quantity es el stock objetivo (conteo físico).
type ApplyMovementInput struct {
	ProductID string
	Type      entity.MovementType
	Quantity  int
	Reason    string
	ActorID   string // opcional
}

// Reconciliation compara el stock almacenado con la suma del historial.
type Reconciliation struct {
	ProductID  string
	Stored     int
	Folded     int
	Movements  int
	Consistent bool
}

// Service expone las operaciones del ledger de stock.
type Service struct {
	tx        TxRunner
	products  repository.ProductRepository
	movements repository.MovementRepository
	recorder  Recorder
	hooks     []AfterCommitHook
	log       *logger.Logger
	now       func() time.Time
}

// Option configura el Service.
type Option func(*Service)

// WithRecorder registra las métricas del motor.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithAfterCommit añade un hook que corre tras cada movimiento confirmado.
func WithAfterCommit(h AfterCommitHook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, h) }
}

// WithLogger asigna el logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l.Component("ledger") }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService construye el servicio. products y movements son los repos fuera de transacción (lecturas).
func NewService(
	tx TxRunner,
	products repository.ProductRepository,
	movements repository.MovementRepository,
	opts ...Option,
) *Service {
	s := &Service{
		tx:        tx,
		products:  products,
		movements: movements,
		recorder:  nopRecorder{},
		log:       logger.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ApplyMovement valida y aplica un movimiento de forma atómica.
// Bloquea la fila del producto, calcula el delta contra el último stock confirmado y persiste
// movimiento y stock en la misma transacción. Si falla, no queda ningún efecto.
func (s *Service) ApplyMovement(ctx context.Context, in ApplyMovementInput) (*entity.Movement, error) {
	if in.ProductID == "" {
		return nil, s.reject(in, fmt.Errorf("%w: producto requerido", domain.ErrInvalidInput))
	}
	if err := domainledger.ValidateQuantity(in.Type, in.Quantity); err != nil {
		return nil, s.reject(in, err)
	}

	var applied *entity.Movement
	start := time.Now()
	err := s.tx.Run(ctx, func(products repository.ProductRepository, movements repository.MovementRepository) error {
		product, err := products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		s.recorder.LockWait(time.Since(start))
		if product == nil {
			return domain.ErrNotFound
		}

		delta, err := domainledger.ComputeDelta(product.Stock, in.Type, in.Quantity)
		if err != nil {
			var ise *domain.InsufficientStockError
			if errors.As(err, &ise) {
				ise.ProductID = product.ID
			}
			return err
		}

		m, err := s.book(ctx, products, movements, product, in, delta)
		if err != nil {
			return err
		}
		applied = m
		return nil
	})
	if err != nil {
		return nil, s.reject(in, err)
	}

	s.recorder.MovementApplied(applied.Type, applied.EffectiveDelta)
	s.log.Info().
		Str("product_id", applied.ProductID).
		Str("type", string(applied.Type)).
		Int("quantity", applied.Quantity).
		Int("delta", applied.EffectiveDelta).
		Int("stock_after", applied.StockAfter).
		Msg("movimiento aplicado")
	s.afterCommit(ctx, applied)
	return applied, nil
}

// book escribe el nuevo stock y el movimiento usando los repos de la transacción en curso.
func (s *Service) book(
	ctx context.Context,
	products repository.ProductRepository,
	movements repository.MovementRepository,
	product *entity.Product,
	in ApplyMovementInput,
	delta int,
) (*entity.Movement, error) {
	now := s.now()
	newStock := product.Stock + delta
	if err := products.UpdateStock(ctx, product.ID, newStock, now); err != nil {
		return nil, err
	}
	m := &entity.Movement{
		ID:             uuid.New().String(),
		ProductID:      product.ID,
		Type:           in.Type,
		Quantity:       in.Quantity,
		EffectiveDelta: delta,
		StockAfter:     newStock,
		Reason:         in.Reason,
		CreatedAt:      now,
	}
	if in.ActorID != "" {
		actor := in.ActorID
		m.ActorID = &actor
	}
	if err := movements.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// RegisterProduct inserta un producto y, si initialStock > 0, su entrada de apertura en la misma transacción.
func (s *Service) RegisterProduct(ctx context.Context, product *entity.Product, initialStock int, actorID string) (*entity.Movement, error) {
	if initialStock < 0 || initialStock > domainledger.MaxQuantity {
		return nil, domain.ErrInvalidQuantity
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := s.now()
	product.Stock = 0
	product.CreatedAt = now
	product.UpdatedAt = now

	var opening *entity.Movement
	err := s.tx.Run(ctx, func(products repository.ProductRepository, movements repository.MovementRepository) error {
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		if initialStock == 0 {
			return nil
		}
		m, err := s.book(ctx, products, movements, product, ApplyMovementInput{
			ProductID: product.ID,
			Type:      entity.MovementReceipt,
			Quantity:  initialStock,
			Reason:    openingReason,
			ActorID:   actorID,
		}, initialStock)
		if err != nil {
			return err
		}
		opening = m
		return nil
	})
	if err != nil {
		return nil, wrap("registrar producto", err)
	}
	product.Stock = initialStock

	if opening != nil {
		s.recorder.MovementApplied(opening.Type, opening.EffectiveDelta)
		s.afterCommit(ctx, opening)
	}
	s.log.Info().Str("product_id", product.ID).Int("initial_stock", initialStock).Msg("producto registrado")
	return opening, nil
}

// CurrentStock devuelve el stock confirmado del producto (sin caché).
func (s *Service) CurrentStock(ctx context.Context, productID string) (int, error) {
	p, err := s.getProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}

// NeedsRestock indica si el producto está en o por debajo de su umbral.
func (s *Service) NeedsRestock(ctx context.Context, productID string) (bool, error) {
	p, err := s.getProduct(ctx, productID)
	if err != nil {
		return false, err
	}
	return p.NeedsRestock(), nil
}

// CanDelete es true si el producto no tiene movimientos.
func (s *Service) CanDelete(ctx context.Context, productID string) (bool, error) {
	if _, err := s.getProduct(ctx, productID); err != nil {
		return false, err
	}
	n, err := s.movements.CountByProduct(ctx, productID)
	if err != nil {
		return false, wrap("contar movimientos", err)
	}
	return n == 0, nil
}

// DeleteProduct elimina físicamente un producto sin movimientos.
// La comprobación y el borrado ocurren con la fila bloqueada para no competir con un movimiento.
func (s *Service) DeleteProduct(ctx context.Context, productID string) error {
	err := s.tx.Run(ctx, func(products repository.ProductRepository, movements repository.MovementRepository) error {
		p, err := products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		n, err := movements.CountByProduct(ctx, productID)
		if err != nil {
			return err
		}
		if n > 0 {
			return domain.ErrReferentialBlock
		}
		return products.Delete(ctx, productID)
	})
	if err != nil {
		return wrap("eliminar producto", err)
	}
	s.log.Info().Str("product_id", productID).Msg("producto eliminado")
	return nil
}

// ListMovements devuelve una página del historial (más reciente primero) y el total.
func (s *Service) ListMovements(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int, error) {
	if err := validateFilter(filter); err != nil {
		return nil, 0, err
	}
	limit, offset = normalizePage(limit, offset)
	list, total, err := s.movements.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, wrap("listar movimientos", err)
	}
	return list, total, nil
}

// StreamMovements recorre el historial filtrado de forma perezosa, más reciente primero.
func (s *Service) StreamMovements(ctx context.Context, filter repository.MovementFilter) iter.Seq2[*entity.Movement, error] {
	if err := validateFilter(filter); err != nil {
		return func(yield func(*entity.Movement, error) bool) {
			yield(nil, err)
		}
	}
	return s.movements.Stream(ctx, filter)
}

// Reconcile compara el stock almacenado con la suma de effective_delta del historial.
// Lee ambos valores con la fila bloqueada para obtener una foto coherente.
func (s *Service) Reconcile(ctx context.Context, productID string) (*Reconciliation, error) {
	var rec *Reconciliation
	err := s.tx.Run(ctx, func(products repository.ProductRepository, movements repository.MovementRepository) error {
		p, err := products.GetForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		sum, err := movements.SumDeltas(ctx, productID)
		if err != nil {
			return err
		}
		n, err := movements.CountByProduct(ctx, productID)
		if err != nil {
			return err
		}
		rec = &Reconciliation{
			ProductID:  productID,
			Stored:     p.Stock,
			Folded:     sum,
			Movements:  n,
			Consistent: p.Stock == sum,
		}
		return nil
	})
	if err != nil {
		return nil, wrap("conciliar", err)
	}
	if !rec.Consistent {
		s.log.Warn().
			Str("product_id", productID).
			Int("stored", rec.Stored).
			Int("folded", rec.Folded).
			Msg("stock inconsistente con el historial")
	}
	return rec, nil
}

func (s *Service) getProduct(ctx context.Context, productID string) (*entity.Product, error) {
	if productID == "" {
		return nil, domain.ErrNotFound
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, wrap("obtener producto", err)
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *Service) reject(in ApplyMovementInput, err error) error {
	s.recorder.MovementRejected(in.Type, rejectReason(err))
	var ev *zerolog.Event
	if isDomainError(err) {
		ev = s.log.Warn()
	} else {
		ev = s.log.Error()
	}
	ev.Err(err).
		Str("product_id", in.ProductID).
		Str("type", string(in.Type)).
		Int("quantity", in.Quantity).
		Msg("movimiento rechazado")
	return wrap("aplicar movimiento", err)
}

func (s *Service) afterCommit(ctx context.Context, m *entity.Movement) {
	for _, h := range s.hooks {
		h(ctx, m)
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidMovementType):
		return "invalid_type"
	case errors.Is(err, domain.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

func isDomainError(err error) bool {
	return rejectReason(err) != "error"
}

// wrap antepone el contexto a errores de infraestructura; los de dominio se devuelven tal cual.
func wrap(op string, err error) error {
	if isDomainError(err) || errors.Is(err, domain.ErrDuplicate) || errors.Is(err, domain.ErrReferentialBlock) {
		return err
	}
	return fmt.Errorf("ledger: %s: %w", op, err)
}

func validateFilter(f repository.MovementFilter) error {
	if f.Type != "" && !f.Type.Valid() {
		return domain.ErrInvalidMovementType
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

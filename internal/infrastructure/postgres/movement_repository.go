package postgres

import (
	"context"
	"fmt"
	"iter"

	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, product_id, type, quantity, effective_delta, stock_after, reason, actor_id, created_at`

// MovementRepo ledger de movimientos sobre PostgreSQL. Solo INSERT.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row scanner) (*entity.Movement, error) {
	var m entity.Movement
	var t string
	err := row.Scan(&m.ID, &m.ProductID, &t, &m.Quantity, &m.EffectiveDelta, &m.StockAfter, &m.Reason, &m.ActorID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.Type = entity.MovementType(t)
	return &m, nil
}

// movementWriteErr distingue la FK violada: producto inexistente es ErrNotFound,
// actor inexistente es una entrada inválida.
func movementWriteErr(err error) error {
	if isFKViolation(err) {
		switch violatedConstraint(err) {
		case fkMovementActor:
			return fmt.Errorf("%w: el usuario que registra no existe", domain.ErrInvalidInput)
		default:
			return fmt.Errorf("%w: producto", domain.ErrNotFound)
		}
	}
	return fmt.Errorf("insert movement: %w", err)
}

// Create añade un movimiento.
func (r *MovementRepo) Create(ctx context.Context, movement *entity.Movement) error {
	if !validID(movement.ProductID) {
		return domain.ErrNotFound
	}
	if movement.ActorID != nil && !validID(*movement.ActorID) {
		return fmt.Errorf("%w: el usuario que registra no existe", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		movement.ID, movement.ProductID, string(movement.Type), movement.Quantity, movement.EffectiveDelta,
		movement.StockAfter, movement.Reason, movement.ActorID, movement.CreatedAt,
	)
	if err != nil {
		return movementWriteErr(err)
	}
	return nil
}

func (r *MovementRepo) CountByProduct(ctx context.Context, productID string) (int, error) {
	if !validID(productID) {
		return 0, nil
	}
	var n int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM movements WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return n, nil
}

func (r *MovementRepo) SumDeltas(ctx context.Context, productID string) (int, error) {
	if !validID(productID) {
		return 0, nil
	}
	var sum int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(effective_delta), 0)::int FROM movements WHERE product_id = $1`, productID,
	).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("sum movement deltas: %w", err)
	}
	return sum, nil
}

func movementWhere(f repository.MovementFilter) whereBuilder {
	var w whereBuilder
	if f.ProductID != "" {
		if validID(f.ProductID) {
			w.add("product_id = $%d", f.ProductID)
		} else {
			// ningún movimiento pertenece a un id mal formado
			w.addRaw("false")
		}
	}
	if f.Type != "" {
		w.add("type = $%d", string(f.Type))
	}
	if f.From != nil {
		w.add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		w.add("created_at <= $%d", *f.To)
	}
	return w
}

// List devuelve una página, más reciente primero; seq desempata movimientos del mismo instante.
func (r *MovementRepo) List(ctx context.Context, filter repository.MovementFilter, limit, offset int) ([]*entity.Movement, int, error) {
	w := movementWhere(filter)
	where := w.sql()

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM movements`+where, w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count movements: %w", err)
	}

	args := append(w.args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM movements%s ORDER BY created_at DESC, seq DESC LIMIT $%d OFFSET $%d`,
		movementColumns, where, len(args)-1, len(args))
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	list := make([]*entity.Movement, 0, limit)
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, total, rows.Err()
}

// Stream itera el cursor de filas sin cargar todo el historial.
func (r *MovementRepo) Stream(ctx context.Context, filter repository.MovementFilter) iter.Seq2[*entity.Movement, error] {
	return func(yield func(*entity.Movement, error) bool) {
		w := movementWhere(filter)
		rows, err := r.q.Query(ctx,
			`SELECT `+movementColumns+` FROM movements`+w.sql()+` ORDER BY created_at DESC, seq DESC`, w.args...)
		if err != nil {
			yield(nil, fmt.Errorf("stream movements: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			m, err := scanMovement(rows)
			if err != nil {
				yield(nil, fmt.Errorf("scan movement: %w", err))
				return
			}
			if !yield(m, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

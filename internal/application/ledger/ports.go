package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción (Commit si retorna nil, Rollback si error).
// Los repos recibidos están atados a la transacción. Si la espera por el bloqueo de fila de un
// producto supera el timeout configurado o ctx se cancela, Run devuelve domain.ErrConcurrencyConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		products repository.ProductRepository,
		movements repository.MovementRepository,
	) error) error
}

// Recorder recibe las métricas del motor (Prometheus en producción).
type Recorder interface {
	MovementApplied(t entity.MovementType, delta int)
	MovementRejected(t entity.MovementType, reason string)
	LockWait(d time.Duration)
}

// AfterCommitHook se invoca solo después de confirmar la transacción de un movimiento.
type AfterCommitHook func(ctx context.Context, m *entity.Movement)

type nopRecorder struct{}

func (nopRecorder) MovementApplied(entity.MovementType, int)     {}
func (nopRecorder) MovementRejected(entity.MovementType, string) {}
func (nopRecorder) LockWait(time.Duration)                       {}

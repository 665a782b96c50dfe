package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que el adaptador traduce a errores de dominio.
const (
	codeUniqueViolation = "23505"
	codeFKViolation     = "23503"
	codeLockTimeout     = "55P03"
	codeDeadlock        = "40P01"
)

// Constraints de llave foránea de movements.
const (
	fkMovementProduct = "movements_product_fk"
	fkMovementActor   = "movements_actor_fk"
)

// validID indica si id puede compararse contra una columna UUID. Un id mal formado
// no existe: los repos lo tratan como fila ausente en vez de dejar que Postgres falle con 22P02.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// isFKViolation verifica si un error es una violación de llave foránea (23503).
func isFKViolation(err error) bool {
	return pgCode(err) == codeFKViolation
}

// violatedConstraint nombre del constraint que falló, vacío si no es un PgError.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// isLockContention agrupa lock_timeout, deadlock y cancelación por contexto mientras se espera un bloqueo.
func isLockContention(err error) bool {
	switch pgCode(err) {
	case codeLockTimeout, codeDeadlock:
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// likePattern escapa comodines de LIKE y envuelve en %...%.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// whereBuilder acumula condiciones con placeholders $N.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

func (w *whereBuilder) addRaw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// next devuelve el siguiente placeholder libre.
func (w *whereBuilder) next(arg any) string {
	w.args = append(w.args, arg)
	return fmt.Sprintf("$%d", len(w.args))
}

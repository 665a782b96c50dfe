package reports

import (
	"context"
	"errors"
	"time"

	"github.com/jhoicas/solterito-inventario/internal/application/dto"
)

// ErrCacheMiss la clave no está en caché.
var ErrCacheMiss = errors.New("cache: clave no encontrada")

// Cache almacenamiento clave/valor con expiración (Redis en producción).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// PDFGenerator renderiza el resumen como documento PDF.
type PDFGenerator interface {
	GenerateSummary(summary *dto.ReportSummaryDTO, generatedAt time.Time) ([]byte, error)
}

package http

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/domain/entity"
	"github.com/jhoicas/solterito-inventario/internal/domain/repository"
)

const (
	dateLayout = "2006-01-02"

	exportTimeout    = 5 * time.Minute
	exportFlushEvery = 200
)

// MovementHandler registra y consulta movimientos de stock (protegido).
type MovementHandler struct {
	ledger *ledger.Service
}

// NewMovementHandler construye el handler.
func NewMovementHandler(ledger *ledger.Service) *MovementHandler {
	return &MovementHandler{ledger: ledger}
}

// Register godoc
// @Summary      Registrar movimiento de stock
// @Description  receipt/withdrawal requieren quantity > 0; en adjustment quantity es el stock final.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "product_id, type, quantity, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	t, err := entity.ParseMovementType(in.Type)
	if err != nil {
		return writeError(c, err)
	}
	m, err := h.ledger.ApplyMovement(c.Context(), ledger.ApplyMovementInput{
		ProductID: in.ProductID,
		Type:      t,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		ActorID:   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToMovementResponse(m))
}

// List historial paginado, más reciente primero.
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	filter, err := movementFilter(in)
	if err != nil {
		return writeError(c, err)
	}
	in.DefaultPage(20, 100)
	list, total, err := h.ledger.ListMovements(c.Context(), filter, in.Limit, in.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{
		Items: dto.ToMovementResponses(list),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	})
}

// Export descarga el historial filtrado como CSV recorriéndolo sin paginar.
func (h *MovementHandler) Export(c *fiber.Ctx) error {
	var in dto.MovementListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	filter, err := movementFilter(in)
	if err != nil {
		return writeError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="movimientos.csv"`)

	// El cuerpo se escribe después de que el handler retorna: el contexto de fasthttp
	// ya no es válido ahí, por eso la exportación usa su propio contexto con límite.
	svc := h.ledger
	c.Context().SetBodyStreamWriter(func(bw *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		writeMovementsCSV(ctx, bw, svc, filter)
	})
	return nil
}

// writeMovementsCSV vuelca el historial fila por fila, vaciando el buffer cada exportFlushEvery filas.
// Un error a mitad de camino ya no puede cambiar el status: se deja una última fila "error".
func writeMovementsCSV(ctx context.Context, bw *bufio.Writer, svc *ledger.Service, filter repository.MovementFilter) {
	w := csv.NewWriter(bw)
	_ = w.Write([]string{"id", "product_id", "type", "quantity", "effective_delta", "stock_after", "reason", "actor_id", "created_at"})

	n := 0
	for m, err := range svc.StreamMovements(ctx, filter) {
		if err != nil {
			_ = w.Write([]string{"error", "exportación incompleta"})
			break
		}
		actor := ""
		if m.ActorID != nil {
			actor = *m.ActorID
		}
		_ = w.Write([]string{
			m.ID, m.ProductID, string(m.Type),
			strconv.Itoa(m.Quantity), strconv.Itoa(m.EffectiveDelta), strconv.Itoa(m.StockAfter),
			m.Reason, actor, m.CreatedAt.Format(time.RFC3339),
		})
		n++
		if n%exportFlushEvery == 0 {
			w.Flush()
			if w.Error() != nil || bw.Flush() != nil {
				// cliente desconectado
				return
			}
		}
	}
	w.Flush()
	_ = bw.Flush()
}

func movementFilter(in dto.MovementListRequest) (repository.MovementFilter, error) {
	f := repository.MovementFilter{ProductID: in.ProductID}
	if in.Type != "" {
		t, err := entity.ParseMovementType(in.Type)
		if err != nil {
			return f, err
		}
		f.Type = t
	}
	var err error
	if f.From, err = parseDate(in.From, false); err != nil {
		return f, err
	}
	if f.To, err = parseDate(in.To, true); err != nil {
		return f, err
	}
	return f, nil
}

// parseDate acepta YYYY-MM-DD o RFC3339. Una fecha sin hora usada como límite superior cubre el día completo.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q (use YYYY-MM-DD)", domain.ErrInvalidInput, s)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}

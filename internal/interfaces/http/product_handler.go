package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solterito-inventario/internal/application/catalog"
	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
)

// ProductHandler maneja las peticiones HTTP para Product (protegido).
type ProductHandler struct {
	uc     *catalog.ProductUseCase
	ledger *ledger.Service
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.ProductUseCase, ledger *ledger.Service) *ProductHandler {
	return &ProductHandler{uc: uc, ledger: ledger}
}

// Create godoc
// @Summary      Crear producto
// @Description  initial_stock se registra como una entrada de apertura.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID devuelve el producto con sus últimos movimientos.
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Detail(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        q                 query  string  false  "Busca en nombre y descripción"
// @Param        category_id       query  string  false  "Categoría"
// @Param        low_stock         query  bool    false  "Solo stock bajo"
// @Param        include_inactive  query  bool    false  "Incluir dados de baja"
// @Param        limit             query  int     false  "Límite"  default(12)
// @Param        offset            query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var in dto.ProductListRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	out, err := h.uc.List(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update modifica datos de catálogo. El stock no se edita por aquí.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *ProductHandler) Deactivate(c *fiber.Ctx) error {
	out, err := h.uc.Deactivate(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

func (h *ProductHandler) Activate(c *fiber.Ctx) error {
	out, err := h.uc.Activate(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete borrado físico; 409 HAS_MOVEMENTS si el producto tiene historial.
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) Stock(c *fiber.Ctx) error {
	id := c.Params("id")
	stock, err := h.ledger.CurrentStock(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	restock, err := h.ledger.NeedsRestock(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: id, Stock: stock, NeedsRestock: restock})
}

func (h *ProductHandler) CanDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	ok, err := h.ledger.CanDelete(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.CanDeleteResponse{ProductID: id, CanDelete: ok})
}

// Reconcile compara el stock guardado con la suma del historial (solo admin).
func (h *ProductHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.ledger.Reconcile(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.ReconcileResponse{
		ProductID:  rec.ProductID,
		Stored:     rec.Stored,
		Folded:     rec.Folded,
		Movements:  rec.Movements,
		Consistent: rec.Consistent,
	})
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/solterito-inventario/internal/application/reports"
)

// ReportHandler maneja los endpoints de reportes.
type ReportHandler struct {
	uc *reports.SummaryUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *reports.SummaryUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// Summary devuelve KPIs, productos críticos, movimientos por mes y más retirados.
// GET /api/reports/summary
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(summary)
}

// SummaryPDF el mismo resumen como PDF descargable.
// GET /api/reports/summary.pdf
func (h *ReportHandler) SummaryPDF(c *fiber.Ctx) error {
	b, err := h.uc.SummaryPDF(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="reporte-inventario.pdf"`)
	return c.Send(b)
}

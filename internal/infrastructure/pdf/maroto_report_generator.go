// Package pdf genera el reporte de inventario en PDF con Maroto v2.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Reporte de inventario  │  Periodo + fecha          │
//	│  KPIs: Productos | Valor | Stock bajo | Movimientos hoy      │
//	│  TABLA: Productos críticos                                   │
//	│  TABLA: Movimientos por mes                                  │
//	│  TABLA: Más retirados                                        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/application/reports"
)

var _ reports.PDFGenerator = (*MarotoReportGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// MarotoReportGenerator implementa reports.PDFGenerator usando Maroto v2.
type MarotoReportGenerator struct {
	storeName string
}

// NewMarotoReportGenerator construye el generador; storeName va en el encabezado.
func NewMarotoReportGenerator(storeName string) *MarotoReportGenerator {
	return &MarotoReportGenerator{storeName: storeName}
}

// GenerateSummary genera el PDF del resumen y devuelve sus bytes.
func (g *MarotoReportGenerator) GenerateSummary(s *dto.ReportSummaryDTO, generatedAt time.Time) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Reporte de inventario", true).
		WithAuthor(g.storeName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(s, generatedAt))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(kpiRow(s))
	m.AddRows(line.NewRow(4))

	m.AddRows(sectionTitle("PRODUCTOS CRÍTICOS"))
	m.AddRows(tableHeader([]string{"Producto", "Stock", "Mínimo"}, []int{8, 2, 2}))
	if len(s.CriticalProducts) == 0 {
		m.AddRows(emptyRow("Sin productos por debajo de su mínimo"))
	}
	for _, p := range s.CriticalProducts {
		m.AddRows(row.New(6).Add(
			col.New(8).Add(text.New(p.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(strconv.Itoa(p.Stock), props.Text{Size: 8, Top: 1, Align: align.Right, Color: colorAlert})),
			col.New(2).Add(text.New(strconv.Itoa(p.ReorderThreshold), props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1})),
		))
	}
	m.AddRows(line.NewRow(4))

	m.AddRows(sectionTitle("MOVIMIENTOS POR MES"))
	m.AddRows(tableHeader([]string{"Mes", "Entradas", "Salidas", "Ajustes"}, []int{6, 2, 2, 2}))
	if len(s.MonthlyMovements) == 0 {
		m.AddRows(emptyRow("Sin movimientos en el periodo"))
	}
	for _, mm := range s.MonthlyMovements {
		m.AddRows(row.New(6).Add(
			col.New(6).Add(text.New(mm.Month, props.Text{Size: 8, Top: 1, Left: 1})),
			numCol(2, mm.Receipts),
			numCol(2, mm.Withdrawals),
			numCol(2, mm.Adjustments),
		))
	}
	m.AddRows(line.NewRow(4))

	m.AddRows(sectionTitle("MÁS RETIRADOS"))
	m.AddRows(tableHeader([]string{"Producto", "Unidades"}, []int{9, 3}))
	if len(s.TopWithdrawn) == 0 {
		m.AddRows(emptyRow("Sin salidas registradas"))
	}
	for _, t := range s.TopWithdrawn {
		m.AddRows(row.New(6).Add(
			col.New(9).Add(text.New(t.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			numCol(3, t.Withdrawn),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoReportGenerator) headerRow(s *dto.ReportSummaryDTO, at time.Time) core.Row {
	return row.New(16).Add(
		col.New(7).Add(
			text.New(g.storeName, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New("Reporte de inventario", props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New(s.DateLabel, props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 1}),
			text.New("Generado: "+at.Format("02/01/2006 15:04"), props.Text{Size: 8, Align: align.Right, Top: 9, Color: colorGray}),
		),
	)
}

func kpiRow(s *dto.ReportSummaryDTO) core.Row {
	kpi := func(label, value string) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Align: align.Center, Top: 2}),
			text.New(value, props.Text{Style: fontstyle.Bold, Size: 12, Align: align.Center, Top: 7, Color: colorPrimary}),
		)
	}
	return row.New(16).Add(
		kpi("Productos activos", strconv.Itoa(s.ActiveProducts)),
		kpi("Valor del inventario", "$"+formatMoney(s.InventoryValue)),
		kpi("Con stock bajo", strconv.Itoa(s.LowStockCount)),
		kpi("Movimientos hoy", strconv.Itoa(s.MovementsToday)),
	)
}

func sectionTitle(title string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 9, Color: colorPrimary, Top: 1}),
	))
}

func tableHeader(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, len(labels))
	for i, l := range labels {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols[i] = col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Top: 1, Left: 1, Right: 1,
		}))
	}
	return row.New(6).Add(cols...)
}

func numCol(size, n int) core.Col {
	return col.New(size).Add(text.New(strconv.Itoa(n), props.Text{Size: 8, Top: 1, Align: align.Right, Right: 1}))
}

func emptyRow(msg string) core.Row {
	return row.New(6).Add(col.New(12).Add(
		text.New(msg, props.Text{Size: 8, Top: 1, Left: 1, Color: colorGray}),
	))
}

// formatMoney usa punto de miles y coma decimal. Ej: 1234567.5 -> "1.234.567,50"
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	n := len(intPart)
	buf := make([]byte, 0, n+n/3+4)
	if neg {
		buf = append(buf, '-')
	}
	for i, c := range []byte(intPart) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf) + "," + frac
}

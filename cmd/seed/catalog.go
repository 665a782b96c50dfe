package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// row es una línea del archivo de catálogo.
// Columnas: nombre;categoria;precio;stock;stock_minimo;codigo_barras
type row struct {
	Name      string
	Category  string
	Price     decimal.Decimal
	Stock     int
	Threshold *int
	Barcode   string
}

// readCatalog lee el CSV separado por ';'. Las hojas exportadas desde Excel suelen venir en
// ISO-8859-1, en ese caso latin1 debe ser true.
func readCatalog(r io.Reader, latin1 bool) ([]row, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer csv: %w", err)
	}

	var rows []row
	for i, rec := range records {
		if i == 0 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "nombre") {
			continue
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		r, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func parseRow(rec []string) (row, error) {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	r := row{Name: field(0), Category: field(1), Barcode: field(5)}

	// se acepta coma decimal ("2500,50")
	price, err := decimal.NewFromString(strings.ReplaceAll(field(2), ",", "."))
	if err != nil {
		return row{}, fmt.Errorf("precio inválido %q", field(2))
	}
	r.Price = price

	if s := field(3); s != "" {
		if r.Stock, err = strconv.Atoi(s); err != nil {
			return row{}, fmt.Errorf("stock inválido %q", s)
		}
	}
	if s := field(4); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return row{}, fmt.Errorf("stock mínimo inválido %q", s)
		}
		r.Threshold = &n
	}
	return r, nil
}

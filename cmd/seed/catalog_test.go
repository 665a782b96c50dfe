package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadCatalog(t *testing.T) {
	in := "nombre;categoria;precio;stock;stock_minimo;codigo_barras\n" +
		"Arroz 500g;Granos;2500,50;10;3;7701\n" +
		"Sal;;1200;;;\n" +
		"\n"

	rows, err := readCatalog(strings.NewReader(in), false)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Arroz 500g", rows[0].Name)
	assert.Equal(t, "Granos", rows[0].Category)
	assert.Equal(t, "2500.5", rows[0].Price.String())
	assert.Equal(t, 10, rows[0].Stock)
	require.NotNil(t, rows[0].Threshold)
	assert.Equal(t, 3, *rows[0].Threshold)
	assert.Equal(t, "7701", rows[0].Barcode)

	assert.Equal(t, 0, rows[1].Stock)
	assert.Nil(t, rows[1].Threshold)
	assert.Empty(t, rows[1].Barcode)
}

func TestReadCatalog_Latin1(t *testing.T) {
	raw, err := charmap.ISO8859_1.NewEncoder().String("Café;Bebidas;3000;2;;\n")
	require.NoError(t, err)

	rows, err := readCatalog(bytes.NewBufferString(raw), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Café", rows[0].Name)
}

func TestReadCatalog_InvalidStock(t *testing.T) {
	_, err := readCatalog(strings.NewReader("Sal;;1200;muchos;;\n"), false)
	assert.ErrorContains(t, err, "línea 1")
}

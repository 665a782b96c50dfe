// seed carga un catálogo inicial (categorías y productos con su stock de apertura)
// a partir de un CSV separado por ';'.
//
// Uso: go run ./cmd/seed [-latin1] [-actor admin] catalogo.csv
// Los productos entran por los mismos casos de uso que la API, así el stock inicial
// queda registrado como movimiento de apertura.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jhoicas/solterito-inventario/internal/application/catalog"
	"github.com/jhoicas/solterito-inventario/internal/application/dto"
	"github.com/jhoicas/solterito-inventario/internal/application/ledger"
	"github.com/jhoicas/solterito-inventario/internal/domain"
	"github.com/jhoicas/solterito-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/solterito-inventario/pkg/config"
	"github.com/jhoicas/solterito-inventario/pkg/logger"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo viene en ISO-8859-1")
	actor := flag.String("actor", "", "usuario al que se atribuyen los movimientos de apertura")
	flag.Parse()

	path := "catalogo.csv"
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: "development", Level: cfg.App.LogLevel})

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := readCatalog(f, *latin1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conectar a PostgreSQL")
	}
	defer pool.Close()

	tx := postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout)
	products := postgres.NewProductRepository(pool)
	categories := postgres.NewCategoryRepository(pool)
	users := postgres.NewUserRepository(pool)
	svc := ledger.NewService(tx, products, postgres.NewMovementRepository(pool), ledger.WithLogger(log))
	categoryUC := catalog.NewCategoryUseCase(tx, categories)
	productUC := catalog.NewProductUseCase(products, categories, svc)

	var actorID string
	if *actor != "" {
		u, err := users.GetByUsername(ctx, *actor)
		if err != nil {
			log.Fatal().Err(err).Str("username", *actor).Msg("usuario actor")
		}
		actorID = u.ID
	}

	existing, err := categoryUC.List(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("listar categorías")
	}
	catIDs := make(map[string]string, len(existing))
	for _, c := range existing {
		catIDs[strings.ToLower(c.Name)] = c.ID
	}

	var created, skipped int
	for _, r := range rows {
		var categoryID *string
		if r.Category != "" {
			key := strings.ToLower(r.Category)
			id, ok := catIDs[key]
			if !ok {
				c, err := categoryUC.Create(ctx, dto.CategoryRequest{Name: r.Category})
				if err != nil {
					log.Fatal().Err(err).Str("category", r.Category).Msg("crear categoría")
				}
				id = c.ID
				catIDs[key] = id
			}
			categoryID = &id
		}

		req := dto.CreateProductRequest{
			Name:             r.Name,
			CategoryID:       categoryID,
			Price:            r.Price,
			InitialStock:     r.Stock,
			ReorderThreshold: r.Threshold,
		}
		if r.Barcode != "" {
			req.Barcode = &r.Barcode
		}
		if _, err := productUC.Create(ctx, actorID, req); err != nil {
			if errors.Is(err, domain.ErrDuplicateBarcode) {
				log.Warn().Str("barcode", r.Barcode).Str("product", r.Name).Msg("código de barras ya registrado, se omite")
				skipped++
				continue
			}
			log.Fatal().Err(err).Str("product", r.Name).Msg("crear producto")
		}
		created++
	}

	fmt.Printf("Catálogo cargado desde %s: %d productos creados, %d omitidos, %d categorías\n",
		path, created, skipped, len(catIDs))
}

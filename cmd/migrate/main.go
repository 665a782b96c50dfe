// migrate aplica las migraciones goose embebidas.
//
// Uso: go run ./cmd/migrate [up|down|status|version|redo|reset]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/jhoicas/solterito-inventario/internal/infrastructure/postgres"
	"github.com/jhoicas/solterito-inventario/pkg/config"
	"github.com/jhoicas/solterito-inventario/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{Env: "development", Level: "info"})

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg(".env no encontrado, se usan solo variables de entorno")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("cargar configuración")
	}

	flag.Parse()
	args := flag.Args()
	command := "up"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	ctx := context.Background()
	db, err := postgres.OpenSQL(ctx, cfg.DB.ConnectionString())
	if err != nil {
		log.Fatal().Err(err).Msg("conectar a PostgreSQL")
	}
	defer db.Close()

	if err := postgres.RunMigrations(ctx, db, command, args...); err != nil {
		log.Error().Err(err).Str("command", command).Msg("migración fallida")
		db.Close()
		os.Exit(1)
	}
	fmt.Printf("goose %s ok\n", command)
}

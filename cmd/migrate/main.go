package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Uso: migrate [-cmd up|down|version|force] [-version N]
func main() {
	cmd := flag.String("cmd", "up", "up | down | version | force")
	version := flag.Int("version", -1, "versión para -cmd force")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	mg, err := postgres.NewMigrator(context.Background(), cfg.DB.ConnectionString(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar migraciones")
	}
	defer mg.Close()

	switch *cmd {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "version":
		var v uint
		var dirty bool
		v, dirty, err = mg.Version()
		if err == nil {
			fmt.Printf("versión %d (dirty=%t)\n", v, dirty)
		}
	case "force":
		if *version < 0 {
			fmt.Fprintln(os.Stderr, "-version es obligatorio con -cmd force")
			os.Exit(2)
		}
		err = mg.Force(*version)
	default:
		fmt.Fprintf(os.Stderr, "comando desconocido: %s\n", *cmd)
		os.Exit(2)
	}
	if err != nil {
		log.Error().Err(err).Str("cmd", *cmd).Msg("migración fallida")
		mg.Close()
		os.Exit(1)
	}
	log.Info().Str("cmd", *cmd).Msg("migración completada")
}

// cmd/migrate applies the embedded SQL migrations.
// Uso: go run ./cmd/migrate [up|down|goto N|status]
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"crmseguros/internal/config"
	"crmseguros/internal/infra"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	m, err := infra.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise migrations")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("db", dbErr).Msg("closing migrator")
		}
	}()

	switch os.Args[1] {
	case "up":
		err := m.Up()
		switch {
		case errors.Is(err, migrate.ErrNoChange):
			log.Info().Msg("no pending migrations")
		case err != nil:
			log.Fatal().Err(err).Msg("migrate up")
		default:
			log.Info().Msg("migrations applied")
		}

	case "down":
		if err := m.Steps(-1); err != nil {
			log.Fatal().Err(err).Msg("migrate down")
		}
		log.Info().Msg("last migration rolled back")

	case "goto":
		if len(os.Args) < 3 {
			log.Fatal().Msg("goto requires a version number")
		}
		version, err := strconv.ParseUint(os.Args[2], 10, 64)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid version")
		}
		if err := m.Migrate(uint(version)); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatal().Err(err).Uint64("version", version).Msg("migrate goto")
		}
		log.Info().Uint64("version", version).Msg("database at version")

	case "status":
		version, dirty, err := m.Version()
		switch {
		case errors.Is(err, migrate.ErrNilVersion):
			log.Info().Msg("no migrations applied yet")
		case err != nil:
			log.Fatal().Err(err).Msg("migrate status")
		default:
			log.Info().Uint("version", version).Bool("dirty", dirty).Msg("current version")
		}

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Uso: go run ./cmd/migrate [comando]")
	fmt.Println("Comandos:")
	fmt.Println("  up      aplica las migraciones pendientes")
	fmt.Println("  down    revierte la última migración")
	fmt.Println("  goto N  migra a la versión N")
	fmt.Println("  status  muestra la versión actual")
}

// cmd/seeduser creates or resets the bootstrap administrator.
// Uso: SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"os"
	"time"

	"crmseguros/internal/config"
	"crmseguros/internal/infra"
	"crmseguros/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	username := envOr("SEED_USERNAME", "admin")
	nombre := envOr("SEED_NOMBRE", "Administrador")
	email := envOr("SEED_EMAIL", "admin@crmseguros.local")
	password := os.Getenv("SEED_PASSWORD")
	if len(password) < 8 {
		log.Fatal().Msg("SEED_PASSWORD must have at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	result := db.WithContext(context.Background()).Exec(`
		INSERT INTO usuarios (username, nombre, email, password_hash, rol)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    nombre = EXCLUDED.nombre,
		    email = EXCLUDED.email,
		    rol = EXCLUDED.rol,
		    activo = true
	`, username, nombre, email, string(hash), model.RolAdmin)

	if result.Error != nil {
		log.Fatal().Err(result.Error).Msg("insert admin")
	}
	log.Info().Str("username", username).Msg("admin user created or updated")
}

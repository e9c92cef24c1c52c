package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/eduforge/platform/config"
	"github.com/eduforge/platform/internal/domain/entity"
	"github.com/eduforge/platform/pkg/helpers"
)

// Provisions the distinguished admin account. This is the only path that
// creates role=admin; the registration API refuses it. Safe to re-run.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}
	if len(password) < 8 {
		log.Fatal("ADMIN_PASSWORD must be at least 8 characters")
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := entity.NormalizeEmail(cfg.AdminEmail)
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO accounts (email, password_hash, first_name, role, status, verified)
		VALUES ($1, $2, 'Admin', 'admin', 'active', TRUE)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = now()
		RETURNING id
	`, email, hash).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("admin account ensured: id=%s email=%s\n", id, email)
}

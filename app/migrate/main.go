package main

import (
	"context"
	"database/sql"
	"flag"
	"hortifood/domain"
	"hortifood/internal/repository/postgres/migrations"
	"hortifood/pkg/config"
	"hortifood/pkg/database"
	"hortifood/pkg/logger"
	"hortifood/pkg/utils"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

func main() {
	down := flag.Bool("down", false, "revert the most recent migration instead of applying pending ones")
	seedAdmin := flag.Bool("seed-admin", false, "create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	defer logger.Sync()

	db, err := sql.Open("postgres", database.DSN(cfg))
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to reach database", "error", err)
	}

	if *down {
		version, err := migrations.Down(ctx, db)
		if err != nil {
			logger.Fatal("Failed to revert migration", "error", err)
		}
		if version == "" {
			logger.Info("No migration to revert")
			return
		}
		logger.Info("Migration reverted", "version", version)
		return
	}

	applied, err := migrations.Up(ctx, db)
	if err != nil {
		logger.Fatal("Failed to apply migrations", "error", err)
	}
	logger.Info("Migrations applied", "versions", applied)

	if *seedAdmin {
		if err := createAdmin(ctx, db, os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")); err != nil {
			logger.Fatal("Failed to seed admin", "error", err)
		}
	}
}

// createAdmin inserts the admin user once; reruns leave an existing row alone.
func createAdmin(ctx context.Context, db *sql.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return domain.BadRequestError("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING`,
		uuid.New(), "Administrator", email, string(hash), "00000000000", domain.RoleAdmin,
	)
	if err != nil {
		return err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		logger.Info("Admin already exists", "email", email)
		return nil
	}

	logger.Info("Admin created", "email", email)
	return nil
}

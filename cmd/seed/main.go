package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"trading-signal-subscription/internal/config"
	"trading-signal-subscription/internal/domain"
	"trading-signal-subscription/internal/domain/model"
	"trading-signal-subscription/internal/domain/ports/repository"
	pg "trading-signal-subscription/internal/infra/db/postgres"
)

// Seeds the first admin account. Safe to re-run: does nothing when the
// email is already taken.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Admin", "display name")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	accounts := pg.NewAccountRepo(pool)

	existing, err := accounts.FindByEmail(ctx, repository.NoTX, *email)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Fatalf("lookup admin: %v", err)
	}
	if existing != nil {
		fmt.Printf("account %s already present (role=%s). No changes.\n", existing.Email, existing.Role)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), 12)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	admin, err := model.NewAccount(*email, string(hash), *name, "", time.Now())
	if err != nil {
		log.Fatalf("build account: %v", err)
	}
	admin.Role = model.RoleAdmin

	if err := accounts.Save(ctx, repository.NoTX, admin); err != nil {
		log.Fatalf("save admin: %v", err)
	}
	fmt.Printf("seeded admin: %s (id=%s)\n", admin.Email, admin.ID)
}

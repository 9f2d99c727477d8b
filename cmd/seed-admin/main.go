// seed-admin creates the first owner account, or resets its password and role if it exists.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... \
//	  go run ./cmd/seed-admin -username owner -password 'secret123'
//
// SEED_ADMIN_USERNAME / SEED_ADMIN_PASSWORD / SEED_ADMIN_NAME may be used instead of flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/finops_backend/config"
	"bitbucket.org/mmdatafocus/finops_backend/models"
	"bitbucket.org/mmdatafocus/finops_backend/utils"
	"gorm.io/gorm"
)

func envOr(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	username := flag.String("username", envOr("SEED_ADMIN_USERNAME", "owner"), "owner username")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "owner password")
	name := flag.String("name", envOr("SEED_ADMIN_NAME", "Owner"), "display name")
	migrate := flag.Bool("migrate", false, "run AutoMigrate first")
	flag.Parse()

	if len(*password) < utils.MinPasswordLength {
		fmt.Fprintf(os.Stderr, "password must be at least %d characters (-password or SEED_ADMIN_PASSWORD)\n", utils.MinPasswordLength)
		os.Exit(2)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	if *migrate {
		if err := models.MigrateTable(); err != nil {
			fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	var existing models.User
	err := db.WithContext(ctx).Where("username = ?", *username).Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user, err := models.CreateUser(ctx, &models.NewUser{
			Username: *username,
			Name:     *name,
			Password: *password,
			Role:     models.UserRoleOwner,
			IsActive: utils.NewTrue(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create owner: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created owner: username=%q id=%d\n", user.Username, user.ID)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
		os.Exit(1)
	}

	_, err = models.UpdateUser(ctx, existing.ID, &models.NewUser{
		Username: existing.Username,
		Name:     *name,
		Phone:    existing.Phone,
		Password: *password,
		Role:     models.UserRoleOwner,
		IsActive: utils.NewTrue(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update owner: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated owner: username=%q id=%d\n", existing.Username, existing.ID)
}

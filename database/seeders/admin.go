package seeders

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/app/repositories"
	"github.com/shashiranjanraj/commandes/config"
	"github.com/shashiranjanraj/commandes/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("admin", SeedAdmin)
}

// SeedAdmin creates the first admin account from ADMIN_USERNAME and
// ADMIN_PASSWORD. It does nothing when the password is unset or the
// username already exists.
func SeedAdmin(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	password := cfg.Get("ADMIN_PASSWORD", "")
	if password == "" {
		return nil
	}
	username := cfg.Get("ADMIN_USERNAME", "admin")

	users := repositories.NewUserRepository(db, auth.NewBcrypt(cfg.BcryptCost))
	if _, err := users.FindByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return err
	}

	_, err := users.Create(ctx, repositories.UserInput{
		Username: username,
		Password: password,
		Type:     models.TypeAdmin,
	})
	return err
}

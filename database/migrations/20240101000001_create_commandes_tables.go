package migrations

import (
	"github.com/shashiranjanraj/commandes/app/models"
	"github.com/shashiranjanraj/commandes/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20240101000001_create_commandes_tables", &CreateCommandesTables{})
}

// CreateCommandesTables creates commandes and commande_images. Image rows
// cascade with their order where the dialect supports adding the foreign
// key after the fact; the repository deletes them explicitly either way.
type CreateCommandesTables struct{}

func (m *CreateCommandesTables) Up(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Order{}, &models.OrderImage{}); err != nil {
		return err
	}
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	if !db.Migrator().HasConstraint(&models.Order{}, "Images") {
		return db.Migrator().CreateConstraint(&models.Order{}, "Images")
	}
	return nil
}

func (m *CreateCommandesTables) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(&models.OrderImage{}, &models.Order{})
}

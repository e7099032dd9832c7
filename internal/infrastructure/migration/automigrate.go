package migration

import (
	"github.com/quillstore/quill/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.AccountModel{},
		&models.ProductModel{},
		&models.EntitlementModel{},
	}
}

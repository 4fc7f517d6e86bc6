package database

import (
	"github.com/andriinero/inkspace-backend/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM
// models, parents before the tables that reference them.
func PersistentModels() []any {
	return []any{
		&models.User{},
		&models.Topic{},
		&models.Image{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
		&models.IgnoredUser{},
		&models.IgnoredTopic{},
		&models.IgnoredPost{},
		&models.Bookmark{},
	}
}

// AutoMigrate reconciles the schema of every persistent model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

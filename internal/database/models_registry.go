package database

import "vesti/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Product{},
		&models.TryOnJob{},
		&models.Image{},
		&models.ImageVariant{},
	}
}

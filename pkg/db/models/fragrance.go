package models

import (
	"time"

	"github.com/google/uuid"
)

// Fragrance is a catalog entry listings reference for name/brand metadata.
type Fragrance struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Brand       string    `gorm:"column:brand;not null"`
	Description *string   `gorm:"column:description"`
	ImageKey    string    `gorm:"column:image_key"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

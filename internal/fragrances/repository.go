package fragrances

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
)

// Repository exposes catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a single catalog entry.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Fragrance, error) {
	var fragrance models.Fragrance
	if err := r.db.WithContext(ctx).First(&fragrance, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &fragrance, nil
}

// Create inserts a new catalog entry.
func (r *Repository) Create(ctx context.Context, fragrance *models.Fragrance) (*models.Fragrance, error) {
	if err := r.db.WithContext(ctx).Create(fragrance).Error; err != nil {
		return nil, err
	}
	return fragrance, nil
}

// Search returns catalog entries matching the query against name or brand,
// ordered by brand then name. An empty query lists the whole catalog.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]models.Fragrance, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	qb := r.db.WithContext(ctx).Model(&models.Fragrance{})
	if search := strings.TrimSpace(query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(brand) LIKE ?)", pattern, pattern)
	}

	var rows []models.Fragrance
	err := qb.Order("brand ASC").Order("name ASC").Limit(limit).Find(&rows).Error
	return rows, err
}

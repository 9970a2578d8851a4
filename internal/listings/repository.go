package listings

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	"github.com/mmattyV/scentra-backend/pkg/pagination"
)

// Repository wires together listing persistence.
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

// FindByID loads the listing without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// Create inserts a new listing row.
func (r *Repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// Update persists the full listing row.
func (r *Repository) Update(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Save(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

// UpdateStatusIf flips the listing status with a guard on the previously
// read value. A false return means another writer moved the row first and
// nothing changed. The optional tx scopes the update to a caller-managed
// transaction, mirroring how outbox emits take an explicit tx.
func (r *Repository) UpdateStatusIf(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected, target enums.ListingStatus) (bool, error) {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	result := conn.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(map[string]any{
			"status":     target,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListBySeller returns all of a seller's listings, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.Listing, error) {
	var rows []models.Listing
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListSummaries returns a filtered page of listings joined with the catalog.
func (r *Repository) ListSummaries(ctx context.Context, input ListListingsInput) (*ListingListResult, error) {
	pageSize := pagination.NormalizeLimit(input.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(input.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(input.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Table("listings l").
		Select(strings.Join([]string{
			"l.id",
			"l.seller_id",
			"l.fragrance_id",
			"f.name AS fragrance_name",
			"f.brand",
			"l.bottle_size",
			"l.condition",
			"l.percent_remaining",
			"l.has_original_box",
			"l.asking_price",
			"l.image_key",
			"l.status",
			"l.created_at",
			"l.updated_at",
		}, ", ")).
		Joins("JOIN fragrances f ON f.id = l.fragrance_id")

	filter := input.Filters
	if filter.Status != nil {
		qb = qb.Where("l.status = ?", *filter.Status)
	}
	if filter.SellerID != nil {
		qb = qb.Where("l.seller_id = ?", *filter.SellerID)
	}
	if filter.FragranceID != nil {
		qb = qb.Where("l.fragrance_id = ?", *filter.FragranceID)
	}
	if filter.Condition != nil {
		qb = qb.Where("l.condition = ?", *filter.Condition)
	}
	if filter.PriceMin != nil {
		qb = qb.Where("l.asking_price >= ?", *filter.PriceMin)
	}
	if filter.PriceMax != nil {
		qb = qb.Where("l.asking_price <= ?", *filter.PriceMax)
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(f.name) LIKE ? OR LOWER(f.brand) LIKE ?)", pattern, pattern)
	}

	if cursor != nil {
		qb = qb.Where("(l.created_at < ?) OR (l.created_at = ? AND l.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("l.created_at DESC").Order("l.id DESC").Limit(limitWithBuffer)

	var rows []ListingSummary
	if err := qb.Scan(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &ListingListResult{
		Listings:   rows,
		NextCursor: nextCursor,
	}, nil
}

package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mmattyV/scentra-backend/pkg/db/models"
	"github.com/mmattyV/scentra-backend/pkg/enums"
	"github.com/mmattyV/scentra-backend/pkg/pagination"
)

// Repository wires together order and order item persistence.
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

// CreateOrder inserts the order row together with its items.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes the order and its items. Used only by checkout
// compensation before the order was ever exposed to the buyer.
func (r *Repository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Order{}).Error
	})
}

// FindByID loads the order with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns a filtered page of orders with items preloaded, newest first.
func (r *Repository) List(ctx context.Context, input ListOrdersInput) (*OrderListResult, error) {
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
		Model(&models.Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})

	filter := input.Filters
	if filter.BuyerID != nil {
		qb = qb.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.OrderStatus != nil {
		qb = qb.Where("order_status = ?", *filter.OrderStatus)
	}
	if filter.PaymentStatus != nil {
		qb = qb.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.SellerID != nil {
		qb = qb.Where("EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = orders.id AND oi.seller_id = ?)", *filter.SellerID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	if err := qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &OrderListResult{Orders: rows, NextCursor: nextCursor}, nil
}

// UpdateOrderStatus sets the lifecycle status. The optional tx scopes the
// write to a caller-managed transaction.
func (r *Repository) UpdateOrderStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.OrderStatus) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"order_status": status,
			"updated_at":   time.Now().UTC(),
		}).Error
}

// UpdatePaymentStatus sets the payment flag. Same tx convention as above.
func (r *Repository) UpdatePaymentStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status enums.PaymentStatus) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"payment_status": status,
			"updated_at":     time.Now().UTC(),
		}).Error
}

// ListItemsByListing returns every order item snapshotting the listing,
// across all orders. This is the status sync fan-out query.
func (r *Repository) ListItemsByListing(ctx context.Context, listingID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// UpdateItemStatus mirrors a listing status onto one order item.
func (r *Repository) UpdateItemStatus(ctx context.Context, itemID uuid.UUID, status enums.ListingStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("id = ?", itemID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

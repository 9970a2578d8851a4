package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmattyV/scentra-backend/pkg/enums"
)

// OrderItem captures a purchase-time snapshot of a listing. ListingID is a
// weak reference: the listing row stays owned by the seller, only its status
// is mirrored here by the status sync service.
type OrderItem struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID              `gorm:"column:order_id;type:uuid;not null"`
	ListingID        uuid.UUID              `gorm:"column:listing_id;type:uuid;not null"`
	SellerID         uuid.UUID              `gorm:"column:seller_id;type:uuid;not null"`
	FragranceName    string                 `gorm:"column:fragrance_name;not null"`
	Brand            string                 `gorm:"column:brand;not null"`
	BottleSize       string                 `gorm:"column:bottle_size;not null"`
	Condition        enums.ListingCondition `gorm:"column:condition;type:listing_condition;not null"`
	PercentRemaining *int                   `gorm:"column:percent_remaining"`
	Price            decimal.Decimal        `gorm:"column:price;type:numeric(12,2);not null"`
	ImageURL         string                 `gorm:"column:image_url"`
	Status           enums.ListingStatus    `gorm:"column:status;type:listing_status;not null;default:'unconfirmed'"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

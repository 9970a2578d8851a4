package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmattyV/scentra-backend/pkg/enums"
)

// Listing is a seller's bottle offered for sale. Status drives the
// post-purchase fulfillment pipeline.
type Listing struct {
	ID               uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID         uuid.UUID              `gorm:"column:seller_id;type:uuid;not null"`
	FragranceID      uuid.UUID              `gorm:"column:fragrance_id;type:uuid;not null"`
	BottleSize       string                 `gorm:"column:bottle_size;not null"`
	Condition        enums.ListingCondition `gorm:"column:condition;type:listing_condition;not null"`
	PercentRemaining *int                   `gorm:"column:percent_remaining"`
	HasOriginalBox   bool                   `gorm:"column:has_original_box;not null;default:false"`
	BatchCode        *string                `gorm:"column:batch_code"`
	AskingPrice      decimal.Decimal        `gorm:"column:asking_price;type:numeric(12,2);not null"`
	ImageKey         string                 `gorm:"column:image_key"`
	Status           enums.ListingStatus    `gorm:"column:status;type:listing_status;not null;default:'active'"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

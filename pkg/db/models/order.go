package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmattyV/scentra-backend/pkg/enums"
	"github.com/mmattyV/scentra-backend/pkg/types"
)

// Order aggregates the items a buyer checked out together. Total is fixed
// at creation time and never recomputed.
type Order struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID             uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null"`
	ShippingAddress     types.Address       `gorm:"column:shipping_address;type:jsonb;not null"`
	Subtotal            decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Total               decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentStatus       enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'awaiting_payment'"`
	OrderStatus         enums.OrderStatus   `gorm:"column:order_status;type:order_status;not null;default:'pending'"`
	PaymentMethod       enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	PaymentInstructions string              `gorm:"column:payment_instructions"`
	Notes               *string             `gorm:"column:notes"`
	Items               []OrderItem         `gorm:"foreignKey:OrderID"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

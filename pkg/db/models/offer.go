package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
)

// Offer is one seller shop's RFQ against a bulk-order request. Exactly one
// row exists per (request, shop) pair, created as a pending placeholder at
// fan-out time; submitting a quote fills the terms in place.
type Offer struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID   uuid.UUID `gorm:"column:request_id;type:uuid;not null;index;uniqueIndex:ux_offers_request_shop"`
	ShopID      uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index;uniqueIndex:ux_offers_request_shop"`
	BuyerUserID uuid.UUID `gorm:"column:buyer_user_id;type:uuid;not null"`

	Price        decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null;default:0"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;type:numeric(14,2);not null;default:0"`
	DeliveryDays int             `gorm:"column:delivery_days;not null;default:0"`
	Terms        string          `gorm:"column:terms;type:text;not null;default:''"`
	Warranty     string          `gorm:"column:warranty;type:text;not null;default:''"`
	AvailableQty int             `gorm:"column:available_qty;not null;default:0"`
	Packaging    string          `gorm:"column:packaging;type:text;not null;default:''"`
	ExpiresAt    *time.Time      `gorm:"column:expires_at"`

	Status   enums.OfferStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	QuotedAt *time.Time        `gorm:"column:quoted_at"`

	Request *BulkOrderRequest `gorm:"foreignKey:RequestID"`
	Shop    *Shop             `gorm:"foreignKey:ShopID"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (Offer) TableName() string {
	return "offers"
}

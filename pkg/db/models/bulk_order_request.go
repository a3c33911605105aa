package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	"github.com/tmoreno/bulkbridge-backend/pkg/types"
)

// BulkOrderRequest is a buyer's bulk-purchase intent. AcceptedOfferID is
// non-nil exactly when Status is processing, shipping, or delivered.
type BulkOrderRequest struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerUserID      uuid.UUID       `gorm:"column:buyer_user_id;type:uuid;not null;index"`
	ProductName      string          `gorm:"column:product_name;type:text;not null"`
	Description      string          `gorm:"column:description;type:text;not null"`
	Category         string          `gorm:"column:category;type:text;not null"`
	Quantity         int             `gorm:"column:quantity;not null"`
	Budget           decimal.Decimal `gorm:"column:budget;type:numeric(14,2);not null"`
	Deadline         time.Time       `gorm:"column:deadline;type:timestamptz;not null"`
	ShippingAddress  types.Address   `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	Packaging        *string         `gorm:"column:packaging"`
	SupplierLocation *string         `gorm:"column:supplier_location"`
	ImageURL         *string         `gorm:"column:image_url"`

	Status          enums.RequestStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	AcceptedOfferID *uuid.UUID          `gorm:"column:accepted_offer_id;type:uuid"`

	PaymentID     *string              `gorm:"column:payment_id"`
	PaymentStatus *enums.PaymentStatus `gorm:"column:payment_status;type:text"`
	PaymentMethod *enums.PaymentMethod `gorm:"column:payment_method;type:text"`
	PaidAt        *time.Time           `gorm:"column:paid_at"`

	DeliveredAt *time.Time `gorm:"column:delivered_at"`

	Offers []Offer `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (BulkOrderRequest) TableName() string {
	return "bulk_order_requests"
}

package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
)

// RequestCreatedEvent signals a buyer opened a bulk-order request and the
// sellers it was fanned out to.
type RequestCreatedEvent struct {
	RequestID       uuid.UUID   `json:"request_id"`
	BuyerUserID     uuid.UUID   `json:"buyer_user_id"`
	ProductCategory string      `json:"product_category"`
	Quantity        int         `json:"quantity"`
	InvitedShopIDs  []uuid.UUID `json:"invited_shop_ids"`
}

// OfferSubmittedEvent is emitted when a seller quotes an invited offer. It
// carries the quote terms so the buyer notification can be rendered without a
// lookup back into the negotiation tables.
type OfferSubmittedEvent struct {
	OfferID      uuid.UUID       `json:"offer_id"`
	RequestID    uuid.UUID       `json:"request_id"`
	ShopID       uuid.UUID       `json:"shop_id"`
	BuyerUserID  uuid.UUID       `json:"buyer_user_id"`
	ProductName  string          `json:"product_name"`
	Price        decimal.Decimal `json:"price"`
	DeliveryDays int             `json:"delivery_days"`
	Terms        string          `json:"terms"`
}

// OfferAcceptedEvent carries the winning offer, the order terms the winner
// must fulfill, and the siblings that were declined in the same transaction.
type OfferAcceptedEvent struct {
	OfferID         uuid.UUID       `json:"offer_id"`
	RequestID       uuid.UUID       `json:"request_id"`
	ShopID          uuid.UUID       `json:"shop_id"`
	BuyerUserID     uuid.UUID       `json:"buyer_user_id"`
	ProductName     string          `json:"product_name"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	Deadline        time.Time       `json:"deadline"`
	DeclinedShopIDs []uuid.UUID     `json:"declined_shop_ids"`
}

// RequestAdvancedEvent reports a fulfillment status transition.
type RequestAdvancedEvent struct {
	RequestID   uuid.UUID           `json:"request_id"`
	BuyerUserID uuid.UUID           `json:"buyer_user_id"`
	ShopID      *uuid.UUID          `json:"shop_id,omitempty"`
	Status      enums.RequestStatus `json:"status"`
	AdvancedAt  time.Time           `json:"advanced_at"`
}

package rfq

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
)

// QuoteInput carries the seller's quoted terms for a pending offer.
type QuoteInput struct {
	OfferID     uuid.UUID
	ActorUserID uuid.UUID
	ActorShopID uuid.UUID

	Price        decimal.Decimal
	PricePerUnit decimal.Decimal
	DeliveryDays int
	Terms        string
	Warranty     string
	AvailableQty int
	Packaging    string
	ExpiresAt    *time.Time
}

// DeleteOfferInput identifies the offer a seller withdraws.
type DeleteOfferInput struct {
	OfferID     uuid.UUID
	ActorUserID uuid.UUID
	ActorShopID uuid.UUID
}

// AcceptInput carries the buyer's acceptance of one offer plus the opaque
// payment confirmation from the gateway.
type AcceptInput struct {
	OfferID             uuid.UUID
	ActorUserID         uuid.UUID
	PaymentConfirmation string
}

// AcceptResult reports the committed acceptance.
type AcceptResult struct {
	Request *models.BulkOrderRequest `json:"request"`
	Offer   *models.Offer            `json:"offer"`
}

// PaymentRecord captures the verified gateway outcome persisted on the
// request when an offer is accepted.
type PaymentRecord struct {
	PaymentID string
	Status    enums.PaymentStatus
	Method    *enums.PaymentMethod
	PaidAt    time.Time
}

// QuotedOffer pairs an offer with its seller's catalog rating for buyer list
// views.
type QuotedOffer struct {
	Offer        models.Offer    `json:"offer"`
	SellerRating decimal.Decimal `json:"seller_rating"`
}

// OfferDetail is the full view of one offer: terms, parent request, and the
// seller's profile plus rating.
type OfferDetail struct {
	Offer        models.Offer             `json:"offer"`
	Request      *models.BulkOrderRequest `json:"request,omitempty"`
	Shop         *models.Shop             `json:"shop,omitempty"`
	SellerRating decimal.Decimal          `json:"seller_rating"`
}

// OfferList wraps paginated offers plus the next page cursor.
type OfferList struct {
	Offers     []models.Offer `json:"offers"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

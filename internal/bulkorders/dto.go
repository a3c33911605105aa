package bulkorders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	"github.com/tmoreno/bulkbridge-backend/pkg/types"
)

// CreateRequestInput carries the buyer's bulk-purchase spec.
type CreateRequestInput struct {
	BuyerUserID      uuid.UUID
	ProductName      string
	Description      string
	Category         string
	Quantity         int
	Budget           decimal.Decimal
	Deadline         time.Time
	ShippingAddress  types.Address
	Packaging        *string
	SupplierLocation *string
	ImageURL         *string
}

// CreateRequestResult is the request plus the offers already quoted at
// creation time, which is always empty until sellers respond.
type CreateRequestResult struct {
	Request      *models.BulkOrderRequest
	QuotedOffers []models.Offer
	InvitedShops int
}

// AdvanceStatusInput identifies the request transition and the actor
// performing it.
type AdvanceStatusInput struct {
	RequestID   uuid.UUID
	NewStatus   string
	ActorUserID uuid.UUID
	ActorShopID *uuid.UUID
	ActorRole   enums.ActorRole
}

// DeleteRequestInput identifies the request being withdrawn by its buyer.
type DeleteRequestInput struct {
	RequestID   uuid.UUID
	ActorUserID uuid.UUID
}

// RequestList wraps the paginated requests plus the next page cursor.
type RequestList struct {
	Requests   []models.BulkOrderRequest `json:"requests"`
	NextCursor string                    `json:"next_cursor,omitempty"`
}

package rfq

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/pagination"
)

// Repository defines persistence operations for offers. All state-changing
// writes are conditional updates keyed on the offer's current status so
// concurrent callers serialize through the store.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error)
	FindQuotedOffersByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Offer, error)
	ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error)
	ListAcceptedByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error)
	// SubmitQuote fills quote terms on a pending placeholder; zero rows means
	// the offer was already quoted or does not exist.
	SubmitQuote(ctx context.Context, offerID uuid.UUID, updates map[string]any) (int64, error)
	// UpdateQuote edits a submitted quote; accepted/declined offers never match.
	UpdateQuote(ctx context.Context, offerID uuid.UUID, updates map[string]any) (int64, error)
	// DeleteUnaccepted removes the offer unless it has been accepted.
	DeleteUnaccepted(ctx context.Context, offerID uuid.UUID) (int64, error)
	// AcceptSubmitted flips a submitted offer to accepted; zero rows means it
	// was never quoted or a concurrent acceptance already resolved it.
	AcceptSubmitted(ctx context.Context, offerID uuid.UUID) (int64, error)
	// DeclineSiblings resolves every other offer on the request and returns
	// the shop ids that were declined.
	DeclineSiblings(ctx context.Context, requestID, winnerID uuid.UUID) ([]uuid.UUID, error)
	// MarkRequestProcessing commits the acceptance on the parent request; it
	// only matches while the request is pending with no accepted offer.
	MarkRequestProcessing(ctx context.Context, requestID, offerID uuid.UUID, payment PaymentRecord) (int64, error)
}

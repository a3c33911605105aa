package bulkorders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	"github.com/tmoreno/bulkbridge-backend/pkg/pagination"
)

// Repository defines persistence operations for bulk-order requests and the
// fan-out offer placeholders created with them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateRequest(ctx context.Context, request *models.BulkOrderRequest) (*models.BulkOrderRequest, error)
	CreateOffers(ctx context.Context, offers []models.Offer) error
	FindRequest(ctx context.Context, requestID uuid.UUID) (*models.BulkOrderRequest, error)
	ListByBuyer(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error)
	ListAcceptedByBuyer(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error)
	// AdvanceStatus performs the conditional transition and reports rows
	// affected; zero means the predecessor guard did not hold.
	AdvanceStatus(ctx context.Context, requestID uuid.UUID, from, to enums.RequestStatus, deliveredAt *time.Time) (int64, error)
	// DeleteRequestIfUnaccepted deletes the request row only while no offer
	// has been accepted; offers cascade via DeleteOffersByRequest.
	DeleteRequestIfUnaccepted(ctx context.Context, requestID uuid.UUID) (int64, error)
	DeleteOffersByRequest(ctx context.Context, requestID uuid.UUID) error
}

package bulkorders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmoreno/bulkbridge-backend/pkg/db"
	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
	"github.com/tmoreno/bulkbridge-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bulk-order repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateRequest(ctx context.Context, request *models.BulkOrderRequest) (*models.BulkOrderRequest, error) {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) CreateOffers(ctx context.Context, offers []models.Offer) error {
	if len(offers) == 0 {
		return nil
	}
	for i := range offers {
		if offers[i].ID == uuid.Nil {
			offers[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&offers).Error; err != nil {
		if db.IsUniqueViolation(err, "ux_offers_request_shop") {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "shop already invited to this request")
		}
		return err
	}
	return nil
}

func (r *repository) FindRequest(ctx context.Context, requestID uuid.UUID) (*models.BulkOrderRequest, error) {
	var request models.BulkOrderRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", requestID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error) {
	return r.listBuyerRequests(ctx, buyerUserID, params, nil)
}

func (r *repository) ListAcceptedByBuyer(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error) {
	statuses := []enums.RequestStatus{
		enums.RequestStatusProcessing,
		enums.RequestStatusShipping,
		enums.RequestStatusDelivered,
	}
	return r.listBuyerRequests(ctx, buyerUserID, params, statuses)
}

func (r *repository) listBuyerRequests(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params, statuses []enums.RequestStatus) (*RequestList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.BulkOrderRequest{}).
		Where("buyer_user_id = ?", buyerUserID)

	if len(statuses) > 0 {
		query = query.
			Where("status IN ?", statuses).
			Preload("Offers", "status = ?", enums.OfferStatusAccepted).
			Preload("Offers.Shop")
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.BulkOrderRequest
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &RequestList{Requests: rows}
	if len(rows) > limit {
		list.Requests = rows[:limit]
		last := list.Requests[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) AdvanceStatus(ctx context.Context, requestID uuid.UUID, from, to enums.RequestStatus, deliveredAt *time.Time) (int64, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": time.Now(),
	}
	if deliveredAt != nil {
		updates["delivered_at"] = *deliveredAt
	}
	res := r.db.WithContext(ctx).
		Model(&models.BulkOrderRequest{}).
		Where("id = ? AND status = ? AND accepted_offer_id IS NOT NULL", requestID, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteRequestIfUnaccepted(ctx context.Context, requestID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND accepted_offer_id IS NULL", requestID).
		Delete(&models.BulkOrderRequest{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteOffersByRequest(ctx context.Context, requestID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&models.Offer{}).Error
}

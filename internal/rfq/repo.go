package rfq

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	"github.com/tmoreno/bulkbridge-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an offer repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("Request").
		Preload("Shop").
		Where("id = ?", offerID).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) FindQuotedOffersByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).
		Preload("Shop").
		Where("request_id = ? AND status <> ?", requestID, enums.OfferStatusPending).
		Order("created_at ASC").
		Find(&offers).Error
	if err != nil {
		return nil, err
	}
	return offers, nil
}

func (r *repository) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error) {
	return r.listShopOffers(ctx, shopID, params, nil)
}

func (r *repository) ListAcceptedByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error) {
	status := enums.OfferStatusAccepted
	return r.listShopOffers(ctx, shopID, params, &status)
}

func (r *repository) listShopOffers(ctx context.Context, shopID uuid.UUID, params pagination.Params, status *enums.OfferStatus) (*OfferList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Preload("Request").
		Where("shop_id = ?", shopID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Offer
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &OfferList{Offers: rows}
	if len(rows) > limit {
		list.Offers = rows[:limit]
		last := list.Offers[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) SubmitQuote(ctx context.Context, offerID uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND status = ?", offerID, enums.OfferStatusPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateQuote(ctx context.Context, offerID uuid.UUID, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND status = ?", offerID, enums.OfferStatusSubmitted).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteUnaccepted(ctx context.Context, offerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status <> ?", offerID, enums.OfferStatusAccepted).
		Delete(&models.Offer{})
	return res.RowsAffected, res.Error
}

func (r *repository) AcceptSubmitted(ctx context.Context, offerID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id = ? AND status = ?", offerID, enums.OfferStatusSubmitted).
		Updates(map[string]any{
			"status":     enums.OfferStatusAccepted,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *repository) DeclineSiblings(ctx context.Context, requestID, winnerID uuid.UUID) ([]uuid.UUID, error) {
	var shopIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("request_id = ? AND id <> ? AND status IN ?", requestID, winnerID,
			[]enums.OfferStatus{enums.OfferStatusPending, enums.OfferStatusSubmitted}).
		Pluck("shop_id", &shopIDs).Error
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("request_id = ? AND id <> ? AND status IN ?", requestID, winnerID,
			[]enums.OfferStatus{enums.OfferStatusPending, enums.OfferStatusSubmitted}).
		Updates(map[string]any{
			"status":     enums.OfferStatusDeclined,
			"updated_at": time.Now(),
		}).Error
	if err != nil {
		return nil, err
	}
	return shopIDs, nil
}

func (r *repository) MarkRequestProcessing(ctx context.Context, requestID, offerID uuid.UUID, payment PaymentRecord) (int64, error) {
	updates := map[string]any{
		"status":            enums.RequestStatusProcessing,
		"accepted_offer_id": offerID,
		"payment_id":        payment.PaymentID,
		"payment_status":    payment.Status,
		"paid_at":           payment.PaidAt,
		"updated_at":        time.Now(),
	}
	if payment.Method != nil {
		updates["payment_method"] = *payment.Method
	}
	res := r.db.WithContext(ctx).
		Model(&models.BulkOrderRequest{}).
		Where("id = ? AND status = ? AND accepted_offer_id IS NULL", requestID, enums.RequestStatusPending).
		Updates(updates)
	return res.RowsAffected, res.Error
}

package rfq

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tmoreno/bulkbridge-backend/internal/sellers"
	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox/payloads"
	"github.com/tmoreno/bulkbridge-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service is the offer ledger: it records each seller's quote exactly once,
// guards edits after resolution, and serves offer views for both sides.
type Service interface {
	SubmitOffer(ctx context.Context, input QuoteInput) (*models.Offer, error)
	UpdateOffer(ctx context.Context, input QuoteInput) (*models.Offer, error)
	DeleteOffer(ctx context.Context, input DeleteOfferInput) error
	ListSellerOffers(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error)
	ListAcceptedOffers(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error)
	ListOffersForRequest(ctx context.Context, requestID, actorUserID uuid.UUID) ([]QuotedOffer, error)
	GetOfferDetail(ctx context.Context, offerID, actorUserID uuid.UUID, actorShopID *uuid.UUID) (*OfferDetail, error)
}

type service struct {
	repo    Repository
	sellers sellers.Service
	tx      txRunner
	outbox  outboxPublisher
}

// NewService builds the offer ledger with the required dependencies.
func NewService(repo Repository, sellerSvc sellers.Service, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	if sellerSvc == nil {
		return nil, fmt.Errorf("sellers service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, sellers: sellerSvc, tx: tx, outbox: outbox}, nil
}

func (s *service) SubmitOffer(ctx context.Context, input QuoteInput) (*models.Offer, error) {
	if err := validateQuoteInput(&input); err != nil {
		return nil, err
	}

	var submitted *models.Offer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		offer, err := repo.FindOffer(ctx, input.OfferID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
		}
		if offer.ShopID != input.ActorShopID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer does not belong to shop")
		}

		now := time.Now().UTC()
		updates := quoteUpdates(input, now)
		updates["status"] = enums.OfferStatusSubmitted
		updates["quoted_at"] = now

		rows, err := repo.SubmitQuote(ctx, input.OfferID, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit quote")
		}
		if rows == 0 {
			// The placeholder was already filled; the loser of the race gets
			// the double-submission conflict.
			return pkgerrors.New(pkgerrors.CodeConflict, "offer already submitted")
		}

		submitted, err = repo.FindOffer(ctx, input.OfferID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload offer")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOfferSubmitted,
			AggregateType: enums.AggregateOffer,
			AggregateID:   submitted.ID,
			Version:       1,
			Actor:         buildActor(input.ActorUserID, input.ActorShopID),
			Data: payloads.OfferSubmittedEvent{
				OfferID:      submitted.ID,
				RequestID:    submitted.RequestID,
				ShopID:       submitted.ShopID,
				BuyerUserID:  submitted.BuyerUserID,
				ProductName:  requestProductName(submitted),
				Price:        submitted.Price,
				DeliveryDays: submitted.DeliveryDays,
				Terms:        submitted.Terms,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return submitted, nil
}

func (s *service) UpdateOffer(ctx context.Context, input QuoteInput) (*models.Offer, error) {
	if err := validateQuoteInput(&input); err != nil {
		return nil, err
	}

	var updated *models.Offer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		offer, err := repo.FindOffer(ctx, input.OfferID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
		}
		if offer.ShopID != input.ActorShopID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer does not belong to shop")
		}
		if offer.Status == enums.OfferStatusAccepted {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot modify an accepted offer")
		}

		rows, err := repo.UpdateQuote(ctx, input.OfferID, quoteUpdates(input, time.Now().UTC()))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update quote")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "offer cannot be edited in its current state")
		}

		updated, err = repo.FindOffer(ctx, input.OfferID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload offer")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) DeleteOffer(ctx context.Context, input DeleteOfferInput) error {
	if input.OfferID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	if input.ActorShopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		offer, err := repo.FindOffer(ctx, input.OfferID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
		}
		if offer.ShopID != input.ActorShopID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "offer does not belong to shop")
		}

		rows, err := repo.DeleteUnaccepted(ctx, input.OfferID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete offer")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot modify an accepted offer")
		}
		return nil
	})
}

func (s *service) ListSellerOffers(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing")
	}
	list, err := s.repo.ListByShop(ctx, shopID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shop offers")
	}
	return list, nil
}

func (s *service) ListAcceptedOffers(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error) {
	if shopID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing")
	}
	list, err := s.repo.ListAcceptedByShop(ctx, shopID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list accepted offers")
	}
	return list, nil
}

func (s *service) ListOffersForRequest(ctx context.Context, requestID, actorUserID uuid.UUID) ([]QuotedOffer, error) {
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	offers, err := s.repo.FindQuotedOffersByRequest(ctx, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list quoted offers")
	}

	quoted := make([]QuotedOffer, 0, len(offers))
	for _, offer := range offers {
		if offer.BuyerUserID != actorUserID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "request does not belong to caller")
		}
		rating, err := s.sellers.Rating(ctx, offer.ShopID)
		if err != nil {
			rating = decimal.Zero
		}
		quoted = append(quoted, QuotedOffer{Offer: offer, SellerRating: rating})
	}
	return quoted, nil
}

func (s *service) GetOfferDetail(ctx context.Context, offerID, actorUserID uuid.UUID, actorShopID *uuid.UUID) (*OfferDetail, error) {
	if offerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}

	offer, err := s.repo.FindOffer(ctx, offerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}

	isBuyer := offer.BuyerUserID == actorUserID
	isSeller := actorShopID != nil && offer.ShopID == *actorShopID
	if !isBuyer && !isSeller {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer does not belong to caller")
	}

	rating, err := s.sellers.Rating(ctx, offer.ShopID)
	if err != nil {
		rating = decimal.Zero
	}

	detail := &OfferDetail{
		Offer:        *offer,
		Request:      offer.Request,
		Shop:         offer.Shop,
		SellerRating: rating,
	}
	return detail, nil
}

func quoteUpdates(input QuoteInput, now time.Time) map[string]any {
	return map[string]any{
		"price":          input.Price,
		"price_per_unit": input.PricePerUnit,
		"delivery_days":  input.DeliveryDays,
		"terms":          strings.TrimSpace(input.Terms),
		"warranty":       strings.TrimSpace(input.Warranty),
		"available_qty":  input.AvailableQty,
		"packaging":      strings.TrimSpace(input.Packaging),
		"expires_at":     input.ExpiresAt,
		"updated_at":     now,
	}
}

func validateQuoteInput(input *QuoteInput) error {
	if input.OfferID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorShopID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing")
	}
	if !input.Price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.DeliveryDays <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery days must be positive")
	}
	if input.AvailableQty < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "available quantity cannot be negative")
	}
	return nil
}

func buildActor(userID, shopID uuid.UUID) *outbox.ActorRef {
	shop := shopID
	return &outbox.ActorRef{
		UserID: userID,
		ShopID: &shop,
		Role:   enums.ActorRoleSeller.String(),
	}
}

func requestProductName(offer *models.Offer) string {
	if offer == nil || offer.Request == nil {
		return ""
	}
	return offer.Request.ProductName
}

package bulkorders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
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

type sellerMatcher interface {
	MatchCategory(ctx context.Context, category string) ([]sellers.Match, error)
}

// Service owns the buyer side of the negotiation: request creation with
// seller fan-out, buyer list views, fulfillment transitions, and withdrawal.
type Service interface {
	Create(ctx context.Context, input CreateRequestInput) (*CreateRequestResult, error)
	ListBuyerRequests(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error)
	ListProcessingRequests(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error)
	AdvanceStatus(ctx context.Context, input AdvanceStatusInput) (*models.BulkOrderRequest, error)
	Delete(ctx context.Context, input DeleteRequestInput) error
}

type service struct {
	repo    Repository
	matcher sellerMatcher
	tx      txRunner
	outbox  outboxPublisher
}

// NewService builds the bulk-order service with the required dependencies.
func NewService(repo Repository, matcher sellerMatcher, tx txRunner, outbox outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bulkorders repository required")
	}
	if matcher == nil {
		return nil, fmt.Errorf("seller matcher required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, matcher: matcher, tx: tx, outbox: outbox}, nil
}

func (s *service) Create(ctx context.Context, input CreateRequestInput) (*CreateRequestResult, error) {
	if err := validateCreateInput(&input); err != nil {
		return nil, err
	}

	matches, err := s.matcher.MatchCategory(ctx, input.Category)
	if err != nil {
		return nil, err
	}

	request := &models.BulkOrderRequest{
		BuyerUserID:      input.BuyerUserID,
		ProductName:      strings.TrimSpace(input.ProductName),
		Description:      strings.TrimSpace(input.Description),
		Category:         strings.TrimSpace(input.Category),
		Quantity:         input.Quantity,
		Budget:           input.Budget,
		Deadline:         input.Deadline,
		ShippingAddress:  input.ShippingAddress,
		Packaging:        input.Packaging,
		SupplierLocation: input.SupplierLocation,
		ImageURL:         input.ImageURL,
		Status:           enums.RequestStatusPending,
	}
	request.ShippingAddress.Normalize()

	invited := make([]uuid.UUID, 0, len(matches))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateRequest(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create bulk order request")
		}

		offers := make([]models.Offer, 0, len(matches))
		for _, match := range matches {
			offers = append(offers, models.Offer{
				RequestID:   request.ID,
				ShopID:      match.ShopID,
				BuyerUserID: input.BuyerUserID,
				Status:      enums.OfferStatusPending,
			})
			invited = append(invited, match.ShopID)
		}
		if err := repo.CreateOffers(ctx, offers); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fan out offer placeholders")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventRequestCreated,
			AggregateType: enums.AggregateBulkOrderRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.BuyerUserID, Role: enums.ActorRoleBuyer.String()},
			Data: payloads.RequestCreatedEvent{
				RequestID:       request.ID,
				BuyerUserID:     input.BuyerUserID,
				ProductCategory: request.Category,
				Quantity:        request.Quantity,
				InvitedShopIDs:  invited,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	// No offer carries a quote yet, so the quoted set is empty at creation.
	return &CreateRequestResult{
		Request:      request,
		QuotedOffers: []models.Offer{},
		InvitedShops: len(invited),
	}, nil
}

func (s *service) ListBuyerRequests(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error) {
	if buyerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByBuyer(ctx, buyerUserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer requests")
	}
	return list, nil
}

func (s *service) ListProcessingRequests(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error) {
	if buyerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListAcceptedByBuyer(ctx, buyerUserID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list processing requests")
	}
	return list, nil
}

func (s *service) AdvanceStatus(ctx context.Context, input AdvanceStatusInput) (*models.BulkOrderRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	target, err := enums.ParseRequestStatus(input.NewStatus)
	if err != nil || target == enums.RequestStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be processing, shipping, or delivered")
	}
	if target == enums.RequestStatusProcessing {
		// Processing is entered through offer acceptance only.
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "processing is set by accepting an offer")
	}
	predecessor, ok := target.FulfillmentPredecessor()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be processing, shipping, or delivered")
	}

	var updated *models.BulkOrderRequest
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindRequest(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if err := s.authorizeFulfillmentActor(ctx, tx, request, input); err != nil {
			return err
		}

		var deliveredAt *time.Time
		if target == enums.RequestStatusDelivered {
			now := time.Now().UTC()
			deliveredAt = &now
		}

		rows, err := repo.AdvanceStatus(ctx, input.RequestID, predecessor, target, deliveredAt)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance request status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("request cannot move to %s from %s", target, request.Status))
		}

		updated, err = repo.FindRequest(ctx, input.RequestID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload request")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventRequestAdvanced,
			AggregateType: enums.AggregateBulkOrderRequest,
			AggregateID:   request.ID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID: input.ActorUserID,
				ShopID: input.ActorShopID,
				Role:   input.ActorRole.String(),
			},
			Data: payloads.RequestAdvancedEvent{
				RequestID:   request.ID,
				BuyerUserID: request.BuyerUserID,
				ShopID:      input.ActorShopID,
				Status:      target,
				AdvancedAt:  time.Now().UTC(),
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// authorizeFulfillmentActor permits the buyer who owns the request, or the
// seller whose offer won it, to move fulfillment forward.
func (s *service) authorizeFulfillmentActor(ctx context.Context, tx *gorm.DB, request *models.BulkOrderRequest, input AdvanceStatusInput) error {
	if request.BuyerUserID == input.ActorUserID {
		return nil
	}
	if input.ActorShopID == nil || request.AcceptedOfferID == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "request does not belong to caller")
	}

	var winner models.Offer
	err := tx.WithContext(ctx).
		Where("id = ?", *request.AcceptedOfferID).
		First(&winner).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load accepted offer")
	}
	if winner.ShopID != *input.ActorShopID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "request does not belong to caller")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, input DeleteRequestInput) error {
	if input.RequestID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if input.ActorUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		request, err := repo.FindRequest(ctx, input.RequestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if request.BuyerUserID != input.ActorUserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "request does not belong to caller")
		}

		rows, err := repo.DeleteRequestIfUnaccepted(ctx, input.RequestID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete request")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "an offer has already been accepted")
		}
		if err := repo.DeleteOffersByRequest(ctx, input.RequestID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete request offers")
		}
		return nil
	})
}

func validateCreateInput(input *CreateRequestInput) error {
	if input.BuyerUserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.ProductName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(input.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	if input.Quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Budget.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "budget must be positive")
	}
	if input.Deadline.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery deadline is required")
	}
	if strings.TrimSpace(input.ShippingAddress.Line1) == "" || strings.TrimSpace(input.ShippingAddress.City) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	return nil
}

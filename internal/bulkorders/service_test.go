package bulkorders

import (
	"context"
	"testing"
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
	"github.com/tmoreno/bulkbridge-backend/pkg/types"
)

type stubRequestsRepo struct {
	request       *models.BulkOrderRequest
	createdOffers []models.Offer
	advanceRows   int64
	deleteRows    int64
	offersDeleted bool
}

func (s *stubRequestsRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubRequestsRepo) CreateRequest(ctx context.Context, request *models.BulkOrderRequest) (*models.BulkOrderRequest, error) {
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	s.request = request
	return request, nil
}

func (s *stubRequestsRepo) CreateOffers(ctx context.Context, offers []models.Offer) error {
	s.createdOffers = offers
	return nil
}

func (s *stubRequestsRepo) FindRequest(ctx context.Context, requestID uuid.UUID) (*models.BulkOrderRequest, error) {
	if s.request == nil || s.request.ID != requestID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.request, nil
}

func (s *stubRequestsRepo) ListByBuyer(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error) {
	return &RequestList{}, nil
}

func (s *stubRequestsRepo) ListAcceptedByBuyer(ctx context.Context, buyerUserID uuid.UUID, params pagination.Params) (*RequestList, error) {
	return &RequestList{}, nil
}

func (s *stubRequestsRepo) AdvanceStatus(ctx context.Context, requestID uuid.UUID, from, to enums.RequestStatus, deliveredAt *time.Time) (int64, error) {
	if s.advanceRows > 0 {
		s.request.Status = to
		if deliveredAt != nil {
			s.request.DeliveredAt = deliveredAt
		}
	}
	return s.advanceRows, nil
}

func (s *stubRequestsRepo) DeleteRequestIfUnaccepted(ctx context.Context, requestID uuid.UUID) (int64, error) {
	return s.deleteRows, nil
}

func (s *stubRequestsRepo) DeleteOffersByRequest(ctx context.Context, requestID uuid.UUID) error {
	s.offersDeleted = true
	return nil
}

type stubMatcher struct {
	matches []sellers.Match
	err     error
}

func (s *stubMatcher) MatchCategory(ctx context.Context, category string) ([]sellers.Match, error) {
	return s.matches, s.err
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func validCreateInput(buyerID uuid.UUID) CreateRequestInput {
	return CreateRequestInput{
		BuyerUserID: buyerID,
		ProductName: "Steel bolts M8",
		Description: "Zinc plated, DIN 933",
		Category:    "fasteners",
		Quantity:    5000,
		Budget:      decimal.NewFromInt(2500),
		Deadline:    time.Now().Add(30 * 24 * time.Hour),
		ShippingAddress: types.Address{
			Line1:      "400 Dock Rd",
			City:       "Tulsa",
			State:      "OK",
			PostalCode: "74103",
		},
	}
}

func TestCreateRequestFansOutOffers(t *testing.T) {
	buyerID := uuid.New()
	shopA := uuid.New()
	shopB := uuid.New()
	repo := &stubRequestsRepo{}
	matcher := &stubMatcher{matches: []sellers.Match{
		{ShopID: shopA, OwnerUserID: uuid.New(), ShopName: "Shop A"},
		{ShopID: shopB, OwnerUserID: uuid.New(), ShopName: "Shop B"},
	}}
	publisher := &stubOutboxPublisher{}
	svc, err := NewService(repo, matcher, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	result, err := svc.Create(context.Background(), validCreateInput(buyerID))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Request.Status != enums.RequestStatusPending {
		t.Fatalf("expected pending status got %s", result.Request.Status)
	}
	if result.InvitedShops != 2 {
		t.Fatalf("expected 2 invited shops got %d", result.InvitedShops)
	}
	if len(result.QuotedOffers) != 0 {
		t.Fatalf("expected no quoted offers at creation, got %d", len(result.QuotedOffers))
	}
	if len(repo.createdOffers) != 2 {
		t.Fatalf("expected 2 offer placeholders got %d", len(repo.createdOffers))
	}
	for _, offer := range repo.createdOffers {
		if offer.Status != enums.OfferStatusPending {
			t.Fatalf("expected pending placeholder got %s", offer.Status)
		}
		if offer.RequestID != result.Request.ID {
			t.Fatalf("offer not linked to request")
		}
	}
	if len(publisher.events) != 1 {
		t.Fatalf("expected 1 outbox event got %d", len(publisher.events))
	}
	event := publisher.events[0]
	if event.EventType != enums.EventRequestCreated {
		t.Fatalf("unexpected event type %s", event.EventType)
	}
	payload, ok := event.Data.(payloads.RequestCreatedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if len(payload.InvitedShopIDs) != 2 {
		t.Fatalf("expected invited shops in payload got %d", len(payload.InvitedShopIDs))
	}
}

func TestCreateRequestNoMatchingSellers(t *testing.T) {
	repo := &stubRequestsRepo{}
	svc, _ := NewService(repo, &stubMatcher{}, stubTxRunner{}, &stubOutboxPublisher{})

	result, err := svc.Create(context.Background(), validCreateInput(uuid.New()))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.InvitedShops != 0 {
		t.Fatalf("expected no invited shops got %d", result.InvitedShops)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	svc, _ := NewService(&stubRequestsRepo{}, &stubMatcher{}, stubTxRunner{}, &stubOutboxPublisher{})

	input := validCreateInput(uuid.New())
	input.Quantity = 0
	_, err := svc.Create(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestAdvanceStatusToShipping(t *testing.T) {
	buyerID := uuid.New()
	acceptedID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.BulkOrderRequest{
			ID:              uuid.New(),
			BuyerUserID:     buyerID,
			Status:          enums.RequestStatusProcessing,
			AcceptedOfferID: &acceptedID,
		},
		advanceRows: 1,
	}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, &stubMatcher{}, stubTxRunner{}, publisher)

	updated, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		RequestID:   repo.request.ID,
		NewStatus:   "shipping",
		ActorUserID: buyerID,
		ActorRole:   enums.ActorRoleBuyer,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Status != enums.RequestStatusShipping {
		t.Fatalf("expected shipping got %s", updated.Status)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventRequestAdvanced {
		t.Fatal("expected request advanced event")
	}
}

func TestAdvanceStatusRejectsProcessing(t *testing.T) {
	svc, _ := NewService(&stubRequestsRepo{}, &stubMatcher{}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		RequestID:   uuid.New(),
		NewStatus:   "processing",
		ActorUserID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestAdvanceStatusSkippedPredecessor(t *testing.T) {
	buyerID := uuid.New()
	acceptedID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.BulkOrderRequest{
			ID:              uuid.New(),
			BuyerUserID:     buyerID,
			Status:          enums.RequestStatusProcessing,
			AcceptedOfferID: &acceptedID,
		},
		advanceRows: 0,
	}
	svc, _ := NewService(repo, &stubMatcher{}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		RequestID:   repo.request.ID,
		NewStatus:   "delivered",
		ActorUserID: buyerID,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestAdvanceStatusForbiddenForStranger(t *testing.T) {
	repo := &stubRequestsRepo{
		request: &models.BulkOrderRequest{
			ID:          uuid.New(),
			BuyerUserID: uuid.New(),
			Status:      enums.RequestStatusProcessing,
		},
		advanceRows: 1,
	}
	svc, _ := NewService(repo, &stubMatcher{}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		RequestID:   repo.request.ID,
		NewStatus:   "shipping",
		ActorUserID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden got %v", err)
	}
}

func TestDeleteRequestOwnerOnly(t *testing.T) {
	repo := &stubRequestsRepo{
		request: &models.BulkOrderRequest{
			ID:          uuid.New(),
			BuyerUserID: uuid.New(),
			Status:      enums.RequestStatusPending,
		},
	}
	svc, _ := NewService(repo, &stubMatcher{}, stubTxRunner{}, &stubOutboxPublisher{})

	err := svc.Delete(context.Background(), DeleteRequestInput{
		RequestID:   repo.request.ID,
		ActorUserID: uuid.New(),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden got %v", err)
	}
}

func TestDeleteRequestBlockedAfterAcceptance(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.BulkOrderRequest{
			ID:          uuid.New(),
			BuyerUserID: buyerID,
			Status:      enums.RequestStatusProcessing,
		},
		deleteRows: 0,
	}
	svc, _ := NewService(repo, &stubMatcher{}, stubTxRunner{}, &stubOutboxPublisher{})

	err := svc.Delete(context.Background(), DeleteRequestInput{
		RequestID:   repo.request.ID,
		ActorUserID: buyerID,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
	if repo.offersDeleted {
		t.Fatal("offers must survive a blocked delete")
	}
}

func TestDeleteRequestRemovesOffers(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubRequestsRepo{
		request: &models.BulkOrderRequest{
			ID:          uuid.New(),
			BuyerUserID: buyerID,
			Status:      enums.RequestStatusPending,
		},
		deleteRows: 1,
	}
	svc, _ := NewService(repo, &stubMatcher{}, stubTxRunner{}, &stubOutboxPublisher{})

	if err := svc.Delete(context.Background(), DeleteRequestInput{
		RequestID:   repo.request.ID,
		ActorUserID: buyerID,
	}); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if !repo.offersDeleted {
		t.Fatal("expected offers to be deleted with the request")
	}
}

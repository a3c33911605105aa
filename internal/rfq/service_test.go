package rfq

import (
	"context"
	"testing"

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
	"github.com/tmoreno/bulkbridge-backend/pkg/payment"
)

type stubOffersRepo struct {
	offer        *models.Offer
	quoted       []models.Offer
	submitRows   int64
	updateRows   int64
	deleteRows   int64
	acceptRows   int64
	requestRows  int64
	declined     []uuid.UUID
	lastUpdates  map[string]any
	lastPayment  PaymentRecord
	acceptCalled bool
	markCalled   bool
}

func (s *stubOffersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOffersRepo) FindOffer(ctx context.Context, offerID uuid.UUID) (*models.Offer, error) {
	if s.offer == nil || s.offer.ID != offerID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.offer, nil
}

func (s *stubOffersRepo) FindQuotedOffersByRequest(ctx context.Context, requestID uuid.UUID) ([]models.Offer, error) {
	return s.quoted, nil
}

func (s *stubOffersRepo) ListByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error) {
	return &OfferList{}, nil
}

func (s *stubOffersRepo) ListAcceptedByShop(ctx context.Context, shopID uuid.UUID, params pagination.Params) (*OfferList, error) {
	return &OfferList{}, nil
}

func (s *stubOffersRepo) SubmitQuote(ctx context.Context, offerID uuid.UUID, updates map[string]any) (int64, error) {
	s.lastUpdates = updates
	if s.submitRows > 0 {
		s.offer.Status = enums.OfferStatusSubmitted
		if price, ok := updates["price"].(decimal.Decimal); ok {
			s.offer.Price = price
		}
		if days, ok := updates["delivery_days"].(int); ok {
			s.offer.DeliveryDays = days
		}
		if terms, ok := updates["terms"].(string); ok {
			s.offer.Terms = terms
		}
	}
	return s.submitRows, nil
}

func (s *stubOffersRepo) UpdateQuote(ctx context.Context, offerID uuid.UUID, updates map[string]any) (int64, error) {
	s.lastUpdates = updates
	return s.updateRows, nil
}

func (s *stubOffersRepo) DeleteUnaccepted(ctx context.Context, offerID uuid.UUID) (int64, error) {
	return s.deleteRows, nil
}

func (s *stubOffersRepo) AcceptSubmitted(ctx context.Context, offerID uuid.UUID) (int64, error) {
	s.acceptCalled = true
	if s.acceptRows > 0 {
		s.offer.Status = enums.OfferStatusAccepted
	}
	return s.acceptRows, nil
}

func (s *stubOffersRepo) DeclineSiblings(ctx context.Context, requestID, winnerID uuid.UUID) ([]uuid.UUID, error) {
	return s.declined, nil
}

func (s *stubOffersRepo) MarkRequestProcessing(ctx context.Context, requestID, offerID uuid.UUID, payment PaymentRecord) (int64, error) {
	s.markCalled = true
	s.lastPayment = payment
	if s.requestRows > 0 && s.offer.Request != nil {
		s.offer.Request.Status = enums.RequestStatusProcessing
		s.offer.Request.AcceptedOfferID = &offerID
	}
	return s.requestRows, nil
}

type stubSellers struct {
	rating decimal.Decimal
}

func (s *stubSellers) MatchCategory(ctx context.Context, category string) ([]sellers.Match, error) {
	return nil, nil
}

func (s *stubSellers) Rating(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error) {
	return s.rating, nil
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

func pendingOffer(shopID uuid.UUID) *models.Offer {
	requestID := uuid.New()
	return &models.Offer{
		ID:          uuid.New(),
		RequestID:   requestID,
		ShopID:      shopID,
		BuyerUserID: uuid.New(),
		Status:      enums.OfferStatusPending,
		Request: &models.BulkOrderRequest{
			ID:          requestID,
			ProductName: "Bulk Pallets",
		},
	}
}

func validQuote(offer *models.Offer, actorUserID uuid.UUID) QuoteInput {
	return QuoteInput{
		OfferID:      offer.ID,
		ActorUserID:  actorUserID,
		ActorShopID:  offer.ShopID,
		Price:        decimal.NewFromInt(1200),
		PricePerUnit: decimal.RequireFromString("0.24"),
		DeliveryDays: 14,
		Terms:        "Net 30",
		AvailableQty: 5000,
	}
}

func TestSubmitOffer(t *testing.T) {
	shopID := uuid.New()
	repo := &stubOffersRepo{offer: pendingOffer(shopID), submitRows: 1}
	publisher := &stubOutboxPublisher{}
	svc, err := NewService(repo, &stubSellers{}, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	submitted, err := svc.SubmitOffer(context.Background(), validQuote(repo.offer, uuid.New()))
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if submitted.Status != enums.OfferStatusSubmitted {
		t.Fatalf("expected submitted got %s", submitted.Status)
	}
	if repo.lastUpdates["status"] != enums.OfferStatusSubmitted {
		t.Fatal("expected status flip in the quote update")
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventOfferSubmitted {
		t.Fatal("expected offer submitted event")
	}
	payload, ok := publisher.events[0].Data.(payloads.OfferSubmittedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", publisher.events[0].Data)
	}
	if payload.OfferID != submitted.ID {
		t.Fatal("payload offer mismatch")
	}
	if payload.ProductName != "Bulk Pallets" {
		t.Fatalf("payload product = %q, want request product name", payload.ProductName)
	}
	if payload.DeliveryDays != 14 || payload.Terms != "Net 30" {
		t.Fatalf("payload missing quote terms: %+v", payload)
	}
}

func TestSubmitOfferDoubleSubmission(t *testing.T) {
	shopID := uuid.New()
	repo := &stubOffersRepo{offer: pendingOffer(shopID), submitRows: 0}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, &stubSellers{}, stubTxRunner{}, publisher)

	_, err := svc.SubmitOffer(context.Background(), validQuote(repo.offer, uuid.New()))
	if err == nil {
		t.Fatal("expected conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatal("losing submission must not emit an event")
	}
}

func TestSubmitOfferWrongShop(t *testing.T) {
	repo := &stubOffersRepo{offer: pendingOffer(uuid.New()), submitRows: 1}
	svc, _ := NewService(repo, &stubSellers{}, stubTxRunner{}, &stubOutboxPublisher{})

	input := validQuote(repo.offer, uuid.New())
	input.ActorShopID = uuid.New()
	_, err := svc.SubmitOffer(context.Background(), input)
	if err == nil {
		t.Fatal("expected forbidden")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden got %v", err)
	}
}

func TestSubmitOfferInvalidPrice(t *testing.T) {
	repo := &stubOffersRepo{offer: pendingOffer(uuid.New())}
	svc, _ := NewService(repo, &stubSellers{}, stubTxRunner{}, &stubOutboxPublisher{})

	input := validQuote(repo.offer, uuid.New())
	input.Price = decimal.Zero
	_, err := svc.SubmitOffer(context.Background(), input)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation got %v", err)
	}
}

func TestUpdateOfferAcceptedIsImmutable(t *testing.T) {
	shopID := uuid.New()
	offer := pendingOffer(shopID)
	offer.Status = enums.OfferStatusAccepted
	repo := &stubOffersRepo{offer: offer, updateRows: 1}
	svc, _ := NewService(repo, &stubSellers{}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.UpdateOffer(context.Background(), validQuote(offer, uuid.New()))
	if err == nil {
		t.Fatal("expected conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestDeleteOfferAcceptedIsImmutable(t *testing.T) {
	shopID := uuid.New()
	offer := pendingOffer(shopID)
	offer.Status = enums.OfferStatusAccepted
	repo := &stubOffersRepo{offer: offer, deleteRows: 0}
	svc, _ := NewService(repo, &stubSellers{}, stubTxRunner{}, &stubOutboxPublisher{})

	err := svc.DeleteOffer(context.Background(), DeleteOfferInput{
		OfferID:     offer.ID,
		ActorUserID: uuid.New(),
		ActorShopID: shopID,
	})
	if err == nil {
		t.Fatal("expected conflict")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestListOffersForRequestForbidden(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubOffersRepo{
		quoted: []models.Offer{{
			ID:          uuid.New(),
			BuyerUserID: buyerID,
			ShopID:      uuid.New(),
			Status:      enums.OfferStatusSubmitted,
		}},
	}
	svc, _ := NewService(repo, &stubSellers{}, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := svc.ListOffersForRequest(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatal("expected forbidden")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden got %v", err)
	}
}

func TestListOffersForRequestIncludesRatings(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubOffersRepo{
		quoted: []models.Offer{{
			ID:          uuid.New(),
			BuyerUserID: buyerID,
			ShopID:      uuid.New(),
			Status:      enums.OfferStatusSubmitted,
		}},
	}
	rating := decimal.RequireFromString("4.5")
	svc, _ := NewService(repo, &stubSellers{rating: rating}, stubTxRunner{}, &stubOutboxPublisher{})

	quoted, err := svc.ListOffersForRequest(context.Background(), uuid.New(), buyerID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(quoted) != 1 {
		t.Fatalf("expected 1 quoted offer got %d", len(quoted))
	}
	if !quoted[0].SellerRating.Equal(rating) {
		t.Fatalf("expected rating %s got %s", rating, quoted[0].SellerRating)
	}
}

// stubVerifier is shared with the acceptance tests.
type stubVerifier struct {
	verification *payment.Verification
	err          error
	calls        int
}

func (s *stubVerifier) Verify(ctx context.Context, confirmationToken string) (*payment.Verification, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.verification, nil
}

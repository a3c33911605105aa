package rfq

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox/payloads"
	"github.com/tmoreno/bulkbridge-backend/pkg/payment"
)

func submittedOffer(buyerID uuid.UUID) *models.Offer {
	requestID := uuid.New()
	return &models.Offer{
		ID:          uuid.New(),
		RequestID:   requestID,
		ShopID:      uuid.New(),
		BuyerUserID: buyerID,
		Price:       decimal.NewFromInt(900),
		Status:      enums.OfferStatusSubmitted,
		Request: &models.BulkOrderRequest{
			ID:          requestID,
			BuyerUserID: buyerID,
			ProductName: "Bulk Pallets",
			Quantity:    250,
			Deadline:    time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC),
			Status:      enums.RequestStatusPending,
		},
	}
}

func confirmedVerifier() *stubVerifier {
	return &stubVerifier{
		verification: &payment.Verification{
			Status: enums.PaymentStatusConfirmed,
			Method: enums.PaymentMethodCard,
			Ref:    "pay_123",
		},
	}
}

func TestAcceptOffer(t *testing.T) {
	buyerID := uuid.New()
	declinedShop := uuid.New()
	repo := &stubOffersRepo{
		offer:       submittedOffer(buyerID),
		acceptRows:  1,
		requestRows: 1,
		declined:    []uuid.UUID{declinedShop},
	}
	verifier := confirmedVerifier()
	publisher := &stubOutboxPublisher{}
	coord, err := NewCoordinator(repo, verifier, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("coordinator constructor failed: %v", err)
	}

	result, err := coord.AcceptOffer(context.Background(), AcceptInput{
		OfferID:             repo.offer.ID,
		ActorUserID:         buyerID,
		PaymentConfirmation: "tok_abc",
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if result.Offer.Status != enums.OfferStatusAccepted {
		t.Fatalf("expected accepted got %s", result.Offer.Status)
	}
	if result.Request.Status != enums.RequestStatusProcessing {
		t.Fatalf("expected processing got %s", result.Request.Status)
	}
	if repo.lastPayment.PaymentID != "pay_123" {
		t.Fatalf("expected payment record got %+v", repo.lastPayment)
	}
	if repo.lastPayment.Method == nil || *repo.lastPayment.Method != enums.PaymentMethodCard {
		t.Fatal("expected card method on payment record")
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventOfferAccepted {
		t.Fatal("expected offer accepted event")
	}
	payload, ok := publisher.events[0].Data.(payloads.OfferAcceptedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", publisher.events[0].Data)
	}
	if len(payload.DeclinedShopIDs) != 1 || payload.DeclinedShopIDs[0] != declinedShop {
		t.Fatal("expected declined siblings in payload")
	}
	if payload.ProductName != "Bulk Pallets" || payload.Quantity != 250 {
		t.Fatalf("payload missing order terms: %+v", payload)
	}
	if !payload.Deadline.Equal(repo.offer.Request.Deadline) {
		t.Fatalf("payload deadline = %s, want request deadline", payload.Deadline)
	}
}

func TestAcceptOfferPaymentFailureLeavesStateUntouched(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubOffersRepo{offer: submittedOffer(buyerID), acceptRows: 1, requestRows: 1}
	verifier := &stubVerifier{err: pkgerrors.New(pkgerrors.CodeDependency, "gateway unavailable")}
	publisher := &stubOutboxPublisher{}
	coord, _ := NewCoordinator(repo, verifier, stubTxRunner{}, publisher)

	_, err := coord.AcceptOffer(context.Background(), AcceptInput{
		OfferID:             repo.offer.ID,
		ActorUserID:         buyerID,
		PaymentConfirmation: "tok_abc",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error got %v", err)
	}
	if repo.acceptCalled || repo.markCalled {
		t.Fatal("payment failure must not touch the store")
	}
	if len(publisher.events) != 0 {
		t.Fatal("payment failure must not emit events")
	}
}

func TestAcceptOfferPaymentNotConfirmed(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubOffersRepo{offer: submittedOffer(buyerID), acceptRows: 1, requestRows: 1}
	verifier := &stubVerifier{
		verification: &payment.Verification{Status: enums.PaymentStatusPending, Ref: "pay_456"},
	}
	coord, _ := NewCoordinator(repo, verifier, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := coord.AcceptOffer(context.Background(), AcceptInput{
		OfferID:             repo.offer.ID,
		ActorUserID:         buyerID,
		PaymentConfirmation: "tok_abc",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
	if repo.acceptCalled {
		t.Fatal("unconfirmed payment must not accept the offer")
	}
}

func TestAcceptOfferAlreadyAccepted(t *testing.T) {
	buyerID := uuid.New()
	offer := submittedOffer(buyerID)
	offer.Status = enums.OfferStatusAccepted
	repo := &stubOffersRepo{offer: offer}
	verifier := confirmedVerifier()
	coord, _ := NewCoordinator(repo, verifier, stubTxRunner{}, &stubOutboxPublisher{})

	_, err := coord.AcceptOffer(context.Background(), AcceptInput{
		OfferID:             offer.ID,
		ActorUserID:         buyerID,
		PaymentConfirmation: "tok_abc",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
	if verifier.calls != 0 {
		t.Fatal("resolved offers must not reach the payment gateway")
	}
}

func TestAcceptOfferUnquoted(t *testing.T) {
	buyerID := uuid.New()
	offer := submittedOffer(buyerID)
	offer.Status = enums.OfferStatusPending
	repo := &stubOffersRepo{offer: offer}
	coord, _ := NewCoordinator(repo, confirmedVerifier(), stubTxRunner{}, &stubOutboxPublisher{})

	_, err := coord.AcceptOffer(context.Background(), AcceptInput{
		OfferID:             offer.ID,
		ActorUserID:         buyerID,
		PaymentConfirmation: "tok_abc",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestAcceptOfferLosesRace(t *testing.T) {
	buyerID := uuid.New()
	repo := &stubOffersRepo{offer: submittedOffer(buyerID), acceptRows: 0}
	publisher := &stubOutboxPublisher{}
	coord, _ := NewCoordinator(repo, confirmedVerifier(), stubTxRunner{}, publisher)

	_, err := coord.AcceptOffer(context.Background(), AcceptInput{
		OfferID:             repo.offer.ID,
		ActorUserID:         buyerID,
		PaymentConfirmation: "tok_abc",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
	if len(publisher.events) != 0 {
		t.Fatal("losing acceptance must not emit events")
	}
}

func TestAcceptOfferForbiddenForStranger(t *testing.T) {
	repo := &stubOffersRepo{offer: submittedOffer(uuid.New())}
	coord, _ := NewCoordinator(repo, confirmedVerifier(), stubTxRunner{}, &stubOutboxPublisher{})

	_, err := coord.AcceptOffer(context.Background(), AcceptInput{
		OfferID:             repo.offer.ID,
		ActorUserID:         uuid.New(),
		PaymentConfirmation: "tok_abc",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden got %v", err)
	}
}

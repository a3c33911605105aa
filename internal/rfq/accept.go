package rfq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox"
	"github.com/tmoreno/bulkbridge-backend/pkg/outbox/payloads"
	"github.com/tmoreno/bulkbridge-backend/pkg/payment"
)

type paymentVerifier interface {
	Verify(ctx context.Context, confirmationToken string) (*payment.Verification, error)
}

// Coordinator commits exactly one winning offer per request: payment is
// verified first, then the offer flip, sibling declines, and the parent
// request transition land in a single transaction.
type Coordinator interface {
	AcceptOffer(ctx context.Context, input AcceptInput) (*AcceptResult, error)
}

type coordinator struct {
	repo    Repository
	payment paymentVerifier
	tx      txRunner
	outbox  outboxPublisher
}

// NewCoordinator builds the acceptance coordinator.
func NewCoordinator(repo Repository, verifier paymentVerifier, tx txRunner, outbox outboxPublisher) (Coordinator, error) {
	if repo == nil {
		return nil, fmt.Errorf("rfq repository required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("payment verifier required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &coordinator{repo: repo, payment: verifier, tx: tx, outbox: outbox}, nil
}

func (c *coordinator) AcceptOffer(ctx context.Context, input AcceptInput) (*AcceptResult, error) {
	if input.OfferID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer id required")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	offer, err := c.repo.FindOffer(ctx, input.OfferID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	if offer.BuyerUserID != input.ActorUserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer does not belong to caller")
	}
	switch offer.Status {
	case enums.OfferStatusAccepted:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "offer already accepted")
	case enums.OfferStatusDeclined:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "offer was declined")
	case enums.OfferStatusPending:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "offer has not been quoted")
	}

	// Payment runs before the transaction; its failure leaves every record
	// untouched.
	verification, err := c.payment.Verify(ctx, input.PaymentConfirmation)
	if err != nil {
		return nil, err
	}
	if !verification.Confirmed() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment not confirmed")
	}

	record := PaymentRecord{
		PaymentID: verification.Ref,
		Status:    verification.Status,
		PaidAt:    time.Now().UTC(),
	}
	if verification.Method.IsValid() {
		method := verification.Method
		record.Method = &method
	}

	result := &AcceptResult{}
	err = c.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := c.repo.WithTx(tx)

		rows, err := repo.AcceptSubmitted(ctx, input.OfferID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept offer")
		}
		if rows == 0 {
			// A concurrent acceptance resolved the offer between the read and
			// this conditional write.
			return pkgerrors.New(pkgerrors.CodeConflict, "offer already resolved")
		}

		rows, err = repo.MarkRequestProcessing(ctx, offer.RequestID, input.OfferID, record)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark request processing")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "request already has an accepted offer")
		}

		declinedShops, err := repo.DeclineSiblings(ctx, offer.RequestID, input.OfferID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decline sibling offers")
		}

		accepted, err := repo.FindOffer(ctx, input.OfferID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload offer")
		}
		result.Offer = accepted
		result.Request = accepted.Request
		if result.Request == nil {
			var request models.BulkOrderRequest
			if err := tx.WithContext(ctx).Where("id = ?", offer.RequestID).First(&request).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload request")
			}
			result.Request = &request
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOfferAccepted,
			AggregateType: enums.AggregateOffer,
			AggregateID:   accepted.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: enums.ActorRoleBuyer.String()},
			Data: payloads.OfferAcceptedEvent{
				OfferID:         accepted.ID,
				RequestID:       accepted.RequestID,
				ShopID:          accepted.ShopID,
				BuyerUserID:     accepted.BuyerUserID,
				ProductName:     result.Request.ProductName,
				Price:           accepted.Price,
				Quantity:        result.Request.Quantity,
				Deadline:        result.Request.Deadline,
				DeclinedShopIDs: declinedShops,
			},
		}
		return c.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

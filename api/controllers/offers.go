package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmoreno/bulkbridge-backend/api/responses"
	"github.com/tmoreno/bulkbridge-backend/api/validators"
	"github.com/tmoreno/bulkbridge-backend/internal/rfq"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
	"github.com/tmoreno/bulkbridge-backend/pkg/logger"
)

type quotePayload struct {
	Price        decimal.Decimal `json:"price" validate:"required"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	DeliveryDays int             `json:"delivery_days" validate:"required,min=1"`
	Terms        string          `json:"terms" validate:"max=2000"`
	Warranty     string          `json:"warranty" validate:"max=500"`
	AvailableQty int             `json:"available_qty" validate:"required,min=1"`
	Packaging    string          `json:"packaging" validate:"max=200"`
	ExpiresAt    *time.Time      `json:"expires_at,omitempty"`
}

func quoteInput(r *http.Request, payload quotePayload) (rfq.QuoteInput, error) {
	actorID, err := actorUserID(r)
	if err != nil {
		return rfq.QuoteInput{}, err
	}
	shopID, err := requireShopID(r)
	if err != nil {
		return rfq.QuoteInput{}, err
	}
	offerID, err := parseIDParam(r, "offerId", "offer id")
	if err != nil {
		return rfq.QuoteInput{}, err
	}

	return rfq.QuoteInput{
		OfferID:      offerID,
		ActorUserID:  actorID,
		ActorShopID:  shopID,
		Price:        payload.Price,
		PricePerUnit: payload.PricePerUnit,
		DeliveryDays: payload.DeliveryDays,
		Terms:        payload.Terms,
		Warranty:     payload.Warranty,
		AvailableQty: payload.AvailableQty,
		Packaging:    payload.Packaging,
		ExpiresAt:    payload.ExpiresAt,
	}, nil
}

// SubmitOffer fills a pending offer placeholder with the seller's quote.
func SubmitOffer(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		var payload quotePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := quoteInput(r, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.SubmitOffer(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// UpdateOffer revises a submitted quote before the buyer decides.
func UpdateOffer(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		var payload quotePayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := quoteInput(r, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.UpdateOffer(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// DeleteOffer withdraws a seller's quote while it is still undecided.
func DeleteOffer(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		actorID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopID, err := requireShopID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offerID, err := parseIDParam(r, "offerId", "offer id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := rfq.DeleteOfferInput{
			OfferID:     offerID,
			ActorUserID: actorID,
			ActorShopID: shopID,
		}

		if err := svc.DeleteOffer(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ListSellerOffers pages through every offer addressed to the active shop.
func ListSellerOffers(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		shopID, err := requireShopID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListSellerOffers(r.Context(), shopID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListAcceptedOffers pages through the active shop's won offers.
func ListAcceptedOffers(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		shopID, err := requireShopID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListAcceptedOffers(r.Context(), shopID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetOfferDetail returns one offer with its parent request and seller profile.
func GetOfferDetail(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offers service unavailable"))
			return
		}

		actorID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		shopID, err := actorShopID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offerID, err := parseIDParam(r, "offerId", "offer id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetOfferDetail(r.Context(), offerID, actorID, shopID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

type acceptOfferPayload struct {
	PaymentConfirmation string `json:"payment_confirmation" validate:"required"`
}

// AcceptOffer commits the buyer's acceptance of one quoted offer.
func AcceptOffer(svc rfq.Coordinator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "acceptance coordinator unavailable"))
			return
		}

		actorID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offerID, err := parseIDParam(r, "offerId", "offer id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload acceptOfferPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := rfq.AcceptInput{
			OfferID:             offerID,
			ActorUserID:         actorID,
			PaymentConfirmation: strings.TrimSpace(payload.PaymentConfirmation),
		}

		result, err := svc.AcceptOffer(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

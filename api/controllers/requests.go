package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tmoreno/bulkbridge-backend/api/responses"
	"github.com/tmoreno/bulkbridge-backend/api/validators"
	"github.com/tmoreno/bulkbridge-backend/internal/bulkorders"
	"github.com/tmoreno/bulkbridge-backend/internal/rfq"
	"github.com/tmoreno/bulkbridge-backend/pkg/db/models"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
	"github.com/tmoreno/bulkbridge-backend/pkg/logger"
	"github.com/tmoreno/bulkbridge-backend/pkg/pagination"
	"github.com/tmoreno/bulkbridge-backend/pkg/types"
)

type createRequestPayload struct {
	ProductName      string          `json:"product_name" validate:"required,min=2,max=200"`
	Description      string          `json:"description" validate:"max=2000"`
	Category         string          `json:"category" validate:"required,min=2,max=100"`
	Quantity         int             `json:"quantity" validate:"required,min=1"`
	Budget           decimal.Decimal `json:"budget" validate:"required"`
	Deadline         time.Time       `json:"deadline" validate:"required"`
	ShippingAddress  types.Address   `json:"shipping_address" validate:"required"`
	Packaging        *string         `json:"packaging,omitempty"`
	SupplierLocation *string         `json:"supplier_location,omitempty"`
	ImageURL         *string         `json:"image_url,omitempty"`
}

type createRequestResponse struct {
	Request      *models.BulkOrderRequest `json:"request"`
	QuotedOffers []models.Offer           `json:"quoted_offers"`
	InvitedShops int                      `json:"invited_shops"`
}

// CreateRequest opens a bulk-order request and fans pending offers out to
// every matching seller.
func CreateRequest(svc bulkorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createRequestPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := bulkorders.CreateRequestInput{
			BuyerUserID:      buyerID,
			ProductName:      payload.ProductName,
			Description:      payload.Description,
			Category:         payload.Category,
			Quantity:         payload.Quantity,
			Budget:           payload.Budget,
			Deadline:         payload.Deadline,
			ShippingAddress:  payload.ShippingAddress,
			Packaging:        payload.Packaging,
			SupplierLocation: payload.SupplierLocation,
			ImageURL:         payload.ImageURL,
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createRequestResponse{
			Request:      result.Request,
			QuotedOffers: result.QuotedOffers,
			InvitedShops: result.InvitedShops,
		})
	}
}

// ListBuyerRequests pages through the caller's own requests, newest first.
func ListBuyerRequests(svc bulkorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListBuyerRequests(r.Context(), buyerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListProcessingRequests pages through the caller's requests with an accepted
// offer that has not yet been delivered.
func ListProcessingRequests(svc bulkorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		buyerID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.ListProcessingRequests(r.Context(), buyerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type advanceStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// AdvanceRequestStatus moves a request one step along the fulfillment chain.
func AdvanceRequestStatus(svc bulkorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
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

		requestID, err := parseIDParam(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload advanceStatusPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := bulkorders.AdvanceStatusInput{
			RequestID:   requestID,
			NewStatus:   payload.Status,
			ActorUserID: actorID,
			ActorShopID: shopID,
			ActorRole:   actorRole(r),
		}

		request, err := svc.AdvanceStatus(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// DeleteRequest withdraws an unaccepted request and its offers.
func DeleteRequest(svc bulkorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		actorID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := parseIDParam(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := bulkorders.DeleteRequestInput{
			RequestID:   requestID,
			ActorUserID: actorID,
		}

		if err := svc.Delete(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ListRequestOffers returns the quoted offers on one of the buyer's requests,
// each annotated with the seller's catalog rating.
func ListRequestOffers(svc rfq.Service, logg *logger.Logger) http.HandlerFunc {
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

		requestID, err := parseIDParam(r, "requestId", "request id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offers, err := svc.ListOffersForRequest(r.Context(), requestID, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"offers": offers})
	}
}

func listParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

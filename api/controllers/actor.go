package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tmoreno/bulkbridge-backend/api/middleware"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
)

func actorUserID(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return parsed, nil
}

// actorShopID returns nil when the token carries no shop claim.
func actorShopID(r *http.Request) (*uuid.UUID, error) {
	shopID := middleware.ShopIDFromContext(r.Context())
	if shopID == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shop id")
	}
	return &parsed, nil
}

func requireShopID(r *http.Request) (uuid.UUID, error) {
	shopID := middleware.ShopIDFromContext(r.Context())
	if shopID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "shop context missing")
	}
	parsed, err := uuid.Parse(shopID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shop id")
	}
	return parsed, nil
}

func actorRole(r *http.Request) enums.ActorRole {
	return enums.ActorRole(middleware.RoleFromContext(r.Context()))
}

func parseIDParam(r *http.Request, name, label string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, label+" is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return parsed, nil
}

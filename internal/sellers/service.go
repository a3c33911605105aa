package sellers

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
)

// Service resolves candidate sellers for a product category and computes
// seller ratings from catalog data.
type Service interface {
	MatchCategory(ctx context.Context, category string) ([]Match, error)
	Rating(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// NewService builds a seller matcher over the catalog repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sellers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) MatchCategory(ctx context.Context, category string) ([]Match, error) {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	matches, err := s.repo.FindShopsByCategory(ctx, trimmed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "match sellers by category")
	}
	return matches, nil
}

func (s *service) Rating(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error) {
	if shopID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "shop id required")
	}
	rating, err := s.repo.AverageRating(ctx, shopID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute seller rating")
	}
	return rating, nil
}

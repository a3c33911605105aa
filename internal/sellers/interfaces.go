package sellers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Match is one shop that carries at least one product in the requested
// category.
type Match struct {
	ShopID      uuid.UUID
	OwnerUserID uuid.UUID
	ShopName    string
}

// Repository defines the catalog lookups the matcher needs. The catalog is an
// external collaborator; these reads never mutate it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindShopsByCategory(ctx context.Context, category string) ([]Match, error)
	AverageRating(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error)
}

package sellers

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a sellers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindShopsByCategory(ctx context.Context, category string) ([]Match, error) {
	var matches []Match
	err := r.db.WithContext(ctx).
		Table("products").
		Select("DISTINCT shops.id AS shop_id, shops.owner_user_id, shops.name AS shop_name").
		Joins("JOIN shops ON shops.id = products.shop_id").
		Where("products.category = ?", category).
		Scan(&matches).Error
	if err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *repository) AverageRating(ctx context.Context, shopID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Rating decimal.Decimal
	}
	err := r.db.WithContext(ctx).
		Table("products").
		Select("COALESCE(AVG(rating), 0) AS rating").
		Where("shop_id = ?", shopID).
		Scan(&out).Error
	if err != nil {
		return decimal.Zero, err
	}
	return out.Rating, nil
}

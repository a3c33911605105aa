package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog lookup record the seller matcher reads. The catalog
// itself is an external collaborator; only the columns needed for
// category-to-shop matching and seller ratings are modeled here.
type Product struct {
	ID       uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID   uuid.UUID       `gorm:"column:shop_id;type:uuid;not null;index"`
	Name     string          `gorm:"column:name;type:text;not null"`
	Category string          `gorm:"column:category;type:text;not null;index"`
	Price    decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null;default:0"`
	Rating   decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (Product) TableName() string {
	return "products"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Shop is a seller storefront. Ownership and authentication live with the
// external identity provider; this table only carries the profile fields the
// negotiation flow reads.
type Shop struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID `gorm:"column:owner_user_id;type:uuid;not null;index"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Description *string   `gorm:"column:description;type:text"`
	Email       *string   `gorm:"column:email;type:text"`
	Phone       *string   `gorm:"column:phone;type:text"`
	City        *string   `gorm:"column:city;type:text"`
	LogoURL     *string   `gorm:"column:logo_url;type:text"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table name.
func (Shop) TableName() string {
	return "shops"
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// Store is a physical location of a brand.
type Store struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BrandID      uuid.UUID `gorm:"column:brand_id;type:uuid;not null;uniqueIndex:stores_brand_address_key,priority:1"`
	Nickname     string    `gorm:"column:nickname;not null;default:''"`
	AddressLine1 string    `gorm:"column:address_line1;not null;uniqueIndex:stores_brand_address_key,priority:2"`
	AddressLine2 string    `gorm:"column:address_line2;not null;default:''"`
	City         string    `gorm:"column:city;not null"`
	State        string    `gorm:"column:state;not null;default:''"`
	PostalCode   string    `gorm:"column:postal_code;not null;default:'';uniqueIndex:stores_brand_address_key,priority:3"`
	Country      string    `gorm:"column:country;not null;default:'Lithuania'"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Brand *Brand `gorm:"foreignKey:BrandID;references:ID;constraint:OnDelete:CASCADE"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// Report flags exactly one product or discount for moderator review.
type Report struct {
	ID                  uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID           *uuid.UUID                 `gorm:"column:product_id;type:uuid;index"`
	DiscountID          *uuid.UUID                 `gorm:"column:discount_id;type:uuid;index"`
	ProductReason       *enums.ProductReportReason `gorm:"column:product_reason;type:text"`
	DiscountImageBase64 *string                    `gorm:"column:discount_image_base64"`
	Description         string                     `gorm:"column:description;not null;default:''"`
	Status              enums.ReportStatus         `gorm:"column:status;type:text;not null;default:REPORTED"`
	ReportedBy          *uuid.UUID                 `gorm:"column:reported_by;type:uuid;index"`
	DecidedBy           *uuid.UUID                 `gorm:"column:decided_by;type:uuid"`
	CreatedAt           time.Time                  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time                  `gorm:"column:updated_at;autoUpdateTime"`
}

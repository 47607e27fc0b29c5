package reports

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// CreateInput carries a new report. Exactly one of ProductID and DiscountID
// must be set.
type CreateInput struct {
	ProductID           *uuid.UUID
	DiscountID          *uuid.UUID
	ProductReason       *string
	DiscountImageBase64 *string
	Description         string
}

// ReportDTO is the API view of a report.
type ReportDTO struct {
	ID                  uuid.UUID                  `json:"id"`
	TargetType          enums.ReportTargetType     `json:"target_type"`
	ProductID           *uuid.UUID                 `json:"product_id,omitempty"`
	DiscountID          *uuid.UUID                 `json:"discount_id,omitempty"`
	ProductReason       *enums.ProductReportReason `json:"product_reason,omitempty"`
	DiscountImageBase64 *string                    `json:"discount_image_base64,omitempty"`
	Description         string                     `json:"description"`
	Status              enums.ReportStatus         `json:"status"`
	ReportedBy          *uuid.UUID                 `json:"reported_by,omitempty"`
	DecidedBy           *uuid.UUID                 `json:"decided_by,omitempty"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

// ReportList is a cursor page of reports.
type ReportList struct {
	Items      []ReportDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// FromModel maps a report row.
func FromModel(r *models.Report) ReportDTO {
	target := enums.ReportTargetProduct
	if r.DiscountID != nil {
		target = enums.ReportTargetDiscount
	}
	return ReportDTO{
		ID:                  r.ID,
		TargetType:          target,
		ProductID:           r.ProductID,
		DiscountID:          r.DiscountID,
		ProductReason:       r.ProductReason,
		DiscountImageBase64: r.DiscountImageBase64,
		Description:         r.Description,
		Status:              r.Status,
		ReportedBy:          r.ReportedBy,
		DecidedBy:           r.DecidedBy,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// DiscountSubmittedEvent announces a new discount waiting for moderation.
type DiscountSubmittedEvent struct {
	DiscountID   uuid.UUID                `json:"discount_id"`
	Name         string                   `json:"name"`
	DiscountType enums.DiscountType       `json:"discount_type"`
	Value        decimal.Decimal          `json:"value"`
	TargetType   enums.DiscountTargetType `json:"target_type"`
	TargetID     uuid.UUID                `json:"target_id"`
	StartsAt     time.Time                `json:"starts_at"`
	EndsAt       *time.Time               `json:"ends_at,omitempty"`
	SubmittedBy  *uuid.UUID               `json:"submitted_by,omitempty"`
}

// DiscountStatusChangedEvent is emitted on every moderation decision.
type DiscountStatusChangedEvent struct {
	DiscountID     uuid.UUID             `json:"discount_id"`
	PreviousStatus enums.DiscountStatus  `json:"previous_status"`
	Status         enums.DiscountStatus  `json:"status"`
	Effective      enums.EffectiveStatus `json:"effective_status"`
	DecidedBy      uuid.UUID             `json:"decided_by"`
	DecidedAt      time.Time             `json:"decided_at"`
}

// DiscountAppliedEvent records a history row opening for a product.
type DiscountAppliedEvent struct {
	DiscountID   uuid.UUID       `json:"discount_id"`
	ProductID    uuid.UUID       `json:"product_id"`
	AppliedPrice decimal.Decimal `json:"applied_price"`
	AppliedAt    time.Time       `json:"applied_at"`
}

// DiscountRemovedEvent records a history row closing for a product.
type DiscountRemovedEvent struct {
	DiscountID uuid.UUID `json:"discount_id"`
	ProductID  uuid.UUID `json:"product_id"`
	RemovedAt  time.Time `json:"removed_at"`
}

// ReportStatusChangedEvent is emitted when a moderator decides a report.
type ReportStatusChangedEvent struct {
	ReportID  uuid.UUID          `json:"report_id"`
	Status    enums.ReportStatus `json:"status"`
	DecidedBy uuid.UUID          `json:"decided_by"`
}

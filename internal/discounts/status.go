package discounts

import (
	"time"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	"github.com/angelmondragon/catalog-backend/pkg/enums"
)

// EffectiveInput is the subset of a discount the status engine reads.
type EffectiveInput struct {
	Status   enums.DiscountStatus
	StartsAt time.Time
	EndsAt   *time.Time
}

// EffectiveFromModel extracts the status inputs of a stored discount.
func EffectiveFromModel(d *models.Discount) EffectiveInput {
	return EffectiveInput{Status: d.Status, StartsAt: d.StartsAt, EndsAt: d.EndsAt}
}

// EffectiveStatus derives the display state of a discount at now. The window
// is half-open: now == starts_at is live, now == ends_at has ended. A nil
// ends_at never ends. The result is never stored.
func EffectiveStatus(in EffectiveInput, now time.Time) enums.EffectiveStatus {
	switch in.Status {
	case enums.DiscountStatusApproved:
		switch {
		case in.EndsAt != nil && !now.Before(*in.EndsAt):
			return enums.EffectiveStatusEnded
		case now.Before(in.StartsAt):
			return enums.EffectiveStatusApproved
		default:
			return enums.EffectiveStatusInAction
		}
	case enums.DiscountStatusDenied:
		return enums.EffectiveStatusDenied
	default:
		return enums.EffectiveStatusInReview
	}
}

// IsLive reports whether the discount is approved and inside its window.
func IsLive(in EffectiveInput, now time.Time) bool {
	return EffectiveStatus(in, now) == enums.EffectiveStatusInAction
}

package enums

import "fmt"

// DiscountType selects how a discount value is applied to a price.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

var validDiscountTypes = []DiscountType{
	DiscountTypePercentage,
	DiscountTypeFixed,
}

// String implements fmt.Stringer.
func (t DiscountType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known DiscountType.
func (t DiscountType) IsValid() bool {
	for _, candidate := range validDiscountTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseDiscountType converts raw input into a DiscountType.
func ParseDiscountType(value string) (DiscountType, error) {
	for _, candidate := range validDiscountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount type %q", value)
}

// DiscountTargetType names the catalog entity a discount is scoped to.
type DiscountTargetType string

const (
	DiscountTargetProduct  DiscountTargetType = "product"
	DiscountTargetCategory DiscountTargetType = "category"
	DiscountTargetBrand    DiscountTargetType = "brand"
	DiscountTargetStore    DiscountTargetType = "store"
)

var validDiscountTargetTypes = []DiscountTargetType{
	DiscountTargetProduct,
	DiscountTargetCategory,
	DiscountTargetBrand,
	DiscountTargetStore,
}

// String implements fmt.Stringer.
func (t DiscountTargetType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known DiscountTargetType.
func (t DiscountTargetType) IsValid() bool {
	for _, candidate := range validDiscountTargetTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseDiscountTargetType converts raw input into a DiscountTargetType.
func ParseDiscountTargetType(value string) (DiscountTargetType, error) {
	for _, candidate := range validDiscountTargetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount target type %q", value)
}

// DiscountStatus is the stored moderation state of a discount.
type DiscountStatus string

const (
	DiscountStatusInReview DiscountStatus = "in_review"
	DiscountStatusApproved DiscountStatus = "approved"
	DiscountStatusDenied   DiscountStatus = "denied"
)

var validDiscountStatuses = []DiscountStatus{
	DiscountStatusInReview,
	DiscountStatusApproved,
	DiscountStatusDenied,
}

// String implements fmt.Stringer.
func (s DiscountStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DiscountStatus.
func (s DiscountStatus) IsValid() bool {
	for _, candidate := range validDiscountStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsModerationDecision reports whether a moderator may move a discount into s.
func (s DiscountStatus) IsModerationDecision() bool {
	return s == DiscountStatusApproved || s == DiscountStatusDenied
}

// ParseDiscountStatus converts raw input into a DiscountStatus.
func ParseDiscountStatus(value string) (DiscountStatus, error) {
	for _, candidate := range validDiscountStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid discount status %q", value)
}

// EffectiveStatus is the read-time state of a discount derived from its
// moderation status and time window. It is never stored.
type EffectiveStatus string

const (
	EffectiveStatusInReview EffectiveStatus = "IN_REVIEW"
	EffectiveStatusDenied   EffectiveStatus = "DENIED"
	EffectiveStatusApproved EffectiveStatus = "APPROVED"
	EffectiveStatusInAction EffectiveStatus = "IN_ACTION"
	EffectiveStatusEnded    EffectiveStatus = "ENDED"
)

var validEffectiveStatuses = []EffectiveStatus{
	EffectiveStatusInReview,
	EffectiveStatusDenied,
	EffectiveStatusApproved,
	EffectiveStatusInAction,
	EffectiveStatusEnded,
}

// String implements fmt.Stringer.
func (s EffectiveStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is one of the five effective labels.
func (s EffectiveStatus) IsValid() bool {
	for _, candidate := range validEffectiveStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

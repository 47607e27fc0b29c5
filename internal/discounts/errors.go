package discounts

import (
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
)

// Reason names the validation rule that rejected a discount.
type Reason string

const (
	ReasonInvalidTarget            Reason = "invalid_target"
	ReasonInvalidPercentage        Reason = "invalid_percentage"
	ReasonInvalidFixedValue        Reason = "invalid_fixed_value"
	ReasonInvalidDateRange         Reason = "invalid_date_range"
	ReasonExactlyOneTargetRequired Reason = "exactly_one_target_required"
	ReasonBrandNotFound            Reason = "brand_not_found"
	ReasonCategoryNotFound         Reason = "category_not_found"
	ReasonBrandStoreMismatch       Reason = "brand_store_mismatch"
)

func validationError(reason Reason, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithReason(string(reason)).
		WithDetails(map[string]any{"reason": string(reason)})
}

// ReasonOf returns the validation reason carried by err, or "" when err is not
// a discount validation failure.
func ReasonOf(err error) Reason {
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		return ""
	}
	return Reason(pkgerrors.ReasonOf(err))
}

func notFound(message string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, message)
}

func forbidden(message string) error {
	return pkgerrors.New(pkgerrors.CodeForbidden, message)
}

func dependency(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}

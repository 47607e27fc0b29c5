package enums

import "fmt"

// ReportStatus is the moderation state of a user report.
type ReportStatus string

const (
	ReportStatusReported ReportStatus = "REPORTED"
	ReportStatusAccepted ReportStatus = "ACCEPTED"
	ReportStatusDenied   ReportStatus = "DENIED"
)

var validReportStatuses = []ReportStatus{
	ReportStatusReported,
	ReportStatusAccepted,
	ReportStatusDenied,
}

// String implements fmt.Stringer.
func (s ReportStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReportStatus.
func (s ReportStatus) IsValid() bool {
	for _, candidate := range validReportStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseReportStatus converts raw input into a ReportStatus.
func ParseReportStatus(value string) (ReportStatus, error) {
	for _, candidate := range validReportStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report status %q", value)
}

// ReportTargetType names what a report points at.
type ReportTargetType string

const (
	ReportTargetProduct  ReportTargetType = "product"
	ReportTargetDiscount ReportTargetType = "discount"
)

// String implements fmt.Stringer.
func (t ReportTargetType) String() string {
	return string(t)
}

// ProductReportReason classifies what is wrong with a reported product.
type ProductReportReason string

const (
	ProductReportReasonName     ProductReportReason = "name"
	ProductReportReasonPrice    ProductReportReason = "price"
	ProductReportReasonCategory ProductReportReason = "category"
	ProductReportReasonOther    ProductReportReason = "other"
)

var validProductReportReasons = []ProductReportReason{
	ProductReportReasonName,
	ProductReportReasonPrice,
	ProductReportReasonCategory,
	ProductReportReasonOther,
}

// String implements fmt.Stringer.
func (r ProductReportReason) String() string {
	return string(r)
}

// ParseProductReportReason converts raw input into a ProductReportReason.
func ParseProductReportReason(value string) (ProductReportReason, error) {
	for _, candidate := range validProductReportReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product report reason %q", value)
}

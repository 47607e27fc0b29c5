package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type column of outbox_events.
type OutboxAggregateType string

const (
	AggregateDiscount OutboxAggregateType = "discount"
	AggregateProduct  OutboxAggregateType = "product"
	AggregateReport   OutboxAggregateType = "report"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateDiscount,
	AggregateProduct,
	AggregateReport,
}

// IsValid reports whether the value is a known aggregate type.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type column of outbox_events.
type OutboxEventType string

const (
	EventDiscountSubmitted     OutboxEventType = "discount_submitted"
	EventDiscountStatusChanged OutboxEventType = "discount_status_changed"
	EventDiscountApplied       OutboxEventType = "discount_applied"
	EventDiscountRemoved       OutboxEventType = "discount_removed"
	EventReportStatusChanged   OutboxEventType = "report_status_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventDiscountSubmitted,
	EventDiscountStatusChanged,
	EventDiscountApplied,
	EventDiscountRemoved,
	EventReportStatusChanged,
}

// IsValid reports whether the value is a known event type.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// OutboxDLQErrorReason records why an event left the retry loop.
type OutboxDLQErrorReason string

const (
	OutboxDLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts"
	OutboxDLQReasonNonRetryable OutboxDLQErrorReason = "non_retryable"
)

// IsValid reports whether the value is a known DLQ reason.
func (r OutboxDLQErrorReason) IsValid() bool {
	return r == OutboxDLQReasonMaxAttempts || r == OutboxDLQReasonNonRetryable
}

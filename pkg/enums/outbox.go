package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateBulkOrderRequest OutboxAggregateType = "bulk_order_request"
	AggregateOffer            OutboxAggregateType = "offer"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateBulkOrderRequest,
	AggregateOffer,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventRequestCreated  OutboxEventType = "request_created"
	EventOfferSubmitted  OutboxEventType = "offer_submitted"
	EventOfferAccepted   OutboxEventType = "offer_accepted"
	EventRequestAdvanced OutboxEventType = "request_status_advanced"
)

var validOutboxEventTypes = []OutboxEventType{
	EventRequestCreated,
	EventOfferSubmitted,
	EventOfferAccepted,
	EventRequestAdvanced,
}

// IsValid reports whether the value matches the canonical event_type enum.
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

// OutboxDLQErrorReason categorizes why an outbox event hit the dead letter
// queue.
type OutboxDLQErrorReason string

const (
	DLQReasonMaxAttempts  OutboxDLQErrorReason = "max_attempts_exceeded"
	DLQReasonUnresolvable OutboxDLQErrorReason = "unresolvable_event"
)

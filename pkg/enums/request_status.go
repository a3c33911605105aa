package enums

import "fmt"

// RequestStatus tracks the lifecycle of a bulk-order request. Pending covers
// the negotiation window; the remaining values are post-acceptance and only
// ever move forward.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "pending"
	RequestStatusProcessing RequestStatus = "processing"
	RequestStatusShipping   RequestStatus = "shipping"
	RequestStatusDelivered  RequestStatus = "delivered"
)

var validRequestStatuses = []RequestStatus{
	RequestStatusPending,
	RequestStatusProcessing,
	RequestStatusShipping,
	RequestStatusDelivered,
}

// String implements fmt.Stringer.
func (s RequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known RequestStatus.
func (s RequestStatus) IsValid() bool {
	for _, candidate := range validRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Accepted reports whether the status implies a winning offer exists.
func (s RequestStatus) Accepted() bool {
	switch s {
	case RequestStatusProcessing, RequestStatusShipping, RequestStatusDelivered:
		return true
	}
	return false
}

// ParseRequestStatus converts raw input into a RequestStatus.
func ParseRequestStatus(value string) (RequestStatus, error) {
	for _, candidate := range validRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid request status %q", value)
}

// FulfillmentPredecessor returns the unique status a request must currently
// hold for a forward transition into the receiver to be legal. Pending is not
// reachable through fulfillment transitions.
func (s RequestStatus) FulfillmentPredecessor() (RequestStatus, bool) {
	switch s {
	case RequestStatusShipping:
		return RequestStatusProcessing, true
	case RequestStatusDelivered:
		return RequestStatusShipping, true
	}
	return "", false
}

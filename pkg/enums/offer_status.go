package enums

import "fmt"

// OfferStatus tracks one seller's RFQ against a bulk-order request. Every
// offer starts as a pending placeholder created at fan-out time; submitted
// means the seller has filled in quote terms. The status is the single source
// of truth for "quoted or not"; price is never used as a discriminator.
type OfferStatus string

const (
	OfferStatusPending   OfferStatus = "pending"
	OfferStatusSubmitted OfferStatus = "submitted"
	OfferStatusAccepted  OfferStatus = "accepted"
	OfferStatusDeclined  OfferStatus = "declined"
)

var validOfferStatuses = []OfferStatus{
	OfferStatusPending,
	OfferStatusSubmitted,
	OfferStatusAccepted,
	OfferStatusDeclined,
}

// String implements fmt.Stringer.
func (s OfferStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OfferStatus.
func (s OfferStatus) IsValid() bool {
	for _, candidate := range validOfferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Quoted reports whether the seller has entered terms on the offer.
func (s OfferStatus) Quoted() bool {
	return s != OfferStatusPending
}

// Resolved reports whether the offer reached a terminal state.
func (s OfferStatus) Resolved() bool {
	return s == OfferStatusAccepted || s == OfferStatusDeclined
}

// ParseOfferStatus converts raw input into an OfferStatus.
func ParseOfferStatus(value string) (OfferStatus, error) {
	for _, candidate := range validOfferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer status %q", value)
}

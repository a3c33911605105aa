package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a latitude/longitude component that tolerates clients sending
// the value as either a JSON number or a numeric string.
type Coordinate float64

// UnmarshalJSON coerces string-encoded numbers into the float value.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == `""` {
		*c = 0
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		unquoted, err := strconv.Unquote(trimmed)
		if err != nil {
			return fmt.Errorf("coordinate: %w", err)
		}
		trimmed = strings.TrimSpace(unquoted)
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fmt.Errorf("coordinate: invalid number %q", trimmed)
	}
	*c = Coordinate(parsed)
	return nil
}

// MarshalJSON renders the coordinate as a plain JSON number.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(c))
}

// Address is the shipping destination attached to a bulk-order request,
// persisted as JSONB.
type Address struct {
	Line1      string     `json:"line1" validate:"required"`
	Line2      *string    `json:"line2,omitempty"`
	City       string     `json:"city" validate:"required"`
	State      string     `json:"state" validate:"required"`
	PostalCode string     `json:"postal_code" validate:"required"`
	Country    string     `json:"country,omitempty"`
	Lat        Coordinate `json:"lat,omitempty"`
	Lng        Coordinate `json:"lng,omitempty"`
}

// Normalize fills defaults and trims whitespace on the free-text fields.
func (a *Address) Normalize() {
	a.Line1 = strings.TrimSpace(a.Line1)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
	if a.Country == "" {
		a.Country = "US"
	}
}

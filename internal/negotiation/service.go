package negotiation

import (
	"fmt"

	"github.com/tmoreno/bulkbridge-backend/internal/bulkorders"
	"github.com/tmoreno/bulkbridge-backend/internal/rfq"
)

// Service is the façade the HTTP layer talks to. It composes the buyer-side
// bulk-order service, the seller-side offer ledger, and the acceptance
// coordinator without adding behavior of its own; validation and error
// translation live in the components.
type Service struct {
	Requests   bulkorders.Service
	Offers     rfq.Service
	Acceptance rfq.Coordinator
}

// NewService wires the negotiation façade.
func NewService(requests bulkorders.Service, offers rfq.Service, acceptance rfq.Coordinator) (*Service, error) {
	if requests == nil {
		return nil, fmt.Errorf("bulkorders service required")
	}
	if offers == nil {
		return nil, fmt.Errorf("rfq service required")
	}
	if acceptance == nil {
		return nil, fmt.Errorf("acceptance coordinator required")
	}
	return &Service{
		Requests:   requests,
		Offers:     offers,
		Acceptance: acceptance,
	}, nil
}

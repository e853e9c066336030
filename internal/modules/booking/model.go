// README: Booking record and status definitions.
package booking

import (
	"luba/internal/types"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusOnTheWay  Status = "on_the_way"
	StatusArrived   Status = "arrived"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// AllowedTransitions represents the booking state flow as code. Cancellation
// is reachable from pending and accepted only.
var AllowedTransitions = map[Status][]Status{
	StatusPending:  {StatusAccepted, StatusCancelled},
	StatusAccepted: {StatusOnTheWay, StatusCancelled},
	StatusOnTheWay: {StatusArrived},
	StatusArrived:  {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Booking is the ride record under bookings/{id}. It is created by the
// rider-facing app; only its status (and updatedAt) change from here.
// CreatedAt/UpdatedAt are RFC 3339 strings.
type Booking struct {
	ID          types.ID    `json:"-"`
	CustomerID  types.ID    `json:"customerId"`
	Customer    string      `json:"customer,omitempty"`
	PickupDesc  string      `json:"pickup"`
	DropoffDesc string      `json:"dropoff"`
	PickupPos   types.Point `json:"pickupPos"`
	DropoffPos  types.Point `json:"dropoffPos"`
	Status      Status      `json:"status"`
	CreatedAt   string      `json:"createdAt"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
}

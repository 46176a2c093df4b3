package entity

import "time"

// RequestType identifies which approval chain a request follows.
type RequestType string

const (
	TypeTransport     RequestType = "Transport"
	TypeAccommodation RequestType = "Accommodation"
	TypeVisa          RequestType = "Visa"
	TypeClaim         RequestType = "TRF"
)

var validTypes = map[RequestType]bool{
	TypeTransport:     true,
	TypeAccommodation: true,
	TypeVisa:          true,
	TypeClaim:         true,
}

// IsValid returns true if the request type is known
func (t RequestType) IsValid() bool {
	return validTypes[t]
}

// String returns the string representation of the request type
func (t RequestType) String() string {
	return string(t)
}

// Request is a travel request moving through the approval chain.
// Status is an open string enum; the routing table defines the legal values.
type Request struct {
	ID             string     `json:"id"`
	Type           RequestType `json:"type"`
	RequestorName  string     `json:"requestor_name"`
	StaffID        string     `json:"staff_id"`
	Department     string     `json:"department"`
	RequestorEmail string     `json:"requestor_email"`
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submitted_at,omitempty"`
	AdditionalData string     `json:"additional_data"` // JSON extension bag (e.g. parentId cross-reference)
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Actor is the identity performing a workflow action. Authentication happens
// upstream; the engine only receives the resolved identity.
type Actor struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
}

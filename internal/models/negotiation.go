package models

import (
	"time"

	"github.com/google/uuid"
)

type StageType string

const (
	StageNegotiation StageType = "NEGOTIATION"
	StageInspection  StageType = "INSPECTION"
	StageCompleted   StageType = "COMPLETED"
	StageCancelled   StageType = "CANCELLED"
)

type NegotiationType string

const (
	NegotiationTypePrice NegotiationType = "PRICE"
	NegotiationTypeLOI   NegotiationType = "LOI"
)

type LOIStatusType string

const (
	LOIStatusPending          LOIStatusType = "PENDING"
	LOIStatusAccepted         LOIStatusType = "ACCEPTED"
	LOIStatusChangesRequested LOIStatusType = "CHANGES_REQUESTED"
	LOIStatusRejected         LOIStatusType = "REJECTED"
)

// Negotiation is one buyer/seller negotiation session over a property,
// covering the price or LOI round and the inspection scheduling round.
// The row is the single source of truth; clients never advance `Stage`
// locally.
type Negotiation struct {
	Versioned

	ID         uuid.UUID `json:"id"`
	PropertyID uuid.UUID `json:"property_id"`
	BuyerID    uuid.UUID `json:"buyer_id"`
	SellerID   uuid.UUID `json:"seller_id"`

	Stage               StageType       `json:"stage"`
	NegotiationType     NegotiationType `json:"negotiation_type"`
	PendingResponseFrom PartyType       `json:"pending_response_from"`

	// Price round. NegotiationPrice is the buyer's standing offer;
	// SellerCounterOffer is set once the seller counters.
	NegotiationPrice   float64  `json:"negotiation_price"`
	SellerCounterOffer *float64 `json:"seller_counter_offer,omitempty"`
	CounterCount       int      `json:"counter_count"`

	// LOI round.
	LetterOfIntention *string       `json:"letter_of_intention,omitempty"`
	LOIStatus         LOIStatusType `json:"loi_status,omitempty"`
	ChangeRequestNote *string       `json:"change_request_note,omitempty"`

	// Inspection scheduling.
	InspectionDate    time.Time `json:"inspection_date"`
	InspectionTime    string    `json:"inspection_time"`
	DateTimeCountered bool      `json:"date_time_countered"`

	ReopenCount       int        `json:"reopen_count"`
	ExpiryNotifiedAt  *time.Time `json:"expiry_notified_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Negotiation) GetID() string {
	return n.ID.String()
}

// PartyOf maps a user ID to the side they hold in this negotiation.
func (n *Negotiation) PartyOf(userID uuid.UUID) (PartyType, bool) {
	switch userID {
	case n.BuyerID:
		return PartyBuyer, true
	case n.SellerID:
		return PartySeller, true
	}
	return "", false
}

// Terminal reports whether the session can no longer be acted on.
func (n *Negotiation) Terminal() bool {
	return n.Stage == StageCompleted || n.Stage == StageCancelled
}

package dtos

import (
	"time"

	"github.com/google/uuid"
)

/*
NegotiationDetailsDTO is the response for GET /api/v1/negotiations/{id}.
Everything a client needs to render the flow: the row itself, the computed
step for the viewer, and the gating flags. Clients never derive these
locally; the server is the single source of truth.
*/
type NegotiationDetailsDTO struct {
	ID              uuid.UUID `json:"id"`
	Stage           string    `json:"stage"`
	NegotiationType string    `json:"negotiation_type"`

	// Step the viewer should be on: loi, price, inspection, awaiting,
	// expired, completed or cancelled.
	CurrentStep string `json:"current_step"`

	ViewerRole          string `json:"viewer_role"`
	PendingResponseFrom string `json:"pending_response_from"`
	IsYourTurn          bool   `json:"is_your_turn"`

	IsExpired bool       `json:"is_expired"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	NegotiationPrice    float64  `json:"negotiation_price"`
	SellerCounterOffer  *float64 `json:"seller_counter_offer,omitempty"`
	CounterCount        int      `json:"counter_count"`
	CounterLimitReached bool     `json:"counter_limit_reached"`
	MinAcceptableOffer  float64  `json:"min_acceptable_offer"`

	LetterOfIntention *string `json:"letter_of_intention,omitempty"`
	LOIStatus         string  `json:"loi_status,omitempty"`
	ChangeRequestNote *string `json:"change_request_note,omitempty"`

	InspectionDate    string `json:"inspection_date"`
	InspectionTime    string `json:"inspection_time"`
	DateTimeCountered bool   `json:"date_time_countered"`

	CanGoBackToLOI   bool `json:"can_go_back_to_loi"`
	CanGoBackToPrice bool `json:"can_go_back_to_price"`

	ReopenCount int   `json:"reopen_count"`
	RowVersion  int64 `json:"row_version"`

	Property     NegotiationPropertyDTO `json:"property"`
	Counterparty CounterpartyDTO        `json:"counterparty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NegotiationPropertyDTO struct {
	PropertyID   uuid.UUID `json:"property_id"`
	Title        string    `json:"title"`
	PropertyType string    `json:"property_type"`
	Price        float64   `json:"price"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}

// CounterpartyDTO names the other side without exposing contact details.
type CounterpartyDTO struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

/*
AcceptOfferRequest finalizes the negotiation round: the caller accepts the
standing offer (or pending LOI) and submits the inspection date/time in the
same call.
*/
type AcceptOfferRequest struct {
	NegotiationID  uuid.UUID `json:"negotiation_id" validate:"required"`
	RowVersion     int64     `json:"row_version" validate:"required,gt=0"`
	InspectionDate string    `json:"inspection_date" validate:"required"`
	InspectionTime string    `json:"inspection_time" validate:"required"`
}

/*
CounterOfferRequest submits a counter-price together with the inspection
date/time. Range checks (>0, ≤ asking, buyer ≥ 80% of asking) happen in the
service where the property price is known.
*/
type CounterOfferRequest struct {
	NegotiationID  uuid.UUID `json:"negotiation_id" validate:"required"`
	RowVersion     int64     `json:"row_version" validate:"required,gt=0"`
	CounterPrice   float64   `json:"counter_price" validate:"required,gt=0"`
	InspectionDate string    `json:"inspection_date" validate:"required"`
	InspectionTime string    `json:"inspection_time" validate:"required"`
}

/*
NegotiationActionRequest covers the remaining LOI/price decisions:

	accept          – seller accepts the pending LOI (no reschedule payload)
	reject          – either side walks away (terminal)
	requestChanges  – seller sends the LOI back; requires a note
	resubmitLOI     – buyer re-submits after requestChanges; requires loi_url
*/
type NegotiationActionRequest struct {
	NegotiationID uuid.UUID `json:"negotiation_id" validate:"required"`
	RowVersion    int64     `json:"row_version" validate:"required,gt=0"`
	Action        string    `json:"action" validate:"required,oneof=accept reject requestChanges resubmitLOI"`
	Note          *string   `json:"note,omitempty"`
	LOIURL        *string   `json:"loi_url,omitempty"`

	// Only used when action == accept (seller accepting an LOI moves the
	// session to inspection scheduling).
	InspectionDate *string `json:"inspection_date,omitempty"`
	InspectionTime *string `json:"inspection_time,omitempty"`
}

/*
UpdateDateTimeRequest handles the inspection stage: re-submitting the stored
slot confirms it (completing the flow), a different slot counters it and
flips the turn.
*/
type UpdateDateTimeRequest struct {
	NegotiationID  uuid.UUID `json:"negotiation_id" validate:"required"`
	RowVersion     int64     `json:"row_version" validate:"required,gt=0"`
	InspectionDate string    `json:"inspection_date" validate:"required"`
	InspectionTime string    `json:"inspection_time" validate:"required"`
}

type ReopenNegotiationRequest struct {
	NegotiationID uuid.UUID `json:"negotiation_id" validate:"required"`
	RowVersion    int64     `json:"row_version" validate:"required,gt=0"`
}

// NegotiationActionResponse returns the refreshed row after any mutation.
type NegotiationActionResponse struct {
	Negotiation NegotiationDetailsDTO `json:"negotiation"`
}

// ListNegotiationsResponse is the result of GET /api/v1/negotiations.
type ListNegotiationsResponse struct {
	Total   int                     `json:"total"`
	Results []NegotiationDetailsDTO `json:"results"`
}

/*
AvailableSlotsResponse lists bookable inspection slots for a property:
the next days excluding Sundays and public holidays, hourly times in the
property's timezone.
*/
type AvailableSlotsResponse struct {
	PropertyID     uuid.UUID `json:"property_id"`
	TimeZone       string    `json:"timezone"`
	AvailableDates []string  `json:"available_dates"`
	AvailableTimes []string  `json:"available_times"`
}

// LOIUploadResponse is the result of POST /api/v1/documents/loi.
type LOIUploadResponse struct {
	DocumentID uuid.UUID `json:"document_id"`
	URL        string    `json:"url"`
	FileName   string    `json:"file_name"`
	SizeBytes  int64     `json:"size_bytes"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

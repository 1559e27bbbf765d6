package routes

const (
	// Health
	Health = "/health"

	// Negotiation endpoints
	NegotiationsBase     = "/api/v1/negotiations"
	NegotiationsGet      = "/api/v1/negotiations/{id}"
	NegotiationsAccept   = "/api/v1/negotiations/accept"
	NegotiationsCounter  = "/api/v1/negotiations/counter"
	NegotiationsAction   = "/api/v1/negotiations/action"
	NegotiationsDateTime = "/api/v1/negotiations/datetime"
	NegotiationsReopen   = "/api/v1/negotiations/reopen"
	NegotiationsSlots    = "/api/v1/negotiations/slots"

	// LOI document upload
	DocumentsLOI = "/api/v1/documents/loi"
)

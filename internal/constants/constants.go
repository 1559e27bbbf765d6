package constants

import (
	"time"
)

// Negotiation business rules. These are the single definitions shared by
// validation, DTO building and the expiry sweep.
const (
	// A buyer's counter must stay within [80%, 100%] of the asking price.
	MinCounterOfferRatio = 0.80

	// Hard cap on counter-offer rounds per session.
	MaxCounterRounds = 3

	// A party has this long to respond before the session expires.
	ResponseWindow = 48 * time.Hour
)

// Inspection scheduling.
const (
	InspectionDaysAhead    = 15 // calendar window starting tomorrow
	InspectionEarliestHour = 8  // first bookable slot, property-local
	InspectionLatestHour   = 18 // last bookable slot, property-local

	InspectionDateLayout = "2006-01-02"
	InspectionTimeLayout = "15:04"

	// Fallback when a property has no stored timezone and no usable coordinates.
	DefaultTimeZone = "Africa/Lagos"
)

// LOI uploads.
const (
	MaxLOIUploadBytes = 10 << 20 // 10 MiB
)

// Expiry sweep cadence (cron spec).
const (
	ExpirySweepCronSpec = "@every 10m"
)

// Row-version conflict messages returned on 409 responses.
const (
	ErrMsgNoRowsUpdated      = "No rows updated, please refresh"
	ErrMsgRowVersionConflict = "Another update occurred, please refresh"
)

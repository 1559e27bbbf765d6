// internal/utils/errors.go
package utils

import (
	"errors"

	"github.com/surepeps/negotiation-service/internal/models"
)

/*
   Sentinel errors for negotiation domain logic.
   The controller can do: if errors.Is(err, ErrXYZ) { ... }
*/
var (
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidPhone = errors.New("invalid_phone")

	ErrNotParticipant      = errors.New("not_participant")
	ErrNotYourTurn         = errors.New("not_your_turn")
	ErrWrongStage          = errors.New("wrong_stage")
	ErrNegotiationExpired  = errors.New("negotiation_expired")
	ErrNegotiationNotFound = errors.New("negotiation_not_found")

	ErrCounterLimitReached = errors.New("counter_limit_reached")
	ErrOfferBelowMinimum   = errors.New("offer_below_minimum")
	ErrOfferAboveAsking    = errors.New("offer_above_asking")

	ErrFeedbackRequired = errors.New("feedback_required")
	ErrLOIRequired      = errors.New("loi_required")

	ErrInvalidSlot = errors.New("invalid_slot")

	ErrNotExpired = errors.New("not_expired")

	// For concurrency conflicts
	ErrRowVersionConflict = errors.New("row_version_conflict")

	// For external service failures (e.g., Twilio, SendGrid)
	ErrExternalServiceFailure = errors.New("external_service_failure")

	ErrNoRowsUpdated = errors.New("no_rows_updated")
)

/*
   RowVersionConflictError is returned when there's a concurrency mismatch.
   It includes the "latest" Negotiation so the controller can return it
   to the client alongside the conflict code.
*/
type RowVersionConflictError struct {
	Current *models.Negotiation
}

func (e *RowVersionConflictError) Error() string {
	return "row_version_conflict"
}

func (e *RowVersionConflictError) Is(target error) bool {
	return target == ErrRowVersionConflict
}

func NewRowVersionConflictError(current *models.Negotiation) error {
	return &RowVersionConflictError{Current: current}
}

package services

import (
	"time"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/utils"
)

/*
The negotiation flow is a small state machine. `Stage` is what the row
stores; `Step` is what a given viewer should be shown, derived from the
stage, the negotiation type, whose turn it is and the expiry clock.
Clients render steps, the server owns transitions.
*/

type StepType string

const (
	StepLOI        StepType = "loi"
	StepPrice      StepType = "price"
	StepInspection StepType = "inspection"
	StepAwaiting   StepType = "awaiting"
	StepExpired    StepType = "expired"
	StepCompleted  StepType = "completed"
	StepCancelled  StepType = "cancelled"
)

type ActionType string

const (
	ActionAccept         ActionType = "accept"
	ActionCounter        ActionType = "counter"
	ActionReject         ActionType = "reject"
	ActionRequestChanges ActionType = "requestChanges"
	ActionResubmitLOI    ActionType = "resubmitLOI"
	ActionUpdateDateTime ActionType = "updateDateTime"
	ActionReopen         ActionType = "reopen"
)

// allowedActions is the transition table: which actions are legal in which
// stage. Turn and expiry gating are applied separately by GateAction.
var allowedActions = map[models.StageType]map[ActionType]bool{
	models.StageNegotiation: {
		ActionAccept:         true,
		ActionCounter:        true,
		ActionReject:         true,
		ActionRequestChanges: true,
		ActionResubmitLOI:    true,
		ActionReopen:         true,
	},
	models.StageInspection: {
		ActionUpdateDateTime: true,
		ActionReject:         true,
		ActionReopen:         true,
	},
	// Terminal stages allow nothing.
	models.StageCompleted: {},
	models.StageCancelled: {},
}

// ExpiresAt is the deadline for the pending party to respond. Every
// mutation resets updated_at, so the window always measures the current
// turn.
func ExpiresAt(n *models.Negotiation) time.Time {
	return n.UpdatedAt.Add(constants.ResponseWindow)
}

// IsExpired reports whether the session crossed the response window.
// Terminal sessions never count as expired.
func IsExpired(n *models.Negotiation, now time.Time) bool {
	if n.Terminal() {
		return false
	}
	return now.After(ExpiresAt(n))
}

// GateAction applies the three gates every mutation goes through, in
// order: stage (transition table), expiry, turn.
func GateAction(n *models.Negotiation, actor models.PartyType, action ActionType, now time.Time) error {
	if !allowedActions[n.Stage][action] {
		return utils.ErrWrongStage
	}
	if IsExpired(n, now) {
		if action == ActionReopen {
			return nil
		}
		return utils.ErrNegotiationExpired
	}
	if action == ActionReopen {
		// Reopen is only meaningful once the window has lapsed.
		return utils.ErrNotExpired
	}
	if n.PendingResponseFrom != actor {
		return utils.ErrNotYourTurn
	}
	return nil
}

// ResolveStep derives the step a viewer should be on right now.
func ResolveStep(n *models.Negotiation, viewer models.PartyType, now time.Time) StepType {
	switch n.Stage {
	case models.StageCompleted:
		return StepCompleted
	case models.StageCancelled:
		return StepCancelled
	}

	if IsExpired(n, now) {
		return StepExpired
	}

	if n.PendingResponseFrom != viewer {
		return StepAwaiting
	}

	if n.Stage == models.StageInspection {
		return StepInspection
	}

	if n.NegotiationType == models.NegotiationTypeLOI {
		return StepLOI
	}
	return StepPrice
}

// CanGoBackToLOI reports whether the viewer may navigate back from the
// inspection step to the LOI step. Never after an LOI rejection.
func CanGoBackToLOI(n *models.Negotiation, now time.Time) bool {
	return n.Stage == models.StageInspection &&
		n.NegotiationType == models.NegotiationTypeLOI &&
		n.LOIStatus != models.LOIStatusRejected &&
		!IsExpired(n, now)
}

// CanGoBackToPrice reports whether the viewer may navigate back from the
// inspection step to the price step.
func CanGoBackToPrice(n *models.Negotiation, now time.Time) bool {
	return n.Stage == models.StageInspection &&
		n.NegotiationType == models.NegotiationTypePrice &&
		!IsExpired(n, now)
}

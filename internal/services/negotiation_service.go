package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/surepeps/negotiation-service/internal/constants"
	"github.com/surepeps/negotiation-service/internal/dtos"
	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/repositories"
	"github.com/surepeps/negotiation-service/internal/utils"
)

/*
NegotiationService is the heart of the flow: it loads the row, applies the
stage/expiry/turn gates, validates the business rules, and hands the
mutation to the repository's atomic methods. Optimistic-lock conflicts
surface as RowVersionConflictError carrying the fresh row so clients can
re-render and retry.
*/
type NegotiationService struct {
	negRepo  repositories.NegotiationRepository
	propRepo repositories.PropertyRepository
	userRepo repositories.UserRepository
	schedule *ScheduleService
	notifier *NotificationService
	now      func() time.Time
}

func NewNegotiationService(
	negRepo repositories.NegotiationRepository,
	propRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	schedule *ScheduleService,
	notifier *NotificationService,
) *NegotiationService {
	return &NegotiationService{
		negRepo:  negRepo,
		propRepo: propRepo,
		userRepo: userRepo,
		schedule: schedule,
		notifier: notifier,
		now:      time.Now,
	}
}

// ----------------------------------------------------------------------
// Reads
// ----------------------------------------------------------------------

// FetchDetails returns the full negotiation view for one participant.
// roleHint (from ?role=) is optional; when present it must match the
// caller's actual side.
func (s *NegotiationService) FetchDetails(
	ctx context.Context,
	userID uuid.UUID,
	negotiationID uuid.UUID,
	roleHint string,
) (*dtos.NegotiationDetailsDTO, error) {
	n, party, err := s.loadForUser(ctx, userID, negotiationID)
	if err != nil {
		return nil, err
	}
	if roleHint != "" {
		hinted, ok := models.ParseParty(roleHint)
		if !ok || hinted != party {
			return nil, utils.ErrNotParticipant
		}
	}
	return s.buildDetails(ctx, n, party)
}

// ListForUser returns every negotiation the user participates in, on both
// sides unless roleHint narrows it to one.
func (s *NegotiationService) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
	roleHint string,
) ([]dtos.NegotiationDetailsDTO, error) {
	parties := []models.PartyType{models.PartyBuyer, models.PartySeller}
	if roleHint != "" {
		hinted, ok := models.ParseParty(roleHint)
		if !ok {
			return nil, utils.ErrNotParticipant
		}
		parties = []models.PartyType{hinted}
	}

	out := []dtos.NegotiationDetailsDTO{}
	for _, party := range parties {
		rows, err := s.negRepo.ListByUser(ctx, userID, party)
		if err != nil {
			return nil, err
		}
		for _, n := range rows {
			dto, err := s.buildDetails(ctx, n, party)
			if err != nil {
				return nil, err
			}
			out = append(out, *dto)
		}
	}
	return out, nil
}

// PartyFor resolves which side of the negotiation the user holds.
// Used by the document upload path to verify participation.
func (s *NegotiationService) PartyFor(
	ctx context.Context,
	userID uuid.UUID,
	negotiationID uuid.UUID,
) (models.PartyType, error) {
	_, party, err := s.loadForUser(ctx, userID, negotiationID)
	return party, err
}

// ----------------------------------------------------------------------
// Mutations
// ----------------------------------------------------------------------

// AcceptOffer finalizes the negotiation round: the caller accepts the
// standing offer (or the pending LOI) and proposes the inspection slot in
// the same call. The session moves to the inspection stage and the turn
// flips.
func (s *NegotiationService) AcceptOffer(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.AcceptOfferRequest,
) (*dtos.NegotiationDetailsDTO, error) {
	n, party, err := s.loadForUser(ctx, userID, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	if err := GateAction(n, party, ActionAccept, s.now()); err != nil {
		return nil, err
	}
	// Only the seller can accept a pending LOI.
	if n.NegotiationType == models.NegotiationTypeLOI && party != models.PartySeller {
		return nil, utils.ErrWrongStage
	}

	p, err := s.property(ctx, n)
	if err != nil {
		return nil, err
	}
	date, err := s.schedule.ParseSlot(ctx, p, req.InspectionDate, req.InspectionTime)
	if err != nil {
		return nil, err
	}

	updated, err := s.negRepo.AcceptOfferAtomic(
		ctx, n.ID, req.RowVersion, party, date, req.InspectionTime, false,
	)
	if err = s.wrapConflict(updated, err); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, updated, party, func(u *models.User) {
		s.notifier.NotifyOfferAccepted(u, updated, p)
	})
	return s.buildDetails(ctx, updated, party)
}

// SubmitCounterOffer validates and records a counter-price, flips the
// turn and restarts the 48h window.
func (s *NegotiationService) SubmitCounterOffer(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.CounterOfferRequest,
) (*dtos.NegotiationDetailsDTO, error) {
	n, party, err := s.loadForUser(ctx, userID, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	if err := GateAction(n, party, ActionCounter, s.now()); err != nil {
		return nil, err
	}
	if n.NegotiationType != models.NegotiationTypePrice {
		return nil, utils.ErrWrongStage
	}
	if n.CounterCount >= constants.MaxCounterRounds {
		return nil, utils.ErrCounterLimitReached
	}

	p, err := s.property(ctx, n)
	if err != nil {
		return nil, err
	}
	if err := ValidateCounterPrice(party, req.CounterPrice, p.Price); err != nil {
		return nil, err
	}
	date, err := s.schedule.ParseSlot(ctx, p, req.InspectionDate, req.InspectionTime)
	if err != nil {
		return nil, err
	}

	updated, err := s.negRepo.CounterOfferAtomic(
		ctx, n.ID, req.RowVersion, party, req.CounterPrice, date, req.InspectionTime, false,
	)
	if err = s.wrapConflict(updated, err); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, updated, party, func(u *models.User) {
		s.notifier.NotifyCounterOffer(u, updated, p, req.CounterPrice)
	})
	return s.buildDetails(ctx, updated, party)
}

// SubmitAction covers the remaining decisions: reject, requestChanges,
// resubmitLOI and the seller's LOI accept.
func (s *NegotiationService) SubmitAction(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.NegotiationActionRequest,
) (*dtos.NegotiationDetailsDTO, error) {
	switch ActionType(req.Action) {
	case ActionAccept:
		if req.InspectionDate == nil || req.InspectionTime == nil {
			return nil, utils.ErrInvalidSlot
		}
		return s.AcceptOffer(ctx, userID, dtos.AcceptOfferRequest{
			NegotiationID:  req.NegotiationID,
			RowVersion:     req.RowVersion,
			InspectionDate: *req.InspectionDate,
			InspectionTime: *req.InspectionTime,
		})
	case ActionReject:
		return s.reject(ctx, userID, req)
	case ActionRequestChanges:
		return s.requestChanges(ctx, userID, req)
	case ActionResubmitLOI:
		return s.resubmitLOI(ctx, userID, req)
	}
	return nil, utils.ErrWrongStage
}

func (s *NegotiationService) reject(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.NegotiationActionRequest,
) (*dtos.NegotiationDetailsDTO, error) {
	n, party, err := s.loadForUser(ctx, userID, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	if err := GateAction(n, party, ActionReject, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.negRepo.RejectAtomic(ctx, n.ID, req.RowVersion, party)
	if err = s.wrapConflict(updated, err); err != nil {
		return nil, err
	}

	p, perr := s.property(ctx, updated)
	if perr == nil {
		s.notifyCounterparty(ctx, updated, party, func(u *models.User) {
			s.notifier.NotifyNegotiationCancelled(u, updated, p)
		})
	}
	return s.buildDetails(ctx, updated, party)
}

func (s *NegotiationService) requestChanges(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.NegotiationActionRequest,
) (*dtos.NegotiationDetailsDTO, error) {
	n, party, err := s.loadForUser(ctx, userID, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	if err := GateAction(n, party, ActionRequestChanges, s.now()); err != nil {
		return nil, err
	}
	if n.NegotiationType != models.NegotiationTypeLOI || party != models.PartySeller {
		return nil, utils.ErrWrongStage
	}
	if req.Note == nil || strings.TrimSpace(*req.Note) == "" {
		return nil, utils.ErrFeedbackRequired
	}

	updated, err := s.negRepo.RequestChangesAtomic(ctx, n.ID, req.RowVersion, strings.TrimSpace(*req.Note))
	if err = s.wrapConflict(updated, err); err != nil {
		return nil, err
	}

	p, perr := s.property(ctx, updated)
	if perr == nil {
		s.notifyCounterparty(ctx, updated, party, func(u *models.User) {
			s.notifier.NotifyLOIChangesRequested(u, updated, p, *req.Note)
		})
	}
	return s.buildDetails(ctx, updated, party)
}

func (s *NegotiationService) resubmitLOI(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.NegotiationActionRequest,
) (*dtos.NegotiationDetailsDTO, error) {
	n, party, err := s.loadForUser(ctx, userID, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	if err := GateAction(n, party, ActionResubmitLOI, s.now()); err != nil {
		return nil, err
	}
	if n.NegotiationType != models.NegotiationTypeLOI || party != models.PartyBuyer {
		return nil, utils.ErrWrongStage
	}
	if req.LOIURL == nil || strings.TrimSpace(*req.LOIURL) == "" {
		return nil, utils.ErrLOIRequired
	}

	updated, err := s.negRepo.AttachLOIAtomic(ctx, n.ID, req.RowVersion, strings.TrimSpace(*req.LOIURL))
	if err = s.wrapConflict(updated, err); err != nil {
		return nil, err
	}

	p, perr := s.property(ctx, updated)
	if perr == nil {
		s.notifyCounterparty(ctx, updated, party, func(u *models.User) {
			s.notifier.NotifyLOIResubmitted(u, updated, p)
		})
	}
	return s.buildDetails(ctx, updated, party)
}

// UpdateInspectionDateTime handles the inspection stage. Re-submitting
// the stored slot confirms it and completes the flow; a different slot
// counters it and flips the turn.
func (s *NegotiationService) UpdateInspectionDateTime(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.UpdateDateTimeRequest,
) (*dtos.NegotiationDetailsDTO, error) {
	n, party, err := s.loadForUser(ctx, userID, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	if err := GateAction(n, party, ActionUpdateDateTime, s.now()); err != nil {
		return nil, err
	}

	p, err := s.property(ctx, n)
	if err != nil {
		return nil, err
	}
	date, err := s.schedule.ParseSlot(ctx, p, req.InspectionDate, req.InspectionTime)
	if err != nil {
		return nil, err
	}

	// The stored timestamptz comes back in the server's zone; compare the
	// calendar date in the property's zone or a UTC host shifts the day.
	loc := s.schedule.PropertyLocation(ctx, p)
	unchanged := n.InspectionDate.In(loc).Format(constants.InspectionDateLayout) == req.InspectionDate &&
		n.InspectionTime == req.InspectionTime

	var (
		newStage  = models.StageInspection
		countered = true
	)
	if unchanged {
		newStage = models.StageCompleted
		countered = n.DateTimeCountered
	}

	updated, err := s.negRepo.UpdateDateTimeAtomic(
		ctx, n.ID, req.RowVersion, date, req.InspectionTime, countered, party.Other(), newStage,
	)
	if err = s.wrapConflict(updated, err); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, updated, party, func(u *models.User) {
		if unchanged {
			s.notifier.NotifyInspectionConfirmed(u, updated, p)
		} else {
			s.notifier.NotifyInspectionRescheduled(u, updated, p)
		}
	})
	return s.buildDetails(ctx, updated, party)
}

// Reopen restarts an expired session's 48h window. Only valid once the
// window has actually lapsed; terminal sessions stay closed.
func (s *NegotiationService) Reopen(
	ctx context.Context,
	userID uuid.UUID,
	req dtos.ReopenNegotiationRequest,
) (*dtos.NegotiationDetailsDTO, error) {
	n, party, err := s.loadForUser(ctx, userID, req.NegotiationID)
	if err != nil {
		return nil, err
	}
	if err := GateAction(n, party, ActionReopen, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.negRepo.ReopenAtomic(ctx, n.ID, req.RowVersion)
	if err = s.wrapConflict(updated, err); err != nil {
		return nil, err
	}
	return s.buildDetails(ctx, updated, party)
}

// ----------------------------------------------------------------------
// Validation helpers
// ----------------------------------------------------------------------

// ValidateCounterPrice applies the price-range rules: positive, never
// above asking, and a buyer's counter must stay at or above 80% of the
// asking price.
func ValidateCounterPrice(party models.PartyType, amount, askingPrice float64) error {
	if amount <= 0 {
		return utils.ErrOfferBelowMinimum
	}
	if amount > askingPrice {
		return utils.ErrOfferAboveAsking
	}
	if party == models.PartyBuyer && amount < askingPrice*constants.MinCounterOfferRatio {
		return utils.ErrOfferBelowMinimum
	}
	return nil
}

// ----------------------------------------------------------------------
// Internals
// ----------------------------------------------------------------------

func (s *NegotiationService) loadForUser(
	ctx context.Context,
	userID uuid.UUID,
	negotiationID uuid.UUID,
) (*models.Negotiation, models.PartyType, error) {
	n, err := s.negRepo.GetByID(ctx, negotiationID)
	if err != nil {
		return nil, "", err
	}
	if n == nil {
		return nil, "", utils.ErrNegotiationNotFound
	}
	party, ok := n.PartyOf(userID)
	if !ok {
		return nil, "", utils.ErrNotParticipant
	}
	return n, party, nil
}

func (s *NegotiationService) property(ctx context.Context, n *models.Negotiation) (*models.Property, error) {
	p, err := s.propRepo.GetByID(ctx, n.PropertyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, utils.ErrNegotiationNotFound
	}
	return p, nil
}

// wrapConflict converts the repository's version-mismatch error into a
// RowVersionConflictError carrying the fresh row.
func (s *NegotiationService) wrapConflict(current *models.Negotiation, err error) error {
	if err != nil && err.Error() == utils.ErrRowVersionConflict.Error() {
		return utils.NewRowVersionConflictError(current)
	}
	return err
}

func (s *NegotiationService) notifyCounterparty(
	ctx context.Context,
	n *models.Negotiation,
	actor models.PartyType,
	notify func(*models.User),
) {
	counterpartID := n.BuyerID
	if actor == models.PartyBuyer {
		counterpartID = n.SellerID
	}
	u, err := s.userRepo.GetByID(ctx, counterpartID)
	if err != nil || u == nil {
		utils.Logger.Warnf("Could not load counterparty %s for notification", counterpartID)
		return
	}
	notify(u)
}

func (s *NegotiationService) buildDetails(
	ctx context.Context,
	n *models.Negotiation,
	viewer models.PartyType,
) (*dtos.NegotiationDetailsDTO, error) {
	p, err := s.property(ctx, n)
	if err != nil {
		return nil, err
	}

	counterpartID := n.BuyerID
	if viewer == models.PartyBuyer {
		counterpartID = n.SellerID
	}
	counterpart, err := s.userRepo.GetByID(ctx, counterpartID)
	if err != nil {
		return nil, err
	}

	// Inspection date renders in the property's zone, not the server's.
	loc := s.schedule.PropertyLocation(ctx, p)

	now := s.now()
	expired := IsExpired(n, now)
	var expiresAt *time.Time
	if !n.Terminal() {
		ea := ExpiresAt(n)
		expiresAt = &ea
	}

	dto := &dtos.NegotiationDetailsDTO{
		ID:              n.ID,
		Stage:           string(n.Stage),
		NegotiationType: string(n.NegotiationType),
		CurrentStep:     string(ResolveStep(n, viewer, now)),

		ViewerRole:          strings.ToLower(string(viewer)),
		PendingResponseFrom: strings.ToLower(string(n.PendingResponseFrom)),
		IsYourTurn:          !n.Terminal() && !expired && n.PendingResponseFrom == viewer,

		IsExpired: expired,
		ExpiresAt: expiresAt,

		NegotiationPrice:    n.NegotiationPrice,
		SellerCounterOffer:  n.SellerCounterOffer,
		CounterCount:        n.CounterCount,
		CounterLimitReached: n.CounterCount >= constants.MaxCounterRounds,
		MinAcceptableOffer:  p.Price * constants.MinCounterOfferRatio,

		LetterOfIntention: n.LetterOfIntention,
		LOIStatus:         string(n.LOIStatus),
		ChangeRequestNote: n.ChangeRequestNote,

		InspectionDate:    n.InspectionDate.In(loc).Format(constants.InspectionDateLayout),
		InspectionTime:    n.InspectionTime,
		DateTimeCountered: n.DateTimeCountered,

		CanGoBackToLOI:   CanGoBackToLOI(n, now),
		CanGoBackToPrice: CanGoBackToPrice(n, now),

		ReopenCount: n.ReopenCount,
		RowVersion:  n.RowVersion,

		Property: dtos.NegotiationPropertyDTO{
			PropertyID:   p.ID,
			Title:        p.Title,
			PropertyType: string(p.PropertyType),
			Price:        p.Price,
			Address:      p.Address,
			City:         p.City,
			State:        p.State,
			ThumbnailURL: p.ThumbnailURL,
		},

		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
	if counterpart != nil {
		dto.Counterparty = dtos.CounterpartyDTO{
			FullName: counterpart.FullName(),
			Role:     strings.ToLower(string(viewer.Other())),
		}
	}
	return dto, nil
}

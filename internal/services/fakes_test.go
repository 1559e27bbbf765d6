package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/surepeps/negotiation-service/internal/models"
)

// In-memory repositories mirroring the Postgres behavior the services
// depend on, including row_version conflict semantics.

type fakeNegotiationRepo struct {
	rows map[uuid.UUID]*models.Negotiation
	now  func() time.Time
}

func newFakeNegotiationRepo(now func() time.Time) *fakeNegotiationRepo {
	return &fakeNegotiationRepo{
		rows: make(map[uuid.UUID]*models.Negotiation),
		now:  now,
	}
}

func cloneNegotiation(n *models.Negotiation) *models.Negotiation {
	cp := *n
	if n.SellerCounterOffer != nil {
		v := *n.SellerCounterOffer
		cp.SellerCounterOffer = &v
	}
	if n.LetterOfIntention != nil {
		v := *n.LetterOfIntention
		cp.LetterOfIntention = &v
	}
	if n.ChangeRequestNote != nil {
		v := *n.ChangeRequestNote
		cp.ChangeRequestNote = &v
	}
	if n.ExpiryNotifiedAt != nil {
		v := *n.ExpiryNotifiedAt
		cp.ExpiryNotifiedAt = &v
	}
	return &cp
}

func (r *fakeNegotiationRepo) put(n *models.Negotiation) {
	r.rows[n.ID] = cloneNegotiation(n)
}

func (r *fakeNegotiationRepo) Create(ctx context.Context, n *models.Negotiation) error {
	cp := cloneNegotiation(n)
	cp.RowVersion = 1
	cp.CreatedAt = r.now()
	cp.UpdatedAt = r.now()
	r.rows[cp.ID] = cp
	return nil
}

func (r *fakeNegotiationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Negotiation, error) {
	n, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	return cloneNegotiation(n), nil
}

func (r *fakeNegotiationRepo) ListByUser(ctx context.Context, userID uuid.UUID, party models.PartyType) ([]*models.Negotiation, error) {
	var out []*models.Negotiation
	for _, n := range r.rows {
		if (party == models.PartyBuyer && n.BuyerID == userID) ||
			(party == models.PartySeller && n.SellerID == userID) {
			out = append(out, cloneNegotiation(n))
		}
	}
	return out, nil
}

// mutate applies fn under the version check, bumping row_version and
// updated_at exactly like the SQL does.
func (r *fakeNegotiationRepo) mutate(id uuid.UUID, expectedVersion int64, fn func(*models.Negotiation)) (*models.Negotiation, error) {
	n, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("no rows in result set")
	}
	if n.RowVersion != expectedVersion {
		return cloneNegotiation(n), fmt.Errorf("row_version_conflict")
	}
	fn(n)
	n.RowVersion++
	n.UpdatedAt = r.now()
	n.ExpiryNotifiedAt = nil
	return cloneNegotiation(n), nil
}

func (r *fakeNegotiationRepo) AcceptOfferAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, actor models.PartyType, inspectionDate time.Time, inspectionTime string, dateTimeCountered bool) (*models.Negotiation, error) {
	return r.mutate(id, expectedVersion, func(n *models.Negotiation) {
		n.Stage = models.StageInspection
		if n.NegotiationType == models.NegotiationTypeLOI {
			n.LOIStatus = models.LOIStatusAccepted
		}
		n.PendingResponseFrom = actor.Other()
		n.InspectionDate = inspectionDate
		n.InspectionTime = inspectionTime
		n.DateTimeCountered = dateTimeCountered
	})
}

func (r *fakeNegotiationRepo) CounterOfferAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, actor models.PartyType, price float64, inspectionDate time.Time, inspectionTime string, dateTimeCountered bool) (*models.Negotiation, error) {
	return r.mutate(id, expectedVersion, func(n *models.Negotiation) {
		if actor == models.PartySeller {
			n.SellerCounterOffer = &price
		} else {
			n.NegotiationPrice = price
		}
		n.CounterCount++
		n.PendingResponseFrom = actor.Other()
		n.InspectionDate = inspectionDate
		n.InspectionTime = inspectionTime
		n.DateTimeCountered = dateTimeCountered
	})
}

func (r *fakeNegotiationRepo) RejectAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, actor models.PartyType) (*models.Negotiation, error) {
	return r.mutate(id, expectedVersion, func(n *models.Negotiation) {
		n.Stage = models.StageCancelled
		if n.NegotiationType == models.NegotiationTypeLOI {
			n.LOIStatus = models.LOIStatusRejected
		}
	})
}

func (r *fakeNegotiationRepo) RequestChangesAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, note string) (*models.Negotiation, error) {
	return r.mutate(id, expectedVersion, func(n *models.Negotiation) {
		n.LOIStatus = models.LOIStatusChangesRequested
		n.ChangeRequestNote = &note
		n.PendingResponseFrom = models.PartyBuyer
	})
}

func (r *fakeNegotiationRepo) AttachLOIAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, url string) (*models.Negotiation, error) {
	return r.mutate(id, expectedVersion, func(n *models.Negotiation) {
		n.LetterOfIntention = &url
		n.LOIStatus = models.LOIStatusPending
		n.ChangeRequestNote = nil
		n.PendingResponseFrom = models.PartySeller
	})
}

func (r *fakeNegotiationRepo) UpdateDateTimeAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, inspectionDate time.Time, inspectionTime string, dateTimeCountered bool, nextTurn models.PartyType, newStage models.StageType) (*models.Negotiation, error) {
	return r.mutate(id, expectedVersion, func(n *models.Negotiation) {
		n.InspectionDate = inspectionDate
		n.InspectionTime = inspectionTime
		n.DateTimeCountered = dateTimeCountered
		n.PendingResponseFrom = nextTurn
		n.Stage = newStage
	})
}

func (r *fakeNegotiationRepo) ReopenAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64) (*models.Negotiation, error) {
	return r.mutate(id, expectedVersion, func(n *models.Negotiation) {
		n.ReopenCount++
	})
}

func (r *fakeNegotiationRepo) ListActivePendingBefore(ctx context.Context, cutoff time.Time) ([]*models.Negotiation, error) {
	var out []*models.Negotiation
	for _, n := range r.rows {
		if n.Terminal() || n.ExpiryNotifiedAt != nil {
			continue
		}
		if n.UpdatedAt.Before(cutoff) {
			out = append(out, cloneNegotiation(n))
		}
	}
	return out, nil
}

func (r *fakeNegotiationRepo) SetExpiryNotified(ctx context.Context, id uuid.UUID) error {
	if n, ok := r.rows[id]; ok {
		now := r.now()
		n.ExpiryNotifiedAt = &now
	}
	return nil
}

type fakePropertyRepo struct {
	rows map[uuid.UUID]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{rows: make(map[uuid.UUID]*models.Property)}
}

func (r *fakePropertyRepo) Create(ctx context.Context, p *models.Property) error {
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *fakePropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePropertyRepo) SetTimeZone(ctx context.Context, id uuid.UUID, tz string) error {
	if p, ok := r.rows[id]; ok {
		p.TimeZone = tz
	}
	return nil
}

type fakeUserRepo struct {
	rows map[uuid.UUID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{rows: make(map[uuid.UUID]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	cp := *u
	r.rows[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

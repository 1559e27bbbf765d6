package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/surepeps/negotiation-service/internal/models"
)

type NegotiationRepository interface {
	Create(ctx context.Context, n *models.Negotiation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Negotiation, error)
	ListByUser(ctx context.Context, userID uuid.UUID, party models.PartyType) ([]*models.Negotiation, error)

	// Atomic mutations. Each runs SELECT ... FOR UPDATE, verifies the caller's
	// expected row_version, applies the change and returns the fresh row.
	// A stale version returns the current row plus a row_version_conflict error.
	AcceptOfferAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, actor models.PartyType, inspectionDate time.Time, inspectionTime string, dateTimeCountered bool) (*models.Negotiation, error)
	CounterOfferAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, actor models.PartyType, price float64, inspectionDate time.Time, inspectionTime string, dateTimeCountered bool) (*models.Negotiation, error)
	RejectAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, actor models.PartyType) (*models.Negotiation, error)
	RequestChangesAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, note string) (*models.Negotiation, error)
	AttachLOIAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, url string) (*models.Negotiation, error)
	UpdateDateTimeAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64, inspectionDate time.Time, inspectionTime string, dateTimeCountered bool, nextTurn models.PartyType, newStage models.StageType) (*models.Negotiation, error)
	ReopenAtomic(ctx context.Context, id uuid.UUID, expectedVersion int64) (*models.Negotiation, error)

	// Expiry sweep support.
	ListActivePendingBefore(ctx context.Context, cutoff time.Time) ([]*models.Negotiation, error)
	SetExpiryNotified(ctx context.Context, id uuid.UUID) error
}

type negotiationRepo struct {
	db DB
}

func NewNegotiationRepository(db DB) NegotiationRepository {
	return &negotiationRepo{db: db}
}

func baseSelectNegotiation() string {
	return `
        SELECT
            id, property_id, buyer_id, seller_id,
            stage, negotiation_type, pending_response_from,
            negotiation_price, seller_counter_offer, counter_count,
            letter_of_intention, loi_status, change_request_note,
            inspection_date, inspection_time, date_time_countered,
            reopen_count, expiry_notified_at,
            row_version, created_at, updated_at
        FROM negotiations
    `
}

func scanNegotiation(row pgx.Row) (*models.Negotiation, error) {
	var n models.Negotiation
	var loiStatus *string
	err := row.Scan(
		&n.ID,
		&n.PropertyID,
		&n.BuyerID,
		&n.SellerID,
		&n.Stage,
		&n.NegotiationType,
		&n.PendingResponseFrom,
		&n.NegotiationPrice,
		&n.SellerCounterOffer,
		&n.CounterCount,
		&n.LetterOfIntention,
		&loiStatus,
		&n.ChangeRequestNote,
		&n.InspectionDate,
		&n.InspectionTime,
		&n.DateTimeCountered,
		&n.ReopenCount,
		&n.ExpiryNotifiedAt,
		&n.RowVersion,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if loiStatus != nil {
		n.LOIStatus = models.LOIStatusType(*loiStatus)
	}
	return &n, nil
}

func (r *negotiationRepo) Create(ctx context.Context, n *models.Negotiation) error {
	var loiStatus *string
	if n.LOIStatus != "" {
		s := string(n.LOIStatus)
		loiStatus = &s
	}
	_, err := r.db.Exec(ctx, `
        INSERT INTO negotiations (
            id, property_id, buyer_id, seller_id,
            stage, negotiation_type, pending_response_from,
            negotiation_price, seller_counter_offer, counter_count,
            letter_of_intention, loi_status, change_request_note,
            inspection_date, inspection_time, date_time_countered,
            reopen_count, created_at, updated_at, row_version
        ) VALUES (
            $1,$2,$3,$4,$5,$6,$7,$8,$9,0,$10,$11,NULL,$12,$13,FALSE,0,NOW(),NOW(),1
        )
    `,
		n.ID,
		n.PropertyID,
		n.BuyerID,
		n.SellerID,
		n.Stage,
		n.NegotiationType,
		n.PendingResponseFrom,
		n.NegotiationPrice,
		n.SellerCounterOffer,
		n.LetterOfIntention,
		loiStatus,
		n.InspectionDate,
		n.InspectionTime,
	)
	return err
}

func (r *negotiationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Negotiation, error) {
	row := r.db.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1", id)
	n, err := scanNegotiation(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func (r *negotiationRepo) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	party models.PartyType,
) ([]*models.Negotiation, error) {
	col := "buyer_id"
	if party == models.PartySeller {
		col = "seller_id"
	}
	rows, err := r.db.Query(ctx, baseSelectNegotiation()+
		" WHERE "+col+"=$1 ORDER BY updated_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Negotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// lockForUpdate loads the row inside the transaction and verifies the version.
func lockForUpdate(
	ctx context.Context,
	tx pgx.Tx,
	id uuid.UUID,
	expectedVersion int64,
) (*models.Negotiation, error) {
	row := tx.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1 FOR UPDATE", id)
	n, err := scanNegotiation(row)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, pgx.ErrNoRows
	}
	if n.RowVersion != expectedVersion {
		return n, fmt.Errorf("row_version_conflict")
	}
	return n, nil
}

func (r *negotiationRepo) AcceptOfferAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	actor models.PartyType,
	inspectionDate time.Time,
	inspectionTime string,
	dateTimeCountered bool,
) (*models.Negotiation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	n, err := lockForUpdate(ctx, tx, id, expectedVersion)
	if err != nil {
		return n, err
	}
	if n.Stage != models.StageNegotiation {
		return n, fmt.Errorf("cannot accept outside the negotiation stage")
	}

	loiStatus := n.LOIStatus
	if n.NegotiationType == models.NegotiationTypeLOI {
		loiStatus = models.LOIStatusAccepted
	}

	_, err = tx.Exec(ctx, `
        UPDATE negotiations
        SET stage='INSPECTION',
            loi_status=$1,
            pending_response_from=$2,
            inspection_date=$3,
            inspection_time=$4,
            date_time_countered=$5,
            expiry_notified_at=NULL,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$6
    `, nullableLOIStatus(loiStatus), actor.Other(), inspectionDate, inspectionTime, dateTimeCountered, id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1", id)
	return scanNegotiation(newRow)
}

func (r *negotiationRepo) CounterOfferAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	actor models.PartyType,
	price float64,
	inspectionDate time.Time,
	inspectionTime string,
	dateTimeCountered bool,
) (*models.Negotiation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	n, err := lockForUpdate(ctx, tx, id, expectedVersion)
	if err != nil {
		return n, err
	}
	if n.Stage != models.StageNegotiation {
		return n, fmt.Errorf("cannot counter outside the negotiation stage")
	}

	priceCol := "negotiation_price"
	if actor == models.PartySeller {
		priceCol = "seller_counter_offer"
	}

	_, err = tx.Exec(ctx, `
        UPDATE negotiations
        SET `+priceCol+`=$1,
            counter_count=counter_count+1,
            pending_response_from=$2,
            inspection_date=$3,
            inspection_time=$4,
            date_time_countered=$5,
            expiry_notified_at=NULL,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$6
    `, price, actor.Other(), inspectionDate, inspectionTime, dateTimeCountered, id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1", id)
	return scanNegotiation(newRow)
}

func (r *negotiationRepo) RejectAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	actor models.PartyType,
) (*models.Negotiation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	n, err := lockForUpdate(ctx, tx, id, expectedVersion)
	if err != nil {
		return n, err
	}
	if n.Terminal() {
		return n, fmt.Errorf("cannot reject a terminal negotiation")
	}

	loiStatus := n.LOIStatus
	if n.NegotiationType == models.NegotiationTypeLOI {
		loiStatus = models.LOIStatusRejected
	}

	_, err = tx.Exec(ctx, `
        UPDATE negotiations
        SET stage='CANCELLED',
            loi_status=$1,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, nullableLOIStatus(loiStatus), id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1", id)
	return scanNegotiation(newRow)
}

func (r *negotiationRepo) RequestChangesAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	note string,
) (*models.Negotiation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	n, err := lockForUpdate(ctx, tx, id, expectedVersion)
	if err != nil {
		return n, err
	}
	if n.Stage != models.StageNegotiation {
		return n, fmt.Errorf("cannot request changes outside the negotiation stage")
	}

	_, err = tx.Exec(ctx, `
        UPDATE negotiations
        SET loi_status='CHANGES_REQUESTED',
            change_request_note=$1,
            pending_response_from='BUYER',
            expiry_notified_at=NULL,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, note, id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1", id)
	return scanNegotiation(newRow)
}

func (r *negotiationRepo) AttachLOIAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	url string,
) (*models.Negotiation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	n, err := lockForUpdate(ctx, tx, id, expectedVersion)
	if err != nil {
		return n, err
	}
	if n.Stage != models.StageNegotiation {
		return n, fmt.Errorf("cannot attach an LOI outside the negotiation stage")
	}

	_, err = tx.Exec(ctx, `
        UPDATE negotiations
        SET letter_of_intention=$1,
            loi_status='PENDING',
            change_request_note=NULL,
            pending_response_from='SELLER',
            expiry_notified_at=NULL,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$2
    `, url, id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1", id)
	return scanNegotiation(newRow)
}

func (r *negotiationRepo) UpdateDateTimeAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
	inspectionDate time.Time,
	inspectionTime string,
	dateTimeCountered bool,
	nextTurn models.PartyType,
	newStage models.StageType,
) (*models.Negotiation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	n, err := lockForUpdate(ctx, tx, id, expectedVersion)
	if err != nil {
		return n, err
	}
	if n.Terminal() {
		return n, fmt.Errorf("cannot reschedule a terminal negotiation")
	}

	_, err = tx.Exec(ctx, `
        UPDATE negotiations
        SET inspection_date=$1,
            inspection_time=$2,
            date_time_countered=$3,
            pending_response_from=$4,
            stage=$5,
            expiry_notified_at=NULL,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$6
    `, inspectionDate, inspectionTime, dateTimeCountered, nextTurn, newStage, id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1", id)
	return scanNegotiation(newRow)
}

func (r *negotiationRepo) ReopenAtomic(
	ctx context.Context,
	id uuid.UUID,
	expectedVersion int64,
) (*models.Negotiation, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	n, err := lockForUpdate(ctx, tx, id, expectedVersion)
	if err != nil {
		return n, err
	}
	if n.Terminal() {
		return n, fmt.Errorf("cannot reopen a terminal negotiation")
	}

	// Resetting updated_at restarts the response window.
	_, err = tx.Exec(ctx, `
        UPDATE negotiations
        SET reopen_count=reopen_count+1,
            expiry_notified_at=NULL,
            row_version=row_version+1, updated_at=NOW()
        WHERE id=$1
    `, id)
	if err != nil {
		return nil, err
	}

	newRow := tx.QueryRow(ctx, baseSelectNegotiation()+" WHERE id=$1", id)
	return scanNegotiation(newRow)
}

func (r *negotiationRepo) ListActivePendingBefore(
	ctx context.Context,
	cutoff time.Time,
) ([]*models.Negotiation, error) {
	rows, err := r.db.Query(ctx, baseSelectNegotiation()+`
        WHERE stage IN ('NEGOTIATION','INSPECTION')
          AND updated_at < $1
          AND expiry_notified_at IS NULL
        ORDER BY updated_at
    `, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Negotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *negotiationRepo) SetExpiryNotified(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE negotiations SET expiry_notified_at=NOW() WHERE id=$1
    `, id)
	return err
}

func nullableLOIStatus(s models.LOIStatusType) *string {
	if s == "" {
		return nil
	}
	v := string(s)
	return &v
}

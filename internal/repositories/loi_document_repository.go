package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/surepeps/negotiation-service/internal/models"
)

type LOIDocumentRepository interface {
	Create(ctx context.Context, d *models.LOIDocument) error
	ListByNegotiation(ctx context.Context, negotiationID uuid.UUID) ([]*models.LOIDocument, error)
}

type loiDocumentRepo struct {
	db DB
}

func NewLOIDocumentRepository(db DB) LOIDocumentRepository {
	return &loiDocumentRepo{db: db}
}

func scanLOIDocument(row pgx.Row) (*models.LOIDocument, error) {
	var d models.LOIDocument
	err := row.Scan(
		&d.ID,
		&d.NegotiationID,
		&d.UploadedBy,
		&d.FileName,
		&d.ContentType,
		&d.SizeBytes,
		&d.URL,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *loiDocumentRepo) Create(ctx context.Context, d *models.LOIDocument) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO loi_documents (
            id, negotiation_id, uploaded_by, file_name,
            content_type, size_bytes, url, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,NOW())
    `,
		d.ID,
		d.NegotiationID,
		d.UploadedBy,
		d.FileName,
		d.ContentType,
		d.SizeBytes,
		d.URL,
	)
	return err
}

func (r *loiDocumentRepo) ListByNegotiation(
	ctx context.Context,
	negotiationID uuid.UUID,
) ([]*models.LOIDocument, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, negotiation_id, uploaded_by, file_name,
               content_type, size_bytes, url, created_at
        FROM loi_documents
        WHERE negotiation_id=$1
        ORDER BY created_at DESC
    `, negotiationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.LOIDocument
	for rows.Next() {
		d, err := scanLOIDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

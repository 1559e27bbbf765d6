package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/surepeps/negotiation-service/internal/models"
)

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	SetTimeZone(ctx context.Context, id uuid.UUID, tz string) error
}

type propertyRepo struct {
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	return &propertyRepo{db: db}
}

func baseSelectProperty() string {
	return `
        SELECT
            id, owner_id, title, property_type, price,
            address, city, state, timezone, latitude, longitude,
            thumbnail_url, is_demo, created_at
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Title,
		&p.PropertyType,
		&p.Price,
		&p.Address,
		&p.City,
		&p.State,
		&p.TimeZone,
		&p.Latitude,
		&p.Longitude,
		&p.ThumbnailURL,
		&p.IsDemo,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO properties (
            id, owner_id, title, property_type, price,
            address, city, state, timezone, latitude, longitude,
            thumbnail_url, is_demo, created_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,NOW())
    `,
		p.ID,
		p.OwnerID,
		p.Title,
		p.PropertyType,
		p.Price,
		p.Address,
		p.City,
		p.State,
		p.TimeZone,
		p.Latitude,
		p.Longitude,
		p.ThumbnailURL,
		p.IsDemo,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	row := r.db.QueryRow(ctx, baseSelectProperty()+" WHERE id=$1", id)
	p, err := scanProperty(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// SetTimeZone backfills a timezone resolved from the property coordinates.
func (r *propertyRepo) SetTimeZone(ctx context.Context, id uuid.UUID, tz string) error {
	_, err := r.db.Exec(ctx, `UPDATE properties SET timezone=$1 WHERE id=$2`, tz, id)
	return err
}

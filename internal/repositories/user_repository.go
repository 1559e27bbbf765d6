package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/surepeps/negotiation-service/internal/models"
	"github.com/surepeps/negotiation-service/internal/utils"
)

// UserRepository reads negotiation participants. Email and phone are stored
// encrypted; the repo decrypts on the way out and uses derived lookup keys
// for exact-match queries.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepo struct {
	db            DB
	encryptionKey []byte
}

func NewUserRepository(db DB, encryptionKey []byte) UserRepository {
	return &userRepo{db: db, encryptionKey: encryptionKey}
}

func baseSelectUser() string {
	return `
        SELECT
            id, email_encrypted, phone_encrypted,
            first_name, last_name,
            account_type, account_status,
            row_version, created_at, updated_at
        FROM users
    `
}

func (r *userRepo) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var emailEnc, phoneEnc string
	err := row.Scan(
		&u.ID,
		&emailEnc,
		&phoneEnc,
		&u.FirstName,
		&u.LastName,
		&u.AccountType,
		&u.AccountStatus,
		&u.RowVersion,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if u.Email, err = utils.Decrypt(r.encryptionKey, emailEnc); err != nil {
		return nil, err
	}
	if u.PhoneNumber, err = utils.Decrypt(r.encryptionKey, phoneEnc); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	emailEnc, err := utils.Encrypt(r.encryptionKey, u.Email)
	if err != nil {
		return err
	}
	phoneEnc, err := utils.Encrypt(r.encryptionKey, u.PhoneNumber)
	if err != nil {
		return err
	}
	emailKey := utils.DeriveLookupKey(r.encryptionKey, u.Email)

	_, err = r.db.Exec(ctx, `
        INSERT INTO users (
            id, email_encrypted, email_lookup_key, phone_encrypted,
            first_name, last_name, account_type, account_status,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW(),NOW(),1)
    `,
		u.ID,
		emailEnc,
		emailKey,
		phoneEnc,
		u.FirstName,
		u.LastName,
		u.AccountType,
		u.AccountStatus,
	)
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE id=$1", id)
	u, err := r.scanUser(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	key := utils.DeriveLookupKey(r.encryptionKey, email)
	row := r.db.QueryRow(ctx, baseSelectUser()+" WHERE email_lookup_key=$1", key)
	u, err := r.scanUser(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

package repository

import (
	"context"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository interface {
	// Create stores the account and its profile together.
	Create(ctx context.Context, user *domain.User, profile *domain.Profile) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type PGUserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) UserRepository {
	return &PGUserRepository{db: db}
}

func (r *PGUserRepository) Create(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storeErr("begin signup", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id, created_at`,
		user.Email, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return storeErr("insert user", err)
	}

	if profile != nil {
		profile.ID = user.ID
		err = tx.QueryRow(ctx, `INSERT INTO profiles (id, full_name, phone_number, birth_date)
			VALUES ($1, $2, $3, $4) RETURNING created_at, updated_at`,
			profile.ID, profile.FullName, profile.PhoneNumber, profile.BirthDate).
			Scan(&profile.CreatedAt, &profile.UpdatedAt)
		if err != nil {
			return storeErr("insert profile", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit signup", err)
	}
	return nil
}

func (r *PGUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

func (r *PGUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (r *PGUserRepository) get(ctx context.Context, query string, arg string) (*domain.User, error) {
	var u domain.User
	if err := r.db.QueryRow(ctx, query, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, storeErr("load user", err)
	}
	return &u, nil
}

var _ UserRepository = (*PGUserRepository)(nil)

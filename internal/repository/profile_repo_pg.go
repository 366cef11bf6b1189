package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	// Update applies a partial update, creating an empty profile first when
	// the user has none.
	Update(ctx context.Context, userID string, update domain.ProfileUpdate, now time.Time) (*domain.Profile, error)
}

type PGProfileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) ProfileRepository {
	return &PGProfileRepository{db: db}
}

const profileColumns = `id, full_name, phone_number, birth_date, created_at, updated_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	if err := row.Scan(&p.ID, &p.FullName, &p.PhoneNumber, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, userID))
	if err != nil {
		return nil, storeErr("load profile", err)
	}
	return p, nil
}

func (r *PGProfileRepository) Update(ctx context.Context, userID string, update domain.ProfileUpdate, now time.Time) (*domain.Profile, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storeErr("begin profile update", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `INSERT INTO profiles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID); err != nil {
		return nil, storeErr("ensure profile", err)
	}
	p, err := scanProfile(tx.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, userID))
	if err != nil {
		return nil, storeErr("lock profile", err)
	}
	p.Apply(update, now)

	if _, err := tx.Exec(ctx, `UPDATE profiles SET full_name = $2, phone_number = $3, birth_date = $4, updated_at = $5
		WHERE id = $1`, p.ID, p.FullName, p.PhoneNumber, p.BirthDate, p.UpdatedAt); err != nil {
		return nil, storeErr("update profile", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit profile update", err)
	}
	return p, nil
}

var _ ProfileRepository = (*PGProfileRepository)(nil)

package repository

import (
	"context"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CityRepository interface {
	List(ctx context.Context) ([]domain.City, error)
	Upsert(ctx context.Context, cities []domain.City) error
}

type PGCityRepository struct {
	db *pgxpool.Pool
}

func NewCityRepository(db *pgxpool.Pool) CityRepository {
	return &PGCityRepository{db: db}
}

func (r *PGCityRepository) List(ctx context.Context) ([]domain.City, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, code, country, created_at FROM cities ORDER BY name`)
	if err != nil {
		return nil, storeErr("list cities", err)
	}
	cities, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.City])
	if err != nil {
		return nil, storeErr("list cities", err)
	}
	return cities, nil
}

func (r *PGCityRepository) Upsert(ctx context.Context, cities []domain.City) error {
	batch := &pgx.Batch{}
	for _, c := range cities {
		if !domain.IsCityCode(c.Code) {
			return domain.NewValidationError("code", c.Code+" is not a 3-letter city code")
		}
		batch.Queue(`INSERT INTO cities (name, code, country) VALUES ($1, $2, $3)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, country = EXCLUDED.country`,
			c.Name, c.Code, c.Country)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return storeErr("upsert cities", err)
	}
	return nil
}

var _ CityRepository = (*PGCityRepository)(nil)

package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/repository"
	"github.com/google/uuid"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, user *domain.User, profile *domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, ok := r.s.emails[key]; ok {
		return domain.ErrEmailTaken
	}
	now := r.s.timestamp()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	stored := *user
	r.s.users[user.ID] = &stored
	r.s.emails[key] = user.ID

	if profile != nil {
		profile.ID = user.ID
		profile.CreatedAt = now
		profile.UpdatedAt = now
		p := *profile
		r.s.profiles[user.ID] = &p
	}
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := *r.s.users[id]
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

type ProfileRepository struct {
	s *Store
}

func (r *ProfileRepository) Get(_ context.Context, userID string) (*domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (r *ProfileRepository) Update(_ context.Context, userID string, update domain.ProfileUpdate, now time.Time) (*domain.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return nil, domain.ErrNotFound
	}
	p, ok := r.s.profiles[userID]
	if !ok {
		p = &domain.Profile{ID: userID, CreatedAt: now}
		r.s.profiles[userID] = p
	}
	p.Apply(update, now)
	out := *p
	return &out, nil
}

type CityRepository struct {
	s *Store
}

func (r *CityRepository) List(_ context.Context) ([]domain.City, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cities := make([]domain.City, 0, len(r.s.cities))
	for _, c := range r.s.cities {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })
	return cities, nil
}

func (r *CityRepository) Upsert(_ context.Context, cities []domain.City) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range cities {
		if !domain.IsCityCode(c.Code) {
			return domain.NewValidationError("code", c.Code+" is not a 3-letter city code")
		}
		if existing, ok := r.s.cities[c.Code]; ok {
			existing.Name, existing.Country = c.Name, c.Country
			r.s.cities[c.Code] = existing
			continue
		}
		c.ID = uuid.NewString()
		c.CreatedAt = r.s.timestamp()
		r.s.cities[c.Code] = c
	}
	return nil
}

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.ProfileRepository = (*ProfileRepository)(nil)
	_ repository.CityRepository    = (*CityRepository)(nil)
)

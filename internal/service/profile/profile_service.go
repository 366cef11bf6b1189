package profile

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/Domenick1991/aeroluxe/internal/repository"
	"go.uber.org/zap"
)

type ProfileUseCase interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error)
}

type ProfileService struct {
	repo repository.ProfileRepository
	now  func() time.Time
	log  *zap.Logger
}

func NewProfileService(repo repository.ProfileRepository, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{repo: repo, now: time.Now, log: log}
}

// Get returns the user's profile. Accounts created before profiles existed
// get an empty one.
func (s *ProfileService) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.Profile{ID: userID}, nil
	}
	return p, err
}

func (s *ProfileService) Update(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	if update.Empty() {
		return nil, domain.NewValidationError("", "nothing to update")
	}
	now := s.now().UTC()
	if err := update.Validate(now); err != nil {
		return nil, err
	}
	p, err := s.repo.Update(ctx, userID, update, now)
	if err != nil {
		return nil, err
	}
	s.log.Info("profile updated", zap.String("user_id", userID))
	return p, nil
}

var _ ProfileUseCase = (*ProfileService)(nil)

// Package identity signs users up and in and turns bearer tokens into user
// ids. Tokens are HS256 JWTs carrying a unique id so sign-out can revoke them
// before they expire.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Domenick1991/aeroluxe/config"
	"github.com/Domenick1991/aeroluxe/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	// bcrypt ignores input past 72 bytes.
	maxPasswordLen = 72
)

type Provider interface {
	SignUp(ctx context.Context, in SignUpInput) (*domain.Session, error)
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*Principal, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

type UserStore interface {
	Create(ctx context.Context, user *domain.User, profile *domain.Profile) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type Revocations interface {
	RevokeSession(ctx context.Context, tokenID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
}

type SignUpInput struct {
	Email       string
	Password    string
	FullName    *string
	PhoneNumber *string
	BirthDate   *time.Time
}

// Principal is the authenticated caller behind a token.
type Principal struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	users   UserStore
	revoked Revocations
	secret  []byte
	issuer  string
	ttl     time.Duration
	cost    int
	now     func() time.Time
	log     *zap.Logger
}

func NewService(users UserStore, revoked Revocations, cfg config.AuthConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:   users,
		revoked: revoked,
		secret:  []byte(cfg.JWTSecret),
		issuer:  cfg.Issuer,
		ttl:     cfg.TokenTTL,
		cost:    cfg.BcryptCost,
		now:     time.Now,
		log:     log,
	}
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", domain.NewValidationError("email", "must be a valid email address")
	}
	return email, nil
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*domain.Session, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < minPasswordLen || len(in.Password) > maxPasswordLen {
		return nil, domain.NewValidationError("password", fmt.Sprintf("must be %d to %d characters", minPasswordLen, maxPasswordLen))
	}
	update := domain.ProfileUpdate{FullName: in.FullName, PhoneNumber: in.PhoneNumber, BirthDate: in.BirthDate}
	if err := update.Validate(s.now()); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{Email: email, PasswordHash: string(hash)}
	profile := &domain.Profile{FullName: update.FullName, PhoneNumber: update.PhoneNumber, BirthDate: update.BirthDate}
	if err := s.users.Create(ctx, user, profile); err != nil {
		return nil, err
	}
	s.log.Info("user signed up", zap.String("user_id", user.ID))
	return s.issue(user)
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidCredential
	}
	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredential
	}
	return s.issue(user)
}

func (s *Service) issue(user *domain.User) (*domain.Session, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.Session{AccessToken: signed, TokenType: "Bearer", ExpiresAt: exp, UserID: user.ID}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthRequired, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrAuthRequired)
	}
	return claims, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, domain.ErrAuthRequired
	}
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revoked.IsSessionRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session signed out", domain.ErrAuthRequired)
	}
	return &Principal{UserID: claims.Subject, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	p, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, p.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", domain.ErrAuthRequired)
	}
	return user, err
}

// SignOut revokes the token for the rest of its lifetime.
func (s *Service) SignOut(ctx context.Context, token string) error {
	p, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}
	if err := s.revoked.RevokeSession(ctx, p.TokenID, p.ExpiresAt.Sub(s.now())); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.log.Info("user signed out", zap.String("user_id", p.UserID))
	return nil
}

var _ Provider = (*Service)(nil)

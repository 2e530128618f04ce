package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"anoa.com/pengaduan/internal/entity"
	"anoa.com/pengaduan/internal/modules/token/repository"
	"anoa.com/pengaduan/pkg/apperror"
	"anoa.com/pengaduan/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tokenName = "auth_token"

// Identity is the caller a bearer token resolves to.
type Identity struct {
	UserID  uint
	TokenID uuid.UUID
}

type Service interface {
	// Issue persists a new token row for user and returns the signed bearer.
	Issue(ctx context.Context, user *entity.User) (string, error)
	// Resolve verifies a bearer and returns its identity. Revoked, expired and
	// malformed tokens all yield apperror.ErrUnauthorized.
	Resolve(ctx context.Context, bearer string) (*Identity, error)
	// Revoke deletes exactly one token.
	Revoke(ctx context.Context, tokenID uuid.UUID) error
	// PruneExpired deletes expired token rows and reports how many went.
	PruneExpired(ctx context.Context) (int64, error)
}

type service struct {
	repo   repository.TokenRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService builds the token service. ttl <= 0 issues tokens that stay
// valid until revoked.
func NewService(repo repository.TokenRepository, secret string, ttl time.Duration) Service {
	return &service{
		repo:   repo,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *service) Issue(ctx context.Context, user *entity.User) (string, error) {
	now := s.now()

	row := &entity.AuthToken{
		TokenID: uuid.New(),
		UserID:  user.ID,
		Name:    tokenName,
	}

	claims := jwt.RegisteredClaims{
		ID:       row.TokenID.String(),
		Subject:  strconv.FormatUint(uint64(user.ID), 10),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.ttl > 0 {
		expiresAt := now.Add(s.ttl)
		row.ExpiresAt = &expiresAt
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.repo.Create(ctx, row); err != nil {
		return "", fmt.Errorf("failed to persist token: %w", err)
	}

	return signed, nil
}

func (s *service) Resolve(ctx context.Context, bearer string) (*Identity, error) {
	if bearer == "" {
		return nil, apperror.ErrUnauthorized
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(bearer, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return nil, apperror.ErrUnauthorized
	}

	tokenID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, apperror.ErrUnauthorized
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, apperror.ErrUnauthorized
	}

	row, err := s.repo.FindByTokenID(ctx, tokenID, uint(userID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	now := s.now()
	if row.ExpiresAt != nil && !now.Before(*row.ExpiresAt) {
		return nil, apperror.ErrUnauthorized
	}

	if err := s.repo.TouchLastUsed(ctx, row.ID, now); err != nil {
		logger.Named("token").Warn("failed to update last_used_at",
			zap.Uint("token_row", row.ID),
			zap.Error(err),
		)
	}

	return &Identity{UserID: row.UserID, TokenID: row.TokenID}, nil
}

func (s *service) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	if _, err := s.repo.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *service) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune tokens: %w", err)
	}
	return n, nil
}

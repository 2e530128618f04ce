package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"anoa.com/pengaduan/internal/entity"
	tokenService "anoa.com/pengaduan/internal/modules/token/service"
	"anoa.com/pengaduan/internal/modules/user/dto"
	"anoa.com/pengaduan/internal/modules/user/repository"
	"anoa.com/pengaduan/pkg/apperror"
	"anoa.com/pengaduan/pkg/logger"
	"anoa.com/pengaduan/pkg/ratelimiter"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, input dto.LoginInput, clientIP string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, tokenID uuid.UUID) error
	Me(ctx context.Context, userID uint) (*entity.User, error)
}

type authService struct {
	repo     repository.UserRepository
	tokens   tokenService.Service
	limiter  ratelimiter.Limiter
	log      *zap.Logger
	dummyPwd []byte
}

func NewAuthService(repo repository.UserRepository, tokens tokenService.Service, limiter ratelimiter.Limiter) AuthService {
	// Compared against when the identifier matches nobody, so both failure
	// paths cost one bcrypt comparison.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("pengaduan-dummy-password"), bcrypt.DefaultCost)

	return &authService{
		repo:     repo,
		tokens:   tokens,
		limiter:  limiter,
		log:      logger.Named("auth"),
		dummyPwd: dummy,
	}
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput, clientIP string) (*dto.LoginResponse, error) {
	identifier := strings.TrimSpace(input.Email)

	verr := apperror.NewValidationError()
	if identifier == "" {
		verr.Add("email", "Email/Username wajib diisi")
	}
	if strings.TrimSpace(input.Password) == "" {
		verr.Add("password", "Password wajib diisi")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	throttleKey := strings.ToLower(identifier) + "|" + clientIP
	if err := s.checkThrottle(ctx, throttleKey); err != nil {
		return nil, err
	}

	user, err := s.repo.FindByIdentifier(ctx, identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyPwd, []byte(input.Password))
		s.recordFailure(ctx, throttleKey)
		return nil, apperror.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordFailure(ctx, throttleKey)
		return nil, apperror.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Clear(ctx, throttleKey); err != nil {
			s.log.Warn("failed to clear login throttle", zap.Error(err))
		}
	}

	token, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Status:  true,
		Message: "Login berhasil.",
		User:    dto.NewUserSummary(user),
		Token:   token,
	}, nil
}

func (s *authService) Logout(ctx context.Context, tokenID uuid.UUID) error {
	return s.tokens.Revoke(ctx, tokenID)
}

func (s *authService) Me(ctx context.Context, userID uint) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// The token outlived its user.
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// checkThrottle fails open: a limiter outage must not lock everyone out.
func (s *authService) checkThrottle(ctx context.Context, key string) error {
	if s.limiter == nil {
		return nil
	}

	locked, retryAfter, err := s.limiter.TooManyAttempts(ctx, key)
	if err != nil {
		s.log.Warn("login throttle check failed", zap.Error(err))
		return nil
	}
	if !locked {
		return nil
	}

	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return &ratelimiter.RateLimitError{
		Message:    fmt.Sprintf("Terlalu banyak percobaan login. Silakan coba lagi dalam %d detik.", seconds),
		RetryAfter: retryAfter,
	}
}

func (s *authService) recordFailure(ctx context.Context, key string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Hit(ctx, key); err != nil {
		s.log.Warn("failed to record login attempt", zap.Error(err))
	}
}

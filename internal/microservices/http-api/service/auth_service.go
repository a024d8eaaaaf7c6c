package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"yamdb/internal/apperr"
	"yamdb/internal/cache"
	"yamdb/internal/config"
	"yamdb/internal/mailer"
	"yamdb/internal/middleware/auth"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"
	"yamdb/internal/permission"
	"yamdb/internal/shared"
)

// MaxCodeAttempts is how many wrong codes a pending confirmation code
// survives.
const MaxCodeAttempts = 5

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type AuthService interface {
	Signup(ctx context.Context, username, email string) (*models.User, error)
	Token(ctx context.Context, username, code string) (string, error)
	ValidateToken(tokenString string) (*shared.AuthClaims, error)
}

type authService struct {
	userRepo       repository.UserRepository
	sender         mailer.Sender
	store          cache.Store
	log            *slog.Logger
	jwtSecret      string
	accessTokenTTL time.Duration
	codeTTL        time.Duration
	resendCooldown time.Duration
	now            func() time.Time
}

func NewAuthService(
	userRepo repository.UserRepository,
	sender mailer.Sender,
	store cache.Store,
	cfg *config.Config,
	log *slog.Logger,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		sender:         sender,
		store:          store,
		log:            log,
		jwtSecret:      cfg.JWTSecret,
		accessTokenTTL: cfg.AccessTokenTTL,
		codeTTL:        cfg.ConfirmationCodeTTL,
		resendCooldown: cfg.SignupResendCooldown,
		now:            time.Now,
	}
}

// Signup registers a user, or reissues the code when the exact
// (username, email) pair is already registered, and mails a fresh
// confirmation code. The code replaces any earlier one.
func (s *authService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	email = strings.TrimSpace(email)

	var fe fieldErrors
	checkUsername(&fe, username)
	checkEmail(&fe, email)
	if err := fe.err(); err != nil {
		return nil, err
	}

	key := "signup:" + strings.ToLower(email)
	claimed := false
	if s.resendCooldown > 0 && s.store != nil {
		ok, err := s.store.Acquire(ctx, key, s.resendCooldown)
		switch {
		case err != nil:
			// a broken cooldown store must not block registration
			s.log.Warn("signup cooldown unavailable", slog.Any("error", err))
		case !ok:
			return nil, apperr.RateLimited("a confirmation code was sent recently, try again later")
		default:
			claimed = true
		}
	}

	user, err := s.issueCode(ctx, username, email)
	if err != nil {
		// only a delivered code starts the cooldown
		if claimed {
			if rerr := s.store.Release(ctx, key); rerr != nil {
				s.log.Warn("signup cooldown release failed", slog.Any("error", rerr))
			}
		}
		return nil, err
	}
	return user, nil
}

// issueCode finds or registers the user, stores a fresh code hash and
// mails the code.
func (s *authService) issueCode(ctx context.Context, username, email string) (*models.User, error) {
	user, err := s.userRepo.FindByUsernameAndEmail(ctx, username, email)
	switch {
	case err == nil:
		// existing pair, only the code changes
	case errors.Is(err, gorm.ErrRecordNotFound):
		if user, err = s.register(ctx, username, email); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Internal(err)
	}

	code, err := auth.GenerateCode()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	hash, err := auth.HashCode(code)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	issuedAt := s.now().UTC()
	if err := s.userRepo.Update(ctx, user.ID, map[string]any{
		"confirmation_code": hash,
		"code_issued_at":    issuedAt,
	}); err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	user.ConfirmationCode = hash
	user.CodeIssuedAt = &issuedAt
	// a new code gets a fresh attempt budget
	s.resetAttempts(ctx, user.ID)

	if err := s.sender.SendConfirmationCode(ctx, user.Email, user.Username, code); err != nil {
		s.log.Error("confirmation code delivery failed",
			slog.String("username", user.Username),
			slog.Any("error", err),
		)
		return nil, apperr.MailUnavailable(err)
	}
	return user, nil
}

func (s *authService) register(ctx context.Context, username, email string) (*models.User, error) {
	var fe fieldErrors
	if _, err := s.userRepo.FindByUsername(ctx, username); err == nil {
		fe.add("username", "a user with this username already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		fe.add("email", "a user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Role:     string(permission.RoleUser),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperr.FromStorage(err, "user")
	}
	s.log.Info("user registered", slog.String("username", username))
	return user, nil
}

// Token exchanges a confirmation code for an access token. Codes are single
// use and expire after the configured TTL.
func (s *authService) Token(ctx context.Context, username, code string) (string, error) {
	var fe fieldErrors
	if username == "" {
		fe.add("username", "username is required")
	}
	if code == "" {
		fe.add("confirmation_code", "confirmation_code is required")
	}
	if err := fe.err(); err != nil {
		return "", err
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", apperr.FromStorage(err, "user")
	}

	if user.ConfirmationCode == "" || user.CodeIssuedAt == nil {
		return "", apperr.InvalidCode()
	}
	if s.now().Sub(*user.CodeIssuedAt) > s.codeTTL {
		return "", apperr.InvalidCode()
	}
	if err := auth.VerifyCode(user.ConfirmationCode, code); err != nil {
		s.recordFailedAttempt(ctx, user)
		return "", apperr.InvalidCode()
	}

	consumed, err := s.userRepo.ClearConfirmationCode(ctx, user.ID, user.ConfirmationCode)
	if err != nil {
		return "", apperr.Internal(err)
	}
	if !consumed {
		return "", apperr.InvalidCode()
	}
	s.resetAttempts(ctx, user.ID)

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", apperr.Internal(err)
	}
	return token, nil
}

func attemptsKey(userID string) string {
	return "token:" + userID
}

// recordFailedAttempt counts a wrong code and burns the pending code once
// MaxCodeAttempts is reached, so it cannot be guessed.
func (s *authService) recordFailedAttempt(ctx context.Context, user *models.User) {
	if s.store == nil {
		return
	}
	n, err := s.store.Incr(ctx, attemptsKey(user.ID), s.codeTTL)
	if err != nil {
		s.log.Warn("confirmation attempt counter unavailable", slog.Any("error", err))
		return
	}
	if n < MaxCodeAttempts {
		return
	}
	if _, err := s.userRepo.ClearConfirmationCode(ctx, user.ID, user.ConfirmationCode); err != nil {
		s.log.Error("failed to invalidate confirmation code", slog.String("username", user.Username), slog.Any("error", err))
		return
	}
	s.log.Warn("confirmation code invalidated after too many attempts", slog.String("username", user.Username))
	s.resetAttempts(ctx, user.ID)
}

func (s *authService) resetAttempts(ctx context.Context, userID string) {
	if s.store == nil {
		return
	}
	if err := s.store.Reset(ctx, attemptsKey(userID)); err != nil {
		s.log.Warn("confirmation attempt counter reset failed", slog.Any("error", err))
	}
}

func (s *authService) generateAccessToken(user *models.User) (string, error) {
	now := s.now()
	claims := shared.AuthClaims{
		UserID:   user.ID,
		UserName: user.Username,
		Role:     user.Role,
		Type:     shared.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *authService) ValidateToken(tokenString string) (*shared.AuthClaims, error) {
	claims := &shared.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Type != shared.TokenTypeAccess || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

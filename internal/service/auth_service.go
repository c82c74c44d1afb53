package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"mailrelay/internal/apierr"
	"mailrelay/internal/model"
	"mailrelay/internal/util"
)

const verificationCodeTTL = 24 * time.Hour

type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	users         UserStore
	sessionSecret string
	logger        *zap.Logger
}

func NewAuthService(users UserStore, sessionSecret string, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:         users,
		sessionSecret: sessionSecret,
		logger:        logger,
	}
}

// Signup creates a new email-provider user with a pending
// verification code.
func (s *AuthService) Signup(ctx context.Context, name, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, apierr.BadRequest("Email already registered")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code := util.NewID("vrf")
	expires := time.Now().Add(verificationCodeTTL)

	u := &model.User{
		ID:                        util.NewID("usr"),
		Name:                      name,
		Email:                     email,
		PasswordHash:              hash,
		IsEnabled:                 true,
		AuthProvider:              model.AuthProviderEmail,
		VerificationCode:          &code,
		VerificationCodeExpiresAt: &expires,
	}

	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", u.ID))
	return u, nil
}

// Login checks credentials and returns a signed session token.
// Unknown email, bad password and disabled account all produce the
// same message.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apierr.Authentication("Invalid email or password")
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if !u.IsEnabled || !util.CheckPassword(password, u.PasswordHash) {
		return "", apierr.Authentication("Invalid email or password")
	}

	token, err := util.GenerateSessionToken(u.ID, s.sessionSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, nil
}

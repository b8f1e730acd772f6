package auth

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/mamadbah2/shopledger/internal/domain/models"
)

// UserStore is the account persistence contract the auth service needs.
type UserStore interface {
	InsertUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
}

// Service handles shop owner signup, login and profile lookup.
type Service struct {
	store  UserStore
	tokens *JWTManager
	logger *zap.Logger
}

// NewService wires a new auth service instance.
func NewService(store UserStore, tokens *JWTManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, logger: logger}
}

// Signup registers a new shop owner with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", models.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		ShopName:     req.ShopName,
		ShopAddress:  req.ShopAddress,
		PhoneNo:      req.PhoneNo,
	}
	if err := s.store.InsertUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

// Login verifies credentials and issues a signed token. The failure message
// is identical for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	user, err := s.store.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", nil, models.ErrAuthFailed
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", nil, models.ErrAuthFailed
	}

	token, err := s.tokens.Generate(user.ID.Hex(), user.Email)
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.ID.Hex()))
	return token, user, nil
}

// UserDetails returns the account profile without the password hash.
func (s *Service) UserDetails(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

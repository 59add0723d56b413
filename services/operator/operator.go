package operator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"oseplatform/database"
	operatorRepo "oseplatform/database/repository/operator"
	"oseplatform/models"
	"oseplatform/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// OperatorService authenticates back-office operators.
type OperatorService interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.Operator, error)
	Bootstrap(ctx context.Context, name, email, password string) error
}

// DefaultOperatorService is the production implementation.
type DefaultOperatorService struct {
	repo    operatorRepo.OperatorRepository
	tokens  *utils.TokenIssuer
	revoked utils.TokenRevoker
	logger  *zap.Logger
	cost    int
}

func NewDefaultOperatorService(repo operatorRepo.OperatorRepository, tokens *utils.TokenIssuer, revoked utils.TokenRevoker, logger *zap.Logger) (*DefaultOperatorService, error) {
	if repo == nil || tokens == nil || revoked == nil {
		return nil, fmt.Errorf("operator service initialization error: repository, token issuer and revoker are required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultOperatorService{
		repo:    repo,
		tokens:  tokens,
		revoked: revoked,
		logger:  logger,
		cost:    bcrypt.DefaultCost,
	}, nil
}

func (s *DefaultOperatorService) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	op, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		s.logger.Warn("login for unknown operator", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	if !op.Active {
		s.logger.Warn("login for inactive operator", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("wrong operator password", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateToken(op.ID, op.Name, op.Email)
	if err != nil {
		return nil, fmt.Errorf("Login: failed to sign token: %w", err)
	}
	s.logger.Info("operator logged in", zap.String("operatorId", op.ID))
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, Operator: *op}, nil
}

// Logout revokes the token until it would have expired.
func (s *DefaultOperatorService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return ErrUnauthorized
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if err := s.revoked.Revoke(ctx, utils.HashToken(token), ttl); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	s.logger.Info("operator logged out", zap.String("operatorId", claims.Subject))
	return nil
}

// Authenticate returns the operator a valid, non-revoked token belongs to.
func (s *DefaultOperatorService) Authenticate(ctx context.Context, token string) (*models.Operator, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	revoked, err := s.revoked.IsRevoked(ctx, utils.HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("Authenticate: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return &models.Operator{ID: claims.Subject, Name: claims.Name, Email: claims.Email, Active: true}, nil
}

// Bootstrap creates the operator when no operator with that email exists. An empty email is a no-op.
func (s *DefaultOperatorService) Bootstrap(ctx context.Context, name, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("Bootstrap: %w", err)
	}
	if password == "" {
		return fmt.Errorf("Bootstrap: password required for operator %s", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("Bootstrap: failed to hash password: %w", err)
	}
	if name == "" {
		name = email
	}
	op := &models.Operator{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
	}
	if err := s.repo.Create(ctx, op); err != nil {
		return fmt.Errorf("Bootstrap: %w", err)
	}
	s.logger.Info("bootstrap operator created", zap.String("email", email))
	return nil
}

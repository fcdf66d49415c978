package service

import (
	"context"
	"fmt"
	"time"

	"hedera-asset-gateway/internal/core/domain"
	"hedera-asset-gateway/internal/core/ports"
	"hedera-asset-gateway/pkg/apperror"

	"github.com/google/uuid"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo ports.UserRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
	}
}

// Register creates a new user account and returns a fresh bearer token.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.AuthToken, error) {
	existing, err := s.userRepo.GetByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("check duplicates: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateUser()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		FullName:     req.FullName,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create user: %w", err))
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID, user.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.AuthToken{Token: token, ExpiresAt: expiry}, nil
}

// Login validates credentials and returns a bearer token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (*ports.AuthToken, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	// Deactivated accounts get the same answer as bad credentials.
	if !user.Active {
		return nil, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID, user.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return &ports.AuthToken{Token: token, ExpiresAt: expiry}, nil
}

// ConnectWallet links an external Hedera account to the user. The link is
// informational: all ledger operations are signed by the shared operator
// identity regardless of linked wallets.
func (s *AuthServiceImpl) ConnectWallet(ctx context.Context, userID uuid.UUID, req ports.WalletConnectRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return apperror.ErrUnknownPrincipal()
	}
	if user.WalletConnected() {
		return apperror.Validation("wallet already connected")
	}

	if err := s.userRepo.ConnectWallet(ctx, userID, req.AccountID, req.PublicKey, time.Now().UTC()); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("connect wallet: %w", err))
	}

	return nil
}

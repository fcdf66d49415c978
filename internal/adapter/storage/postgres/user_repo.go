package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hedera-asset-gateway/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, email, password_hash, full_name, active,
	wallet_account_id, wallet_public_key, wallet_connected_at, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FullName, &u.Active,
		&u.WalletAccountID, &u.WalletPublicKey, &u.WalletConnectedAt, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, username, email, password_hash, full_name, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.FullName, u.Active, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID fetches a user by its UUID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// GetByUsernameOrEmail fetches a user matching either field, for duplicate
// checks at registration.
func (r *UserRepo) GetByUsernameOrEmail(ctx context.Context, username, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR email = $2`

	u, err := scanUser(r.pool.QueryRow(ctx, query, username, email))
	if err != nil {
		return nil, fmt.Errorf("get user by username or email: %w", err)
	}
	return u, nil
}

// ConnectWallet sets the wallet link fields for the user.
func (r *UserRepo) ConnectWallet(ctx context.Context, userID uuid.UUID, accountID, publicKey string, at time.Time) error {
	query := `UPDATE users
		SET wallet_account_id=$1, wallet_public_key=$2, wallet_connected_at=$3
		WHERE id=$4`

	_, err := r.pool.Exec(ctx, query, accountID, publicKey, at, userID)
	if err != nil {
		return fmt.Errorf("connect wallet: %w", err)
	}
	return nil
}

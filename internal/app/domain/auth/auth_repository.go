package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// RegisterParams carries the signup fields. Password must already be hashed.
type RegisterParams struct {
	Username       string
	Email          string
	HashedPassword string
	DisplayName    string
	PhoneNumber    string
	City           string
	Country        string
	Bio            string
}

// UpdateProfileParams carries the mutable profile fields.
type UpdateProfileParams struct {
	DisplayName *string
	AvatarURL   *string
	PhoneNumber *string
	City        *string
	Country     *string
	Bio         *string
}

type AuthRepo interface {
	// GetUserByEmail fetches user details needed for validation/token generation.
	GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	// GetUserByID fetches user details by ID.
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.UserAuth, error)
	// Register stores a new user with a HASHED password. Returns new user ID.
	Register(ctx context.Context, params RegisterParams) (uuid.UUID, error)
	// UpdatePassword updates the user's HASHED password.
	UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error
	// UsernameTaken reports whether a username exists, case-insensitively.
	UsernameTaken(ctx context.Context, username string) (bool, error)

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.UserProfile, error)

	// --- Refresh token handling ---
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (uuid.UUID, error)
	InvalidateAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error

	// --- Password reset ---
	CreatePasswordResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ConsumePasswordResetToken(ctx context.Context, token string) (uuid.UUID, error)
}

type PostgresAuthRepo struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewPostgresAuthRepo(pgpool *pgxpool.Pool, logger *zap.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	var user models.UserAuth
	query := `SELECT id, username, email, password_hash FROM users WHERE LOWER(email) = LOWER($1) AND is_active = TRUE`
	err := r.pgpool.QueryRow(ctx, query, email).Scan(&user.ID, &user.Username, &user.Email, &user.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, models.ErrNotFound)
		}
		r.logger.Error("Error fetching user by email", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("database error fetching user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.UserAuth, error) {
	var user models.UserAuth
	query := `SELECT id, username, email, password_hash FROM users WHERE id = $1 AND is_active = TRUE`
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(&user.ID, &user.Username, &user.Email, &user.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with ID %s not found: %w", userID, models.ErrNotFound)
		}
		r.logger.Error("Error fetching user by ID", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("database error fetching user by ID: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) Register(ctx context.Context, params RegisterParams) (uuid.UUID, error) {
	var userID uuid.UUID
	query := `INSERT INTO users (username, email, password_hash, display_name, phone_number, city, country, bio)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.pgpool.QueryRow(ctx, query,
		params.Username, params.Email, params.HashedPassword,
		params.DisplayName, params.PhoneNumber, params.City, params.Country, params.Bio,
	).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return uuid.Nil, fmt.Errorf("email or username already exists: %w", models.ErrConflict)
		}
		r.logger.Error("Error inserting user", zap.Error(err), zap.String("email", params.Email))
		return uuid.Nil, fmt.Errorf("database error registering user: %w", err)
	}

	r.logger.Info("User registered", zap.String("userID", userID.String()))
	return userID, nil
}

func (r *PostgresAuthRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, newHashedPassword string) error {
	query := `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2 AND is_active = TRUE`
	tag, err := r.pgpool.Exec(ctx, query, newHashedPassword, userID)
	if err != nil {
		r.logger.Error("Error updating password hash", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("database error updating password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %w", models.ErrNotFound)
	}
	return nil
}

func (r *PostgresAuthRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username) = LOWER($1))`
	if err := r.pgpool.QueryRow(ctx, query, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("database error checking username: %w", err)
	}
	return exists, nil
}

func (r *PostgresAuthRepo) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	var p models.UserProfile
	query := `SELECT id, username, email, display_name, avatar_url, phone_number, city, country, bio
	          FROM users WHERE id = $1 AND is_active = TRUE`
	err := r.pgpool.QueryRow(ctx, query, userID).Scan(
		&p.ID, &p.Username, &p.Email, &p.DisplayName, &p.AvatarURL,
		&p.PhoneNumber, &p.City, &p.Country, &p.Bio,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile for user %s not found: %w", userID, models.ErrNotFound)
		}
		r.logger.Error("Error fetching profile", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("database error fetching profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresAuthRepo) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.UserProfile, error) {
	query := `UPDATE users SET
	            display_name = COALESCE($2, display_name),
	            avatar_url   = COALESCE($3, avatar_url),
	            phone_number = COALESCE($4, phone_number),
	            city         = COALESCE($5, city),
	            country      = COALESCE($6, country),
	            bio          = COALESCE($7, bio),
	            updated_at   = NOW()
	          WHERE id = $1 AND is_active = TRUE`
	tag, err := r.pgpool.Exec(ctx, query, userID,
		params.DisplayName, params.AvatarURL, params.PhoneNumber,
		params.City, params.Country, params.Bio,
	)
	if err != nil {
		r.logger.Error("Error updating profile", zap.Error(err), zap.String("userID", userID.String()))
		return nil, fmt.Errorf("database error updating profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("user not found: %w", models.ErrNotFound)
	}
	return r.GetProfile(ctx, userID)
}

func (r *PostgresAuthRepo) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `INSERT INTO refresh_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.pgpool.Exec(ctx, query, userID, token, expiresAt); err != nil {
		r.logger.Error("Error storing refresh token", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("database error storing refresh token: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (uuid.UUID, error) {
	var userID uuid.UUID
	var expiresAt time.Time
	var revokedAt *time.Time

	query := `SELECT user_id, expires_at, revoked_at FROM refresh_tokens WHERE token = $1`
	err := r.pgpool.QueryRow(ctx, query, refreshToken).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("refresh token not found: %w", models.ErrUnauthenticated)
		}
		r.logger.Error("Error querying refresh token", zap.Error(err))
		return uuid.Nil, fmt.Errorf("database error validating refresh token: %w", err)
	}

	if revokedAt != nil {
		return uuid.Nil, fmt.Errorf("refresh token revoked: %w", models.ErrUnauthenticated)
	}
	if time.Now().After(expiresAt) {
		return uuid.Nil, fmt.Errorf("refresh token expired: %w", models.ErrUnauthenticated)
	}
	return userID, nil
}

func (r *PostgresAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`
	if _, err := r.pgpool.Exec(ctx, query, userID); err != nil {
		r.logger.Error("Error invalidating refresh tokens", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("database error invalidating refresh tokens: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) CreatePasswordResetToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	query := `INSERT INTO password_reset_tokens (user_id, token, expires_at) VALUES ($1, $2, $3)`
	if _, err := r.pgpool.Exec(ctx, query, userID, token, expiresAt); err != nil {
		r.logger.Error("Error storing password reset token", zap.Error(err), zap.String("userID", userID.String()))
		return fmt.Errorf("database error storing reset token: %w", err)
	}
	return nil
}

func (r *PostgresAuthRepo) ConsumePasswordResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	var userID uuid.UUID
	query := `UPDATE password_reset_tokens SET used_at = NOW()
	          WHERE token = $1 AND used_at IS NULL AND expires_at > NOW()
	          RETURNING user_id`
	err := r.pgpool.QueryRow(ctx, query, token).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("reset token invalid or expired: %w", models.ErrUnauthenticated)
		}
		r.logger.Error("Error consuming password reset token", zap.Error(err))
		return uuid.Nil, fmt.Errorf("database error consuming reset token: %w", err)
	}
	return userID, nil
}

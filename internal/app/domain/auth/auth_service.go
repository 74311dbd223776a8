package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/config"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/mail"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/middleware"
)

const resetTokenTTL = time.Hour

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignupInput carries the plain signup fields from the handler.
type SignupInput struct {
	Username    string
	Email       string
	Password    string
	DisplayName string
	PhoneNumber string
	City        string
	Country     string
	Bio         string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*models.UserProfile, error)
	Login(ctx context.Context, email, password string) (*TokenPair, *models.UserProfile, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.UserProfile, error)
	CheckUsername(ctx context.Context, username string) (bool, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type ServiceImpl struct {
	repo   AuthRepo
	mailer mail.Sender
	cfg    *config.Config
	logger *zap.Logger
}

var _ AuthService = (*ServiceImpl)(nil)

func NewAuthService(repo AuthRepo, mailer mail.Sender, cfg *config.Config, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:   repo,
		mailer: mailer,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *ServiceImpl) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SecretKey:       s.cfg.Auth.JWTSecret,
		TokenExpiration: s.cfg.Auth.TokenExpiration,
		Logger:          s.logger,
	}
}

func (s *ServiceImpl) Signup(ctx context.Context, in SignupInput) (*models.UserProfile, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Signup")
	defer span.End()

	l := s.logger.With(zap.String("method", "Signup"))

	if in.Username == "" || in.Email == "" {
		return nil, fmt.Errorf("username and email are required: %w", models.ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", models.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.repo.Register(ctx, RegisterParams{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: string(hash),
		DisplayName:    in.DisplayName,
		PhoneNumber:    in.PhoneNumber,
		City:           in.City,
		Country:        in.Country,
		Bio:            in.Bio,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Registration failed")
		return nil, err
	}

	l.Info("User signed up", zap.String("userID", userID.String()))
	return s.repo.GetProfile(ctx, userID)
}

func (s *ServiceImpl) Login(ctx context.Context, email, password string) (*TokenPair, *models.UserProfile, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.logger.Warn("Password mismatch during login", zap.String("email", email))
		return nil, nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthenticated)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}

	profile, err := s.repo.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return pair, profile, nil
}

func (s *ServiceImpl) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.repo.ValidateRefreshTokenAndGetUserID(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

func (s *ServiceImpl) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.repo.InvalidateAllUserRefreshTokens(ctx, userID)
}

func (s *ServiceImpl) GetProfile(ctx context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *ServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.UserProfile, error) {
	return s.repo.UpdateProfile(ctx, userID, params)
}

func (s *ServiceImpl) CheckUsername(ctx context.Context, username string) (bool, error) {
	taken, err := s.repo.UsernameTaken(ctx, username)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

// ForgotPassword creates a reset token and emails it. It intentionally does
// not reveal whether the email exists; the only caller-visible failure is a
// database error on token creation.
func (s *ServiceImpl) ForgotPassword(ctx context.Context, email string) error {
	l := s.logger.With(zap.String("method", "ForgotPassword"))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		l.Info("Password reset requested for unknown email")
		return nil
	}

	token, err := randomToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.repo.CreatePasswordResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, token)
	body := fmt.Sprintf("Hi %s,\n\nUse the link below to reset your GlobalTrotters password. It expires in one hour.\n\n%s\n", user.Username, link)
	if err := s.mailer.Send(ctx, user.Email, "Reset your password", body); err != nil {
		// Delivery failure is soft; the token stays valid and can be re-requested.
		l.Warn("Failed to deliver reset email", zap.Error(err))
	}
	return nil
}

func (s *ServiceImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters: %w", models.ErrValidation)
	}

	userID, err := s.repo.ConsumePasswordResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	// Force re-login everywhere after a reset.
	return s.repo.InvalidateAllUserRefreshTokens(ctx, userID)
}

func (s *ServiceImpl) issueTokens(ctx context.Context, user *models.UserAuth) (*TokenPair, error) {
	access, err := middleware.GenerateToken(s.jwtConfig(), user.ID.String(), user.Email, user.Username)
	if err != nil {
		return nil, err
	}

	refresh, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refresh, time.Now().Add(s.cfg.Auth.RefreshTTL)); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func randomToken(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

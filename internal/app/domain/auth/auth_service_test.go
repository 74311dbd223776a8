package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-globetrotters/internal/app/models"
	"github.com/FACorreiaa/go-globetrotters/internal/pkg/config"
)

type memUser struct {
	auth    models.UserAuth
	profile models.UserProfile
}

// memAuthRepo is an in-memory AuthRepo for service-level tests.
type memAuthRepo struct {
	users       map[uuid.UUID]*memUser
	refresh     map[string]uuid.UUID
	resetTokens map[string]uuid.UUID
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{
		users:       map[uuid.UUID]*memUser{},
		refresh:     map[string]uuid.UUID{},
		resetTokens: map[string]uuid.UUID{},
	}
}

func (m *memAuthRepo) GetUserByEmail(_ context.Context, email string) (*models.UserAuth, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.auth.Email, email) {
			return &u.auth, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
}

func (m *memAuthRepo) GetUserByID(_ context.Context, userID uuid.UUID) (*models.UserAuth, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return &u.auth, nil
}

func (m *memAuthRepo) Register(_ context.Context, params RegisterParams) (uuid.UUID, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.auth.Email, params.Email) {
			return uuid.Nil, fmt.Errorf("email taken: %w", models.ErrConflict)
		}
	}
	id := uuid.New()
	m.users[id] = &memUser{
		auth: models.UserAuth{ID: id, Username: params.Username, Email: params.Email, Password: params.HashedPassword},
		profile: models.UserProfile{
			ID:          id,
			Username:    params.Username,
			Email:       params.Email,
			DisplayName: params.DisplayName,
			City:        params.City,
			Country:     params.Country,
			Bio:         params.Bio,
		},
	}
	return id, nil
}

func (m *memAuthRepo) UpdatePassword(_ context.Context, userID uuid.UUID, newHashedPassword string) error {
	u, ok := m.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	u.auth.Password = newHashedPassword
	return nil
}

func (m *memAuthRepo) UsernameTaken(_ context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.auth.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAuthRepo) GetProfile(_ context.Context, userID uuid.UUID) (*models.UserProfile, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	return &u.profile, nil
}

func (m *memAuthRepo) UpdateProfile(_ context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.UserProfile, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if params.DisplayName != nil {
		u.profile.DisplayName = *params.DisplayName
	}
	if params.City != nil {
		u.profile.City = *params.City
	}
	return &u.profile, nil
}

func (m *memAuthRepo) StoreRefreshToken(_ context.Context, userID uuid.UUID, token string, _ time.Time) error {
	m.refresh[token] = userID
	return nil
}

func (m *memAuthRepo) ValidateRefreshTokenAndGetUserID(_ context.Context, refreshToken string) (uuid.UUID, error) {
	id, ok := m.refresh[refreshToken]
	if !ok {
		return uuid.Nil, fmt.Errorf("refresh token: %w", models.ErrUnauthenticated)
	}
	return id, nil
}

func (m *memAuthRepo) InvalidateAllUserRefreshTokens(_ context.Context, userID uuid.UUID) error {
	for token, id := range m.refresh {
		if id == userID {
			delete(m.refresh, token)
		}
	}
	return nil
}

func (m *memAuthRepo) CreatePasswordResetToken(_ context.Context, userID uuid.UUID, token string, _ time.Time) error {
	m.resetTokens[token] = userID
	return nil
}

func (m *memAuthRepo) ConsumePasswordResetToken(_ context.Context, token string) (uuid.UUID, error) {
	id, ok := m.resetTokens[token]
	if !ok {
		return uuid.Nil, fmt.Errorf("reset token: %w", models.ErrUnauthenticated)
	}
	delete(m.resetTokens, token)
	return id, nil
}

type recordingSender struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (r *recordingSender) Send(_ context.Context, to, subject, text string) error {
	r.to = append(r.to, to)
	r.subject = append(r.subject, subject)
	r.body = append(r.body, text)
	return r.err
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			TokenExpiration: time.Hour,
			RefreshTTL:      24 * time.Hour,
		},
		FrontendURL: "http://localhost:3000",
	}
}

func authFixture() (*ServiceImpl, *memAuthRepo, *recordingSender) {
	repo := newMemAuthRepo()
	sender := &recordingSender{}
	svc := NewAuthService(repo, sender, testConfig(), zap.NewNop())
	return svc, repo, sender
}

func signup(t *testing.T, svc *ServiceImpl) *models.UserProfile {
	t.Helper()
	profile, err := svc.Signup(context.Background(), SignupInput{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "hunter22",
		City:     "Lisbon",
		Country:  "Portugal",
	})
	require.NoError(t, err)
	return profile
}

func TestSignupHashesPassword(t *testing.T) {
	svc, repo, _ := authFixture()
	profile := signup(t, svc)

	assert.Equal(t, "ada", profile.Username)

	stored := repo.users[profile.ID].auth.Password
	assert.NotEqual(t, "hunter22", stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored), []byte("hunter22")))
}

func TestSignupValidation(t *testing.T) {
	svc, _, _ := authFixture()

	_, err := svc.Signup(context.Background(), SignupInput{Email: "a@b.c", Password: "hunter22"})
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = svc.Signup(context.Background(), SignupInput{Username: "ada", Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestLoginIssuesTokens(t *testing.T) {
	svc, _, _ := authFixture()
	signup(t, svc)

	pair, profile, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "ada", profile.Username)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := authFixture()
	signup(t, svc)

	_, _, err := svc.Login(context.Background(), "ada@example.com", "not-it")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := authFixture()

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestRefreshRotation(t *testing.T) {
	svc, _, _ := authFixture()
	signup(t, svc)

	pair, _, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = svc.Refresh(context.Background(), "bogus-token")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestLogoutInvalidatesRefreshTokens(t *testing.T) {
	svc, _, _ := authFixture()
	profile := signup(t, svc)

	pair, _, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), profile.ID))

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestForgotPasswordFlow(t *testing.T) {
	svc, repo, sender := authFixture()
	signup(t, svc)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@example.com"))
	require.Len(t, sender.to, 1)
	assert.Equal(t, "ada@example.com", sender.to[0])
	assert.Contains(t, sender.body[0], "reset-password?token=")
	require.Len(t, repo.resetTokens, 1)

	var token string
	for tok := range repo.resetTokens {
		token = tok
	}
	require.NoError(t, svc.ResetPassword(context.Background(), token, "new-password"))

	_, _, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
	_, _, err = svc.Login(context.Background(), "ada@example.com", "new-password")
	assert.NoError(t, err)

	// Tokens are single use.
	err = svc.ResetPassword(context.Background(), token, "another-password")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestForgotPasswordUnknownEmailIsSilent(t *testing.T) {
	svc, _, sender := authFixture()

	require.NoError(t, svc.ForgotPassword(context.Background(), "ghost@example.com"))
	assert.Empty(t, sender.to)
}

func TestCheckUsername(t *testing.T) {
	svc, _, _ := authFixture()
	signup(t, svc)

	available, err := svc.CheckUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.False(t, available)

	available, err = svc.CheckUsername(context.Background(), "grace")
	require.NoError(t, err)
	assert.True(t, available)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/glassops/glassops-backend/internal/users"
	pkgAuth "github.com/glassops/glassops-backend/pkg/auth"
	"github.com/glassops/glassops-backend/pkg/auth/session"
	"github.com/glassops/glassops-backend/pkg/config"
	"github.com/glassops/glassops-backend/pkg/db/dbtest"
	"github.com/glassops/glassops-backend/pkg/enums"
	pkgerrors "github.com/glassops/glassops-backend/pkg/errors"
)

var (
	testJWT = config.JWTConfig{
		Secret:            "secret",
		Issuer:            "glassops",
		ExpirationMinutes: 15,
	}
	testPassword = config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
)

type stubSessions struct {
	sessions map[string]uuid.UUID
	tokens   map[string]string
	revoked  []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: map[string]uuid.UUID{}, tokens: map[string]string{}}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string, userID uuid.UUID) (string, error) {
	token := "refresh-" + accessID
	s.sessions[accessID] = userID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, oldAccessID string, userID uuid.UUID, provided string) (string, string, error) {
	owner, ok := s.sessions[oldAccessID]
	if !ok || owner != userID || s.tokens[oldAccessID] != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.sessions, oldAccessID)
	delete(s.tokens, oldAccessID)
	next := session.NewAccessID()
	token, _ := s.Generate(ctx, next, userID)
	return next, token, nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	delete(s.sessions, accessID)
	delete(s.tokens, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func newTestService(t *testing.T) (Service, *users.Repository, *stubSessions) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t))
	sessions := newStubSessions()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: testPassword,
		Now:            func() time.Time { return time.Now() },
	})
	require.NoError(t, err)
	return svc, repo, sessions
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestRegisterThenLogin(t *testing.T) {
	svc, repo, sessions := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterRequest{
		Email:    "Owner@Example.com",
		Password: "tempered-glass",
		Name:     "Owner",
		Role:     enums.UserRoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", created.Email)

	resp, err := svc.Login(ctx, LoginRequest{Email: "owner@example.com", Password: "tempered-glass"})
	require.NoError(t, err)
	assert.Equal(t, 15*60, resp.ExpiresIn)
	require.NotNil(t, resp.User.LastLoginAt)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Equal(t, enums.UserRoleAdmin, claims.Role)
	assert.Equal(t, created.ID, sessions.sessions[claims.ID])
	assert.Equal(t, resp.RefreshToken, sessions.tokens[claims.ID])

	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "staff@example.com", Password: "windshield", Name: "Staff"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "staff@example.com", Password: "wrong-pass"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "windshield"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	conn := dbtest.Open(t)
	repo := users.NewRepository(conn)
	svc, err := NewService(ServiceParams{UserRepo: repo, SessionManager: newStubSessions(), JWTConfig: testJWT, PasswordConfig: testPassword})
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Register(ctx, RegisterRequest{Email: "gone@example.com", Password: "windshield", Name: "Gone"})
	require.NoError(t, err)
	require.NoError(t, conn.Table("users").Where("id = ?", created.ID).Update("is_active", false).Error)

	_, err = svc.Login(ctx, LoginRequest{Email: "gone@example.com", Password: "windshield"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "short", Name: "A"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "long-enough", Name: "A", Role: "owner"})
	requireCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "long-enough", Name: "A"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{Email: "A@example.com", Password: "long-enough", Name: "A"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "tech@example.com", Password: "windshield", Name: "Tech"})
	require.NoError(t, err)
	login, err := svc.Login(ctx, LoginRequest{Email: "tech@example.com", Password: "windshield"})
	require.NoError(t, err)
	oldClaims, err := pkgAuth.ParseAccessToken(testJWT, login.AccessToken)
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	newClaims, err := pkgAuth.ParseAccessToken(testJWT, refreshed.AccessToken)
	require.NoError(t, err)
	assert.NotEqual(t, oldClaims.ID, newClaims.ID)
	assert.NotContains(t, sessions.sessions, oldClaims.ID)

	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	requireCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Refresh(ctx, RefreshRequest{AccessToken: "garbage", RefreshToken: "x"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, "access-1"))
	assert.Equal(t, []string{"access-1"}, sessions.revoked)

	requireCode(t, svc.Logout(ctx, " "), pkgerrors.CodeUnauthorized)
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{SessionManager: newStubSessions()})
	require.Error(t, err)
	_, err = NewService(ServiceParams{UserRepo: users.NewRepository(&gorm.DB{})})
	require.Error(t, err)
}

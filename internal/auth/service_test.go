package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/internal/users"
	pkgAuth "github.com/angelmondragon/salonbook-backend/pkg/auth"
	"github.com/angelmondragon/salonbook-backend/pkg/auth/session"
	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/security"
)

type stubUserRepository struct {
	byEmail   map[string]*models.User
	createErr error
	rehashed  map[uuid.UUID]string
}

func newStubUserRepository(existing ...*models.User) *stubUserRepository {
	repo := &stubUserRepository{byEmail: map[string]*models.User{}, rehashed: map[uuid.UUID]string{}}
	for _, u := range existing {
		repo.byEmail[u.Email] = u
	}
	return repo
}

func (s *stubUserRepository) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (s *stubUserRepository) UpdatePasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	s.rehashed[id] = hash
	return nil
}

type stubSessions struct {
	sessions map[string]uuid.UUID
	tokens   map[string]string
}

func newStubSessions() *stubSessions {
	return &stubSessions{sessions: map[string]uuid.UUID{}, tokens: map[string]string{}}
}

func (s *stubSessions) Generate(_ context.Context, accessID string, userID uuid.UUID) (string, error) {
	token := "refresh-" + accessID
	s.sessions[accessID] = userID
	s.tokens[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (session.Rotation, error) {
	if s.tokens[oldAccessID] != provided {
		return session.Rotation{}, session.ErrInvalidRefreshToken
	}
	userID := s.sessions[oldAccessID]
	delete(s.sessions, oldAccessID)
	delete(s.tokens, oldAccessID)
	next := session.NewAccessID()
	token, _ := s.Generate(context.Background(), next, userID)
	return session.Rotation{AccessID: next, RefreshToken: token, UserID: userID}, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	delete(s.sessions, accessID)
	delete(s.tokens, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "salonbook", ExpirationMinutes: 30}
}

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func mustHashPassword(t *testing.T, password string, cfg config.PasswordConfig) string {
	t.Helper()
	hash, err := security.HashPassword(password, cfg)
	require.NoError(t, err)
	return hash
}

func buildTestService(t *testing.T, repo *stubUserRepository, sessions *stubSessions) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)
	return svc
}

func testUser(t *testing.T, password string, role enums.UserRole) *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "ana@example.com",
		Name:         "Ana",
		PasswordHash: mustHashPassword(t, password, testPasswordConfig()),
		Role:         role,
		IsActive:     true,
	}
}

func TestLoginIssuesTokensWithRole(t *testing.T) {
	user := testUser(t, "s3cret-pass", enums.UserRoleAdmin)
	sessions := newStubSessions()
	svc := buildTestService(t, newStubUserRepository(user), sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " ANA@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User.LastLoginAt)

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleAdmin, claims.Role)
	require.Equal(t, user.ID, sessions.sessions[claims.ID])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	user := testUser(t, "s3cret-pass", enums.UserRoleClient)
	svc := buildTestService(t, newStubUserRepository(user), newStubSessions())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "wrong"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	user.IsActive = false
	_, err = svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "s3cret-pass"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	weak := testPasswordConfig()
	weak.ArgonMemoryKB = 512
	user := testUser(t, "s3cret-pass", enums.UserRoleClient)
	user.PasswordHash = mustHashPassword(t, "s3cret-pass", weak)
	repo := newStubUserRepository(user)
	svc := buildTestService(t, repo, newStubSessions())

	_, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "s3cret-pass"})
	require.NoError(t, err)
	require.Contains(t, repo.rehashed, user.ID)
	require.False(t, security.NeedsRehash(repo.rehashed[user.ID], testPasswordConfig()))
}

func TestRefreshRotatesSession(t *testing.T) {
	user := testUser(t, "s3cret-pass", enums.UserRoleClient)
	sessions := newStubSessions()
	svc := buildTestService(t, newStubUserRepository(user), sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "s3cret-pass"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshRejectsDeactivatedUser(t *testing.T) {
	user := testUser(t, "s3cret-pass", enums.UserRoleClient)
	svc := buildTestService(t, newStubUserRepository(user), newStubSessions())

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "s3cret-pass"})
	require.NoError(t, err)
	user.IsActive = false

	_, err = svc.Refresh(context.Background(), RefreshRequest{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestLogoutRevokesSession(t *testing.T) {
	user := testUser(t, "s3cret-pass", enums.UserRoleClient)
	sessions := newStubSessions()
	svc := buildTestService(t, newStubUserRepository(user), sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "s3cret-pass"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), claims.ID))
	require.NotContains(t, sessions.sessions, claims.ID)
	require.True(t, pkgerrors.IsCode(svc.Logout(context.Background(), ""), pkgerrors.CodeUnauthorized))
}

func TestNewServiceRequiresDeps(t *testing.T) {
	_, err := NewService(ServiceParams{SessionManager: newStubSessions()})
	require.Error(t, err)
	_, err = NewService(ServiceParams{UserRepo: newStubUserRepository()})
	require.Error(t, err)
	require.False(t, errors.Is(err, gorm.ErrRecordNotFound))
}

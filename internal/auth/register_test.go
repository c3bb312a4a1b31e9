package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/security"
)

func TestRegisterCreatesClientAndLogsIn(t *testing.T) {
	repo := newStubUserRepository()
	svc := buildTestService(t, repo, newStubSessions())

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Carla",
		Email:    "Carla@Example.com",
		Password: "long-enough",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, enums.UserRoleClient, resp.User.Role)

	stored := repo.byEmail["carla@example.com"]
	require.NotNil(t, stored)
	ok, err := security.VerifyPassword("long-enough", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRegisterValidation(t *testing.T) {
	svc := buildTestService(t, newStubUserRepository(), newStubSessions())
	cases := []RegisterRequest{
		{Name: "A", Email: "", Password: "long-enough"},
		{Name: " ", Email: "a@example.com", Password: "long-enough"},
		{Name: "A", Email: "a@example.com", Password: "short"},
	}
	for _, req := range cases {
		_, err := svc.Register(context.Background(), req)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%+v", req)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newStubUserRepository()
	repo.createErr = errors.New("UNIQUE constraint failed: users.email")
	svc := buildTestService(t, repo, newStubSessions())

	_, err := svc.Register(context.Background(), RegisterRequest{Name: "A", Email: "a@example.com", Password: "long-enough"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/pagination"
	"github.com/angelmondragon/salonbook-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestCreateClientIssuesTempPassword(t *testing.T) {
	repo := NewRepository(newUsersDB(t))
	svc, err := NewService(repo, testPasswordConfig())
	require.NoError(t, err)

	created, err := svc.CreateClient(context.Background(), CreateClientInput{Name: "Bia", Email: "bia@example.com"})
	require.NoError(t, err)
	require.Len(t, created.TempPassword, tempPasswordLength)

	stored, err := repo.FindByEmail(context.Background(), "bia@example.com")
	require.NoError(t, err)
	ok, err := security.VerifyPassword(created.TempPassword, stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateClientDuplicateEmailConflicts(t *testing.T) {
	svc, err := NewService(NewRepository(newUsersDB(t)), testPasswordConfig())
	require.NoError(t, err)

	input := CreateClientInput{Name: "Bia", Email: "bia@example.com"}
	_, err = svc.CreateClient(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.CreateClient(context.Background(), input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCreateClientValidates(t *testing.T) {
	svc, err := NewService(NewRepository(newUsersDB(t)), testPasswordConfig())
	require.NoError(t, err)

	_, err = svc.CreateClient(context.Background(), CreateClientInput{Email: "x@example.com"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.CreateClient(context.Background(), CreateClientInput{Name: "X", Email: "nope"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestGetMissingUserIsNotFound(t *testing.T) {
	svc, err := NewService(NewRepository(newUsersDB(t)), testPasswordConfig())
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

type failingClientStore struct {
	userStore
	err error
}

func (s failingClientStore) ListClients(context.Context, string, pagination.Params) (pagination.Page[models.User], error) {
	return pagination.Page[models.User]{}, s.err
}

func TestListClientsMapsErrors(t *testing.T) {
	svc, err := NewService(failingClientStore{err: errors.New("connection refused")}, testPasswordConfig())
	require.NoError(t, err)
	_, err = svc.ListClients(context.Background(), "", pagination.Params{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal), "got %v", err)

	svc, err = NewService(NewRepository(newUsersDB(t)), testPasswordConfig())
	require.NoError(t, err)
	_, err = svc.ListClients(context.Background(), "", pagination.Params{Cursor: "%%%"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "got %v", err)
}

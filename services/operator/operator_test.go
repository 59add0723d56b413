package operator

import (
	"context"
	"testing"
	"time"

	"oseplatform/database"
	"oseplatform/models"
	"oseplatform/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryOperators struct {
	byEmail map[string]*models.Operator
}

func (m *memoryOperators) GetByEmail(_ context.Context, email string) (*models.Operator, error) {
	op, ok := m.byEmail[email]
	if !ok {
		return nil, database.ErrNotFound
	}
	return op, nil
}

func (m *memoryOperators) Create(_ context.Context, op *models.Operator) error {
	m.byEmail[op.Email] = op
	return nil
}

type memoryRevoker struct {
	hashes map[string]time.Duration
}

func (m *memoryRevoker) Revoke(_ context.Context, hash string, ttl time.Duration) error {
	m.hashes[hash] = ttl
	return nil
}

func (m *memoryRevoker) IsRevoked(_ context.Context, hash string) (bool, error) {
	_, ok := m.hashes[hash]
	return ok, nil
}

func newService(t *testing.T) (*DefaultOperatorService, *memoryOperators, *memoryRevoker) {
	t.Helper()
	repo := &memoryOperators{byEmail: map[string]*models.Operator{}}
	rev := &memoryRevoker{hashes: map[string]time.Duration{}}
	svc, err := NewDefaultOperatorService(repo, utils.NewTokenIssuer("test-secret", time.Hour), rev, nil)
	require.NoError(t, err)
	svc.cost = bcrypt.MinCost
	return svc, repo, rev
}

func TestBootstrapThenLogin(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.Bootstrap(ctx, "Ana", "Ana@OSE.test", "s3cret"))
	require.Contains(t, repo.byEmail, "ana@ose.test")

	resp, err := svc.Login(ctx, "ana@ose.test", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Ana", resp.Operator.Name)
	assert.WithinDuration(t, time.Now().Add(time.Hour), resp.ExpiresAt, time.Minute)

	op, err := svc.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana@ose.test", op.Email)
}

func TestBootstrap_Idempotent(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx, "Ana", "ana@ose.test", "one"))
	first := repo.byEmail["ana@ose.test"].ID

	require.NoError(t, svc.Bootstrap(ctx, "Ana", "ana@ose.test", "two"))
	assert.Equal(t, first, repo.byEmail["ana@ose.test"].ID)

	assert.NoError(t, svc.Bootstrap(ctx, "", "", ""))
}

func TestLogin_Rejections(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx, "Ana", "ana@ose.test", "s3cret"))

	_, err := svc.Login(ctx, "ana@ose.test", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@ose.test", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.byEmail["ana@ose.test"].Active = false
	_, err = svc.Login(ctx, "ana@ose.test", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, rev := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.Bootstrap(ctx, "Ana", "ana@ose.test", "s3cret"))
	resp, err := svc.Login(ctx, "ana@ose.test", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.Token))
	assert.Len(t, rev.hashes, 1)

	_, err = svc.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}

func TestAuthenticate_BadToken(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Authenticate(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"allswell/internal/apperr"
	"allswell/internal/docstore"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := docstore.Open(filepath.Join(t.TempDir(), "auth.db"), lg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewManager(store, lg)
}

var testCreds = Credentials{Email: "ana@example.com", Password: "hunter22", DisplayName: "Ana"}

func TestSignUpOpensSession(t *testing.T) {
	mgr := newTestManager(t)

	identity, token, err := mgr.SignUp(context.Background(), testCreds)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, "ana@example.com", identity.Email)
	assert.Equal(t, "Ana", identity.DisplayName)

	resolved, err := mgr.CurrentUser(token)
	require.NoError(t, err)
	assert.Equal(t, identity.UID, resolved.UID)
}

func TestSignUpValidatesCredentials(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	_, _, err := mgr.SignUp(ctx, Credentials{Email: "not-an-email", Password: "hunter22"})
	assert.Error(t, err)

	_, _, err = mgr.SignUp(ctx, Credentials{Email: "ana@example.com", Password: "short"})
	assert.Error(t, err)
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	_, _, err := mgr.SignUp(ctx, testCreds)
	require.NoError(t, err)

	_, _, err = mgr.SignUp(ctx, Credentials{Email: "Ana@Example.com", Password: "other-pass"})
	assert.True(t, errors.Is(err, apperr.ErrAlreadyExists), "email matching is case-insensitive")
}

func TestSignInVerifiesPassword(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	created, _, err := mgr.SignUp(ctx, testCreds)
	require.NoError(t, err)

	identity, token, err := mgr.SignIn(ctx, "ana@example.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, created.UID, identity.UID)

	_, _, err = mgr.SignIn(ctx, "ana@example.com", "wrong-pass")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	_, _, err = mgr.SignIn(ctx, "nobody@example.com", "hunter22")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestSignOutInvalidatesToken(t *testing.T) {
	mgr := newTestManager(t)

	_, token, err := mgr.SignUp(context.Background(), testCreds)
	require.NoError(t, err)

	mgr.SignOut(token)
	_, err = mgr.CurrentUser(token)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestAuthStateListeners(t *testing.T) {
	mgr := newTestManager(t)

	var states []*Identity
	mgr.OnAuthStateChange(func(id *Identity) { states = append(states, id) })

	_, token, err := mgr.SignUp(context.Background(), testCreds)
	require.NoError(t, err)
	mgr.SignOut(token)
	mgr.SignOut(token) // already closed, must not fire again

	require.Len(t, states, 2)
	assert.NotNil(t, states[0])
	assert.Nil(t, states[1])
}

func TestChangePassword(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	_, token, err := mgr.SignUp(ctx, testCreds)
	require.NoError(t, err)

	err = mgr.ChangePassword(ctx, token, "wrong-pass", "new-secret")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	require.NoError(t, mgr.ChangePassword(ctx, token, "hunter22", "new-secret"))

	_, _, err = mgr.SignIn(ctx, "ana@example.com", "hunter22")
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized), "old password stops working")

	_, _, err = mgr.SignIn(ctx, "ana@example.com", "new-secret")
	assert.NoError(t, err)
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/common"
	"github.com/dmitrijs2005/gophnotes/internal/server/auth"
	"github.com/dmitrijs2005/gophnotes/internal/server/config"
	"github.com/dmitrijs2005/gophnotes/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(t *testing.T) (*UserService, *fakeRepoManager, func(expectCommit bool)) {
	t.Helper()

	oldHash, oldVerify := hashPassword, verifyPassword
	hashPassword = func(p []byte) (string, error) { return "hash:" + string(p), nil }
	verifyPassword = func(enc string, p []byte) (bool, error) { return enc == "hash:"+string(p), nil }
	t.Cleanup(func() { hashPassword, verifyPassword = oldHash, oldVerify })

	db, mock := newSQLMockDB(t)
	rm := newFakeRepoManager()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}

	expectTx := func(commit bool) {
		mock.ExpectBegin()
		if commit {
			mock.ExpectCommit()
		} else {
			mock.ExpectRollback()
		}
	}
	t.Cleanup(func() { assert.NoError(t, mock.ExpectationsWereMet()) })

	return NewUserService(db, rm, cfg), rm, expectTx
}

func requireAuthCode(t *testing.T, err error, want string) {
	t.Helper()
	code, ok := common.AuthCode(err)
	require.True(t, ok, "expected auth error, got %v", err)
	assert.Equal(t, want, code)
}

func TestUserService_SignUp_Success(t *testing.T) {
	svc, rm, expectTx := newTestUserService(t)
	expectTx(true)

	s, err := svc.SignUp(context.Background(), "  Alice@Example.com ", "secret1")
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", s.Email)
	assert.NotEmpty(t, s.UserID)
	assert.NotEmpty(t, s.RefreshToken)

	uid, err := auth.GetUserIDFromToken(s.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, s.UserID, uid)

	stored, err := rm.refresh.Find(context.Background(), s.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, stored.UserID)
}

func TestUserService_SignUp_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"invalid email", "not-an-email", "secret1", common.AuthCodeInvalidEmail},
		{"missing domain dot", "a@localhost", "secret1", common.AuthCodeInvalidEmail},
		{"display name form", "Bob <bob@example.com>", "secret1", common.AuthCodeInvalidEmail},
		{"weak password", "bob@example.com", "12345", common.AuthCodeWeakPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestUserService(t)
			_, err := svc.SignUp(context.Background(), tt.email, tt.password)
			requireAuthCode(t, err, tt.code)
		})
	}
}

func TestUserService_SignUp_Duplicate(t *testing.T) {
	svc, _, expectTx := newTestUserService(t)
	ctx := context.Background()

	expectTx(true)
	_, err := svc.SignUp(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)

	expectTx(false)
	_, err = svc.SignUp(ctx, "BOB@example.com", "another")
	requireAuthCode(t, err, common.AuthCodeEmailAlreadyInUse)
}

func TestUserService_SignUp_RepoError(t *testing.T) {
	svc, rm, expectTx := newTestUserService(t)
	rm.users.createErr = errors.New("boom")
	expectTx(false)

	_, err := svc.SignUp(context.Background(), "bob@example.com", "secret1")
	require.Error(t, err)
	_, isAuth := common.AuthCode(err)
	assert.False(t, isAuth)
}

func TestUserService_SignIn(t *testing.T) {
	svc, _, expectTx := newTestUserService(t)
	ctx := context.Background()

	expectTx(true)
	up, err := svc.SignUp(ctx, "carol@example.com", "secret1")
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		s, err := svc.SignIn(ctx, "Carol@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, up.UserID, s.UserID)
		assert.NotEqual(t, up.RefreshToken, s.RefreshToken)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "nobody@example.com", "secret1")
		requireAuthCode(t, err, common.AuthCodeUserNotFound)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "carol@example.com", "nope123")
		requireAuthCode(t, err, common.AuthCodeWrongPassword)
	})

	t.Run("bad email", func(t *testing.T) {
		_, err := svc.SignIn(ctx, "carol", "secret1")
		requireAuthCode(t, err, common.AuthCodeInvalidEmail)
	})
}

func TestUserService_SignIn_RepoFailure(t *testing.T) {
	svc, rm, _ := newTestUserService(t)
	rm.users.getErr = errors.New("db down")

	_, err := svc.SignIn(context.Background(), "x@example.com", "secret1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestUserService_RefreshToken_Rotates(t *testing.T) {
	svc, rm, expectTx := newTestUserService(t)
	ctx := context.Background()

	expectTx(true)
	s1, err := svc.SignUp(ctx, "dave@example.com", "secret1")
	require.NoError(t, err)

	expectTx(true)
	s2, err := svc.RefreshToken(ctx, s1.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, s1.UserID, s2.UserID)
	assert.NotEqual(t, s1.RefreshToken, s2.RefreshToken)

	_, err = rm.refresh.Find(ctx, s1.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// the old token is single-use
	_, err = svc.RefreshToken(ctx, s1.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestUserService_RefreshToken_Expired(t *testing.T) {
	svc, rm, _ := newTestUserService(t)
	rm.refresh.tokens["old"] = &models.RefreshToken{UserID: "u1", Token: "old", Expires: time.Now().Add(-time.Minute)}

	_, err := svc.RefreshToken(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestUserService_SignOut(t *testing.T) {
	svc, rm, expectTx := newTestUserService(t)
	ctx := context.Background()

	expectTx(true)
	s, err := svc.SignUp(ctx, "erin@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, s.RefreshToken))
	_, err = rm.refresh.Find(ctx, s.RefreshToken)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	assert.NoError(t, svc.SignOut(ctx, ""))
}

func TestUserService_PurgeExpiredTokens(t *testing.T) {
	svc, rm, _ := newTestUserService(t)
	rm.refresh.tokens["a"] = &models.RefreshToken{Token: "a", Expires: time.Now().Add(-time.Hour)}
	rm.refresh.tokens["b"] = &models.RefreshToken{Token: "b", Expires: time.Now().Add(time.Hour)}

	n, err := svc.PurgeExpiredTokens(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, rm.refresh.tokens, 1)
}

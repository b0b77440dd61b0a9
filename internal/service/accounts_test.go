// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/lingocms/internal/auth"
	"github.com/olegiv/lingocms/internal/model"
	"github.com/olegiv/lingocms/internal/store"
	"github.com/olegiv/lingocms/internal/testutil"
)

const testPassword = "Valid123!Pass"

var client = ClientInfo{IP: "203.0.113.7", UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"}

type fixture struct {
	db     *sql.DB
	svc    *AccountService
	events *EventService
	tokens *auth.TokenIssuer
	clock  *testutil.Clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.TestDB(t)
	clock := testutil.NewClock(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC))

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   []byte("service-test-secret-that-is-32-bytes!"),
		Denylist: auth.NewMemoryDenylist(auth.WithDenylistClock(clock.Now)),
	}, auth.WithTokenClock(clock.Now))
	require.NoError(t, err)

	events := NewEventService(db, nil)
	events.now = clock.Now

	svc := NewAccountService(db, testutil.TestHasher(t), tokens,
		WithClock(clock.Now),
		WithEvents(events),
		WithLogger(testutil.TestLogger()),
	)
	return &fixture{db: db, svc: svc, events: events, tokens: tokens, clock: clock}
}

func (f *fixture) register(t *testing.T, username string) store.Account {
	t.Helper()
	account, err := f.svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: testPassword,
	}, client)
	require.NoError(t, err)
	return account
}

func (f *fixture) registerWithRole(t *testing.T, username, role string) store.Account {
	t.Helper()
	account := f.register(t, username)
	err := store.New(f.db).UpdateAccountRole(context.Background(), store.UpdateAccountRoleParams{
		Role: role, UpdatedAt: f.clock.Now(), ID: account.ID,
	})
	require.NoError(t, err)
	account.Role = role
	return account
}

func (f *fixture) reload(t *testing.T, id string) store.Account {
	t.Helper()
	account, err := store.New(f.db).GetAccountByID(context.Background(), id)
	require.NoError(t, err)
	return account
}

func (f *fixture) setFailedAttempts(t *testing.T, id string, n int64) {
	t.Helper()
	err := store.New(f.db).UpdateLoginState(context.Background(), store.UpdateLoginStateParams{
		FailedLoginAttempts: n, UpdatedAt: f.clock.Now(), ID: id,
	})
	require.NoError(t, err)
}

func (f *fixture) login(username, password string) (*LoginResult, error) {
	return f.svc.Login(context.Background(), LoginInput{Login: username, Password: password}, client)
}

func identity(a store.Account) auth.Identity {
	return auth.Identity{ID: a.ID, Role: a.Role}
}

func TestRegister(t *testing.T) {
	f := newFixture(t)

	account, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.COM",
		Password: testPassword,
	}, client)
	require.NoError(t, err)

	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "alice@example.com", account.Email)
	assert.Equal(t, model.RoleUser, account.Role)
	assert.True(t, account.IsActive)
	assert.False(t, account.MustChangePassword)
	assert.NotEqual(t, testPassword, account.PasswordHash)
}

func TestRegister_ValidationOrder(t *testing.T) {
	f := newFixture(t)
	f.register(t, "taken")

	tests := []struct {
		name  string
		in    RegisterInput
		field string
		err   error
	}{
		{"bad username wins", RegisterInput{"x", "bad", "weak"}, "username", nil},
		{"bad email before password", RegisterInput{"newuser", "bad", "weak"}, "email", nil},
		{"password policy", RegisterInput{"newuser", "new@example.com", "weak"}, "password", nil},
		{"policy before uniqueness", RegisterInput{"taken", "taken@example.com", "weak"}, "password", nil},
		{"username taken", RegisterInput{"taken", "new@example.com", testPassword}, "", ErrConflict},
		{"email taken, case-insensitive", RegisterInput{"newuser", "TAKEN@example.com", testPassword}, "", ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.in, client)
			require.Error(t, err)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRegister_ConflictField(t *testing.T) {
	f := newFixture(t)
	f.register(t, "bob")

	_, err := f.svc.Register(context.Background(), RegisterInput{"bob2", "BOB@example.com", testPassword}, client)
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)
}

func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")
	f.setFailedAttempts(t, account.ID, 2)

	res, err := f.login("alice", testPassword)
	require.NoError(t, err)

	assert.Len(t, res.SessionToken, 64)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.TokenExpiresAt.Equal(f.clock.Now().Add(24*time.Hour)))
	assert.Equal(t, int64(0), res.Account.FailedLoginAttempts)
	assert.Equal(t, res.SessionToken, res.Account.SessionToken.String)
	assert.Equal(t, client.IP, res.Account.LastIp.String)
	assert.True(t, res.Account.LastLoginAt.Valid)

	claims, err := f.tokens.Verify(context.Background(), res.Token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.Subject)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestLogin_ByEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	res, err := f.login("ALICE@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Account.Username)
}

func TestLogin_NewSessionReplacesOld(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")

	first, err := f.login("alice", testPassword)
	require.NoError(t, err)
	second, err := f.login("alice", testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionToken, second.SessionToken)

	_, err = f.svc.ResolveSession(context.Background(), account.ID, first.SessionToken)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.ResolveSession(context.Background(), account.ID, second.SessionToken)
	assert.NoError(t, err)
}

func TestLogin_UnknownAccount(t *testing.T) {
	f := newFixture(t)

	_, err := f.login("nobody", testPassword)
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Nil(t, authErr.AttemptsRemaining)
}

func TestLogin_UnknownAccountCostsOneVerification(t *testing.T) {
	db := testutil.TestDB(t)
	hasher, err := auth.NewHasher(auth.Params{Time: 3, Memory: 32 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	require.NoError(t, err)
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{Secret: []byte("service-test-secret-that-is-32-bytes!")})
	require.NoError(t, err)
	svc := NewAccountService(db, hasher, tokens, WithLogger(testutil.TestLogger()))

	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)
	start := time.Now()
	_, err = hasher.Verify("wrong", hash)
	require.NoError(t, err)
	verifyCost := time.Since(start)

	start = time.Now()
	_, err = svc.Login(context.Background(), LoginInput{Login: "nobody", Password: testPassword}, client)
	unknownCost := time.Since(start)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.GreaterOrEqual(t, unknownCost, verifyCost/2,
		"unknown account answered in %v, a password check takes %v", unknownCost, verifyCost)
}

func TestLogin_LocksOnFifthFailure(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")

	for i := 1; i <= 4; i++ {
		_, err := f.login("alice", "wrong")
		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr, "failure %d", i)
		require.NotNil(t, authErr.AttemptsRemaining)
		assert.Equal(t, 5-i, *authErr.AttemptsRemaining)
	}

	_, err := f.login("alice", "wrong")
	var locked *LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 30, locked.MinutesRemaining)

	stored := f.reload(t, account.ID)
	assert.Equal(t, int64(5), stored.FailedLoginAttempts)
	require.True(t, stored.LockedUntil.Valid)
	assert.True(t, stored.LockedUntil.Time.Equal(f.clock.Now().Add(30*time.Minute)))

	// Correct password while locked is rejected without touching the counter.
	f.clock.Advance(10 * time.Minute)
	_, err = f.login("alice", testPassword)
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 20, locked.MinutesRemaining)
	assert.Equal(t, int64(5), f.reload(t, account.ID).FailedLoginAttempts)
}

func TestLogin_AliceScenario(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")
	f.setFailedAttempts(t, account.ID, 3)

	_, err := f.login("alice", "wrong")
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.NotNil(t, authErr.AttemptsRemaining)
	assert.Equal(t, 1, *authErr.AttemptsRemaining)

	_, err = f.login("alice", "wrong")
	var locked *LockedError
	require.ErrorAs(t, err, &locked)
	assert.Equal(t, 30, locked.MinutesRemaining)

	f.clock.Advance(31 * time.Minute)
	res, err := f.login("alice", testPassword)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Account.FailedLoginAttempts)
	assert.False(t, res.Account.LockedUntil.Valid)
}

func TestLogin_ExpiredLockStartsFresh(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")
	for range 5 {
		_, _ = f.login("alice", "wrong")
	}

	f.clock.Advance(31 * time.Minute)
	_, err := f.login("alice", "wrong")
	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 4, *authErr.AttemptsRemaining)

	stored := f.reload(t, account.ID)
	assert.Equal(t, int64(1), stored.FailedLoginAttempts)
	assert.False(t, stored.LockedUntil.Valid)
}

func TestLogin_Deactivated(t *testing.T) {
	f := newFixture(t)
	admin := f.registerWithRole(t, "admin", model.RoleAdmin)
	user := f.register(t, "alice")

	_, err := f.svc.Deactivate(context.Background(), identity(admin), user.ID, client)
	require.NoError(t, err)

	_, err = f.login("alice", testPassword)
	assert.ErrorIs(t, err, ErrDeactivated)
	_, err = f.login("alice", "wrong")
	assert.ErrorIs(t, err, ErrDeactivated)
	assert.Equal(t, int64(0), f.reload(t, user.ID).FailedLoginAttempts)
}

func TestLogin_RehashesWeakHash(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")

	weak, err := auth.NewHasher(auth.Params{Time: 1, Memory: 4 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16})
	require.NoError(t, err)
	weakHash, err := weak.Hash(testPassword)
	require.NoError(t, err)
	require.NoError(t, store.New(f.db).UpdatePasswordHash(context.Background(), store.UpdatePasswordHashParams{
		PasswordHash: weakHash, UpdatedAt: f.clock.Now(), ID: account.ID,
	}))

	_, err = f.login("alice", testPassword)
	require.NoError(t, err)

	stored := f.reload(t, account.ID)
	assert.NotEqual(t, weakHash, stored.PasswordHash)
	assert.False(t, testutil.TestHasher(t).NeedsRehash(stored.PasswordHash))

	_, err = f.login("alice", testPassword)
	assert.NoError(t, err)
}

func TestLogin_MalformedHash(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")
	require.NoError(t, store.New(f.db).UpdatePasswordHash(context.Background(), store.UpdatePasswordHashParams{
		PasswordHash: "corrupt", UpdatedAt: f.clock.Now(), ID: account.ID,
	}))

	_, err := f.login("alice", testPassword)
	assert.ErrorIs(t, err, ErrIntegrity)
	assert.ErrorIs(t, err, auth.ErrMalformedHash)
	assert.Equal(t, int64(0), f.reload(t, account.ID).FailedLoginAttempts)
}

func TestLogin_ConcurrentFailuresLockOnce(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")

	var wg sync.WaitGroup
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.login("alice", "wrong")
		}()
	}
	wg.Wait()

	stored := f.reload(t, account.ID)
	assert.Equal(t, int64(auth.MaxFailedAttempts), stored.FailedLoginAttempts)
	assert.True(t, stored.LockedUntil.Valid)
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")
	ctx := context.Background()

	res, err := f.login("alice", testPassword)
	require.NoError(t, err)
	_, claims, err := f.svc.ResolveToken(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, account.ID, claims, client))

	_, err = f.svc.ResolveSession(ctx, account.ID, res.SessionToken)
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = f.svc.ResolveToken(ctx, res.Token)
	assert.ErrorIs(t, err, auth.ErrTokenRevoked)
}

func TestResolveSession(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")
	ctx := context.Background()

	res, err := f.login("alice", testPassword)
	require.NoError(t, err)

	got, err := f.svc.ResolveSession(ctx, account.ID, res.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	_, err = f.svc.ResolveSession(ctx, account.ID, "forged")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.ResolveSession(ctx, account.ID, "")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.ResolveSession(ctx, "not-a-uuid", res.SessionToken)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveToken_DeactivatedAccount(t *testing.T) {
	f := newFixture(t)
	admin := f.registerWithRole(t, "admin", model.RoleAdmin)
	f.register(t, "alice")
	ctx := context.Background()

	res, err := f.login("alice", testPassword)
	require.NoError(t, err)

	_, err = f.svc.Deactivate(ctx, identity(admin), res.Account.ID, client)
	require.NoError(t, err)

	_, _, err = f.svc.ResolveToken(ctx, res.Token)
	assert.ErrorIs(t, err, ErrDeactivated)
	_, err = f.svc.ResolveSession(ctx, res.Account.ID, res.SessionToken)
	assert.ErrorIs(t, err, ErrDeactivated)
}

func TestResolveToken_Expired(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	res, err := f.login("alice", testPassword)
	require.NoError(t, err)

	f.clock.Advance(24*time.Hour + time.Minute)
	_, _, err = f.svc.ResolveToken(context.Background(), res.Token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	account := f.register(t, "alice")
	ctx := context.Background()

	tests := []struct {
		name    string
		current string
		next    string
		check   func(t *testing.T, err error)
	}{
		{"wrong current", "Wrong123!Pass", "Another123!Pw", func(t *testing.T, err error) {
			var authErr *AuthenticationError
			assert.ErrorAs(t, err, &authErr)
		}},
		{"policy failure", testPassword, "short1!", func(t *testing.T, err error) {
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "new_password", verr.Field)
		}},
		{"same as current", testPassword, testPassword, func(t *testing.T, err error) {
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Reasons[0], "differ")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ChangePassword(ctx, account.ID, tt.current, tt.next, client)
			require.Error(t, err)
			tt.check(t, err)
		})
	}

	updated, err := f.svc.ChangePassword(ctx, account.ID, testPassword, "Another123!Pw", client)
	require.NoError(t, err)
	assert.False(t, updated.MustChangePassword)
	assert.True(t, updated.PasswordChangedAt.Valid)

	_, err = f.login("alice", testPassword)
	assert.Error(t, err)
	_, err = f.login("alice", "Another123!Pw")
	assert.NoError(t, err)
}

func TestChangePassword_ClearsMustChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := store.Seed(ctx, f.db, testutil.TestHasher(t), store.SeedConfig{Password: "Bootstrap123!Pw"})
	require.NoError(t, err)
	require.True(t, created)

	res, err := f.login(store.DefaultSuperadminUsername, "Bootstrap123!Pw")
	require.NoError(t, err)
	require.True(t, res.Account.MustChangePassword)

	updated, err := f.svc.ChangePassword(ctx, res.Account.ID, "Bootstrap123!Pw", "Changed123!Pw", client)
	require.NoError(t, err)
	assert.False(t, updated.MustChangePassword)
}

func TestSetRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	super := f.registerWithRole(t, "root", model.RoleSuperadmin)
	otherSuper := f.registerWithRole(t, "root2", model.RoleSuperadmin)
	admin := f.registerWithRole(t, "admin", model.RoleAdmin)
	user := f.register(t, "alice")

	t.Run("invalid role", func(t *testing.T) {
		_, err := f.svc.SetRole(ctx, identity(super), user.ID, "owner", client)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "role", verr.Field)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := f.svc.SetRole(ctx, identity(super), "00000000-0000-0000-0000-000000000000", model.RoleAdmin, client)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("self demotion", func(t *testing.T) {
		for _, role := range []string{model.RoleAdmin, model.RoleUser} {
			_, err := f.svc.SetRole(ctx, identity(super), super.ID, role, client)
			var denial *auth.Denial
			require.ErrorAs(t, err, &denial)
			assert.Equal(t, auth.DenialForbidden, denial.Kind)
		}
		assert.Equal(t, model.RoleSuperadmin, f.reload(t, super.ID).Role)
	})

	t.Run("admin cannot change roles", func(t *testing.T) {
		_, err := f.svc.SetRole(ctx, identity(admin), user.ID, model.RoleAdmin, client)
		var denial *auth.Denial
		assert.ErrorAs(t, err, &denial)
	})

	t.Run("promote user", func(t *testing.T) {
		updated, err := f.svc.SetRole(ctx, identity(super), user.ID, model.RoleAdmin, client)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, updated.Role)
	})

	t.Run("demote other superadmin", func(t *testing.T) {
		updated, err := f.svc.SetRole(ctx, identity(super), otherSuper.ID, model.RoleAdmin, client)
		require.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, updated.Role)
	})

	t.Run("stale actor role", func(t *testing.T) {
		// otherSuper was demoted above but still presents its old role.
		_, err := f.svc.SetRole(ctx, identity(otherSuper), user.ID, model.RoleUser, client)
		var denial *auth.Denial
		require.ErrorAs(t, err, &denial)
		assert.Equal(t, model.RoleAdmin, f.reload(t, user.ID).Role)
	})
}

func TestDeactivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	super := f.registerWithRole(t, "root", model.RoleSuperadmin)
	admin := f.registerWithRole(t, "admin", model.RoleAdmin)
	admin2 := f.registerWithRole(t, "admin2", model.RoleAdmin)
	user := f.register(t, "alice")

	forbidden := func(t *testing.T, err error) {
		t.Helper()
		var denial *auth.Denial
		require.ErrorAs(t, err, &denial)
		assert.Equal(t, auth.DenialForbidden, denial.Kind)
	}

	_, err := f.svc.Deactivate(ctx, identity(super), super.ID, client)
	forbidden(t, err)
	_, err = f.svc.Deactivate(ctx, identity(admin), admin.ID, client)
	forbidden(t, err)
	_, err = f.svc.Deactivate(ctx, identity(admin), admin2.ID, client)
	forbidden(t, err)
	_, err = f.svc.Deactivate(ctx, identity(admin), super.ID, client)
	forbidden(t, err)

	_, err = f.svc.Deactivate(ctx, identity(super), "00000000-0000-0000-0000-000000000000", client)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := f.svc.Deactivate(ctx, identity(admin), user.ID, client)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = f.svc.Deactivate(ctx, identity(super), admin2.ID, client)
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	// A deactivated admin can no longer act.
	_, err = f.svc.Reactivate(ctx, identity(admin2), user.ID, client)
	forbidden(t, err)

	updated, err = f.svc.Reactivate(ctx, identity(admin), user.ID, client)
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	_, err = f.svc.Reactivate(ctx, identity(admin), admin2.ID, client)
	forbidden(t, err)

	_, err = f.login("alice", testPassword)
	assert.NoError(t, err)
}

func TestUnlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.registerWithRole(t, "admin", model.RoleAdmin)
	user := f.register(t, "alice")

	for range 5 {
		_, _ = f.login("alice", "wrong")
	}
	_, err := f.login("alice", testPassword)
	var locked *LockedError
	require.ErrorAs(t, err, &locked)

	for range 2 {
		updated, err := f.svc.Unlock(ctx, identity(admin), user.ID, client)
		require.NoError(t, err)
		assert.Equal(t, int64(0), updated.FailedLoginAttempts)
		assert.False(t, updated.LockedUntil.Valid)
	}

	_, err = f.login("alice", testPassword)
	assert.NoError(t, err)

	_, err = f.svc.Unlock(ctx, identity(admin), "00000000-0000-0000-0000-000000000000", client)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"one", "two", "three"} {
		f.register(t, name)
	}

	accounts, total, err := f.svc.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
	assert.Equal(t, int64(3), total)
}

func TestErrorMessages(t *testing.T) {
	n := 2
	assert.Equal(t, "invalid credentials, 2 attempts remaining", (&AuthenticationError{AttemptsRemaining: &n}).Error())
	assert.Equal(t, "invalid credentials", (&AuthenticationError{}).Error())
	assert.Equal(t, "account locked, try again in 30 minutes", (&LockedError{MinutesRemaining: 30}).Error())
	assert.True(t, errors.Is(&ConflictError{Field: "email"}, ErrConflict))
}

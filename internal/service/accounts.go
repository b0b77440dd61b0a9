// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/lingocms/internal/auth"
	"github.com/olegiv/lingocms/internal/model"
	"github.com/olegiv/lingocms/internal/store"
)

// AccountService implements registration, login and account administration.
type AccountService struct {
	db      *sql.DB
	queries *store.Queries
	hasher  *auth.Hasher
	tokens  *auth.TokenIssuer
	events  *EventService
	logger  *slog.Logger
	now     func() time.Time
}

// Option customizes an AccountService.
type Option func(*AccountService)

// WithClock overrides the clock used for lockout and audit timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *AccountService) {
		s.now = now
	}
}

// WithEvents enables the auth event log.
func WithEvents(events *EventService) Option {
	return func(s *AccountService) {
		s.events = events
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *AccountService) {
		s.logger = logger
	}
}

// NewAccountService creates an AccountService.
func NewAccountService(db *sql.DB, hasher *auth.Hasher, tokens *auth.TokenIssuer, opts ...Option) *AccountService {
	s := &AccountService{
		db:      db,
		queries: store.New(db),
		hasher:  hasher,
		tokens:  tokens,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput is the payload for Register.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register validates the input and creates an account with role user.
// Checks run in order and stop at the first failure: username, email,
// password policy, username uniqueness, email uniqueness.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (store.Account, error) {
	username := strings.TrimSpace(in.Username)
	email := auth.NormalizeEmail(in.Email)

	if err := auth.ValidateUsername(username); err != nil {
		return store.Account{}, err
	}
	if err := auth.ValidateEmail(email); err != nil {
		return store.Account{}, err
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return store.Account{}, err
	}

	if _, err := s.queries.GetAccountByUsername(ctx, username); err == nil {
		return store.Account{}, &ConflictError{Field: "username"}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.Account{}, fmt.Errorf("checking username: %w", err)
	}
	if _, err := s.queries.GetAccountByEmail(ctx, email); err == nil {
		return store.Account{}, &ConflictError{Field: "email"}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.Account{}, fmt.Errorf("checking email: %w", err)
	}

	passwordHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return store.Account{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	account, err := s.queries.CreateAccount(ctx, store.CreateAccountParams{
		ID:                uuid.NewString(),
		Username:          username,
		Email:             email,
		PasswordHash:      passwordHash,
		Role:              model.RoleUser,
		PasswordChangedAt: sql.NullTime{Time: now, Valid: true},
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			field := "username"
			if strings.Contains(err.Error(), "accounts.email") {
				field = "email"
			}
			return store.Account{}, &ConflictError{Field: field}
		}
		return store.Account{}, fmt.Errorf("creating account: %w", err)
	}

	s.logger.Info("account registered", "account_id", account.ID, "username", account.Username)
	s.logAuth(ctx, model.EventLevelInfo, "Account registered", account.ID, client, nil)
	return account, nil
}

// LoginInput is the payload for Login. Login may be a username or an email.
type LoginInput struct {
	Login    string
	Password string
}

// LoginResult carries the issued credentials.
type LoginResult struct {
	Account        store.Account
	Token          string
	TokenExpiresAt time.Time
	SessionToken   string
}

// Login authenticates a user. A locked account is rejected before the
// password is checked and its counter is left untouched. A failed check
// is counted and the fifth consecutive failure locks the account.
func (s *AccountService) Login(ctx context.Context, in LoginInput, client ClientInfo) (*LoginResult, error) {
	account, err := s.lookupLogin(ctx, in.Login)
	if errors.Is(err, ErrNotFound) {
		s.hasher.VerifyDummy(in.Password)
		s.logger.Warn("login failed: unknown account", "login", in.Login, "ip", client.IP)
		s.logAuth(ctx, model.EventLevelWarning, "Login failed: unknown account", "", client, map[string]any{"login": in.Login})
		return nil, &AuthenticationError{}
	}
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	state := lockState(account)
	if state.Locked(now) {
		s.logger.Warn("login rejected: account locked", "account_id", account.ID, "ip", client.IP)
		s.logAuth(ctx, model.EventLevelWarning, "Login rejected: account locked", account.ID, client, nil)
		return nil, lockedError(state, now)
	}
	if !account.IsActive {
		s.logger.Warn("login rejected: account deactivated", "account_id", account.ID, "ip", client.IP)
		s.logAuth(ctx, model.EventLevelWarning, "Login rejected: account deactivated", account.ID, client, nil)
		return nil, ErrDeactivated
	}

	ok, err := s.hasher.Verify(in.Password, account.PasswordHash)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", "account_id", account.ID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	if !ok {
		return nil, s.recordFailure(ctx, account.ID, client)
	}
	return s.recordSuccess(ctx, account, in.Password, client)
}

func (s *AccountService) recordFailure(ctx context.Context, accountID string, client ClientInfo) error {
	now := s.now().UTC()

	var state auth.LockState
	var alreadyLocked, lockedNow bool
	err := store.WithTx(ctx, s.db, func(q *store.Queries) error {
		account, err := q.GetAccountByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("reloading account: %w", err)
		}

		state = lockState(account)
		if state.Locked(now) {
			// Locked by a concurrent attempt after our first read.
			alreadyLocked = true
			return nil
		}
		state.Expire(now)
		lockedNow = state.RecordFailure(now)

		return q.UpdateLoginState(ctx, store.UpdateLoginStateParams{
			FailedLoginAttempts: int64(state.FailedAttempts),
			LockedUntil:         nullTime(state.LockedUntil),
			UpdatedAt:           now,
			ID:                  accountID,
		})
	})
	if err != nil {
		return fmt.Errorf("recording failed login: %w", err)
	}

	if alreadyLocked {
		return lockedError(state, now)
	}
	if lockedNow {
		s.logger.Warn("account locked after failed logins", "account_id", accountID, "ip", client.IP,
			"attempts", state.FailedAttempts)
		s.logAuth(ctx, model.EventLevelWarning, "Account locked after failed logins", accountID, client,
			map[string]any{"attempts": state.FailedAttempts})
		return lockedError(state, now)
	}

	remaining := state.AttemptsRemaining()
	s.logger.Warn("login failed: wrong password", "account_id", accountID, "ip", client.IP,
		"attempts_remaining", remaining)
	s.logAuth(ctx, model.EventLevelWarning, "Login failed: wrong password", accountID, client,
		map[string]any{"attempts_remaining": remaining})
	return &AuthenticationError{AttemptsRemaining: &remaining}
}

func (s *AccountService) recordSuccess(ctx context.Context, verified store.Account, password string, client ClientInfo) (*LoginResult, error) {
	accountID := verified.ID
	sessionToken, err := auth.NewSessionToken()
	if err != nil {
		return nil, err
	}

	var upgraded string
	if s.hasher.NeedsRehash(verified.PasswordHash) {
		upgraded, err = s.hasher.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("rehashing password: %w", err)
		}
	}

	now := s.now().UTC()
	var account store.Account
	var lockErr error
	err = store.WithTx(ctx, s.db, func(q *store.Queries) error {
		current, err := q.GetAccountByID(ctx, accountID)
		if err != nil {
			return fmt.Errorf("reloading account: %w", err)
		}

		state := lockState(current)
		if state.Locked(now) {
			lockErr = lockedError(state, now)
			return nil
		}
		if !current.IsActive {
			lockErr = ErrDeactivated
			return nil
		}

		// Skip the upgrade if the password changed since it was verified.
		if upgraded != "" && current.PasswordHash == verified.PasswordHash {
			if err := q.UpdatePasswordHash(ctx, store.UpdatePasswordHashParams{
				PasswordHash: upgraded,
				UpdatedAt:    now,
				ID:           accountID,
			}); err != nil {
				return fmt.Errorf("storing rehashed password: %w", err)
			}
		}

		if err := q.RecordLoginSuccess(ctx, store.RecordLoginSuccessParams{
			SessionToken: sql.NullString{String: sessionToken, Valid: true},
			LastLoginAt:  sql.NullTime{Time: now, Valid: true},
			LastIp:       sql.NullString{String: client.IP, Valid: client.IP != ""},
			UpdatedAt:    now,
			ID:           accountID,
		}); err != nil {
			return fmt.Errorf("recording login: %w", err)
		}

		account, err = q.GetAccountByID(ctx, accountID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("recording successful login: %w", err)
	}
	if lockErr != nil {
		return nil, lockErr
	}

	token, expiresAt, err := s.tokens.Issue(account.ID, account.Role)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", "account_id", account.ID, "username", account.Username, "ip", client.IP)
	s.logAuth(ctx, model.EventLevelInfo, "User logged in", account.ID, client, nil)

	return &LoginResult{
		Account:        account,
		Token:          token,
		TokenExpiresAt: expiresAt,
		SessionToken:   sessionToken,
	}, nil
}

// Logout clears the stored session identifier and revokes the bearer token
// when claims are given and a denylist is configured.
func (s *AccountService) Logout(ctx context.Context, accountID string, claims *auth.Claims, client ClientInfo) error {
	err := s.queries.ClearSessionToken(ctx, store.ClearSessionTokenParams{
		UpdatedAt: s.now().UTC(),
		ID:        accountID,
	})
	if err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}

	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return err
	}

	s.logger.Info("user logged out", "account_id", accountID)
	s.logAuth(ctx, model.EventLevelInfo, "User logged out", accountID, client, nil)
	return nil
}

// Get returns the account with the given id.
func (s *AccountService) Get(ctx context.Context, id string) (store.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return store.Account{}, ErrNotFound
	}
	account, err := s.queries.GetAccountByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Account{}, ErrNotFound
	}
	if err != nil {
		return store.Account{}, fmt.Errorf("loading account: %w", err)
	}
	return account, nil
}

// ResolveSession returns the account for a cookie session. The account must
// exist, be active and still hold the given session identifier.
func (s *AccountService) ResolveSession(ctx context.Context, accountID, sessionToken string) (store.Account, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return store.Account{}, err
	}
	if !account.IsActive {
		return store.Account{}, ErrDeactivated
	}
	if sessionToken == "" || !account.SessionToken.Valid ||
		subtle.ConstantTimeCompare([]byte(account.SessionToken.String), []byte(sessionToken)) != 1 {
		return store.Account{}, ErrNotFound
	}
	return account, nil
}

// ResolveToken verifies a bearer token and loads its account, which must
// exist and be active.
func (s *AccountService) ResolveToken(ctx context.Context, token string) (store.Account, *auth.Claims, error) {
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return store.Account{}, nil, err
	}
	account, err := s.Get(ctx, claims.Subject)
	if err != nil {
		return store.Account{}, nil, err
	}
	if !account.IsActive {
		return store.Account{}, nil, ErrDeactivated
	}
	return account, claims, nil
}

// ChangePassword replaces the password after checking the current one.
// The new password must satisfy the policy and differ from the current one.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, current, next string, client ClientInfo) (store.Account, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return store.Account{}, err
	}

	ok, err := s.hasher.Verify(current, account.PasswordHash)
	if err != nil {
		return store.Account{}, fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	if !ok {
		s.logger.Warn("password change rejected: wrong current password", "account_id", accountID)
		return store.Account{}, &AuthenticationError{}
	}

	if err := auth.ValidatePassword(next); err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			verr.Field = "new_password"
		}
		return store.Account{}, err
	}
	if current == next {
		return store.Account{}, &ValidationError{
			Field:   "new_password",
			Reasons: []string{"must differ from the current password"},
		}
	}

	passwordHash, err := s.hasher.Hash(next)
	if err != nil {
		return store.Account{}, fmt.Errorf("hashing password: %w", err)
	}

	now := s.now().UTC()
	err = store.WithTx(ctx, s.db, func(q *store.Queries) error {
		if err := q.ChangePassword(ctx, store.ChangePasswordParams{
			PasswordHash:      passwordHash,
			PasswordChangedAt: sql.NullTime{Time: now, Valid: true},
			UpdatedAt:         now,
			ID:                accountID,
		}); err != nil {
			return err
		}
		account, err = q.GetAccountByID(ctx, accountID)
		return err
	})
	if err != nil {
		return store.Account{}, fmt.Errorf("changing password: %w", err)
	}

	s.logger.Info("password changed", "account_id", accountID)
	s.logAuth(ctx, model.EventLevelInfo, "Password changed", accountID, client, nil)
	return account, nil
}

// List returns a page of accounts with the total count.
func (s *AccountService) List(ctx context.Context, limit, offset int64) ([]store.Account, int64, error) {
	accounts, err := s.queries.ListAccounts(ctx, store.ListAccountsParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, 0, fmt.Errorf("listing accounts: %w", err)
	}
	total, err := s.queries.CountAccounts(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting accounts: %w", err)
	}
	return accounts, total, nil
}

// SetRole changes the role of the target account. Only superadmins may do
// this, a superadmin cannot demote itself and the last active superadmin
// cannot be demoted.
func (s *AccountService) SetRole(ctx context.Context, actor auth.Identity, targetID, role string, client ClientInfo) (store.Account, error) {
	if !model.IsValidRole(role) {
		return store.Account{}, &ValidationError{
			Field:   "role",
			Reasons: []string{"must be one of " + strings.Join(model.ValidRoles, ", ")},
		}
	}

	target, err := s.Get(ctx, targetID)
	if err != nil {
		return store.Account{}, err
	}
	if err := auth.CheckRoleChange(actor, identityOf(target), role); err != nil {
		s.logger.Warn("role change denied", "actor_id", actor.ID, "target_id", targetID, "role", role, "reason", err)
		return store.Account{}, err
	}

	var updated store.Account
	err = store.WithTx(ctx, s.db, func(q *store.Queries) error {
		if err := s.requireActor(ctx, q, actor, model.RoleSuperadmin); err != nil {
			return err
		}
		current, err := q.GetAccountByID(ctx, targetID)
		if err != nil {
			return err
		}
		if current.Role == model.RoleSuperadmin && role != model.RoleSuperadmin && current.IsActive {
			if err := lastSuperadminGuard(ctx, q); err != nil {
				return err
			}
		}
		if err := q.UpdateAccountRole(ctx, store.UpdateAccountRoleParams{
			Role:      role,
			UpdatedAt: s.now().UTC(),
			ID:        targetID,
		}); err != nil {
			return err
		}
		updated, err = q.GetAccountByID(ctx, targetID)
		return err
	})
	if err != nil {
		return store.Account{}, wrapTxError("updating role", err)
	}

	s.logger.Info("role changed", "actor_id", actor.ID, "target_id", targetID, "from", target.Role, "to", role)
	s.logUser(ctx, "Role changed", actor.ID, client, map[string]any{
		"target_id": targetID, "from": target.Role, "to": role,
	})
	return updated, nil
}

// Deactivate disables the target account.
func (s *AccountService) Deactivate(ctx context.Context, actor auth.Identity, targetID string, client ClientInfo) (store.Account, error) {
	return s.setActive(ctx, actor, targetID, false, client)
}

// Reactivate re-enables the target account.
func (s *AccountService) Reactivate(ctx context.Context, actor auth.Identity, targetID string, client ClientInfo) (store.Account, error) {
	return s.setActive(ctx, actor, targetID, true, client)
}

func (s *AccountService) setActive(ctx context.Context, actor auth.Identity, targetID string, active bool, client ClientInfo) (store.Account, error) {
	target, err := s.Get(ctx, targetID)
	if err != nil {
		return store.Account{}, err
	}
	if err := auth.CheckStatusChange(actor, identityOf(target)); err != nil {
		s.logger.Warn("status change denied", "actor_id", actor.ID, "target_id", targetID, "active", active, "reason", err)
		return store.Account{}, err
	}

	var updated store.Account
	err = store.WithTx(ctx, s.db, func(q *store.Queries) error {
		if err := s.requireActor(ctx, q, actor, model.RoleAdmin); err != nil {
			return err
		}
		current, err := q.GetAccountByID(ctx, targetID)
		if err != nil {
			return err
		}
		if err := auth.CheckStatusChange(actor, identityOf(current)); err != nil {
			return err
		}
		if !active && current.IsActive && current.Role == model.RoleSuperadmin {
			if err := lastSuperadminGuard(ctx, q); err != nil {
				return err
			}
		}
		if err := q.SetAccountActive(ctx, store.SetAccountActiveParams{
			IsActive:  active,
			UpdatedAt: s.now().UTC(),
			ID:        targetID,
		}); err != nil {
			return err
		}
		updated, err = q.GetAccountByID(ctx, targetID)
		return err
	})
	if err != nil {
		return store.Account{}, wrapTxError("updating account status", err)
	}

	message := "Account deactivated"
	if active {
		message = "Account reactivated"
	}
	s.logger.Info(strings.ToLower(message), "actor_id", actor.ID, "target_id", targetID)
	s.logUser(ctx, message, actor.ID, client, map[string]any{"target_id": targetID})
	return updated, nil
}

// Unlock clears the lockout state of the target account. It is idempotent.
func (s *AccountService) Unlock(ctx context.Context, actor auth.Identity, targetID string, client ClientInfo) (store.Account, error) {
	if _, err := s.Get(ctx, targetID); err != nil {
		return store.Account{}, err
	}

	var updated store.Account
	err := store.WithTx(ctx, s.db, func(q *store.Queries) error {
		current, err := q.GetAccountByID(ctx, targetID)
		if err != nil {
			return err
		}
		state := lockState(current)
		state.Unlock()
		if err := q.UpdateLoginState(ctx, store.UpdateLoginStateParams{
			FailedLoginAttempts: int64(state.FailedAttempts),
			LockedUntil:         nullTime(state.LockedUntil),
			UpdatedAt:           s.now().UTC(),
			ID:                  targetID,
		}); err != nil {
			return err
		}
		updated, err = q.GetAccountByID(ctx, targetID)
		return err
	})
	if err != nil {
		return store.Account{}, fmt.Errorf("unlocking account: %w", err)
	}

	s.logger.Info("account unlocked", "actor_id", actor.ID, "target_id", targetID)
	s.logUser(ctx, "Account unlocked", actor.ID, client, map[string]any{"target_id": targetID})
	return updated, nil
}

// requireActor re-reads the acting account inside a transaction so a role
// change or deactivation that raced with this request is honored.
func (s *AccountService) requireActor(ctx context.Context, q *store.Queries, actor auth.Identity, minRole string) error {
	current, err := q.GetAccountByID(ctx, actor.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Forbidden("acting account no longer exists")
	}
	if err != nil {
		return err
	}
	if !current.IsActive {
		return auth.Forbidden("acting account is deactivated")
	}
	return auth.Authorize(&auth.Identity{ID: current.ID, Role: current.Role}, minRole)
}

func lastSuperadminGuard(ctx context.Context, q *store.Queries) error {
	count, err := q.CountActiveSuperadmins(ctx)
	if err != nil {
		return err
	}
	if count <= 1 {
		return auth.Forbidden("cannot remove the last active superadmin")
	}
	return nil
}

func (s *AccountService) lookupLogin(ctx context.Context, login string) (store.Account, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return store.Account{}, ErrNotFound
	}

	account, err := s.queries.GetAccountByUsername(ctx, login)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return store.Account{}, fmt.Errorf("loading account: %w", err)
	}

	account, err = s.queries.GetAccountByEmail(ctx, auth.NormalizeEmail(login))
	if errors.Is(err, sql.ErrNoRows) {
		return store.Account{}, ErrNotFound
	}
	if err != nil {
		return store.Account{}, fmt.Errorf("loading account: %w", err)
	}
	return account, nil
}

func (s *AccountService) logAuth(ctx context.Context, level, message, accountID string, client ClientInfo, metadata map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.LogAuthEvent(ctx, level, message, accountID, client, metadata)
}

func (s *AccountService) logUser(ctx context.Context, message, actorID string, client ClientInfo, metadata map[string]any) {
	if s.events == nil {
		return
	}
	_ = s.events.LogUserEvent(ctx, model.EventLevelInfo, message, actorID, client, metadata)
}

func identityOf(a store.Account) auth.Identity {
	return auth.Identity{ID: a.ID, Role: a.Role}
}

func lockState(a store.Account) auth.LockState {
	state := auth.LockState{FailedAttempts: int(a.FailedLoginAttempts)}
	if a.LockedUntil.Valid {
		until := a.LockedUntil.Time
		state.LockedUntil = &until
	}
	return state
}

func lockedError(state auth.LockState, now time.Time) *LockedError {
	e := &LockedError{MinutesRemaining: state.MinutesRemaining(now)}
	if state.LockedUntil != nil {
		e.Until = *state.LockedUntil
	}
	return e
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func wrapTxError(op string, err error) error {
	var denial *auth.Denial
	if errors.As(err, &denial) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

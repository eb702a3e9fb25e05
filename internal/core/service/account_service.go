package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/scoresync/account-service/internal/core/domain"
	"github.com/scoresync/account-service/internal/core/ports"
	"github.com/scoresync/account-service/internal/pkg/metrics"
)

const (
	opRegister      = "register"
	opLogin         = "login"
	opLogout        = "logout"
	opResetPassword = "reset_password"
	opToggleSync    = "toggle_sync"
	opEditUserInfo  = "edit_user_info"
)

// AccountService implements ports.AccountService on top of a CredentialStore.
// It holds no per-account state; uniqueness is enforced by the store.
type AccountService struct {
	store    ports.CredentialStore
	hasher   ports.PasswordHasher
	codec    ports.TokenCodec
	activity ports.ActivityRecorder
	log      zerolog.Logger
	now      func() time.Time
}

// NewAccountService wires the service. A nil recorder discards activity events.
func NewAccountService(
	store ports.CredentialStore,
	hasher ports.PasswordHasher,
	codec ports.TokenCodec,
	activity ports.ActivityRecorder,
	log zerolog.Logger,
) *AccountService {
	if activity == nil {
		activity = discardRecorder{}
	}
	return &AccountService{
		store:    store,
		hasher:   hasher,
		codec:    codec,
		activity: activity,
		log:      log.With().Str("component", "account_service").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

var _ ports.AccountService = (*AccountService)(nil)

func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (_ *ports.RegisterResult, err error) {
	defer s.observe(opRegister, time.Now(), &err)

	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	// Fast path only; Insert is the authoritative uniqueness check.
	exists, err := s.store.Exists(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateUsername
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	id, err := s.store.Insert(ctx, &domain.Account{
		Username:     input.Username,
		PasswordHash: hash,
		SyncEnabled:  input.SyncEnabled,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.record(input.Username, domain.ActivityRegistered, "")
	s.log.Info().Str("username", input.Username).Str("user_id", id).Msg("account registered")
	return &ports.RegisterResult{ID: id}, nil
}

func (s *AccountService) Login(ctx context.Context, input ports.LoginInput) (_ *ports.LoginResult, err error) {
	defer s.observe(opLogin, time.Now(), &err)

	account, err := s.store.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if !s.hasher.Verify(input.Password, account.PasswordHash) {
		s.record(input.Username, domain.ActivityLoginFailed, "")
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	update := domain.AccountUpdate{LastLoginAt: &now}
	if input.SyncEnabled != nil {
		sync := *input.SyncEnabled
		update.SyncEnabled = &sync
	}
	if err := s.store.UpdateFields(ctx, account.Username, update); err != nil {
		return nil, err
	}

	token, err := s.codec.Issue(account.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.record(account.Username, domain.ActivityLogin, "")
	return &ports.LoginResult{Token: token}, nil
}

// Logout stamps the logout time. Tokens are stateless and stay valid until
// they expire.
func (s *AccountService) Logout(ctx context.Context, token string) (err error) {
	defer s.observe(opLogout, time.Now(), &err)

	claims, err := s.authenticate(token)
	if err != nil {
		return err
	}

	now := s.now()
	err = s.store.UpdateFields(ctx, claims.Username, domain.AccountUpdate{LastLogoutAt: &now})
	if errors.Is(err, domain.ErrUserNotFound) {
		s.log.Debug().Str("username", claims.Username).Msg("logout for unknown account")
		return nil
	}
	if err != nil {
		return err
	}

	s.record(claims.Username, domain.ActivityLogout, "")
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, username, newPassword string) (err error) {
	defer s.observe(opResetPassword, time.Now(), &err)

	if err := domain.ValidatePassword(newPassword); err != nil {
		return err
	}
	if _, err := s.store.FindByUsername(ctx, username); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdateFields(ctx, username, domain.AccountUpdate{PasswordHash: hash}); err != nil {
		return err
	}

	s.record(username, domain.ActivityPasswordReset, "")
	return nil
}

func (s *AccountService) ToggleSync(ctx context.Context, token string, syncEnabled bool) (err error) {
	defer s.observe(opToggleSync, time.Now(), &err)

	claims, err := s.authenticate(token)
	if err != nil {
		return err
	}
	if err := s.store.UpdateFields(ctx, claims.Username, domain.AccountUpdate{SyncEnabled: &syncEnabled}); err != nil {
		return err
	}

	s.record(claims.Username, domain.ActivitySyncToggled, fmt.Sprintf("sync_enabled=%t", syncEnabled))
	return nil
}

// EditUserInfo renames the account and/or changes its password. Both inputs
// are validated and the password is hashed before any write, so a policy
// failure never leaves a half-applied edit.
func (s *AccountService) EditUserInfo(ctx context.Context, token string, input ports.EditUserInfoInput) (_ *ports.EditUserInfoResult, err error) {
	defer s.observe(opEditUserInfo, time.Now(), &err)

	claims, err := s.authenticate(token)
	if err != nil {
		return nil, err
	}

	current := claims.Username
	rename := input.NewUsername != nil && *input.NewUsername != current
	if rename {
		if err := domain.ValidateUsername(*input.NewUsername); err != nil {
			return nil, err
		}
	}

	var hash []byte
	if input.NewPassword != nil {
		if err := domain.ValidatePassword(*input.NewPassword); err != nil {
			return nil, err
		}
		if hash, err = s.hasher.Hash(*input.NewPassword); err != nil {
			return nil, err
		}
	}

	if !rename && hash == nil {
		exists, err := s.store.Exists(ctx, current)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrUserNotFound
		}
		return &ports.EditUserInfoResult{Username: current}, nil
	}

	result := &ports.EditUserInfoResult{Username: current}
	if rename {
		newName := *input.NewUsername
		if err := s.store.RenameUsername(ctx, current, newName); err != nil {
			return nil, err
		}
		s.record(newName, domain.ActivityRenamed, "from="+current)
		s.log.Info().Str("from", current).Str("to", newName).Msg("account renamed")

		result.Username = newName
		if result.Token, err = s.codec.Issue(newName); err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
	}

	if hash != nil {
		if err := s.store.UpdateFields(ctx, result.Username, domain.AccountUpdate{PasswordHash: hash}); err != nil {
			return nil, err
		}
		s.record(result.Username, domain.ActivityPasswordChanged, "")
	}

	return result, nil
}

// authenticate decodes a bearer token, counting rejections by reason.
func (s *AccountService) authenticate(token string) (*domain.Claims, error) {
	claims, err := s.codec.Decode(token)
	if err != nil {
		if reason := domain.TokenErrorReason(err); reason != "" {
			metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
		}
		return nil, err
	}
	return claims, nil
}

func (s *AccountService) record(username string, kind domain.ActivityKind, detail string) {
	s.activity.Record(domain.ActivityEvent{
		Username: username,
		Kind:     kind,
		At:       s.now(),
		Detail:   detail,
	})
}

func (s *AccountService) observe(op string, start time.Time, errp *error) {
	metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.OperationsTotal.WithLabelValues(op, resultLabel(*errp)).Inc()

	if *errp != nil && errors.Is(*errp, domain.ErrStoreUnavailable) {
		s.log.Error().Err(*errp).Str("operation", op).Msg("credential store failure")
	}
}

// resultLabel reduces an operation error to a low-cardinality metric label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return "duplicate_username"
	case errors.Is(err, domain.ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInvalidUsername), errors.Is(err, domain.ErrInvalidPassword):
		return "invalid_input"
	case domain.IsTokenError(err):
		return "invalid_token"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}

type discardRecorder struct{}

func (discardRecorder) Record(domain.ActivityEvent) {}

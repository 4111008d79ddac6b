// Package app содержит сценарии каталога учетных записей.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"useraccounts/internal/accounts/domain/entities"
	"useraccounts/internal/accounts/domain/services"
	"useraccounts/internal/accounts/ports/api"
	"useraccounts/internal/accounts/ports/cache"
	"useraccounts/internal/accounts/ports/repositories"
	svc "useraccounts/internal/accounts/ports/services"
	"useraccounts/pkg/logger"
)

const (
	methodRegister          = "Register"
	methodVerifyCredentials = "VerifyCredentials"
	methodChangePassword    = "ChangePassword"
	methodLookup            = "Lookup"

	msgStartRegistration     = "starting account registration"
	msgMissingField          = "required field is missing"
	msgAccountExists         = "account with this username or email already exists"
	msgAccountRegistered     = "account registered successfully"
	msgVerifyAttempt         = "credential verification attempt"
	msgAccountNotFound       = "account not found"
	msgPasswordMismatch      = "password does not match"
	msgCredentialsVerified   = "credentials verified"
	msgChangingPassword      = "changing account password"
	msgPasswordChanged       = "password changed successfully"
	msgConcurrentChange      = "stored hash changed during password update"
	msgLookupRequested       = "account lookup requested"
	msgLookupCacheHit        = "account lookup served from cache"
	msgAccountFound          = "account found"
	msgErrCheckExisting      = "failed to check existing account"
	msgErrHashPassword       = "failed to hash password"
	msgErrCreateAccount      = "failed to create account"
	msgErrFindingAccount     = "failed to find account"
	msgErrVerifyingPassword  = "failed to verify password"
	msgErrUpdatePassword     = "failed to update password hash"
	msgErrCacheRead          = "failed to read account from cache"
	msgErrCacheWrite         = "failed to write account to cache"
	msgErrCacheVersion       = "failed to read cached account version"
	msgCacheWriteSkipped     = "account changed during lookup, not cached"
	msgErrCacheInvalidate    = "failed to invalidate cached account"
	errCtxValidatingInput    = "validating input"
	errCtxCheckingAccount    = "checking existing account"
	errCtxAccountRegistered  = "account already registered"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingAccount    = "creating account"
	errCtxFindingAccount     = "finding account"
	errCtxVerifyingPassword  = "verifying password"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxUpdatingPassword   = "updating password hash"
	errCtxLookingUpAccount   = "looking up account"
)

// AccountUseCaseImpl реализует интерфейс AccountUseCase.
//
// Компонент не держит блокировок: уникальность при гонке регистраций
// обеспечивают уникальные индексы хранилища, а смену пароля защищает
// условное обновление по прежнему хэшу.
type AccountUseCaseImpl struct {
	accountRepo repositories.AccountRepository
	passwordSvc svc.PasswordService
	cache       cache.AccountCache
	now         func() time.Time
}

// Option настраивает AccountUseCaseImpl.
type Option func(*AccountUseCaseImpl)

// WithCache включает кэширование результатов Lookup.
func WithCache(c cache.AccountCache) Option {
	return func(u *AccountUseCaseImpl) {
		u.cache = c
	}
}

// WithClock подменяет источник времени для createdAt.
func WithClock(now func() time.Time) Option {
	return func(u *AccountUseCaseImpl) {
		u.now = now
	}
}

// NewAccountUseCase создает новый экземпляр каталога учетных записей.
func NewAccountUseCase(
	accountRepo repositories.AccountRepository,
	passwordSvc svc.PasswordService,
	opts ...Option,
) api.AccountUseCase {
	u := &AccountUseCaseImpl{
		accountRepo: accountRepo,
		passwordSvc: passwordSvc,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Register создает учетную запись после проверки уникальности username и email.
func (u *AccountUseCaseImpl) Register(ctx context.Context, username, password, email string) (*entities.Account, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodRegister),
		zap.String("username", username),
		zap.String("email", email),
	)
	log.Debug(ctx, msgStartRegistration)

	if err := requireFields(
		field{username, entities.ErrEmptyUsername},
		field{password, entities.ErrEmptyPassword},
		field{email, entities.ErrEmptyEmail},
	); err != nil {
		log.Debug(ctx, msgMissingField, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingInput, err)
	}

	existing, err := u.accountRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil && !errors.Is(err, entities.ErrAccountNotFound) {
		log.Error(ctx, msgErrCheckExisting, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingAccount, storeError(err))
	}
	if existing != nil {
		log.Debug(ctx, msgAccountExists)
		return nil, fmt.Errorf("%s: %w", errCtxAccountRegistered, entities.ErrDuplicateAccount)
	}

	hash, err := u.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, hasherError(err))
	}

	created, err := u.accountRepo.Create(ctx, &entities.Account{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    u.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, entities.ErrDuplicateAccount) {
			log.Debug(ctx, msgAccountExists, zap.Error(err))
			return nil, fmt.Errorf("%s: %w", errCtxAccountRegistered, entities.ErrDuplicateAccount)
		}
		log.Error(ctx, msgErrCreateAccount, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingAccount, storeError(err))
	}

	log.Info(ctx, msgAccountRegistered, zap.String("accountID", created.ID))
	return created.Redacted(), nil
}

// VerifyCredentials проверяет пароль и возвращает запись без хэша.
func (u *AccountUseCaseImpl) VerifyCredentials(ctx context.Context, username, password string) (*entities.Account, error) {
	log := logger.Log(ctx).With(zap.String("method", methodVerifyCredentials), zap.String("username", username))
	log.Debug(ctx, msgVerifyAttempt)

	if err := requireFields(
		field{username, entities.ErrEmptyUsername},
		field{password, entities.ErrEmptyPassword},
	); err != nil {
		log.Debug(ctx, msgMissingField, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingInput, err)
	}

	account, err := u.authenticate(ctx, log, username, password)
	if err != nil {
		return nil, err
	}

	log.Info(ctx, msgCredentialsVerified, zap.String("accountID", account.ID))
	return account.Redacted(), nil
}

// ChangePassword заменяет хэш пароля после проверки текущего пароля.
func (u *AccountUseCaseImpl) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	log := logger.Log(ctx).With(zap.String("method", methodChangePassword), zap.String("username", username))
	log.Debug(ctx, msgChangingPassword)

	if err := requireFields(
		field{username, entities.ErrEmptyUsername},
		field{oldPassword, entities.ErrEmptyPassword},
		field{newPassword, entities.ErrEmptyPassword},
	); err != nil {
		log.Debug(ctx, msgMissingField, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxValidatingInput, err)
	}

	account, err := u.authenticate(ctx, log, username, oldPassword)
	if err != nil {
		return err
	}

	newHash, err := u.passwordSvc.Hash(ctx, newPassword)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxHashingPassword, hasherError(err))
	}

	err = u.accountRepo.UpdatePasswordHash(ctx, username, account.PasswordHash, newHash)
	switch {
	case err == nil:
	case errors.Is(err, entities.ErrConcurrentUpdate):
		log.Debug(ctx, msgConcurrentChange)
		return fmt.Errorf("%s: %w", errCtxInvalidCredentials, entities.ErrInvalidCredentials)
	case errors.Is(err, entities.ErrAccountNotFound):
		log.Debug(ctx, msgAccountNotFound)
		return fmt.Errorf("%s: %w", errCtxUpdatingPassword, entities.ErrAccountNotFound)
	default:
		log.Error(ctx, msgErrUpdatePassword, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxUpdatingPassword, storeError(err))
	}

	if u.cache != nil {
		if err := u.cache.Invalidate(ctx, account); err != nil {
			log.Warn(ctx, msgErrCacheInvalidate, zap.Error(err))
		}
	}

	log.Info(ctx, msgPasswordChanged, zap.String("accountID", account.ID))
	return nil
}

// Lookup возвращает полную запись по username или email.
func (u *AccountUseCaseImpl) Lookup(ctx context.Context, username, email string) (*entities.Account, error) {
	log := logger.Log(ctx).With(
		zap.String("method", methodLookup),
		zap.String("username", username),
		zap.String("email", email),
	)
	log.Debug(ctx, msgLookupRequested)

	if username == "" && email == "" {
		log.Debug(ctx, msgMissingField)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingInput, entities.ValidationError(entities.ErrLookupKeyMissing))
	}

	if cached := u.cachedLookup(ctx, log, username, email); cached != nil {
		log.Debug(ctx, msgLookupCacheHit)
		return cached, nil
	}

	// Версия снимается до чтения из хранилища, иначе запись, прочитанная до смены
	// пароля, может попасть в кэш после инвалидации.
	version, cacheable := u.cacheVersion(ctx, log, username, email)

	var (
		account *entities.Account
		err     error
	)
	if username != "" {
		account, err = u.accountRepo.FindByUsername(ctx, username)
	} else {
		account, err = u.accountRepo.FindByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, entities.ErrAccountNotFound) {
			log.Debug(ctx, msgAccountNotFound)
			return nil, fmt.Errorf("%s: %w", errCtxLookingUpAccount, entities.ErrAccountNotFound)
		}
		log.Error(ctx, msgErrFindingAccount, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxLookingUpAccount, storeError(err))
	}

	if cacheable {
		stored, err := u.cache.Set(ctx, account, version)
		switch {
		case err != nil:
			log.Warn(ctx, msgErrCacheWrite, zap.Error(err))
		case !stored:
			log.Debug(ctx, msgCacheWriteSkipped)
		}
	}

	log.Debug(ctx, msgAccountFound, zap.String("accountID", account.ID))
	return account, nil
}

func (u *AccountUseCaseImpl) authenticate(ctx context.Context, log *logger.Logger, username, password string) (*entities.Account, error) {
	account, err := u.accountRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entities.ErrAccountNotFound) {
			log.Debug(ctx, msgAccountNotFound)
			return nil, fmt.Errorf("%s: %w", errCtxFindingAccount, entities.ErrAccountNotFound)
		}
		log.Error(ctx, msgErrFindingAccount, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingAccount, storeError(err))
	}

	valid, err := u.passwordSvc.Verify(ctx, password, account.PasswordHash)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err), zap.String("accountID", account.ID))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, hasherError(err))
	}
	if !valid {
		log.Debug(ctx, msgPasswordMismatch, zap.String("accountID", account.ID))
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, entities.ErrInvalidCredentials)
	}

	return account, nil
}

func (u *AccountUseCaseImpl) cachedLookup(ctx context.Context, log *logger.Logger, username, email string) *entities.Account {
	if u.cache == nil {
		return nil
	}

	var (
		account *entities.Account
		err     error
	)
	if username != "" {
		account, err = u.cache.GetByUsername(ctx, username)
	} else {
		account, err = u.cache.GetByEmail(ctx, email)
	}
	if err != nil {
		log.Warn(ctx, msgErrCacheRead, zap.Error(err))
		return nil
	}
	return account
}

func (u *AccountUseCaseImpl) cacheVersion(ctx context.Context, log *logger.Logger, username, email string) (cache.Version, bool) {
	if u.cache == nil {
		return cache.Version{}, false
	}

	version, err := u.cache.Version(ctx, username, email)
	if err != nil {
		log.Warn(ctx, msgErrCacheVersion, zap.Error(err))
		return cache.Version{}, false
	}
	return version, true
}

type field struct {
	value string
	err   error
}

func requireFields(fields ...field) error {
	var missing []error
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.err)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return entities.ValidationError(errors.Join(missing...))
}

// storeError помечает сбой хранилища как ErrStoreUnavailable.
func storeError(err error) error {
	if errors.Is(err, entities.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", entities.ErrStoreUnavailable, err)
}

// hasherError отделяет отклоненный пароль от сбоя хэширования.
func hasherError(err error) error {
	if errors.Is(err, services.ErrInvalidPassword) {
		return entities.ValidationError(err)
	}
	if errors.Is(err, services.ErrHashingFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", services.ErrHashingFailed, err)
}

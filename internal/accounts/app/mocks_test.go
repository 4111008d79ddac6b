package app_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"useraccounts/internal/accounts/domain/entities"
	"useraccounts/internal/accounts/ports/cache"
)

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) Create(ctx context.Context, account *entities.Account) (*entities.Account, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountRepository) FindByUsername(ctx context.Context, username string) (*entities.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountRepository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entities.Account, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountRepository) UpdatePasswordHash(ctx context.Context, username, oldHash, newHash string) error {
	args := m.Called(ctx, username, oldHash, newHash)
	return args.Error(0)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

type mockAccountCache struct {
	mock.Mock
}

func (m *mockAccountCache) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountCache) GetByEmail(ctx context.Context, email string) (*entities.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountCache) Version(ctx context.Context, username, email string) (cache.Version, error) {
	args := m.Called(ctx, username, email)
	return args.Get(0).(cache.Version), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountCache) Set(ctx context.Context, account *entities.Account, version cache.Version) (bool, error) {
	args := m.Called(ctx, account, version)
	return args.Bool(0), args.Error(1)
}

func (m *mockAccountCache) Invalidate(ctx context.Context, account *entities.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httpadapter "useraccounts/internal/accounts/adapters/http"
	"useraccounts/internal/accounts/adapters/http/middleware"
	"useraccounts/internal/accounts/adapters/services"
	"useraccounts/internal/accounts/adapters/sqlite"
	"useraccounts/internal/accounts/app"
	"useraccounts/internal/accounts/domain/entities"
	sqlitedb "useraccounts/pkg/db/sqlite"
)

type mockAccountUseCase struct {
	mock.Mock
}

func (m *mockAccountUseCase) Register(ctx context.Context, username, password, email string) (*entities.Account, error) {
	args := m.Called(ctx, username, password, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountUseCase) VerifyCredentials(ctx context.Context, username, password string) (*entities.Account, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

func (m *mockAccountUseCase) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	return m.Called(ctx, username, oldPassword, newPassword).Error(0)
}

func (m *mockAccountUseCase) Lookup(ctx context.Context, username, email string) (*entities.Account, error) {
	args := m.Called(ctx, username, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1) //nolint:forcetypeassert
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestApp(useCase *mockAccountUseCase, opts ...httpadapter.HandlerOption) *fiber.App {
	app := fiber.New()
	httpadapter.SetupRouter(app, httpadapter.NewHandler(useCase, nil, opts...))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp.StatusCode, decoded
}

func storedAccount() *entities.Account {
	return &entities.Account{ID: "id-1", Username: "alice", Email: "a@x.com", PasswordHash: "$2a$10$hash"}
}

func TestSignUpErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"duplicate", entities.ErrDuplicateAccount, http.StatusBadRequest, httpadapter.ErrAccountExists},
		{"validation", entities.ValidationError(entities.ErrEmptyEmail), http.StatusBadRequest, httpadapter.ErrSignUpFieldsMissing},
		{"store", errors.Join(entities.ErrStoreUnavailable, errors.New("down")), http.StatusInternalServerError, httpadapter.ErrSignUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase := new(mockAccountUseCase)
			useCase.On("Register", mock.Anything, "alice", "pw1", "a@x.com").Return(nil, tt.err).Once()

			status, body := doRequest(t, newTestApp(useCase), fiber.MethodPost, "/signup",
				`{"username":"alice","password":"pw1","email":"a@x.com"}`)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantError, body["error"])
			useCase.AssertExpectations(t)
		})
	}
}

func TestSignUpRequestValidation(t *testing.T) {
	useCase := new(mockAccountUseCase)
	app := newTestApp(useCase)

	status, body := doRequest(t, app, fiber.MethodPost, "/signup", `{"username":"alice","password":"pw1"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, httpadapter.ErrSignUpFieldsMissing, body["error"])

	status, body = doRequest(t, app, fiber.MethodPost, "/signup", `{not json`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, httpadapter.ErrInvalidRequestBody, body["error"])

	useCase.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSignInErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", entities.ErrAccountNotFound, http.StatusNotFound, httpadapter.ErrUserNotFound},
		{"bad password", entities.ErrInvalidCredentials, http.StatusBadRequest, httpadapter.ErrIncorrectPassword},
		{"store", entities.ErrStoreUnavailable, http.StatusInternalServerError, httpadapter.ErrSignIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase := new(mockAccountUseCase)
			useCase.On("VerifyCredentials", mock.Anything, "alice", "pw1").Return(nil, tt.err).Once()

			status, body := doRequest(t, newTestApp(useCase), fiber.MethodPost, "/signin",
				`{"username":"alice","password":"pw1"}`)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestUpdatePasswordErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"not found", entities.ErrAccountNotFound, http.StatusBadRequest, httpadapter.ErrUserNotFound},
		{"bad old password", entities.ErrInvalidCredentials, http.StatusBadRequest, httpadapter.ErrIncorrectOldPwd},
		{"store", entities.ErrStoreUnavailable, http.StatusInternalServerError, httpadapter.ErrPasswordUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase := new(mockAccountUseCase)
			useCase.On("ChangePassword", mock.Anything, "alice", "pw1", "pw3").Return(tt.err).Once()

			status, body := doRequest(t, newTestApp(useCase), fiber.MethodPost, "/update-password",
				`{"username":"alice","oldPassword":"pw1","newPassword":"pw3"}`)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestGetUser(t *testing.T) {
	t.Run("hash redacted by default", func(t *testing.T) {
		useCase := new(mockAccountUseCase)
		useCase.On("Lookup", mock.Anything, "alice", "").Return(storedAccount(), nil).Once()

		status, body := doRequest(t, newTestApp(useCase), fiber.MethodGet, "/user?username=alice", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "alice", body["username"])
		assert.NotContains(t, body, "password")
	})

	t.Run("hash exposed when enabled", func(t *testing.T) {
		useCase := new(mockAccountUseCase)
		useCase.On("Lookup", mock.Anything, "", "a@x.com").Return(storedAccount(), nil).Once()

		status, body := doRequest(t, newTestApp(useCase, httpadapter.WithPasswordHashExposed(true)),
			fiber.MethodGet, "/user?email=a@x.com", "")

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "$2a$10$hash", body["password"])
	})

	t.Run("missing key", func(t *testing.T) {
		useCase := new(mockAccountUseCase)
		useCase.On("Lookup", mock.Anything, "", "").
			Return(nil, entities.ValidationError(entities.ErrLookupKeyMissing)).Once()

		status, body := doRequest(t, newTestApp(useCase), fiber.MethodGet, "/user", "")

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, httpadapter.ErrLookupKeyMissing, body["error"])
	})

	t.Run("not found", func(t *testing.T) {
		useCase := new(mockAccountUseCase)
		useCase.On("Lookup", mock.Anything, "ghost", "").Return(nil, entities.ErrAccountNotFound).Once()

		status, body := doRequest(t, newTestApp(useCase), fiber.MethodGet, "/user?username=ghost", "")

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, httpadapter.ErrUserNotFound, body["error"])
	})

	t.Run("store failure", func(t *testing.T) {
		useCase := new(mockAccountUseCase)
		useCase.On("Lookup", mock.Anything, "alice", "").Return(nil, entities.ErrStoreUnavailable).Once()

		status, body := doRequest(t, newTestApp(useCase), fiber.MethodGet, "/user?username=alice", "")

		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, httpadapter.ErrUserRetrieval, body["error"])
	})
}

func TestHealth(t *testing.T) {
	healthy := fiber.New()
	httpadapter.SetupRouter(healthy, httpadapter.NewHandler(new(mockAccountUseCase),
		pingerFunc(func(context.Context) error { return nil })))

	status, body := doRequest(t, healthy, fiber.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	unhealthy := fiber.New()
	httpadapter.SetupRouter(unhealthy, httpadapter.NewHandler(new(mockAccountUseCase),
		pingerFunc(func(context.Context) error { return errors.New("down") })))

	status, body = doRequest(t, unhealthy, fiber.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unavailable", body["status"])
}

func TestRouteNotFound(t *testing.T) {
	status, body := doRequest(t, newTestApp(new(mockAccountUseCase)), fiber.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, httpadapter.ErrRouteNotFound, body["error"])
}

func TestSignInUpdatePasswordScenario(t *testing.T) {
	ctx := context.Background()
	db, err := sqlitedb.Open(ctx, filepath.Join(t.TempDir(), "accounts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Init(ctx, db))
	repo := sqlite.NewAccountRepository(db)

	useCase := app.NewAccountUseCase(repo, services.NewBcrypt(bcrypt.MinCost))
	server := fiber.New()
	httpadapter.SetupRouter(server, httpadapter.NewHandler(useCase, pingerFunc(db.PingContext)))

	status, body := doRequest(t, server, fiber.MethodPost, "/signup",
		`{"username":"alice","password":"pw1","email":"a@x.com"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, httpadapter.MsgUserRegistered, body["message"])

	status, body = doRequest(t, server, fiber.MethodPost, "/signup",
		`{"username":"alice","password":"pw2","email":"b@x.com"}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, httpadapter.ErrAccountExists, body["error"])

	status, body = doRequest(t, server, fiber.MethodPost, "/signin", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, httpadapter.MsgSignInSuccessful, body["message"])
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", user["username"])
	assert.NotContains(t, user, "password")

	status, body = doRequest(t, server, fiber.MethodPost, "/update-password",
		`{"username":"alice","oldPassword":"pw1","newPassword":"pw3"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, httpadapter.MsgPasswordUpdated, body["message"])

	status, body = doRequest(t, server, fiber.MethodPost, "/signin", `{"username":"alice","password":"pw1"}`)
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, httpadapter.ErrIncorrectPassword, body["error"])

	status, _ = doRequest(t, server, fiber.MethodPost, "/signin", `{"username":"alice","password":"pw3"}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = doRequest(t, server, fiber.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, status)
}

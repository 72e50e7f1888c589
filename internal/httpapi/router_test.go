package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"

	"github.com/elskow/sphere-accounts/internal/auth"
	"github.com/elskow/sphere-accounts/internal/config"
	"github.com/elskow/sphere-accounts/internal/database"
	"github.com/elskow/sphere-accounts/internal/observability"
)

type fixture struct {
	server *httptest.Server
	db     *database.Manager
}

type response struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	ErrorCode string            `json:"errorCode"`
	Errors    []auth.FieldError `json:"errors"`
	Token     string            `json:"token"`
	User      map[string]any    `json:"user"`
}

func newFixture(t *testing.T, pinger Pinger) *fixture {
	t.Helper()
	log := zap.NewNop()

	authCfg := &config.AuthConfig{
		JWTSecret:       "http-test-secret",
		TokenExpiration: time.Hour,
		PasswordCost:    bcrypt.MinCost,
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), &config.DatabaseConfig{LogLevel: "silent"}, log)
	require.NoError(t, err)
	require.NoError(t, db.DB().AutoMigrate(&auth.Account{}))

	metrics := observability.NewMetrics()
	tokens, err := auth.NewTokenService(authCfg)
	require.NoError(t, err)
	svc, err := auth.NewService(authCfg, log, auth.NewRepository(db.DB()), tokens, metrics)
	require.NoError(t, err)

	if pinger == nil {
		pinger = db
	}

	server := httptest.NewServer(NewRouter(Dependencies{
		Handler: NewHandler(svc, log),
		Guard:   auth.NewGuard(tokens, log, metrics),
		Metrics: metrics,
		DB:      pinger,
		Logger:  log,
	}))

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &fixture{server: server, db: db}
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) (int, response) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out response
	if resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func (f *fixture) verify(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, f.db.DB().Model(&auth.Account{}).
		Where("username = ?", username).
		Update("is_email_verified", true).Error)
}

func TestRouter_RegisterLoginProfile(t *testing.T) {
	f := newFixture(t, nil)

	status, body := f.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "alice1",
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.True(t, body.Success)
	assert.Equal(t, "pending_verification", body.User["status"])
	assert.NotContains(t, body.User, "password_hash")

	status, body = f.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"loginIdentifier": "alice1",
		"password":        "Passw0rd!",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, auth.CodeEmailNotVerified, body.ErrorCode)

	f.verify(t, "alice1")

	status, body = f.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"loginIdentifier": "alice@example.com",
		"password":        "Passw0rd!",
	})
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body.Token)
	token := body.Token

	status, body = f.do(t, http.MethodPut, "/api/v1/users/profile", token, map[string]string{
		"first_name": "Alice",
		"pincode":    "560001",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Alice", body.User["first_name"])

	status, body = f.do(t, http.MethodGet, "/api/v1/users/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice1", body.User["username"])
	assert.Equal(t, "560001", body.User["pincode"])
	assert.Nil(t, body.User["city"])
}

func TestRouter_Failures(t *testing.T) {
	f := newFixture(t, nil)

	status, _ := f.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "alice1",
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, status)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "duplicate registration",
			method:     http.MethodPost,
			path:       "/api/v1/users/register",
			body:       map[string]string{"username": "alice1", "email": "alice@example.com", "password": "Passw0rd!"},
			wantStatus: http.StatusConflict,
			wantCode:   auth.CodeUserExists,
		},
		{
			name:       "invalid registration",
			method:     http.MethodPost,
			path:       "/api/v1/users/register",
			body:       map[string]string{"username": "x", "email": "bad", "password": "weak"},
			wantStatus: http.StatusBadRequest,
			wantCode:   auth.CodeValidationFailed,
		},
		{
			name:       "malformed body",
			method:     http.MethodPost,
			path:       "/api/v1/users/login",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
			wantCode:   auth.CodeValidationFailed,
		},
		{
			name:       "empty body",
			method:     http.MethodPost,
			path:       "/api/v1/users/login",
			wantStatus: http.StatusBadRequest,
			wantCode:   auth.CodeValidationFailed,
		},
		{
			name:       "wrong password",
			method:     http.MethodPost,
			path:       "/api/v1/users/login",
			body:       map[string]string{"loginIdentifier": "alice1", "password": "Wr0ngPass!"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   auth.CodeInvalidCredentials,
		},
		{
			name:       "profile without token",
			method:     http.MethodGet,
			path:       "/api/v1/users/profile",
			wantStatus: http.StatusUnauthorized,
			wantCode:   auth.CodeTokenMissing,
		},
		{
			name:       "profile with bad token",
			method:     http.MethodPut,
			path:       "/api/v1/users/profile",
			token:      "not-a-token",
			body:       map[string]string{"city": "Pune"},
			wantStatus: http.StatusUnauthorized,
			wantCode:   auth.CodeTokenInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := f.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.ErrorCode)
		})
	}
}

func TestRouter_EmptyProfileUpdate(t *testing.T) {
	f := newFixture(t, nil)

	f.do(t, http.MethodPost, "/api/v1/users/register", "", map[string]string{
		"username": "alice1",
		"email":    "alice@example.com",
		"password": "Passw0rd!",
	})
	f.verify(t, "alice1")
	_, login := f.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"loginIdentifier": "alice1",
		"password":        "Passw0rd!",
	})
	require.NotEmpty(t, login.Token)

	status, body := f.do(t, http.MethodPut, "/api/v1/users/profile", login.Token, map[string]string{
		"username": "mallory",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, auth.CodeValidationFailed, body.ErrorCode)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "No valid fields provided for update.", body.Errors[0].Message)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error {
	return errors.New("down")
}

func TestRouter_Health(t *testing.T) {
	status, body := newFixture(t, nil).do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, body.Success)

	status, _ = newFixture(t, failingPinger{}).do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestRouter_Metrics(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"loginIdentifier": "ghost1",
		"password":        "Passw0rd!",
	})

	resp, err := f.server.Client().Get(f.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `sphere_accounts_logins_total{outcome="INVALID_CREDENTIALS"} 1`)
}

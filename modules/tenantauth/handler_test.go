package tenantauth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/webix/udirdlaga/internal/httperr"
	"github.com/webix/udirdlaga/modules/tenantauth"
	"github.com/webix/udirdlaga/modules/tenantdata"
	"github.com/webix/udirdlaga/modules/user"
	"github.com/webix/udirdlaga/pkg/auth"
	"github.com/webix/udirdlaga/pkg/jwt"
	"github.com/webix/udirdlaga/pkg/tenant"
	"github.com/webix/udirdlaga/pkg/tenantdb"
)

type memUsers struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*user.User{}} }

func (s *memUsers) FindByUsername(_ context.Context, username string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memUsers) FindByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = bson.NewObjectID()
	}
	cp := *u
	s.users[u.ID.Hex()] = &cp
	return nil
}

func (s *memUsers) SaveLockState(_ context.Context, id string, state auth.LockState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[id]
	u.LoginAttempts, u.LockUntil = state.Attempts, state.LockUntil
	return nil
}

func (s *memUsers) RecordLogin(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id].LastLogin = &at
	return nil
}

type nilHandle struct{}

func (nilHandle) Database() *mongo.Database   { return nil }
func (nilHandle) Ping(context.Context) error  { return nil }
func (nilHandle) Close(context.Context) error { return nil }

type env struct {
	router   http.Handler
	registry *tenantdb.Registry
	opened   *[]string
	users    map[string]*memUsers
	hasher   *auth.Hasher
	tokens   *jwt.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()

	var (
		mu     sync.Mutex
		opened []string
	)
	reg := tenantdb.NewRegistry(tenantdb.OpenerFunc(func(_ context.Context, name string) (tenantdb.Handle, error) {
		mu.Lock()
		opened = append(opened, name)
		mu.Unlock()
		return nilHandle{}, nil
	}), "webix-udirdlaga")

	users := map[string]*memUsers{"acme": newMemUsers(), "globex": newMemUsers()}
	binder := tenantdb.NewBinder(reg, func(conn *tenantdb.Connection) (tenantdata.Models, error) {
		return tenantdata.Models{Users: users[conn.Key()]}, nil
	})

	tokens, err := jwt.New([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	hasher := auth.NewHasher(4)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := tenantauth.NewHandler(
		auth.NewAuthenticator(auth.WithHasher(hasher)),
		tokens,
		tenantauth.WithDenylist(jwt.NewMemoryDenylist()),
	)

	r := chi.NewRouter()
	r.Route("/api/tenant/{subdomain}", func(r chi.Router) {
		r.Use(tenant.Middleware[tenantdata.Models](tenant.NewDefaultResolver(), reg, binder,
			tenant.WithErrorHandler(httperr.Writer(log))))
		r.Mount("/auth", h.Routes())
	})

	return &env{router: r, registry: reg, opened: &opened, users: users, hasher: hasher, tokens: tokens}
}

func (e *env) addUser(t *testing.T, key, username, password string, status user.Status) *user.User {
	t.Helper()
	hash, err := e.hasher.Hash(password)
	require.NoError(t, err)
	u := &user.User{Username: username, Email: username + "@acme.mn", PasswordHash: hash, Role: "user", Status: status}
	require.NoError(t, e.users[key].Create(context.Background(), u))
	return u
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Data    struct {
		Token     string     `json:"token"`
		Subdomain string     `json:"subdomain"`
		User      *user.User `json:"user"`
	} `json:"data"`
}

func (e *env) do(t *testing.T, method, target, body, token string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var out envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestLogin_UnknownUserOnLazilyOpenedTenant(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	code, body := e.do(t, http.MethodPost, "/api/tenant/acme/auth/login", `{"username":"ghost","password":"Secret1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, body.Success)
	assert.Equal(t, "Invalid credentials", body.Message)

	assert.Equal(t, []string{"webix_acme"}, *e.opened)
	conn, ok := e.registry.Tenant("ACME")
	require.True(t, ok)
	assert.Equal(t, "webix_acme", conn.DatabaseName())
}

func TestLogin(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	jane := e.addUser(t, "acme", "jane", "Secret1", user.StatusActive)
	e.addUser(t, "acme", "sleepy", "Secret1", user.StatusInactive)

	t.Run("success", func(t *testing.T) {
		code, body := e.do(t, http.MethodPost, "/api/tenant/Acme/auth/login", `{"username":"jane","password":"Secret1"}`, "")
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "acme", body.Data.Subdomain)
		require.NotNil(t, body.Data.User)
		assert.Equal(t, jane.ID, body.Data.User.ID)
		assert.Empty(t, body.Data.User.PasswordHash)

		claims, err := e.tokens.ParseClaims(body.Data.Token)
		require.NoError(t, err)
		assert.Equal(t, jane.ID.Hex(), claims.UserID)
		assert.Equal(t, "acme", claims.Subdomain)
	})

	t.Run("inactive", func(t *testing.T) {
		code, body := e.do(t, http.MethodPost, "/api/tenant/acme/auth/login", `{"username":"sleepy","password":"Secret1"}`, "")
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Account is inactive", body.Message)
	})

	t.Run("missing fields", func(t *testing.T) {
		code, body := e.do(t, http.MethodPost, "/api/tenant/acme/auth/login", `{"username":"jane"}`, "")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "validation_error", body.Error)
	})

	t.Run("invalid subdomain", func(t *testing.T) {
		code, _ := e.do(t, http.MethodPost, "/api/tenant/-x-/auth/login", `{"username":"jane","password":"Secret1"}`, "")
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestLogin_Lockout(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.addUser(t, "acme", "jane", "Secret1", user.StatusActive)

	for i := range 5 {
		code, _ := e.do(t, http.MethodPost, "/api/tenant/acme/auth/login", `{"username":"jane","password":"wrong"}`, "")
		require.Equal(t, http.StatusUnauthorized, code, "attempt %d", i+1)
	}
	code, body := e.do(t, http.MethodPost, "/api/tenant/acme/auth/login", `{"username":"jane","password":"Secret1"}`, "")
	assert.Equal(t, http.StatusLocked, code)
	assert.Equal(t, "locked", body.Error)
}

func TestMeAndLogout(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	jane := e.addUser(t, "acme", "jane", "Secret1", user.StatusActive)

	_, login := e.do(t, http.MethodPost, "/api/tenant/acme/auth/login", `{"username":"jane","password":"Secret1"}`, "")
	token := login.Data.Token
	require.NotEmpty(t, token)

	code, body := e.do(t, http.MethodGet, "/api/tenant/acme/auth/me", "", token)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, jane.ID, body.Data.User.ID)

	code, body = e.do(t, http.MethodGet, "/api/tenant/globex/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token for this organization", body.Message)

	code, _ = e.do(t, http.MethodGet, "/api/tenant/acme/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = e.do(t, http.MethodPost, "/api/tenant/acme/auth/logout", "", token)
	require.Equal(t, http.StatusOK, code)

	code, body = e.do(t, http.MethodGet, "/api/tenant/acme/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token has been revoked", body.Message)
}

func TestMe_UserRemoved(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	token, _, err := e.tokens.Issue(bson.NewObjectID().Hex(), "acme")
	require.NoError(t, err)

	code, body := e.do(t, http.MethodGet, "/api/tenant/acme/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token is valid but user no longer exists", body.Message)
}

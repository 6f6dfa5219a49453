package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teacellar/apiserver/internal/services"
	"github.com/teacellar/apiserver/internal/store"
	"github.com/teacellar/apiserver/internal/token"
	"github.com/teacellar/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

type memAccountRepo struct {
	accounts map[int]types.Account
	nextID   int
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[int]types.Account), nextID: 1}
}

func (m *memAccountRepo) GetByID(_ context.Context, id int) (types.Account, error) {
	account, ok := m.accounts[id]
	if !ok {
		return types.Account{}, store.ErrNotFound
	}
	return account, nil
}

func (m *memAccountRepo) GetByUsername(_ context.Context, username string) (types.Account, error) {
	for _, account := range m.accounts {
		if account.Username == username {
			return account, nil
		}
	}
	return types.Account{}, store.ErrNotFound
}

func (m *memAccountRepo) List(_ context.Context) ([]types.Account, error) {
	accounts := make([]types.Account, 0, len(m.accounts))
	for _, account := range m.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (m *memAccountRepo) Create(_ context.Context, account types.Account) (types.Account, error) {
	account.ID = m.nextID
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	m.nextID++
	m.accounts[account.ID] = account
	return account, nil
}

func (m *memAccountRepo) UpdatePassword(_ context.Context, id int, passwordHash string, isInitial bool) error {
	account, ok := m.accounts[id]
	if !ok {
		return store.ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.IsInitial = isInitial
	m.accounts[id] = account
	return nil
}

func (m *memAccountRepo) Delete(_ context.Context, id int) error {
	if _, ok := m.accounts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

func newAuthTestRouter(repo services.AccountRepository) (*chi.Mux, *token.Service) {
	tokens := token.NewService("test-secret")
	accountService := services.NewAccountService(repo, tokens)
	authMiddleware := RequireAuth(tokens)

	router := chi.NewRouter()
	router.Route("/auth", func(r chi.Router) {
		AuthRouter(r, accountService, authMiddleware)
	})
	router.Route("/accounts", func(r chi.Router) {
		AccountRouter(r, accountService, authMiddleware)
	})
	return router, tokens
}

func seedAccount(t *testing.T, repo *memAccountRepo, username, password, role string) types.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	account, err := repo.Create(context.Background(), types.Account{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	})
	require.NoError(t, err)
	return account
}

func doJSON(t *testing.T, router http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestLoginReturnsTokenAndAccount(t *testing.T) {
	repo := newMemAccountRepo()
	seedAccount(t, repo, "alice", "secret-pass", types.RoleUser)
	router, _ := newAuthTestRouter(repo)

	rr := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Username: "alice", Password: "secret-pass"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "alice", resp.Account.Username)
	assert.NotContains(t, rr.Body.String(), "password_hash")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newMemAccountRepo()
	seedAccount(t, repo, "alice", "secret-pass", types.RoleUser)
	router, _ := newAuthTestRouter(repo)

	rr := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Username: "alice", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Username: "nobody", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginRejectsMissingFields(t *testing.T) {
	router, _ := newAuthTestRouter(newMemAccountRepo())

	rr := doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Username: " ", Password: ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProtectedRouteRequiresBearer(t *testing.T) {
	router, _ := newAuthTestRouter(newMemAccountRepo())

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/auth/me", "definitely-not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	repo := newMemAccountRepo()
	account := seedAccount(t, repo, "alice", "secret-pass", types.RoleUser)
	router, tokens := newAuthTestRouter(repo)

	bearer, err := tokens.Issue(account.ID, account.Username, account.Role)
	require.NoError(t, err)

	rr := doJSON(t, router, http.MethodPost, "/auth/password", bearer, ChangePasswordRequest{Password: "abc"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodPost, "/auth/password", bearer, ChangePasswordRequest{Password: "abcd"})
	assert.Equal(t, http.StatusOK, rr.Code)

	// The old password no longer authenticates.
	rr = doJSON(t, router, http.MethodPost, "/auth/login", "", LoginRequest{Username: "alice", Password: "secret-pass"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAccountRoutesRequireAdmin(t *testing.T) {
	repo := newMemAccountRepo()
	user := seedAccount(t, repo, "alice", "secret-pass", types.RoleUser)
	admin := seedAccount(t, repo, "root", "root-pass", types.RoleAdmin)
	router, tokens := newAuthTestRouter(repo)

	userBearer, err := tokens.Issue(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	adminBearer, err := tokens.Issue(admin.ID, admin.Username, admin.Role)
	require.NoError(t, err)

	rr := doJSON(t, router, http.MethodGet, "/accounts/", userBearer, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/accounts/", adminBearer, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var accounts []types.Account
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &accounts))
	assert.Len(t, accounts, 2)
}

func TestCreateAndDeleteAccountEndpoints(t *testing.T) {
	repo := newMemAccountRepo()
	admin := seedAccount(t, repo, "root", "root-pass", types.RoleAdmin)
	router, tokens := newAuthTestRouter(repo)

	bearer, err := tokens.Issue(admin.ID, admin.Username, admin.Role)
	require.NoError(t, err)

	rr := doJSON(t, router, http.MethodPost, "/accounts/", bearer, CreateAccountRequest{Username: "bob", Password: "pass"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created types.Account
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, types.RoleUser, created.Role)

	rr = doJSON(t, router, http.MethodPost, "/accounts/", bearer, CreateAccountRequest{Username: "bob", Password: "other"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	// Self-deletion is rejected.
	rr = doJSON(t, router, http.MethodDelete, "/accounts/1", bearer, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/accounts/2", bearer, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/teacellar/apiserver/internal/services"
	"github.com/teacellar/apiserver/types"
)

// AuthHandler provides login and self-service account endpoints.
type AuthHandler struct {
	accountService *services.AccountService
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(accountService *services.AccountService) *AuthHandler {
	return &AuthHandler{accountService: accountService}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, accountService *services.AccountService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAuthHandler(accountService)

	r.Post("/login", handler.Login)
	r.With(authMiddleware).Post("/password", handler.ChangePassword)
	r.With(authMiddleware).Get("/me", handler.Me)
}

// AccountRouter registers the admin-only account lifecycle routes.
func AccountRouter(r chi.Router, accountService *services.AccountService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAuthHandler(accountService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListAccounts)
	r.Post("/", handler.CreateAccount)
	r.Delete("/{accountID}", handler.DeleteAccount)
}

// Login verifies credentials and returns a token with the account summary.
// The reserved administrator name is provisioned on first login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing credentials")
		return
	}

	assertion, account, err := h.accountService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err, "failed to authenticate")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{Token: assertion, Account: account})
}

// ChangePassword stores a new password for the authenticated account.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.accountService.ChangePassword(r.Context(), identity, req.Password); err != nil {
		writeDomainError(w, err, "failed to change password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the current authenticated account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	account, err := h.accountService.GetByID(r.Context(), identity.AccountID)
	if err != nil {
		writeDomainError(w, err, "failed to load account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// ListAccounts returns every account, oldest first. Admin only.
func (h *AuthHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	accounts, err := h.accountService.List(r.Context(), identity)
	if err != nil {
		writeDomainError(w, err, "failed to list accounts")
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

// CreateAccount registers a new user account. Admin only.
func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	account, err := h.accountService.Create(r.Context(), identity, req.Username, req.Password)
	if err != nil {
		writeDomainError(w, err, "failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// DeleteAccount removes an account and everything it owns. Admin only;
// self-deletion is rejected.
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	raw := chi.URLParam(r, "accountID")
	targetID, err := strconv.Atoi(raw)
	if err != nil || targetID < 1 {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.accountService.Delete(r.Context(), identity, targetID); err != nil {
		writeDomainError(w, err, "failed to delete account")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

type CreateAccountRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token   string        `json:"token"`
	Account types.Account `json:"account"`
}

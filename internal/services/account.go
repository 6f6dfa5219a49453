package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/teacellar/apiserver/internal/store"
	"github.com/teacellar/apiserver/internal/token"
	"github.com/teacellar/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ReservedAdminUsername is the one account name with a bootstrap path:
	// logging in with it provisions (or repairs) the default administrator.
	ReservedAdminUsername = "admin"

	defaultAdminPassword = "admin123"
	minPasswordLength    = 4

	// bcrypt encodes every digest to exactly 60 bytes. A stored hash of any
	// other length is corrupt and gets repaired before comparison.
	bcryptHashLength = 60
)

// AccountRepository defines persistence operations for accounts.
type AccountRepository interface {
	GetByID(ctx context.Context, id int) (types.Account, error)
	GetByUsername(ctx context.Context, username string) (types.Account, error)
	List(ctx context.Context) ([]types.Account, error)
	Create(ctx context.Context, account types.Account) (types.Account, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string, isInitial bool) error
	Delete(ctx context.Context, id int) error
}

// AccountService encapsulates login, the admin bootstrap/repair path, and
// admin-only account lifecycle.
type AccountService struct {
	repo   AccountRepository
	tokens *token.Service
}

func NewAccountService(repo AccountRepository, tokens *token.Service) *AccountService {
	return &AccountService{repo: repo, tokens: tokens}
}

// Login verifies credentials and returns a signed assertion plus the
// account summary. For the reserved admin name it first runs the
// bootstrap/repair state machine; every other name must already exist.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, types.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", types.Account{}, ErrUnauthenticated
	}

	var account types.Account
	var err error
	if username == ReservedAdminUsername {
		account, err = s.ensureAdminAccount(ctx)
	} else {
		account, err = s.repo.GetByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return "", types.Account{}, ErrUnauthenticated
		}
	}
	if err != nil {
		return "", types.Account{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", types.Account{}, ErrUnauthenticated
	}

	assertion, err := s.tokens.Issue(account.ID, account.Username, account.Role)
	if err != nil {
		return "", types.Account{}, err
	}

	return assertion, account, nil
}

// ensureAdminAccount provisions the reserved administrator on first login
// and repairs a corrupt stored hash. It must run before any credential
// comparison for that name.
func (s *AccountService) ensureAdminAccount(ctx context.Context) (types.Account, error) {
	account, err := s.repo.GetByUsername(ctx, ReservedAdminUsername)
	if errors.Is(err, store.ErrNotFound) {
		hash, hashErr := hashPassword(defaultAdminPassword)
		if hashErr != nil {
			return types.Account{}, hashErr
		}
		return s.repo.Create(ctx, types.Account{
			Username:     ReservedAdminUsername,
			PasswordHash: hash,
			Role:         types.RoleAdmin,
			IsInitial:    true,
		})
	}
	if err != nil {
		return types.Account{}, err
	}

	if len(account.PasswordHash) != bcryptHashLength {
		hash, hashErr := hashPassword(defaultAdminPassword)
		if hashErr != nil {
			return types.Account{}, hashErr
		}
		if err := s.repo.UpdatePassword(ctx, account.ID, hash, true); err != nil {
			return types.Account{}, err
		}
		account.PasswordHash = hash
		account.IsInitial = true
	}

	return account, nil
}

// GetByID loads the account behind a resolved identity.
func (s *AccountService) GetByID(ctx context.Context, id int) (types.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// ChangePassword stores a new hash for the identity's account and clears
// the is_initial flag.
func (s *AccountService) ChangePassword(ctx context.Context, identity token.Identity, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, identity.AccountID, hash, false)
}

// List returns every account ordered by creation time. Admin only.
func (s *AccountService) List(ctx context.Context, identity token.Identity) ([]types.Account, error) {
	if identity.Role != types.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.repo.List(ctx)
}

// Create registers a new account with role "user". Admin only.
func (s *AccountService) Create(ctx context.Context, identity token.Identity, username, password string) (types.Account, error) {
	if identity.Role != types.RoleAdmin {
		return types.Account{}, ErrForbidden
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return types.Account{}, fmt.Errorf("%w: username and password are required", ErrInvalidInput)
	}

	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return types.Account{}, fmt.Errorf("%w: username already exists", ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.Account{}, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return types.Account{}, err
	}

	return s.repo.Create(ctx, types.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         types.RoleUser,
	})
}

// Delete removes an account and, through the schema's cascades, its items
// and their ledgers. Admin only; self-deletion is rejected.
func (s *AccountService) Delete(ctx context.Context, identity token.Identity, targetID int) error {
	if identity.Role != types.RoleAdmin {
		return ErrForbidden
	}
	if targetID == identity.AccountID {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidInput)
	}
	return s.repo.Delete(ctx, targetID)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

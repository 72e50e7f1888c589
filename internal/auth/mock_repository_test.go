package auth

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// mockRepository keeps accounts in memory and enforces the same uniqueness
// rules as the accounts table.
type mockRepository struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]Account

	// err, when set, is returned by every call.
	err error
	// createErr, when set, is returned by CreateAccount only.
	createErr error
	// lookupErrAfterCreate, when set, fails lookups once an insert was attempted.
	lookupErrAfterCreate error
	createAttempted      bool
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		accounts: make(map[uuid.UUID]Account),
	}
}

func (r *mockRepository) FindByUsernameOrEmail(_ context.Context, username, email string) ([]Account, error) {
	return r.find(func(a Account) bool {
		return a.Username == username || a.Email == email
	})
}

func (r *mockRepository) FindByLoginIdentifier(_ context.Context, identifier string) ([]Account, error) {
	email := NormalizeEmail(identifier)
	return r.find(func(a Account) bool {
		return a.Username == identifier || a.Email == email
	})
}

func (r *mockRepository) find(match func(Account) bool) ([]Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, r.err
	}
	if r.createAttempted && r.lookupErrAfterCreate != nil {
		return nil, r.lookupErrAfterCreate
	}

	var out []Account
	for _, a := range r.accounts {
		if match(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *mockRepository) CreateAccount(_ context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return r.err
	}
	r.createAttempted = true
	if r.createErr != nil {
		return r.createErr
	}

	for _, a := range r.accounts {
		if a.Username == account.Username || a.Email == account.Email {
			return ErrAccountExists
		}
	}

	r.accounts[account.ID] = *account
	return nil
}

func (r *mockRepository) UpdateProfile(_ context.Context, id uuid.UUID, update ProfileUpdate, at time.Time) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}

	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}

	if update.FirstName != nil {
		a.FirstName = update.FirstName
	}
	if update.LastName != nil {
		a.LastName = update.LastName
	}
	if update.Bio != nil {
		a.Bio = update.Bio
	}
	if update.City != nil {
		a.City = update.City
	}
	if update.Pincode != nil {
		a.Pincode = update.Pincode
	}
	if update.GeneralAvailability != nil {
		a.GeneralAvailability = update.GeneralAvailability
	}
	a.UpdatedAt = at

	r.accounts[id] = a
	return &a, nil
}

func (r *mockRepository) GetAccountByID(_ context.Context, id uuid.UUID) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.err != nil {
		return nil, r.err
	}

	a, ok := r.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &a, nil
}

func (r *mockRepository) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}

func (r *mockRepository) get(id uuid.UUID) Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.accounts[id]
}

func (r *mockRepository) setState(id uuid.UUID, status Status, verified bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.accounts[id]
	a.Status = status
	a.IsEmailVerified = verified
	r.accounts[id] = a
}

func (r *mockRepository) setPasswordHash(id uuid.UUID, hash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.accounts[id]
	a.PasswordHash = hash
	r.accounts[id] = a
}

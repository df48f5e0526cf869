package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/contracthub/internal/domain/user"
	"github.com/google/uuid"
)

// UsersRepo mirrors the postgres repo for tests and local hacking. The
// contracts repo is shared so the delete-user dependency check sees the
// same data.
type UsersRepo struct {
	mu        sync.RWMutex
	items     map[string]user.User
	contracts *ContractsRepo
}

func NewUsersRepo(contracts *ContractsRepo) *UsersRepo {
	return &UsersRepo{
		items:     make(map[string]user.User),
		contracts: contracts,
	}
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.items {
		if u.Email == email {
			return u, nil
		}
	}

	return user.User{}, user.ErrNotFound
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]user.User, 0, len(r.items))

	for _, u := range r.items {
		users = append(users, u)
	}

	return users, nil
}

func (r *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// same uniqueness rule the DB index enforces
	for _, u := range r.items {
		if u.Email == req.Email {
			return user.User{}, user.ErrEmailTaken
		}
	}

	u := user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	r.items[u.ID] = u

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	if req.Name != nil {
		u.Name = *req.Name
	}

	if req.Email != nil {
		for _, other := range r.items {
			if other.ID != id && other.Email == *req.Email {
				return user.User{}, user.ErrEmailTaken
			}
		}
		u.Email = *req.Email
	}

	r.items[id] = u

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]

	if !ok {
		return user.ErrNotFound
	}

	if r.contracts != nil {
		owned, _ := r.contracts.ListByUser(ctx, id)

		if len(owned) > 0 {
			return user.ErrHasContracts
		}
	}

	delete(r.items, id)

	return nil
}

// Seed is a test helper that inserts a user as is.
func (r *UsersRepo) Seed(u user.User) {
	r.mu.Lock()
	r.items[u.ID] = u
	r.mu.Unlock()
}

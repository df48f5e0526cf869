package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/contracthub/internal/domain/contract"
	"github.com/geocoder89/contracthub/internal/domain/user"
	"github.com/google/uuid"
)

type ContractsRepo struct {
	mu    sync.RWMutex
	items map[string]contract.Contract
	users *UsersRepo
}

func NewContractsRepo() *ContractsRepo {
	return &ContractsRepo{
		items: make(map[string]contract.Contract),
	}
}

// BindUsers wires the users repo in after construction (the two repos
// reference each other).
func (r *ContractsRepo) BindUsers(users *UsersRepo) {
	r.users = users
}

func (r *ContractsRepo) GetByID(ctx context.Context, id string) (contract.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[id]

	if !ok {
		return contract.Contract{}, contract.ErrNotFound
	}

	return c, nil
}

func (r *ContractsRepo) List(ctx context.Context) ([]contract.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contracts := make([]contract.Contract, 0, len(r.items))

	for _, c := range r.items {
		contracts = append(contracts, c)
	}

	return contracts, nil
}

func (r *ContractsRepo) ListByUser(ctx context.Context, userID string) ([]contract.Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contracts := make([]contract.Contract, 0)

	for _, c := range r.items {
		if c.UserID == userID {
			contracts = append(contracts, c)
		}
	}

	return contracts, nil
}

func (r *ContractsRepo) Create(ctx context.Context, req contract.CreateContractRequest) (contract.Contract, error) {
	if r.users != nil {
		_, err := r.users.GetByID(ctx, req.UserID)

		if err != nil {
			return contract.Contract{}, user.ErrNotFound
		}
	}

	c := contract.Contract{
		ID:          uuid.NewString(),
		Description: req.Description,
		UserID:      req.UserID,
		Fidelity:    req.Fidelity,
		Amount:      req.Amount,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.items[c.ID] = c
	r.mu.Unlock()

	return c, nil
}

func (r *ContractsRepo) Update(ctx context.Context, id string, req contract.UpdateContractRequest) (contract.Contract, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.items[id]

	if !ok {
		return contract.Contract{}, contract.ErrNotFound
	}

	if req.Description != nil {
		c.Description = *req.Description
	}

	if req.Fidelity != nil {
		c.Fidelity = *req.Fidelity
	}

	if req.Amount != nil {
		c.Amount = *req.Amount
	}

	r.items[id] = c

	return c, nil
}

func (r *ContractsRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]

	if !ok {
		return contract.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

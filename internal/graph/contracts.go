package graph

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/contracthub/internal/domain/contract"
	"github.com/geocoder89/contracthub/internal/domain/user"
	graphql "github.com/graph-gophers/graphql-go"
)

type CreateContractInput struct {
	Description string `validate:"required"`
	UserID      graphql.ID
	Fidelity    int32
	Amount      float64
}

type UpdateContractInput struct {
	ID          graphql.ID
	Description *string
	Fidelity    *int32
	Amount      *float64
}

type DeleteContractInput struct {
	ID graphql.ID
}

func (r *Resolver) Contracts(ctx context.Context) ([]*contractResolver, error) {
	op := "contracts"
	start := time.Now()

	list, err := r.contracts.List(ctx)

	if err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	out := make([]*contractResolver, 0, len(list))

	for _, c := range list {
		// nested users resolve lazily, per contract, only if requested
		out = append(out, &contractResolver{c: c, users: r.users})
	}

	r.observe(op, outcomeOK, start)

	return out, nil
}

// Contract eagerly loads the owning user so the nested object is populated
// in one round trip from the caller's point of view.
func (r *Resolver) Contract(ctx context.Context, args struct{ ID graphql.ID }) (*contractResolver, error) {
	op := "contract"
	start := time.Now()
	id := string(args.ID)

	c, cached := r.cachedContract(ctx, id)

	if !cached {
		var err error
		c, err = r.contracts.GetByID(ctx, id)

		if err != nil {
			if errors.Is(err, contract.ErrNotFound) {
				r.observe(op, outcomeOK, start)
				return nil, nil
			}
			return nil, r.internal(ctx, op, start, err)
		}

		r.cacheContract(ctx, c)
	}

	owner, err := r.users.GetByID(ctx, c.UserID)

	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return nil, r.internal(ctx, op, start, err)
	}

	res := &contractResolver{c: c}

	if err == nil {
		res.owner = &owner
	}

	r.observe(op, outcomeOK, start)

	return res, nil
}

// ContractWithoutUser returns the bare contract: the nested user field
// stays null and only the userId foreign key is exposed. Shape variant of
// Contract for callers who do not want the join.
func (r *Resolver) ContractWithoutUser(ctx context.Context, args struct{ ID graphql.ID }) (*contractResolver, error) {
	op := "contractWithoutUser"
	start := time.Now()
	id := string(args.ID)

	c, cached := r.cachedContract(ctx, id)

	if !cached {
		var err error
		c, err = r.contracts.GetByID(ctx, id)

		if err != nil {
			if errors.Is(err, contract.ErrNotFound) {
				r.observe(op, outcomeOK, start)
				return nil, nil
			}
			return nil, r.internal(ctx, op, start, err)
		}

		r.cacheContract(ctx, c)
	}

	r.observe(op, outcomeOK, start)

	// users deliberately left nil
	return &contractResolver{c: c}, nil
}

// ContractsByUser returns an empty list for a user with no contracts AND
// for an unknown user id: queries signal absence, never failure.
func (r *Resolver) ContractsByUser(ctx context.Context, args struct{ UserID graphql.ID }) ([]*contractResolver, error) {
	op := "contractsByUser"
	start := time.Now()

	list, err := r.contracts.ListByUser(ctx, string(args.UserID))

	if err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	out := make([]*contractResolver, 0, len(list))

	for _, c := range list {
		out = append(out, &contractResolver{c: c, users: r.users})
	}

	r.observe(op, outcomeOK, start)

	return out, nil
}

func (r *Resolver) CreateContract(ctx context.Context, args struct{ Input CreateContractInput }) (*contractPayloadResolver, error) {
	op := "createContract"
	start := time.Now()

	if msg, bad := invalidInput(args.Input); bad {
		r.observe(op, outcomeRejected, start)
		return &contractPayloadResolver{message: msg}, nil
	}

	// advisory owner check; the foreign key has the final say
	owner, err := r.users.GetByID(ctx, string(args.Input.UserID))

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			r.observe(op, outcomeRejected, start)
			return &contractPayloadResolver{message: mustMessage(user.ErrNotFound)}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	c, err := r.contracts.Create(ctx, contract.CreateContractRequest{
		Description: args.Input.Description,
		UserID:      owner.ID,
		Fidelity:    args.Input.Fidelity,
		Amount:      args.Input.Amount,
	})

	if err != nil {
		if msg, known := messageFor(err); known {
			r.observe(op, outcomeRejected, start)
			return &contractPayloadResolver{message: msg}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	r.observe(op, outcomeOK, start)

	return &contractPayloadResolver{
		contract: &contractResolver{c: c, owner: &owner},
		message:  msgContractCreated,
	}, nil
}

func (r *Resolver) UpdateContract(ctx context.Context, args struct{ Input UpdateContractInput }) (*contractPayloadResolver, error) {
	op := "updateContract"
	start := time.Now()
	id := string(args.Input.ID)

	c, err := r.contracts.Update(ctx, id, contract.UpdateContractRequest{
		Description: args.Input.Description,
		Fidelity:    args.Input.Fidelity,
		Amount:      args.Input.Amount,
	})

	if err != nil {
		if msg, known := messageFor(err); known {
			r.observe(op, outcomeRejected, start)
			return &contractPayloadResolver{message: msg}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	r.invalidateContract(ctx, id)
	r.observe(op, outcomeOK, start)

	return &contractPayloadResolver{
		contract: &contractResolver{c: c, users: r.users},
		message:  msgContractUpdated,
	}, nil
}

func (r *Resolver) DeleteContract(ctx context.Context, args struct{ Input DeleteContractInput }) (*deletePayloadResolver, error) {
	op := "deleteContract"
	start := time.Now()
	id := string(args.Input.ID)

	err := r.contracts.Delete(ctx, id)

	if err != nil {
		if msg, known := messageFor(err); known {
			r.observe(op, outcomeRejected, start)
			return &deletePayloadResolver{success: false, message: msg}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	r.invalidateContract(ctx, id)
	r.observe(op, outcomeOK, start)

	return &deletePayloadResolver{success: true, message: msgContractDeleted}, nil
}

// cache helpers

func (r *Resolver) cachedContract(ctx context.Context, id string) (contract.Contract, bool) {
	if r.cache == nil {
		return contract.Contract{}, false
	}

	raw, ok := r.cache.Get(ctx, "contract:"+id)

	if !ok {
		return contract.Contract{}, false
	}

	var c contract.Contract

	if err := json.Unmarshal(raw, &c); err != nil {
		return contract.Contract{}, false
	}

	return c, true
}

func (r *Resolver) cacheContract(ctx context.Context, c contract.Contract) {
	if r.cache == nil {
		return
	}

	raw, err := json.Marshal(c)

	if err != nil {
		return
	}

	r.cache.Set(ctx, "contract:"+c.ID, raw)
}

func (r *Resolver) invalidateContract(ctx context.Context, id string) {
	if r.cache != nil {
		r.cache.Delete(ctx, "contract:"+id)
	}
}

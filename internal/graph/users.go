package graph

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/geocoder89/contracthub/internal/authctx"
	"github.com/geocoder89/contracthub/internal/domain/user"
	graphql "github.com/graph-gophers/graphql-go"
)

type CreateUserInput struct {
	Name  string `validate:"required"`
	Email string `validate:"required,email"`
}

type UpdateUserInput struct {
	ID    graphql.ID
	Name  *string
	Email *string `validate:"omitempty,email"`
}

type DeleteUserInput struct {
	ID graphql.ID
}

// Users is the one gated operation: it refuses without a verified access
// token in the request context.
func (r *Resolver) Users(ctx context.Context) ([]*userResolver, error) {
	op := "users"
	start := time.Now()

	if _, ok := authctx.ClaimsFrom(ctx); !ok {
		r.observe(op, outcomeRejected, start)
		return nil, errUnauthorized
	}

	list, err := r.users.List(ctx)

	if err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	out := make([]*userResolver, 0, len(list))

	for _, u := range list {
		out = append(out, &userResolver{u: u})
	}

	r.observe(op, outcomeOK, start)

	return out, nil
}

// User returns null for an unmatched id, absence is not an error.
func (r *Resolver) User(ctx context.Context, args struct{ ID graphql.ID }) (*userResolver, error) {
	op := "user"
	start := time.Now()
	id := string(args.ID)

	if u, ok := r.cachedUser(ctx, id); ok {
		r.observe(op, outcomeOK, start)
		return &userResolver{u: u}, nil
	}

	u, err := r.users.GetByID(ctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			r.observe(op, outcomeOK, start)
			return nil, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	r.cacheUser(ctx, u)
	r.observe(op, outcomeOK, start)

	return &userResolver{u: u}, nil
}

func (r *Resolver) CreateUser(ctx context.Context, args struct{ Input CreateUserInput }) (*userPayloadResolver, error) {
	op := "createUser"
	start := time.Now()

	if msg, bad := invalidInput(args.Input); bad {
		r.observe(op, outcomeRejected, start)
		return &userPayloadResolver{message: msg}, nil
	}

	// advisory pre-check for a clean message; the unique index settles
	// concurrent duplicates
	_, err := r.users.GetByEmail(ctx, args.Input.Email)

	if err == nil {
		r.observe(op, outcomeRejected, start)
		return &userPayloadResolver{message: mustMessage(user.ErrEmailTaken)}, nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return nil, r.internal(ctx, op, start, err)
	}

	u, err := r.users.Create(ctx, user.CreateUserRequest{
		Name:  args.Input.Name,
		Email: args.Input.Email,
	})

	if err != nil {
		if msg, known := messageFor(err); known {
			r.observe(op, outcomeRejected, start)
			return &userPayloadResolver{message: msg}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	r.observe(op, outcomeOK, start)

	return &userPayloadResolver{
		user:    &userResolver{u: u},
		message: msgUserCreated,
	}, nil
}

func (r *Resolver) UpdateUser(ctx context.Context, args struct{ Input UpdateUserInput }) (*userPayloadResolver, error) {
	op := "updateUser"
	start := time.Now()

	if msg, bad := invalidInput(args.Input); bad {
		r.observe(op, outcomeRejected, start)
		return &userPayloadResolver{message: msg}, nil
	}

	id := string(args.Input.ID)

	u, err := r.users.Update(ctx, id, user.UpdateUserRequest{
		Name:  args.Input.Name,
		Email: args.Input.Email,
	})

	if err != nil {
		if msg, known := messageFor(err); known {
			r.observe(op, outcomeRejected, start)
			return &userPayloadResolver{message: msg}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	r.invalidateUser(ctx, id)
	r.observe(op, outcomeOK, start)

	return &userPayloadResolver{
		user:    &userResolver{u: u},
		message: msgUserUpdated,
	}, nil
}

func (r *Resolver) DeleteUser(ctx context.Context, args struct{ Input DeleteUserInput }) (*deletePayloadResolver, error) {
	op := "deleteUser"
	start := time.Now()
	id := string(args.Input.ID)

	err := r.users.Delete(ctx, id)

	if err != nil {
		if msg, known := messageFor(err); known {
			r.observe(op, outcomeRejected, start)
			return &deletePayloadResolver{success: false, message: msg}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	// sessions die with the account
	if err := r.sessions.RevokeAllForUser(ctx, id); err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	r.invalidateUser(ctx, id)
	r.observe(op, outcomeOK, start)

	return &deletePayloadResolver{success: true, message: msgUserDeleted}, nil
}

// cache helpers

func (r *Resolver) cachedUser(ctx context.Context, id string) (user.User, bool) {
	if r.cache == nil {
		return user.User{}, false
	}

	raw, ok := r.cache.Get(ctx, "user:"+id)

	if !ok {
		return user.User{}, false
	}

	var u user.User

	if err := json.Unmarshal(raw, &u); err != nil {
		return user.User{}, false
	}

	return u, true
}

func (r *Resolver) cacheUser(ctx context.Context, u user.User) {
	if r.cache == nil {
		return
	}

	raw, err := json.Marshal(u)

	if err != nil {
		return
	}

	r.cache.Set(ctx, "user:"+u.ID, raw)
}

func (r *Resolver) invalidateUser(ctx context.Context, id string) {
	if r.cache != nil {
		r.cache.Delete(ctx, "user:"+id)
	}
}

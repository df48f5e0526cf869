package graph

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/contracthub/internal/auth"
	"github.com/geocoder89/contracthub/internal/cache"
	"github.com/geocoder89/contracthub/internal/domain/contract"
	"github.com/geocoder89/contracthub/internal/domain/user"
	"github.com/geocoder89/contracthub/internal/observability"
	"github.com/geocoder89/contracthub/internal/repo/postgres"
	graphql "github.com/graph-gophers/graphql-go"
)

// Small interfaces at the point of use so tests can fake them easily.

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, req user.CreateUserRequest) (user.User, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type ContractStore interface {
	GetByID(ctx context.Context, id string) (contract.Contract, error)
	List(ctx context.Context) ([]contract.Contract, error)
	ListByUser(ctx context.Context, userID string) ([]contract.Contract, error)
	Create(ctx context.Context, req contract.CreateContractRequest) (contract.Contract, error)
	Update(ctx context.Context, id string, req contract.UpdateContractRequest) (contract.Contract, error)
	Delete(ctx context.Context, id string) error
}

type SessionStore interface {
	Save(ctx context.Context, row postgres.RefreshTokenRow) error
	Rotate(ctx context.Context, oldID, presentedHash string, newRow postgres.RefreshTokenRow) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var (
	errUnauthorized = errors.New("unauthorized: valid access token required")
	errInternal     = errors.New("internal error")
)

type Resolver struct {
	users     UserStore
	contracts ContractStore
	sessions  SessionStore
	jwt       *auth.Manager
	cache     cache.Store
	prom      *observability.Prom
	log       *slog.Logger
}

func NewResolver(users UserStore, contracts ContractStore, sessions SessionStore, jwtManager *auth.Manager, cacheStore cache.Store, prom *observability.Prom, log *slog.Logger) *Resolver {
	return &Resolver{
		users:     users,
		contracts: contracts,
		sessions:  sessions,
		jwt:       jwtManager,
		cache:     cacheStore,
		prom:      prom,
		log:       log,
	}
}

func (r *Resolver) observe(op, outcome string, start time.Time) {
	if r.prom != nil {
		r.prom.ObserveOp(op, outcome, start)
	}
}

// internal logs the real failure and hands the transport a generic error,
// so raw storage errors never reach callers.
func (r *Resolver) internal(ctx context.Context, op string, start time.Time, err error) error {
	if r.log != nil {
		r.log.ErrorContext(ctx, "resolver failure", "op", op, "err", err)
	}
	r.observe(op, outcomeError, start)
	return errInternal
}

// Entity resolvers

type userResolver struct {
	u user.User
}

func (r *userResolver) ID() graphql.ID {
	return graphql.ID(r.u.ID)
}

func (r *userResolver) Name() string {
	return r.u.Name
}

func (r *userResolver) Email() string {
	return r.u.Email
}

func (r *userResolver) CreatedAt() graphql.Time {
	return graphql.Time{Time: r.u.CreatedAt}
}

type contractResolver struct {
	c     contract.Contract
	owner *user.User // preloaded on the eager path
	users UserStore  // nil suppresses nested user resolution entirely
}

func (r *contractResolver) ID() graphql.ID {
	return graphql.ID(r.c.ID)
}

func (r *contractResolver) Description() string {
	return r.c.Description
}

func (r *contractResolver) UserID() graphql.ID {
	return graphql.ID(r.c.UserID)
}

func (r *contractResolver) Fidelity() int32 {
	return r.c.Fidelity
}

func (r *contractResolver) Amount() float64 {
	return r.c.Amount
}

func (r *contractResolver) CreatedAt() graphql.Time {
	return graphql.Time{Time: r.c.CreatedAt}
}

func (r *contractResolver) User(ctx context.Context) (*userResolver, error) {
	if r.owner != nil {
		return &userResolver{u: *r.owner}, nil
	}

	if r.users == nil {
		return nil, nil
	}

	u, err := r.users.GetByID(ctx, r.c.UserID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil
		}
		return nil, errInternal
	}

	return &userResolver{u: u}, nil
}

// Payload resolvers

type userPayloadResolver struct {
	user    *userResolver
	message string
}

func (p *userPayloadResolver) User() *userResolver {
	return p.user
}

func (p *userPayloadResolver) Message() string {
	return p.message
}

type contractPayloadResolver struct {
	contract *contractResolver
	message  string
}

func (p *contractPayloadResolver) Contract() *contractResolver {
	return p.contract
}

func (p *contractPayloadResolver) Message() string {
	return p.message
}

type deletePayloadResolver struct {
	success bool
	message string
}

func (p *deletePayloadResolver) Success() bool {
	return p.success
}

func (p *deletePayloadResolver) Message() string {
	return p.message
}

type authPayloadResolver struct {
	user         *userResolver
	accessToken  *string
	refreshToken *string
	message      string
}

func (p *authPayloadResolver) User() *userResolver {
	return p.user
}

func (p *authPayloadResolver) AccessToken() *string {
	return p.accessToken
}

func (p *authPayloadResolver) RefreshToken() *string {
	return p.refreshToken
}

func (p *authPayloadResolver) Message() string {
	return p.message
}

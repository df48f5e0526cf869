package graph_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/geocoder89/contracthub/internal/auth"
	"github.com/geocoder89/contracthub/internal/authctx"
	"github.com/geocoder89/contracthub/internal/domain/contract"
	"github.com/geocoder89/contracthub/internal/domain/user"
	"github.com/geocoder89/contracthub/internal/graph"
	"github.com/geocoder89/contracthub/internal/repo/memory"
	"github.com/geocoder89/contracthub/internal/repo/postgres"
	graphql "github.com/graph-gophers/graphql-go"
)

// Shared helpers for the resolver tests. The schema is executed for real
// against in-memory repos, so every test goes through parsing, input
// decoding and the resolver methods exactly like a live request.

type fakeSessions struct {
	saveFn      func(ctx context.Context, row postgres.RefreshTokenRow) error
	rotateFn    func(ctx context.Context, oldID, presentedHash string, newRow postgres.RefreshTokenRow) error
	revokeAllFn func(ctx context.Context, userID string) error

	saved   []postgres.RefreshTokenRow
	revoked []string
}

func (f *fakeSessions) Save(ctx context.Context, row postgres.RefreshTokenRow) error {
	f.saved = append(f.saved, row)
	if f.saveFn != nil {
		return f.saveFn(ctx, row)
	}
	return nil
}

func (f *fakeSessions) Rotate(ctx context.Context, oldID, presentedHash string, newRow postgres.RefreshTokenRow) error {
	if f.rotateFn != nil {
		return f.rotateFn(ctx, oldID, presentedHash, newRow)
	}
	return nil
}

func (f *fakeSessions) RevokeAllForUser(ctx context.Context, userID string) error {
	f.revoked = append(f.revoked, userID)
	if f.revokeAllFn != nil {
		return f.revokeAllFn(ctx, userID)
	}
	return nil
}

type testEnv struct {
	schema    *graphql.Schema
	users     *memory.UsersRepo
	contracts *memory.ContractsRepo
	sessions  *fakeSessions
	jwt       *auth.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	contracts := memory.NewContractsRepo()
	users := memory.NewUsersRepo(contracts)
	contracts.BindUsers(users)

	sessions := &fakeSessions{}
	jwtManager := auth.NewManager("test-secret-key", time.Hour, 24*time.Hour)

	resolver := graph.NewResolver(users, contracts, sessions, jwtManager, nil, nil, nil)

	return &testEnv{
		schema:    graph.NewSchema(resolver),
		users:     users,
		contracts: contracts,
		sessions:  sessions,
		jwt:       jwtManager,
	}
}

// exec runs a query and decodes data into out. Unexpected GraphQL errors
// fail the test unless wantErr is set.
func (e *testEnv) exec(t *testing.T, ctx context.Context, query string, vars map[string]interface{}, out interface{}) {
	t.Helper()

	resp := e.schema.Exec(ctx, query, "", vars)

	if len(resp.Errors) > 0 {
		t.Fatalf("unexpected graphql errors: %v", resp.Errors)
	}

	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			t.Fatalf("failed to decode response data: %v", err)
		}
	}
}

func (e *testEnv) execExpectError(t *testing.T, ctx context.Context, query string, vars map[string]interface{}) string {
	t.Helper()

	resp := e.schema.Exec(ctx, query, "", vars)

	if len(resp.Errors) == 0 {
		t.Fatalf("expected graphql errors, got none (data: %s)", resp.Data)
	}

	return resp.Errors[0].Message
}

func (e *testEnv) seedUser(t *testing.T, name, email string) user.User {
	t.Helper()

	u, err := e.users.Create(context.Background(), user.CreateUserRequest{
		Name:  name,
		Email: email,
	})

	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return u
}

func (e *testEnv) seedContract(t *testing.T, userID, description string, fidelity int32, amount float64) contract.Contract {
	t.Helper()

	c, err := e.contracts.Create(context.Background(), contract.CreateContractRequest{
		Description: description,
		UserID:      userID,
		Fidelity:    fidelity,
		Amount:      amount,
	})

	if err != nil {
		t.Fatalf("failed to seed contract: %v", err)
	}

	return c
}

func authedCtx(userID, email string) context.Context {
	return authctx.WithClaims(context.Background(), &auth.Claims{
		UserID:    userID,
		Email:     email,
		TokenType: "access",
	})
}

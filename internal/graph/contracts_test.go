package graph_test

import (
	"context"
	"testing"
)

type contractJSON struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	UserID      string  `json:"userId"`
	Fidelity    int32   `json:"fidelity"`
	Amount      float64 `json:"amount"`
	User        *struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

func TestCreateContract(t *testing.T) {
	const mutation = `
		mutation($input: CreateContractInput!) {
			createContract(input: $input) {
				contract { id description userId fidelity amount }
				message
			}
		}
	`

	type payload struct {
		CreateContract struct {
			Contract *contractJSON `json:"contract"`
			Message  string        `json:"message"`
		} `json:"createContract"`
	}

	t.Run("creates a contract for an existing user", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "Alice", "alice@example.com")

		var got payload
		env.exec(t, context.Background(), mutation, map[string]interface{}{
			"input": map[string]interface{}{
				"description": "monthly cleaning",
				"userId":      owner.ID,
				"fidelity":    5,
				"amount":      250.75,
			},
		}, &got)

		c := got.CreateContract.Contract

		if c == nil {
			t.Fatalf("expected contract, got none (message %q)", got.CreateContract.Message)
		}

		if c.UserID != owner.ID || c.Fidelity != 5 || c.Amount != 250.75 {
			t.Fatalf("contract mismatch: %+v", c)
		}

		if got.CreateContract.Message != "Contract created successfully." {
			t.Fatalf("message = %q", got.CreateContract.Message)
		}
	})

	t.Run("rejects an unknown user", func(t *testing.T) {
		env := newTestEnv(t)

		var got payload
		env.exec(t, context.Background(), mutation, map[string]interface{}{
			"input": map[string]interface{}{
				"description": "orphan contract",
				"userId":      "no-such-user",
				"fidelity":    1,
				"amount":      10.0,
			},
		}, &got)

		if got.CreateContract.Contract != nil {
			t.Fatalf("expected no contract, got %+v", got.CreateContract.Contract)
		}

		if got.CreateContract.Message != "User does not exist." {
			t.Fatalf("message = %q", got.CreateContract.Message)
		}
	})
}

func TestContractEagerVsBare(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "Alice", "alice@example.com")
	seeded := env.seedContract(t, owner.ID, "cleaning", 3, 99.99)

	const eager = `
		query($id: ID!) {
			contract(id: $id) { id userId user { id name email } }
		}
	`
	const bare = `
		query($id: ID!) {
			contractWithoutUser(id: $id) { id userId user { id } }
		}
	`

	var gotEager struct {
		Contract *contractJSON `json:"contract"`
	}

	env.exec(t, context.Background(), eager, map[string]interface{}{"id": seeded.ID}, &gotEager)

	if gotEager.Contract == nil {
		t.Fatalf("expected contract, got null")
	}

	if gotEager.Contract.User == nil {
		t.Fatalf("eager query must populate the nested user")
	}

	if gotEager.Contract.User.ID != owner.ID || gotEager.Contract.User.Email != "alice@example.com" {
		t.Fatalf("nested user mismatch: %+v", gotEager.Contract.User)
	}

	var gotBare struct {
		ContractWithoutUser *contractJSON `json:"contractWithoutUser"`
	}

	env.exec(t, context.Background(), bare, map[string]interface{}{"id": seeded.ID}, &gotBare)

	if gotBare.ContractWithoutUser == nil {
		t.Fatalf("expected contract, got null")
	}

	if gotBare.ContractWithoutUser.User != nil {
		t.Fatalf("bare query must not populate the nested user, got %+v", gotBare.ContractWithoutUser.User)
	}

	// same row either way
	if gotBare.ContractWithoutUser.ID != gotEager.Contract.ID || gotBare.ContractWithoutUser.UserID != owner.ID {
		t.Fatalf("bare and eager queries disagree: %+v vs %+v", gotBare.ContractWithoutUser, gotEager.Contract)
	}
}

func TestUpdateContractExplicitZeroAmount(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "Alice", "alice@example.com")
	seeded := env.seedContract(t, owner.ID, "cleaning", 3, 99.99)

	const mutation = `
		mutation($input: UpdateContractInput!) {
			updateContract(input: $input) {
				contract { description fidelity amount }
				message
			}
		}
	`

	var got struct {
		UpdateContract struct {
			Contract *contractJSON `json:"contract"`
			Message  string        `json:"message"`
		} `json:"updateContract"`
	}

	// an explicit zero is a real value, not an omitted field
	env.exec(t, context.Background(), mutation, map[string]interface{}{
		"input": map[string]interface{}{"id": seeded.ID, "amount": 0.0},
	}, &got)

	c := got.UpdateContract.Contract

	if c == nil {
		t.Fatalf("expected contract, got none (message %q)", got.UpdateContract.Message)
	}

	if c.Amount != 0 {
		t.Fatalf("amount = %v, want 0", c.Amount)
	}

	// untouched fields keep their values
	if c.Description != "cleaning" || c.Fidelity != 3 {
		t.Fatalf("unrelated fields changed: %+v", c)
	}
}

func TestUpdateContractNotFound(t *testing.T) {
	env := newTestEnv(t)

	const mutation = `
		mutation($input: UpdateContractInput!) {
			updateContract(input: $input) {
				contract { id }
				message
			}
		}
	`

	var got struct {
		UpdateContract struct {
			Contract *contractJSON `json:"contract"`
			Message  string        `json:"message"`
		} `json:"updateContract"`
	}

	env.exec(t, context.Background(), mutation, map[string]interface{}{
		"input": map[string]interface{}{"id": "missing", "description": "whatever"},
	}, &got)

	if got.UpdateContract.Contract != nil {
		t.Fatalf("expected no contract, got %+v", got.UpdateContract.Contract)
	}

	if got.UpdateContract.Message != "Contract does not exist." {
		t.Fatalf("message = %q", got.UpdateContract.Message)
	}
}

func TestDeleteContract(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "Alice", "alice@example.com")
	seeded := env.seedContract(t, owner.ID, "cleaning", 3, 99.99)

	const mutation = `
		mutation($input: DeleteContractInput!) {
			deleteContract(input: $input) {
				success
				message
			}
		}
	`

	var got struct {
		DeleteContract struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"deleteContract"`
	}

	env.exec(t, context.Background(), mutation, map[string]interface{}{
		"input": map[string]interface{}{"id": seeded.ID},
	}, &got)

	if !got.DeleteContract.Success {
		t.Fatalf("expected success, got %q", got.DeleteContract.Message)
	}

	// deleting a contract never touches its owner
	if _, err := env.users.GetByID(context.Background(), owner.ID); err != nil {
		t.Fatalf("owner affected by contract delete: %v", err)
	}

	// second delete reports not found
	env.exec(t, context.Background(), mutation, map[string]interface{}{
		"input": map[string]interface{}{"id": seeded.ID},
	}, &got)

	if got.DeleteContract.Success {
		t.Fatalf("expected not-found on second delete")
	}

	if got.DeleteContract.Message != "Contract does not exist." {
		t.Fatalf("message = %q", got.DeleteContract.Message)
	}
}

func TestContractsByUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "Alice", "alice@example.com")
	bob := env.seedUser(t, "Bob", "bob@example.com")
	env.seedContract(t, alice.ID, "cleaning", 3, 99.99)
	env.seedContract(t, alice.ID, "gardening", 4, 45.00)

	const query = `
		query($userId: ID!) {
			contractsByUser(userId: $userId) { id userId }
		}
	`

	var got struct {
		ContractsByUser []contractJSON `json:"contractsByUser"`
	}

	env.exec(t, context.Background(), query, map[string]interface{}{"userId": alice.ID}, &got)

	if len(got.ContractsByUser) != 2 {
		t.Fatalf("expected 2 contracts for alice, got %d", len(got.ContractsByUser))
	}

	// a user with no contracts gets an empty list
	env.exec(t, context.Background(), query, map[string]interface{}{"userId": bob.ID}, &got)

	if len(got.ContractsByUser) != 0 {
		t.Fatalf("expected 0 contracts for bob, got %d", len(got.ContractsByUser))
	}

	// so does an id that matches no user at all: same shape, no error
	env.exec(t, context.Background(), query, map[string]interface{}{"userId": "no-such-user"}, &got)

	if len(got.ContractsByUser) != 0 {
		t.Fatalf("expected 0 contracts for unknown user, got %d", len(got.ContractsByUser))
	}
}

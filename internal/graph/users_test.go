package graph_test

import (
	"context"
	"testing"
)

func TestCreateUser(t *testing.T) {
	const mutation = `
		mutation($input: CreateUserInput!) {
			createUser(input: $input) {
				user { id name email }
				message
			}
		}
	`

	type payload struct {
		CreateUser struct {
			User *struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Email string `json:"email"`
			} `json:"user"`
			Message string `json:"message"`
		} `json:"createUser"`
	}

	tests := []struct {
		name        string
		input       map[string]interface{}
		seedEmail   string
		wantUser    bool
		wantMessage string
	}{
		{
			name:        "creates a user",
			input:       map[string]interface{}{"name": "Alice", "email": "alice@example.com"},
			wantUser:    true,
			wantMessage: "User created successfully.",
		},
		{
			name:        "rejects a duplicate email",
			input:       map[string]interface{}{"name": "Alice Again", "email": "alice@example.com"},
			seedEmail:   "alice@example.com",
			wantUser:    false,
			wantMessage: "User with this email already exists.",
		},
		{
			name:        "rejects a malformed email",
			input:       map[string]interface{}{"name": "Bob", "email": "not-an-email"},
			wantUser:    false,
			wantMessage: "email must be a valid email address",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)

			if tc.seedEmail != "" {
				env.seedUser(t, "Seeded", tc.seedEmail)
			}

			var got payload
			env.exec(t, context.Background(), mutation, map[string]interface{}{"input": tc.input}, &got)

			if tc.wantUser && got.CreateUser.User == nil {
				t.Fatalf("expected a user in the payload, got none (message %q)", got.CreateUser.Message)
			}

			if !tc.wantUser && got.CreateUser.User != nil {
				t.Fatalf("expected no user in the payload, got %+v", got.CreateUser.User)
			}

			if got.CreateUser.Message != tc.wantMessage {
				t.Fatalf("message = %q, want %q", got.CreateUser.Message, tc.wantMessage)
			}
		})
	}
}

func TestCreateUserDoesNotDuplicateRows(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Alice", "alice@example.com")

	const mutation = `
		mutation($input: CreateUserInput!) {
			createUser(input: $input) { message }
		}
	`

	env.exec(t, context.Background(), mutation, map[string]interface{}{
		"input": map[string]interface{}{"name": "Copycat", "email": "alice@example.com"},
	}, nil)

	all, err := env.users.List(context.Background())

	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(all) != 1 {
		t.Fatalf("expected 1 user after duplicate attempt, got %d", len(all))
	}
}

func TestGetUserRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedUser(t, "Alice", "alice@example.com")

	const query = `
		query($id: ID!) {
			user(id: $id) { id name email }
		}
	`

	var got struct {
		User *struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"user"`
	}

	env.exec(t, context.Background(), query, map[string]interface{}{"id": seeded.ID}, &got)

	if got.User == nil {
		t.Fatalf("expected user, got null")
	}

	if got.User.ID != seeded.ID || got.User.Name != "Alice" || got.User.Email != "alice@example.com" {
		t.Fatalf("user mismatch: %+v", got.User)
	}

	// absence, not an error
	env.exec(t, context.Background(), query, map[string]interface{}{"id": "no-such-id"}, &got)

	if got.User != nil {
		t.Fatalf("expected null for unmatched id, got %+v", got.User)
	}
}

func TestUpdateUserSparsePatch(t *testing.T) {
	env := newTestEnv(t)
	seeded := env.seedUser(t, "Alice", "alice@example.com")

	const mutation = `
		mutation($input: UpdateUserInput!) {
			updateUser(input: $input) {
				user { name email }
				message
			}
		}
	`

	var got struct {
		UpdateUser struct {
			User *struct {
				Name  string `json:"name"`
				Email string `json:"email"`
			} `json:"user"`
			Message string `json:"message"`
		} `json:"updateUser"`
	}

	// only name supplied: email must survive
	env.exec(t, context.Background(), mutation, map[string]interface{}{
		"input": map[string]interface{}{"id": seeded.ID, "name": "Alicia"},
	}, &got)

	if got.UpdateUser.User == nil {
		t.Fatalf("expected updated user, got none (message %q)", got.UpdateUser.Message)
	}

	if got.UpdateUser.User.Name != "Alicia" {
		t.Fatalf("name = %q, want Alicia", got.UpdateUser.User.Name)
	}

	if got.UpdateUser.User.Email != "alice@example.com" {
		t.Fatalf("email changed unexpectedly: %q", got.UpdateUser.User.Email)
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	env := newTestEnv(t)

	const mutation = `
		mutation($input: UpdateUserInput!) {
			updateUser(input: $input) {
				user { id }
				message
			}
		}
	`

	var got struct {
		UpdateUser struct {
			User    *struct{ ID string } `json:"user"`
			Message string               `json:"message"`
		} `json:"updateUser"`
	}

	env.exec(t, context.Background(), mutation, map[string]interface{}{
		"input": map[string]interface{}{"id": "missing", "name": "whoever"},
	}, &got)

	if got.UpdateUser.User != nil {
		t.Fatalf("expected no user, got %+v", got.UpdateUser.User)
	}

	if got.UpdateUser.Message != "User does not exist." {
		t.Fatalf("message = %q", got.UpdateUser.Message)
	}
}

func TestDeleteUser(t *testing.T) {
	const mutation = `
		mutation($input: DeleteUserInput!) {
			deleteUser(input: $input) {
				success
				message
			}
		}
	`

	type payload struct {
		DeleteUser struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		} `json:"deleteUser"`
	}

	t.Run("refuses when contracts exist", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "Alice", "alice@example.com")
		env.seedContract(t, owner.ID, "cleaning", 3, 120.50)

		var got payload
		env.exec(t, context.Background(), mutation, map[string]interface{}{
			"input": map[string]interface{}{"id": owner.ID},
		}, &got)

		if got.DeleteUser.Success {
			t.Fatalf("expected refusal, got success")
		}

		if got.DeleteUser.Message != "User has contract(s) and cannot be deleted." {
			t.Fatalf("message = %q", got.DeleteUser.Message)
		}

		// the user row must still be there
		if _, err := env.users.GetByID(context.Background(), owner.ID); err != nil {
			t.Fatalf("user vanished after refused delete: %v", err)
		}

		// a refused delete must not touch the user's sessions
		if len(env.sessions.revoked) != 0 {
			t.Fatalf("sessions revoked despite refused delete: %v", env.sessions.revoked)
		}
	})

	t.Run("deletes when no contracts", func(t *testing.T) {
		env := newTestEnv(t)
		owner := env.seedUser(t, "Alice", "alice@example.com")

		var got payload
		env.exec(t, context.Background(), mutation, map[string]interface{}{
			"input": map[string]interface{}{"id": owner.ID},
		}, &got)

		if !got.DeleteUser.Success {
			t.Fatalf("expected success, got %q", got.DeleteUser.Message)
		}

		if _, err := env.users.GetByID(context.Background(), owner.ID); err == nil {
			t.Fatalf("user still present after delete")
		}

		// deleting the account revokes every refresh session it owned
		if len(env.sessions.revoked) != 1 || env.sessions.revoked[0] != owner.ID {
			t.Fatalf("expected sessions revoked for %s, got %v", owner.ID, env.sessions.revoked)
		}
	})

	t.Run("not found", func(t *testing.T) {
		env := newTestEnv(t)

		var got payload
		env.exec(t, context.Background(), mutation, map[string]interface{}{
			"input": map[string]interface{}{"id": "missing"},
		}, &got)

		if got.DeleteUser.Success {
			t.Fatalf("expected failure for unknown id")
		}

		if got.DeleteUser.Message != "User does not exist." {
			t.Fatalf("message = %q", got.DeleteUser.Message)
		}
	})
}

func TestUsersQueryRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "Alice", "alice@example.com")

	const query = `{ users { id email } }`

	// anonymous context: rejected with a request-level error
	msg := env.execExpectError(t, context.Background(), query, nil)

	if msg == "" {
		t.Fatalf("expected an error message")
	}

	// authenticated context: full list
	var got struct {
		Users []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"users"`
	}

	env.exec(t, authedCtx("some-id", "alice@example.com"), query, nil, &got)

	if len(got.Users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(got.Users))
	}
}

package graph

import (
	"errors"

	"github.com/geocoder89/contracthub/internal/domain/contract"
	"github.com/geocoder89/contracthub/internal/domain/user"
	"github.com/geocoder89/contracthub/internal/repo/postgres"
)

// Success messages

const (
	msgUserCreated     = "User created successfully."
	msgUserUpdated     = "User updated successfully."
	msgUserDeleted     = "User deleted successfully."
	msgContractCreated = "Contract created successfully."
	msgContractUpdated = "Contract updated successfully."
	msgContractDeleted = "Contract deleted successfully."
	msgRegistered      = "User registered successfully."
	msgLoggedIn        = "Login successful."
	msgTokenRefreshed  = "Token refreshed successfully."

	// identical for unknown email and wrong password so the response does
	// not leak which one it was
	msgInvalidCredentials = "Email or password is incorrect."
)

// Explicit error-kind to user-facing message table. Anything not listed is
// an unexpected failure and never reaches the caller as text.
var errorMessages = []struct {
	err error
	msg string
}{
	{user.ErrEmailTaken, "User with this email already exists."},
	{user.ErrNotFound, "User does not exist."},
	{user.ErrHasContracts, "User has contract(s) and cannot be deleted."},
	{contract.ErrNotFound, "Contract does not exist."},
	{postgres.ErrRefreshTokenNotFound, "Invalid refresh token."},
	{postgres.ErrRefreshTokenInvalid, "Invalid refresh token."},
	{postgres.ErrRefreshTokenExpired, "Refresh token expired."},
}

func messageFor(err error) (string, bool) {
	for _, m := range errorMessages {
		if errors.Is(err, m.err) {
			return m.msg, true
		}
	}

	return "", false
}

func mustMessage(err error) string {
	msg, _ := messageFor(err)
	return msg
}

package contract

import (
	"errors"
	"time"
)

type Contract struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	UserID      string    `json:"userId"`
	Fidelity    int32     `json:"fidelity"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
}

var ErrNotFound = errors.New("contract not found")

type CreateContractRequest struct {
	Description string
	UserID      string
	Fidelity    int32
	Amount      float64
}

// sparse patch: nil pointer means "leave unchanged", so an explicit zero
// amount or fidelity still goes through
type UpdateContractRequest struct {
	Description *string
	Fidelity    *int32
	Amount      *float64
}

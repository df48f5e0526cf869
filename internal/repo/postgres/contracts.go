package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/contracthub/internal/domain/contract"
	"github.com/geocoder89/contracthub/internal/domain/user"
	"github.com/geocoder89/contracthub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContractsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewContractsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ContractsRepo {
	return &ContractsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *ContractsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *ContractsRepo) GetByID(ctx context.Context, id string) (c contract.Contract, err error) {
	err = repo.observe("contracts.get_by_id", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT id, description, user_id, fidelity, amount, created_at
			 FROM contracts
			 WHERE id = $1`,
			id,
		).Scan(&c.ID, &c.Description, &c.UserID, &c.Fidelity, &c.Amount, &c.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = contract.ErrNotFound
		}
		c = contract.Contract{}
		return
	}

	return
}

func (repo *ContractsRepo) List(ctx context.Context) ([]contract.Contract, error) {
	return repo.queryList(ctx, "contracts.list",
		`SELECT id, description, user_id, fidelity, amount, created_at
		 FROM contracts
		 ORDER BY created_at ASC, id ASC`,
	)
}

// An unknown user id simply yields an empty list here; callers who care
// whether the user exists look the user up first.
func (repo *ContractsRepo) ListByUser(ctx context.Context, userID string) ([]contract.Contract, error) {
	return repo.queryList(ctx, "contracts.list_by_user",
		`SELECT id, description, user_id, fidelity, amount, created_at
		 FROM contracts
		 WHERE user_id = $1
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
}

func (repo *ContractsRepo) queryList(ctx context.Context, op, query string, args ...any) (contracts []contract.Contract, err error) {
	var rows pgx.Rows

	err = repo.observe(op, func() error {
		rows, err = repo.pool.Query(ctx, query, args...)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	contracts = make([]contract.Contract, 0)

	for rows.Next() {
		var c contract.Contract

		e := rows.Scan(&c.ID, &c.Description, &c.UserID, &c.Fidelity, &c.Amount, &c.CreatedAt)

		if e != nil {
			err = e
			return
		}
		contracts = append(contracts, c)
	}

	e := rows.Err()

	if e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues(op, "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

// Create relies on the foreign key for the final say on whether the owner
// exists; a 23503 comes back as user.ErrNotFound.
func (repo *ContractsRepo) Create(ctx context.Context, req contract.CreateContractRequest) (contract.Contract, error) {
	c := contract.Contract{
		ID:          uuid.NewString(),
		Description: req.Description,
		UserID:      req.UserID,
		Fidelity:    req.Fidelity,
		Amount:      req.Amount,
		CreatedAt:   time.Now().UTC(),
	}

	err := repo.observe("contracts.create", func() error {
		_, e := repo.pool.Exec(ctx,
			`INSERT INTO contracts (id, description, user_id, fidelity, amount, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			c.ID, c.Description, c.UserID, c.Fidelity, c.Amount, c.CreatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return contract.Contract{}, user.ErrNotFound
		}
		return contract.Contract{}, err
	}

	return c, nil
}

// Update is the same single-statement sparse patch as users: COALESCE keeps
// unsupplied fields, and an explicit zero fidelity or amount is a real value
// because nil pointers (not zero values) mark absence.
func (repo *ContractsRepo) Update(ctx context.Context, id string, req contract.UpdateContractRequest) (c contract.Contract, err error) {
	err = repo.observe("contracts.update", func() error {
		return repo.pool.QueryRow(ctx,
			`UPDATE contracts
			 SET description = COALESCE($2, description),
			     fidelity = COALESCE($3, fidelity),
			     amount = COALESCE($4, amount)
			 WHERE id = $1
			 RETURNING id, description, user_id, fidelity, amount, created_at`,
			id, req.Description, req.Fidelity, req.Amount,
		).Scan(&c.ID, &c.Description, &c.UserID, &c.Fidelity, &c.Amount, &c.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = contract.ErrNotFound
		}
		c = contract.Contract{}
		return
	}

	return
}

// Delete removes a single contract. Contracts have no dependents so there
// is no check to make.

func (repo *ContractsRepo) Delete(ctx context.Context, id string) (err error) {
	var tag pgconn.CommandTag
	op := "contracts.delete"
	err = repo.observe(op, func() error {
		var err error
		tag, err = repo.pool.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)

		return err
	})

	if err != nil {
		return
	}

	if tag.RowsAffected() == 0 {
		err = contract.ErrNotFound

		return
	}

	return
}

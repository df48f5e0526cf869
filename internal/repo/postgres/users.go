package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/contracthub/internal/domain/user"
	"github.com/geocoder89/contracthub/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *UsersRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *UsersRepo) GetByID(ctx context.Context, id string) (u user.User, err error) {
	err = repo.observe("users.get_by_id", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, created_at
			 FROM users
			 WHERE id = $1`,
			id,
		).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}
		u = user.User{}
		return
	}

	return
}

func (repo *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = repo.observe("users.get_by_email", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT id, name, email, password_hash, created_at
			 FROM users
			 WHERE email = $1`,
			email,
		).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}
		u = user.User{}
		return
	}

	return
}

func (repo *UsersRepo) List(ctx context.Context) (users []user.User, err error) {
	var rows pgx.Rows

	err = repo.observe("users.list", func() error {
		rows, err = repo.pool.Query(ctx,
			`SELECT id, name, email, password_hash, created_at
			 FROM users
			 ORDER BY created_at ASC, id ASC`,
		)
		return err
	})

	if err != nil {
		return
	}

	defer rows.Close()

	users = make([]user.User, 0)

	for rows.Next() {
		var u user.User

		e := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)

		if e != nil {
			err = e
			return
		}
		users = append(users, u)
	}

	e := rows.Err()

	if e != nil {
		if repo.prom != nil {
			repo.prom.DbErrorsTotal.WithLabelValues("users.list", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}

// Create inserts a new user. The unique index on email is the real guard
// against duplicate registrations racing each other; callers may pre-check
// for a friendlier message but must handle ErrEmailTaken here regardless.
func (repo *UsersRepo) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	u := user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: req.PasswordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := repo.observe("users.create", func() error {
		_, e := repo.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, created_at)
			 VALUES ($1,$2,$3,$4,$5)`,
			u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, user.ErrEmailTaken
		}
		return user.User{}, err
	}

	return u, nil
}

// Update applies a sparse patch: nil fields keep their current value via
// COALESCE, so the whole patch is a single atomic statement.
func (repo *UsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest) (u user.User, err error) {
	err = repo.observe("users.update", func() error {
		return repo.pool.QueryRow(ctx,
			`UPDATE users
			 SET name = COALESCE($2, name),
			     email = COALESCE($3, email)
			 WHERE id = $1
			 RETURNING id, name, email, password_hash, created_at`,
			id, req.Name, req.Email,
		).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	})

	if err != nil {
		var pgErr *pgconn.PgError

		switch {
		case errors.Is(err, pgx.ErrNoRows):
			err = user.ErrNotFound
		case errors.As(err, &pgErr) && pgErr.Code == "23505":
			err = user.ErrEmailTaken
		}

		u = user.User{}
		return
	}

	return
}

// Delete refuses to remove a user who still owns contracts. The check and
// the delete run in one transaction with the user row locked, so a contract
// created concurrently cannot slip past the check; the RESTRICT foreign key
// on contracts.user_id backstops it either way.
func (repo *UsersRepo) Delete(ctx context.Context, id string) (err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var dummy string

	err = repo.observe("users.delete.lock", func() error {
		return tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&dummy)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}
		return
	}

	var hasContracts bool

	err = repo.observe("users.delete.dependents_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM contracts WHERE user_id = $1
		)`, id).Scan(&hasContracts)
	})

	if err != nil {
		return
	}

	if hasContracts {
		err = user.ErrHasContracts
		return
	}

	err = repo.observe("users.delete", func() error {
		_, e := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			err = user.ErrHasContracts
		}
		return
	}

	err = tx.Commit(ctx)

	return
}

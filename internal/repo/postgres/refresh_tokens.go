package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrRefreshTokenNotFound = errors.New("refresh not found")
	ErrRefreshTokenInvalid  = errors.New("refresh token invalid")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
)

type RefreshTokenRow struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
	ReplacedBy *string
	CreatedAt  time.Time
}

type RefreshTokensRepo struct {
	pool *pgxpool.Pool
}

func NewRefreshTokensRepo(pool *pgxpool.Pool) *RefreshTokensRepo {
	return &RefreshTokensRepo{pool: pool}
}

func (r *RefreshTokensRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

func (r *RefreshTokensRepo) CreateTx(ctx context.Context, tx pgx.Tx, row RefreshTokenRow) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
		row.ID, row.UserID, row.TokenHash, row.ExpiresAt, row.RevokedAt, row.ReplacedBy, row.CreatedAt,
	)
	return err
}

// Locks the row to prevent concurrent refresh races

func (r *RefreshTokensRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (RefreshTokenRow, error) {
	var row RefreshTokenRow

	err := tx.QueryRow(ctx, `
		SELECT id, user_id, token_hash, expires_at, revoked_at, replaced_by, created_at
		FROM refresh_tokens
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(
		&row.ID,
		&row.UserID,
		&row.TokenHash,
		&row.ExpiresAt,
		&row.RevokedAt,
		&row.ReplacedBy,
		&row.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshTokenRow{}, ErrRefreshTokenNotFound
		}

		return RefreshTokenRow{}, err
	}

	return row, nil
}

func (r *RefreshTokensRepo) RevokeTx(ctx context.Context, tx pgx.Tx, id string, replacedBy *string) error {
	_, err := tx.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = NOW(), replaced_by = $2
		WHERE id = $1
	`, id, replacedBy)

	return err
}

// Save stores a freshly issued refresh token (login / register path).
func (r *RefreshTokensRepo) Save(ctx context.Context, row RefreshTokenRow) (err error) {
	tx, err := r.BeginTx(ctx)

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.CreateTx(ctx, tx, row)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

// Rotate exchanges the stored token oldID for newRow in one transaction.
// The old row is read under FOR UPDATE so two refreshes racing on the same
// token cannot both succeed: the loser sees it revoked. presentedHash must
// match the stored hash (prevents token substitution).
func (r *RefreshTokensRepo) Rotate(ctx context.Context, oldID, presentedHash string, newRow RefreshTokenRow) (err error) {
	tx, err := r.BeginTx(ctx)

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	row, err := r.GetForUpdate(ctx, tx, oldID)

	if err != nil {
		return
	}

	if row.RevokedAt != nil {
		err = ErrRefreshTokenInvalid
		return
	}

	if time.Now().UTC().After(row.ExpiresAt) {
		err = ErrRefreshTokenExpired
		return
	}

	if row.TokenHash != presentedHash {
		err = ErrRefreshTokenInvalid
		return
	}

	err = r.RevokeTx(ctx, tx, row.ID, &newRow.ID)

	if err != nil {
		return
	}

	err = r.CreateTx(ctx, tx, newRow)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

func (r *RefreshTokensRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID)

	return err
}

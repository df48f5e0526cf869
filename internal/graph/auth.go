package graph

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/contracthub/internal/domain/user"
	"github.com/geocoder89/contracthub/internal/repo/postgres"
	"github.com/geocoder89/contracthub/internal/security"
)

type RegisterInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
}

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type RefreshTokenInput struct {
	RefreshToken string `validate:"required"`
}

func (r *Resolver) Register(ctx context.Context, args struct{ Input RegisterInput }) (*authPayloadResolver, error) {
	op := "register"
	start := time.Now()

	if msg, bad := invalidInput(args.Input); bad {
		r.observe(op, outcomeRejected, start)
		return &authPayloadResolver{message: msg}, nil
	}

	hash, err := security.HashPassword(args.Input.Password)

	if err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	u, err := r.users.Create(ctx, user.CreateUserRequest{
		Name:         args.Input.Name,
		Email:        args.Input.Email,
		PasswordHash: hash,
	})

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			r.observe(op, outcomeRejected, start)
			return &authPayloadResolver{message: mustMessage(user.ErrEmailTaken)}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	access, refresh, err := r.issueTokens(ctx, u)

	if err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	r.observe(op, outcomeOK, start)

	return &authPayloadResolver{
		user:         &userResolver{u: u},
		accessToken:  &access,
		refreshToken: &refresh,
		message:      msgRegistered,
	}, nil
}

func (r *Resolver) Login(ctx context.Context, args struct{ Input LoginInput }) (*authPayloadResolver, error) {
	op := "login"
	start := time.Now()

	if msg, bad := invalidInput(args.Input); bad {
		r.observe(op, outcomeRejected, start)
		return &authPayloadResolver{message: msg}, nil
	}

	// an unknown email and a wrong password get the exact same treatment;
	// anything else is a real failure and must not look like a rejection
	u, err := r.users.GetByEmail(ctx, args.Input.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			r.observe(op, outcomeRejected, start)
			return &authPayloadResolver{message: msgInvalidCredentials}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	err = security.CheckPassword(u.PasswordHash, args.Input.Password)

	if err != nil {
		r.observe(op, outcomeRejected, start)
		return &authPayloadResolver{message: msgInvalidCredentials}, nil
	}

	access, refresh, err := r.issueTokens(ctx, u)

	if err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	r.observe(op, outcomeOK, start)

	return &authPayloadResolver{
		user:         &userResolver{u: u},
		accessToken:  &access,
		refreshToken: &refresh,
		message:      msgLoggedIn,
	}, nil
}

func (r *Resolver) RefreshToken(ctx context.Context, args struct{ Input RefreshTokenInput }) (*authPayloadResolver, error) {
	op := "refreshToken"
	start := time.Now()
	raw := args.Input.RefreshToken

	claims, err := r.jwt.VerifyRefreshToken(raw)

	if err != nil {
		r.observe(op, outcomeRejected, start)
		return &authPayloadResolver{message: mustMessage(postgres.ErrRefreshTokenInvalid)}, nil
	}

	newRaw, newJTI, newExpiresAt, err := r.jwt.GenerateRefreshToken(claims.UserID, claims.Email)

	if err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	// rotation: revoke the presented token and store its replacement under
	// a row lock, so a stolen-and-replayed token loses the race
	err = r.sessions.Rotate(ctx, claims.JTI, r.jwt.HashRefreshToken(raw), postgres.RefreshTokenRow{
		ID:        newJTI,
		UserID:    claims.UserID,
		TokenHash: r.jwt.HashRefreshToken(newRaw),
		ExpiresAt: newExpiresAt,
		CreatedAt: time.Now().UTC(),
	})

	if err != nil {
		if msg, known := messageFor(err); known {
			r.observe(op, outcomeRejected, start)
			return &authPayloadResolver{message: msg}, nil
		}
		return nil, r.internal(ctx, op, start, err)
	}

	access, err := r.jwt.GenerateAccessToken(claims.UserID, claims.Email)

	if err != nil {
		return nil, r.internal(ctx, op, start, err)
	}

	r.observe(op, outcomeOK, start)

	return &authPayloadResolver{
		accessToken:  &access,
		refreshToken: &newRaw,
		message:      msgTokenRefreshed,
	}, nil
}

func (r *Resolver) issueTokens(ctx context.Context, u user.User) (access, refresh string, err error) {
	access, err = r.jwt.GenerateAccessToken(u.ID, u.Email)

	if err != nil {
		return
	}

	raw, jti, expiresAt, err := r.jwt.GenerateRefreshToken(u.ID, u.Email)

	if err != nil {
		return
	}

	err = r.sessions.Save(ctx, postgres.RefreshTokenRow{
		ID:        jti,
		UserID:    u.ID,
		TokenHash: r.jwt.HashRefreshToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})

	if err != nil {
		return
	}

	refresh = raw

	return
}

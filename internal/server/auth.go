package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var ErrUnauthenticated = errors.New("missing or invalid access token")

// Identity is the authenticated caller. UserID is the applicant id.
type Identity struct {
	UserID string
	Email  string
}

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// JWTAuthenticator verifies access tokens against the issuer's JWKS.
type JWTAuthenticator struct {
	cache   *jwk.Cache
	jwksURL string
}

func NewJWTAuthenticator(cache *jwk.Cache, jwksURL string) *JWTAuthenticator {
	return &JWTAuthenticator{cache: cache, jwksURL: jwksURL}
}

func (a *JWTAuthenticator) Authenticate(ctx context.Context, raw string) (Identity, error) {
	if raw == "" {
		return Identity{}, ErrUnauthenticated
	}

	set, err := a.cache.Lookup(ctx, a.jwksURL)
	if err != nil {
		return Identity{}, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return Identity{}, fmt.Errorf("%w: no subject claim", ErrUnauthenticated)
	}

	// email is optional
	var email string
	_ = token.Get("email", &email)

	return Identity{UserID: userID, Email: email}, nil
}

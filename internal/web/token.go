package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookieName = "planner_session"
	tokenIssuer       = "ai-supply-planner"
)

var signingMethod = jwt.SigningMethodHS256

// sessionTokens carries session ids in the cookie as HS256 JWTs.
type sessionTokens struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func (t sessionTokens) mint(sessionID string, now time.Time) (string, error) {
	if len(t.secret) == 0 {
		return "", errors.New("session secret is required")
	}
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// parse validates the token and returns the session id and the token's expiry.
func (t sessionTokens) parse(token string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if tok.Method != signingMethod {
			return nil, fmt.Errorf("unexpected signing method %s", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", time.Time{}, fmt.Errorf("parsing session token: %w", err)
	}
	if claims.Subject == "" {
		return "", time.Time{}, errors.New("session token without subject")
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}

// stale reports whether a token expiring at exp is past half its lifetime.
// The store renews the session on every access, so the cookie is re-minted
// to keep pace with it.
func (t sessionTokens) stale(exp, now time.Time) bool {
	return exp.Sub(now) < t.ttl/2
}

func (t sessionTokens) cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"

	"github.com/linesmerrill/lost-found-api/access"
	"github.com/linesmerrill/lost-found-api/config"
	"github.com/linesmerrill/lost-found-api/models"
)

// verified tokens are kept this long before the signature is checked again
const tokenCacheTTL = 5 * time.Minute

// ErrNoSigningSecret is returned when tokens are checked or issued without a secret
var ErrNoSigningSecret = errors.New("no token signing secret configured")

// Claims are the JWT claims issued by the account service
type Claims struct {
	Fullname string   `json:"fullname"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// Authenticator resolves bearer tokens into principals
type Authenticator struct {
	secret        []byte
	authenticator auth.Authenticator
}

// NewAuthenticator sets up go-guardian with a cached bearer strategy that
// verifies HS256 tokens signed with secret
func NewAuthenticator(secret string) *Authenticator {
	a := &Authenticator{secret: []byte(secret)}
	cache := store.NewFIFO(context.Background(), tokenCacheTTL)
	tokenStrategy := bearer.New(a.verify, cache)

	a.authenticator = auth.New()
	a.authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)
	return a
}

func (a *Authenticator) verify(ctx context.Context, r *http.Request, token string) (auth.Info, error) {
	if len(a.secret) == 0 {
		return nil, ErrNoSigningSecret
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return auth.NewDefaultUser(claims.Fullname, claims.Subject, claims.Roles, nil), nil
}

// IssueToken signs a token for the given user, used by tests and local tooling
func (a *Authenticator) IssueToken(userID, fullname string, ttl time.Duration, roles ...string) (string, error) {
	if len(a.secret) == 0 {
		return "", ErrNoSigningSecret
	}
	now := time.Now()
	claims := Claims{
		Fullname: fullname,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) authenticate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	info, err := a.authenticator.Authenticate(r)
	if err != nil {
		zap.S().Debugw("unauthorized", "url", r.URL.Path, "error", err)
		config.ErrorStatus("unauthorized", http.StatusUnauthorized, w, models.ErrUnauthorized)
		return
	}
	p := access.NewPrincipal(info.ID(), info.UserName(), info.Groups()...)
	zap.S().Debugf("user %s authenticated", p.ID)
	next.ServeHTTP(w, r.WithContext(access.WithPrincipal(r.Context(), p)))
}

// Required rejects requests without a valid bearer token
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.authenticate(w, r, next)
	})
}

// Optional lets anonymous requests through, a token that is present must
// still be valid
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}
		a.authenticate(w, r, next)
	})
}

// QueryTokenMiddleware copies a ?token= query parameter into the
// Authorization header. Browsers cannot set headers on websocket handshakes.
func QueryTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := r.URL.Query().Get("token"); token != "" && r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+token)
		}
		next.ServeHTTP(w, r)
	})
}

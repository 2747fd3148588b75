// Package access holds the authenticated principal and the single
// authorization predicate every post and comment mutation goes through.
package access

import (
	"context"
	"fmt"

	"github.com/linesmerrill/lost-found-api/models"
)

// RoleAdmin is the role granting moderation rights
const RoleAdmin = "admin"

// Principal is the authenticated actor of a request
type Principal struct {
	ID       string
	Fullname string
	Roles    []string
	admin    bool
}

// NewPrincipal builds a principal from the decoded token claims
func NewPrincipal(id, fullname string, roles ...string) *Principal {
	p := &Principal{ID: id, Fullname: fullname, Roles: roles}
	for _, r := range roles {
		if r == RoleAdmin {
			p.admin = true
		}
	}
	return p
}

// IsAdmin reports whether the principal may moderate
func (p *Principal) IsAdmin() bool {
	return p != nil && p.admin
}

// Authenticated reports whether p identifies a user
func (p *Principal) Authenticated() bool {
	return p != nil && p.ID != ""
}

// Authorized is true when the actor owns the resource or is an admin
func Authorized(p *Principal, ownerID string) bool {
	if !p.Authenticated() {
		return false
	}
	return p.ID == ownerID || p.IsAdmin()
}

// RequireAuthenticated fails with ErrUnauthorized when there is no principal
func RequireAuthenticated(p *Principal) error {
	if !p.Authenticated() {
		return models.ErrUnauthorized
	}
	return nil
}

// RequireAdmin fails with ErrUnauthorized or ErrForbidden unless p is an admin
func RequireAdmin(p *Principal) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return fmt.Errorf("%w: admin role required", models.ErrForbidden)
	}
	return nil
}

// RequireOwnerOrAdmin fails unless p owns the resource or is an admin
func RequireOwnerOrAdmin(p *Principal, ownerID string) error {
	if err := RequireAuthenticated(p); err != nil {
		return err
	}
	if !Authorized(p, ownerID) {
		return fmt.Errorf("%w: only the owner or an admin can do this", models.ErrForbidden)
	}
	return nil
}

type principalKey struct{}

// WithPrincipal stores the principal in the request context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal of the request, nil when anonymous
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

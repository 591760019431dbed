package auth

import (
	"context"
	"errors"
	"fmt"
)

// ResourceFinder resolves a resource kind/id pair to its assignee. It is
// implemented by the resource registry; the gate itself stays generic over
// resource kinds.
type ResourceFinder interface {
	// FindAssignee returns the ID of the identity the resource is assigned
	// to (empty when unassigned), or ErrResourceNotFound.
	FindAssignee(ctx context.Context, kind, id string) (string, error)
}

// Authorize is the role gate: a pure membership check against the explicit
// allowed set declared by the endpoint. Calling it without an authenticated
// identity fails closed.
func Authorize(identity *Identity, allowed ...Role) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if !identity.Role.In(allowed...) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeResource is the ownership gate. Privileged roles pass with no
// fetch; every other role may only reach resources assigned to it.
func AuthorizeResource(ctx context.Context, finder ResourceFinder, identity *Identity, kind, id string) error {
	if identity == nil {
		return ErrUnauthenticated
	}
	if identity.Role.Privileged() {
		return nil
	}
	assignee, err := finder.FindAssignee(ctx, kind, id)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return err
		}
		return fmt.Errorf("find resource %s/%s: %w", kind, id, err)
	}
	if assignee != identity.ID {
		return ErrForbidden
	}
	return nil
}

package authz

import (
	"context"
	"sync"

	"github.com/permkit/permkit/pkg/permissions"
)

// GrantSource is the durable backing store behind the engine. Its schema is
// opaque to the engine; implementations may be backed by a database, a remote
// service, or memory. Every call may fail or time out.
type GrantSource interface {
	// FetchGrants returns the union of permission strings granted to the user
	// through role assignments at the given location scope. An empty
	// locationID means tenant-wide scope only; a concrete locationID includes
	// tenant-wide assignments as well.
	FetchGrants(ctx context.Context, tenantID, userID, locationID string) ([]string, error)

	// FetchRoleGrants returns the permission strings attached to one role.
	FetchRoleGrants(ctx context.Context, tenantID, roleID string) ([]string, error)

	// HoldsRole reports whether the user actually holds the role at the given
	// location scope. The engine uses it to reject spoofed role-scoped requests.
	HoldsRole(ctx context.Context, tenantID, userID, roleID, locationID string) (bool, error)
}

// RoleAssignment binds a user to a role within a tenant. An empty LocationID
// means the assignment applies tenant-wide.
type RoleAssignment struct {
	TenantID   string
	UserID     string
	RoleID     string
	LocationID string
}

// StaticSource is an in-memory GrantSource, useful for tests, local
// development, and bootstrapping from configuration files. It is safe for
// concurrent use and its mutation methods pair naturally with the engine's
// InvalidateCache on the role-management path.
type StaticSource struct {
	mu          sync.RWMutex
	roles       map[string]map[string][]string // tenantID -> roleID -> permissions
	assignments []RoleAssignment
}

// NewStaticSource creates an empty in-memory grant source.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		roles: make(map[string]map[string][]string),
	}
}

// SetRole creates or replaces a role's permission set within a tenant.
func (s *StaticSource) SetRole(tenantID, roleID string, perms []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenantRoles, ok := s.roles[tenantID]
	if !ok {
		tenantRoles = make(map[string][]string)
		s.roles[tenantID] = tenantRoles
	}
	tenantRoles[roleID] = permissions.Clone(perms)
}

// DeleteRole removes a role and all assignments referencing it.
func (s *StaticSource) DeleteRole(tenantID, roleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tenantRoles, ok := s.roles[tenantID]; ok {
		delete(tenantRoles, roleID)
	}

	kept := s.assignments[:0]
	for _, a := range s.assignments {
		if a.TenantID != tenantID || a.RoleID != roleID {
			kept = append(kept, a)
		}
	}
	s.assignments = kept
}

// Assign binds a user to a role. Duplicate assignments are ignored.
func (s *StaticSource) Assign(a RoleAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.assignments {
		if existing == a {
			return
		}
	}
	s.assignments = append(s.assignments, a)
}

// Revoke removes a previously created assignment.
func (s *StaticSource) Revoke(a RoleAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.assignments[:0]
	for _, existing := range s.assignments {
		if existing != a {
			kept = append(kept, existing)
		}
	}
	s.assignments = kept
}

// FetchGrants returns the union of permissions from all applicable assignments.
func (s *StaticSource) FetchGrants(_ context.Context, tenantID, userID, locationID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var perms []string
	for _, a := range s.assignments {
		if a.TenantID != tenantID || a.UserID != userID {
			continue
		}
		if !assignmentInScope(a, locationID) {
			continue
		}
		perms = append(perms, s.roles[tenantID][a.RoleID]...)
	}

	return permissions.Normalize(perms), nil
}

// FetchRoleGrants returns the permissions attached to one role.
func (s *StaticSource) FetchRoleGrants(_ context.Context, tenantID, roleID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return permissions.Clone(s.roles[tenantID][roleID]), nil
}

// HoldsRole reports whether the user holds the role at the given scope.
func (s *StaticSource) HoldsRole(_ context.Context, tenantID, userID, roleID, locationID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.assignments {
		if a.TenantID == tenantID && a.UserID == userID && a.RoleID == roleID && assignmentInScope(a, locationID) {
			return true, nil
		}
	}
	return false, nil
}

// assignmentInScope reports whether an assignment applies at the requested
// location scope: tenant-wide assignments apply everywhere, location-scoped
// assignments only at their own location.
func assignmentInScope(a RoleAssignment, locationID string) bool {
	return a.LocationID == "" || a.LocationID == locationID
}

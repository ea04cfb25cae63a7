package authz_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/permkit/permkit/pkg/authz"
)

func TestStaticSourceFetchGrants(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("unions permissions across assignments", func(t *testing.T) {
		t.Parallel()

		source := authz.NewStaticSource()
		source.SetRole("acme", "manager", []string{"orders.*", "reports.view"})
		source.SetRole("acme", "auditor", []string{"reports.view", "audit.read"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "manager"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "auditor"})

		perms, err := source.FetchGrants(ctx, "acme", "u1", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"audit.read", "orders.*", "reports.view"}, perms, "deduplicated and sorted")
	})

	t.Run("tenant-wide request excludes location-scoped assignments", func(t *testing.T) {
		t.Parallel()

		source := authz.NewStaticSource()
		source.SetRole("acme", "picker", []string{"inventory.pick"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "picker", LocationID: "berlin"})

		perms, err := source.FetchGrants(ctx, "acme", "u1", "")
		require.NoError(t, err)
		assert.Empty(t, perms)
	})

	t.Run("location request includes tenant-wide assignments", func(t *testing.T) {
		t.Parallel()

		source := authz.NewStaticSource()
		source.SetRole("acme", "manager", []string{"orders.*"})
		source.SetRole("acme", "picker", []string{"inventory.pick"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "manager"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "picker", LocationID: "berlin"})

		perms, err := source.FetchGrants(ctx, "acme", "u1", "berlin")
		require.NoError(t, err)
		assert.Equal(t, []string{"inventory.pick", "orders.*"}, perms)

		perms, err = source.FetchGrants(ctx, "acme", "u1", "munich")
		require.NoError(t, err)
		assert.Equal(t, []string{"orders.*"}, perms, "other locations see only tenant-wide grants")
	})

	t.Run("tenants are isolated", func(t *testing.T) {
		t.Parallel()

		tenantA := uuid.NewString()
		tenantB := uuid.NewString()
		userID := uuid.NewString()

		source := authz.NewStaticSource()
		source.SetRole(tenantA, "admin", []string{"*"})
		source.Assign(authz.RoleAssignment{TenantID: tenantA, UserID: userID, RoleID: "admin"})

		perms, err := source.FetchGrants(ctx, tenantB, userID, "")
		require.NoError(t, err)
		assert.Empty(t, perms, "grants in one tenant confer nothing in another")
	})

	t.Run("unknown user yields empty set", func(t *testing.T) {
		t.Parallel()

		source := authz.NewStaticSource()
		perms, err := source.FetchGrants(ctx, "acme", "nobody", "")
		require.NoError(t, err)
		assert.Empty(t, perms)
	})
}

func TestStaticSourceMutation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("SetRole replaces the permission set", func(t *testing.T) {
		t.Parallel()

		source := authz.NewStaticSource()
		source.SetRole("acme", "manager", []string{"orders.*"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "manager"})

		source.SetRole("acme", "manager", []string{"reports.view"})
		perms, err := source.FetchGrants(ctx, "acme", "u1", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"reports.view"}, perms)
	})

	t.Run("DeleteRole removes role and its assignments", func(t *testing.T) {
		t.Parallel()

		source := authz.NewStaticSource()
		source.SetRole("acme", "manager", []string{"orders.*"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "manager"})

		source.DeleteRole("acme", "manager")

		perms, err := source.FetchGrants(ctx, "acme", "u1", "")
		require.NoError(t, err)
		assert.Empty(t, perms)

		holds, err := source.HoldsRole(ctx, "acme", "u1", "manager", "")
		require.NoError(t, err)
		assert.False(t, holds)
	})

	t.Run("Revoke removes only the matching assignment", func(t *testing.T) {
		t.Parallel()

		source := authz.NewStaticSource()
		source.SetRole("acme", "picker", []string{"inventory.pick"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "picker", LocationID: "berlin"})
		source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "picker", LocationID: "munich"})

		source.Revoke(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "picker", LocationID: "berlin"})

		holds, err := source.HoldsRole(ctx, "acme", "u1", "picker", "berlin")
		require.NoError(t, err)
		assert.False(t, holds)

		holds, err = source.HoldsRole(ctx, "acme", "u1", "picker", "munich")
		require.NoError(t, err)
		assert.True(t, holds)
	})

	t.Run("role set does not alias caller slice", func(t *testing.T) {
		t.Parallel()

		perms := []string{"orders.view"}
		source := authz.NewStaticSource()
		source.SetRole("acme", "clerk", perms)
		perms[0] = "mutated"

		got, err := source.FetchRoleGrants(ctx, "acme", "clerk")
		require.NoError(t, err)
		assert.Equal(t, []string{"orders.view"}, got)
	})
}

func TestStaticSourceHoldsRole(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	source := authz.NewStaticSource()
	source.SetRole("acme", "manager", []string{"orders.*"})
	source.SetRole("acme", "picker", []string{"inventory.pick"})
	source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "manager"})
	source.Assign(authz.RoleAssignment{TenantID: "acme", UserID: "u1", RoleID: "picker", LocationID: "berlin"})

	cases := []struct {
		name       string
		roleID     string
		locationID string
		want       bool
	}{
		{"tenant-wide role at tenant scope", "manager", "", true},
		{"tenant-wide role at any location", "manager", "berlin", true},
		{"location role at its location", "picker", "berlin", true},
		{"location role at tenant scope", "picker", "", false},
		{"location role at another location", "picker", "munich", false},
		{"role never assigned", "auditor", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			holds, err := source.HoldsRole(ctx, "acme", "u1", tc.roleID, tc.locationID)
			require.NoError(t, err)
			assert.Equal(t, tc.want, holds)
		})
	}
}

func TestParseFileSource(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("loads roles and assignments", func(t *testing.T) {
		t.Parallel()

		doc := []byte(`
tenants:
  acme:
    roles:
      manager:
        permissions: [orders.*, reports.view]
      picker:
        permissions: [inventory.pick]
    assignments:
      - user: u1
        role: manager
      - user: u2
        role: picker
        location: berlin
  globex:
    roles:
      admin:
        permissions: ["*"]
    assignments:
      - user: u9
        role: admin
`)

		source, err := authz.ParseFileSource(doc)
		require.NoError(t, err)

		perms, err := source.FetchGrants(ctx, "acme", "u1", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"orders.*", "reports.view"}, perms)

		holds, err := source.HoldsRole(ctx, "acme", "u2", "picker", "berlin")
		require.NoError(t, err)
		assert.True(t, holds)

		perms, err = source.FetchGrants(ctx, "globex", "u9", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"*"}, perms)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := authz.ParseFileSource([]byte("tenants: [not: a: map"))
		assert.Error(t, err)
	})

	t.Run("rejects assignment without user or role", func(t *testing.T) {
		t.Parallel()

		doc := []byte(`
tenants:
  acme:
    assignments:
      - user: u1
`)
		_, err := authz.ParseFileSource(doc)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "needs both user and role")
	})
}

func TestNewFileSource(t *testing.T) {
	t.Parallel()

	t.Run("reads from disk", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "grants.yml")
		doc := []byte(`
tenants:
  acme:
    roles:
      clerk:
        permissions: [orders.view]
    assignments:
      - user: u1
        role: clerk
`)
		require.NoError(t, os.WriteFile(path, doc, 0o600))

		source, err := authz.NewFileSource(path)
		require.NoError(t, err)

		perms, err := source.FetchGrants(context.Background(), "acme", "u1", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"orders.view"}, perms)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := authz.NewFileSource(filepath.Join(t.TempDir(), "absent.yml"))
		assert.Error(t, err)
	})
}

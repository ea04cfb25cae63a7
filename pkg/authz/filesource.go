package authz

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileDocument is the YAML shape accepted by NewFileSource:
//
//	tenants:
//	  acme:
//	    roles:
//	      manager:
//	        permissions: [orders.*, reports.view]
//	    assignments:
//	      - user: u1
//	        role: manager
//	        location: berlin # optional, omit for tenant-wide
type fileDocument struct {
	Tenants map[string]struct {
		Roles map[string]struct {
			Permissions []string `yaml:"permissions"`
		} `yaml:"roles"`
		Assignments []struct {
			User     string `yaml:"user"`
			Role     string `yaml:"role"`
			Location string `yaml:"location"`
		} `yaml:"assignments"`
	} `yaml:"tenants"`
}

// NewFileSource loads role definitions and assignments from a YAML file into
// a StaticSource. Intended for local development and bootstrap scenarios
// where roles live in configuration rather than a database.
func NewFileSource(path string) (*StaticSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("authz: read grant file: %w", err)
	}
	return ParseFileSource(data)
}

// ParseFileSource builds a StaticSource from YAML bytes.
func ParseFileSource(data []byte) (*StaticSource, error) {
	var doc fileDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("authz: parse grant file: %w", err)
	}

	source := NewStaticSource()
	for tenantID, tenant := range doc.Tenants {
		for roleID, role := range tenant.Roles {
			source.SetRole(tenantID, roleID, role.Permissions)
		}
		for _, a := range tenant.Assignments {
			if a.User == "" || a.Role == "" {
				return nil, fmt.Errorf("authz: grant file: assignment in tenant %q needs both user and role", tenantID)
			}
			source.Assign(RoleAssignment{
				TenantID:   tenantID,
				UserID:     a.User,
				RoleID:     a.Role,
				LocationID: a.Location,
			})
		}
	}

	return source, nil
}

// Package permissions provides matching helpers for dotted permission strings
// used across multi-tenant authorization flows.
//
// A permission is a capability identifier of the form "module.action"
// (e.g., "orders.view"). Grants may additionally use two wildcard forms:
//
//   - "module.*" grants every action within one module
//   - "*" grants everything
//
// The requested side of a check is never interpreted as a wildcard; only
// grants carry them.
//
// # Usage
//
//	granted := []string{"orders.*", "reports.view"}
//
//	permissions.HasPermission(granted, "orders.void")   // true
//	permissions.HasPermission(granted, "reports.view")  // true
//	permissions.HasPermission(granted, "billing.view")  // false
//
// Permission sets are plain []string values. Parse and Join convert between
// the slice form and a space-separated string form, and Normalize deduplicates
// and sorts a set for stable storage and comparison.
package permissions

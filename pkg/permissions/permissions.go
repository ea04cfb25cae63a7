package permissions

import (
	"slices"
	"sort"
	"strings"
)

const (
	// Separator is used to separate multiple permissions in a string form.
	Separator = " "

	// Wildcard represents the global wildcard that matches every permission.
	Wildcard = "*"

	// Delimiter separates the module prefix from the action (e.g., "orders.view").
	Delimiter = "."
)

// Matches reports whether a granted permission satisfies a requested one.
//
// Matching rules:
//   - Global wildcard: a grant of "*" matches any request.
//   - Exact match: "orders.view" matches "orders.view".
//   - Module wildcard: a grant of "orders.*" matches any request whose module
//     prefix (text before the first ".", or the whole string if none) is "orders".
//
// Only the granted side may carry a wildcard; the requested side is always
// taken literally.
func Matches(granted, requested string) bool {
	if granted == Wildcard || granted == requested {
		return true
	}

	if module, ok := strings.CutSuffix(granted, Delimiter+Wildcard); ok {
		requestedModule, _, _ := strings.Cut(requested, Delimiter)
		return module != "" && module == requestedModule
	}

	return false
}

// HasPermission checks whether any granted permission matches the requested one.
//
// Example:
//
//	ok := permissions.HasPermission([]string{"orders.*", "reports.view"}, "orders.void")
//	// Returns: true (because "orders.*" matches "orders.void")
func HasPermission(granted []string, requested string) bool {
	for _, g := range granted {
		if Matches(g, requested) {
			return true
		}
	}
	return false
}

// HasAny checks whether any of the requested permissions is granted.
// Returns true for an empty request list.
func HasAny(granted []string, requested []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, r := range requested {
		if HasPermission(granted, r) {
			return true
		}
	}
	return false
}

// HasAll checks whether every requested permission is granted.
// Returns true for an empty request list.
func HasAll(granted []string, requested []string) bool {
	for _, r := range requested {
		if !HasPermission(granted, r) {
			return false
		}
	}
	return true
}

// Parse converts a space-separated string of permissions into a slice.
// Trims spaces and drops empty entries. Returns nil for empty input.
func Parse(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	parts := strings.Split(s, Separator)
	perms := make([]string, 0, len(parts))
	for i := range parts {
		if parts[i] = strings.TrimSpace(parts[i]); parts[i] != "" {
			perms = append(perms, parts[i])
		}
	}
	return perms
}

// Join converts a slice of permissions back to a space-separated string.
func Join(perms []string) string {
	if len(perms) == 0 {
		return ""
	}
	return strings.Join(perms, Separator)
}

// Normalize removes duplicates and sorts the permissions alphabetically.
// Returns nil for empty input.
func Normalize(perms []string) []string {
	if len(perms) == 0 {
		return nil
	}

	unique := make(map[string]struct{}, len(perms))
	for i := range perms {
		unique[perms[i]] = struct{}{}
	}

	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	sort.Strings(normalized)

	return normalized
}

// Clone returns an independent copy of the permission set, so callers can
// mutate the result without affecting the source.
func Clone(perms []string) []string {
	if perms == nil {
		return nil
	}
	return slices.Clone(perms)
}

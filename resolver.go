package secured

// ============================================================================
// METADATA RESOLUTION
// ============================================================================

// MetadataSource is the pluggable lookup for access-control metadata attached
// to methods and types. Implementations must be deterministic: the metadata is
// assumed static for the lifetime of the process. Lookups that hit conflicting
// declarations on one element must return ErrAmbiguousMetadata rather than
// silently pick one.
type MetadataSource interface {
	// MostSpecificMethod returns the override of method actually bound at
	// runtimeType, or method itself when no more-specific override exists.
	// Returns ErrUnknownType when runtimeType is not known to the source.
	MostSpecificMethod(method MethodRef, runtimeType string) (MethodRef, error)

	// MethodPermissions returns the permission set attached to the method,
	// or nil when the method carries no access metadata.
	MethodPermissions(method MethodRef) ([]string, error)

	// TypePermissions returns the permission set attached to the type itself,
	// or nil when the type carries no access metadata.
	TypePermissions(typeName string) ([]string, error)
}

// resolvePermissions determines the permissions required to invoke method on an
// instance of runtimeType. Method-level metadata on the most specific override
// wins; metadata on that method's declaring type is the fallback. A nil result
// means the call is not governed by this mechanism.
func resolvePermissions(src MetadataSource, method MethodRef, runtimeType string) ([]string, error) {
	specific := method
	if runtimeType != "" && runtimeType != method.Type {
		m, err := src.MostSpecificMethod(method, runtimeType)
		if err != nil {
			return nil, err
		}
		if !m.IsZero() {
			specific = m
		}
	}
	perms, err := src.MethodPermissions(specific)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms, err = src.TypePermissions(specific.Type)
		if err != nil {
			return nil, err
		}
	}
	if perms == nil {
		return nil, nil
	}
	return dedupe(perms), nil
}

// dedupe returns a copy of perms with duplicates removed, preserving order
func dedupe(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

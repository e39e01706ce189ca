package secured

import "github.com/oarkflow/secured/utils"

// ============================================================================
// DECISION DELEGATES
// ============================================================================

// Delegate makes the final grant/deny decision once the engine has determined
// that a call requires permissions. required is always non-empty. The supplier
// must be invoked lazily: only when the matching algorithm actually needs the
// identity.
type Delegate interface {
	Check(supply IdentitySupplier, required []string) (Decision, error)
}

// DelegateFunc adapts a function to the Delegate interface
type DelegateFunc func(supply IdentitySupplier, required []string) (Decision, error)

func (f DelegateFunc) Check(supply IdentitySupplier, required []string) (Decision, error) {
	return f(supply, required)
}

// AuthorityDelegate grants when the identity's granted permissions intersect
// the required set by exact string match.
type AuthorityDelegate struct{}

func (AuthorityDelegate) Check(supply IdentitySupplier, required []string) (Decision, error) {
	id, err := supply()
	if err != nil {
		return Deny, err
	}
	if id == nil {
		return Deny, ErrNoIdentity
	}
	granted := make(map[string]struct{}, len(id.Permissions))
	for _, p := range id.Permissions {
		granted[p] = struct{}{}
	}
	for _, r := range required {
		if _, ok := granted[r]; ok {
			return Grant, nil
		}
	}
	return Deny, nil
}

// PatternDelegate treats granted permissions as patterns, so an identity
// holding "document:*" satisfies a requirement of "document:read".
type PatternDelegate struct{}

func (PatternDelegate) Check(supply IdentitySupplier, required []string) (Decision, error) {
	id, err := supply()
	if err != nil {
		return Deny, err
	}
	if id == nil {
		return Deny, ErrNoIdentity
	}
	for _, r := range required {
		for _, g := range id.Permissions {
			if utils.MatchPermission(r, g) {
				return Grant, nil
			}
		}
	}
	return Deny, nil
}

package secured

import (
	"errors"
)

// ============================================================================
// DOMAIN OBJECTS
// ============================================================================

// Decision is the outcome of one authorization check
type Decision string

const (
	// Grant means the identity holds at least one required permission
	Grant Decision = "grant"
	// Deny means permissions were required and the identity holds none of them
	Deny Decision = "deny"
	// Abstain means no access metadata governs the call; a surrounding
	// composite process should consult other mechanisms
	Abstain Decision = "abstain"
)

// MethodRef identifies a method by its declaring type and name
type MethodRef struct {
	Type string `json:"type" yaml:"type"`
	Name string `json:"name" yaml:"name"`
}

func (m MethodRef) String() string {
	return m.Type + "." + m.Name
}

// IsZero reports whether the reference is empty
func (m MethodRef) IsZero() bool {
	return m.Type == "" && m.Name == ""
}

// Invocation describes one intercepted method call. It is constructed by the
// interception layer; this package only reads it.
type Invocation interface {
	// Method returns the method as statically declared at the call site
	Method() MethodRef
	// RuntimeType returns the concrete type the call was dispatched on,
	// or "" when the call is static/unbound
	RuntimeType() string
}

// MethodCall is a plain Invocation for callers that build descriptors directly
type MethodCall struct {
	Target MethodRef
	On     string // runtime type, "" for static calls
}

func (c MethodCall) Method() MethodRef { return c.Target }

func (c MethodCall) RuntimeType() string { return c.On }

// Identity represents an authenticated principal and its granted permissions
type Identity struct {
	Principal   string   `json:"principal" yaml:"principal"`
	Permissions []string `json:"permissions" yaml:"permissions"`
}

// IdentitySupplier lazily produces the current identity. The engine invokes it
// at most once per check, and only when the call requires permissions.
type IdentitySupplier func() (*Identity, error)

// StaticSupplier wraps a fixed identity in a supplier
func StaticSupplier(id *Identity) IdentitySupplier {
	return func() (*Identity, error) {
		if id == nil {
			return nil, ErrNoIdentity
		}
		return id, nil
	}
}

// SupplierOf builds a supplier for a principal with the given permissions
func SupplierOf(principal string, permissions ...string) IdentitySupplier {
	return StaticSupplier(&Identity{Principal: principal, Permissions: permissions})
}

var (
	// ErrAmbiguousMetadata signals conflicting access metadata attached at the
	// same precedence level on one element. Fatal configuration error.
	ErrAmbiguousMetadata = errors.New("ambiguous access metadata")

	// ErrUnknownType signals a runtime type the metadata source has never seen;
	// the interception layer handed over a malformed descriptor.
	ErrUnknownType = errors.New("unknown runtime type")

	// ErrNoIdentity signals that no identity is established although the call
	// requires permissions.
	ErrNoIdentity = errors.New("no identity established")
)

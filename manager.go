package secured

import (
	"fmt"

	"github.com/oarkflow/secured/logger"
)

// ============================================================================
// AUTHORIZATION MANAGER
// ============================================================================

// Manager decides whether an intercepted method call is permitted. It resolves
// the permissions required by the call's access metadata (memoized per
// method/runtime-type pair), abstains when none are declared, and otherwise
// forwards the lazy identity to its Delegate.
//
// A Manager is safe for concurrent use; the resolution cache is its only
// shared mutable state.
type Manager struct {
	source      MetadataSource
	delegate    Delegate
	cache       *resolutionCache
	logger      logger.Logger
	traceIDFunc logger.TraceIDFunc
}

// Option configures a Manager
type Option func(*Manager) error

// WithDelegate replaces the default AuthorityDelegate
func WithDelegate(d Delegate) Option {
	return func(m *Manager) error {
		if d == nil {
			return fmt.Errorf("delegate must not be nil")
		}
		m.delegate = d
		return nil
	}
}

// NewManager builds a Manager over the given metadata source. The resolution
// cache is created here and lives for the Manager's entire lifetime.
func NewManager(source MetadataSource, opts ...Option) (*Manager, error) {
	if source == nil {
		return nil, fmt.Errorf("metadata source is required")
	}
	m := &Manager{
		source:   source,
		delegate: AuthorityDelegate{},
		cache:    newResolutionCache(),
		logger:   logger.NewNullLogger(),
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Check decides whether the identity produced by supply may perform the
// invocation. It returns Abstain, without ever invoking supply, when no access
// metadata governs the call. Resolution errors (ambiguous metadata, unknown
// runtime type) and supplier failures are returned unchanged; the decision is
// Deny in those cases so that callers ignoring the error fail closed.
func (m *Manager) Check(supply IdentitySupplier, inv Invocation) (Decision, error) {
	method := inv.Method()
	key := methodClassKey{method: method, runtimeType: inv.RuntimeType()}

	required, err := m.cache.getOrCompute(key, func() ([]string, error) {
		return resolvePermissions(m.source, key.method, key.runtimeType)
	})
	if err != nil {
		m.logger.Error("metadata resolution failed",
			"method", method.String(),
			"runtime_type", key.runtimeType,
			"error", err.Error())
		return Deny, err
	}
	if len(required) == 0 {
		return Abstain, nil
	}

	dec, err := m.delegate.Check(supply, required)
	if err != nil {
		return dec, err
	}
	m.logger.Debug("authorization decision",
		"method", method.String(),
		"runtime_type", key.runtimeType,
		"decision", string(dec),
		"trace_id", m.traceID())
	return dec, nil
}

// RequiredPermissions reports the permission set governing the invocation,
// resolving and caching it if needed. Nil means the call is ungoverned.
func (m *Manager) RequiredPermissions(inv Invocation) ([]string, error) {
	key := methodClassKey{method: inv.Method(), runtimeType: inv.RuntimeType()}
	return m.cache.getOrCompute(key, func() ([]string, error) {
		return resolvePermissions(m.source, key.method, key.runtimeType)
	})
}

// CachedResolutions reports how many (method, runtime type) pairs have been
// resolved so far.
func (m *Manager) CachedResolutions() int {
	return m.cache.size()
}

func (m *Manager) traceID() string {
	if m.traceIDFunc == nil {
		return ""
	}
	return m.traceIDFunc()
}

package secured

import (
	"fmt"
	"sync"
)

// ============================================================================
// IN-MEMORY METADATA REGISTRY
// ============================================================================

// typeEntry records one registered type: its declared supertypes (parents or
// implemented interfaces), the access metadata attached to the type itself,
// and the methods it declares. Multiple metadata declarations on the same
// element are kept so lookups can report the conflict.
type typeEntry struct {
	parents []string
	perms   [][]string
	methods map[string][][]string
}

// Registry is an in-memory MetadataSource. Interception layers or loaders
// populate it once at startup; lookups afterwards are read-only, matching the
// assumption that access metadata is static for a running process.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*typeEntry
}

func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*typeEntry)}
}

func (r *Registry) entry(name string) *typeEntry {
	te, ok := r.types[name]
	if !ok {
		te = &typeEntry{methods: make(map[string][][]string)}
		r.types[name] = te
	}
	return te
}

// RegisterType declares a type and its supertypes (parent classes or
// implemented interfaces). Registering the same type again merges parents.
func (r *Registry) RegisterType(name string, parents ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	te := r.entry(name)
	te.parents = append(te.parents, parents...)
}

// SecureType attaches access metadata to the type itself. Calling it twice for
// the same type records a conflict, surfaced as ErrAmbiguousMetadata on lookup.
func (r *Registry) SecureType(name string, permissions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	te := r.entry(name)
	te.perms = append(te.perms, permissions)
}

// RegisterMethod declares a method on its type without attaching metadata.
// Declaring an override matters even without metadata: resolution binds to the
// override, and an unannotated override on an unannotated type means the call
// is ungoverned regardless of metadata on the overridden declaration.
func (r *Registry) RegisterMethod(m MethodRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	te := r.entry(m.Type)
	if _, ok := te.methods[m.Name]; !ok {
		te.methods[m.Name] = nil
	}
}

// SecureMethod declares a method and attaches access metadata to it. Calling
// it twice for the same method records a conflict.
func (r *Registry) SecureMethod(m MethodRef, permissions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	te := r.entry(m.Type)
	te.methods[m.Name] = append(te.methods[m.Name], permissions)
}

// MostSpecificMethod walks from runtimeType up through its supertypes and
// returns the nearest declaration of the method, stopping short of the
// statically declared type. Breadth-first, so a declaration on the runtime
// type itself always wins over one inherited from a parent.
func (r *Registry) MostSpecificMethod(method MethodRef, runtimeType string) (MethodRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if runtimeType == "" || runtimeType == method.Type {
		return method, nil
	}
	if _, ok := r.types[runtimeType]; !ok {
		return MethodRef{}, fmt.Errorf("%w: %s", ErrUnknownType, runtimeType)
	}
	seen := map[string]struct{}{}
	level := []string{runtimeType}
	for len(level) > 0 {
		var next []string
		for _, tn := range level {
			if tn == method.Type {
				continue
			}
			if _, ok := seen[tn]; ok {
				continue
			}
			seen[tn] = struct{}{}
			te, ok := r.types[tn]
			if !ok {
				continue
			}
			if _, ok := te.methods[method.Name]; ok {
				return MethodRef{Type: tn, Name: method.Name}, nil
			}
			next = append(next, te.parents...)
		}
		level = next
	}
	return method, nil
}

// MethodPermissions returns the unique metadata attached to the method, nil
// when none is attached, or ErrAmbiguousMetadata when conflicting declarations
// exist.
func (r *Registry) MethodPermissions(m MethodRef) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	te, ok := r.types[m.Type]
	if !ok {
		return nil, nil
	}
	decls := te.methods[m.Name]
	switch len(decls) {
	case 0:
		return nil, nil
	case 1:
		return decls[0], nil
	default:
		return nil, fmt.Errorf("%w: method %s", ErrAmbiguousMetadata, m)
	}
}

// TypePermissions returns the unique metadata attached to the type, under the
// same contract as MethodPermissions.
func (r *Registry) TypePermissions(typeName string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	te, ok := r.types[typeName]
	if !ok {
		return nil, nil
	}
	switch len(te.perms) {
	case 0:
		return nil, nil
	case 1:
		return te.perms[0], nil
	default:
		return nil, fmt.Errorf("%w: type %s", ErrAmbiguousMetadata, typeName)
	}
}

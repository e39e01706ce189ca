package stores

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oarkflow/squealx"

	"github.com/oarkflow/secured"
)

// TypeRecord is one persisted type declaration
type TypeRecord struct {
	Name        string
	Parents     []string
	Permissions []string // nil = no access metadata attached
	CreatedAt   time.Time
}

// MethodRecord is one persisted method declaration
type MethodRecord struct {
	Method      secured.MethodRef
	Permissions []string // nil = no access metadata attached
	CreatedAt   time.Time
}

// SQLMetadataStore persists access metadata declarations in SQL (squealx) and
// serves them as a secured.MetadataSource. The declarations are written once
// at deployment time; lookups are read-only, so the store can be queried
// concurrently without coordination.
type SQLMetadataStore struct {
	db *squealx.DB
}

func NewSQLMetadataStore(db *squealx.DB) *SQLMetadataStore {
	return &SQLMetadataStore{db: db}
}

// SaveType records a type, its supertypes, and optional type-level metadata.
// Saving the same element twice with metadata produces the ambiguity that
// lookups are required to report.
func (s *SQLMetadataStore) SaveType(ctx context.Context, name string, parents []string, permissions []string) error {
	pj, _ := json.Marshal(parents)
	q := `INSERT INTO secured_types(name, parents_json, permissions_json, created_at) VALUES(:name, :parents_json, :permissions_json, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"name":             name,
		"parents_json":     string(pj),
		"permissions_json": permsJSON(permissions),
		"created_at":       time.Now(),
	})
	return err
}

// SaveMethod records a method declaration with optional method-level metadata
func (s *SQLMetadataStore) SaveMethod(ctx context.Context, m secured.MethodRef, permissions []string) error {
	q := `INSERT INTO secured_methods(type_name, method_name, permissions_json, created_at) VALUES(:type_name, :method_name, :permissions_json, :created_at)`
	_, err := s.db.NamedExecContext(ctx, q, map[string]any{
		"type_name":        m.Type,
		"method_name":      m.Name,
		"permissions_json": permsJSON(permissions),
		"created_at":       time.Now(),
	})
	return err
}

// ListTypes returns all persisted type declarations
func (s *SQLMetadataStore) ListTypes(ctx context.Context) ([]*TypeRecord, error) {
	q := `SELECT name, parents_json, permissions_json, created_at FROM secured_types`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var out []*TypeRecord
	for r.Next() {
		var name, parentsJSON string
		var permsRaw, createdRaw any
		if err := r.Scan(&name, &parentsJSON, &permsRaw, &createdRaw); err != nil {
			return nil, err
		}
		var parents []string
		_ = json.Unmarshal([]byte(parentsJSON), &parents)
		out = append(out, &TypeRecord{
			Name:        name,
			Parents:     parents,
			Permissions: jsonPerms(permsRaw),
			CreatedAt:   scanTime(createdRaw),
		})
	}
	return out, nil
}

// ListMethods returns all persisted method declarations
func (s *SQLMetadataStore) ListMethods(ctx context.Context) ([]*MethodRecord, error) {
	q := `SELECT type_name, method_name, permissions_json, created_at FROM secured_methods`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var out []*MethodRecord
	for r.Next() {
		var typeName, methodName string
		var permsRaw, createdRaw any
		if err := r.Scan(&typeName, &methodName, &permsRaw, &createdRaw); err != nil {
			return nil, err
		}
		out = append(out, &MethodRecord{
			Method:      secured.MethodRef{Type: typeName, Name: methodName},
			Permissions: jsonPerms(permsRaw),
			CreatedAt:   scanTime(createdRaw),
		})
	}
	return out, nil
}

// Load materializes the persisted declarations into an in-memory Registry,
// for deployments that prefer a one-time snapshot over live SQL lookups.
func (s *SQLMetadataStore) Load(ctx context.Context) (*secured.Registry, error) {
	reg := secured.NewRegistry()
	types, err := s.ListTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		reg.RegisterType(t.Name, t.Parents...)
		if t.Permissions != nil {
			reg.SecureType(t.Name, t.Permissions...)
		}
	}
	methods, err := s.ListMethods(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range methods {
		if m.Permissions != nil {
			reg.SecureMethod(m.Method, m.Permissions...)
		} else {
			reg.RegisterMethod(m.Method)
		}
	}
	return reg, nil
}

// ----------------------------------------------------------------------------
// secured.MetadataSource
// ----------------------------------------------------------------------------

func (s *SQLMetadataStore) MostSpecificMethod(method secured.MethodRef, runtimeType string) (secured.MethodRef, error) {
	ctx := context.Background()
	if runtimeType == "" || runtimeType == method.Type {
		return method, nil
	}
	parents, known, err := s.typeParents(ctx, runtimeType)
	if err != nil {
		return secured.MethodRef{}, err
	}
	if !known {
		return secured.MethodRef{}, fmt.Errorf("%w: %s", secured.ErrUnknownType, runtimeType)
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
			declared, err := s.methodDeclared(ctx, tn, method.Name)
			if err != nil {
				return secured.MethodRef{}, err
			}
			if declared {
				return secured.MethodRef{Type: tn, Name: method.Name}, nil
			}
			if tn == runtimeType {
				next = append(next, parents...)
				continue
			}
			p, _, err := s.typeParents(ctx, tn)
			if err != nil {
				return secured.MethodRef{}, err
			}
			next = append(next, p...)
		}
		level = next
	}
	return method, nil
}

func (s *SQLMetadataStore) MethodPermissions(method secured.MethodRef) ([]string, error) {
	q := `SELECT permissions_json FROM secured_methods WHERE type_name = :type_name AND method_name = :method_name`
	r, err := s.db.NamedQueryContext(context.Background(), q, map[string]any{
		"type_name":   method.Type,
		"method_name": method.Name,
	})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	perms, err := uniquePermissions(r)
	if err != nil {
		return nil, fmt.Errorf("%w: method %s", secured.ErrAmbiguousMetadata, method)
	}
	return perms, nil
}

func (s *SQLMetadataStore) TypePermissions(typeName string) ([]string, error) {
	q := `SELECT permissions_json FROM secured_types WHERE name = :name`
	r, err := s.db.NamedQueryContext(context.Background(), q, map[string]any{"name": typeName})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	perms, err := uniquePermissions(r)
	if err != nil {
		return nil, fmt.Errorf("%w: type %s", secured.ErrAmbiguousMetadata, typeName)
	}
	return perms, nil
}

func (s *SQLMetadataStore) typeParents(ctx context.Context, name string) ([]string, bool, error) {
	q := `SELECT parents_json FROM secured_types WHERE name = :name`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{"name": name})
	if err != nil {
		return nil, false, err
	}
	defer r.Close()
	var parents []string
	known := false
	for r.Next() {
		known = true
		var pj string
		if err := r.Scan(&pj); err != nil {
			return nil, false, err
		}
		var p []string
		_ = json.Unmarshal([]byte(pj), &p)
		parents = append(parents, p...)
	}
	return parents, known, nil
}

func (s *SQLMetadataStore) methodDeclared(ctx context.Context, typeName, methodName string) (bool, error) {
	q := `SELECT COUNT(1) FROM secured_methods WHERE type_name = :type_name AND method_name = :method_name`
	r, err := s.db.NamedQueryContext(ctx, q, map[string]any{
		"type_name":   typeName,
		"method_name": methodName,
	})
	if err != nil {
		return false, err
	}
	defer r.Close()
	if !r.Next() {
		return false, nil
	}
	var count int
	if err := r.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
}

// uniquePermissions folds permissions_json rows into the single applicable
// metadata value: nil when no row carries metadata, the one attached set when
// exactly one does, and an error when several conflict.
func uniquePermissions(r rowScanner) ([]string, error) {
	var found []string
	count := 0
	for r.Next() {
		var raw any
		if err := r.Scan(&raw); err != nil {
			return nil, err
		}
		perms := jsonPerms(raw)
		if perms == nil {
			continue
		}
		count++
		if count > 1 {
			return nil, fmt.Errorf("conflicting metadata rows")
		}
		found = perms
	}
	return found, nil
}

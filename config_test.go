package secured

import (
	"errors"
	"testing"
)

const sampleYAML = `
version: 1
types:
  - name: UserService
  - name: AdminUserService
    parents: [UserService]
  - name: ReportService
    secured: [REPORTS]
methods:
  - type: UserService
    name: Delete
    secured: [ADMIN]
  - type: AdminUserService
    name: Delete
    secured: [SUPER]
  - type: UserService
    name: List
identities:
  - principal: alice
    permissions: [ADMIN, USER]
  - principal: bob
    permissions: [USER]
`

func loadSample(t *testing.T) *Config {
	t.Helper()
	cfg, err := NewConfigLoader().LoadYAML([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return cfg
}

func TestConfigDrivenDecisions(t *testing.T) {
	cfg := loadSample(t)
	mgr, err := NewManager(cfg.BuildRegistry())
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	del := MethodCall{Target: MethodRef{Type: "UserService", Name: "Delete"}}
	if dec, _ := mgr.Check(cfg.SupplierFor("alice"), del); dec != Grant {
		t.Fatalf("alice should be granted, got %s", dec)
	}
	if dec, _ := mgr.Check(cfg.SupplierFor("bob"), del); dec != Deny {
		t.Fatalf("bob should be denied, got %s", dec)
	}

	list := MethodCall{Target: MethodRef{Type: "UserService", Name: "List"}}
	if dec, _ := mgr.Check(cfg.SupplierFor("bob"), list); dec != Abstain {
		t.Fatalf("unsecured method should abstain, got %s", dec)
	}

	// override on the concrete type wins over the declaration
	overridden := MethodCall{Target: del.Target, On: "AdminUserService"}
	if dec, _ := mgr.Check(cfg.SupplierFor("alice"), overridden); dec != Deny {
		t.Fatalf("alice lacks the override's SUPER permission, got %s", dec)
	}

	// class-level metadata is the fallback for any method on the type
	report := MethodCall{Target: MethodRef{Type: "ReportService", Name: "Export"}}
	if dec, _ := mgr.Check(SupplierOf("carol", "REPORTS"), report); dec != Grant {
		t.Fatalf("class-level fallback should grant, got %s", dec)
	}
}

func TestConfigUnknownPrincipal(t *testing.T) {
	cfg := loadSample(t)
	_, err := cfg.SupplierFor("mallory")()
	if !errors.Is(err, ErrNoIdentity) {
		t.Fatalf("expected ErrNoIdentity, got %v", err)
	}
}

func TestConfigValidateDuplicateMetadata(t *testing.T) {
	cfg := loadSample(t)
	cfg.Methods = append(cfg.Methods, MethodConfig{Type: "UserService", Name: "Delete", Secured: []string{"OTHER"}})
	if err := cfg.Validate(); !errors.Is(err, ErrAmbiguousMetadata) {
		t.Fatalf("expected ErrAmbiguousMetadata, got %v", err)
	}
}

func TestConfigValidateUndeclaredType(t *testing.T) {
	cfg := loadSample(t)
	cfg.Methods = append(cfg.Methods, MethodConfig{Type: "GhostService", Name: "Do"})
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for method on undeclared type")
	}
}

func TestConfigJSONRoundTrip(t *testing.T) {
	cfg := loadSample(t)
	data, err := cfg.ToJSON()
	if err != nil {
		t.Fatalf("to json: %v", err)
	}
	back, err := NewConfigLoader().LoadJSON(data)
	if err != nil {
		t.Fatalf("load json: %v", err)
	}
	if len(back.Types) != len(cfg.Types) || len(back.Methods) != len(cfg.Methods) || len(back.Identities) != len(cfg.Identities) {
		t.Fatalf("round trip lost declarations")
	}
	if err := back.Validate(); err != nil {
		t.Fatalf("round-tripped config invalid: %v", err)
	}
}

func TestConfigYAMLRoundTrip(t *testing.T) {
	cfg := loadSample(t)
	data, err := cfg.ToYAML()
	if err != nil {
		t.Fatalf("to yaml: %v", err)
	}
	back, err := NewConfigLoader().LoadYAML(data)
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	if len(back.Types) != len(cfg.Types) || len(back.Methods) != len(cfg.Methods) {
		t.Fatalf("round trip lost declarations")
	}
}

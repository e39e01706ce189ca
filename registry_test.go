package secured

import (
	"errors"
	"testing"
)

func TestMostSpecificPrefersNearestDeclaration(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterType("Base")
	reg.SecureMethod(MethodRef{Type: "Base", Name: "Do"}, "A")
	reg.RegisterType("Middle", "Base")
	reg.SecureMethod(MethodRef{Type: "Middle", Name: "Do"}, "B")
	reg.RegisterType("Leaf", "Middle")
	reg.SecureMethod(MethodRef{Type: "Leaf", Name: "Do"}, "C")

	m, err := reg.MostSpecificMethod(MethodRef{Type: "Base", Name: "Do"}, "Leaf")
	if err != nil {
		t.Fatalf("most specific: %v", err)
	}
	if m.Type != "Leaf" {
		t.Fatalf("expected the leaf declaration, got %s", m)
	}
}

func TestMostSpecificWalksPastUndeclaredTypes(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterType("Base")
	reg.SecureMethod(MethodRef{Type: "Base", Name: "Do"}, "A")
	reg.RegisterType("Middle", "Base")
	reg.SecureMethod(MethodRef{Type: "Middle", Name: "Do"}, "B")
	reg.RegisterType("Leaf", "Middle") // Leaf does not re-declare Do

	m, err := reg.MostSpecificMethod(MethodRef{Type: "Base", Name: "Do"}, "Leaf")
	if err != nil {
		t.Fatalf("most specific: %v", err)
	}
	if m.Type != "Middle" {
		t.Fatalf("expected the middle declaration, got %s", m)
	}
}

func TestMostSpecificWithoutOverrideReturnsOriginal(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterType("Base")
	reg.SecureMethod(MethodRef{Type: "Base", Name: "Do"}, "A")
	reg.RegisterType("Impl", "Base")

	m, err := reg.MostSpecificMethod(MethodRef{Type: "Base", Name: "Do"}, "Impl")
	if err != nil {
		t.Fatalf("most specific: %v", err)
	}
	if m.Type != "Base" {
		t.Fatalf("expected the original declaration, got %s", m)
	}
}

func TestMostSpecificUnknownRuntimeType(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterType("Base")
	_, err := reg.MostSpecificMethod(MethodRef{Type: "Base", Name: "Do"}, "Nowhere")
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestMostSpecificSurvivesHierarchyCycles(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterType("A", "B")
	reg.RegisterType("B", "A")
	reg.SecureMethod(MethodRef{Type: "Other", Name: "Do"}, "X")

	m, err := reg.MostSpecificMethod(MethodRef{Type: "Other", Name: "Do"}, "A")
	if err != nil {
		t.Fatalf("most specific: %v", err)
	}
	if m.Type != "Other" {
		t.Fatalf("expected fallback to original, got %s", m)
	}
}

func TestAmbiguousMethodMetadata(t *testing.T) {
	reg := NewRegistry()
	ref := MethodRef{Type: "Svc", Name: "Do"}
	reg.SecureMethod(ref, "A")
	reg.SecureMethod(ref, "B")

	_, err := reg.MethodPermissions(ref)
	if !errors.Is(err, ErrAmbiguousMetadata) {
		t.Fatalf("expected ErrAmbiguousMetadata, got %v", err)
	}
}

func TestAmbiguousTypeMetadata(t *testing.T) {
	reg := NewRegistry()
	reg.SecureType("Svc", "A")
	reg.SecureType("Svc", "B")

	_, err := reg.TypePermissions("Svc")
	if !errors.Is(err, ErrAmbiguousMetadata) {
		t.Fatalf("expected ErrAmbiguousMetadata, got %v", err)
	}
}

func TestUnknownElementsHaveNoMetadata(t *testing.T) {
	reg := NewRegistry()
	perms, err := reg.MethodPermissions(MethodRef{Type: "Nope", Name: "Do"})
	if err != nil || perms != nil {
		t.Fatalf("expected no metadata for unknown method, got %v err=%v", perms, err)
	}
	perms, err = reg.TypePermissions("Nope")
	if err != nil || perms != nil {
		t.Fatalf("expected no metadata for unknown type, got %v err=%v", perms, err)
	}
}

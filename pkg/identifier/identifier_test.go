package identifier

import "testing"

func TestNewIsValid(t *testing.T) {
	id, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !IsValid(id) {
		t.Fatalf("generated identifier failed validation: %q", id)
	}
}

func TestNewIsUnique(t *testing.T) {
	first, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	second, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if first == second {
		t.Fatal("expected two successive identifiers to differ")
	}
}

func TestIsValidRejectsGarbage(t *testing.T) {
	if IsValid("not-an-identifier") {
		t.Fatal("expected garbage input to be rejected")
	}
}

package enums

import "testing"

func TestParseRole(t *testing.T) {
	role, err := ParseRole("admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != RoleAdmin || !role.IsValid() {
		t.Fatalf("expected admin role got %q", role)
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if Role("").IsValid() {
		t.Fatal("empty role must be invalid")
	}
}

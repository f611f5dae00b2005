package claims

import (
	"context"
	"testing"
)

func TestClaims(t *testing.T) {
	ctx := context.Background()

	if _, err := Get(ctx); err == nil {
		t.Fatal("expected missing claims to fail")
	}
	if _, err := Get(Set(ctx, Claims{Role: RoleAdmin})); err == nil {
		t.Fatal("expected claims without a user to fail")
	}

	c, err := Get(Set(ctx, Claims{UserID: "u1", Role: "admin"}))
	if err != nil {
		t.Fatalf("getting claims: %v", err)
	}
	if !c.IsAdmin() {
		t.Fatal("expected role match to ignore case")
	}
	if !c.HasRole(RoleInstructor, RoleAdmin) {
		t.Fatal("expected admin to match the role list")
	}
	if c.HasRole(RoleInstructor) {
		t.Fatal("expected admin not to be an instructor")
	}
}

package services

import (
	"context"
	"testing"

	"swearjar-backend/internal/core/domain"
)

func TestOwnerPassesEveryCheck(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)

	for _, capability := range []domain.Capability{
		domain.CapMember,
		domain.CapDeposit,
		domain.CapWithdraw,
		domain.CapInvite,
		domain.CapViewTransactions,
		domain.CapAdmin,
		domain.CapOwner,
	} {
		ok, err := env.permissions.Authorize(context.Background(), "alice", jar, capability)
		if err != nil {
			t.Fatalf("Authorize failed for %v: %v", capability, err)
		}
		if !ok {
			t.Fatalf("Expected owner to pass capability %v", capability)
		}
	}
}

func TestNonMemberIsDenied(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)

	ok, err := env.permissions.Authorize(context.Background(), "stranger", jar, domain.CapMember)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if ok {
		t.Fatal("Expected non-member to be denied")
	}
}

func TestPermissionFlagsGateOperations(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{
		UserID:              "bob",
		CanDeposit:          true,
		CanWithdraw:         false,
		CanInvite:           true,
		CanViewTransactions: false,
	})

	checks := []struct {
		cap  domain.Capability
		want bool
	}{
		{domain.CapMember, true},
		{domain.CapDeposit, true},
		{domain.CapWithdraw, false},
		{domain.CapInvite, true},
		{domain.CapViewTransactions, false},
		{domain.CapAdmin, false},
		{domain.CapOwner, false},
	}
	for _, c := range checks {
		ok, err := env.permissions.Authorize(context.Background(), "bob", jar, c.cap)
		if err != nil {
			t.Fatalf("Authorize failed for %v: %v", c.cap, err)
		}
		if ok != c.want {
			t.Fatalf("Capability %v: expected %v, got %v", c.cap, c.want, ok)
		}
	}
}

func TestAdminRoleSatisfiesAdminChecks(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob"})

	role := "ADMIN"
	if _, err := env.jars.UpdateMember(context.Background(), "alice", jar.ID, "bob", &UpdateMemberInput{Role: &role}); err != nil {
		t.Fatalf("Failed to promote: %v", err)
	}

	ok, err := env.permissions.Authorize(context.Background(), "bob", jar, domain.CapAdmin)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected ADMIN role to satisfy admin checks")
	}

	ok, err = env.permissions.Authorize(context.Background(), "bob", jar, domain.CapOwner)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if ok {
		t.Fatal("ADMIN role must not satisfy owner checks")
	}
}

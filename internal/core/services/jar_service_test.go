package services

import (
	"context"
	"errors"
	"testing"

	"swearjar-backend/internal/core/domain"
)

func TestCreateJarDefaults(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)

	if !jar.Balance.IsZero() {
		t.Fatalf("Expected zero starting balance, got %s", jar.Balance)
	}
	if !jar.Settings.MinimumDeposit.Equal(dec("0.01")) {
		t.Fatalf("Expected default minimum deposit 0.01, got %s", jar.Settings.MinimumDeposit)
	}
	if !jar.Settings.MaximumDeposit.Equal(dec("1000")) {
		t.Fatalf("Expected default maximum deposit 1000, got %s", jar.Settings.MaximumDeposit)
	}

	members, err := env.jars.ListMembers(context.Background(), "alice", jar.ID)
	if err != nil {
		t.Fatalf("Failed to list members: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("Expected 1 member, got %d", len(members))
	}
	owner := members[0]
	if owner.Role != string(domain.RoleOwner) {
		t.Fatalf("Expected creator to be OWNER, got %s", owner.Role)
	}
	if !owner.CanDeposit || !owner.CanWithdraw || !owner.CanInvite || !owner.CanViewTransactions {
		t.Fatal("Owner must hold every permission flag")
	}
}

func TestCreateJarValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.jars.Create(context.Background(), "alice", &CreateJarInput{Name: "", Currency: "USD"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for empty name, got %v", err)
	}

	_, err = env.jars.Create(context.Background(), "alice", &CreateJarInput{Name: "Jar", Currency: "XYZ"})
	if !errors.Is(err, domain.ErrInvalidCurrency) {
		t.Fatalf("Expected ErrInvalidCurrency, got %v", err)
	}
}

func TestDeleteJarRequiresZeroBalance(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	original := env.deposit(t, "alice", jar.ID, "10.00")

	if err := env.jars.Delete(context.Background(), "alice", jar.ID); !errors.Is(err, domain.ErrJarNotEmpty) {
		t.Fatalf("Expected ErrJarNotEmpty, got %v", err)
	}

	if _, _, err := env.transactions.Reverse(context.Background(), "alice", original.ID, "emptying"); err != nil {
		t.Fatalf("Failed to empty the jar: %v", err)
	}
	if err := env.jars.Delete(context.Background(), "alice", jar.ID); err != nil {
		t.Fatalf("Failed to delete empty jar: %v", err)
	}

	if _, err := env.jars.Get(context.Background(), "alice", jar.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteJarOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob"})

	if err := env.jars.Delete(context.Background(), "bob", jar.ID); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestAddMemberRejectsDuplicates(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob"})

	_, err := env.jars.AddMember(context.Background(), "alice", jar.ID, &AddMemberInput{UserID: "bob"})
	if !errors.Is(err, domain.ErrAlreadyMember) {
		t.Fatalf("Expected ErrAlreadyMember, got %v", err)
	}
}

func TestAddMemberRequiresInviteFlag(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob", CanInvite: false})

	_, err := env.jars.AddMember(context.Background(), "bob", jar.ID, &AddMemberInput{UserID: "carol"})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob"})
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "carol"})

	// A plain member cannot remove someone else
	if err := env.jars.RemoveMember(context.Background(), "bob", jar.ID, "carol"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied, got %v", err)
	}

	// But may leave on their own
	if err := env.jars.RemoveMember(context.Background(), "bob", jar.ID, "bob"); err != nil {
		t.Fatalf("Failed to leave jar: %v", err)
	}

	// The owner can never be removed
	if err := env.jars.RemoveMember(context.Background(), "alice", jar.ID, "alice"); !errors.Is(err, ErrOwnerImmutable) {
		t.Fatalf("Expected ErrOwnerImmutable, got %v", err)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob"})

	role := "admin"
	updated, err := env.jars.UpdateMember(context.Background(), "alice", jar.ID, "bob", &UpdateMemberInput{Role: &role})
	if err != nil {
		t.Fatalf("Failed to promote member: %v", err)
	}
	if updated.Role != string(domain.RoleAdmin) {
		t.Fatalf("Expected role ADMIN, got %s", updated.Role)
	}

	// The OWNER role is never assignable
	ownerRole := "OWNER"
	if _, err := env.jars.UpdateMember(context.Background(), "alice", jar.ID, "bob", &UpdateMemberInput{Role: &ownerRole}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("Expected ErrInvalidRole, got %v", err)
	}

	// Non-owners cannot change roles, even admins
	if _, err := env.jars.UpdateMember(context.Background(), "bob", jar.ID, "bob", &UpdateMemberInput{Role: &role}); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied, got %v", err)
	}
}

func TestPublicJarVisibility(t *testing.T) {
	env := newTestEnv(t)
	private := env.createJar(t, "alice", false)

	public, err := env.jars.Create(context.Background(), "alice", &CreateJarInput{
		Name:     "Public Jar",
		Currency: "USD",
		Public:   true,
	})
	if err != nil {
		t.Fatalf("Failed to create public jar: %v", err)
	}

	if _, err := env.jars.Get(context.Background(), "stranger", public.ID); err != nil {
		t.Fatalf("Expected public jar to be visible, got %v", err)
	}
	if _, err := env.jars.Get(context.Background(), "stranger", private.ID); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied on private jar, got %v", err)
	}
}

func TestUpdateSettingsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)
	env.addMember(t, "alice", jar.ID, &AddMemberInput{UserID: "bob"})

	min := dec("1.00")
	if _, err := env.jars.UpdateSettings(context.Background(), "bob", jar.ID, &UpdateSettingsInput{MinimumDeposit: &min}); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied, got %v", err)
	}

	updated, err := env.jars.UpdateSettings(context.Background(), "alice", jar.ID, &UpdateSettingsInput{
		MinimumDeposit: &min,
		SwearWords: []SwearWordInput{
			{Word: "Shoot", Penalty: dec("0.75")},
		},
	})
	if err != nil {
		t.Fatalf("Failed to update settings: %v", err)
	}
	if !updated.Settings.MinimumDeposit.Equal(dec("1.00")) {
		t.Fatalf("Expected minimum deposit 1.00, got %s", updated.Settings.MinimumDeposit)
	}

	// The replaced word table is live immediately, lowercased
	words, err := env.store.Jars().ListSwearWords(context.Background(), jar.ID)
	if err != nil {
		t.Fatalf("Failed to list words: %v", err)
	}
	if len(words) != 1 || words[0].Word != "shoot" {
		t.Fatalf("Expected single lowercased word 'shoot', got %+v", words)
	}
}

func TestUpdateSettingsRejectsInvalidLimits(t *testing.T) {
	env := newTestEnv(t)
	jar := env.createJar(t, "alice", false)

	min := dec("50.00")
	max := dec("10.00")
	_, err := env.jars.UpdateSettings(context.Background(), "alice", jar.ID, &UpdateSettingsInput{
		MinimumDeposit: &min,
		MaximumDeposit: &max,
	})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput for min > max, got %v", err)
	}
}

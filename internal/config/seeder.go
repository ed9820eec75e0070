package config

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"swearjar-backend/internal/core/services"
)

// SeedDemoData creates a demo jar with members and a few transactions.
// Dev mode only; skipped when the demo owner already has jars.
func SeedDemoData(
	ctx context.Context,
	jars *services.JarService,
	transactions *services.TransactionService,
) error {
	const owner = "demo-owner"
	const member = "demo-member"

	existing, _, err := jars.ListForUser(ctx, owner, 0, 1)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	penalty := decimal.NewFromFloat(2.50)
	jar, err := jars.Create(ctx, owner, &services.CreateJarInput{
		Name:        "Office Swear Jar",
		Description: "Every slip costs you",
		Currency:    "USD",
		SwearWords: []services.SwearWordInput{
			{Word: "dang", Penalty: penalty},
		},
	})
	if err != nil {
		return err
	}

	if _, err := jars.AddMember(ctx, owner, jar.ID, &services.AddMemberInput{
		UserID:              member,
		CanDeposit:          true,
		CanViewTransactions: true,
	}); err != nil {
		return err
	}

	deposit := decimal.NewFromInt(25)
	if _, _, err := transactions.Deposit(ctx, owner, &services.DepositInput{
		JarID:       jar.ID,
		Amount:      deposit,
		Description: "Opening the jar",
	}); err != nil {
		return err
	}

	if _, _, err := transactions.Penalty(ctx, member, &services.PenaltyInput{
		JarID: jar.ID,
		Word:  "dang",
	}); err != nil {
		return err
	}

	log.Printf("🌱 Seeded demo jar %d", jar.ID)
	return nil
}

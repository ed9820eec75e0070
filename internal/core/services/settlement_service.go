package services

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"swearjar-backend/internal/adapters/persistence/models"
)

// SettlementService is the outbound half of the external bank-transfer
// boundary. It emits "initiate transfer" intents for bank-backed
// deposits and withdrawals; the provider reports the outcome back
// through the settlement callback endpoint, which re-enters the
// transaction engine. Nothing here touches jar balances.
type SettlementService struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// NewSettlementService creates a new settlement service
func NewSettlementService() *SettlementService {
	url := os.Getenv("SETTLEMENT_WEBHOOK_URL")
	return &SettlementService{
		webhookURL: url,
		enabled:    url != "",
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// IsEnabled checks if an external settlement provider is configured
func (s *SettlementService) IsEnabled() bool {
	return s.enabled
}

// transferIntent is the payload posted to the settlement provider
type transferIntent struct {
	Reference     string `json:"reference"`
	Type          string `json:"type"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	BankAccountID uint   `json:"bank_account_id"`
	Institution   string `json:"institution"`
	Mask          string `json:"mask"`
}

// InitiateTransfer asks the external provider to move money for a
// bank-backed transaction. Fire-and-forget: delivery failures are
// logged, never surfaced to the caller — the transaction stays pending
// until the provider's callback resolves it.
func (s *SettlementService) InitiateTransfer(tx *models.Transaction, account *models.BankAccount) {
	if !s.enabled {
		log.Printf("💤 Settlement disabled, transfer intent for %s not sent", tx.Reference)
		return
	}

	intent := transferIntent{
		Reference:     tx.Reference,
		Type:          tx.Type,
		Amount:        tx.Amount.StringFixed(2),
		Currency:      tx.Currency,
		BankAccountID: account.ID,
		Institution:   account.InstitutionName,
		Mask:          account.Mask,
	}

	go func() {
		body, err := json.Marshal(intent)
		if err != nil {
			log.Printf("❌ Settlement intent marshal error: %v", err)
			return
		}

		resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			log.Printf("❌ Settlement intent delivery failed for %s: %v", tx.Reference, err)
			return
		}
		defer resp.Body.Close()

		log.Printf("📤 Settlement intent sent for %s [%d]", tx.Reference, resp.StatusCode)
	}()
}

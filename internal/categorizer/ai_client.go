package categorizer

import (
	"context"

	"fjacquet/finance-analyzer/internal/models"
)

// PromptTransaction is the compact form of a transaction sent to the model.
// TransactionID is the index of the transaction in the submitted batch.
type PromptTransaction struct {
	TransactionID int    `json:"transactionId"`
	Date          string `json:"date"`
	Description   string `json:"description"`
	Merchant      string `json:"merchant"`
	Amount        string `json:"amount"`
	Type          string `json:"type"`
}

// AIClient suggests categories for a batch of transactions. A response that is
// not the expected JSON is an error for the whole call.
type AIClient interface {
	SuggestCategories(ctx context.Context, txs []PromptTransaction, categories []string) ([]models.CategorySuggestion, error)
}

func toPromptTransaction(index int, tx models.ParsedTransaction) PromptTransaction {
	return PromptTransaction{
		TransactionID: index,
		Date:          tx.Date.String(),
		Description:   tx.Description,
		Merchant:      tx.Merchant,
		Amount:        tx.Amount.StringFixed(2),
		Type:          string(tx.Type),
	}
}

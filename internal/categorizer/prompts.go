package categorizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"fjacquet/finance-analyzer/internal/models"
)

// maxAnalysisTransactions bounds the prompt size of a spending analysis.
const maxAnalysisTransactions = 500

func buildCategorizationPrompt(txs []PromptTransaction, categories []string) (string, error) {
	payload, err := json.MarshalIndent(txs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode transactions: %w", err)
	}
	return fmt.Sprintf(`You are a financial transaction categorization specialist.

Available categories: %s

Transactions to categorize:
%s

For each transaction, analyze the description and merchant to determine the most appropriate category.
Return a JSON array with the following structure for each transaction:
{
  "transactionId": <id>,
  "suggestedCategory": "<category name>",
  "confidence": <0.0 to 1.0>,
  "reasoning": "<brief explanation>",
  "alternatives": [{ "category": "<name>", "confidence": <0.0 to 1.0> }]
}

Respond with only the JSON array, no additional text.`, strings.Join(categories, ", "), payload), nil
}

type analysisTransaction struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Merchant    string `json:"merchant"`
	Amount      string `json:"amount"`
	Type        string `json:"type"`
	Category    string `json:"category,omitempty"`
}

func buildAnalysisPrompt(startDate, endDate string, txs []models.Transaction) (string, error) {
	if len(txs) > maxAnalysisTransactions {
		txs = txs[:maxAnalysisTransactions]
	}
	compact := make([]analysisTransaction, 0, len(txs))
	for _, tx := range txs {
		compact = append(compact, analysisTransaction{
			ID:          tx.ID,
			Date:        tx.Date.String(),
			Description: tx.Description,
			Merchant:    tx.Merchant,
			Amount:      tx.Amount.StringFixed(2),
			Type:        string(tx.TransactionType),
			Category:    tx.CategoryName,
		})
	}
	payload, err := json.MarshalIndent(compact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode transactions: %w", err)
	}
	return fmt.Sprintf(`Analyze the following financial transactions between %s and %s.

Transactions:
%s

Provide insights on:
1. Recurring subscriptions (monthly, yearly)
2. Spending anomalies (transactions that are unusually high)
3. Spending trends by category
4. Recommendations for budget optimization

Return structured JSON with:
{
  "subscriptions": [{ "merchant": "", "amount": 0, "frequency": "" }],
  "anomalies": [{ "transactionId": 0, "reason": "" }],
  "trends": [{ "category": "", "trend": "increasing|decreasing|stable", "percentage": 0 }],
  "recommendations": ["recommendation 1", "recommendation 2"]
}

Respond with only the JSON object, no additional text.`, startDate, endDate, payload), nil
}

func buildChatPrompt(message, summary string) string {
	var b strings.Builder
	b.WriteString("You are a personal finance assistant. Help users understand their spending patterns and provide actionable advice.\n")
	if summary != "" {
		b.WriteString("\nContext:\n")
		b.WriteString(summary)
		b.WriteString("\n")
	}
	b.WriteString("\nUser: ")
	b.WriteString(message)
	return b.String()
}

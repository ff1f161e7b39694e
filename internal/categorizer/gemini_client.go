package categorizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/finance-analyzer/internal/logging"
	"fjacquet/finance-analyzer/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("no response from Gemini API")

// GeminiClient talks to Google Gemini. It categorizes transactions, analyzes
// spending and answers chat messages.
type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	timeout   time.Duration
	logger    logging.Logger
}

// NewGeminiClient creates a client for modelName authenticated with apiKey.
// Each request is bounded by timeout.
func NewGeminiClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		model:     client.GenerativeModel(modelName),
		modelName: modelName,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *GeminiClient) generate(ctx context.Context, operation, prompt string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	c.logger.Debug("Gemini request completed",
		logging.F(logging.FieldOperation, operation),
		logging.F(logging.FieldModel, c.modelName),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// SuggestCategories asks the model for one suggestion per transaction.
func (c *GeminiClient) SuggestCategories(ctx context.Context, txs []PromptTransaction, categories []string) ([]models.CategorySuggestion, error) {
	prompt, err := buildCategorizationPrompt(txs, categories)
	if err != nil {
		return nil, err
	}
	text, err := c.generate(ctx, "categorize", prompt)
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text)
}

// AnalyzeSpending asks the model for subscriptions, anomalies, trends and
// recommendations over the given transactions.
func (c *GeminiClient) AnalyzeSpending(ctx context.Context, startDate, endDate string, txs []models.Transaction) (*models.SpendingAnalysis, error) {
	prompt, err := buildAnalysisPrompt(startDate, endDate, txs)
	if err != nil {
		return nil, err
	}
	text, err := c.generate(ctx, "analyze_spending", prompt)
	if err != nil {
		return nil, err
	}
	return parseAnalysis(text)
}

// Chat answers message given the earlier messages of the session and a
// summary of the user's data.
func (c *GeminiClient) Chat(ctx context.Context, history []models.ChatMessage, message, summary string) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	session := c.model.StartChat()
	session.History = chatHistory(history)

	resp, err := session.SendMessage(ctx, genai.Text(buildChatPrompt(message, summary)))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	return responseText(resp)
}

func chatHistory(history []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		switch msg.Role {
		case models.RoleAssistant:
			role = "model"
		case models.RoleSystem:
			continue
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}

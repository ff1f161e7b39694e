package models

import "time"

// InsightType classifies an insight.
type InsightType string

const (
	InsightAnomaly        InsightType = "anomaly"
	InsightTrend          InsightType = "trend"
	InsightRecommendation InsightType = "recommendation"
	InsightAlert          InsightType = "alert"
)

// Insight is a persisted observation about spending.
type Insight struct {
	ID          int64       `json:"id"`
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Priority    int         `json:"priority"`
	Metadata    string      `json:"metadata,omitempty"`
	IsDismissed bool        `json:"is_dismissed"`
	IsRead      bool        `json:"is_read"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   *time.Time  `json:"expires_at,omitempty"`
}

// SpendingAnalysis is the structured result of an AI spending analysis.
type SpendingAnalysis struct {
	Subscriptions   []Subscription    `json:"subscriptions"`
	Anomalies       []SpendingAnomaly `json:"anomalies"`
	Trends          []SpendingTrend   `json:"trends"`
	Recommendations []string          `json:"recommendations"`
}

type Subscription struct {
	Merchant  string  `json:"merchant"`
	Amount    float64 `json:"amount"`
	Frequency string  `json:"frequency"`
}

type SpendingAnomaly struct {
	TransactionID int64  `json:"transactionId"`
	Reason        string `json:"reason"`
}

type SpendingTrend struct {
	Category   string  `json:"category"`
	Trend      string  `json:"trend"`
	Percentage float64 `json:"percentage"`
}

// GenerateResult is returned by insight generation.
type GenerateResult struct {
	Generated int       `json:"generated"`
	Insights  []Insight `json:"insights"`
}

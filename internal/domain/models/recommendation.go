package models

import "time"

// Recommendation priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Recommendation categories, one per composer rule.
const (
	RecCashflowStabilization = "cashflow_stabilization"
	RecExpenseManagement     = "expense_management"
	RecRiskMitigation        = "risk_mitigation"
	RecSavingsImprovement    = "savings_improvement"
	RecCategoryOptimization  = "category_optimization"
)

// Recommendation is one generated, never mutated advice record. Actions is a
// deduplicated set; its order is not part of the contract.
type Recommendation struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Category       string    `json:"category"`
	Priority       string    `json:"priority"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Actions        []string  `json:"actions"`
	ExpectedImpact string    `json:"expected_impact"`
	Confidence     float64   `json:"confidence_score"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// RecommendationSummary counts a user's recommendation history by priority
// and category.
type RecommendationSummary struct {
	UserID        string         `json:"user_id"`
	Total         int            `json:"total_recommendations"`
	ByPriority    map[string]int `json:"by_priority"`
	ByCategory    map[string]int `json:"by_category"`
	AvgConfidence float64        `json:"avg_confidence"`
}

// CategoryShare is one slice of a user's expense breakdown.
type CategoryShare struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// FinancialSummary carries precomputed summary figures. It can be supplied
// by an external reporting layer; missing parts are recomputed from the
// ledger. HasSavingsRate distinguishes "rate is 0" from "rate not supplied".
type FinancialSummary struct {
	SavingsRate       float64         `json:"savings_rate"`
	HasSavingsRate    bool            `json:"-"`
	CategoryBreakdown []CategoryShare `json:"category_breakdown,omitempty"`
}

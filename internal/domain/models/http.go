package models

// Requests for the insights HTTP endpoints. Defined in domain for consistency and reuse.

type IngestRequest struct {
	UserID       string              `param:"user_id" json:"user_id" validate:"required"`
	Transactions []TransactionRecord `json:"transactions" validate:"required,min=1,max=10000"`
}

type VolatilityRequest struct {
	UserID string `param:"user_id" json:"user_id" validate:"required"`
}

type SpikesRequest struct {
	UserID     string  `param:"user_id" json:"user_id" validate:"required"`
	Multiplier float64 `query:"multiplier" json:"multiplier" default:"2.0" validate:"gt=0,lte=10"`
}

type RiskRequest struct {
	UserID string `param:"user_id" json:"user_id" validate:"required"`
}

// RecommendRequest optionally carries an externally supplied financial
// summary; absent fields are computed from the ledger.
type RecommendRequest struct {
	UserID  string            `param:"user_id" json:"user_id" validate:"required"`
	Summary *FinancialSummary `json:"financial_summary,omitempty"`
}

type HistoryRequest struct {
	UserID string `param:"user_id" json:"user_id" validate:"required"`
}

type SummaryRequest struct {
	UserID string `param:"user_id" json:"user_id" validate:"required"`
}

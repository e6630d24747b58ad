package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a transaction as money in or money out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// IsValid reports whether k is a known transaction kind.
func (k Kind) IsValid() bool {
	return k == KindIncome || k == KindExpense
}

// Transaction is a single validated ledger entry. Immutable once ingested.
type Transaction struct {
	Date     time.Time
	Amount   decimal.Decimal
	Kind     Kind
	Category string
}

// TransactionRecord is a raw ingestion record before validation. Amount is a
// string so that non-numeric inputs can be rejected per record rather than
// failing the whole batch at decode time.
type TransactionRecord struct {
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Kind     string `json:"kind"`
	Category string `json:"category"`
}

// RejectedRecord carries a record that failed validation and the reason.
type RejectedRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// IngestResult summarizes one ingestion batch.
type IngestResult struct {
	BatchID  string           `json:"batch_id"`
	UserID   string           `json:"user_id"`
	Accepted int              `json:"accepted"`
	Rejected []RejectedRecord `json:"rejected,omitempty"`
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finsight/internal/domain/models"
	domrepo "finsight/internal/domain/repository"
	applogger "finsight/pkg/logger"
)

// ClickHouseArchive is the append-only analytical mirror of the ledger.
// Write path only for the pipeline; LoadUser exists so a restarted instance
// can rehydrate its in-memory ledger.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewClickHouseArchive(db *sql.DB, table string) *ClickHouseArchive {
	return &ClickHouseArchive{db: db, table: table}
}

// SetLogger injects a structured logger.
func (a *ClickHouseArchive) SetLogger(l *applogger.Logger) { a.l = l }

// StoreBatch inserts transactions in chunks to bound statement size.
func (a *ClickHouseArchive) StoreBatch(ctx context.Context, userID string, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	const chunkSize = 2000
	ingestedAt := time.Now()

	for start := 0; start < len(txs); start += chunkSize {
		end := start + chunkSize
		if end > len(txs) {
			end = len(txs)
		}
		chunk := txs[start:end]

		values := make([]string, 0, len(chunk))
		args := make([]interface{}, 0, len(chunk)*6)
		for _, tx := range chunk {
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args,
				userID,
				tx.Date,
				tx.Amount.InexactFloat64(),
				string(tx.Kind),
				tx.Category,
				ingestedAt,
			)
		}

		q := fmt.Sprintf(
			"INSERT INTO %s (user_id, tx_date, amount, kind, category, ingested_at) VALUES %s",
			a.table, strings.Join(values, ","),
		)
		if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
			if a.l != nil {
				a.l.Error("clickhouse archive insert error",
					applogger.String("user_id", userID),
					applogger.Int("rows", len(chunk)),
					applogger.Error(err),
				)
			}
			return fmt.Errorf("archive batch: %w", err)
		}
	}
	if a.l != nil {
		a.l.Debug("clickhouse archive insert ok",
			applogger.String("user_id", userID),
			applogger.Int("rows", len(txs)),
		)
	}
	return nil
}

// LoadUser reads back the user's archived transactions in date order.
func (a *ClickHouseArchive) LoadUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	q := fmt.Sprintf(
		"SELECT tx_date, amount, kind, category FROM %s WHERE user_id = ? ORDER BY tx_date ASC",
		a.table,
	)
	rows, err := a.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("archive load: %w", err)
	}
	defer rows.Close()

	out := make([]models.Transaction, 0, 256)
	for rows.Next() {
		var (
			date     time.Time
			amount   float64
			kind     string
			category string
		)
		if err := rows.Scan(&date, &amount, &kind, &category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, models.Transaction{
			Date:     date,
			Amount:   decimal.NewFromFloat(amount),
			Kind:     models.Kind(kind),
			Category: category,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

// UserIDs lists every user with at least one archived transaction.
func (a *ClickHouseArchive) UserIDs(ctx context.Context) ([]string, error) {
	q := fmt.Sprintf("SELECT DISTINCT user_id FROM %s", a.table)
	rows, err := a.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("archive users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return ids, nil
}

func (a *ClickHouseArchive) Health(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *ClickHouseArchive) Close() error {
	return nil // connection pool owned by pkg/clickhouse client
}

var _ domrepo.Archive = (*ClickHouseArchive)(nil)

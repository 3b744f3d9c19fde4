package transactions

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("transaction not found")

const entryColumns = `
	id, user_id, member_id, category_id, type, amount, description,
	transaction_date, receipt_number, notes, created_at, updated_at
`

func scanEntry(row pgx.Row) (Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.UserID, &e.MemberID, &e.CategoryID, &e.Type, &e.Amount,
		&e.Description, &e.TransactionDate, &e.ReceiptNumber, &e.Notes,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// Insert writes one ledger entry through the pool.
func Insert(ctx context.Context, pool *pgxpool.Pool, e *Entry) error {
	return pool.QueryRow(ctx, `
		INSERT INTO transactions (
			user_id, member_id, category_id, type, amount, description,
			transaction_date, receipt_number, notes
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at
	`, e.UserID, e.MemberID, e.CategoryID, e.Type, e.Amount, e.Description,
		e.TransactionDate, e.ReceiptNumber, e.Notes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// InsertTx writes one ledger entry inside an open transaction. The bank
// import uses it so a whole batch commits or rolls back as a unit.
func InsertTx(ctx context.Context, tx pgx.Tx, e *Entry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO transactions (
			user_id, member_id, category_id, type, amount, description,
			transaction_date, receipt_number, notes
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at, updated_at
	`, e.UserID, e.MemberID, e.CategoryID, e.Type, e.Amount, e.Description,
		e.TransactionDate, e.ReceiptNumber, e.Notes,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// ListByOwner returns the organization's entries, newest first.
func ListByOwner(ctx context.Context, pool *pgxpool.Pool, ownerID int64, txnType string) ([]Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM transactions
		WHERE user_id = $1
	`
	args := []interface{}{ownerID}
	if txnType != "" {
		query += ` AND type = $2`
		args = append(args, txnType)
	}
	query += ` ORDER BY transaction_date DESC, id DESC`

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func Update(ctx context.Context, pool *pgxpool.Pool, e *Entry) error {
	tag, err := pool.Exec(ctx, `
		UPDATE transactions SET
			member_id = $1, category_id = $2, type = $3, amount = $4,
			description = $5, transaction_date = $6, receipt_number = $7,
			notes = $8, updated_at = now()
		WHERE id = $9 AND user_id = $10
	`, e.MemberID, e.CategoryID, e.Type, e.Amount, e.Description,
		e.TransactionDate, e.ReceiptNumber, e.Notes, e.ID, e.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func Delete(ctx context.Context, pool *pgxpool.Pool, ownerID, entryID int64) error {
	tag, err := pool.Exec(ctx, `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2
	`, entryID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary holds the organization's income/expense totals.
type Summary struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

func Summarize(ctx context.Context, pool *pgxpool.Pool, ownerID int64) (Summary, error) {
	var s Summary
	err := pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1
	`, ownerID).Scan(&s.Income, &s.Expense)
	if err != nil {
		return Summary{}, err
	}
	s.Balance = s.Income.Sub(s.Expense)
	return s, nil
}

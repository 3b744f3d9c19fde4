package reminders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("reminder not found")

const reminderColumns = "id, member_id, amount, due_date, sent_at, status, notes, created_at"

func scanReminder(row pgx.Row) (Reminder, error) {
	var rem Reminder
	err := row.Scan(&rem.ID, &rem.MemberID, &rem.Amount, &rem.DueDate,
		&rem.SentAt, &rem.Status, &rem.Notes, &rem.CreatedAt)
	return rem, err
}

func ListByMember(ctx context.Context, pool *pgxpool.Pool, memberID int64, status string) ([]Reminder, error) {
	query := "SELECT " + reminderColumns + " FROM payment_reminders WHERE member_id = $1"
	args := []interface{}{memberID}
	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}
	query += " ORDER BY due_date DESC"

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func GetByID(ctx context.Context, pool *pgxpool.Pool, memberID, reminderID int64) (Reminder, error) {
	rem, err := scanReminder(pool.QueryRow(ctx,
		"SELECT "+reminderColumns+" FROM payment_reminders WHERE id = $1 AND member_id = $2",
		reminderID, memberID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Reminder{}, ErrNotFound
	}
	return rem, err
}

func Create(ctx context.Context, pool *pgxpool.Pool, rem *Reminder) error {
	return pool.QueryRow(ctx, `
		INSERT INTO payment_reminders (member_id, amount, due_date, status, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		rem.MemberID, rem.Amount, rem.DueDate, rem.Status, rem.Notes,
	).Scan(&rem.ID, &rem.CreatedAt)
}

func Update(ctx context.Context, pool *pgxpool.Pool, rem *Reminder) error {
	tag, err := pool.Exec(ctx, `
		UPDATE payment_reminders
		SET amount = $1, due_date = $2, sent_at = $3, status = $4, notes = $5
		WHERE id = $6 AND member_id = $7`,
		rem.Amount, rem.DueDate, rem.SentAt, rem.Status, rem.Notes, rem.ID, rem.MemberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func Delete(ctx context.Context, pool *pgxpool.Pool, memberID, reminderID int64) error {
	tag, err := pool.Exec(ctx,
		"DELETE FROM payment_reminders WHERE id = $1 AND member_id = $2", reminderID, memberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSent stamps the reminder as delivered.
func MarkSent(ctx context.Context, pool *pgxpool.Pool, memberID, reminderID int64, sentAt time.Time) error {
	tag, err := pool.Exec(ctx, `
		UPDATE payment_reminders SET sent_at = $1, status = 'sent'
		WHERE id = $2 AND member_id = $3`,
		sentAt, reminderID, memberID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkOverdue flips every open past-due reminder of the member to
// overdue and reports how many rows changed.
func MarkOverdue(ctx context.Context, pool *pgxpool.Pool, memberID int64, today time.Time) (int64, error) {
	tag, err := pool.Exec(ctx, `
		UPDATE payment_reminders SET status = 'overdue'
		WHERE member_id = $1 AND due_date < $2 AND status IN ('pending', 'sent')`,
		memberID, today)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

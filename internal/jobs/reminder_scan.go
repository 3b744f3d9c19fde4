package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"VereinsKasse/internal/config"
	"VereinsKasse/internal/logger"
)

// RunReminderScheduler wires the periodic fee scan into cron. The scan
// itself must tolerate partial failure: one broken member row never
// stops the sweep.
func RunReminderScheduler(cfg *ReminderScanConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultReminderSchedule
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = config.ReminderBatchSize
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := ScanUnpaidFees(db, cfg.BatchSize); err != nil {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf("Reminder scan failed: %v", err))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("unable to schedule reminder scan: %v", err)
	}

	c.Start()
	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit("Reminder scheduler started")
	}
	return nil
}

type unpaidMember struct {
	ID        int64
	UserID    int64
	FirstName string
	LastName  string
	Email     *string
	Beitrag   decimal.Decimal
}

// ScanUnpaidFees finds active members with a monthly fee who have
// neither an income entry this month nor an open reminder for the
// period, and creates a pending reminder due at the end of the month.
func ScanUnpaidFees(db *pgxpool.Pool, batchSize int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now().In(config.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	rows, err := db.Query(ctx, `
		SELECT m.id, m.user_id, m.first_name, m.last_name, m.email, m.beitrag_monthly
		FROM members m
		WHERE m.status = 'active'
		  AND m.beitrag_monthly IS NOT NULL
		  AND m.beitrag_monthly > 0
		  AND NOT EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.member_id = m.id
			  AND t.type = 'income'
			  AND t.transaction_date >= $1
			  AND t.transaction_date < $2
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM payment_reminders pr
			WHERE pr.member_id = m.id
			  AND pr.status IN ('pending', 'sent', 'overdue')
			  AND pr.due_date >= $1
		  )
		ORDER BY m.user_id, m.last_name
		LIMIT $3`,
		monthStart, monthStart.AddDate(0, 1, 0), batchSize)
	if err != nil {
		return fmt.Errorf("unpaid fee query failed: %v", err)
	}
	defer rows.Close()

	var unpaid []unpaidMember
	for rows.Next() {
		var m unpaidMember
		if err := rows.Scan(&m.ID, &m.UserID, &m.FirstName, &m.LastName, &m.Email, &m.Beitrag); err != nil {
			return fmt.Errorf("unpaid fee scan failed: %v", err)
		}
		unpaid = append(unpaid, m)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	created := 0
	for _, m := range unpaid {
		_, err := db.Exec(ctx, `
			INSERT INTO payment_reminders (member_id, amount, due_date, status)
			VALUES ($1, $2, $3, 'pending')`,
			m.ID, m.Beitrag, monthEnd)
		if err != nil {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit(fmt.Sprintf(
					"Reminder scan: could not create reminder for member %d: %v", m.ID, err))
			}
			continue
		}
		created++
		if m.Email != nil && *m.Email != "" && logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf(
				"Reminder scan: fee notice pending for %s %s <%s>, due %s",
				m.FirstName, m.LastName, *m.Email, monthEnd.Format("2006-01-02")))
		}
	}

	if logger.GlobalLogger != nil {
		logger.GlobalLogger.LogAudit(fmt.Sprintf(
			"Reminder scan finished: %d members checked, %d reminders created", len(unpaid), created))
	}
	return nil
}

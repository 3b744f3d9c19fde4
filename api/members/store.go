package members

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a member does not exist for the owner.
// A member belonging to a different organization is indistinguishable
// from a missing one, by design of the owner filter.
var ErrNotFound = errors.New("member not found")

const memberColumns = `
	id, user_id, first_name, last_name, email, phone, member_since,
	member_number, status, beitrag_monthly, iban, notes, created_at, updated_at
`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(
		&m.ID, &m.UserID, &m.FirstName, &m.LastName, &m.Email, &m.Phone,
		&m.MemberSince, &m.MemberNumber, &m.Status, &m.BeitragMonthly,
		&m.IBAN, &m.Notes, &m.CreatedAt, &m.UpdatedAt,
	)
	return m, err
}

func collectMembers(rows pgx.Rows) ([]Member, error) {
	defer rows.Close()
	result := make([]Member, 0)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ListByOwner returns every member of one organization, ordered by
// last name. Iteration order matters: the reconciliation name match
// takes the first hit.
func ListByOwner(ctx context.Context, pool *pgxpool.Pool, ownerID int64) ([]Member, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE user_id = $1
		ORDER BY last_name, first_name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectMembers(rows)
}

// ListActiveByOwner returns the organization's active members ordered
// by last name.
func ListActiveByOwner(ctx context.Context, pool *pgxpool.Pool, ownerID int64) ([]Member, error) {
	rows, err := pool.Query(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE user_id = $1 AND status = 'active'
		ORDER BY last_name, first_name
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return collectMembers(rows)
}

func GetByID(ctx context.Context, pool *pgxpool.Pool, ownerID, memberID int64) (Member, error) {
	row := pool.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE id = $1 AND user_id = $2
	`, memberID, ownerID)
	m, err := scanMember(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, ErrNotFound
	}
	return m, err
}

func Create(ctx context.Context, pool *pgxpool.Pool, m *Member) error {
	return pool.QueryRow(ctx, `
		INSERT INTO members (
			user_id, first_name, last_name, email, phone, member_since,
			member_number, status, beitrag_monthly, iban, notes
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at
	`, m.UserID, m.FirstName, m.LastName, m.Email, m.Phone, m.MemberSince,
		m.MemberNumber, m.Status, m.BeitragMonthly, m.IBAN, m.Notes,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

func Update(ctx context.Context, pool *pgxpool.Pool, m *Member) error {
	tag, err := pool.Exec(ctx, `
		UPDATE members SET
			first_name = $1, last_name = $2, email = $3, phone = $4,
			member_since = $5, member_number = $6, status = $7,
			beitrag_monthly = $8, iban = $9, notes = $10, updated_at = now()
		WHERE id = $11 AND user_id = $12
	`, m.FirstName, m.LastName, m.Email, m.Phone, m.MemberSince,
		m.MemberNumber, m.Status, m.BeitragMonthly, m.IBAN, m.Notes,
		m.ID, m.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func Delete(ctx context.Context, pool *pgxpool.Pool, ownerID, memberID int64) error {
	tag, err := pool.Exec(ctx, `
		DELETE FROM members WHERE id = $1 AND user_id = $2
	`, memberID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package reminders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"VereinsKasse/api"
	"VereinsKasse/api/constants"
	"VereinsKasse/api/members"
	"VereinsKasse/internal/config"
	"VereinsKasse/internal/logger"
)

type reminderRequest struct {
	Amount  string  `json:"amount"`
	DueDate string  `json:"due_date"`
	Status  string  `json:"status"`
	Notes   *string `json:"notes"`
}

func (req *reminderRequest) apply(rem *Reminder) error {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return errors.New(constants.ErrInvalidAmount)
	}
	due, err := time.Parse(constants.DateFormat, req.DueDate)
	if err != nil {
		return errors.New(constants.ErrInvalidDateISO)
	}
	rem.Amount = amount
	rem.DueDate = due
	rem.Notes = req.Notes
	rem.Status = req.Status
	if rem.Status == "" {
		rem.Status = constants.ReminderStatusPending
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	return id, err == nil && id > 0
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// memberOf loads the path member and verifies it belongs to the
// request owner. Reminder routes are member-scoped, so every handler
// does this check first.
func memberOf(ctx context.Context, pool *pgxpool.Pool, r *http.Request) (members.Member, bool) {
	ownerID, ok := api.OwnerIDFromCtx(ctx)
	if !ok {
		return members.Member{}, false
	}
	memberID, ok := pathID(r, "member_id")
	if !ok {
		return members.Member{}, false
	}
	m, err := members.GetByID(ctx, pool, ownerID, memberID)
	if err != nil {
		return members.Member{}, false
	}
	return m, true
}

// ListRemindersHandler handles GET /members/{member_id}/reminders
func ListRemindersHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := memberOf(r.Context(), pool, r)
		if !ok {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		list, err := ListByMember(r.Context(), pool, m.ID, r.URL.Query().Get("status"))
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": list})
	}
}

// CreateReminderHandler handles POST /members/{member_id}/reminders
func CreateReminderHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := memberOf(r.Context(), pool, r)
		if !ok {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		var req reminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		rem := Reminder{MemberID: m.ID}
		if err := req.apply(&rem); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := Create(r.Context(), pool, &rem); err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": rem})
	}
}

// UpdateReminderHandler handles PUT /members/{member_id}/reminders/{id}
func UpdateReminderHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := memberOf(r.Context(), pool, r)
		if !ok {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		id, ok := pathID(r, "id")
		if !ok {
			http.Error(w, constants.ErrReminderNotFound, http.StatusNotFound)
			return
		}
		existing, err := GetByID(r.Context(), pool, m.ID, id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, constants.ErrReminderNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		var req reminderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		if err := req.apply(&existing); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := Update(r.Context(), pool, &existing); err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": existing})
	}
}

// DeleteReminderHandler handles DELETE /members/{member_id}/reminders/{id}
func DeleteReminderHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := memberOf(r.Context(), pool, r)
		if !ok {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		id, ok := pathID(r, "id")
		if !ok {
			http.Error(w, constants.ErrReminderNotFound, http.StatusNotFound)
			return
		}
		if err := Delete(r.Context(), pool, m.ID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, constants.ErrReminderNotFound, http.StatusNotFound)
				return
			}
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SendReminderHandler handles POST /members/{member_id}/reminders/{id}/send.
// The notice itself goes through the audit log; mail delivery is left
// to the operator's outbound relay.
func SendReminderHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, ok := memberOf(r.Context(), pool, r)
		if !ok {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		if m.Email == nil || *m.Email == "" {
			http.Error(w, constants.ErrMemberNoEmail, http.StatusBadRequest)
			return
		}
		id, ok := pathID(r, "id")
		if !ok {
			http.Error(w, constants.ErrReminderNotFound, http.StatusNotFound)
			return
		}
		rem, err := GetByID(r.Context(), pool, m.ID, id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, constants.ErrReminderNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		now := time.Now().UTC()
		if err := MarkSent(r.Context(), pool, m.ID, rem.ID, now); err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit("payment reminder sent to " + *m.Email +
				" for member " + strconv.FormatInt(m.ID, 10) +
				" amount " + rem.Amount.StringFixed(2) +
				" due " + rem.DueDate.Format("02.01.2006"))
		}
		rem.SentAt = &now
		rem.Status = constants.ReminderStatusSent
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": rem})
	}
}

type overviewRow struct {
	MemberID     int64   `json:"member_id"`
	Name         string  `json:"name"`
	MemberNumber *string `json:"member_number"`
	OpenCount    int     `json:"open_count"`
	OverdueCount int     `json:"overdue_count"`
	TotalDue     string  `json:"total_due"`
}

// PaymentOverviewHandler handles GET /members/payment-overview: every
// active member with open reminder counts and the summed amount due.
// Past-due open reminders are flipped to overdue as a side effect.
func PaymentOverviewHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := api.OwnerIDFromCtx(r.Context())
		if !ok {
			http.Error(w, constants.ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		roster, err := members.ListActiveByOwner(r.Context(), pool, ownerID)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}

		today := dayStart(time.Now(), config.Location())
		overview := make([]overviewRow, 0, len(roster))
		for i := range roster {
			m := &roster[i]
			if _, err := MarkOverdue(r.Context(), pool, m.ID, today); err != nil {
				http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
				return
			}
			open, err := openReminders(r.Context(), pool, m.ID)
			if err != nil {
				http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
				return
			}
			row := overviewRow{
				MemberID:     m.ID,
				Name:         m.FullName(),
				MemberNumber: m.MemberNumber,
			}
			total := decimal.Zero
			for _, rem := range open {
				total = total.Add(rem.Amount)
				row.OpenCount++
				if rem.Status == constants.ReminderStatusOverdue {
					row.OverdueCount++
				}
			}
			row.TotalDue = total.StringFixed(2)
			overview = append(overview, row)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": overview})
	}
}

// dayStart returns midnight of t's calendar day in loc.
func dayStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func openReminders(ctx context.Context, pool *pgxpool.Pool, memberID int64) ([]Reminder, error) {
	rows, err := pool.Query(ctx,
		"SELECT "+reminderColumns+" FROM payment_reminders WHERE member_id = $1 AND status IN ('pending', 'sent', 'overdue')",
		memberID)
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

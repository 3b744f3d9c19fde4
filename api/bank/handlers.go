package bank

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"VereinsKasse/api"
	"VereinsKasse/api/constants"
	"VereinsKasse/api/members"
	"VereinsKasse/api/transactions"
	"VereinsKasse/internal/config"
	"VereinsKasse/internal/logger"
)

// bankTxnOut is the per-record slice of the import response.
type bankTxnOut struct {
	BookingDate        string  `json:"booking_date"`
	Counterparty       *string `json:"counterparty"`
	IBAN               *string `json:"iban"`
	Purpose            *string `json:"purpose"`
	Amount             string  `json:"amount"`
	Currency           string  `json:"currency"`
	MatchedMemberID    *int64  `json:"matched_member_id"`
	MatchedMemberName  *string `json:"matched_member_name"`
	MatchType          *string `json:"match_type"`
	TransactionCreated bool    `json:"transaction_created"`
}

type importResult struct {
	BatchID         string       `json:"batch_id"`
	Imported        int          `json:"imported"`
	MemberMatches   int          `json:"member_matches"`
	KassenbuchAdded int          `json:"kassenbuch_added"`
	Skipped         int          `json:"skipped"`
	Transactions    []bankTxnOut `json:"transactions"`
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func optionalStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ImportBankStatement accepts a statement CSV upload and reconciles it
// against the owner's member roster. With add_to_kassenbuch=true every
// inflow is booked as a ledger entry, linked to the matched member when
// there is one. The whole ledger batch is a single transaction: either
// every entry lands or none do.
//
// Concurrent imports for the same organization are not serialized;
// re-uploading the same file books the entries twice.
func ImportBankStatement(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := api.OwnerIDFromCtx(r.Context())
		if !ok {
			http.Error(w, constants.ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		if r.ContentLength > config.MaxStatementUploadBytes {
			http.Error(w, constants.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		// Chunked uploads have no Content-Length; the reader enforces
		// the ceiling while FormFile parses the body.
		r.Body = http.MaxBytesReader(w, r.Body, config.MaxStatementUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			if isTooLarge(err) {
				http.Error(w, constants.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, constants.ErrNoFile, http.StatusBadRequest)
			return
		}
		defer file.Close()

		if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
			http.Error(w, constants.ErrCSVOnly, http.StatusBadRequest)
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			if isTooLarge(err) {
				http.Error(w, constants.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, constants.ErrUnreadableCSV, http.StatusUnprocessableEntity)
			return
		}

		parsed, err := ParseStatement(content)
		if err != nil {
			http.Error(w, constants.ErrUnreadableCSV, http.StatusUnprocessableEntity)
			return
		}
		if len(parsed.Records) == 0 {
			http.Error(w, constants.ErrNoBookingsInCSV, http.StatusUnprocessableEntity)
			return
		}

		roster, err := members.ListByOwner(r.Context(), pool, ownerID)
		if err != nil {
			http.Error(w, constants.ErrDB, http.StatusInternalServerError)
			return
		}

		addToKassenbuch := materializeFlag(r)
		outcome := ReconcileRecords(parsed.Records, roster, addToKassenbuch)

		if len(outcome.Entries) > 0 {
			if err := persistEntries(r.Context(), pool, ownerID, outcome.Entries); err != nil {
				if logger.GlobalLogger != nil {
					logger.GlobalLogger.LogAudit("bank import: ledger write failed: " + err.Error())
				}
				http.Error(w, constants.ErrDB, http.StatusInternalServerError)
				return
			}
		}

		resp := importResult{
			BatchID:         uuid.NewString(),
			Imported:        len(parsed.Records),
			MemberMatches:   outcome.MemberMatches,
			KassenbuchAdded: outcome.LedgerCreated,
			Skipped:         parsed.Skipped,
			Transactions:    make([]bankTxnOut, 0, len(outcome.Results)),
		}
		for _, res := range outcome.Results {
			out := bankTxnOut{
				BookingDate:        res.Record.BookingDate.Format(constants.DateFormat),
				Counterparty:       optionalStr(res.Record.Counterparty),
				IBAN:               optionalStr(res.Record.IBAN),
				Purpose:            optionalStr(res.Record.Purpose),
				Amount:             res.Record.Amount.StringFixed(2),
				Currency:           res.Record.Currency,
				MatchType:          optionalStr(res.MatchKind),
				TransactionCreated: res.EntryCreated,
			}
			if res.Member != nil {
				id := res.Member.ID
				name := res.Member.FullName()
				out.MatchedMemberID = &id
				out.MatchedMemberName = &name
			}
			resp.Transactions = append(resp.Transactions, out)
		}

		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(resp)
	}
}

// materializeFlag reads add_to_kassenbuch from form or query; absent
// means report-only.
func materializeFlag(r *http.Request) bool {
	v := r.FormValue("add_to_kassenbuch")
	if v == "" {
		v = r.URL.Query().Get("add_to_kassenbuch")
	}
	return strings.EqualFold(v, "true") || v == "1"
}

func persistEntries(ctx context.Context, pool *pgxpool.Pool, ownerID int64, pending []PendingEntry) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, p := range pending {
		entry := transactions.Entry{
			UserID:          ownerID,
			MemberID:        p.MemberID,
			Type:            constants.TxnTypeIncome,
			Amount:          p.Amount,
			Description:     p.Description,
			TransactionDate: p.Date,
		}
		if err := transactions.InsertTx(ctx, tx, &entry); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

type acceptRequest struct {
	BookingDate string      `json:"booking_date"`
	Amount      json.Number `json:"amount"`
	Description string      `json:"description"`
	MemberID    *int64      `json:"member_id"`
	CategoryID  *int64      `json:"category_id"`
	TxnType     string      `json:"txn_type"`
}

// AcceptTransaction books one manually confirmed statement record as a
// ledger entry, optionally linked to a member of the owner.
func AcceptTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := api.OwnerIDFromCtx(r.Context())
		if !ok {
			http.Error(w, constants.ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		var req acceptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}

		date, ok := parseStatementDate(req.BookingDate)
		if !ok {
			http.Error(w, constants.ErrInvalidDate, http.StatusUnprocessableEntity)
			return
		}
		amount, err := decimal.NewFromString(req.Amount.String())
		if err != nil {
			http.Error(w, constants.ErrInvalidAmount, http.StatusUnprocessableEntity)
			return
		}
		txnType := req.TxnType
		if txnType == "" {
			txnType = constants.TxnTypeIncome
		}
		if txnType != constants.TxnTypeIncome && txnType != constants.TxnTypeExpense {
			http.Error(w, constants.ErrInvalidTxnType, http.StatusUnprocessableEntity)
			return
		}

		if req.MemberID != nil {
			if _, err := members.GetByID(r.Context(), pool, ownerID, *req.MemberID); err != nil {
				http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
				return
			}
		}

		desc := transactions.Truncate(strings.TrimSpace(req.Description), constants.MaxDescriptionLen)

		entry := transactions.Entry{
			UserID:          ownerID,
			MemberID:        req.MemberID,
			CategoryID:      req.CategoryID,
			Type:            txnType,
			Amount:          amount.Abs(),
			Description:     desc,
			TransactionDate: date,
		}
		if err := transactions.Insert(r.Context(), pool, &entry); err != nil {
			http.Error(w, constants.ErrDB, http.StatusInternalServerError)
			return
		}

		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":             true,
			"transaction_id": entry.ID,
		})
	}
}

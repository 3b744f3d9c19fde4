package transactions

import (
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
)

type entryRequest struct {
	MemberID        *int64  `json:"member_id"`
	CategoryID      *int64  `json:"category_id"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	Description     string  `json:"description"`
	TransactionDate string  `json:"transaction_date"`
	ReceiptNumber   *string `json:"receipt_number"`
	Notes           *string `json:"notes"`
}

func (req *entryRequest) apply(e *Entry) error {
	if req.Type != constants.TxnTypeIncome && req.Type != constants.TxnTypeExpense {
		return errors.New(constants.ErrInvalidTxnType)
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return errors.New(constants.ErrInvalidAmount)
	}
	date, err := time.Parse(constants.DateFormat, req.TransactionDate)
	if err != nil {
		return errors.New(constants.ErrInvalidDateISO)
	}
	if req.Description == "" {
		return errors.New("description is required")
	}
	e.MemberID = req.MemberID
	e.CategoryID = req.CategoryID
	e.Type = req.Type
	e.Amount = amount
	e.Description = Truncate(req.Description, constants.MaxDescriptionLen)
	e.TransactionDate = date
	e.ReceiptNumber = req.ReceiptNumber
	e.Notes = req.Notes
	return nil
}

// Truncate caps a string at max characters, never splitting a
// multi-byte rune: the database rejects invalid UTF-8 text.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListTransactionsHandler handles GET /transactions?type=income|expense
func ListTransactionsHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		txnType := r.URL.Query().Get("type")
		if txnType != "" && txnType != constants.TxnTypeIncome && txnType != constants.TxnTypeExpense {
			http.Error(w, constants.ErrInvalidTxnType, http.StatusBadRequest)
			return
		}
		list, err := ListByOwner(r.Context(), pool, ownerID, txnType)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": list})
	}
}

// CreateTransactionHandler handles POST /transactions
func CreateTransactionHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		e := Entry{UserID: ownerID}
		if err := req.apply(&e); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := Insert(r.Context(), pool, &e); err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": e})
	}
}

// UpdateTransactionHandler handles PUT /transactions/{id}
func UpdateTransactionHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, constants.ErrTransactionNotFound, http.StatusNotFound)
			return
		}
		var req entryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		e := Entry{ID: id, UserID: ownerID}
		if err := req.apply(&e); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := Update(r.Context(), pool, &e); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, constants.ErrTransactionNotFound, http.StatusNotFound)
				return
			}
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": e})
	}
}

// DeleteTransactionHandler handles DELETE /transactions/{id}
func DeleteTransactionHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil || id <= 0 {
			http.Error(w, constants.ErrTransactionNotFound, http.StatusNotFound)
			return
		}
		if err := Delete(r.Context(), pool, ownerID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, constants.ErrTransactionNotFound, http.StatusNotFound)
				return
			}
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SummaryHandler handles GET /transactions/summary
func SummaryHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		s, err := Summarize(r.Context(), pool, ownerID)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"income":  s.Income.StringFixed(2),
			"expense": s.Expense.StringFixed(2),
			"balance": s.Balance.StringFixed(2),
		})
	}
}

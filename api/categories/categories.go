package categories

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"VereinsKasse/api"
	"VereinsKasse/api/constants"
)

// Category labels ledger entries for reporting. Each organization
// starts with a German default set, seeded lazily on first list.
type Category struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"` // income or expense
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrNotFound = errors.New("category not found")

type defaultCategory struct {
	name    string
	txnType string
	color   string
}

var defaultCategories = []defaultCategory{
	{"Mitgliedsbeiträge", constants.TxnTypeIncome, "#10b981"},
	{"Spenden", constants.TxnTypeIncome, "#3b82f6"},
	{"Veranstaltungen", constants.TxnTypeIncome, "#8b5cf6"},
	{"Sonstiges (Einnahme)", constants.TxnTypeIncome, "#6b7280"},
	{"Miete/Pacht", constants.TxnTypeExpense, "#ef4444"},
	{"Versicherung", constants.TxnTypeExpense, "#f59e0b"},
	{"Material", constants.TxnTypeExpense, "#ec4899"},
	{"Verwaltung", constants.TxnTypeExpense, "#14b8a6"},
	{"Sonstiges (Ausgabe)", constants.TxnTypeExpense, "#6b7280"},
}

func listByOwner(ctx context.Context, pool *pgxpool.Pool, ownerID int64) ([]Category, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, user_id, name, type, color, created_at
		FROM categories WHERE user_id = $1 ORDER BY type, name`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Category{}
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Type, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func seedDefaults(ctx context.Context, pool *pgxpool.Pool, ownerID int64) error {
	for _, d := range defaultCategories {
		if _, err := pool.Exec(ctx, `
			INSERT INTO categories (user_id, name, type, color) VALUES ($1, $2, $3, $4)`,
			ownerID, d.name, d.txnType, d.color); err != nil {
			return err
		}
	}
	return nil
}

type categoryRequest struct {
	Name  string  `json:"name"`
	Type  string  `json:"type"`
	Color *string `json:"color"`
}

func (req *categoryRequest) validate() error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if req.Type != constants.TxnTypeIncome && req.Type != constants.TxnTypeExpense {
		return errors.New(constants.ErrInvalidTxnType)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// ListCategoriesHandler handles GET /categories, seeding the default
// set for organizations that have none yet.
func ListCategoriesHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		list, err := listByOwner(r.Context(), pool, ownerID)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		if len(list) == 0 {
			if err := seedDefaults(r.Context(), pool, ownerID); err != nil {
				http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
				return
			}
			if list, err = listByOwner(r.Context(), pool, ownerID); err != nil {
				http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": list})
	}
}

// CreateCategoryHandler handles POST /categories
func CreateCategoryHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		if err := req.validate(); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		c := Category{UserID: ownerID, Name: req.Name, Type: req.Type, Color: req.Color}
		err := pool.QueryRow(r.Context(), `
			INSERT INTO categories (user_id, name, type, color)
			VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
			c.UserID, c.Name, c.Type, c.Color).Scan(&c.ID, &c.CreatedAt)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": c})
	}
}

// UpdateCategoryHandler handles PUT /categories/{id}
func UpdateCategoryHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			http.Error(w, constants.ErrCategoryNotFound, http.StatusNotFound)
			return
		}
		var req categoryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		if err := req.validate(); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		c := Category{ID: id, UserID: ownerID, Name: req.Name, Type: req.Type, Color: req.Color}
		err = pool.QueryRow(r.Context(), `
			UPDATE categories SET name = $1, type = $2, color = $3
			WHERE id = $4 AND user_id = $5 RETURNING created_at`,
			c.Name, c.Type, c.Color, c.ID, c.UserID).Scan(&c.CreatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, constants.ErrCategoryNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": c})
	}
}

// DeleteCategoryHandler handles DELETE /categories/{id}. Ledger entries
// keep running; their category_id is nulled by the FK.
func DeleteCategoryHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
		if err != nil {
			http.Error(w, constants.ErrCategoryNotFound, http.StatusNotFound)
			return
		}
		tag, err := pool.Exec(r.Context(),
			"DELETE FROM categories WHERE id = $1 AND user_id = $2", id, ownerID)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		if tag.RowsAffected() == 0 {
			http.Error(w, constants.ErrCategoryNotFound, http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

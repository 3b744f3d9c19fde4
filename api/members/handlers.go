package members

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

type memberRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	MemberSince    *string `json:"member_since"`
	MemberNumber   *string `json:"member_number"`
	Status         string  `json:"status"`
	BeitragMonthly *string `json:"beitrag_monthly"`
	IBAN           *string `json:"iban"`
	Notes          *string `json:"notes"`
}

func (req *memberRequest) apply(m *Member) error {
	if req.FirstName == "" || req.LastName == "" {
		return errors.New("first_name and last_name are required")
	}
	m.FirstName = req.FirstName
	m.LastName = req.LastName
	m.Email = req.Email
	m.Phone = req.Phone
	m.MemberNumber = req.MemberNumber
	m.IBAN = req.IBAN
	m.Notes = req.Notes
	m.Status = req.Status
	if m.Status == "" {
		m.Status = constants.MemberStatusActive
	}
	m.MemberSince = nil
	if req.MemberSince != nil && *req.MemberSince != "" {
		t, err := time.Parse(constants.DateFormat, *req.MemberSince)
		if err != nil {
			return errors.New(constants.ErrInvalidDateISO)
		}
		m.MemberSince = &t
	}
	m.BeitragMonthly = nil
	if req.BeitragMonthly != nil && *req.BeitragMonthly != "" {
		fee, err := decimal.NewFromString(*req.BeitragMonthly)
		if err != nil || fee.IsNegative() {
			return errors.New(constants.ErrInvalidAmount)
		}
		m.BeitragMonthly = &fee
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

// ListMembersHandler handles GET /members
func ListMembersHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		list, err := ListByOwner(r.Context(), pool, ownerID)
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": list})
	}
}

// GetMemberHandler handles GET /members/{id}
func GetMemberHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		m, err := GetByID(r.Context(), pool, ownerID, id)
		if errors.Is(err, ErrNotFound) {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": m})
	}
}

// CreateMemberHandler handles POST /members
func CreateMemberHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		var req memberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		m := Member{UserID: ownerID}
		if err := req.apply(&m); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := Create(r.Context(), pool, &m); err != nil {
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "data": m})
	}
}

// UpdateMemberHandler handles PUT /members/{id}
func UpdateMemberHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		var req memberRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		m := Member{ID: id, UserID: ownerID}
		if err := req.apply(&m); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		if err := Update(r.Context(), pool, &m); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
				return
			}
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": m})
	}
}

// DeleteMemberHandler handles DELETE /members/{id}
func DeleteMemberHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, _ := api.OwnerIDFromCtx(r.Context())
		id, ok := pathID(r, "id")
		if !ok {
			http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
			return
		}
		if err := Delete(r.Context(), pool, ownerID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, constants.ErrMemberNotFound, http.StatusNotFound)
				return
			}
			http.Error(w, constants.ErrDB+": "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

package sepa

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"VereinsKasse/api"
	"VereinsKasse/api/constants"
	"VereinsKasse/api/members"
)

type exportRequest struct {
	CollectionDate string  `json:"collection_date"` // YYYY-MM-DD
	CreditorIBAN   string  `json:"creditor_iban"`
	CreditorBIC    string  `json:"creditor_bic"`
	CreditorID     string  `json:"creditor_id"`
	MemberIDs      []int64 `json:"member_ids"` // empty = all active members
}

// ExportHandler generates the pain.008 file for one collection run and
// returns it as a download.
func ExportHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := api.OwnerIDFromCtx(r.Context())
		if !ok {
			http.Error(w, constants.ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		var req exportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, constants.ErrInvalidJSON, http.StatusBadRequest)
			return
		}
		collectionDate, err := time.Parse(constants.DateFormat, req.CollectionDate)
		if err != nil {
			http.Error(w, constants.ErrInvalidDateISO, http.StatusBadRequest)
			return
		}

		roster, err := members.ListActiveByOwner(r.Context(), pool, ownerID)
		if err != nil {
			http.Error(w, constants.ErrDB, http.StatusInternalServerError)
			return
		}
		if len(req.MemberIDs) > 0 {
			wanted := make(map[int64]bool, len(req.MemberIDs))
			for _, id := range req.MemberIDs {
				wanted[id] = true
			}
			filtered := roster[:0]
			for _, m := range roster {
				if wanted[m.ID] {
					filtered = append(filtered, m)
				}
			}
			roster = filtered
		}

		eligible := EligibleMembers(roster)
		if len(eligible) == 0 {
			http.Error(w, constants.ErrNoEligibleMembers, http.StatusBadRequest)
			return
		}

		creditor := CreditorInfo{
			IBAN: req.CreditorIBAN,
			BIC:  req.CreditorBIC,
			ID:   req.CreditorID,
		}
		if session := api.SessionFromCtx(r.Context()); session != nil {
			creditor.Name = session.OrganizationName
			if creditor.Name == "" {
				creditor.Name = session.Name
			}
		}

		doc, err := BuildDocument(time.Now(), creditor, eligible, collectionDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		payload, err := Marshal(doc)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set(constants.HeaderContentType, constants.ContentTypeXML)
		w.Header().Set("Content-Disposition", `attachment; filename="`+Filename(collectionDate)+`"`)
		w.Write(payload)
	}
}

type previewMember struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	MemberNumber   *string `json:"member_number"`
	IBAN           *string `json:"iban"`
	BeitragMonthly *string `json:"beitrag_monthly"`
	HasIBAN        bool    `json:"has_iban"`
	HasBeitrag     bool    `json:"has_beitrag"`
}

// PreviewHandler lists the active members and flags which of them the
// next collection run would include.
func PreviewHandler(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := api.OwnerIDFromCtx(r.Context())
		if !ok {
			http.Error(w, constants.ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		roster, err := members.ListActiveByOwner(r.Context(), pool, ownerID)
		if err != nil {
			http.Error(w, constants.ErrDB, http.StatusInternalServerError)
			return
		}

		preview := make([]previewMember, 0, len(roster))
		ready := 0
		for i := range roster {
			m := &roster[i]
			pm := previewMember{
				ID:           m.ID,
				Name:         m.FullName(),
				MemberNumber: m.MemberNumber,
				HasIBAN:      m.HasIBAN(),
				HasBeitrag:   m.HasBeitrag(),
			}
			if m.HasIBAN() {
				masked := m.MaskedIBAN()
				pm.IBAN = &masked
			}
			if m.BeitragMonthly != nil {
				fee := m.BeitragMonthly.StringFixed(2)
				pm.BeitragMonthly = &fee
			}
			if m.SepaEligible() {
				ready++
			}
			preview = append(preview, pm)
		}

		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"total_members":     len(roster),
			"members_with_iban": preview,
			"ready_for_sepa":    ready,
		})
	}
}

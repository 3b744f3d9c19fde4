package verein

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"VereinsKasse/api"
	"VereinsKasse/api/bank"
	"VereinsKasse/api/categories"
	"VereinsKasse/api/members"
	"VereinsKasse/api/reminders"
	"VereinsKasse/api/sepa"
	"VereinsKasse/api/transactions"
)

const defaultPort = 6143

// NewRouter builds the domain router. Every route sits behind the
// session middleware; the gateway strips the /api prefix before
// proxying here.
func NewRouter(pool *pgxpool.Pool) *mux.Router {
	router := mux.NewRouter()
	router.Use(api.SessionMiddleware)

	// Member roster
	router.HandleFunc("/members", members.ListMembersHandler(pool)).Methods(http.MethodGet)
	router.HandleFunc("/members", members.CreateMemberHandler(pool)).Methods(http.MethodPost)
	router.HandleFunc("/members/import", members.ImportMembersHandler(pool)).Methods(http.MethodPost)
	router.HandleFunc("/members/payment-overview", reminders.PaymentOverviewHandler(pool)).Methods(http.MethodGet)
	router.HandleFunc("/members/{id:[0-9]+}", members.GetMemberHandler(pool)).Methods(http.MethodGet)
	router.HandleFunc("/members/{id:[0-9]+}", members.UpdateMemberHandler(pool)).Methods(http.MethodPut)
	router.HandleFunc("/members/{id:[0-9]+}", members.DeleteMemberHandler(pool)).Methods(http.MethodDelete)

	// Payment reminders, member-scoped
	router.HandleFunc("/members/{member_id:[0-9]+}/reminders", reminders.ListRemindersHandler(pool)).Methods(http.MethodGet)
	router.HandleFunc("/members/{member_id:[0-9]+}/reminders", reminders.CreateReminderHandler(pool)).Methods(http.MethodPost)
	router.HandleFunc("/members/{member_id:[0-9]+}/reminders/{id:[0-9]+}", reminders.UpdateReminderHandler(pool)).Methods(http.MethodPut)
	router.HandleFunc("/members/{member_id:[0-9]+}/reminders/{id:[0-9]+}", reminders.DeleteReminderHandler(pool)).Methods(http.MethodDelete)
	router.HandleFunc("/members/{member_id:[0-9]+}/reminders/{id:[0-9]+}/send", reminders.SendReminderHandler(pool)).Methods(http.MethodPost)

	// Categories
	router.HandleFunc("/categories", categories.ListCategoriesHandler(pool)).Methods(http.MethodGet)
	router.HandleFunc("/categories", categories.CreateCategoryHandler(pool)).Methods(http.MethodPost)
	router.HandleFunc("/categories/{id:[0-9]+}", categories.UpdateCategoryHandler(pool)).Methods(http.MethodPut)
	router.HandleFunc("/categories/{id:[0-9]+}", categories.DeleteCategoryHandler(pool)).Methods(http.MethodDelete)

	// Kassenbuch
	router.HandleFunc("/transactions", transactions.ListTransactionsHandler(pool)).Methods(http.MethodGet)
	router.HandleFunc("/transactions", transactions.CreateTransactionHandler(pool)).Methods(http.MethodPost)
	router.HandleFunc("/transactions/summary", transactions.SummaryHandler(pool)).Methods(http.MethodGet)
	router.HandleFunc("/transactions/{id:[0-9]+}", transactions.UpdateTransactionHandler(pool)).Methods(http.MethodPut)
	router.HandleFunc("/transactions/{id:[0-9]+}", transactions.DeleteTransactionHandler(pool)).Methods(http.MethodDelete)

	// Bank statement reconciliation
	router.HandleFunc("/bank/import", bank.ImportBankStatement(pool)).Methods(http.MethodPost)
	router.HandleFunc("/bank/accept-transaction", bank.AcceptTransaction(pool)).Methods(http.MethodPost)

	// SEPA direct debit
	router.HandleFunc("/sepa/export", sepa.ExportHandler(pool)).Methods(http.MethodPost)
	router.HandleFunc("/sepa/preview", sepa.PreviewHandler(pool)).Methods(http.MethodGet)

	return router
}

func StartVereinService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	port := defaultPort
	if cfg != nil {
		switch v := cfg["port"].(type) {
		case int:
			port = v
		case float64:
			port = int(v)
		}
	}
	addr := fmt.Sprintf(":%d", port)
	log.Printf("Verein Service started on %s", addr)
	if err := http.ListenAndServe(addr, NewRouter(pool)); err != nil {
		log.Fatalf("Verein Service failed: %v", err)
	}
}

package api

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"VereinsKasse/internal/logger"
)

// NewRouter wires the gateway routes: auth endpoints served in-process,
// everything under /api/ proxied to the verein domain service.
func NewRouter() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/auth/login", LoginHandler).Methods("POST")
	router.HandleFunc("/auth/logout", LogoutHandler).Methods("POST")
	router.HandleFunc("/auth/sessions", GetSessionsHandler).Methods("GET")

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("API Gateway is healthy"))
	}).Methods("GET")

	router.PathPrefix("/api/").Handler(
		http.StripPrefix("/api", createReverseProxy(vereinTarget())),
	)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		msg := "[Gateway] [Error] " + r.URL.Path + " from " + r.RemoteAddr + " (route not found)"
		if logr := logger.GlobalLogger; logr != nil {
			logr.LogAudit(msg)
		} else {
			log.Println(msg)
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("404 - Route not found"))
	})

	return router
}

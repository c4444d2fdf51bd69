package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the report API, health and metrics endpoints
func NewRouter(reports *ReportHandler, metrics http.Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/reports/{period}", reports.HandleGenerate).Methods(http.MethodPost)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}

	return r
}

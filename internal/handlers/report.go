// Package handlers provides HTTP handlers for API endpoints
package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"attendance-reporter/internal/services"
)

// ReportHandler handles manual report triggers
type ReportHandler struct {
	service services.ReportGenerator
	loc     *time.Location
	now     func() time.Time
}

// NewReportHandler creates a new report handler
func NewReportHandler(service services.ReportGenerator, loc *time.Location) *ReportHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ReportHandler{service: service, loc: loc, now: time.Now}
}

type reportResponse struct {
	RunID     string   `json:"run_id"`
	Period    string   `json:"period"`
	Label     string   `json:"label"`
	Delivered []string `json:"delivered"`
	Skipped   []string `json:"skipped"`
	Failed    []string `json:"failed"`
}

// HandleGenerate runs a report. The optional date query parameter
// (YYYY-MM-DD) replaces "today", e.g. date=2026-03-01 with the monthly
// period reports February.
func (h *ReportHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	period, err := services.ParsePeriod(mux.Vars(r)["period"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	now := h.now().In(h.loc)
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, h.loc)
		if err != nil {
			http.Error(w, "Invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		now = parsed
	}

	log.Printf("📨 Manual %s report requested (as of %s)", period, now.Format("2006-01-02"))

	summary, err := h.service.Generate(r.Context(), period, now)
	if err != nil {
		if errors.Is(err, services.ErrRunInProgress) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		log.Printf("Error generating report: %v", err)
		http.Error(w, "Report generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reportResponse{
		RunID:     summary.RunID,
		Period:    string(summary.Period),
		Label:     summary.Label,
		Delivered: nonNil(summary.Delivered),
		Skipped:   nonNil(summary.Skipped),
		Failed:    nonNil(summary.Failed),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

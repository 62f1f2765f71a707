package dashboard

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/jmoiron/sqlx"

	"seamline/auth"
	"seamline/database"
	"seamline/model"
)

var dateRegex = regexp.MustCompile(`^\d{8}$`)

func parseFilters(r *http.Request) (model.DashboardFilters, bool) {
	q := r.URL.Query()
	filters := model.DashboardFilters{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		UnitID:    q.Get("unit"),
		FloorID:   q.Get("floor"),
		LineID:    q.Get("line"),
	}
	if !dateRegex.MatchString(filters.StartDate) || !dateRegex.MatchString(filters.EndDate) {
		return filters, false
	}
	return filters, true
}

// SummaryHandler returns per-line daily figures for all three departments
// over a date range, targets and actuals side by side.
func SummaryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		filters, ok := parseFilters(r)
		if !ok {
			http.Error(w, "startDate and endDate (YYYYMMDD) are required", http.StatusBadRequest)
			return
		}

		summaries, err := database.GetLineDaySummaries(db, claims.FactoryID, filters)
		if err != nil {
			http.Error(w, "Failed to get summary: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summaries)
	}
}

// BlockersHandler rolls up sewing downtime by blocker type.
func BlockersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		filters, ok := parseFilters(r)
		if !ok {
			http.Error(w, "startDate and endDate (YYYYMMDD) are required", http.StatusBadRequest)
			return
		}

		summaries, err := database.GetBlockerSummary(db, claims.FactoryID, filters)
		if err != nil {
			http.Error(w, "Failed to get blocker summary: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(summaries)
	}
}

// OrderProgressHandler tracks open work orders through the departments.
func OrderProgressHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())

		progress, err := database.GetOrderProgress(db, claims.FactoryID)
		if err != nil {
			http.Error(w, "Failed to get order progress: "+err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(progress)
	}
}

package report

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"regexp"

	"github.com/jmoiron/sqlx"

	"seamline/auth"
	"seamline/billing"
	"seamline/database"
	"seamline/model"
)

var dateRegex = regexp.MustCompile(`^\d{8}$`)

var reportTemplate = template.Must(template.New("daily_report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: sans-serif; font-size: 12px; }
  h1 { font-size: 18px; }
  table { border-collapse: collapse; width: 100%; margin-bottom: 16px; }
  th, td { border: 1px solid #999; padding: 4px 8px; text-align: left; }
  th { background: #eee; }
  .num { text-align: right; }
</style>
</head>
<body>
<h1>{{.FactoryName}} - Daily Production Report {{.Date}}</h1>
<table>
  <tr><th>Line</th><th>Floor</th><th>Department</th><th class="num">Target</th><th class="num">Actual</th><th class="num">Defects</th><th class="num">Efficiency %</th></tr>
  {{range .Rows}}
  <tr>
    <td>{{.LineName}}</td><td>{{.FloorName}}</td><td>{{.Department}}</td>
    <td class="num">{{printf "%.0f" .TargetQty}}</td>
    <td class="num">{{printf "%.0f" .ActualQty}}</td>
    <td class="num">{{printf "%.0f" .DefectQty}}</td>
    <td class="num">{{printf "%.1f" .Efficiency}}</td>
  </tr>
  {{end}}
</table>
<h1>Downtime</h1>
<table>
  <tr><th>Blocker</th><th class="num">Occurrences</th><th class="num">Minutes</th></tr>
  {{range .Blockers}}
  <tr><td>{{.BlockerName}}</td><td class="num">{{.Occurrences}}</td><td class="num">{{.TotalMinutes}}</td></tr>
  {{end}}
</table>
</body>
</html>`))

type reportData struct {
	FactoryName string
	Date        string
	Rows        []model.LineDaySummary
	Blockers    []model.BlockerSummary
}

// DailyReportHandler renders one day's summary as a PDF attachment.
// Gated on the plan's pdf_reports feature.
func DailyReportHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		date := r.URL.Query().Get("date")
		if !dateRegex.MatchString(date) {
			http.Error(w, "date (YYYYMMDD) is required", http.StatusBadRequest)
			return
		}

		factory, err := database.GetFactoryByID(db, claims.FactoryID)
		if err != nil || factory == nil {
			http.Error(w, "Failed to get factory", http.StatusInternalServerError)
			return
		}
		if !billing.HasFeature(factory.PlanTier, "pdf_reports") {
			http.Error(w, "PDF reports are not included in your plan", http.StatusForbidden)
			return
		}

		filters := model.DashboardFilters{StartDate: date, EndDate: date}
		rows, err := database.GetLineDaySummaries(db, claims.FactoryID, filters)
		if err != nil {
			http.Error(w, "Failed to get summary: "+err.Error(), http.StatusInternalServerError)
			return
		}
		blockers, err := database.GetBlockerSummary(db, claims.FactoryID, filters)
		if err != nil {
			http.Error(w, "Failed to get blocker summary: "+err.Error(), http.StatusInternalServerError)
			return
		}

		var html bytes.Buffer
		err = reportTemplate.Execute(&html, reportData{
			FactoryName: factory.Name,
			Date:        date,
			Rows:        rows,
			Blockers:    blockers,
		})
		if err != nil {
			http.Error(w, "Failed to render report", http.StatusInternalServerError)
			return
		}

		pdf, err := HTMLToPDF(html.String())
		if err != nil {
			log.Printf("PDF generation failed: %v", err)
			http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
			return
		}

		filename := fmt.Sprintf("daily_report_%s.pdf", date)
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
		w.Write(pdf)
	}
}

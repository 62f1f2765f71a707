package export

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"seamline/auth"
	"seamline/database"
	"seamline/metrics"
	"seamline/model"
)

var dateRegex = regexp.MustCompile(`^\d{8}$`)

func serveCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename*=UTF-8''"+url.PathEscape(filename))
	w.Write(data)
}

// ActualsHandler exports a department's actuals over a date range. Column
// sets differ per department; headers are fixed per export type.
func ActualsHandler(db *sqlx.DB, dept model.Department) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		q := r.URL.Query()
		startDate := q.Get("startDate")
		endDate := q.Get("endDate")
		if !dateRegex.MatchString(startDate) || !dateRegex.MatchString(endDate) {
			http.Error(w, "startDate and endDate (YYYYMMDD) are required", http.StatusBadRequest)
			return
		}

		actuals, err := database.ListActualsForExport(db, dept, claims.FactoryID, startDate, endDate)
		if err != nil {
			http.Error(w, "Failed to get data for export: "+err.Error(), http.StatusInternalServerError)
			return
		}

		lines, err := database.GetLinesForFactory(db, claims.FactoryID)
		if err != nil {
			http.Error(w, "Failed to get lines", http.StatusInternalServerError)
			return
		}
		lineNames := make(map[string]string, len(lines))
		for _, l := range lines {
			lineNames[l.ID] = l.Name
		}

		var header []string
		switch dept {
		case model.DeptCutting:
			header = []string{"Date", "Line", "WorkOrder", "Quantity", "Layers", "Remarks"}
		case model.DeptSewing:
			header = []string{"Date", "Line", "WorkOrder", "Stage", "Quantity", "DefectQty", "BlockerMinutes", "Remarks"}
		case model.DeptFinishing:
			header = []string{"Date", "Line", "WorkOrder", "Quantity", "PackedQty", "RejectQty", "Remarks"}
		default:
			http.Error(w, "Unknown department", http.StatusBadRequest)
			return
		}

		buf := newCSVBuffer(header)
		for _, a := range actuals {
			lineName := lineNames[a.LineID]
			if lineName == "" {
				lineName = a.LineID
			}
			switch dept {
			case model.DeptCutting:
				writeRow(buf, []string{a.WorkDate, lineName, a.WorkOrderID, formatQty(a.Quantity),
					strconv.Itoa(a.Layers), a.Remarks})
			case model.DeptSewing:
				writeRow(buf, []string{a.WorkDate, lineName, a.WorkOrderID, a.StageID, formatQty(a.Quantity),
					formatQty(a.DefectQty), strconv.Itoa(a.BlockerMinutes), a.Remarks})
			case model.DeptFinishing:
				writeRow(buf, []string{a.WorkDate, lineName, a.WorkOrderID, formatQty(a.Quantity),
					formatQty(a.PackedQty), formatQty(a.RejectQty), a.Remarks})
			}
		}

		metrics.ExportsTotal.WithLabelValues(string(dept) + "_actuals").Inc()
		filename := fmt.Sprintf("%s_actuals_%s-%s.csv", dept, startDate, endDate)
		serveCSV(w, filename, buf.Bytes())
	}
}

// WorkOrdersHandler exports the order book.
func WorkOrdersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())

		orders, err := database.SearchWorkOrders(db, claims.FactoryID, model.WorkOrderFilters{
			Status: r.URL.Query().Get("status"),
		})
		if err != nil {
			http.Error(w, "Failed to get work orders: "+err.Error(), http.StatusInternalServerError)
			return
		}

		buf := newCSVBuffer([]string{"OrderNo", "Style", "Buyer", "Color", "SizeRange", "OrderQty", "UnitPrice", "Status", "DeliveryDate"})
		for _, wo := range orders {
			writeRow(buf, []string{wo.OrderNo, wo.Style, wo.Buyer, wo.Color, wo.SizeRange,
				formatQty(wo.OrderQty), wo.UnitPrice.String(), wo.Status, wo.DeliveryDate})
		}

		metrics.ExportsTotal.WithLabelValues("work_orders").Inc()
		serveCSV(w, "work_orders.csv", buf.Bytes())
	}
}

// BinCardLedgerHandler exports one card's ledger with running balances.
func BinCardLedgerHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		cardID := strings.TrimPrefix(r.URL.Path, "/api/export/bincard/")
		if cardID == "" {
			http.Error(w, "Bin card id is required", http.StatusBadRequest)
			return
		}

		card, err := database.GetBinCardByID(db, claims.FactoryID, cardID)
		if err != nil {
			http.Error(w, "Failed to get bin card", http.StatusInternalServerError)
			return
		}
		if card == nil {
			http.Error(w, "Bin card not found", http.StatusNotFound)
			return
		}

		ledger, err := database.GetBinCardLedger(db, card.ID)
		if err != nil {
			http.Error(w, "Failed to get ledger: "+err.Error(), http.StatusInternalServerError)
			return
		}

		buf := newCSVBuffer([]string{"Date", "Challan", "Received", "Issued", "Balance", "Remarks"})
		for _, row := range ledger {
			writeRow(buf, []string{row.TxnDate, row.ChallanNo, formatQty(row.Received),
				formatQty(row.Issued), formatQty(row.Balance), row.Remarks})
		}

		metrics.ExportsTotal.WithLabelValues("bin_card_ledger").Inc()
		filename := fmt.Sprintf("bincard_%s_%s.csv", card.CardNo, card.MaterialName)
		serveCSV(w, filename, buf.Bytes())
	}
}

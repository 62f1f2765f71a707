package production

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"seamline/auth"
	"seamline/database"
	"seamline/i18n"
	"seamline/metrics"
	"seamline/model"
)

var dateRegex = regexp.MustCompile(`^\d{8}$`)

type targetPayload struct {
	LineID      string  `json:"lineId"`
	WorkOrderID string  `json:"workOrderId"`
	WorkDate    string  `json:"workDate"`
	StageID     string  `json:"stageId"`
	TargetQty   float64 `json:"targetQty"`
	Manpower    int     `json:"manpower"`
	WorkHours   float64 `json:"workHours"`
}

type actualPayload struct {
	LineID         string  `json:"lineId"`
	WorkOrderID    string  `json:"workOrderId"`
	WorkDate       string  `json:"workDate"`
	StageID        string  `json:"stageId"`
	Quantity       float64 `json:"quantity"`
	Layers         int     `json:"layers"`
	DefectQty      float64 `json:"defectQty"`
	BlockerTypeID  string  `json:"blockerTypeId"`
	BlockerMinutes int     `json:"blockerMinutes"`
	PackedQty      float64 `json:"packedQty"`
	RejectQty      float64 `json:"rejectQty"`
	Remarks        string  `json:"remarks"`
}

type saveActualResponse struct {
	Message string                 `json:"message"`
	Actual  model.ProductionActual `json:"actual"`
	Totals  model.RunningTotal     `json:"totals"`
}

// checkSubmission validates the parts shared by target and actual saves:
// the line exists, is active and assigned to the caller, the work order
// exists and is open, and the date is well formed.
func checkSubmission(db *sqlx.DB, w http.ResponseWriter, r *http.Request, lineID, workOrderID, workDate string) (*model.WorkOrder, bool) {
	claims := auth.ClaimsFromContext(r.Context())
	lang := i18n.PickFromRequest(r)

	if !dateRegex.MatchString(workDate) {
		http.Error(w, "workDate must be in YYYYMMDD format", http.StatusBadRequest)
		return nil, false
	}

	line, err := database.GetLineByID(db, claims.FactoryID, lineID)
	if err != nil {
		http.Error(w, "Failed to get line", http.StatusInternalServerError)
		return nil, false
	}
	if line == nil {
		http.Error(w, "Line not found", http.StatusNotFound)
		return nil, false
	}
	if !line.IsActive {
		http.Error(w, i18n.T(lang, "line_inactive"), http.StatusForbidden)
		return nil, false
	}

	if claims.HasRole(model.RoleOperator) && !claims.HasAnyRole(model.RoleManager) {
		assigned, err := database.IsUserAssignedToLine(db, claims.UserID, lineID)
		if err != nil {
			http.Error(w, "Failed to check line assignment", http.StatusInternalServerError)
			return nil, false
		}
		if !assigned {
			http.Error(w, i18n.T(lang, "line_not_assigned"), http.StatusForbidden)
			return nil, false
		}
	}

	wo, err := database.GetWorkOrderByID(db, claims.FactoryID, workOrderID)
	if err != nil {
		http.Error(w, "Failed to get work order", http.StatusInternalServerError)
		return nil, false
	}
	if wo == nil {
		http.Error(w, "Work order not found", http.StatusNotFound)
		return nil, false
	}
	if wo.Status != model.OrderStatusOpen {
		http.Error(w, i18n.T(lang, "order_closed"), http.StatusConflict)
		return nil, false
	}
	return wo, true
}

// SaveTargetHandler stores a department's daily target for a line.
func SaveTargetHandler(db *sqlx.DB, dept model.Department) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())
		lang := i18n.PickFromRequest(r)

		var payload targetPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.TargetQty < 0 || payload.WorkHours < 0 || payload.Manpower < 0 {
			http.Error(w, "Values must not be negative", http.StatusBadRequest)
			return
		}
		if dept == model.DeptSewing && payload.StageID == "" {
			http.Error(w, "stageId is required for sewing", http.StatusBadRequest)
			return
		}

		if _, ok := checkSubmission(db, w, r, payload.LineID, payload.WorkOrderID, payload.WorkDate); !ok {
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		target := model.ProductionTarget{
			ID:          uuid.NewString(),
			FactoryID:   claims.FactoryID,
			LineID:      payload.LineID,
			WorkOrderID: payload.WorkOrderID,
			WorkDate:    payload.WorkDate,
			StageID:     payload.StageID,
			TargetQty:   payload.TargetQty,
			Manpower:    payload.Manpower,
			WorkHours:   payload.WorkHours,
			SubmittedBy: claims.UserID,
		}
		if err := database.InsertTargetInTx(tx, dept, target); err != nil {
			if database.IsUniqueViolation(err) {
				http.Error(w, i18n.T(lang, "duplicate_submission"), http.StatusConflict)
				return
			}
			log.Printf("Failed to save %s target: %v", dept, err)
			http.Error(w, "Failed to save target", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		metrics.SubmissionsTotal.WithLabelValues(string(dept), "target").Inc()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": i18n.T(lang, "saved"),
			"target":  target,
		})
	}
}

// SaveActualHandler stores a department's realized daily figures and
// returns the running totals for the work order. Cumulative output is
// capped at the order quantity; a second submission for the same
// line/date key is rejected with a friendly 409.
func SaveActualHandler(db *sqlx.DB, dept model.Department) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())
		lang := i18n.PickFromRequest(r)

		var payload actualPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.Quantity < 0 || payload.DefectQty < 0 || payload.PackedQty < 0 || payload.RejectQty < 0 {
			http.Error(w, "Quantities must not be negative", http.StatusBadRequest)
			return
		}
		if dept == model.DeptSewing && payload.StageID == "" {
			http.Error(w, "stageId is required for sewing", http.StatusBadRequest)
			return
		}

		wo, ok := checkSubmission(db, w, r, payload.LineID, payload.WorkOrderID, payload.WorkDate)
		if !ok {
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		priorSum, err := database.CumulativeActualQtyInTx(tx, dept, payload.WorkOrderID, payload.StageID, payload.WorkDate)
		if err != nil {
			http.Error(w, "Failed to compute cumulative total", http.StatusInternalServerError)
			return
		}
		orderTotal, err := database.OrderActualTotalInTx(tx, dept, payload.WorkOrderID, payload.StageID)
		if err != nil {
			http.Error(w, "Failed to compute order total", http.StatusInternalServerError)
			return
		}

		totals, err := ComputeRunningTotal(payload.Quantity, priorSum, orderTotal, wo.OrderQty)
		if err != nil {
			http.Error(w, i18n.T(lang, "balance_exceeded"), http.StatusBadRequest)
			return
		}

		actual := model.ProductionActual{
			ID:             uuid.NewString(),
			FactoryID:      claims.FactoryID,
			LineID:         payload.LineID,
			WorkOrderID:    payload.WorkOrderID,
			WorkDate:       payload.WorkDate,
			StageID:        payload.StageID,
			Quantity:       payload.Quantity,
			Layers:         payload.Layers,
			DefectQty:      payload.DefectQty,
			BlockerTypeID:  payload.BlockerTypeID,
			BlockerMinutes: payload.BlockerMinutes,
			PackedQty:      payload.PackedQty,
			RejectQty:      payload.RejectQty,
			Remarks:        payload.Remarks,
			SubmittedBy:    claims.UserID,
		}
		if err := database.InsertActualInTx(tx, dept, actual); err != nil {
			if database.IsUniqueViolation(err) {
				http.Error(w, i18n.T(lang, "duplicate_submission"), http.StatusConflict)
				return
			}
			log.Printf("Failed to save %s actual: %v", dept, err)
			http.Error(w, "Failed to save submission", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		metrics.SubmissionsTotal.WithLabelValues(string(dept), "actual").Inc()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(saveActualResponse{
			Message: i18n.T(lang, "saved"),
			Actual:  actual,
			Totals:  totals,
		})
	}
}

// ListHandler returns a department's targets and actuals for one date,
// optionally scoped to a line.
func ListHandler(db *sqlx.DB, dept model.Department) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		q := r.URL.Query()
		workDate := q.Get("date")
		if !dateRegex.MatchString(workDate) {
			http.Error(w, "date must be in YYYYMMDD format", http.StatusBadRequest)
			return
		}
		lineID := q.Get("line")

		targets, err := database.ListTargets(db, dept, claims.FactoryID, lineID, workDate)
		if err != nil {
			http.Error(w, "Failed to list targets", http.StatusInternalServerError)
			return
		}
		actuals, err := database.ListActuals(db, dept, claims.FactoryID, lineID, workDate)
		if err != nil {
			http.Error(w, "Failed to list actuals", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"targets": targets,
			"actuals": actuals,
		})
	}
}

// DeleteActualHandler removes a mis-entered submission so it can be
// resubmitted. Manager and above only; wired accordingly in routes.
func DeleteActualHandler(db *sqlx.DB, dept model.Department) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())
		lang := i18n.PickFromRequest(r)

		var payload struct {
			ID string `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == "" {
			http.Error(w, "Submission id is required", http.StatusBadRequest)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.DeleteActualInTx(tx, dept, claims.FactoryID, payload.ID); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": i18n.T(lang, "deleted")})
	}
}

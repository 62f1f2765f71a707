package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"seamline/model"
)

// Dashboard queries join targets and actuals per line and date. The three
// departments are unioned in Go rather than SQL so each keeps its own
// column shape.

func lineScopeClause(filters model.DashboardFilters, args *[]interface{}) string {
	clause := ""
	if filters.LineID != "" {
		clause += " AND l.id = ?"
		*args = append(*args, filters.LineID)
	}
	if filters.FloorID != "" {
		clause += " AND l.floor_id = ?"
		*args = append(*args, filters.FloorID)
	}
	if filters.UnitID != "" {
		clause += " AND fl.unit_id = ?"
		*args = append(*args, filters.UnitID)
	}
	return clause
}

// GetLineDaySummaries returns one row per line/date/department with the
// summed target and actual, scoped by the filters.
func GetLineDaySummaries(db *sqlx.DB, factoryID string, filters model.DashboardFilters) ([]model.LineDaySummary, error) {
	type deptPair struct {
		dept    model.Department
		targets string
		actuals string
	}
	pairs := []deptPair{
		{model.DeptCutting, "cutting_targets", "cutting_actuals"},
		{model.DeptSewing, "sewing_targets", "sewing_actuals"},
		{model.DeptFinishing, "finishing_targets", "finishing_actuals"},
	}

	var result []model.LineDaySummary
	for _, p := range pairs {
		defectExpr := "0"
		if p.dept == model.DeptSewing {
			defectExpr = "COALESCE(SUM(a.defect_qty), 0)"
		}

		args := []interface{}{factoryID, filters.StartDate, filters.EndDate}
		q := fmt.Sprintf(`
			SELECT a.work_date, a.line_id, l.name AS line_name, fl.name AS floor_name, u.name AS unit_name,
			       '%s' AS department,
			       COALESCE((SELECT SUM(t.target_qty) FROM %s t
			                 WHERE t.line_id = a.line_id AND t.work_date = a.work_date), 0) AS target_qty,
			       COALESCE(SUM(a.quantity), 0) AS actual_qty,
			       %s AS defect_qty
			FROM %s a
			JOIN lines l ON l.id = a.line_id
			JOIN floors fl ON fl.id = l.floor_id
			JOIN units u ON u.id = fl.unit_id
			WHERE a.factory_id = ? AND a.work_date >= ? AND a.work_date <= ?`,
			p.dept, p.targets, defectExpr, p.actuals)
		q += lineScopeClause(filters, &args)
		q += " GROUP BY a.work_date, a.line_id ORDER BY a.work_date, l.name"

		var rows []model.LineDaySummary
		if err := db.Select(&rows, q, args...); err != nil {
			return nil, fmt.Errorf("failed to summarize %s: %w", p.actuals, err)
		}
		result = append(result, rows...)
	}

	for i := range result {
		if result[i].TargetQty > 0 {
			result[i].Efficiency = result[i].ActualQty / result[i].TargetQty * 100
		}
	}
	return result, nil
}

// GetBlockerSummary rolls up sewing downtime by blocker type.
func GetBlockerSummary(db *sqlx.DB, factoryID string, filters model.DashboardFilters) ([]model.BlockerSummary, error) {
	args := []interface{}{factoryID, filters.StartDate, filters.EndDate}
	q := `
		SELECT a.blocker_type_id, b.name AS blocker_name,
		       COUNT(*) AS occurrences, SUM(a.blocker_minutes) AS total_minutes
		FROM sewing_actuals a
		JOIN blocker_types b ON b.id = a.blocker_type_id
		JOIN lines l ON l.id = a.line_id
		JOIN floors fl ON fl.id = l.floor_id
		WHERE a.factory_id = ? AND a.work_date >= ? AND a.work_date <= ?
		  AND a.blocker_type_id != ''`
	q += lineScopeClause(filters, &args)
	q += " GROUP BY a.blocker_type_id ORDER BY total_minutes DESC"

	summaries := []model.BlockerSummary{}
	if err := db.Select(&summaries, q, args...); err != nil {
		return nil, fmt.Errorf("failed to summarize blockers: %w", err)
	}
	return summaries, nil
}

// GetOrderProgress tracks open work orders through cutting, sewing and
// finishing, with the balance still to produce in each department.
func GetOrderProgress(db *sqlx.DB, factoryID string) ([]model.OrderProgress, error) {
	const q = `
		SELECT wo.id AS work_order_id, wo.order_no, wo.style, wo.order_qty,
		       COALESCE((SELECT SUM(quantity) FROM cutting_actuals WHERE work_order_id = wo.id), 0) AS cut_qty,
		       COALESCE((SELECT SUM(quantity) FROM sewing_actuals WHERE work_order_id = wo.id), 0) AS sewn_qty,
		       COALESCE((SELECT SUM(quantity) FROM finishing_actuals WHERE work_order_id = wo.id), 0) AS finished_qty
		FROM work_orders wo
		WHERE wo.factory_id = ? AND wo.status = 'open'
		ORDER BY wo.order_no`

	progress := []model.OrderProgress{}
	if err := db.Select(&progress, q, factoryID); err != nil {
		return nil, fmt.Errorf("failed to get order progress: %w", err)
	}

	for i := range progress {
		progress[i].CutBalance = progress[i].OrderQty - progress[i].CutQty
		progress[i].SewBalance = progress[i].OrderQty - progress[i].SewnQty
		progress[i].FinishBalance = progress[i].OrderQty - progress[i].FinishedQty
	}
	return progress, nil
}

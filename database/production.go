package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"seamline/model"
)

// Table names per department. The department value is validated before it
// reaches this map, so the Sprintf queries below never see user input.
var deptTargetTables = map[model.Department]string{
	model.DeptCutting:   "cutting_targets",
	model.DeptSewing:    "sewing_targets",
	model.DeptFinishing: "finishing_targets",
}

var deptActualTables = map[model.Department]string{
	model.DeptCutting:   "cutting_actuals",
	model.DeptSewing:    "sewing_actuals",
	model.DeptFinishing: "finishing_actuals",
}

func InsertTargetInTx(tx *sqlx.Tx, dept model.Department, t model.ProductionTarget) error {
	table, ok := deptTargetTables[dept]
	if !ok {
		return fmt.Errorf("unknown department '%s'", dept)
	}

	var err error
	if dept == model.DeptSewing {
		q := fmt.Sprintf(`
			INSERT INTO %s (id, factory_id, line_id, work_order_id, work_date, stage_id, target_qty, manpower, work_hours, submitted_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
		_, err = tx.Exec(q, t.ID, t.FactoryID, t.LineID, t.WorkOrderID, t.WorkDate, t.StageID,
			t.TargetQty, t.Manpower, t.WorkHours, t.SubmittedBy)
	} else {
		q := fmt.Sprintf(`
			INSERT INTO %s (id, factory_id, line_id, work_order_id, work_date, target_qty, manpower, work_hours, submitted_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
		_, err = tx.Exec(q, t.ID, t.FactoryID, t.LineID, t.WorkOrderID, t.WorkDate,
			t.TargetQty, t.Manpower, t.WorkHours, t.SubmittedBy)
	}
	if err != nil {
		return fmt.Errorf("InsertTargetInTx (%s, Line: %s, Date: %s): %w", dept, t.LineID, t.WorkDate, err)
	}
	return nil
}

func InsertActualInTx(tx *sqlx.Tx, dept model.Department, a model.ProductionActual) error {
	table, ok := deptActualTables[dept]
	if !ok {
		return fmt.Errorf("unknown department '%s'", dept)
	}

	var err error
	switch dept {
	case model.DeptCutting:
		q := fmt.Sprintf(`
			INSERT INTO %s (id, factory_id, line_id, work_order_id, work_date, quantity, layers, remarks, submitted_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
		_, err = tx.Exec(q, a.ID, a.FactoryID, a.LineID, a.WorkOrderID, a.WorkDate,
			a.Quantity, a.Layers, a.Remarks, a.SubmittedBy)
	case model.DeptSewing:
		q := fmt.Sprintf(`
			INSERT INTO %s (id, factory_id, line_id, work_order_id, work_date, stage_id, quantity, defect_qty, blocker_type_id, blocker_minutes, remarks, submitted_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
		_, err = tx.Exec(q, a.ID, a.FactoryID, a.LineID, a.WorkOrderID, a.WorkDate, a.StageID,
			a.Quantity, a.DefectQty, a.BlockerTypeID, a.BlockerMinutes, a.Remarks, a.SubmittedBy)
	case model.DeptFinishing:
		q := fmt.Sprintf(`
			INSERT INTO %s (id, factory_id, line_id, work_order_id, work_date, quantity, packed_qty, reject_qty, remarks, submitted_by)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, table)
		_, err = tx.Exec(q, a.ID, a.FactoryID, a.LineID, a.WorkOrderID, a.WorkDate,
			a.Quantity, a.PackedQty, a.RejectQty, a.Remarks, a.SubmittedBy)
	}
	if err != nil {
		return fmt.Errorf("InsertActualInTx (%s, Line: %s, Date: %s): %w", dept, a.LineID, a.WorkDate, err)
	}
	return nil
}

// CumulativeActualQtyInTx sums a department's output for one work order up
// to and including targetDate, across all lines. For sewing the sum is
// scoped to one stage; each stage works the full order quantity. The
// running total shown on every submission form is re-derivable from the
// rows themselves.
func CumulativeActualQtyInTx(tx *sqlx.Tx, dept model.Department, workOrderID, stageID, targetDate string) (float64, error) {
	table, ok := deptActualTables[dept]
	if !ok {
		return 0, fmt.Errorf("unknown department '%s'", dept)
	}

	var total sql.NullFloat64
	q := fmt.Sprintf(`SELECT SUM(quantity) FROM %s WHERE work_order_id = ? AND work_date <= ?`, table)
	args := []interface{}{workOrderID, targetDate}
	if dept == model.DeptSewing {
		q += " AND stage_id = ?"
		args = append(args, stageID)
	}
	err := tx.Get(&total, q, args...)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to sum %s for order %s: %w", table, workOrderID, err)
	}
	return total.Float64, nil
}

// OrderActualTotalInTx sums the department's output for the whole order
// regardless of date. The order-quantity cap checks this figure, so a
// backdated submission cannot slip past rows entered for later dates.
func OrderActualTotalInTx(tx *sqlx.Tx, dept model.Department, workOrderID, stageID string) (float64, error) {
	table, ok := deptActualTables[dept]
	if !ok {
		return 0, fmt.Errorf("unknown department '%s'", dept)
	}

	var total sql.NullFloat64
	q := fmt.Sprintf(`SELECT SUM(quantity) FROM %s WHERE work_order_id = ?`, table)
	args := []interface{}{workOrderID}
	if dept == model.DeptSewing {
		q += " AND stage_id = ?"
		args = append(args, stageID)
	}
	err := tx.Get(&total, q, args...)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to total %s for order %s: %w", table, workOrderID, err)
	}
	return total.Float64, nil
}

func ListTargets(db *sqlx.DB, dept model.Department, factoryID, lineID, workDate string) ([]model.ProductionTarget, error) {
	table, ok := deptTargetTables[dept]
	if !ok {
		return nil, fmt.Errorf("unknown department '%s'", dept)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE factory_id = ? AND work_date = ?", table)
	args := []interface{}{factoryID, workDate}
	if lineID != "" {
		query += " AND line_id = ?"
		args = append(args, lineID)
	}
	query += " ORDER BY line_id"

	targets := []model.ProductionTarget{}
	if err := db.Select(&targets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return targets, nil
}

func ListActuals(db *sqlx.DB, dept model.Department, factoryID, lineID, workDate string) ([]model.ProductionActual, error) {
	table, ok := deptActualTables[dept]
	if !ok {
		return nil, fmt.Errorf("unknown department '%s'", dept)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE factory_id = ? AND work_date = ?", table)
	args := []interface{}{factoryID, workDate}
	if lineID != "" {
		query += " AND line_id = ?"
		args = append(args, lineID)
	}
	query += " ORDER BY line_id"

	actuals := []model.ProductionActual{}
	if err := db.Select(&actuals, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	return actuals, nil
}

// ListActualsForExport returns a date range for the CSV exporters.
func ListActualsForExport(db *sqlx.DB, dept model.Department, factoryID, startDate, endDate string) ([]model.ProductionActual, error) {
	table, ok := deptActualTables[dept]
	if !ok {
		return nil, fmt.Errorf("unknown department '%s'", dept)
	}

	q := fmt.Sprintf(`
		SELECT * FROM %s
		WHERE factory_id = ? AND work_date >= ? AND work_date <= ?
		ORDER BY work_date, line_id`, table)

	actuals := []model.ProductionActual{}
	if err := db.Select(&actuals, q, factoryID, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to list %s for export: %w", table, err)
	}
	return actuals, nil
}

func DeleteActualInTx(tx *sqlx.Tx, dept model.Department, factoryID, id string) error {
	table, ok := deptActualTables[dept]
	if !ok {
		return fmt.Errorf("unknown department '%s'", dept)
	}
	res, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE id = ? AND factory_id = ?", table), id, factoryID)
	if err != nil {
		return fmt.Errorf("DeleteActualInTx (%s) failed: %w", table, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission '%s' not found", id)
	}
	return nil
}

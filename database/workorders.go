package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"seamline/model"
)

func CreateWorkOrderInTx(tx *sqlx.Tx, wo model.WorkOrder) error {
	const q = `
		INSERT INTO work_orders
			(id, factory_id, order_no, style, buyer, color, size_range, order_qty, unit_price, status, delivery_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.Exec(q, wo.ID, wo.FactoryID, wo.OrderNo, wo.Style, wo.Buyer, wo.Color,
		wo.SizeRange, wo.OrderQty, wo.UnitPrice.String(), wo.Status, wo.DeliveryDate)
	if err != nil {
		return fmt.Errorf("CreateWorkOrderInTx (OrderNo: %s) failed: %w", wo.OrderNo, err)
	}
	return nil
}

func GetWorkOrderByID(db *sqlx.DB, factoryID, id string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := db.Get(&wo, "SELECT * FROM work_orders WHERE id = ? AND factory_id = ?", id, factoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get work order %s: %w", id, err)
	}
	return &wo, nil
}

func SearchWorkOrders(db *sqlx.DB, factoryID string, filters model.WorkOrderFilters) ([]model.WorkOrder, error) {
	query := "SELECT * FROM work_orders WHERE factory_id = ?"
	args := []interface{}{factoryID}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}
	if filters.Buyer != "" {
		query += " AND buyer LIKE ?"
		args = append(args, "%"+strings.TrimSpace(filters.Buyer)+"%")
	}
	if filters.Style != "" {
		query += " AND style LIKE ?"
		args = append(args, "%"+strings.TrimSpace(filters.Style)+"%")
	}
	query += " ORDER BY order_no DESC"

	var orders []model.WorkOrder
	if err := db.Select(&orders, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search work orders: %w", err)
	}
	return orders, nil
}

func SetWorkOrderStatus(db *sqlx.DB, factoryID, id, status string) error {
	res, err := db.Exec("UPDATE work_orders SET status = ? WHERE id = ? AND factory_id = ?", status, id, factoryID)
	if err != nil {
		return fmt.Errorf("SetWorkOrderStatus failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("work order '%s' not found", id)
	}
	return nil
}

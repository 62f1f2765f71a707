package database

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"seamline/model"
)

// Fixture ids reused across the database tests.
const (
	testFactoryID = "factory-1"
	testUserID    = "user-1"
	testUnitID    = "unit-1"
	testFloorID   = "floor-1"
	testLineID    = "line-1"
	testOrderID   = "order-1"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../schema.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

// seedFixture inserts one factory with a unit/floor/line hierarchy, a user
// and an open work order for 1000 pcs.
func seedFixture(t *testing.T, db *sqlx.DB) {
	t.Helper()

	stmts := []struct {
		q    string
		args []interface{}
	}{
		{"INSERT INTO factory_accounts (id, name, subdomain) VALUES (?, ?, ?)",
			[]interface{}{testFactoryID, "Test Garments Ltd", "testgarments"}},
		{"INSERT INTO profiles (id, factory_id, email, password_hash, full_name) VALUES (?, ?, ?, ?, ?)",
			[]interface{}{testUserID, testFactoryID, "op@example.com", "x", "Operator One"}},
		{"INSERT INTO units (id, factory_id, name) VALUES (?, ?, ?)",
			[]interface{}{testUnitID, testFactoryID, "Unit 1"}},
		{"INSERT INTO floors (id, factory_id, unit_id, name) VALUES (?, ?, ?, ?)",
			[]interface{}{testFloorID, testFactoryID, testUnitID, "Floor 1"}},
		{"INSERT INTO lines (id, factory_id, floor_id, name, is_active) VALUES (?, ?, ?, ?, 1)",
			[]interface{}{testLineID, testFactoryID, testFloorID, "Line 1"}},
		{"INSERT INTO work_orders (id, factory_id, order_no, style, order_qty) VALUES (?, ?, ?, ?, ?)",
			[]interface{}{testOrderID, testFactoryID, "WO00001", "Polo Shirt", 1000.0}},
	}
	for _, s := range stmts {
		_, err := db.Exec(s.q, s.args...)
		require.NoError(t, err)
	}
}

func insertActual(t *testing.T, db *sqlx.DB, dept model.Department, a model.ProductionActual) {
	t.Helper()

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	require.NoError(t, InsertActualInTx(tx, dept, a))
	require.NoError(t, tx.Commit())
}

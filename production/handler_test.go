package production

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamline/auth"
	"seamline/model"
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

	fixtures := []string{
		`INSERT INTO factory_accounts (id, name, subdomain) VALUES ('factory-1', 'Test Garments Ltd', 'testgarments')`,
		`INSERT INTO profiles (id, factory_id, email, password_hash) VALUES ('user-1', 'factory-1', 'op@example.com', 'x')`,
		`INSERT INTO units (id, factory_id, name) VALUES ('unit-1', 'factory-1', 'Unit 1')`,
		`INSERT INTO floors (id, factory_id, unit_id, name) VALUES ('floor-1', 'factory-1', 'unit-1', 'Floor 1')`,
		`INSERT INTO lines (id, factory_id, floor_id, name, is_active) VALUES ('line-1', 'factory-1', 'floor-1', 'Line 1', 1)`,
		`INSERT INTO lines (id, factory_id, floor_id, name, is_active) VALUES ('line-2', 'factory-1', 'floor-1', 'Line 2', 0)`,
		`INSERT INTO work_orders (id, factory_id, order_no, style, order_qty) VALUES ('order-1', 'factory-1', 'WO00001', 'Polo Shirt', 1000)`,
		`INSERT INTO work_orders (id, factory_id, order_no, style, order_qty, status) VALUES ('order-2', 'factory-1', 'WO00002', 'Tee', 500, 'closed')`,
	}
	for _, q := range fixtures {
		_, err := db.Exec(q)
		require.NoError(t, err)
	}
	return db
}

func doSave(t *testing.T, db *sqlx.DB, dept model.Department, roles []string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/"+string(dept)+"/actuals/save", bytes.NewReader(body))
	claims := &auth.Claims{UserID: "user-1", FactoryID: "factory-1", Roles: roles}
	req = req.WithContext(auth.WithClaims(req.Context(), claims))

	rec := httptest.NewRecorder()
	SaveActualHandler(db, dept)(rec, req)
	return rec
}

func cuttingPayload(date string, qty float64) map[string]interface{} {
	return map[string]interface{}{
		"lineId":      "line-1",
		"workOrderId": "order-1",
		"workDate":    date,
		"quantity":    qty,
	}
}

func TestSaveActualReturnsRunningTotals(t *testing.T) {
	db := newTestDB(t)
	manager := []string{model.RoleManager}

	rec := doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260110", 300))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Message string             `json:"message"`
		Totals  model.RunningTotal `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Saved", resp.Message)
	assert.Equal(t, 300.0, resp.Totals.Cumulative)
	assert.Equal(t, 700.0, resp.Totals.Balance)

	rec = doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260111", 200))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 500.0, resp.Totals.Cumulative)
	assert.Equal(t, 500.0, resp.Totals.Balance)
}

func TestSaveActualDuplicateRejected(t *testing.T) {
	db := newTestDB(t)
	manager := []string{model.RoleManager}

	rec := doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260110", 300))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260110", 100))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestSaveActualBalanceCap(t *testing.T) {
	db := newTestDB(t)
	manager := []string{model.RoleManager}

	rec := doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260110", 900))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260111", 200))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceed")

	// Filling the order exactly is fine.
	rec = doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260112", 100))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSaveActualBackdatedCountsAgainstCap(t *testing.T) {
	db := newTestDB(t)
	manager := []string{model.RoleManager}

	rec := doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260112", 900))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// An entry for an earlier date still counts the 900 already on file.
	rec = doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260110", 200))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exceed")

	var total float64
	require.NoError(t, db.Get(&total, `SELECT COALESCE(SUM(quantity), 0) FROM cutting_actuals WHERE work_order_id = 'order-1'`))
	assert.Equal(t, 900.0, total)

	// 100 backdated pieces fit; the cumulative shown is still to-date.
	rec = doSave(t, db, model.DeptCutting, manager, cuttingPayload("20260110", 100))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Totals model.RunningTotal `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.Totals.Cumulative)
}

func TestSaveActualSewingCapPerStage(t *testing.T) {
	db := newTestDB(t)
	manager := []string{model.RoleManager}

	p := cuttingPayload("20260110", 1000)
	p["stageId"] = "stage-1"
	rec := doSave(t, db, model.DeptSewing, manager, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Every stage sews the full order, so stage-2 starts from zero.
	p = cuttingPayload("20260110", 1000)
	p["stageId"] = "stage-2"
	rec = doSave(t, db, model.DeptSewing, manager, p)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	p = cuttingPayload("20260111", 1)
	p["stageId"] = "stage-2"
	rec = doSave(t, db, model.DeptSewing, manager, p)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveActualInactiveLine(t *testing.T) {
	db := newTestDB(t)

	payload := cuttingPayload("20260110", 100)
	payload["lineId"] = "line-2"
	rec := doSave(t, db, model.DeptCutting, []string{model.RoleManager}, payload)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSaveActualOperatorNeedsAssignment(t *testing.T) {
	db := newTestDB(t)
	operator := []string{model.RoleOperator}

	// user-1 has no line assignments, so every line is fair game.
	rec := doSave(t, db, model.DeptCutting, operator, cuttingPayload("20260110", 100))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Pin the user to line-2; line-1 is now off limits.
	_, err := db.Exec(`INSERT INTO user_line_assignments (user_id, line_id) VALUES ('user-1', 'line-2')`)
	require.NoError(t, err)

	rec = doSave(t, db, model.DeptCutting, operator, cuttingPayload("20260111", 100))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSaveActualClosedOrder(t *testing.T) {
	db := newTestDB(t)

	payload := cuttingPayload("20260110", 100)
	payload["workOrderId"] = "order-2"
	rec := doSave(t, db, model.DeptCutting, []string{model.RoleManager}, payload)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSaveActualBadDate(t *testing.T) {
	db := newTestDB(t)

	rec := doSave(t, db, model.DeptCutting, []string{model.RoleManager}, cuttingPayload("2026-01-10", 100))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveActualSewingRequiresStage(t *testing.T) {
	db := newTestDB(t)

	rec := doSave(t, db, model.DeptSewing, []string{model.RoleManager}, cuttingPayload("20260110", 100))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "stageId")
}

func TestSaveActualNegativeQuantity(t *testing.T) {
	db := newTestDB(t)

	rec := doSave(t, db, model.DeptCutting, []string{model.RoleManager}, cuttingPayload("20260110", -5))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

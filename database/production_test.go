package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamline/model"
)

func cuttingActual(id, date string, qty float64) model.ProductionActual {
	return model.ProductionActual{
		ID:          id,
		FactoryID:   testFactoryID,
		LineID:      testLineID,
		WorkOrderID: testOrderID,
		WorkDate:    date,
		Quantity:    qty,
		SubmittedBy: testUserID,
	}
}

func TestCumulativeActualQtyInTx(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)

	insertActual(t, db, model.DeptCutting, cuttingActual("a1", "20260110", 100))
	insertActual(t, db, model.DeptCutting, cuttingActual("a2", "20260111", 150))
	insertActual(t, db, model.DeptCutting, cuttingActual("a3", "20260115", 200))

	tests := []struct {
		targetDate string
		want       float64
	}{
		{"20260109", 0},
		{"20260110", 100},
		{"20260111", 250},
		{"20260114", 250},
		{"20260120", 450},
	}
	for _, tt := range tests {
		inTx(t, db, func(tx *sqlx.Tx) {
			got, err := CumulativeActualQtyInTx(tx, model.DeptCutting, testOrderID, "", tt.targetDate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "up to %s", tt.targetDate)
		})
	}

	// The full-order total ignores the date bound entirely.
	inTx(t, db, func(tx *sqlx.Tx) {
		got, err := OrderActualTotalInTx(tx, model.DeptCutting, testOrderID, "")
		require.NoError(t, err)
		assert.Equal(t, 450.0, got)
	})
}

func TestSewingSumsAreScopedToStage(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)

	a := cuttingActual("s1", "20260110", 400)
	a.StageID = "stage-1"
	insertActual(t, db, model.DeptSewing, a)

	b := cuttingActual("s2", "20260111", 250)
	b.StageID = "stage-2"
	insertActual(t, db, model.DeptSewing, b)

	inTx(t, db, func(tx *sqlx.Tx) {
		got, err := CumulativeActualQtyInTx(tx, model.DeptSewing, testOrderID, "stage-1", "20260131")
		require.NoError(t, err)
		assert.Equal(t, 400.0, got)

		got, err = OrderActualTotalInTx(tx, model.DeptSewing, testOrderID, "stage-2")
		require.NoError(t, err)
		assert.Equal(t, 250.0, got)
	})
}

func TestCumulativeActualQtyIgnoresOtherDepartments(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)

	insertActual(t, db, model.DeptCutting, cuttingActual("a1", "20260110", 100))
	a := cuttingActual("a2", "20260110", 70)
	insertActual(t, db, model.DeptFinishing, a)

	inTx(t, db, func(tx *sqlx.Tx) {
		got, err := CumulativeActualQtyInTx(tx, model.DeptFinishing, testOrderID, "", "20260131")
		require.NoError(t, err)
		assert.Equal(t, 70.0, got)
	})
}

func TestDuplicateActualIsUniqueViolation(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)

	insertActual(t, db, model.DeptCutting, cuttingActual("a1", "20260110", 100))

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	err = InsertActualInTx(tx, model.DeptCutting, cuttingActual("a2", "20260110", 50))
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestSewingDuplicateAllowedOnDifferentStage(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)

	a := cuttingActual("s1", "20260110", 100)
	a.StageID = "stage-1"
	insertActual(t, db, model.DeptSewing, a)

	b := cuttingActual("s2", "20260110", 80)
	b.StageID = "stage-2"
	insertActual(t, db, model.DeptSewing, b)

	c := cuttingActual("s3", "20260110", 60)
	c.StageID = "stage-1"
	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	err = InsertActualInTx(tx, model.DeptSewing, c)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestDeleteActualInTx(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)

	insertActual(t, db, model.DeptCutting, cuttingActual("a1", "20260110", 100))

	inTx(t, db, func(tx *sqlx.Tx) {
		require.NoError(t, DeleteActualInTx(tx, model.DeptCutting, testFactoryID, "a1"))
	})

	inTx(t, db, func(tx *sqlx.Tx) {
		got, err := CumulativeActualQtyInTx(tx, model.DeptCutting, testOrderID, "", "20260131")
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})
}

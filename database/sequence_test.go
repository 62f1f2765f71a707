package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTx(t *testing.T, db *sqlx.DB, fn func(tx *sqlx.Tx)) {
	t.Helper()
	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()
	fn(tx)
	require.NoError(t, tx.Commit())
}

func TestNextSequenceInTx(t *testing.T) {
	db := newTestDB(t)

	inTx(t, db, func(tx *sqlx.Tx) {
		code, err := NextSequenceInTx(tx, "WO", "WO", 5)
		require.NoError(t, err)
		assert.Equal(t, "WO00001", code)

		code, err = NextSequenceInTx(tx, "WO", "WO", 5)
		require.NoError(t, err)
		assert.Equal(t, "WO00002", code)

		// Counters are independent.
		code, err = NextSequenceInTx(tx, "BC", "BC", 5)
		require.NoError(t, err)
		assert.Equal(t, "BC00001", code)
	})
}

func TestNextSequenceInTxUnknownName(t *testing.T) {
	db := newTestDB(t)

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = NextSequenceInTx(tx, "XX", "XX", 5)
	assert.Error(t, err)
}

func TestInitializeSequenceFromMaxOrderNo(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)

	_, err := db.Exec("INSERT INTO work_orders (id, factory_id, order_no, style, order_qty) VALUES ('order-2', ?, 'WO00042', 'Tee', 500)", testFactoryID)
	require.NoError(t, err)

	inTx(t, db, func(tx *sqlx.Tx) {
		require.NoError(t, InitializeSequenceFromMaxOrderNo(tx))
	})

	inTx(t, db, func(tx *sqlx.Tx) {
		code, err := NextSequenceInTx(tx, "WO", "WO", 5)
		require.NoError(t, err)
		assert.Equal(t, "WO00043", code)
	})
}

func TestInitializeSequenceFromMaxOrderNoEmptyTable(t *testing.T) {
	db := newTestDB(t)

	inTx(t, db, func(tx *sqlx.Tx) {
		require.NoError(t, InitializeSequenceFromMaxOrderNo(tx))
	})

	inTx(t, db, func(tx *sqlx.Tx) {
		code, err := NextSequenceInTx(tx, "WO", "WO", 5)
		require.NoError(t, err)
		assert.Equal(t, "WO00001", code)
	})
}

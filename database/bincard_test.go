package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamline/model"
)

func seedBinCard(t *testing.T, db *sqlx.DB) {
	t.Helper()

	inTx(t, db, func(tx *sqlx.Tx) {
		require.NoError(t, CreateBinCardInTx(tx, model.BinCard{
			ID:           "card-1",
			FactoryID:    testFactoryID,
			CardNo:       "BC00001",
			WorkOrderID:  testOrderID,
			MaterialName: "Grey Fabric",
			UnitName:     "yds",
		}))
	})
}

func addTxn(t *testing.T, db *sqlx.DB, id, date string, flag int, qty float64) {
	t.Helper()

	inTx(t, db, func(tx *sqlx.Tx) {
		require.NoError(t, InsertBinCardTransactionInTx(tx, model.BinCardTransaction{
			ID:         id,
			BinCardID:  "card-1",
			TxnDate:    date,
			Flag:       flag,
			Quantity:   qty,
			RecordedBy: testUserID,
		}))
	})
}

func TestBinCardBalanceInTx(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	seedBinCard(t, db)

	addTxn(t, db, "t1", "20260110", model.BinTxnReceive, 500)
	addTxn(t, db, "t2", "20260112", model.BinTxnIssue, 120)
	addTxn(t, db, "t3", "20260115", model.BinTxnReceive, 300)

	tests := []struct {
		date string
		want float64
	}{
		{"20260109", 0},
		{"20260110", 500},
		{"20260112", 380},
		{"20260114", 380},
		{"20260120", 680},
	}
	for _, tt := range tests {
		inTx(t, db, func(tx *sqlx.Tx) {
			got, err := BinCardBalanceInTx(tx, "card-1", tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "balance up to %s", tt.date)
		})
	}
}

func TestBinCardMinBalanceFromInTx(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	seedBinCard(t, db)

	addTxn(t, db, "t1", "20260110", model.BinTxnReceive, 500)
	addTxn(t, db, "t2", "20260112", model.BinTxnIssue, 450)
	addTxn(t, db, "t3", "20260115", model.BinTxnReceive, 300)

	// The dip to 50 on the 12th caps what an earlier-dated issue may take.
	tests := []struct {
		fromDate string
		want     float64
	}{
		{"20260109", 0},
		{"20260110", 50},
		{"20260111", 50},
		{"20260112", 50},
		{"20260115", 350},
		{"20260120", 350},
	}
	for _, tt := range tests {
		inTx(t, db, func(tx *sqlx.Tx) {
			got, err := BinCardMinBalanceFromInTx(tx, "card-1", tt.fromDate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "minimum from %s", tt.fromDate)
		})
	}
}

func TestGetBinCardLedger(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	seedBinCard(t, db)

	addTxn(t, db, "t1", "20260110", model.BinTxnReceive, 500)
	addTxn(t, db, "t2", "20260112", model.BinTxnIssue, 120)
	addTxn(t, db, "t3", "20260115", model.BinTxnIssue, 80)

	ledger, err := GetBinCardLedger(db, "card-1")
	require.NoError(t, err)
	require.Len(t, ledger, 3)

	assert.Equal(t, 500.0, ledger[0].Received)
	assert.Equal(t, 500.0, ledger[0].Balance)

	assert.Equal(t, 120.0, ledger[1].Issued)
	assert.Equal(t, 0.0, ledger[1].Received)
	assert.Equal(t, 380.0, ledger[1].Balance)

	assert.Equal(t, 300.0, ledger[2].Balance)
}

func TestDuplicateMaterialOnSameOrder(t *testing.T) {
	db := newTestDB(t)
	seedFixture(t, db)
	seedBinCard(t, db)

	tx, err := db.Beginx()
	require.NoError(t, err)
	defer tx.Rollback()

	err = CreateBinCardInTx(tx, model.BinCard{
		ID:           "card-2",
		FactoryID:    testFactoryID,
		CardNo:       "BC00002",
		WorkOrderID:  testOrderID,
		MaterialName: "Grey Fabric",
		UnitName:     "yds",
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

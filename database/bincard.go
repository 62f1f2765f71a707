package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"seamline/model"
)

func signedQty(flag int, qty float64) float64 {
	switch flag {
	case model.BinTxnReceive:
		return qty
	case model.BinTxnIssue:
		return -qty
	default:
		return 0
	}
}

func CreateBinCardInTx(tx *sqlx.Tx, c model.BinCard) error {
	const q = `
		INSERT INTO storage_bin_cards (id, factory_id, card_no, work_order_id, material_name, unit_name)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := tx.Exec(q, c.ID, c.FactoryID, c.CardNo, c.WorkOrderID, c.MaterialName, c.UnitName)
	if err != nil {
		return fmt.Errorf("CreateBinCardInTx (CardNo: %s) failed: %w", c.CardNo, err)
	}
	return nil
}

func GetBinCardByID(db *sqlx.DB, factoryID, id string) (*model.BinCard, error) {
	var c model.BinCard
	err := db.Get(&c, "SELECT * FROM storage_bin_cards WHERE id = ? AND factory_id = ?", id, factoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get bin card %s: %w", id, err)
	}
	return &c, nil
}

func GetBinCardsForFactory(db *sqlx.DB, factoryID string) ([]model.BinCard, error) {
	var cards []model.BinCard
	err := db.Select(&cards, "SELECT * FROM storage_bin_cards WHERE factory_id = ? ORDER BY card_no", factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bin cards: %w", err)
	}
	return cards, nil
}

func InsertBinCardTransactionInTx(tx *sqlx.Tx, t model.BinCardTransaction) error {
	const q = `
		INSERT INTO bin_card_transactions (id, bin_card_id, txn_date, flag, quantity, challan_no, remarks, recorded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.Exec(q, t.ID, t.BinCardID, t.TxnDate, t.Flag, t.Quantity, t.ChallanNo, t.Remarks, t.RecordedBy)
	if err != nil {
		return fmt.Errorf("InsertBinCardTransactionInTx (Card: %s) failed: %w", t.BinCardID, err)
	}
	return nil
}

// BinCardBalanceInTx is the balance after applying every transaction up to
// and including targetDate. There is no snapshot row to reconcile against;
// the transaction log is the single source of truth.
func BinCardBalanceInTx(tx *sqlx.Tx, binCardID, targetDate string) (float64, error) {
	var balance sql.NullFloat64
	const q = `
		SELECT SUM(CASE WHEN flag = 1 THEN quantity WHEN flag = 2 THEN -quantity ELSE 0 END)
		FROM bin_card_transactions
		WHERE bin_card_id = ? AND txn_date <= ?`
	err := tx.Get(&balance, q, binCardID, targetDate)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("failed to compute balance for bin card %s: %w", binCardID, err)
	}
	return balance.Float64, nil
}

// BinCardMinBalanceFromInTx is the lowest running balance the card reaches
// at fromDate or any point after it. An issue dated fromDate reduces every
// later balance too, so its quantity must not exceed this minimum or some
// row of the ledger would go negative.
func BinCardMinBalanceFromInTx(tx *sqlx.Tx, binCardID, fromDate string) (float64, error) {
	var txns []model.BinCardTransaction
	const q = `
		SELECT * FROM bin_card_transactions
		WHERE bin_card_id = ?
		ORDER BY txn_date, created_at, id`
	if err := tx.Select(&txns, q, binCardID); err != nil {
		return 0, fmt.Errorf("failed to load transactions for bin card %s: %w", binCardID, err)
	}

	var balance, minBalance float64
	for _, t := range txns {
		balance += signedQty(t.Flag, t.Quantity)
		if t.TxnDate <= fromDate {
			minBalance = balance
		} else if balance < minBalance {
			minBalance = balance
		}
	}
	return minBalance, nil
}

// GetBinCardLedger returns the card's transactions in date order with the
// running balance recomputed row by row.
func GetBinCardLedger(db *sqlx.DB, binCardID string) ([]model.LedgerRow, error) {
	var txns []model.BinCardTransaction
	const q = `
		SELECT * FROM bin_card_transactions
		WHERE bin_card_id = ?
		ORDER BY txn_date, created_at, id`
	if err := db.Select(&txns, q, binCardID); err != nil {
		return nil, fmt.Errorf("failed to get ledger for bin card %s: %w", binCardID, err)
	}

	ledger := make([]model.LedgerRow, 0, len(txns))
	var balance float64
	for _, t := range txns {
		balance += signedQty(t.Flag, t.Quantity)
		row := model.LedgerRow{BinCardTransaction: t, Balance: balance}
		switch t.Flag {
		case model.BinTxnReceive:
			row.Received = t.Quantity
		case model.BinTxnIssue:
			row.Issued = t.Quantity
		}
		ledger = append(ledger, row)
	}
	return ledger, nil
}

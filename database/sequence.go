package database

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

// NextSequenceInTx advances a named counter and returns the zero-padded
// code, e.g. NextSequenceInTx(tx, "WO", "WO", 5) -> "WO00042".
func NextSequenceInTx(tx *sqlx.Tx, name, prefix string, padding int) (string, error) {
	var lastNo int
	err := tx.Get(&lastNo, "SELECT last_no FROM code_sequences WHERE name = ?", name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("sequence '%s' not found", name)
		}
		return "", fmt.Errorf("failed to get sequence '%s': %w", name, err)
	}

	newNo := lastNo + 1
	_, err = tx.Exec(`UPDATE code_sequences SET last_no = ? WHERE name = ?`, newNo, name)
	if err != nil {
		return "", fmt.Errorf("failed to update sequence '%s': %w", name, err)
	}

	format := fmt.Sprintf("%s%%0%dd", prefix, padding)
	return fmt.Sprintf(format, newNo), nil
}

// InitializeSequenceFromMaxOrderNo resyncs the 'WO' counter with the
// highest order number already on file. Run once at startup so restored
// databases do not hand out duplicate numbers.
func InitializeSequenceFromMaxOrderNo(tx *sqlx.Tx) error {
	var maxNo sql.NullString
	err := tx.Get(&maxNo, "SELECT order_no FROM work_orders WHERE order_no LIKE 'WO%' ORDER BY order_no DESC LIMIT 1")

	maxNum := 0
	if err != nil {
		if err != sql.ErrNoRows {
			return err
		}
	}

	if maxNo.Valid && strings.HasPrefix(maxNo.String, "WO") {
		numPart := strings.TrimPrefix(maxNo.String, "WO")
		maxNum, _ = strconv.Atoi(numPart)
	}

	log.Printf("INFO: [Sequence] Setting 'WO' last_no to %d", maxNum)

	_, err = tx.Exec(`UPDATE code_sequences SET last_no = ? WHERE name = 'WO'`, maxNum)
	return err
}

// InitializeSequenceFromMaxCardNo does the same for bin card numbers.
func InitializeSequenceFromMaxCardNo(tx *sqlx.Tx) error {
	var maxNo sql.NullString
	err := tx.Get(&maxNo, "SELECT card_no FROM storage_bin_cards WHERE card_no LIKE 'BC%' ORDER BY card_no DESC LIMIT 1")

	maxNum := 0
	if err != nil {
		if err != sql.ErrNoRows {
			return err
		}
	}

	if maxNo.Valid && strings.HasPrefix(maxNo.String, "BC") {
		numPart := strings.TrimPrefix(maxNo.String, "BC")
		maxNum, _ = strconv.Atoi(numPart)
	}

	log.Printf("INFO: [Sequence] Setting 'BC' last_no to %d", maxNum)

	_, err = tx.Exec(`UPDATE code_sequences SET last_no = ? WHERE name = 'BC'`, maxNum)
	return err
}

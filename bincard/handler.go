package bincard

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"seamline/auth"
	"seamline/database"
	"seamline/i18n"
	"seamline/model"
)

var dateRegex = regexp.MustCompile(`^\d{8}$`)

type openPayload struct {
	WorkOrderID  string `json:"workOrderId"`
	MaterialName string `json:"materialName"`
	UnitName     string `json:"unitName"`
}

// OpenHandler creates a bin card for a work order's material. Card numbers
// come from the 'BC' sequence.
func OpenHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())

		var payload openPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		payload.MaterialName = strings.TrimSpace(payload.MaterialName)
		if payload.MaterialName == "" {
			http.Error(w, "Material name is required", http.StatusBadRequest)
			return
		}
		if payload.UnitName == "" {
			payload.UnitName = "pcs"
		}

		wo, err := database.GetWorkOrderByID(db, claims.FactoryID, payload.WorkOrderID)
		if err != nil {
			http.Error(w, "Failed to get work order", http.StatusInternalServerError)
			return
		}
		if wo == nil {
			http.Error(w, "Work order not found", http.StatusNotFound)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		cardNo, err := database.NextSequenceInTx(tx, "BC", "BC", 6)
		if err != nil {
			http.Error(w, "Failed to generate card number", http.StatusInternalServerError)
			return
		}

		card := model.BinCard{
			ID:           uuid.NewString(),
			FactoryID:    claims.FactoryID,
			CardNo:       cardNo,
			WorkOrderID:  payload.WorkOrderID,
			MaterialName: payload.MaterialName,
			UnitName:     payload.UnitName,
		}
		if err := database.CreateBinCardInTx(tx, card); err != nil {
			if database.IsUniqueViolation(err) {
				http.Error(w, "A bin card for this material already exists on this work order", http.StatusConflict)
				return
			}
			log.Printf("Failed to create bin card: %v", err)
			http.Error(w, "Failed to create bin card", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(card)
	}
}

// ListHandler returns the factory's bin cards.
func ListHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		cards, err := database.GetBinCardsForFactory(db, claims.FactoryID)
		if err != nil {
			http.Error(w, "Failed to list bin cards", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(cards)
	}
}

type txnPayload struct {
	BinCardID string  `json:"binCardId"`
	TxnDate   string  `json:"txnDate"`
	Flag      int     `json:"flag"`
	Quantity  float64 `json:"quantity"`
	ChallanNo string  `json:"challanNo"`
	Remarks   string  `json:"remarks"`
}

// SaveTransactionHandler records a receive or issue row. An issue that
// would drive the balance negative is rejected; the balance is always the
// sum of the transaction log, never a stored counter.
func SaveTransactionHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())
		lang := i18n.PickFromRequest(r)

		var payload txnPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if !dateRegex.MatchString(payload.TxnDate) {
			http.Error(w, "txnDate must be in YYYYMMDD format", http.StatusBadRequest)
			return
		}
		if payload.Flag != model.BinTxnReceive && payload.Flag != model.BinTxnIssue {
			http.Error(w, "flag must be 1 (receive) or 2 (issue)", http.StatusBadRequest)
			return
		}
		if payload.Quantity <= 0 {
			http.Error(w, "Quantity must be positive", http.StatusBadRequest)
			return
		}

		card, err := database.GetBinCardByID(db, claims.FactoryID, payload.BinCardID)
		if err != nil {
			http.Error(w, "Failed to get bin card", http.StatusInternalServerError)
			return
		}
		if card == nil {
			http.Error(w, "Bin card not found", http.StatusNotFound)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		balance, err := database.BinCardBalanceInTx(tx, card.ID, payload.TxnDate)
		if err != nil {
			http.Error(w, "Failed to compute balance", http.StatusInternalServerError)
			return
		}
		if payload.Flag == model.BinTxnIssue {
			// An issue lowers every balance from its date onward, so it is
			// checked against the lowest point of the remaining ledger, not
			// just the balance as of its own date.
			minBalance, err := database.BinCardMinBalanceFromInTx(tx, card.ID, payload.TxnDate)
			if err != nil {
				http.Error(w, "Failed to compute balance", http.StatusInternalServerError)
				return
			}
			if payload.Quantity > minBalance {
				http.Error(w, i18n.T(lang, "issue_exceeds_stock"), http.StatusBadRequest)
				return
			}
		}

		txn := model.BinCardTransaction{
			ID:         uuid.NewString(),
			BinCardID:  card.ID,
			TxnDate:    payload.TxnDate,
			Flag:       payload.Flag,
			Quantity:   payload.Quantity,
			ChallanNo:  strings.TrimSpace(payload.ChallanNo),
			Remarks:    payload.Remarks,
			RecordedBy: claims.UserID,
		}
		if err := database.InsertBinCardTransactionInTx(tx, txn); err != nil {
			log.Printf("Failed to save bin card transaction: %v", err)
			http.Error(w, "Failed to save transaction", http.StatusInternalServerError)
			return
		}

		newBalance := balance + txn.Quantity
		if txn.Flag == model.BinTxnIssue {
			newBalance = balance - txn.Quantity
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":     i18n.T(lang, "saved"),
			"transaction": txn,
			"balance":     newBalance,
		})
	}
}

// LedgerHandler returns a card's full ledger with running balances.
func LedgerHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		cardID := strings.TrimPrefix(r.URL.Path, "/api/bincards/ledger/")
		if cardID == "" {
			http.Error(w, "Bin card id is required", http.StatusBadRequest)
			return
		}

		card, err := database.GetBinCardByID(db, claims.FactoryID, cardID)
		if err != nil {
			http.Error(w, "Failed to get bin card", http.StatusInternalServerError)
			return
		}
		if card == nil {
			http.Error(w, "Bin card not found", http.StatusNotFound)
			return
		}

		ledger, err := database.GetBinCardLedger(db, card.ID)
		if err != nil {
			http.Error(w, "Failed to get ledger", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"card":   card,
			"ledger": ledger,
		})
	}
}

package workorder

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"seamline/auth"
	"seamline/database"
	"seamline/model"
)

type createPayload struct {
	Style        string  `json:"style"`
	Buyer        string  `json:"buyer"`
	Color        string  `json:"color"`
	SizeRange    string  `json:"sizeRange"`
	OrderQty     float64 `json:"orderQty"`
	UnitPrice    string  `json:"unitPrice"`
	DeliveryDate string  `json:"deliveryDate"`
}

// CreateHandler registers a work order. Order numbers come from the 'WO'
// sequence so they stay short and human-readable.
func CreateHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())

		var payload createPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		payload.Style = strings.TrimSpace(payload.Style)
		if payload.Style == "" {
			http.Error(w, "Style is required", http.StatusBadRequest)
			return
		}
		if payload.OrderQty <= 0 {
			http.Error(w, "Order quantity must be positive", http.StatusBadRequest)
			return
		}

		unitPrice := decimal.Zero
		if payload.UnitPrice != "" {
			var err error
			unitPrice, err = decimal.NewFromString(payload.UnitPrice)
			if err != nil || unitPrice.IsNegative() {
				http.Error(w, "Invalid unit price", http.StatusBadRequest)
				return
			}
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		orderNo, err := database.NextSequenceInTx(tx, "WO", "WO", 5)
		if err != nil {
			http.Error(w, "Failed to generate order number", http.StatusInternalServerError)
			return
		}

		wo := model.WorkOrder{
			ID:           uuid.NewString(),
			FactoryID:    claims.FactoryID,
			OrderNo:      orderNo,
			Style:        payload.Style,
			Buyer:        strings.TrimSpace(payload.Buyer),
			Color:        strings.TrimSpace(payload.Color),
			SizeRange:    strings.TrimSpace(payload.SizeRange),
			OrderQty:     payload.OrderQty,
			UnitPrice:    unitPrice,
			Status:       model.OrderStatusOpen,
			DeliveryDate: payload.DeliveryDate,
		}
		if err := database.CreateWorkOrderInTx(tx, wo); err != nil {
			log.Printf("Failed to create work order: %v", err)
			http.Error(w, "Failed to create work order", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(wo)
	}
}

// SearchHandler lists work orders filtered by status, buyer and style.
func SearchHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		q := r.URL.Query()
		filters := model.WorkOrderFilters{
			Status: q.Get("status"),
			Buyer:  q.Get("buyer"),
			Style:  q.Get("style"),
		}

		orders, err := database.SearchWorkOrders(db, claims.FactoryID, filters)
		if err != nil {
			http.Error(w, "Failed to search work orders", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(orders)
	}
}

type statusPayload struct {
	WorkOrderID string `json:"workOrderId"`
	Status      string `json:"status"`
}

// SetStatusHandler opens or closes a work order.
func SetStatusHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())

		var payload statusPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.Status != model.OrderStatusOpen && payload.Status != model.OrderStatusClosed {
			http.Error(w, "Status must be 'open' or 'closed'", http.StatusBadRequest)
			return
		}

		if err := database.SetWorkOrderStatus(db, claims.FactoryID, payload.WorkOrderID, payload.Status); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Status updated"})
	}
}

package billing

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"

	"seamline/auth"
	"seamline/database"
)

// ListPlansHandler returns the plan catalog. No auth required.
func ListPlansHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(AllPlans())
	}
}

type checkoutPayload struct {
	Tier string `json:"tier"`
}

// CreateCheckoutHandler starts a checkout session for the given tier.
func CreateCheckoutHandler(client *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if client == nil {
			http.Error(w, "Billing backend is not configured", http.StatusServiceUnavailable)
			return
		}

		var payload checkoutPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if NormalizeTier(payload.Tier) == TierTrial {
			http.Error(w, "Cannot check out the trial tier", http.StatusBadRequest)
			return
		}

		claims := auth.ClaimsFromContext(r.Context())
		session, err := client.CreateCheckout(r.Context(), claims.FactoryID, payload.Tier)
		if err != nil {
			log.Printf("create-checkout failed: %v", err)
			http.Error(w, "Failed to create checkout session", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session)
	}
}

// CheckSubscriptionHandler refreshes the factory's tier and status from the
// billing backend and stores the result.
func CheckSubscriptionHandler(db *sqlx.DB, client *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			http.Error(w, "Billing backend is not configured", http.StatusServiceUnavailable)
			return
		}

		claims := auth.ClaimsFromContext(r.Context())
		state, err := client.CheckSubscription(r.Context(), claims.FactoryID)
		if err != nil {
			log.Printf("check-subscription failed for %s: %v", claims.FactoryID, err)
			http.Error(w, "Failed to check subscription", http.StatusBadGateway)
			return
		}

		tier := NormalizeTier(state.Tier)
		if !state.Subscribed {
			tier = TierTrial
		}
		if err := database.UpdateFactorySubscription(db, claims.FactoryID, tier, state.Status); err != nil {
			log.Printf("Failed to store subscription state for %s: %v", claims.FactoryID, err)
			http.Error(w, "Failed to store subscription state", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(state)
	}
}

// CustomerPortalHandler returns the hosted billing portal URL.
func CustomerPortalHandler(client *Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if client == nil {
			http.Error(w, "Billing backend is not configured", http.StatusServiceUnavailable)
			return
		}

		claims := auth.ClaimsFromContext(r.Context())
		session, err := client.CustomerPortal(r.Context(), claims.FactoryID)
		if err != nil {
			log.Printf("customer-portal failed: %v", err)
			http.Error(w, "Failed to open customer portal", http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session)
	}
}

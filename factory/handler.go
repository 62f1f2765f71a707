package factory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"seamline/auth"
	"seamline/billing"
	"seamline/database"
	"seamline/model"
)

type namePayload struct {
	Name    string `json:"name"`
	UnitID  string `json:"unitId,omitempty"`
	FloorID string `json:"floorId,omitempty"`
	SeqNo   int    `json:"seqNo,omitempty"`
}

func decodeName(r *http.Request) (namePayload, error) {
	var payload namePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("invalid request body")
	}
	payload.Name = strings.TrimSpace(payload.Name)
	if payload.Name == "" {
		return payload, fmt.Errorf("name is required")
	}
	return payload, nil
}

func writeConflict(w http.ResponseWriter, err error, what string) bool {
	if database.IsUniqueViolation(err) {
		http.Error(w, fmt.Sprintf("A %s with that name already exists", what), http.StatusConflict)
		return true
	}
	return false
}

// UnitsHandler lists (GET) and creates (POST) units.
func UnitsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		switch r.Method {
		case http.MethodGet:
			units, err := database.GetUnitsForFactory(db, claims.FactoryID)
			if err != nil {
				http.Error(w, "Failed to get units", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(units)
		case http.MethodPost:
			payload, err := decodeName(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			unit := model.Unit{ID: uuid.NewString(), FactoryID: claims.FactoryID, Name: payload.Name}
			if err := database.CreateUnit(db, unit); err != nil {
				if writeConflict(w, err, "unit") {
					return
				}
				http.Error(w, "Failed to create unit", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(unit)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// DeleteUnitHandler removes an empty unit.
func DeleteUnitHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		id := strings.TrimPrefix(r.URL.Path, "/api/factory/units/delete/")
		if id == "" {
			http.Error(w, "Unit id is required", http.StatusBadRequest)
			return
		}
		if err := database.DeleteUnit(db, claims.FactoryID, id); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Unit deleted"})
	}
}

// FloorsHandler lists (GET) and creates (POST) floors.
func FloorsHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		switch r.Method {
		case http.MethodGet:
			floors, err := database.GetFloorsForFactory(db, claims.FactoryID)
			if err != nil {
				http.Error(w, "Failed to get floors", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(floors)
		case http.MethodPost:
			payload, err := decodeName(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if payload.UnitID == "" {
				http.Error(w, "unitId is required", http.StatusBadRequest)
				return
			}
			floor := model.Floor{ID: uuid.NewString(), FactoryID: claims.FactoryID, UnitID: payload.UnitID, Name: payload.Name}
			if err := database.CreateFloor(db, floor); err != nil {
				if writeConflict(w, err, "floor") {
					return
				}
				http.Error(w, "Failed to create floor", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(floor)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// DeleteFloorHandler removes an empty floor.
func DeleteFloorHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		id := strings.TrimPrefix(r.URL.Path, "/api/factory/floors/delete/")
		if id == "" {
			http.Error(w, "Floor id is required", http.StatusBadRequest)
			return
		}
		if err := database.DeleteFloor(db, claims.FactoryID, id); err != nil {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Floor deleted"})
	}
}

// LinesHandler lists (GET) and creates (POST) lines. New lines start
// inactive; activation is a separate, plan-gated call.
func LinesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		switch r.Method {
		case http.MethodGet:
			lines, err := database.GetLinesForFactory(db, claims.FactoryID)
			if err != nil {
				http.Error(w, "Failed to get lines", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(lines)
		case http.MethodPost:
			payload, err := decodeName(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if payload.FloorID == "" {
				http.Error(w, "floorId is required", http.StatusBadRequest)
				return
			}
			line := model.Line{ID: uuid.NewString(), FactoryID: claims.FactoryID, FloorID: payload.FloorID, Name: payload.Name}
			if err := database.CreateLine(db, line); err != nil {
				if writeConflict(w, err, "line") {
					return
				}
				http.Error(w, "Failed to create line", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(line)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

type activatePayload struct {
	LineID string `json:"lineId"`
	Active bool   `json:"active"`
}

// SetLineActiveHandler toggles a line, enforcing the plan tier's active
// line limit on activation.
func SetLineActiveHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())

		var payload activatePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		line, err := database.GetLineByID(db, claims.FactoryID, payload.LineID)
		if err != nil {
			http.Error(w, "Failed to get line", http.StatusInternalServerError)
			return
		}
		if line == nil {
			http.Error(w, "Line not found", http.StatusNotFound)
			return
		}

		if payload.Active && !line.IsActive {
			factory, err := database.GetFactoryByID(db, claims.FactoryID)
			if err != nil || factory == nil {
				http.Error(w, "Failed to get factory", http.StatusInternalServerError)
				return
			}
			activeCount, err := database.CountActiveLines(db, claims.FactoryID)
			if err != nil {
				http.Error(w, "Failed to count active lines", http.StatusInternalServerError)
				return
			}
			if !billing.CanActivateLine(factory.PlanTier, activeCount) {
				plan := billing.PlanFor(factory.PlanTier)
				http.Error(w, fmt.Sprintf("Plan '%s' allows at most %d active lines. Upgrade to activate more.",
					plan.DisplayName, plan.LineLimit), http.StatusForbidden)
				return
			}
		}

		if err := database.SetLineActive(db, claims.FactoryID, payload.LineID, payload.Active); err != nil {
			http.Error(w, "Failed to update line", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"lineId": payload.LineID, "isActive": payload.Active})
	}
}

// StagesHandler lists (GET) and creates (POST) sewing stages.
func StagesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		switch r.Method {
		case http.MethodGet:
			stages, err := database.GetStagesForFactory(db, claims.FactoryID)
			if err != nil {
				http.Error(w, "Failed to get stages", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(stages)
		case http.MethodPost:
			payload, err := decodeName(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			stage := model.Stage{ID: uuid.NewString(), FactoryID: claims.FactoryID, Name: payload.Name, SeqNo: payload.SeqNo}
			if err := database.CreateStage(db, stage); err != nil {
				if writeConflict(w, err, "stage") {
					return
				}
				http.Error(w, "Failed to create stage", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(stage)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// DeleteStageHandler removes a stage.
func DeleteStageHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		id := strings.TrimPrefix(r.URL.Path, "/api/factory/stages/delete/")
		if id == "" {
			http.Error(w, "Stage id is required", http.StatusBadRequest)
			return
		}
		if err := database.DeleteStage(db, claims.FactoryID, id); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Stage deleted"})
	}
}

// BlockerTypesHandler lists (GET) and creates (POST) blocker types.
func BlockerTypesHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		switch r.Method {
		case http.MethodGet:
			types, err := database.GetBlockerTypesForFactory(db, claims.FactoryID)
			if err != nil {
				http.Error(w, "Failed to get blocker types", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(types)
		case http.MethodPost:
			payload, err := decodeName(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			bt := model.BlockerType{ID: uuid.NewString(), FactoryID: claims.FactoryID, Name: payload.Name}
			if err := database.CreateBlockerType(db, bt); err != nil {
				if writeConflict(w, err, "blocker type") {
					return
				}
				http.Error(w, "Failed to create blocker type", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(bt)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// DeleteBlockerTypeHandler removes a blocker type.
func DeleteBlockerTypeHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		id := strings.TrimPrefix(r.URL.Path, "/api/factory/blocker_types/delete/")
		if id == "" {
			http.Error(w, "Blocker type id is required", http.StatusBadRequest)
			return
		}
		if err := database.DeleteBlockerType(db, claims.FactoryID, id); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "Blocker type deleted"})
	}
}

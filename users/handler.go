package users

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"seamline/auth"
	"seamline/config"
	"seamline/database"
	"seamline/model"
)

var validRoles = map[string]bool{
	model.RoleAdmin:    true,
	model.RoleManager:  true,
	model.RoleOperator: true,
	model.RoleViewer:   true,
}

type createPayload struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	FullName string   `json:"fullName"`
	Language string   `json:"language"`
	Roles    []string `json:"roles"`
	LineIDs  []string `json:"lineIds"`
}

// CreateUserHandler adds a user to the caller's factory with roles and
// optional line assignments, all in one transaction.
func CreateUserHandler(db *sqlx.DB) http.HandlerFunc {
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
		payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
		if payload.Email == "" {
			http.Error(w, "Email is required", http.StatusBadRequest)
			return
		}
		if len(payload.Password) < 8 {
			http.Error(w, "Password must be at least 8 characters", http.StatusBadRequest)
			return
		}
		if len(payload.Roles) == 0 {
			payload.Roles = []string{model.RoleViewer}
		}
		for _, role := range payload.Roles {
			if !validRoles[role] {
				http.Error(w, "Unknown role '"+role+"'", http.StatusBadRequest)
				return
			}
		}

		existing, err := database.GetProfileByEmail(db, claims.FactoryID, payload.Email)
		if err != nil {
			http.Error(w, "Failed to check existing user", http.StatusInternalServerError)
			return
		}
		if existing != nil {
			http.Error(w, "A user with email '"+payload.Email+"' already exists", http.StatusConflict)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		lang := payload.Language
		if lang == "" {
			lang = config.GetConfig().DefaultLanguage
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		profile := model.Profile{
			ID:           uuid.NewString(),
			FactoryID:    claims.FactoryID,
			Email:        payload.Email,
			PasswordHash: string(hash),
			FullName:     payload.FullName,
			Language:     lang,
		}
		if err := database.CreateProfileInTx(tx, profile); err != nil {
			http.Error(w, "Failed to create user", http.StatusInternalServerError)
			return
		}
		if err := database.SetRolesForUserInTx(tx, profile.ID, payload.Roles); err != nil {
			http.Error(w, "Failed to set roles", http.StatusInternalServerError)
			return
		}
		if err := database.SetLineAssignmentsInTx(tx, profile.ID, payload.LineIDs); err != nil {
			http.Error(w, "Failed to assign lines", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.UserView{Profile: profile, Roles: payload.Roles, LineIDs: payload.LineIDs})
	}
}

// ListUsersHandler returns every user in the factory with roles and lines.
func ListUsersHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())

		profiles, err := database.GetProfilesForFactory(db, claims.FactoryID)
		if err != nil {
			http.Error(w, "Failed to list users", http.StatusInternalServerError)
			return
		}

		views := make([]model.UserView, 0, len(profiles))
		for _, p := range profiles {
			roles, err := database.GetRolesForUser(db, p.ID)
			if err != nil {
				http.Error(w, "Failed to load roles", http.StatusInternalServerError)
				return
			}
			lineIDs, err := database.GetLineAssignments(db, p.ID)
			if err != nil {
				http.Error(w, "Failed to load line assignments", http.StatusInternalServerError)
				return
			}
			views = append(views, model.UserView{Profile: p, Roles: roles, LineIDs: lineIDs})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	}
}

type updatePayload struct {
	UserID  string   `json:"userId"`
	Roles   []string `json:"roles"`
	LineIDs []string `json:"lineIds"`
}

// UpdateUserHandler replaces a user's roles and line assignments.
func UpdateUserHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())

		var payload updatePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		for _, role := range payload.Roles {
			if !validRoles[role] {
				http.Error(w, "Unknown role '"+role+"'", http.StatusBadRequest)
				return
			}
		}

		target, err := database.GetProfileByID(db, payload.UserID)
		if err != nil {
			http.Error(w, "Failed to get user", http.StatusInternalServerError)
			return
		}
		if target == nil || target.FactoryID != claims.FactoryID {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		if err := database.SetRolesForUserInTx(tx, payload.UserID, payload.Roles); err != nil {
			http.Error(w, "Failed to set roles", http.StatusInternalServerError)
			return
		}
		if err := database.SetLineAssignmentsInTx(tx, payload.UserID, payload.LineIDs); err != nil {
			http.Error(w, "Failed to assign lines", http.StatusInternalServerError)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "User updated"})
	}
}

type activePayload struct {
	UserID string `json:"userId"`
	Active bool   `json:"active"`
}

// SetActiveHandler enables or disables a login. Admins cannot disable
// themselves.
func SetActiveHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		claims := auth.ClaimsFromContext(r.Context())

		var payload activePayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if payload.UserID == claims.UserID && !payload.Active {
			http.Error(w, "Cannot deactivate your own account", http.StatusBadRequest)
			return
		}

		if err := database.SetProfileActive(db, claims.FactoryID, payload.UserID, payload.Active); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"userId": payload.UserID, "isActive": payload.Active})
	}
}

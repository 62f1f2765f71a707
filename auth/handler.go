package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"seamline/config"
	"seamline/database"
	"seamline/loader"
	"seamline/model"
)

var subdomainRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,30}[a-z0-9]$`)

// 5 attempts burst, then one every 10 seconds per address.
var limiter = newLoginLimiter(rate.Every(10*time.Second), 5)

type RegisterPayload struct {
	FactoryName string `json:"factoryName"`
	Subdomain   string `json:"subdomain"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
	Language    string `json:"language"`
}

type LoginPayload struct {
	Subdomain string `json:"subdomain"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type tokenResponse struct {
	Token   string         `json:"token"`
	User    model.UserView `json:"user"`
	Factory *model.Factory `json:"factory,omitempty"`
}

// RegisterFactoryHandler creates a tenant and its first admin user in one
// transaction. New factories start on the trial tier.
func RegisterFactoryHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var payload RegisterPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		payload.Subdomain = strings.ToLower(strings.TrimSpace(payload.Subdomain))
		payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

		if payload.FactoryName == "" || payload.Email == "" {
			http.Error(w, "Factory name and email are required", http.StatusBadRequest)
			return
		}
		if !subdomainRegex.MatchString(payload.Subdomain) {
			http.Error(w, "Subdomain must be 3-32 lowercase letters, digits or hyphens", http.StatusBadRequest)
			return
		}
		if len(payload.Password) < 8 {
			http.Error(w, "Password must be at least 8 characters", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "Failed to hash password", http.StatusInternalServerError)
			return
		}

		tx, err := db.Beginx()
		if err != nil {
			http.Error(w, "Failed to start transaction", http.StatusInternalServerError)
			return
		}
		defer tx.Rollback()

		exists, err := database.CheckSubdomainExists(tx, payload.Subdomain)
		if err != nil {
			http.Error(w, "Failed to check subdomain", http.StatusInternalServerError)
			return
		}
		if exists {
			http.Error(w, "Subdomain '"+payload.Subdomain+"' is already taken", http.StatusConflict)
			return
		}

		lang := payload.Language
		if lang == "" {
			lang = config.GetConfig().DefaultLanguage
		}

		factory := model.Factory{
			ID:                 uuid.NewString(),
			Name:               payload.FactoryName,
			Subdomain:          payload.Subdomain,
			PlanTier:           "trial",
			SubscriptionStatus: "trialing",
		}
		if err := database.CreateFactoryInTx(tx, factory); err != nil {
			http.Error(w, "Failed to create factory", http.StatusInternalServerError)
			return
		}

		profile := model.Profile{
			ID:           uuid.NewString(),
			FactoryID:    factory.ID,
			Email:        payload.Email,
			PasswordHash: string(hash),
			FullName:     payload.FullName,
			Language:     lang,
		}
		if err := database.CreateProfileInTx(tx, profile); err != nil {
			http.Error(w, "Failed to create admin user", http.StatusInternalServerError)
			return
		}
		if err := database.SetRolesForUserInTx(tx, profile.ID, []string{model.RoleAdmin}); err != nil {
			http.Error(w, "Failed to assign admin role", http.StatusInternalServerError)
			return
		}

		if err := loader.SeedFactoryDefaultsInTx(tx, factory.ID); err != nil {
			log.Printf("WARN: Failed to seed defaults for factory %s: %v", factory.ID, err)
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "Failed to commit transaction", http.StatusInternalServerError)
			return
		}

		log.Printf("Registered factory '%s' (%s)", factory.Name, factory.Subdomain)
		writeTokenResponse(w, db, profile, []string{model.RoleAdmin}, &factory)
	}
}

// LoginHandler checks credentials against the tenant selected by subdomain.
func LoginHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if !limiter.allow(r) {
			http.Error(w, "Too many login attempts, try again later", http.StatusTooManyRequests)
			return
		}

		var payload LoginPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		payload.Subdomain = strings.ToLower(strings.TrimSpace(payload.Subdomain))
		payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

		profile, err := database.GetProfileByLogin(db, payload.Subdomain, payload.Email)
		if err != nil {
			log.Printf("Login lookup failed for %s@%s: %v", payload.Email, payload.Subdomain, err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
			return
		}
		if profile == nil || !profile.IsActive {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(payload.Password)); err != nil {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		roles, err := database.GetRolesForUser(db, profile.ID)
		if err != nil {
			http.Error(w, "Failed to load roles", http.StatusInternalServerError)
			return
		}

		factory, err := database.GetFactoryByID(db, profile.FactoryID)
		if err != nil {
			http.Error(w, "Failed to load factory", http.StatusInternalServerError)
			return
		}

		writeTokenResponse(w, db, *profile, roles, factory)
	}
}

// MeHandler returns the caller's profile, roles and line assignments.
func MeHandler(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())

		profile, err := database.GetProfileByID(db, claims.UserID)
		if err != nil || profile == nil {
			http.Error(w, "Profile not found", http.StatusNotFound)
			return
		}

		lineIDs, err := database.GetLineAssignments(db, claims.UserID)
		if err != nil {
			http.Error(w, "Failed to load line assignments", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(model.UserView{
			Profile: *profile,
			Roles:   claims.Roles,
			LineIDs: lineIDs,
		})
	}
}

func writeTokenResponse(w http.ResponseWriter, db *sqlx.DB, profile model.Profile, roles []string, factory *model.Factory) {
	cfg := config.GetConfig()
	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	token, err := IssueToken(cfg.JWTSecret, profile.ID, profile.FactoryID, roles, ttl)
	if err != nil {
		log.Printf("Failed to issue token for %s: %v", profile.Email, err)
		http.Error(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	lineIDs, err := database.GetLineAssignments(db, profile.ID)
	if err != nil {
		http.Error(w, "Failed to load line assignments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{
		Token: token,
		User: model.UserView{
			Profile: profile,
			Roles:   roles,
			LineIDs: lineIDs,
		},
		Factory: factory,
	})
}

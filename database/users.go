package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"seamline/model"
)

func CreateProfileInTx(tx *sqlx.Tx, p model.Profile) error {
	const q = `
		INSERT INTO profiles (id, factory_id, email, password_hash, full_name, language, is_active)
		VALUES (?, ?, ?, ?, ?, ?, 1)`
	_, err := tx.Exec(q, p.ID, p.FactoryID, p.Email, p.PasswordHash, p.FullName, p.Language)
	if err != nil {
		return fmt.Errorf("CreateProfileInTx (Email: %s) failed: %w", p.Email, err)
	}
	return nil
}

func GetProfileByEmail(db *sqlx.DB, factoryID, email string) (*model.Profile, error) {
	var p model.Profile
	err := db.Get(&p, "SELECT * FROM profiles WHERE factory_id = ? AND email = ?", factoryID, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return &p, nil
}

// GetProfileByLogin resolves a login without a factory id: the subdomain
// picks the tenant, then the email picks the profile inside it.
func GetProfileByLogin(db *sqlx.DB, subdomain, email string) (*model.Profile, error) {
	var p model.Profile
	const q = `
		SELECT p.* FROM profiles p
		JOIN factory_accounts f ON f.id = p.factory_id
		WHERE f.subdomain = ? AND p.email = ?`
	err := db.Get(&p, q, subdomain, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by login: %w", err)
	}
	return &p, nil
}

func GetProfileByID(db *sqlx.DB, id string) (*model.Profile, error) {
	var p model.Profile
	err := db.Get(&p, "SELECT * FROM profiles WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile %s: %w", id, err)
	}
	return &p, nil
}

func GetRolesForUser(db *sqlx.DB, userID string) ([]string, error) {
	var roles []string
	err := db.Select(&roles, "SELECT role FROM user_roles WHERE user_id = ? ORDER BY role", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for user %s: %w", userID, err)
	}
	return roles, nil
}

func SetRolesForUserInTx(tx *sqlx.Tx, userID string, roles []string) error {
	if _, err := tx.Exec("DELETE FROM user_roles WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear roles for user %s: %w", userID, err)
	}
	for _, role := range roles {
		if _, err := tx.Exec("INSERT INTO user_roles (user_id, role) VALUES (?, ?)", userID, role); err != nil {
			return fmt.Errorf("failed to add role '%s' for user %s: %w", role, userID, err)
		}
	}
	return nil
}

func GetLineAssignments(db *sqlx.DB, userID string) ([]string, error) {
	var lineIDs []string
	err := db.Select(&lineIDs, "SELECT line_id FROM user_line_assignments WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get line assignments for user %s: %w", userID, err)
	}
	return lineIDs, nil
}

func SetLineAssignmentsInTx(tx *sqlx.Tx, userID string, lineIDs []string) error {
	if _, err := tx.Exec("DELETE FROM user_line_assignments WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear line assignments for user %s: %w", userID, err)
	}
	for _, lineID := range lineIDs {
		if _, err := tx.Exec("INSERT INTO user_line_assignments (user_id, line_id) VALUES (?, ?)", userID, lineID); err != nil {
			return fmt.Errorf("failed to assign line %s to user %s: %w", lineID, userID, err)
		}
	}
	return nil
}

// IsUserAssignedToLine is the operator submission gate. Users with no
// assignments at all are treated as unrestricted.
func IsUserAssignedToLine(db *sqlx.DB, userID, lineID string) (bool, error) {
	var total int
	if err := db.Get(&total, "SELECT COUNT(*) FROM user_line_assignments WHERE user_id = ?", userID); err != nil {
		return false, fmt.Errorf("failed to count line assignments: %w", err)
	}
	if total == 0 {
		return true, nil
	}
	var exists int
	err := db.QueryRow("SELECT 1 FROM user_line_assignments WHERE user_id = ? AND line_id = ? LIMIT 1", userID, lineID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to check line assignment: %w", err)
	}
	return true, nil
}

func GetProfilesForFactory(db *sqlx.DB, factoryID string) ([]model.Profile, error) {
	var profiles []model.Profile
	err := db.Select(&profiles, "SELECT * FROM profiles WHERE factory_id = ? ORDER BY email", factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles for factory %s: %w", factoryID, err)
	}
	return profiles, nil
}

func SetProfileActive(db *sqlx.DB, factoryID, userID string, active bool) error {
	res, err := db.Exec("UPDATE profiles SET is_active = ? WHERE id = ? AND factory_id = ?", active, userID, factoryID)
	if err != nil {
		return fmt.Errorf("SetProfileActive failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user '%s' not found", userID)
	}
	return nil
}

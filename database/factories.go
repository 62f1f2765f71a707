package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"seamline/model"
)

func CreateFactoryInTx(tx *sqlx.Tx, f model.Factory) error {
	const q = `
		INSERT INTO factory_accounts (id, name, subdomain, plan_tier, subscription_status)
		VALUES (?, ?, ?, ?, ?)`
	_, err := tx.Exec(q, f.ID, f.Name, f.Subdomain, f.PlanTier, f.SubscriptionStatus)
	if err != nil {
		return fmt.Errorf("CreateFactoryInTx (Subdomain: %s) failed: %w", f.Subdomain, err)
	}
	return nil
}

func GetFactoryByID(db *sqlx.DB, id string) (*model.Factory, error) {
	var f model.Factory
	err := db.Get(&f, "SELECT * FROM factory_accounts WHERE id = ?", id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get factory %s: %w", id, err)
	}
	return &f, nil
}

func CheckSubdomainExists(tx *sqlx.Tx, subdomain string) (bool, error) {
	var exists int
	err := tx.QueryRow(`SELECT 1 FROM factory_accounts WHERE subdomain = ? LIMIT 1`, subdomain).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("CheckSubdomainExists failed: %w", err)
	}
	return true, nil
}

// UpdateFactorySubscription records the tier and status reported back by
// the billing backend.
func UpdateFactorySubscription(db *sqlx.DB, factoryID, planTier, status string) error {
	const q = `UPDATE factory_accounts SET plan_tier = ?, subscription_status = ? WHERE id = ?`
	res, err := db.Exec(q, planTier, status, factoryID)
	if err != nil {
		return fmt.Errorf("UpdateFactorySubscription failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("factory '%s' not found", factoryID)
	}
	return nil
}

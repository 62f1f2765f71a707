package database

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"seamline/model"
)

// Factory configuration masters: units, floors, lines, stages, blocker types.

func CreateUnit(db *sqlx.DB, u model.Unit) error {
	_, err := db.Exec("INSERT INTO units (id, factory_id, name) VALUES (?, ?, ?)", u.ID, u.FactoryID, u.Name)
	if err != nil {
		return fmt.Errorf("CreateUnit (Name: %s) failed: %w", u.Name, err)
	}
	return nil
}

func GetUnitsForFactory(db *sqlx.DB, factoryID string) ([]model.Unit, error) {
	var units []model.Unit
	err := db.Select(&units, "SELECT * FROM units WHERE factory_id = ? ORDER BY name", factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get units: %w", err)
	}
	return units, nil
}

func DeleteUnit(db *sqlx.DB, factoryID, id string) error {
	var inUse int
	err := db.QueryRow("SELECT 1 FROM floors WHERE unit_id = ? LIMIT 1", id).Scan(&inUse)
	if err == nil {
		return fmt.Errorf("unit still has floors")
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check unit usage: %w", err)
	}
	res, err := db.Exec("DELETE FROM units WHERE id = ? AND factory_id = ?", id, factoryID)
	if err != nil {
		return fmt.Errorf("DeleteUnit failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unit '%s' not found", id)
	}
	return nil
}

func CreateFloor(db *sqlx.DB, f model.Floor) error {
	_, err := db.Exec("INSERT INTO floors (id, factory_id, unit_id, name) VALUES (?, ?, ?, ?)",
		f.ID, f.FactoryID, f.UnitID, f.Name)
	if err != nil {
		return fmt.Errorf("CreateFloor (Name: %s) failed: %w", f.Name, err)
	}
	return nil
}

func GetFloorsForFactory(db *sqlx.DB, factoryID string) ([]model.Floor, error) {
	var floors []model.Floor
	err := db.Select(&floors, "SELECT * FROM floors WHERE factory_id = ? ORDER BY name", factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get floors: %w", err)
	}
	return floors, nil
}

func DeleteFloor(db *sqlx.DB, factoryID, id string) error {
	var inUse int
	err := db.QueryRow("SELECT 1 FROM lines WHERE floor_id = ? LIMIT 1", id).Scan(&inUse)
	if err == nil {
		return fmt.Errorf("floor still has lines")
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check floor usage: %w", err)
	}
	res, err := db.Exec("DELETE FROM floors WHERE id = ? AND factory_id = ?", id, factoryID)
	if err != nil {
		return fmt.Errorf("DeleteFloor failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("floor '%s' not found", id)
	}
	return nil
}

func CreateLine(db *sqlx.DB, l model.Line) error {
	_, err := db.Exec("INSERT INTO lines (id, factory_id, floor_id, name, is_active) VALUES (?, ?, ?, ?, ?)",
		l.ID, l.FactoryID, l.FloorID, l.Name, l.IsActive)
	if err != nil {
		return fmt.Errorf("CreateLine (Name: %s) failed: %w", l.Name, err)
	}
	return nil
}

func GetLinesForFactory(db *sqlx.DB, factoryID string) ([]model.Line, error) {
	var lines []model.Line
	err := db.Select(&lines, "SELECT * FROM lines WHERE factory_id = ? ORDER BY name", factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lines: %w", err)
	}
	return lines, nil
}

func GetLineByID(db *sqlx.DB, factoryID, id string) (*model.Line, error) {
	var l model.Line
	err := db.Get(&l, "SELECT * FROM lines WHERE id = ? AND factory_id = ?", id, factoryID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get line %s: %w", id, err)
	}
	return &l, nil
}

// CountActiveLines feeds the plan-tier activation gate.
func CountActiveLines(db *sqlx.DB, factoryID string) (int, error) {
	var count int
	err := db.Get(&count, "SELECT COUNT(*) FROM lines WHERE factory_id = ? AND is_active = 1", factoryID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active lines: %w", err)
	}
	return count, nil
}

func SetLineActive(db *sqlx.DB, factoryID, id string, active bool) error {
	res, err := db.Exec("UPDATE lines SET is_active = ? WHERE id = ? AND factory_id = ?", active, id, factoryID)
	if err != nil {
		return fmt.Errorf("SetLineActive failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("line '%s' not found", id)
	}
	return nil
}

func CreateStage(db *sqlx.DB, s model.Stage) error {
	_, err := db.Exec("INSERT INTO stages (id, factory_id, name, seq_no) VALUES (?, ?, ?, ?)",
		s.ID, s.FactoryID, s.Name, s.SeqNo)
	if err != nil {
		return fmt.Errorf("CreateStage (Name: %s) failed: %w", s.Name, err)
	}
	return nil
}

func GetStagesForFactory(db *sqlx.DB, factoryID string) ([]model.Stage, error) {
	var stages []model.Stage
	err := db.Select(&stages, "SELECT * FROM stages WHERE factory_id = ? ORDER BY seq_no, name", factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stages: %w", err)
	}
	return stages, nil
}

func DeleteStage(db *sqlx.DB, factoryID, id string) error {
	res, err := db.Exec("DELETE FROM stages WHERE id = ? AND factory_id = ?", id, factoryID)
	if err != nil {
		return fmt.Errorf("DeleteStage failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("stage '%s' not found", id)
	}
	return nil
}

func UpsertBlockerTypeInTx(tx *sqlx.Tx, b model.BlockerType) error {
	const q = `
		INSERT INTO blocker_types (id, factory_id, name)
		VALUES (?, ?, ?)
		ON CONFLICT(factory_id, name) DO NOTHING`
	_, err := tx.Exec(q, b.ID, b.FactoryID, b.Name)
	if err != nil {
		return fmt.Errorf("UpsertBlockerTypeInTx (Name: %s) failed: %w", b.Name, err)
	}
	return nil
}

func CreateBlockerType(db *sqlx.DB, b model.BlockerType) error {
	_, err := db.Exec("INSERT INTO blocker_types (id, factory_id, name) VALUES (?, ?, ?)",
		b.ID, b.FactoryID, b.Name)
	if err != nil {
		return fmt.Errorf("CreateBlockerType (Name: %s) failed: %w", b.Name, err)
	}
	return nil
}

func GetBlockerTypesForFactory(db *sqlx.DB, factoryID string) ([]model.BlockerType, error) {
	var types []model.BlockerType
	err := db.Select(&types, "SELECT * FROM blocker_types WHERE factory_id = ? ORDER BY name", factoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get blocker types: %w", err)
	}
	return types, nil
}

func DeleteBlockerType(db *sqlx.DB, factoryID, id string) error {
	res, err := db.Exec("DELETE FROM blocker_types WHERE id = ? AND factory_id = ?", id, factoryID)
	if err != nil {
		return fmt.Errorf("DeleteBlockerType failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("blocker type '%s' not found", id)
	}
	return nil
}

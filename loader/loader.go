package loader

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"seamline/config"
	"seamline/database"
	"seamline/model"
	"seamline/parsers"
)

// InitDatabase applies the schema and resynchronizes the code sequences
// with whatever is already on file.
func InitDatabase(db *sqlx.DB) error {
	log.Println("Applying database schema...")
	if err := applySchema(db); err != nil {
		return fmt.Errorf("failed to apply schema.sql: %w", err)
	}
	log.Println("Schema applied successfully.")

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for sequence initialization: %w", err)
	}
	defer tx.Rollback()

	if err := database.InitializeSequenceFromMaxOrderNo(tx); err != nil {
		log.Printf("WARN: Failed to initialize WO sequence: %v", err)
	}
	if err := database.InitializeSequenceFromMaxCardNo(tx); err != nil {
		log.Printf("WARN: Failed to initialize BC sequence: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sequence initialization: %w", err)
	}
	log.Println("Code sequences initialized.")

	return nil
}

func applySchema(db *sqlx.DB) error {
	schemaBytes, err := os.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("could not read schema.sql: %w", err)
	}
	_, err = db.Exec(string(schemaBytes))
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// SeedFactoryDefaultsInTx loads default stages and blocker types for a
// newly registered factory from the seed folder. Missing seed files are
// skipped; a factory can always configure these by hand.
func SeedFactoryDefaultsInTx(tx *sqlx.Tx, factoryID string) error {
	seedDir := config.GetConfig().SeedFolderPath

	stagesPath := filepath.Join(seedDir, "stages.csv")
	if file, err := os.Open(stagesPath); err == nil {
		defer file.Close()
		records, err := parsers.ParseStageSeedCSV(file)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", stagesPath, err)
		}
		for _, rec := range records {
			stage := model.Stage{ID: uuid.NewString(), FactoryID: factoryID, Name: rec.Name, SeqNo: rec.SeqNo}
			if _, err := tx.Exec(
				"INSERT INTO stages (id, factory_id, name, seq_no) VALUES (?, ?, ?, ?) ON CONFLICT(factory_id, name) DO NOTHING",
				stage.ID, stage.FactoryID, stage.Name, stage.SeqNo); err != nil {
				return fmt.Errorf("failed to seed stage '%s': %w", rec.Name, err)
			}
		}
		log.Printf("Seeded %d stages for factory %s", len(records), factoryID)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to open %s: %w", stagesPath, err)
	}

	blockersPath := filepath.Join(seedDir, "blocker_types.csv")
	if file, err := os.Open(blockersPath); err == nil {
		defer file.Close()
		names, err := parsers.ParseBlockerTypeSeedCSV(file)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", blockersPath, err)
		}
		for _, name := range names {
			bt := model.BlockerType{ID: uuid.NewString(), FactoryID: factoryID, Name: name}
			if err := database.UpsertBlockerTypeInTx(tx, bt); err != nil {
				return err
			}
		}
		log.Printf("Seeded %d blocker types for factory %s", len(names), factoryID)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to open %s: %w", blockersPath, err)
	}

	return nil
}

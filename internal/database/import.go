package database

import (
	"encoding/json"
	"fmt"
	"os"

	"platinummotors/internal/models"
)

// ImportCarsFromJSON seeds the inventory from a JSON export. It runs at most
// once per database: a metadata marker records completion so restarts do not
// duplicate rows.
func (d *Database) ImportCarsFromJSON(jsonPath string) error {
	// Check if import already completed
	var importStatus string
	err := d.db.QueryRow("SELECT value FROM database_metadata WHERE key = 'import_status'").Scan(&importStatus)
	if err == nil && importStatus == "completed" {
		fmt.Println("Import already completed, skipping...")
		return nil
	}

	file, err := os.Open(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to open import file: %w", err)
	}
	defer file.Close()

	var importData struct {
		Cars []models.Car `json:"cars"`
	}

	if err := json.NewDecoder(file).Decode(&importData); err != nil {
		return fmt.Errorf("failed to decode import JSON: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO cars (autotrader_id, sync_source, make, model, year, price, mileage,
			fuel_type, transmission, body_type, engine_size, color, doors, description,
			features, images, listing_url, registration, is_available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, car := range importData.Cars {
		if car.SyncSource == "" {
			car.SyncSource = models.SyncSourceManual
		}

		features, err := marshalStringList(car.Features)
		if err != nil {
			return err
		}
		images, err := marshalStringList(car.Images)
		if err != nil {
			return err
		}

		_, err = stmt.Exec(
			nullString(car.AutotraderID), car.SyncSource, car.Make, car.Model, car.Year,
			car.Price, car.Mileage, nullString(car.FuelType), nullString(car.Transmission),
			nullString(car.BodyType), nullString(car.EngineSize), nullString(car.Color),
			nullInt(car.Doors), nullString(car.Description), features, images,
			nullString(car.ListingURL), nullString(car.Registration), car.IsAvailable,
		)
		if err != nil {
			return fmt.Errorf("failed to insert car %s %s: %w", car.Make, car.Model, err)
		}
	}

	_, err = tx.Exec(`INSERT INTO database_metadata (key, value) VALUES ('import_status', 'completed')
		ON CONFLICT(key) DO UPDATE SET value = 'completed', updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to update import status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	fmt.Printf("Successfully imported %d cars into database\n", len(importData.Cars))
	return nil
}

package database

import (
	"database/sql"
	"fmt"
	"strings"

	"platinummotors/internal/models"
)

const carColumns = `id, autotrader_id, sync_source, make, model, year, price, mileage,
	fuel_type, transmission, body_type, engine_size, color, doors, description,
	features, images, listing_url, registration, is_available, last_synced_at,
	created_at, updated_at`

// UpsertCar inserts or updates one inventory row keyed by
// (sync_source, autotrader_id) as a single atomic statement. It reports
// whether a new row was created. Registration is never written here: the
// sync pipeline must not clobber the admin-only field.
func (d *Database) UpsertCar(car *models.Car) (bool, error) {
	features, err := marshalStringList(car.Features)
	if err != nil {
		return false, err
	}
	images, err := marshalStringList(car.Images)
	if err != nil {
		return false, err
	}

	// Existence check is only for the created/updated counters; the write
	// below is a single idempotent upsert either way.
	var existingID int
	err = d.db.QueryRow(
		`SELECT id FROM cars WHERE sync_source = ? AND autotrader_id = ?`,
		car.SyncSource, car.AutotraderID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("failed to check existing car: %w", err)
	}
	created := err == sql.ErrNoRows

	query := `
		INSERT INTO cars (autotrader_id, sync_source, make, model, year, price, mileage,
			fuel_type, transmission, body_type, engine_size, color, doors, description,
			features, images, listing_url, is_available, last_synced_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(sync_source, autotrader_id) DO UPDATE SET
			make = excluded.make,
			model = excluded.model,
			year = excluded.year,
			price = excluded.price,
			mileage = excluded.mileage,
			fuel_type = excluded.fuel_type,
			transmission = excluded.transmission,
			body_type = excluded.body_type,
			engine_size = excluded.engine_size,
			color = excluded.color,
			doors = excluded.doors,
			description = excluded.description,
			features = excluded.features,
			images = excluded.images,
			listing_url = excluded.listing_url,
			is_available = excluded.is_available,
			last_synced_at = excluded.last_synced_at,
			updated_at = excluded.updated_at
	`

	_, err = d.db.Exec(query,
		car.AutotraderID, car.SyncSource, car.Make, car.Model, car.Year, car.Price, car.Mileage,
		nullString(car.FuelType), nullString(car.Transmission), nullString(car.BodyType),
		nullString(car.EngineSize), nullString(car.Color), nullInt(car.Doors),
		nullString(car.Description), features, images, nullString(car.ListingURL),
		car.IsAvailable, car.LastSyncedAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert car %s: %w", car.AutotraderID, err)
	}

	return created, nil
}

// MarkMissingUnavailable soft-removes rows for syncSource whose external id
// is not in presentIDs. Rows are never deleted by the sync pipeline.
func (d *Database) MarkMissingUnavailable(syncSource string, presentIDs []string) (int, error) {
	query := `UPDATE cars SET is_available = FALSE, updated_at = datetime('now')
		WHERE sync_source = ? AND is_available = TRUE`
	args := []interface{}{syncSource}

	if len(presentIDs) > 0 {
		placeholders := strings.Repeat("?,", len(presentIDs))
		query += fmt.Sprintf(" AND autotrader_id NOT IN (%s)", placeholders[:len(placeholders)-1])
		for _, id := range presentIDs {
			args = append(args, id)
		}
	}

	result, err := d.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to mark missing cars unavailable: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// GetAvailableCars returns available inventory newest-first, with optional
// public search filters applied.
func (d *Database) GetAvailableCars(filters models.CarFilters) ([]*models.Car, error) {
	query := fmt.Sprintf(`SELECT %s FROM cars WHERE is_available = TRUE`, carColumns)
	args := []interface{}{}

	if filters.Make != "" {
		query += " AND make = ? COLLATE NOCASE"
		args = append(args, filters.Make)
	}
	if filters.MinPrice > 0 {
		query += " AND price >= ?"
		args = append(args, filters.MinPrice)
	}
	if filters.MaxPrice > 0 {
		query += " AND price <= ?"
		args = append(args, filters.MaxPrice)
	}
	if filters.MinMileage > 0 {
		query += " AND mileage >= ?"
		args = append(args, filters.MinMileage)
	}
	if filters.MaxMileage > 0 {
		query += " AND mileage <= ?"
		args = append(args, filters.MaxMileage)
	}

	query += " ORDER BY created_at DESC"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	return scanCars(rows)
}

// GetAllCars returns the whole inventory for the admin dashboard, including
// unavailable rows.
func (d *Database) GetAllCars() ([]*models.Car, error) {
	query := fmt.Sprintf(`SELECT %s FROM cars ORDER BY created_at DESC`, carColumns)

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	return scanCars(rows)
}

// GetCarByID retrieves a single car by its system-assigned id
func (d *Database) GetCarByID(id int) (*models.Car, error) {
	query := fmt.Sprintf(`SELECT %s FROM cars WHERE id = ?`, carColumns)

	car, err := scanCar(d.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("car not found")
		}
		return nil, fmt.Errorf("failed to get car: %w", err)
	}
	return car, nil
}

// CreateCar inserts a manually managed car through the admin path. This is
// the only write path allowed to set registration.
func (d *Database) CreateCar(car *models.Car) error {
	features, err := marshalStringList(car.Features)
	if err != nil {
		return err
	}
	images, err := marshalStringList(car.Images)
	if err != nil {
		return err
	}

	if car.SyncSource == "" {
		car.SyncSource = models.SyncSourceManual
	}

	query := `
		INSERT INTO cars (autotrader_id, sync_source, make, model, year, price, mileage,
			fuel_type, transmission, body_type, engine_size, color, doors, description,
			features, images, listing_url, registration, is_available)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := d.db.Exec(query,
		nullString(car.AutotraderID), car.SyncSource, car.Make, car.Model, car.Year,
		car.Price, car.Mileage, nullString(car.FuelType), nullString(car.Transmission),
		nullString(car.BodyType), nullString(car.EngineSize), nullString(car.Color),
		nullInt(car.Doors), nullString(car.Description), features, images,
		nullString(car.ListingURL), nullString(car.Registration), car.IsAvailable,
	)
	if err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get car ID: %w", err)
	}
	car.ID = int(id)

	return nil
}

// UpdateCar overwrites an existing car through the admin path
func (d *Database) UpdateCar(car *models.Car) error {
	features, err := marshalStringList(car.Features)
	if err != nil {
		return err
	}
	images, err := marshalStringList(car.Images)
	if err != nil {
		return err
	}

	query := `
		UPDATE cars SET make = ?, model = ?, year = ?, price = ?, mileage = ?,
			fuel_type = ?, transmission = ?, body_type = ?, engine_size = ?, color = ?,
			doors = ?, description = ?, features = ?, images = ?, listing_url = ?,
			registration = ?, is_available = ?, updated_at = datetime('now')
		WHERE id = ?
	`

	result, err := d.db.Exec(query,
		car.Make, car.Model, car.Year, car.Price, car.Mileage,
		nullString(car.FuelType), nullString(car.Transmission), nullString(car.BodyType),
		nullString(car.EngineSize), nullString(car.Color), nullInt(car.Doors),
		nullString(car.Description), features, images, nullString(car.ListingURL),
		nullString(car.Registration), car.IsAvailable, car.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update car: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("car not found")
	}

	return nil
}

// DeleteCar removes a car through the admin path. The sync pipeline never
// calls this.
func (d *Database) DeleteCar(id int) error {
	result, err := d.db.Exec(`DELETE FROM cars WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("car not found")
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCar(row rowScanner) (*models.Car, error) {
	var car models.Car
	var autotraderID, fuelType, transmission, bodyType, engineSize, color sql.NullString
	var description, listingURL, registration, features, images sql.NullString
	var doors sql.NullInt64
	var lastSyncedAt sql.NullTime

	err := row.Scan(
		&car.ID, &autotraderID, &car.SyncSource, &car.Make, &car.Model, &car.Year,
		&car.Price, &car.Mileage, &fuelType, &transmission, &bodyType, &engineSize,
		&color, &doors, &description, &features, &images, &listingURL, &registration,
		&car.IsAvailable, &lastSyncedAt, &car.CreatedAt, &car.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	car.AutotraderID = autotraderID.String
	car.FuelType = fuelType.String
	car.Transmission = transmission.String
	car.BodyType = bodyType.String
	car.EngineSize = engineSize.String
	car.Color = color.String
	car.Description = description.String
	car.ListingURL = listingURL.String
	car.Registration = registration.String
	if doors.Valid {
		car.Doors = int(doors.Int64)
	}
	if lastSyncedAt.Valid {
		car.LastSyncedAt = lastSyncedAt.Time
	}

	if car.Features, err = unmarshalStringList(features); err != nil {
		return nil, err
	}
	if car.Images, err = unmarshalStringList(images); err != nil {
		return nil, err
	}

	return &car, nil
}

func scanCars(rows *sql.Rows) ([]*models.Car, error) {
	var cars []*models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan car row: %w", err)
		}
		cars = append(cars, car)
	}
	return cars, rows.Err()
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

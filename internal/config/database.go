package config

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SetupDatabase initializes the database connection
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database
func createTables(db *sqlx.DB) error {
	// Create users table
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(50) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create auth_providers table (external identity -> internal user)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS auth_providers (
			provider VARCHAR(32) NOT NULL,
			external_id VARCHAR(255) NOT NULL,
			user_id VARCHAR(36) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (provider, external_id)
		)
	`)
	if err != nil {
		return err
	}

	// Create manufacturers table (master data)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS manufacturers (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(100) UNIQUE NOT NULL,
			name_en VARCHAR(100) NOT NULL,
			country VARCHAR(50) NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create bikes table (catalog master data)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS bikes (
			id VARCHAR(36) PRIMARY KEY,
			manufacturer_id VARCHAR(36) NOT NULL REFERENCES manufacturers(id),
			model_name VARCHAR(100) NOT NULL,
			displacement INT NOT NULL CHECK (displacement > 0),
			model_year INT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create user_bikes table (physical units).
	// serial_number is intentionally NOT unique: an ownership transfer is a
	// fresh registration of the same serial.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS user_bikes (
			id VARCHAR(36) PRIMARY KEY,
			bike_id VARCHAR(36) NOT NULL REFERENCES bikes(id),
			serial_number VARCHAR(100),
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create my_bikes table (per-user ownership ledger)
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS my_bikes (
			id VARCHAR(36) PRIMARY KEY,
			user_bike_id VARCHAR(36) NOT NULL REFERENCES user_bikes(id),
			user_id VARCHAR(36) NOT NULL REFERENCES users(id),
			nickname VARCHAR(50),
			purchase_date TIMESTAMP,
			purchase_price INT CHECK (purchase_price >= 0),
			purchase_mileage INT CHECK (purchase_mileage >= 0),
			total_mileage INT NOT NULL CHECK (total_mileage >= 0),
			owned_at TIMESTAMP NOT NULL,
			sold_at TIMESTAMP,
			own_status VARCHAR(16) NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create fuel_logs table
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS fuel_logs (
			id VARCHAR(36) PRIMARY KEY,
			my_bike_id VARCHAR(36) NOT NULL REFERENCES my_bikes(id),
			refueled_at TIMESTAMP NOT NULL,
			mileage INT NOT NULL CHECK (mileage >= 0),
			amount DOUBLE PRECISION NOT NULL CHECK (amount > 0),
			total_price INT NOT NULL CHECK (total_price >= 0),
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	// Create indexes for better performance
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_my_bikes_user_id ON my_bikes(user_id, own_status)",
		"CREATE INDEX IF NOT EXISTS idx_user_bikes_serial ON user_bikes(serial_number)",
		"CREATE INDEX IF NOT EXISTS idx_fuel_logs_my_bike ON fuel_logs(my_bike_id, refueled_at)",
		"CREATE INDEX IF NOT EXISTS idx_bikes_manufacturer ON bikes(manufacturer_id)",
	}

	for _, idx := range indexes {
		_, err = db.Exec(idx)
		if err != nil {
			log.Printf("Warning: Failed to create index: %v", err)
			// Don't return error here, indexes are not critical
		}
	}

	return nil
}

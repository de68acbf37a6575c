package db

import (
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(191) NOT NULL,
		username VARCHAR(191) NOT NULL UNIQUE,
		email VARCHAR(191) NOT NULL UNIQUE,
		phone VARCHAR(32) NOT NULL DEFAULT '',
		password_hash VARCHAR(191) NOT NULL,
		role VARCHAR(32) NOT NULL DEFAULT 'user',
		status VARCHAR(32) NOT NULL DEFAULT 'active'
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id BIGINT PRIMARY KEY,
		balance DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		CONSTRAINT chk_balance_non_negative CHECK (balance >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS rides (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		driver_account_id BIGINT NOT NULL,
		origin VARCHAR(191) NOT NULL DEFAULT '',
		destination VARCHAR(191) NOT NULL DEFAULT '',
		departs_at VARCHAR(32) NOT NULL DEFAULT '',
		seats_offered INT NOT NULL,
		price_per_seat DECIMAL(12,2) NOT NULL,
		status VARCHAR(40) NOT NULL DEFAULT 'planned',
		total_net_credits_earned DECIMAL(12,2) NOT NULL DEFAULT 0.00
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		ride_id BIGINT NOT NULL,
		passenger_account_id BIGINT NOT NULL,
		seats_booked INT NOT NULL DEFAULT 1,
		status VARCHAR(40) NOT NULL DEFAULT 'confirmed',
		confirmation_token VARCHAR(64) NOT NULL,
		token_expires_at DATETIME NOT NULL,
		credits_transferred TINYINT(1) NOT NULL DEFAULT 0,
		confirmed_at DATETIME NULL,
		UNIQUE KEY uq_booking_token (confirmation_token),
		UNIQUE KEY uq_booking_ride_passenger (ride_id, passenger_account_id)
	)`,
	`CREATE TABLE IF NOT EXISTS commission_records (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		ride_id BIGINT NOT NULL,
		passenger_id BIGINT NOT NULL,
		amount DECIMAL(12,2) NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		ride_id BIGINT NOT NULL,
		reporter_account_id BIGINT NOT NULL,
		reason TEXT,
		status VARCHAR(32) NOT NULL DEFAULT 'open',
		resolved_by BIGINT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates all tables this service owns. Safe to call on
// every startup.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

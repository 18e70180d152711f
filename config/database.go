package config

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/lib/pq"
)

func InitDB() (*sql.DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			avatar TEXT,
			totp_secret VARCHAR(512),
			totp_enabled BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			refresh_token VARCHAR(500) UNIQUE NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS friends (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL,
			created_at TIMESTAMP DEFAULT NOW(),
			UNIQUE(user_id, name)
		)`,

		`CREATE TABLE IF NOT EXISTS receipts (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			name VARCHAR(255),
			subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
			tax DOUBLE PRECISION NOT NULL DEFAULT 0,
			tip DOUBLE PRECISION NOT NULL DEFAULT 0,
			total DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_fully_assigned BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT NOW(),
			updated_at TIMESTAMP DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS participants (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			receipt_id UUID REFERENCES receipts(id) ON DELETE CASCADE,
			name VARCHAR(255) NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS items (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			receipt_id UUID REFERENCES receipts(id) ON DELETE CASCADE,
			description TEXT NOT NULL,
			quantity DOUBLE PRECISION NOT NULL DEFAULT 1,
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			is_multiplied BOOLEAN NOT NULL DEFAULT FALSE,
			position INTEGER NOT NULL DEFAULT 0
		)`,

		// Assignments ride with their item and vanish when the participant
		// they reference is removed from the split.
		`CREATE TABLE IF NOT EXISTS assignments (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			item_id UUID REFERENCES items(id) ON DELETE CASCADE,
			participant_id UUID REFERENCES participants(id) ON DELETE CASCADE,
			amount DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_receipts_user_id ON receipts(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_receipt_id ON participants(receipt_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_receipt_id ON items(receipt_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_item_id ON assignments(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_participant_id ON assignments(participant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_friends_user_id ON friends(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

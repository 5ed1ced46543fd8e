package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err = PostgresDB.Ping(); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	// Initialize tables
	if err = InitPostgresTables(); err != nil {
		return err
	}

	return nil
}

// InitPostgresTables creates all necessary tables if they don't exist
func InitPostgresTables() error {
	queries := []string{
		// Users table: patients and therapists share one row shape,
		// distinguished by role. Therapist profile columns stay NULL for
		// role='user' rows.
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			username VARCHAR(150) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			phone VARCHAR(15),
			first_name VARCHAR(150) NOT NULL DEFAULT '',
			last_name VARCHAR(150) NOT NULL DEFAULT '',
			role VARCHAR(10) NOT NULL DEFAULT 'user',
			therapist_expertise VARCHAR(300),
			therapist_experience INTEGER,
			therapist_description TEXT,
			therapist_img TEXT,
			therapist_popup_img TEXT,
			therapist_fee INTEGER,
			CONSTRAINT users_role_check CHECK (role IN ('user', 'therapist'))
		)`,

		// Refresh tokens table: opaque tokens stored hashed, rotated on use
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			token_hash VARCHAR(64) NOT NULL UNIQUE,
			expires_at TIMESTAMP NOT NULL,
			revoked BOOLEAN NOT NULL DEFAULT FALSE,
			replaced_by UUID,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Blog categories table
		`CREATE TABLE IF NOT EXISTS blog_categories (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(100) NOT NULL,
			description VARCHAR(1000),
			img TEXT
		)`,

		// Blogs table
		`CREATE TABLE IF NOT EXISTS blogs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			category_id UUID REFERENCES blog_categories(id) ON DELETE CASCADE,
			title VARCHAR(200) NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE
		)`,

		// Blog images table
		`CREATE TABLE IF NOT EXISTS blog_images (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			blog_id UUID NOT NULL REFERENCES blogs(id) ON DELETE CASCADE,
			image TEXT NOT NULL
		)`,

		// News table
		`CREATE TABLE IF NOT EXISTS news (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title VARCHAR(200) NOT NULL,
			content VARCHAR(500) NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Bookings table: rows are never hard-deleted by the API
		`CREATE TABLE IF NOT EXISTS bookings (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			patient_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			therapist_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			date DATE,
			time TIME,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			status VARCHAR(10) NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(10) NOT NULL DEFAULT 'physical',
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			receipt TEXT,
			CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'cancelled')),
			CONSTRAINT bookings_payment_check CHECK (payment_method IN ('online', 'physical'))
		)`,

		// Calculators table (self-assessment instruments, e.g. PHQ-9)
		`CREATE TABLE IF NOT EXISTS calculators (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			name VARCHAR(500) NOT NULL UNIQUE,
			description VARCHAR(1000) NOT NULL,
			sub_description VARCHAR(1000) NOT NULL DEFAULT '',
			caution VARCHAR(1000) NOT NULL DEFAULT '',
			scoring_name VARCHAR(100) NOT NULL DEFAULT '',
			leveling_name VARCHAR(100) NOT NULL DEFAULT '',
			calculation_para TEXT NOT NULL DEFAULT '',
			result_line VARCHAR(100) NOT NULL DEFAULT '',
			img TEXT
		)`,

		// Calculator questions table (multiple choice, up to 4 options)
		`CREATE TABLE IF NOT EXISTS calculator_questions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			calculator_id UUID NOT NULL REFERENCES calculators(id) ON DELETE CASCADE,
			question VARCHAR(200),
			option1 VARCHAR(200),
			option2 VARCHAR(200),
			option3 VARCHAR(200),
			option4 VARCHAR(200)
		)`,

		// Calculator results table ([min,max] score band -> label; max NULL = open-ended)
		`CREATE TABLE IF NOT EXISTS calculator_results (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			calculator_id UUID NOT NULL REFERENCES calculators(id) ON DELETE CASCADE,
			min_score INTEGER NOT NULL,
			max_score INTEGER,
			result VARCHAR(200) NOT NULL
		)`,

		// Calculator scores table: append-only history. BIGSERIAL id so
		// insertion order breaks created_at ties in the latest-score query.
		`CREATE TABLE IF NOT EXISTS calculator_scores (
			id BIGSERIAL PRIMARY KEY,
			calculator_id UUID NOT NULL REFERENCES calculators(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			score INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// Create indexes for better performance
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_token_hash ON refresh_tokens(token_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_blog_categories_name_lower ON blog_categories(LOWER(name))`,
		`CREATE INDEX IF NOT EXISTS idx_blogs_category_id ON blogs(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_blogs_created_at ON blogs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_blog_images_blog_id ON blog_images(blog_id)`,
		`CREATE INDEX IF NOT EXISTS idx_news_created_at ON news(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_patient_id ON bookings(patient_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_therapist_id ON bookings(therapist_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calculators_name ON calculators(name)`,
		`CREATE INDEX IF NOT EXISTS idx_calculator_questions_calculator_id ON calculator_questions(calculator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calculator_results_calculator_id ON calculator_results(calculator_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calculator_scores_user_calculator ON calculator_scores(user_id, calculator_id, created_at)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.Exec(query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}

package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email      TEXT        NOT NULL UNIQUE,
  username   TEXT        NOT NULL UNIQUE,
  password   TEXT        NOT NULL,
  name       TEXT        NOT NULL,
  role       TEXT        NOT NULL DEFAULT 'user',
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_sequence_case_number",
		SQL:  `CREATE SEQUENCE IF NOT EXISTS case_number_seq;`,
	},
	{
		Name: "create_table_cases",
		SQL: `CREATE TABLE IF NOT EXISTS cases (
  id                    UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  case_number           TEXT        NOT NULL UNIQUE,
  client_type           TEXT        NOT NULL,
  client_name           TEXT        NOT NULL,
  date_of_birth         TIMESTAMPTZ,
  date_of_incorporation TIMESTAMPTZ,
  country               TEXT        NOT NULL,
  nationality           TEXT,
  business_type         TEXT,
  industry              TEXT,
  source_of_wealth      TEXT,
  status                TEXT        NOT NULL DEFAULT 'pending',
  risk_score            INTEGER     CHECK (risk_score BETWEEN 1 AND 5),
  rm_id                 UUID        NOT NULL REFERENCES users(id),
  approved_at           TIMESTAMPTZ,
  approved_by           UUID        REFERENCES users(id),
  rejected_at           TIMESTAMPTZ,
  rejected_by           UUID        REFERENCES users(id),
  created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_documents",
		SQL: `CREATE TABLE IF NOT EXISTS documents (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  document_type TEXT        NOT NULL,
  file_name     TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL UNIQUE,
  file_size     BIGINT      NOT NULL CHECK (file_size >= 0),
  mime_type     TEXT        NOT NULL,
  uploaded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  case_id       UUID        NOT NULL REFERENCES cases(id) ON DELETE CASCADE
);`,
	},
	{
		Name: "create_table_ai_summaries",
		SQL: `CREATE TABLE IF NOT EXISTS ai_summaries (
  id              UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  risk_score      INTEGER     NOT NULL CHECK (risk_score BETWEEN 1 AND 5),
  summary         TEXT        NOT NULL,
  red_flags       JSONB       NOT NULL DEFAULT '[]',
  missing_info    JSONB       NOT NULL DEFAULT '[]',
  recommendation  TEXT        NOT NULL,
  processing_time INTEGER,
  model_used      TEXT,
  processed_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  case_id         UUID        NOT NULL UNIQUE REFERENCES cases(id) ON DELETE CASCADE
);`,
	},
	{
		Name: "create_index_cases_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_cases_status ON cases (status);`,
	},
	{
		Name: "create_index_cases_rm_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_cases_rm_id ON cases (rm_id);`,
	},
	{
		Name: "create_index_cases_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_cases_created_at ON cases (created_at);`,
	},
	{
		Name: "create_index_documents_case_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_case_id ON documents (case_id);`,
	},
	{
		Name: "create_index_documents_document_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_documents_document_type ON documents (document_type);`,
	},
}

// EnsureMigrated checks if the 'cases' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.cases') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	if err := seedUsers(ctx, db); err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_seed_failed",
			"status":        "error",
			"error_message": err.Error(),
			"db_host":       dbHost,
		})
		return fmt.Errorf("seed users failed: %w", err)
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

// seedUsers inserts the bootstrap admin and relationship-manager accounts
// when the users table is empty. Passwords default to "password" and are
// expected to be rotated immediately in any real deployment.
func seedUsers(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	const q = `INSERT INTO users (id, email, username, password, name, role) VALUES ($1, $2, $3, $4, $5, $6)`
	seeds := []struct {
		email, username, name, role string
	}{
		{"admin@example.com", "admin", "Admin User", "admin"},
		{"rm@example.com", "rmuser", "Relationship Manager", "user"},
	}
	for _, s := range seeds {
		if _, err := db.ExecContext(ctx, q, uuid.NewString(), s.email, s.username, string(hash), s.name, s.role); err != nil {
			return err
		}
	}
	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

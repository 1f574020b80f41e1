package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
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
  id           UUID  PRIMARY KEY DEFAULT uuid_generate_v4(),
  name         TEXT  NOT NULL,
  role         TEXT  NOT NULL DEFAULT 'viewer',
  capabilities JSONB NOT NULL DEFAULT '[]'
);`,
	},
	{
		Name: "create_table_spheres",
		SQL: `CREATE TABLE IF NOT EXISTS spheres (
  id   UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name TEXT NOT NULL UNIQUE
);`,
	},
	{
		Name: "seed_sphere_other",
		SQL:  `INSERT INTO spheres (name) VALUES ('Other') ON CONFLICT (name) DO NOTHING;`,
	},
	{
		Name: "create_table_projects",
		SQL: `CREATE TABLE IF NOT EXISTS projects (
  id   UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name TEXT NOT NULL UNIQUE
);`,
	},
	{
		Name: "create_table_assets",
		SQL: `CREATE TABLE IF NOT EXISTS assets (
  id                  UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title               TEXT        NOT NULL UNIQUE,
  description         TEXT        NOT NULL DEFAULT '',
  author_id           UUID        REFERENCES users (id) ON DELETE SET NULL,
  archive_path        TEXT        NOT NULL,
  archive_version     TEXT        NOT NULL,
  screenshots         JSONB       NOT NULL DEFAULT '[]',
  marked_for_deletion BOOLEAN     NOT NULL DEFAULT FALSE,
  marked_by           UUID,
  marked_at           TIMESTAMPTZ,
  deletion_comment    TEXT,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_asset_spheres",
		SQL: `CREATE TABLE IF NOT EXISTS asset_spheres (
  asset_id  UUID NOT NULL REFERENCES assets (id) ON DELETE CASCADE,
  sphere_id UUID NOT NULL REFERENCES spheres (id) ON DELETE CASCADE,
  PRIMARY KEY (asset_id, sphere_id)
);`,
	},
	{
		Name: "create_table_asset_projects",
		SQL: `CREATE TABLE IF NOT EXISTS asset_projects (
  asset_id   UUID NOT NULL REFERENCES assets (id) ON DELETE CASCADE,
  project_id UUID NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
  PRIMARY KEY (asset_id, project_id)
);`,
	},
	{
		Name: "create_table_asset_versions",
		SQL: `CREATE TABLE IF NOT EXISTS asset_versions (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  asset_id     UUID        NOT NULL REFERENCES assets (id) ON DELETE CASCADE,
  label        TEXT        NOT NULL,
  archive_path TEXT        NOT NULL,
  screenshots  JSONB       NOT NULL DEFAULT '[]',
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_asset_versions_asset_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_asset_versions_asset_id ON asset_versions (asset_id, created_at);`,
	},
	{
		Name: "create_table_archived_assets",
		SQL: `CREATE TABLE IF NOT EXISTS archived_assets (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  title       TEXT        NOT NULL,
  description TEXT        NOT NULL DEFAULT '',
  author_name TEXT        NOT NULL,
  screenshots JSONB       NOT NULL DEFAULT '[]',
  deleted_by  UUID        NOT NULL,
  deleted_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_archived_assets_deleted_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_archived_assets_deleted_at ON archived_assets (deleted_at);`,
	},
	{
		Name: "create_table_audit_log",
		SQL: `CREATE TABLE IF NOT EXISTS audit_log (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  action     TEXT        NOT NULL,
  actor_id   UUID        NOT NULL,
  asset_id   UUID        REFERENCES assets (id) ON DELETE SET NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_audit_log_asset_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_audit_log_asset_id ON audit_log (asset_id, created_at);`,
	},
}

// EnsureMigrated checks if the 'assets' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.assets') IS NOT NULL"
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

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

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

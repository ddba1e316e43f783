package catalogue

import "database/sql"

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS songs (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			path     TEXT NOT NULL UNIQUE,
			artist   TEXT NOT NULL,
			album    TEXT NOT NULL,
			title    TEXT NOT NULL,
			touches  INTEGER NOT NULL DEFAULT 0,
			listens  INTEGER NOT NULL DEFAULT 0,
			skips    INTEGER NOT NULL DEFAULT 0,
			loved    INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS edges (
			from_id  INTEGER NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			to_id    INTEGER NOT NULL REFERENCES songs(id) ON DELETE CASCADE,
			count    INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (from_id, to_id),
			CHECK (from_id != to_id)
		);

		CREATE INDEX IF NOT EXISTS idx_edges_from_count ON edges(from_id, count DESC, to_id ASC);
	`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, currentSchemaVersion)
	return err
}

package persistence

import (
	"database/sql"

	"playpalace/internal/tables"
)

// SaveTable upserts one table's hibernation row: member roster and the
// entire serialized game, keyed by table id.
func (db *DB) SaveTable(tableID, gameType, host, membersJSON, gameJSON, status string) error {
	_, err := db.exec(`
		INSERT INTO saved_tables (table_id, game_type, host, members_json, game_json, status)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (table_id) DO UPDATE SET
			game_type = excluded.game_type,
			host = excluded.host,
			members_json = excluded.members_json,
			game_json = excluded.game_json,
			status = excluded.status
	`, tableID, gameType, host, membersJSON, gameJSON, status)
	return err
}

// DeleteSavedTable removes one hibernation row, whether or not it exists.
func (db *DB) DeleteSavedTable(tableID string) error {
	_, err := db.exec(`DELETE FROM saved_tables WHERE table_id = ?`, tableID)
	return err
}

// LoadSavedTables returns every row saved before the last shutdown, for
// tables.TableManager to restore at startup.
func (db *DB) LoadSavedTables() ([]tables.SavedTableRow, error) {
	rows, err := db.query(`SELECT table_id, game_type, host, game_json FROM saved_tables`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tables.SavedTableRow
	for rows.Next() {
		var row tables.SavedTableRow
		if err := rows.Scan(&row.TableID, &row.GameType, &row.Host, &row.GameJSON); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoadSavedTablesFor returns every hibernated table hosted by username, for
// the "saved tables" menu.
func (db *DB) LoadSavedTablesFor(host string) ([]tables.SavedTableRow, error) {
	rows, err := db.query(`SELECT table_id, game_type, host, game_json FROM saved_tables WHERE host = ?`, host)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tables.SavedTableRow
	for rows.Next() {
		var row tables.SavedTableRow
		if err := rows.Scan(&row.TableID, &row.GameType, &row.Host, &row.GameJSON); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoadSavedTable fetches a single hibernated row by id, for restoring one
// table on request rather than the bulk startup restore.
func (db *DB) LoadSavedTable(tableID string) (tables.SavedTableRow, bool, error) {
	var row tables.SavedTableRow
	err := db.queryRow(`SELECT table_id, game_type, host, game_json FROM saved_tables WHERE table_id = ?`, tableID).
		Scan(&row.TableID, &row.GameType, &row.Host, &row.GameJSON)
	if err == sql.ErrNoRows {
		return tables.SavedTableRow{}, false, nil
	}
	if err != nil {
		return tables.SavedTableRow{}, false, err
	}
	return row, true, nil
}

package persistence

import (
	"encoding/json"

	"playpalace/internal/gameframework"
)

// SaveGameResult persists one finished game's summary and every player's
// final standing, in a single transaction.
func (db *DB) SaveGameResult(result gameframework.GameResult) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	customJSON, err := json.Marshal(result.CustomData)
	if err != nil {
		return err
	}

	res, err := tx.Exec(db.q(`
		INSERT INTO game_results (game_type, timestamp, duration_ticks, custom_data_json)
		VALUES (?, ?, ?, ?)
	`), result.GameType, result.Timestamp, result.DurationTicks, string(customJSON))
	if err != nil {
		return err
	}
	resultID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, pr := range result.PlayerResults {
		isBot := 0
		if pr.IsBot {
			isBot = 1
		}
		// PlayerResults is stored in finishing order, so its index doubles
		// as the player's 1-based rank for that game.
		if _, err := tx.Exec(db.q(`
			INSERT INTO game_result_players (game_result_id, player_id, player_name, is_bot, rank)
			VALUES (?, ?, ?, ?, ?)
		`), resultID, pr.PlayerID, pr.PlayerName, isBot, i+1); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GameResultsFor returns the most recent results for one game type, most
// recent first, reassembled into the same GameResult shape FinishGame built
// them from. The shell menus' leaderboard and personal-stats views scan
// this in memory rather than pushing aggregation into SQL, matching how
// small and infrequent these queries are compared to the tick loop.
func (db *DB) GameResultsFor(gameType string, limit int) ([]gameframework.GameResult, error) {
	rows, err := db.query(`
		SELECT id, timestamp, duration_ticks, custom_data_json
		FROM game_results
		WHERE game_type = ?
		ORDER BY id DESC
		LIMIT ?
	`, gameType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		id            int64
		timestamp     string
		durationTicks int
		customJSON    string
	}
	var base []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.timestamp, &r.durationTicks, &r.customJSON); err != nil {
			return nil, err
		}
		base = append(base, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]gameframework.GameResult, 0, len(base))
	for _, r := range base {
		players, err := db.resultPlayers(r.id)
		if err != nil {
			return nil, err
		}
		var custom map[string]any
		if r.customJSON != "" {
			_ = json.Unmarshal([]byte(r.customJSON), &custom)
		}
		if custom == nil {
			custom = map[string]any{}
		}
		out = append(out, gameframework.GameResult{
			GameType:      gameType,
			Timestamp:     r.timestamp,
			DurationTicks: r.durationTicks,
			PlayerResults: players,
			CustomData:    custom,
		})
	}
	return out, nil
}

func (db *DB) resultPlayers(resultID int64) ([]gameframework.PlayerResult, error) {
	rows, err := db.query(`
		SELECT player_id, player_name, is_bot
		FROM game_result_players
		WHERE game_result_id = ?
		ORDER BY rank ASC
	`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gameframework.PlayerResult
	for rows.Next() {
		var pr gameframework.PlayerResult
		var isBot int
		if err := rows.Scan(&pr.PlayerID, &pr.PlayerName, &isBot); err != nil {
			return nil, err
		}
		pr.IsBot = isBot != 0
		out = append(out, pr)
	}
	return out, rows.Err()
}

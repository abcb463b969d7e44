package persistence

import "database/sql"

// GetRating implements rating.Store: a missing row reports found=false so
// the engine falls back to its default prior rather than treating it as an
// error.
func (db *DB) GetRating(playerID, gameType string) (mu, sigma float64, found bool, err error) {
	row := db.queryRow(`SELECT mu, sigma FROM player_ratings WHERE player_id = ? AND game_type = ?`, playerID, gameType)
	err = row.Scan(&mu, &sigma)
	if err == sql.ErrNoRows {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return mu, sigma, true, nil
}

// SetRating implements rating.Store, upserting the (player, game type)
// rating row.
func (db *DB) SetRating(playerID, gameType string, mu, sigma float64) error {
	_, err := db.exec(`
		INSERT INTO player_ratings (player_id, game_type, mu, sigma)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (player_id, game_type) DO UPDATE SET mu = excluded.mu, sigma = excluded.sigma
	`, playerID, gameType, mu, sigma)
	return err
}

// RatingUpdater is the subset of *rating.Engine that UpdateRatings needs;
// narrowed to an interface here so this package doesn't import rating
// (avoiding persistence <-> rating <-> gameframework import ordering
// questions — the concrete engine is wired in by cmd/server).
type RatingUpdater interface {
	UpdateRatings(rankings [][]string, gameType string)
}

// GameStore adapts a *DB plus a RatingUpdater into tables.Store: the table
// manager only ever needs to ask for a rating update, never to read one.
type GameStore struct {
	*DB
	Ratings RatingUpdater
}

func (s *GameStore) UpdateRatings(rankings [][]string, gameType string) error {
	s.Ratings.UpdateRatings(rankings, gameType)
	return nil
}

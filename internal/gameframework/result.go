package gameframework

// PlayerResult records one player's identity in a finished game.
type PlayerResult struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	IsBot      bool   `json:"is_bot"`
}

// GameResult is an immutable record of a finished game, used for
// leaderboards and rating updates.
type GameResult struct {
	GameType      string         `json:"game_type"`
	Timestamp     string         `json:"timestamp"` // ISO 8601
	DurationTicks int            `json:"duration_ticks"`
	PlayerResults []PlayerResult `json:"player_results"`
	CustomData    map[string]any `json:"custom_data"`
}

// HasHumanPlayers reports whether any recorded player is not a bot. Results
// with no human players are never persisted (bot-only games generate no
// leaderboard or rating entries).
func (r GameResult) HasHumanPlayers() bool {
	for _, p := range r.PlayerResults {
		if !p.IsBot {
			return true
		}
	}
	return false
}

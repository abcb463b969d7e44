package gameframework

import "time"

// BuildDefaultResult pre-fills a GameResult with everything BaseGame knows
// (type, elapsed ticks, player identities); concrete games call this from
// their BuildGameResult() and attach their own CustomData on top.
func (g *BaseGame) BuildDefaultResult() GameResult {
	players := make([]PlayerResult, 0, len(g.Players))
	for _, p := range g.Players {
		if p.IsSpectator {
			continue
		}
		players = append(players, PlayerResult{PlayerID: p.ID, PlayerName: p.Name, IsBot: p.IsBot})
	}
	return GameResult{
		GameType:      g.Type,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		DurationTicks: g.SoundSchedulerTick,
		PlayerResults: players,
		CustomData:    make(map[string]any),
	}
}

// DefaultRankingsForRating ranks PlayerResults in the order they appear
// (the caller is expected to have already sorted PlayerResults winner
// first) as a single tier, except the winner: group 1 is the winner alone,
// group 2 is everyone else tied for second. This mirrors the common case
// where a game has one clear winner and no further distinction is worth
// the rating engine's effort; a game that cares about full standings should
// implement GetRankingsForRating itself instead of relying on this default.
func DefaultRankingsForRating(result GameResult) [][]string {
	if len(result.PlayerResults) == 0 {
		return nil
	}
	winner := []string{result.PlayerResults[0].PlayerID}
	if len(result.PlayerResults) == 1 {
		return [][]string{winner}
	}
	rest := make([]string, 0, len(result.PlayerResults)-1)
	for _, p := range result.PlayerResults[1:] {
		rest = append(rest, p.PlayerID)
	}
	return [][]string{winner, rest}
}

// FinishGame ends the game: marks it finished, builds and optionally
// announces the result, persists it (only if a human played), and pushes
// rankings to the rating engine (also only if a human played).
// showEndScreen controls only the announcement.
func (g *BaseGame) FinishGame(showEndScreen bool) GameResult {
	g.Status = "finished"
	g.GameActive = false

	var result GameResult
	if g.impl != nil {
		result = g.impl.BuildGameResult()
	} else {
		result = g.BuildDefaultResult()
	}

	if showEndScreen {
		g.showEndScreen(result)
	}

	if result.HasHumanPlayers() {
		if g.table != nil {
			g.table.PersistResult(result)
		}
		var tiers [][]string
		if g.impl != nil {
			tiers = g.impl.GetRankingsForRating(result)
		} else {
			tiers = DefaultRankingsForRating(result)
		}
		if g.table != nil {
			g.table.UpdateRatings(tiers, result.GameType)
		}
	}

	return result
}

func (g *BaseGame) showEndScreen(result GameResult) {
	for _, p := range g.Players {
		user := g.GetUser(p)
		if user == nil {
			continue
		}
		var lines []string
		if g.impl != nil {
			lines = g.impl.FormatEndScreen(result, user.GetLocale())
		}
		if lines == nil {
			lines = []string{"Game over."}
		}
		for _, line := range lines {
			user.Speak(line)
		}
	}
}

package gameframework

import (
	"fmt"
	"sort"
	"strings"
)

// Team holds a group of players sharing one score under a given team mode.
type Team struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	PlayerIDs  []string `json:"player_ids"`
	TotalScore int      `json:"total_score"`
	RoundScore int      `json:"round_score"`
}

// TeamManager holds per-game teams: total score and per-round score per
// team, under a team mode such as "individual", "2v2", "2v2v2".
type TeamManager struct {
	Mode  string  `json:"mode"`
	Teams []*Team `json:"teams"`
}

func NewTeamManager() *TeamManager {
	return &TeamManager{Mode: "individual"}
}

// GetAllTeamModes lists the team modes valid for a game whose player count
// ranges [minPlayers, maxPlayers]. "individual" is always valid; fixed-size
// team modes are offered only when the table can field at least two full
// teams of that size.
func GetAllTeamModes(minPlayers, maxPlayers int) []string {
	modes := []string{"individual"}
	for _, size := range []int{2, 3} {
		teamsPossible := maxPlayers / size
		if teamsPossible >= 2 && minPlayers >= size*2 {
			modes = append(modes, fmt.Sprintf("%dv%d", size, size))
		}
		if teamsPossible >= 3 && minPlayers >= size*3 {
			modes = append(modes, strings.Repeat(fmt.Sprintf("%dv", size), 2)+fmt.Sprintf("%d", size))
		}
	}
	return modes
}

// FormatTeamModeForDisplay renders a team mode id as a human label.
func FormatTeamModeForDisplay(mode string) string {
	if mode == "individual" {
		return "Individual"
	}
	return strings.ToUpper(mode)
}

// SetMode partitions players into teams of the given mode, in player order.
// "individual" gives every player their own team.
func (tm *TeamManager) SetMode(mode string, players []*Player) {
	tm.Mode = mode
	tm.Teams = nil

	if mode == "individual" {
		for _, p := range players {
			tm.Teams = append(tm.Teams, &Team{ID: p.ID, Name: p.Name, PlayerIDs: []string{p.ID}})
		}
		return
	}

	size := 2
	if strings.HasPrefix(mode, "3") {
		size = 3
	}

	for i := 0; i < len(players); i += size {
		end := i + size
		if end > len(players) {
			end = len(players)
		}
		group := players[i:end]
		ids := make([]string, len(group))
		names := make([]string, len(group))
		for j, p := range group {
			ids[j] = p.ID
			names[j] = p.Name
		}
		tm.Teams = append(tm.Teams, &Team{
			ID:        fmt.Sprintf("team_%d", i/size),
			Name:      strings.Join(names, " & "),
			PlayerIDs: ids,
		})
	}
}

func (tm *TeamManager) teamForPlayer(playerID string) *Team {
	for _, t := range tm.Teams {
		for _, id := range t.PlayerIDs {
			if id == playerID {
				return t
			}
		}
	}
	return nil
}

// AddScore adds amount to both the total and round score of playerID's team.
func (tm *TeamManager) AddScore(playerID string, amount int) {
	if t := tm.teamForPlayer(playerID); t != nil {
		t.TotalScore += amount
		t.RoundScore += amount
	}
}

// ResetRoundScores zeroes every team's round score, typically at round end.
func (tm *TeamManager) ResetRoundScores() {
	for _, t := range tm.Teams {
		t.RoundScore = 0
	}
}

// FormatScoresBrief renders a one-line summary, highest total first.
func (tm *TeamManager) FormatScoresBrief(locale string) string {
	ranked := tm.ranked()
	parts := make([]string, len(ranked))
	for i, t := range ranked {
		parts[i] = fmt.Sprintf("%s: %d", t.Name, t.TotalScore)
	}
	return strings.Join(parts, ", ")
}

// FormatScoresDetailed renders a "Scores:" header line, then one line per
// team, highest total first.
func (tm *TeamManager) FormatScoresDetailed(locale string) []string {
	ranked := tm.ranked()
	lines := make([]string, 0, len(ranked)+1)
	lines = append(lines, "Scores:")
	for i, t := range ranked {
		lines = append(lines, fmt.Sprintf("%d. %s: %d (this round: %d)", i+1, t.Name, t.TotalScore, t.RoundScore))
	}
	return lines
}

func (tm *TeamManager) ranked() []*Team {
	ranked := make([]*Team, len(tm.Teams))
	copy(ranked, tm.Teams)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].TotalScore > ranked[j].TotalScore })
	return ranked
}

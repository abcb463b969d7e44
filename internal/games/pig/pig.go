// Package pig implements the Pig dice game as a reference GameImpl: roll a
// six-sided die and accumulate a running turn total, or bank it into your
// score and pass the turn; rolling a 1 loses the turn's unbanked total.
// First to the winning score wins.
package pig

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"

	"playpalace/internal/gameframework"
)

const TypeID = "pig"

const (
	defaultWinningScore = 100
	minWinningScore     = 20
	maxWinningScore     = 200
	botBankThreshold    = 20 // a simple, not-optimal bot heuristic
)

// Register adds Pig to the given registry; called once from the server's
// startup wiring.
func Register(reg *gameframework.Registry) {
	reg.Register(TypeID, New, Unmarshal)
}

// options is Pig's one tunable: the score required to win.
type options struct {
	WinningScore int `json:"winning_score"`
}

func (o *options) Describe() []gameframework.OptionField {
	return []gameframework.OptionField{
		gameframework.IntOption("winning_score", "Winning score", minWinningScore, maxWinningScore,
			func() any { return o.WinningScore },
			func(v any) error {
				n, ok := v.(int)
				if !ok {
					return fmt.Errorf("winning score must be an integer")
				}
				o.WinningScore = n
				return nil
			}),
	}
}

// Game is the Pig implementation. It embeds *gameframework.BaseGame for
// every mechanism the framework already provides (turn rotation, actions,
// sound scheduling, lobby, save/restore, rating hookup) and adds only the
// rules Pig itself defines.
type Game struct {
	*gameframework.BaseGame
	Opts   *options                   `json:"options"`
	Scores map[string]*pigPlayerState `json:"scores"`
}

// pigPlayerState is the serializable per-player Pig state, keyed by the
// framework Player's id (BaseGame.Players already holds the Player values;
// Pig-specific fields live alongside, not embedded, to keep BaseGame's
// Player slice free of per-game struct types).
type pigPlayerState struct {
	Score     int `json:"score"`
	TurnTotal int `json:"turn_total"`
}

func New() gameframework.GameImpl {
	g := &Game{
		BaseGame: gameframework.NewBaseGame(TypeID),
		Opts:     &options{WinningScore: defaultWinningScore},
		Scores:   make(map[string]*pigPlayerState),
	}
	g.SetImpl(g)
	return g
}

func Unmarshal(data []byte) (gameframework.GameImpl, error) {
	if err := gameframework.MustValidJSON(data); err != nil {
		return nil, err
	}
	g := &Game{BaseGame: gameframework.NewBaseGame(TypeID)}
	if err := json.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("unmarshal pig game: %w", err)
	}
	if g.Opts == nil {
		g.Opts = &options{WinningScore: defaultWinningScore}
	}
	if g.Scores == nil {
		g.Scores = make(map[string]*pigPlayerState)
	}
	g.SetImpl(g)
	return g, nil
}

func (g *Game) GetType() string     { return TypeID }
func (g *Game) GetName() string     { return "Pig" }
func (g *Game) GetCategory() string { return "dice" }
func (g *Game) GetMinPlayers() int  { return 2 }
func (g *Game) GetMaxPlayers() int  { return 6 }

func (g *Game) GetLeaderboardTypes() map[string]string {
	return map[string]string{"wins": "Games won", "total_score": "Total banked score"}
}

// Options satisfies gameframework.GameImpl, exposing the winning-score
// field for the auto-generated options action set.
func (g *Game) Options() gameframework.OptionsProvider { return g.Opts }

func (g *Game) scoreOf(playerID string) *pigPlayerState {
	st, ok := g.Scores[playerID]
	if !ok {
		st = &pigPlayerState{}
		g.Scores[playerID] = st
	}
	return st
}

func (g *Game) OnStart() {
	g.Scores = make(map[string]*pigPlayerState)
	for _, p := range g.GetActivePlayers() {
		g.Scores[p.ID] = &pigPlayerState{}
	}
	g.PlayMusic("pig_theme")
}

func (g *Game) OnTick() {}

func (g *Game) RebuildRuntimeState() {}

func (g *Game) SetupKeybinds() {
	g.RegisterKeybind(&gameframework.Keybind{
		Name: "roll", DefaultKey: "r", Actions: []string{"pig.roll"}, State: gameframework.KeybindActive,
	})
	g.RegisterKeybind(&gameframework.Keybind{
		Name: "bank", DefaultKey: "b", Actions: []string{"pig.bank"}, State: gameframework.KeybindActive,
	})
}

// TurnActionSet offers roll/bank only to the player whose turn it is.
func (g *Game) TurnActionSet(player *gameframework.Player) *gameframework.ActionSet {
	if g.Status != "playing" || !g.IsPlayersTurn(player) {
		return nil
	}
	set := gameframework.NewActionSet("turn")
	set.Add(&gameframework.Action{ID: "pig.roll", Label: "Roll the die", HandlerID: "pig.roll"})
	set.Add(&gameframework.Action{ID: "pig.bank", Label: g.bankLabel(player), HandlerID: "pig.bank", IsEnabledID: "pig.bank"})
	g.RegisterHandler("pig.roll", func(p *gameframework.Player, value, actionID string) { g.doRoll(p) })
	g.RegisterHandler("pig.bank", func(p *gameframework.Player, value, actionID string) { g.doBank(p) })
	g.RegisterIsEnabled("pig.bank", func(p *gameframework.Player) string {
		if g.scoreOf(p.ID).TurnTotal == 0 {
			return "pig-nothing-to-bank"
		}
		return ""
	})
	return set
}

func (g *Game) bankLabel(player *gameframework.Player) string {
	return fmt.Sprintf("Bank %d points", g.scoreOf(player.ID).TurnTotal)
}

func (g *Game) doRoll(player *gameframework.Player) {
	st := g.scoreOf(player.ID)
	roll := rand.Intn(6) + 1
	g.ScheduleSound("dice_roll", 0, 1, 0, 1)

	if roll == 1 {
		lost := st.TurnTotal
		st.TurnTotal = 0
		g.BroadcastPersonalL(player, "pig-you-rolled-one", "pig-player-rolled-one",
			map[string]any{"player": player.Name, "lost": lost})
		g.AdvanceTurn()
		return
	}

	st.TurnTotal += roll
	g.BroadcastPersonalL(player, "pig-you-rolled", "pig-player-rolled",
		map[string]any{"player": player.Name, "roll": roll, "total": st.TurnTotal})
	g.RefreshMenu(player)
}

func (g *Game) doBank(player *gameframework.Player) {
	st := g.scoreOf(player.ID)
	if st.TurnTotal == 0 {
		return
	}
	st.Score += st.TurnTotal
	banked := st.TurnTotal
	st.TurnTotal = 0
	g.Teams.AddScore(player.ID, banked)

	g.BroadcastPersonalL(player, "pig-you-banked", "pig-player-banked",
		map[string]any{"player": player.Name, "banked": banked, "score": st.Score})

	if st.Score >= g.Opts.WinningScore {
		g.BroadcastL("pig-player-won", map[string]any{"player": player.Name})
		g.FinishGame(true)
		return
	}
	g.AdvanceTurn()
}

// BotThink implements a fixed-threshold strategy: keep rolling until the
// turn total reaches botBankThreshold, then bank.
func (g *Game) BotThink(player *gameframework.Player) string {
	if g.Status != "playing" || !g.IsPlayersTurn(player) {
		return ""
	}
	st := g.scoreOf(player.ID)
	if st.TurnTotal >= botBankThreshold {
		return "pig.bank"
	}
	return "pig.roll"
}

func (g *Game) BuildGameResult() gameframework.GameResult {
	result := g.BuildDefaultResult()
	sort.SliceStable(result.PlayerResults, func(i, j int) bool {
		return g.scoreOf(result.PlayerResults[i].PlayerID).Score > g.scoreOf(result.PlayerResults[j].PlayerID).Score
	})
	// final_scores/winner_name are the conventional custom_data keys the
	// leaderboard and personal-stats views read from any game's result,
	// keyed by player name (matching how a finished game only remembers
	// player identity, not which framework Player pointer it was).
	finalScores := make(map[string]any, len(result.PlayerResults))
	for _, pr := range result.PlayerResults {
		finalScores[pr.PlayerName] = g.scoreOf(pr.PlayerID).Score
	}
	result.CustomData["final_scores"] = finalScores
	if len(result.PlayerResults) > 0 {
		result.CustomData["winner_name"] = result.PlayerResults[0].PlayerName
	}
	return result
}

func (g *Game) FormatEndScreen(result gameframework.GameResult, locale string) []string {
	lines := []string{"Pig - final scores:"}
	for i, pr := range result.PlayerResults {
		lines = append(lines, fmt.Sprintf("%d. %s: %d", i+1, pr.PlayerName, g.scoreOf(pr.PlayerID).Score))
	}
	return lines
}

func (g *Game) GetRankingsForRating(result gameframework.GameResult) [][]string {
	return gameframework.DefaultRankingsForRating(result)
}

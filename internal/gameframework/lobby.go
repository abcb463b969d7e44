package gameframework

import (
	"fmt"

	"playpalace/internal/wire"
)

// Estimator runs the duration-estimation harness (see internal/estimate);
// BaseGame only needs to kick it off and poll for a result.
type Estimator interface {
	Start(gameType string, optionsSnapshot map[string]any, botCount int) (string, error)
	Poll(runID string) (done bool, medianTicks int, err error)
}

// Predictor produces the lines spoken by the "predict outcomes" action for a
// table's current active players, backed by the rating store.
type Predictor interface {
	PredictOutcomes(gameType string, players []*Player) []string
}

// SetPredictor attaches the rating-based outcome predictor.
func (g *BaseGame) SetPredictor(p Predictor) { g.predictor = p }

// EstimateState tracks an in-flight duration estimation run for this table.
type EstimateState struct {
	RunID     string `json:"run_id"`
	Requester string `json:"requester"`
}

// SetEstimator attaches the duration-estimation harness. Games run fine
// without one; the "estimate length" action simply reports it's unavailable.
func (g *BaseGame) SetEstimator(e Estimator) { g.estimator = e }

const (
	actionStartGame       = "base.start_game"
	actionAddBot          = "base.add_bot"
	actionRemoveBot       = "base.remove_bot"
	actionToggleSpectator = "base.toggle_spectator"
	actionLeaveGame       = "base.leave_game"
	actionShowActionsMenu = "base.show_actions_menu"
	actionWhoseTurn       = "base.whose_turn"
	actionCheckScores     = "base.check_scores"
	actionCheckScoresXtra = "base.check_scores_detailed"
	actionPredictOutcomes = "base.predict_outcomes"
	actionSaveTable       = "base.save_table"
	actionEstimateLength  = "base.estimate_length"
	actionSetOptionPrefix = "base.set_option."
)

// registerBaseHandlers wires every framework-owned (non-game-specific)
// action handler into the id-keyed tables. Called from InitializeLobby for a
// new table and from RestoreRuntime for a restored one.
func (g *BaseGame) registerBaseHandlers() {
	g.RegisterHandler(actionStartGame, func(player *Player, value, actionID string) { g.handleStartGame(player) })
	g.RegisterIsEnabled(actionStartGame, g.enabledStartGame)

	g.RegisterHandler(actionAddBot, func(player *Player, value, actionID string) { g.handleAddBot(player) })
	g.RegisterIsEnabled(actionAddBot, g.enabledAddBot)

	g.RegisterHandler(actionRemoveBot, func(player *Player, value, actionID string) { g.handleRemoveBot(player, value) })
	g.RegisterIsEnabled(actionRemoveBot, g.enabledRemoveBot)
	g.RegisterMenuChoices(actionRemoveBot, g.botChoices)

	g.RegisterHandler(actionToggleSpectator, func(player *Player, value, actionID string) { g.handleToggleSpectator(player) })
	g.RegisterHandler(actionLeaveGame, func(player *Player, value, actionID string) { g.handleLeaveGame(player) })

	g.RegisterHandler(actionShowActionsMenu, func(player *Player, value, actionID string) { g.ShowActionsMenu(player) })
	g.RegisterHandler(actionWhoseTurn, func(player *Player, value, actionID string) { g.handleWhoseTurn(player) })
	g.RegisterHandler(actionCheckScores, func(player *Player, value, actionID string) { g.handleCheckScores(player, false) })
	g.RegisterHandler(actionCheckScoresXtra, func(player *Player, value, actionID string) { g.handleCheckScores(player, true) })
	g.RegisterHandler(actionPredictOutcomes, func(player *Player, value, actionID string) { g.handlePredictOutcomes(player) })

	g.RegisterHandler(actionSaveTable, func(player *Player, value, actionID string) { g.handleSaveTable(player) })
	g.RegisterIsEnabled(actionSaveTable, g.enabledSaveTable)

	g.RegisterHandler(actionEstimateLength, func(player *Player, value, actionID string) { g.handleEstimateLength(player) })
	g.RegisterIsEnabled(actionEstimateLength, g.enabledEstimateLength)
}

// assembleStandardActionSets rebuilds player's full action set list in the
// canonical order: turn, lobby, options, estimate, standard. Framework-owned
// sets are generated here; the turn set is delegated to the concrete game.
func (g *BaseGame) assembleStandardActionSets(player *Player) {
	g.PlayerActionSets[player.ID] = nil

	if g.impl != nil {
		if turnSet := g.impl.TurnActionSet(player); turnSet != nil {
			g.AddActionSet(player, turnSet)
		}
	}
	g.AddActionSet(player, g.buildLobbyActionSet(player))
	g.AddActionSet(player, g.buildOptionsActionSet(player))
	g.AddActionSet(player, g.buildEstimateActionSet(player))
	g.AddActionSet(player, g.buildStandardActionSet(player))
}

// buildLobbyActionSet offers start/add-bot/remove-bot (host) and the
// spectator toggle while waiting, and the leave action to every human in any
// status.
func (g *BaseGame) buildLobbyActionSet(player *Player) *ActionSet {
	set := NewActionSet("lobby")
	if g.Status == "waiting" {
		if player.Name == g.Host && !player.IsBot {
			set.Add(&Action{ID: actionStartGame, Label: "Start game", HandlerID: actionStartGame, IsEnabledID: actionStartGame})
			set.Add(&Action{ID: actionAddBot, Label: "Add a bot", HandlerID: actionAddBot, IsEnabledID: actionAddBot})
			set.Add(&Action{
				ID: actionRemoveBot, Label: "Remove a bot", HandlerID: actionRemoveBot, IsEnabledID: actionRemoveBot,
				MenuInput: &MenuInput{ChoicesFn: actionRemoveBot},
			})
		}
		if !player.IsBot {
			set.Add(&Action{ID: actionToggleSpectator, Label: g.spectatorToggleLabel(player), HandlerID: actionToggleSpectator})
		}
	}
	if !player.IsBot {
		set.Add(&Action{ID: actionLeaveGame, Label: "Leave table", HandlerID: actionLeaveGame})
	}
	return set
}

func (g *BaseGame) spectatorToggleLabel(player *Player) string {
	if player.IsSpectator {
		return "Join as a player"
	}
	return "Become a spectator"
}

// buildOptionsActionSet auto-generates one toggle/adjust action per
// OptionField the concrete game's Options() declares, visible to the host
// only while the table is waiting to start.
func (g *BaseGame) buildOptionsActionSet(player *Player) *ActionSet {
	if g.Status != "waiting" || player.Name != g.Host || player.IsBot || g.impl == nil {
		return nil
	}
	provider := g.impl.Options()
	if provider == nil {
		return nil
	}
	set := NewActionSet("options")
	for _, field := range provider.Describe() {
		field := field
		id := actionSetOptionPrefix + field.Key
		label := fmt.Sprintf("%s: %s", field.Label, field.FormatValue())

		switch field.Kind {
		case OptionKindBool:
			g.RegisterHandler(id, func(p *Player, value, actionID string) {
				cur, _ := field.Get().(bool)
				if err := field.Set(!cur); err == nil {
					g.RefreshMenu(p)
				}
			})
			set.Add(&Action{ID: id, Label: label, HandlerID: id})
		case OptionKindMenu, OptionKindTeamMode:
			g.RegisterHandler(id, func(p *Player, value, actionID string) {
				if typed, errKey := field.Validate(value); errKey == "" {
					if err := field.Set(typed); err == nil {
						g.RefreshMenu(p)
					}
				} else if user := g.GetUser(p); user != nil {
					user.SpeakL(errKey, nil)
				}
			})
			g.RegisterMenuChoices(id, func(p *Player) []wire.MenuItem {
				items := make([]wire.MenuItem, 0)
				for _, choice := range field.Choices() {
					text := choice
					if lbl, ok := field.ChoiceLabels[choice]; ok {
						text = lbl
					}
					items = append(items, wire.MenuItem{Text: text, ID: choice})
				}
				return items
			})
			set.Add(&Action{ID: id, Label: label, HandlerID: id, MenuInput: &MenuInput{ChoicesFn: id}})
		default: // int, float: editbox entry
			g.RegisterHandler(id, func(p *Player, value, actionID string) {
				if typed, errKey := field.Validate(value); errKey == "" {
					if err := field.Set(typed); err == nil {
						g.RefreshMenu(p)
					}
				} else if user := g.GetUser(p); user != nil {
					user.SpeakL(errKey, nil)
				}
			})
			set.Add(&Action{
				ID: id, Label: label, HandlerID: id,
				EditboxInput: &EditboxInput{Prompt: field.Label, Default: field.FormatValue()},
			})
		}
	}
	return set
}

func (g *BaseGame) buildEstimateActionSet(player *Player) *ActionSet {
	if g.Status != "waiting" || player.IsBot {
		return nil
	}
	set := NewActionSet("estimate")
	set.Add(&Action{ID: actionEstimateLength, Label: "Estimate game length", HandlerID: actionEstimateLength, IsEnabledID: actionEstimateLength})
	return set
}

func (g *BaseGame) buildStandardActionSet(player *Player) *ActionSet {
	set := NewActionSet("standard")
	set.Add(&Action{ID: actionShowActionsMenu, Label: "Actions menu", HandlerID: actionShowActionsMenu, ExcludeFromActionsMenu: true})
	set.Add(&Action{ID: actionWhoseTurn, Label: "Whose turn is it?", HandlerID: actionWhoseTurn})
	set.Add(&Action{ID: actionCheckScores, Label: "Check scores", HandlerID: actionCheckScores})
	set.Add(&Action{ID: actionCheckScoresXtra, Label: "Check scores (detailed)", HandlerID: actionCheckScoresXtra})
	set.Add(&Action{ID: actionPredictOutcomes, Label: "Predict outcomes", HandlerID: actionPredictOutcomes})
	if !player.IsBot && player.Name == g.Host && g.Status == "playing" {
		set.Add(&Action{ID: actionSaveTable, Label: "Save and close table", HandlerID: actionSaveTable, IsEnabledID: actionSaveTable})
	}
	return set
}

// --- lobby lifecycle ---

// AssembleActionSets (re)builds one player's action sets in the canonical
// order. Exported for callers outside the package (the table manager, on
// join) that need to seed a newly-added player's menu without a full turn
// advance.
func (g *BaseGame) AssembleActionSets(player *Player) {
	g.assembleStandardActionSets(player)
}

// InitializeLobby seeds a freshly-created table with its host as the first
// player and assembles everyone's action sets.
func (g *BaseGame) InitializeLobby(hostID, hostName string) {
	g.registerBaseHandlers()
	if g.impl != nil {
		g.impl.SetupKeybinds()
	}
	g.Host = hostName
	host := g.CreatePlayer(hostID, hostName, false)
	g.Players = append(g.Players, host)
	g.assembleStandardActionSets(host)
}

func (g *BaseGame) enabledStartGame(player *Player) string {
	active := g.GetActivePlayers()
	if g.impl == nil {
		return ""
	}
	if len(active) < g.impl.GetMinPlayers() {
		return "lobby-not-enough-players"
	}
	return ""
}

func (g *BaseGame) handleStartGame(player *Player) {
	if g.enabledStartGame(player) != "" {
		return
	}
	g.Status = "playing"
	g.GameActive = true
	ids := make([]string, 0, len(g.Players))
	for _, p := range g.GetActivePlayers() {
		ids = append(ids, p.ID)
	}
	g.SetTurnPlayers(ids)
	g.Teams.SetMode(g.Teams.Mode, g.GetActivePlayers())
	g.BroadcastL("game-starting", nil)
	if g.impl != nil {
		g.impl.OnStart()
	}
	for _, p := range g.Players {
		g.rebuildActionSetsFor(p)
	}
	if cur, ok := g.CurrentTurnPlayer(); ok {
		g.BroadcastL("game-turn-start", map[string]any{"player": cur.Name})
	}
}

func (g *BaseGame) enabledAddBot(player *Player) string {
	if g.impl != nil && len(g.Players) >= g.impl.GetMaxPlayers() {
		return "lobby-table-full"
	}
	return ""
}

func (g *BaseGame) handleAddBot(player *Player) {
	if g.enabledAddBot(player) != "" {
		return
	}
	name := g.nextBotName()
	bot := g.CreatePlayer("bot-"+name, name, true)
	g.Players = append(g.Players, bot)
	g.assembleStandardActionSets(bot)
	g.BroadcastL("table-joined", map[string]any{"player": name})
	g.RefreshAllMenus()
}

func (g *BaseGame) nextBotName() string {
	names := []string{"Ada", "Ben", "Cleo", "Dex", "Edie", "Finn", "Gia", "Hugo"}
	used := make(map[string]bool)
	for _, p := range g.Players {
		used[p.Name] = true
	}
	for _, n := range names {
		if !used[n] {
			return n
		}
	}
	return fmt.Sprintf("Bot%d", len(g.Players))
}

func (g *BaseGame) enabledRemoveBot(player *Player) string {
	if g.GetBotCount() == 0 {
		return "lobby-no-bots-to-remove"
	}
	return ""
}

func (g *BaseGame) botChoices(player *Player) []wire.MenuItem {
	var items []wire.MenuItem
	for _, p := range g.Players {
		if p.IsBot {
			items = append(items, wire.MenuItem{Text: p.Name, ID: p.ID})
		}
	}
	return items
}

func (g *BaseGame) handleRemoveBot(player *Player, botID string) {
	for i, p := range g.Players {
		if p.ID == botID && p.IsBot {
			g.Players = append(g.Players[:i], g.Players[i+1:]...)
			delete(g.PlayerActionSets, botID)
			g.BroadcastL("table-left", map[string]any{"player": p.Name})
			g.RefreshAllMenus()
			return
		}
	}
}

func (g *BaseGame) handleToggleSpectator(player *Player) {
	player.IsSpectator = !player.IsSpectator
	if player.IsSpectator {
		g.BroadcastL("now-spectating", map[string]any{"player": player.Name})
	} else {
		g.BroadcastL("now-playing", map[string]any{"player": player.Name})
	}
	g.rebuildActionSetsFor(player)
}

// handleLeaveGame removes a human from the table. Mid-game, they're
// converted to a bot (so the game can continue) rather than removed
// outright; in the lobby they're simply dropped. If the departing player
// was host, host status passes to the next human.
func (g *BaseGame) handleLeaveGame(player *Player) {
	wasHost := player.Name == g.Host

	if g.Status == "playing" && !player.IsSpectator {
		player.IsBot = true
		g.DetachUser(player.ID)
		g.BroadcastL("player-replaced-by-bot", map[string]any{"player": player.Name})
	} else {
		for i, p := range g.Players {
			if p.ID == player.ID {
				g.Players = append(g.Players[:i], g.Players[i+1:]...)
				break
			}
		}
		delete(g.PlayerActionSets, player.ID)
	}

	if wasHost {
		for _, p := range g.Players {
			if !p.IsBot {
				g.Host = p.Name
				break
			}
		}
	}

	if len(g.GetActivePlayers()) == 0 || g.GetHumanCount() == 0 {
		if g.table != nil {
			g.table.Destroy()
		}
		return
	}
	g.RefreshAllMenus()
}

func (g *BaseGame) handleWhoseTurn(player *Player) {
	user := g.GetUser(player)
	if user == nil {
		return
	}
	if cur, ok := g.CurrentTurnPlayer(); ok {
		user.SpeakL("game-turn-start", map[string]any{"player": cur.Name})
	} else {
		user.SpeakL("game-no-turn", nil)
	}
}

func (g *BaseGame) handleCheckScores(player *Player, detailed bool) {
	user := g.GetUser(player)
	if user == nil {
		return
	}
	if detailed {
		for _, line := range g.Teams.FormatScoresDetailed(user.GetLocale()) {
			user.Speak(line)
		}
		return
	}
	user.Speak(g.Teams.FormatScoresBrief(user.GetLocale()))
}

func (g *BaseGame) handlePredictOutcomes(player *Player) {
	user := g.GetUser(player)
	if user == nil || g.predictor == nil {
		if user != nil {
			user.SpeakL("predict-unavailable", nil)
		}
		return
	}
	for _, line := range g.predictor.PredictOutcomes(g.Type, g.GetActivePlayers()) {
		user.Speak(line)
	}
}

func (g *BaseGame) enabledSaveTable(player *Player) string {
	if player.Name != g.Host {
		return "save-table-host-only"
	}
	return ""
}

func (g *BaseGame) handleSaveTable(player *Player) {
	if g.enabledSaveTable(player) != "" {
		return
	}
	if g.table != nil {
		g.table.SaveAndClose(player.Name)
	}
}

func (g *BaseGame) enabledEstimateLength(player *Player) string {
	if g.estimator == nil {
		return "estimate-unavailable"
	}
	if g.EstimateState != nil {
		return "estimate-already-running"
	}
	return ""
}

func (g *BaseGame) handleEstimateLength(player *Player) {
	if g.enabledEstimateLength(player) != "" {
		return
	}
	botCount := len(g.GetActivePlayers())
	if g.impl != nil && botCount < g.impl.GetMinPlayers() {
		botCount = g.impl.GetMinPlayers()
	}
	runID, err := g.estimator.Start(g.Type, g.optionsSnapshot(), botCount)
	if err != nil {
		if user := g.GetUser(player); user != nil {
			user.SpeakL("estimate-failed", nil)
		}
		return
	}
	g.EstimateState = &EstimateState{RunID: runID, Requester: player.Name}
	if user := g.GetUser(player); user != nil {
		user.SpeakL("estimate-started", nil)
	}
}

func (g *BaseGame) optionsSnapshot() map[string]any {
	snapshot := make(map[string]any)
	if g.impl == nil {
		return snapshot
	}
	if provider := g.impl.Options(); provider != nil {
		for _, f := range provider.Describe() {
			snapshot[f.Key] = f.Get()
		}
	}
	return snapshot
}

// pollEstimation checks on an in-flight estimation run once per tick,
// reporting and clearing it when done.
func (g *BaseGame) pollEstimation() {
	if g.EstimateState == nil || g.estimator == nil {
		return
	}
	done, medianTicks, err := g.estimator.Poll(g.EstimateState.RunID)
	if !done && err == nil {
		return
	}
	requester := g.EstimateState.Requester
	g.EstimateState = nil

	var user UserView
	for _, p := range g.Players {
		if p.Name == requester {
			user = g.GetUser(p)
			break
		}
	}
	if user == nil {
		return
	}
	if err != nil {
		user.SpeakL("estimate-failed", nil)
		return
	}
	botSeconds := medianTicks / TicksPerSecond
	humanSeconds := botSeconds * humanDurationMultiplier
	user.SpeakL("estimate-result", map[string]any{
		"bot_duration":   formatDuration(botSeconds),
		"human_duration": formatDuration(humanSeconds),
	})
}

// humanDurationMultiplier scales a bot-only median duration into a rough
// estimate of how long a table of humans takes, since humans think and type
// far slower than the bot cadence.
const humanDurationMultiplier = 2

func formatDuration(seconds int) string {
	minutes := seconds / 60
	secs := seconds % 60
	if minutes == 0 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%02ds", minutes, secs)
}

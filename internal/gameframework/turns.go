package gameframework

// SetTurnPlayers initializes turn order to the given player ids, resetting
// the cursor to the start and direction to forward.
func (g *BaseGame) SetTurnPlayers(playerIDs []string) {
	g.TurnPlayerIDs = append([]string(nil), playerIDs...)
	g.TurnIndex = 0
	g.TurnDirection = 1
	g.TurnSkipCount = 0
}

// CurrentTurnPlayer returns the player whose turn it currently is, if any.
func (g *BaseGame) CurrentTurnPlayer() (*Player, bool) {
	if len(g.TurnPlayerIDs) == 0 {
		return nil, false
	}
	id := g.TurnPlayerIDs[g.TurnIndex%len(g.TurnPlayerIDs)]
	return g.GetPlayerByID(id)
}

// IsPlayersTurn reports whether it is currently the given player's turn.
func (g *BaseGame) IsPlayersTurn(player *Player) bool {
	cur, ok := g.CurrentTurnPlayer()
	return ok && player != nil && cur.ID == player.ID
}

// ReverseTurnDirection flips the rotation direction (e.g. a reverse card).
func (g *BaseGame) ReverseTurnDirection() {
	g.TurnDirection = -g.TurnDirection
}

// SkipNextPlayers marks the next n turns (after the current one advances) to
// be skipped.
func (g *BaseGame) SkipNextPlayers(n int) {
	g.TurnSkipCount += n
}

// ResetTurnOrder resets the cursor to the first player in turn order without
// changing TurnPlayerIDs, used at the start of a new round.
func (g *BaseGame) ResetTurnOrder() {
	g.TurnIndex = 0
	g.TurnDirection = 1
	g.TurnSkipCount = 0
}

// defaultTurnSound is played to the current player at the start of their
// turn when their play-turn-sound preference is enabled.
const defaultTurnSound = "game_pig/turn.ogg"

// AdvanceTurn moves the cursor to the next player in TurnPlayerIDs (passing
// over any skip-marked turns), rebuilds every player's action
// sets (the previous turn-holder's menu goes stale otherwise and would
// still expose their turn actions), plays the new turn-holder's turn sound
// if they have it enabled, and announces a skip if one occurred. It is a
// no-op if there is no turn order.
func (g *BaseGame) AdvanceTurn() {
	if len(g.TurnPlayerIDs) == 0 {
		return
	}

	advanceOnce := func() {
		n := len(g.TurnPlayerIDs)
		g.TurnIndex = ((g.TurnIndex+g.TurnDirection)%n + n) % n
	}

	advanceOnce()
	for g.TurnSkipCount > 0 {
		g.TurnSkipCount--
		if skipped, ok := g.CurrentTurnPlayer(); ok {
			g.BroadcastL("player-skipped", map[string]any{"player": skipped.Name})
		}
		advanceOnce()
	}

	for _, p := range g.Players {
		g.rebuildActionSetsFor(p)
	}

	if player, ok := g.CurrentTurnPlayer(); ok {
		g.BroadcastL("game-turn-start", map[string]any{"player": player.Name})
		if user := g.GetUser(player); user != nil && user.GetPlayTurnSound() {
			g.PlaySoundTo(player, defaultTurnSound)
		}
	}
}

// rebuildActionSetsFor regenerates the turn, lobby, options, and standard
// action sets for one player (called after every turn advance and whenever
// game state changes enough to invalidate stale labels/enabled state).
func (g *BaseGame) rebuildActionSetsFor(player *Player) {
	g.PlayerActionSets[player.ID] = nil
	g.assembleStandardActionSets(player)
	if user := g.GetUser(player); user != nil {
		g.sendTurnMenu(player, user)
	}
}

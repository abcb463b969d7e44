package gameframework

import "playpalace/internal/wire"

// turnMenuID and actionsMenuID are the fixed menu ids used for the
// always-open turn menu and the F5 actions overlay.
const (
	turnMenuID    = "turn_menu"
	actionsMenuID = "actions_menu"
)

// Resolve computes the runtime tuple (label, enabled, visible) for one
// action against one player, calling the action's registered is-enabled,
// is-hidden, and get-label functions if present.
func (g *BaseGame) Resolve(player *Player, a *Action) ResolvedAction {
	r := ResolvedAction{Action: a, Label: a.Label, Enabled: true, Visible: true}

	if a.IsEnabledID != "" {
		if fn, ok := g.enabledFns[a.IsEnabledID]; ok {
			if reason := fn(player); reason != "" {
				r.Enabled = false
				r.DisabledReason = reason
			}
		}
	}
	if a.IsHiddenID != "" {
		if fn, ok := g.hiddenFns[a.IsHiddenID]; ok {
			r.Visible = !fn(player)
		}
	}
	if a.GetLabelID != "" {
		if fn, ok := g.labelFns[a.GetLabelID]; ok {
			r.Label = fn(player)
		}
	}
	return r
}

// RunAction executes an action for player with the given submitted value
// (menu selection id or editbox text), dispatching to its registered
// handler. fromKeybind/focusedItemID/focusedIndex record the invocation
// context for handlers that branch on it.
func (g *BaseGame) RunAction(player *Player, a *Action, value string, fromKeybind bool, focusedItemID string, focusedIndex int) {
	resolved := g.Resolve(player, a)
	if !resolved.Enabled {
		if user := g.GetUser(player); user != nil && !player.IsBot {
			user.SpeakL(resolved.DisabledReason, nil)
		}
		return
	}

	g.contexts[player.ID] = &actionContext{fromKeybind: fromKeybind, focusedItemID: focusedItemID, focusedIndex: focusedIndex}
	defer delete(g.contexts, player.ID)

	if fn, ok := g.handlers[a.HandlerID]; ok {
		fn(player, value, a.ID)
	}
}

// ActionContext returns the invocation context recorded by RunAction for the
// action currently executing for player, or the zero value if none.
func (g *BaseGame) ActionContext(player *Player) (fromKeybind bool, focusedItemID string, focusedIndex int) {
	if c, ok := g.contexts[player.ID]; ok {
		return c.fromKeybind, c.focusedItemID, c.focusedIndex
	}
	return false, "", 0
}

// visibleMenuItems builds the client-facing turn menu items for player:
// exactly the actions that are both enabled and visible, flattening set
// boundaries (the client renders one combined list; set names exist for
// documentation and the actions menu grouping only). Disabled actions are
// omitted entirely rather than shown greyed out; the F5 actions overlay
// (ShowActionsMenu) is where a disabled action and its reason surface.
func (g *BaseGame) visibleMenuItems(player *Player) []wire.MenuItem {
	var items []wire.MenuItem
	for _, set := range g.PlayerActionSets[player.ID] {
		for _, a := range set.Actions {
			resolved := g.Resolve(player, a)
			if !resolved.Visible || !resolved.Enabled {
				continue
			}
			items = append(items, wire.MenuItem{Text: resolved.Label, ID: a.ID})
		}
	}
	return items
}

// sendTurnMenu renders the turn menu for one human player from their
// current (rebuilt) action sets.
func (g *BaseGame) sendTurnMenu(player *Player, user UserView) {
	items := g.visibleMenuItems(player)
	user.ShowMenu(turnMenuID, items, true, wireEscapeForStatus(g.Status))
}

func wireEscapeForStatus(status string) wire.EscapeBehavior {
	if status == "playing" {
		return wire.EscapeNone
	}
	return wire.EscapeSelectLast
}

// HandleMenuSelection dispatches an inbound menu selection packet: if the
// menu is the turn menu or actions menu, resolve the selection id against
// the player's action sets and run it; if the game had posted a MenuInput
// request as part of a still-pending action, resume that instead. For this
// framework, every action fully resolves its own MenuInput synchronously
// inside its handler (see action handlers calling ShowMenu directly), so
// dispatch here always targets an Action by id.
func (g *BaseGame) HandleMenuSelection(player *Player, menuID, selectionID string) {
	if a, ok := g.FindAction(player, selectionID); ok {
		g.RunAction(player, a, selectionID, false, "", 0)
		return
	}
	if menuID == actionsMenuID {
		g.RemoveActionsMenu(player)
	}
}

// HandleEditboxSubmit dispatches a submitted editbox back to the action
// that requested it; inputID is the action id whose EditboxInput is live.
func (g *BaseGame) HandleEditboxSubmit(player *Player, inputID, text string) {
	if a, ok := g.FindAction(player, inputID); ok {
		g.RunAction(player, a, text, false, "", 0)
	}
}

// HandleKeybind dispatches a raw client keypress: normalizes it, finds a
// matching, currently-eligible keybind for player, and runs the first of
// its bound actions that resolves (enabled and visible) for that player.
func (g *BaseGame) HandleKeybind(player *Player, key string, shift, control, alt bool, focusedItemID string, focusedIndex int) {
	normalized := NormalizeKey(key, shift, control, alt)
	for _, kb := range g.keybinds[normalized] {
		if !kb.CanPlayerUse(g.Status, player, focusedItemID) {
			continue
		}
		for _, actionID := range kb.Actions {
			if a, ok := g.FindAction(player, actionID); ok {
				resolved := g.Resolve(player, a)
				if resolved.Enabled && resolved.Visible {
					g.RunAction(player, a, "", true, focusedItemID, focusedIndex)
					return
				}
			}
		}
	}
}

// RegisterKeybind adds a keybind under its normalized default key.
func (g *BaseGame) RegisterKeybind(kb *Keybind) {
	normalized := NormalizeKey(kb.DefaultKey, false, false, false)
	g.keybinds[normalized] = append(g.keybinds[normalized], kb)
}

// ShowActionsMenu opens the F5 overlay listing every action across every
// set not marked ExcludeFromActionsMenu, including disabled ones (shown
// with their disabled reason) so a screen-reader user can audit what's
// available without triggering anything.
func (g *BaseGame) ShowActionsMenu(player *Player) {
	user := g.GetUser(player)
	if user == nil {
		return
	}
	g.actionsMenuOpen[player.ID] = true

	var items []wire.MenuItem
	for _, set := range g.PlayerActionSets[player.ID] {
		for _, a := range set.Actions {
			if a.ExcludeFromActionsMenu {
				continue
			}
			resolved := g.Resolve(player, a)
			label := resolved.Label
			if !resolved.Enabled {
				label = label + " (" + resolved.DisabledReason + ")"
			}
			items = append(items, wire.MenuItem{Text: label, ID: a.ID})
		}
	}
	user.ShowMenu(actionsMenuID, items, true, wire.EscapeClose)
}

// RemoveActionsMenu closes the F5 overlay.
func (g *BaseGame) RemoveActionsMenu(player *Player) {
	if !g.actionsMenuOpen[player.ID] {
		return
	}
	delete(g.actionsMenuOpen, player.ID)
	if user := g.GetUser(player); user != nil {
		user.RemoveMenu(actionsMenuID)
	}
}

// RefreshMenu rebuilds and re-sends the turn menu for one player, used by
// handlers whose effect changes what another (or the same) player should
// see without a full turn advance (e.g. toggling a dice-lock).
func (g *BaseGame) RefreshMenu(player *Player) {
	if user := g.GetUser(player); user != nil {
		g.sendTurnMenu(player, user)
	}
}

// RefreshAllMenus re-sends every attached player's turn menu, used after a
// state change that affects everyone's available actions (e.g. a round
// ending).
func (g *BaseGame) RefreshAllMenus() {
	for _, p := range g.Players {
		g.RefreshMenu(p)
	}
}

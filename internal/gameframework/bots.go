package gameframework

import "math/rand"

// botJoltMinTicks and botJoltMaxTicks bound the randomized pause a bot waits
// between deciding on an action and executing it, so bots don't all act on
// the exact same tick and so a spectator has time to hear what happened.
const (
	botJoltMinTicks = TicksPerSecond / 2 // 0.5s
	botJoltMaxTicks = TicksPerSecond * 2 // 2s
)

// driveBots runs the per-tick bot cadence for every bot player: decrement
// its think timer, execute any pending action whose timer has elapsed, then
// ask the concrete game for its next action if the bot is now idle.
func (g *BaseGame) driveBots() {
	for _, p := range g.Players {
		if !p.IsBot || p.IsSpectator {
			continue
		}

		if p.BotThinkTicks > 0 {
			p.BotThinkTicks--
		}

		if p.BotThinkTicks <= 0 && p.BotPendingAction != "" {
			actionID := p.BotPendingAction
			p.BotPendingAction = ""
			g.executeBotAction(p, actionID)
			continue
		}

		if p.BotThinkTicks <= 0 && p.BotPendingAction == "" {
			g.jolt(p)
		}
	}
}

// jolt asks the concrete game what the bot should do next and, if it
// offered an action, schedules it after a randomized pause.
func (g *BaseGame) jolt(p *Player) {
	if g.impl == nil {
		return
	}
	actionID := g.impl.BotThink(p)
	if actionID == "" {
		p.BotThinkTicks = botJoltMinTicks
		return
	}
	p.BotPendingAction = actionID
	p.BotThinkTicks = botJoltMinTicks + rand.Intn(botJoltMaxTicks-botJoltMinTicks+1)
}

// executeBotAction resolves an action id against the bot's current action
// sets and runs it, synthesizing menu/editbox input via the action's
// registered bot-select/bot-input functions (or sensible defaults).
func (g *BaseGame) executeBotAction(p *Player, actionID string) {
	action, ok := g.FindAction(p, actionID)
	if !ok {
		return
	}

	value := ""
	switch {
	case action.MenuInput != nil:
		if action.MenuInput.BotSelectID != "" {
			if fn, ok := g.botSelectFns[action.MenuInput.BotSelectID]; ok {
				value = fn(p)
			}
		}
		if value == "" {
			if fn, ok := g.menuChoiceFns[action.MenuInput.ChoicesFn]; ok {
				choices := fn(p)
				if len(choices) > 0 {
					value = choices[0].ID
				}
			}
		}
	case action.EditboxInput != nil:
		if action.EditboxInput.BotInputID != "" {
			if fn, ok := g.botInputFns[action.EditboxInput.BotInputID]; ok {
				value = fn(p)
			}
		}
		if value == "" {
			value = action.EditboxInput.Default
		}
	}

	g.RunAction(p, action, value, false, "", 0)
}

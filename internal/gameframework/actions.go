// Package gameframework implements the abstract turn-based game: the
// declarative Action/ActionSet/Keybind model, turn rotation, the per-game
// sound scheduler, bot cadence, and the options system described by the
// platform's game hosting core.
//
// Actions store handler/enabled/hidden/label references as string ids
// rather than function values so that an ActionSet remains serializable
// (see BaseGame's handler tables). This mirrors the source's reflective
// getattr(self, name) lookups without needing reflection in Go: each
// concrete game registers its functions into BaseGame's id-keyed tables at
// construction time, and only the string id is ever persisted.
package gameframework

import "playpalace/internal/wire"

// ActionHandlerFunc executes an action. value is the submitted input (menu
// selection id, or editbox text), empty if the action needed no input.
type ActionHandlerFunc func(player *Player, value string, actionID string)

// IsEnabledFunc returns "" if the action is enabled, or a localization key
// describing why it's disabled.
type IsEnabledFunc func(player *Player) string

// IsHiddenFunc returns whether the action should be hidden from the turn
// menu (it may still appear in the actions menu if enabled).
type IsHiddenFunc func(player *Player) bool

// GetLabelFunc computes a dynamic label for an action, overriding its
// static Label.
type GetLabelFunc func(player *Player) string

// BotSelectFunc synthesizes a menu selection for a bot.
type BotSelectFunc func(player *Player) string

// BotInputFunc synthesizes editbox text for a bot.
type BotInputFunc func(player *Player) string

// MenuChoicesFunc produces the live list of menu items for a MenuInput.
type MenuChoicesFunc func(player *Player) []wire.MenuItem

// MenuInput asks the actor to choose one of several named options before
// the handler runs.
type MenuInput struct {
	ChoicesFn   string // id resolved against BaseGame's menuChoiceFns
	BotSelectID string // id resolved against BaseGame's botSelectFns; "" = default to first choice
}

// EditboxInput asks the actor to type free text before the handler runs.
type EditboxInput struct {
	Prompt      string
	Default     string
	BotInputID string // id resolved against BaseGame's botInputFns; "" = use Default
}

// Action is purely declarative, serializable data — no code. All
// *ID fields reference functions registered on the owning BaseGame.
type Action struct {
	ID                     string        `json:"id"`
	Label                  string        `json:"label"`
	HandlerID              string        `json:"handler_id"`
	IsEnabledID            string        `json:"is_enabled_id"`
	IsHiddenID             string        `json:"is_hidden_id,omitempty"`
	GetLabelID             string        `json:"get_label_id,omitempty"`
	MenuInput              *MenuInput    `json:"menu_input,omitempty"`
	EditboxInput           *EditboxInput `json:"editbox_input,omitempty"`
	ExcludeFromActionsMenu bool          `json:"exclude_from_actions_menu,omitempty"`
}

// ActionSet is a named ordered list of Actions owned by one player.
type ActionSet struct {
	Name    string    `json:"name"`
	Actions []*Action `json:"actions"`
}

func NewActionSet(name string) *ActionSet {
	return &ActionSet{Name: name}
}

func (as *ActionSet) Add(a *Action) {
	as.Actions = append(as.Actions, a)
}

func (as *ActionSet) Find(id string) (*Action, bool) {
	for _, a := range as.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// ResolvedAction is the runtime tuple computed for a specific player from an
// Action; never serialized.
type ResolvedAction struct {
	Action         *Action
	Label          string
	Enabled        bool
	DisabledReason string
	Visible        bool
}

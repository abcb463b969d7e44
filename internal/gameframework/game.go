package gameframework

import (
	"encoding/json"
	"fmt"

	"playpalace/internal/wire"
)

// TicksPerSecond is the canonical tick rate (20 Hz / 50ms) that every
// tick-denominated quantity in the framework (sound delays, bot think
// ticks, turn timers, duration estimates) is expressed against.
const TicksPerSecond = 20

// UserView is the narrow surface the game framework needs from an attached
// user: speech, sound, and menu/editbox delivery, queued for end-of-tick
// flush. playpalace/internal/users.User satisfies this.
type UserView interface {
	GetLocale() string
	GetPlayTurnSound() bool
	Speak(text string)
	SpeakL(key string, args map[string]any)
	PlaySound(name string)
	PlayMusic(name string)
	PlayAmbience(name string)
	StopAmbience()
	ShowMenu(menuID string, items []wire.MenuItem, multiletter bool, escape wire.EscapeBehavior)
	UpdateMenu(menuID string, items []wire.MenuItem, selectionID string)
	RemoveMenu(menuID string)
	ShowEditbox(inputID, prompt, def string)
}

// TableHooks is the callback surface a Table provides back to the Game it
// owns: result persistence, rating updates, and self-destruction/save.
type TableHooks interface {
	Destroy()
	SaveAndClose(hostUsername string)
	PersistResult(result GameResult)
	UpdateRatings(rankings [][]string, gameType string)
}

// GameImpl is the capability set a concrete game implements; BaseGame
// supplies every mechanism that doesn't vary per game (turn rotation, sound
// scheduling, action resolution, bot cadence, options, lobby lifecycle).
type GameImpl interface {
	GetType() string
	GetName() string
	GetCategory() string
	GetMinPlayers() int
	GetMaxPlayers() int
	GetLeaderboardTypes() map[string]string

	OnStart()
	OnTick()
	BotThink(player *Player) string
	TurnActionSet(player *Player) *ActionSet

	BuildGameResult() GameResult
	FormatEndScreen(result GameResult, locale string) []string
	GetRankingsForRating(result GameResult) [][]string

	RebuildRuntimeState()
	SetupKeybinds()

	Options() OptionsProvider

	// Base returns the embedded framework state. Promoted automatically to
	// every concrete game via embedding *BaseGame, so concrete games never
	// implement this themselves.
	Base() *BaseGame
}

// ScheduledSound is one entry in the per-game deferred sound scheduler.
type ScheduledSound struct {
	TargetTick int     `json:"target_tick"`
	Name       string  `json:"name"`
	Volume     float64 `json:"volume"`
	Pan        float64 `json:"pan"`
	Pitch      float64 `json:"pitch"`
}

// actionContext records the origin of the action currently executing for a
// player, used by handlers that need to know whether they were invoked via
// menu selection or keybind, and what was focused.
type actionContext struct {
	fromKeybind   bool
	focusedItemID string
	focusedIndex  int
}

// BaseGame carries every piece of framework-owned state and logic. Concrete
// games embed *BaseGame and implement GameImpl; BaseGame calls back into the
// concrete implementation via the impl field, set by SetImpl at
// construction (the Go stand-in for the source's self-referential mixins).
type BaseGame struct {
	Type            string `json:"type"`
	Host            string `json:"host"`
	Status          string `json:"status"` // waiting | playing | finished
	Round           int    `json:"round"`
	GameActive      bool   `json:"game_active"`
	CurrentMusic    string `json:"current_music"`
	CurrentAmbience string `json:"current_ambience"`

	TurnPlayerIDs []string `json:"turn_player_ids"`
	TurnIndex     int      `json:"turn_index"`
	TurnDirection int      `json:"turn_direction"`
	TurnSkipCount int      `json:"turn_skip_count"`

	ScheduledSounds    []ScheduledSound `json:"scheduled_sounds"`
	SoundSchedulerTick int              `json:"sound_scheduler_tick"`

	Players          []*Player              `json:"players"`
	PlayerActionSets map[string][]*ActionSet `json:"player_action_sets"`
	Teams            *TeamManager           `json:"team_manager"`

	EstimateState *EstimateState `json:"estimate_state,omitempty"`

	impl      GameImpl  `json:"-"`
	table     TableHooks `json:"-"`
	estimator Estimator `json:"-"`
	predictor Predictor `json:"-"`

	users           map[string]UserView   `json:"-"`
	keybinds        map[string][]*Keybind `json:"-"`
	pendingActions  map[string]string     `json:"-"`
	actionsMenuOpen map[string]bool       `json:"-"`
	statusBoxOpen   map[string]bool       `json:"-"`
	contexts        map[string]*actionContext `json:"-"`

	handlers      map[string]ActionHandlerFunc `json:"-"`
	enabledFns    map[string]IsEnabledFunc     `json:"-"`
	hiddenFns     map[string]IsHiddenFunc      `json:"-"`
	labelFns      map[string]GetLabelFunc      `json:"-"`
	botSelectFns  map[string]BotSelectFunc     `json:"-"`
	botInputFns   map[string]BotInputFunc      `json:"-"`
	menuChoiceFns map[string]MenuChoicesFunc   `json:"-"`
}

// NewBaseGame constructs the framework state for a fresh (not restored)
// game of the given type.
func NewBaseGame(gameType string) *BaseGame {
	g := &BaseGame{
		Type:             gameType,
		Status:           "waiting",
		TurnDirection:    1,
		PlayerActionSets: make(map[string][]*ActionSet),
		Teams:            NewTeamManager(),
	}
	g.initRuntime()
	return g
}

// initRuntime allocates every runtime-only map. Called both by
// NewBaseGame and by RestoreRuntime after deserialization.
func (g *BaseGame) initRuntime() {
	g.users = make(map[string]UserView)
	g.keybinds = make(map[string][]*Keybind)
	g.pendingActions = make(map[string]string)
	g.actionsMenuOpen = make(map[string]bool)
	g.statusBoxOpen = make(map[string]bool)
	g.contexts = make(map[string]*actionContext)
	g.handlers = make(map[string]ActionHandlerFunc)
	g.enabledFns = make(map[string]IsEnabledFunc)
	g.hiddenFns = make(map[string]IsHiddenFunc)
	g.labelFns = make(map[string]GetLabelFunc)
	g.botSelectFns = make(map[string]BotSelectFunc)
	g.botInputFns = make(map[string]BotInputFunc)
	g.menuChoiceFns = make(map[string]MenuChoicesFunc)
}

// SetImpl binds the concrete game so BaseGame can call back into it. Must
// be called once, immediately after construction or deserialization.
func (g *BaseGame) SetImpl(impl GameImpl) {
	g.impl = impl
}

// Base returns g itself, satisfying GameImpl.Base() for every concrete game
// via struct embedding.
func (g *BaseGame) Base() *BaseGame { return g }

// SetTable attaches the owning table's callback surface.
func (g *BaseGame) SetTable(table TableHooks) {
	g.table = table
}

// RestoreRuntime re-establishes everything that deserialization cannot
// carry: the runtime maps, the framework's own action handlers, the
// concrete game's keybinds, and every connected player's action sets. The
// table manager calls this once, after SetImpl/SetTable, for a game loaded
// from saved JSON.
func (g *BaseGame) RestoreRuntime() {
	g.initRuntime()
	g.registerBaseHandlers()
	if g.impl != nil {
		g.impl.SetupKeybinds()
		g.impl.RebuildRuntimeState()
	}
	for _, p := range g.Players {
		g.assembleStandardActionSets(p)
	}
}

// Registration helpers: the function-pointer table standing in for
// reflective getattr(self, name) lookups.

func (g *BaseGame) RegisterHandler(id string, fn ActionHandlerFunc)     { g.handlers[id] = fn }
func (g *BaseGame) RegisterIsEnabled(id string, fn IsEnabledFunc)       { g.enabledFns[id] = fn }
func (g *BaseGame) RegisterIsHidden(id string, fn IsHiddenFunc)         { g.hiddenFns[id] = fn }
func (g *BaseGame) RegisterGetLabel(id string, fn GetLabelFunc)         { g.labelFns[id] = fn }
func (g *BaseGame) RegisterBotSelect(id string, fn BotSelectFunc)       { g.botSelectFns[id] = fn }
func (g *BaseGame) RegisterBotInput(id string, fn BotInputFunc)         { g.botInputFns[id] = fn }
func (g *BaseGame) RegisterMenuChoices(id string, fn MenuChoicesFunc)   { g.menuChoiceFns[id] = fn }

// GetPlayerByID finds a player by stable id.
func (g *BaseGame) GetPlayerByID(id string) (*Player, bool) {
	for _, p := range g.Players {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

func (g *BaseGame) getPlayerByName(name string) (*Player, bool) {
	for _, p := range g.Players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// GetActivePlayers returns every non-spectator player.
func (g *BaseGame) GetActivePlayers() []*Player {
	out := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		if !p.IsSpectator {
			out = append(out, p)
		}
	}
	return out
}

func (g *BaseGame) GetHumanCount() int {
	n := 0
	for _, p := range g.Players {
		if !p.IsBot {
			n++
		}
	}
	return n
}

func (g *BaseGame) GetBotCount() int {
	n := 0
	for _, p := range g.Players {
		if p.IsBot {
			n++
		}
	}
	return n
}

// GetUser returns the attached user for a player, if any is currently
// attached (nil for a disconnected human or an unattached bot).
func (g *BaseGame) GetUser(player *Player) UserView {
	if player == nil {
		return nil
	}
	return g.users[player.ID]
}

// AttachUser binds a UserView to a player id, sending them the game's
// current music/ambience so a late-joining user stays in sync.
func (g *BaseGame) AttachUser(playerID string, user UserView) {
	g.users[playerID] = user
	if g.CurrentMusic != "" {
		user.PlayMusic(g.CurrentMusic)
	}
	if g.CurrentAmbience != "" {
		user.PlayAmbience(g.CurrentAmbience)
	}
}

// DetachUser removes the attached UserView for a player id (on disconnect).
func (g *BaseGame) DetachUser(playerID string) {
	delete(g.users, playerID)
}

// CreatePlayer builds a new Player with a stable id (the user's uuid for a
// human, or id for a bot).
func (g *BaseGame) CreatePlayer(id, name string, isBot bool) *Player {
	return NewPlayer(id, name, isBot)
}

// AddActionSet appends an ActionSet to a player's list.
func (g *BaseGame) AddActionSet(player *Player, set *ActionSet) {
	if set == nil {
		return
	}
	g.PlayerActionSets[player.ID] = append(g.PlayerActionSets[player.ID], set)
}

// ActionSetsFor returns a player's ordered ActionSet list.
func (g *BaseGame) ActionSetsFor(player *Player) []*ActionSet {
	return g.PlayerActionSets[player.ID]
}

// FindAction looks up an action by id across every ActionSet owned by
// player.
func (g *BaseGame) FindAction(player *Player, actionID string) (*Action, bool) {
	for _, set := range g.PlayerActionSets[player.ID] {
		if a, ok := set.Find(actionID); ok {
			return a, true
		}
	}
	return nil, false
}

// Serialize produces the JSON representation of this BaseGame plus whatever
// the concrete game embeds, via encoding/json struct composition: concrete
// games embed *BaseGame anonymously so json.Marshal walks both in one pass.
func Serialize(game any) ([]byte, error) {
	data, err := json.Marshal(game)
	if err != nil {
		return nil, fmt.Errorf("serialize game: %w", err)
	}
	return data, nil
}

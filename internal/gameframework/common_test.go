package gameframework

import "playpalace/internal/wire"

// fakeUser is a minimal UserView that records what was sent to it, enough to
// assert on broadcasts and menu renders without a real transport connection.
type fakeUser struct {
	locale        string
	playTurnSound bool
	spoken        []string
	sounds        []string
	menus         map[string][]wire.MenuItem
	removed       []string
}

func newFakeUser() *fakeUser {
	return &fakeUser{locale: "en", playTurnSound: true, menus: make(map[string][]wire.MenuItem)}
}

func (u *fakeUser) GetLocale() string                 { return u.locale }
func (u *fakeUser) GetPlayTurnSound() bool             { return u.playTurnSound }
func (u *fakeUser) Speak(text string)                 { u.spoken = append(u.spoken, text) }
func (u *fakeUser) SpeakL(key string, args map[string]any) { u.spoken = append(u.spoken, key) }
func (u *fakeUser) PlaySound(name string)              { u.sounds = append(u.sounds, name) }
func (u *fakeUser) PlayMusic(name string)              {}
func (u *fakeUser) PlayAmbience(name string)           {}
func (u *fakeUser) StopAmbience()                      {}
func (u *fakeUser) ShowMenu(menuID string, items []wire.MenuItem, multiletter bool, escape wire.EscapeBehavior) {
	u.menus[menuID] = items
}
func (u *fakeUser) UpdateMenu(menuID string, items []wire.MenuItem, selectionID string) {
	u.menus[menuID] = items
}
func (u *fakeUser) RemoveMenu(menuID string) { u.removed = append(u.removed, menuID) }
func (u *fakeUser) ShowEditbox(inputID, prompt, def string) {}

// fakeGame is a minimal concrete GameImpl for exercising BaseGame mechanics
// without pulling in a real game package (which would import this package
// back, creating a cycle from an internal test file).
type fakeGame struct {
	*BaseGame
	minPlayers, maxPlayers int
	botAction              string
	onStartCalls           int
	onTickCalls            int
}

func newFakeGame(min, max int) *fakeGame {
	g := &fakeGame{BaseGame: NewBaseGame("fake"), minPlayers: min, maxPlayers: max}
	g.SetImpl(g)
	return g
}

func (g *fakeGame) GetType() string     { return "fake" }
func (g *fakeGame) GetName() string     { return "Fake" }
func (g *fakeGame) GetCategory() string { return "test" }
func (g *fakeGame) GetMinPlayers() int  { return g.minPlayers }
func (g *fakeGame) GetMaxPlayers() int  { return g.maxPlayers }
func (g *fakeGame) GetLeaderboardTypes() map[string]string { return nil }

func (g *fakeGame) OnStart() { g.onStartCalls++ }
func (g *fakeGame) OnTick()  { g.onTickCalls++ }
func (g *fakeGame) BotThink(player *Player) string { return g.botAction }
func (g *fakeGame) TurnActionSet(player *Player) *ActionSet {
	if g.Status != "playing" || !g.IsPlayersTurn(player) {
		return nil
	}
	set := NewActionSet("turn")
	set.Add(&Action{ID: "fake.act", Label: "Act", HandlerID: "fake.act"})
	g.RegisterHandler("fake.act", func(p *Player, value, actionID string) {})
	return set
}

func (g *fakeGame) BuildGameResult() GameResult                      { return g.BuildDefaultResult() }
func (g *fakeGame) FormatEndScreen(r GameResult, locale string) []string { return []string{"done"} }
func (g *fakeGame) GetRankingsForRating(r GameResult) [][]string     { return DefaultRankingsForRating(r) }
func (g *fakeGame) RebuildRuntimeState()                             {}
func (g *fakeGame) SetupKeybinds()                                   {}
func (g *fakeGame) Options() OptionsProvider                         { return nil }

// fakeTable is a minimal TableHooks recording what the framework called back.
type fakeTable struct {
	destroyed bool
	saved     string
	results   []GameResult
	ratings   [][][]string
}

func (t *fakeTable) Destroy()                     { t.destroyed = true }
func (t *fakeTable) SaveAndClose(host string)     { t.saved = host }
func (t *fakeTable) PersistResult(r GameResult)    { t.results = append(t.results, r) }
func (t *fakeTable) UpdateRatings(rankings [][]string, gameType string) {
	t.ratings = append(t.ratings, rankings)
}

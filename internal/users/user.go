// Package users models persistent player identity and the live, in-memory
// extension of that identity while a user is connected.
package users

import (
	"encoding/json"
	"sync"

	"playpalace/internal/localization"
	"playpalace/internal/transport"
	"playpalace/internal/wire"
)

// TrustLevel distinguishes ordinary players from administrators.
type TrustLevel int

const (
	TrustPlayer TrustLevel = iota
	TrustAdmin
)

// DiceKeepingStyle controls whether a dice-toggle keybind addresses dice by
// screen index or by the face value currently shown.
type DiceKeepingStyle string

const (
	DiceKeepByIndex     DiceKeepingStyle = "by_index"
	DiceKeepByFaceValue DiceKeepingStyle = "by_face_value"
)

// Preferences holds per-user UI preferences, serialized as one JSON blob on
// the user row.
type Preferences struct {
	PlayTurnSound       bool             `json:"play_turn_sound"`
	ClearKeptDiceOnRoll bool             `json:"clear_kept_dice_on_roll"`
	DiceKeepingStyle    DiceKeepingStyle `json:"dice_keeping_style"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		PlayTurnSound:       true,
		ClearKeptDiceOnRoll: true,
		DiceKeepingStyle:    DiceKeepByIndex,
	}
}

func (p Preferences) Marshal() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func UnmarshalPreferences(blob string) Preferences {
	if blob == "" {
		return DefaultPreferences()
	}
	var prefs Preferences
	if err := json.Unmarshal([]byte(blob), &prefs); err != nil {
		return DefaultPreferences()
	}
	return prefs
}

// Record is the persistent identity of a user, as stored by the persistence
// adapter.
type Record struct {
	UUID           string
	Username       string
	PasswordHash   string
	Locale         string
	PreferencesRaw string
	TrustLevel     TrustLevel
	Approved       bool
}

// MenuState describes where a user currently is in the shell state machine
// (see the session package), or "in_game" plus a table id while seated. The
// extra fields carry whatever the current menu needs to remember about how
// it was reached (which category/game/save row a submenu belongs to).
type MenuState struct {
	Menu     string
	TableID  string
	Category string
	GameType string
	GameName string
	SaveID   int64
}

// User is the live, in-memory extension of a Record for one connected
// session: attached connection, outbound queue, current menu state.
type User struct {
	UUID        string
	Username    string
	Locale      string
	Preferences Preferences
	TrustLevel  TrustLevel

	mu    sync.Mutex
	conn  *transport.Connection
	queue [][]byte
	state MenuState
}

func New(record Record, conn *transport.Connection) *User {
	return &User{
		UUID:        record.UUID,
		Username:    record.Username,
		Locale:      record.Locale,
		Preferences: UnmarshalPreferences(record.PreferencesRaw),
		TrustLevel:  record.TrustLevel,
		conn:        conn,
		state:       MenuState{Menu: "main_menu"},
	}
}

func (u *User) Connection() *transport.Connection { return u.conn }

func (u *User) SetState(state MenuState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state = state
}

func (u *User) State() MenuState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Enqueue records an outbound packet for delivery at the next tick flush,
// rather than writing to the socket immediately. This preserves the
// framework's ordering guarantee: effects enqueued during one handler are
// delivered in enqueue order, all at end-of-tick.
func (u *User) Enqueue(packet any) {
	data, err := json.Marshal(packet)
	if err != nil {
		return
	}
	u.mu.Lock()
	u.queue = append(u.queue, data)
	u.mu.Unlock()
}

// DrainQueue removes and returns every queued packet, in enqueue order.
func (u *User) DrainQueue() [][]byte {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.queue) == 0 {
		return nil
	}
	drained := u.queue
	u.queue = nil
	return drained
}

// Speak enqueues verbatim text as a "speak" packet.
func (u *User) Speak(text string) {
	u.Enqueue(wire.Speak(text))
}

// SpeakL enqueues a localized message, rendered in this user's locale.
func (u *User) SpeakL(key string, args map[string]any) {
	u.Speak(localization.Get(u.Locale, key, args))
}

// GetLocale satisfies gameframework.UserView; exported as a method rather
// than relying on the Locale field so the interface doesn't need to know
// about struct layout.
func (u *User) GetLocale() string { return u.Locale }

// GetPlayTurnSound satisfies gameframework.UserView, gating the per-user
// turn sound on the player's own preference.
func (u *User) GetPlayTurnSound() bool { return u.Preferences.PlayTurnSound }

func (u *User) PlaySound(name string) {
	u.Enqueue(wire.PlaySound(name, 1.0, 0.0, 1.0))
}

func (u *User) PlayMusic(name string) {
	u.Enqueue(wire.PlayMusic(name, true))
}

func (u *User) PlayAmbience(name string) {
	u.Enqueue(wire.PlayAmbience(name, "", ""))
}

func (u *User) StopAmbience() {
	u.Enqueue(wire.StopAmbience())
}

func (u *User) ShowMenu(menuID string, items []wire.MenuItem, multiletter bool, escape wire.EscapeBehavior) {
	u.Enqueue(wire.ShowMenu(menuID, items, multiletter, escape))
}

func (u *User) UpdateMenu(menuID string, items []wire.MenuItem, selectionID string) {
	u.Enqueue(wire.UpdateMenu(menuID, items, selectionID))
}

func (u *User) RemoveMenu(menuID string) {
	u.Enqueue(wire.RemoveMenu(menuID))
}

func (u *User) ShowEditbox(inputID, prompt, def string) {
	u.Enqueue(wire.ShowEditbox(inputID, prompt, def))
}

// Registry is the in-memory map of authenticated username -> User.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*User)}
}

func (r *Registry) Put(u *User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.Username] = u
}

func (r *Registry) Get(username string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[username]
	return u, ok
}

func (r *Registry) Remove(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}

// All returns every currently connected user. The caller must not mutate
// the returned slice's backing store concurrently with registry writes.
func (r *Registry) All() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out
}

// BroadcastPresenceL speaks a localized presence announcement with a sound
// to every registered user (including, by convention, the subject of the
// announcement).
func (r *Registry) BroadcastPresenceL(messageKey, playerName, sound string) {
	for _, u := range r.All() {
		u.SpeakL(messageKey, map[string]any{"player": playerName})
		u.PlaySound(sound)
	}
}

package gameframework

import "strings"

// KeybindState controls when a keybind is eligible to fire.
type KeybindState string

const (
	KeybindNever  KeybindState = "never"
	KeybindIdle   KeybindState = "idle"   // only while status == waiting
	KeybindActive KeybindState = "active" // only while status == playing
	KeybindAlways KeybindState = "always"
)

// Keybind is runtime-only: it is rebuilt by the game's SetupKeybinds(), which
// InitializeLobby and RestoreRuntime call, and is never serialized.
type Keybind struct {
	Name              string
	DefaultKey        string
	Actions           []string
	RequiresFocus     bool
	State             KeybindState
	Players           []string // empty = all players
	IncludeSpectators bool
}

// CanPlayerUse reports whether this keybind is eligible for player given the
// game's current status and the player's spectator flag. focusedItemID is
// the client-reported focused menu item, used only when RequiresFocus.
func (k *Keybind) CanPlayerUse(status string, player *Player, focusedItemID string) bool {
	if player.IsSpectator && !k.IncludeSpectators {
		return false
	}

	switch k.State {
	case KeybindNever:
		return false
	case KeybindIdle:
		if status != "waiting" {
			return false
		}
	case KeybindActive:
		if status != "playing" {
			return false
		}
	case KeybindAlways:
		// always eligible
	}

	if len(k.Players) > 0 {
		allowed := false
		for _, name := range k.Players {
			if name == player.Name {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	if k.RequiresFocus {
		matched := false
		for _, id := range k.Actions {
			if id == focusedItemID {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// NormalizeKey lowercases a key and prepends modifier prefixes in a fixed
// order (shift, ctrl, alt), matching how keybinds are registered.
func NormalizeKey(key string, shift, control, alt bool) string {
	base := strings.ToLower(key)
	if alt {
		base = "alt+" + base
	}
	if control {
		base = "ctrl+" + base
	}
	if shift {
		base = "shift+" + base
	}
	return base
}

package gameframework

import "testing"

func TestNormalizeKeyAppliesModifiersInFixedOrder(t *testing.T) {
	got := NormalizeKey("R", true, true, true)
	if got != "shift+ctrl+alt+r" {
		t.Fatalf("NormalizeKey = %q, want shift+ctrl+alt+r", got)
	}
	if got := NormalizeKey("Enter", false, false, false); got != "enter" {
		t.Fatalf("NormalizeKey = %q, want enter", got)
	}
}

func TestCanPlayerUseRespectsState(t *testing.T) {
	kb := &Keybind{State: KeybindActive}
	player := NewPlayer("a", "Alice", false)

	if kb.CanPlayerUse("waiting", player, "") {
		t.Fatal("an 'active' keybind must not fire while waiting")
	}
	if !kb.CanPlayerUse("playing", player, "") {
		t.Fatal("an 'active' keybind should fire while playing")
	}
}

func TestCanPlayerUseExcludesSpectatorsByDefault(t *testing.T) {
	kb := &Keybind{State: KeybindAlways}
	spectator := NewPlayer("a", "Alice", false)
	spectator.IsSpectator = true

	if kb.CanPlayerUse("playing", spectator, "") {
		t.Fatal("a spectator should be excluded unless IncludeSpectators is set")
	}
	kb.IncludeSpectators = true
	if !kb.CanPlayerUse("playing", spectator, "") {
		t.Fatal("IncludeSpectators should let a spectator use the keybind")
	}
}

func TestCanPlayerUseRestrictsToNamedPlayers(t *testing.T) {
	kb := &Keybind{State: KeybindAlways, Players: []string{"Bob"}}
	alice := NewPlayer("a", "Alice", false)
	bob := NewPlayer("b", "Bob", false)

	if kb.CanPlayerUse("playing", alice, "") {
		t.Fatal("Alice should not be allowed to use a keybind restricted to Bob")
	}
	if !kb.CanPlayerUse("playing", bob, "") {
		t.Fatal("Bob should be allowed to use his own keybind")
	}
}

func TestCanPlayerUseRequiresFocusMatch(t *testing.T) {
	kb := &Keybind{State: KeybindAlways, RequiresFocus: true, Actions: []string{"item-1"}}
	player := NewPlayer("a", "Alice", false)

	if kb.CanPlayerUse("playing", player, "item-2") {
		t.Fatal("expected focus mismatch to block the keybind")
	}
	if !kb.CanPlayerUse("playing", player, "item-1") {
		t.Fatal("expected a matching focus to allow the keybind")
	}
}

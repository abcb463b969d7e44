package session

import (
	"testing"

	"playpalace/internal/users"
)

func TestMainMenuNavigatesToCategoriesAndBack(t *testing.T) {
	s := newTestServer(t)
	u := registerAndLogin(t, s, "alice")

	s.showMainMenu(u)
	if got := u.State().Menu; got != "main_menu" {
		t.Fatalf("Menu = %q, want main_menu", got)
	}

	s.dispatchMenu(u, "play")
	if got := u.State().Menu; got != "categories_menu" {
		t.Fatalf("Menu after 'play' = %q, want categories_menu", got)
	}

	s.dispatchMenu(u, "go_back")
	if got := u.State().Menu; got != "main_menu" {
		t.Fatalf("Menu after go_back = %q, want main_menu", got)
	}
}

func TestPendingRegistrationsMenuOnlyForAdmin(t *testing.T) {
	s := newTestServer(t)
	admin := registerAndLogin(t, s, "alice")
	player := registerAndLogin(t, s, "bob")

	s.showMainMenu(player)
	s.dispatchMenu(player, "pending_registrations")
	if got := player.State().Menu; got != "main_menu" {
		t.Fatalf("non-admin selecting pending_registrations moved to %q, want to stay on main_menu", got)
	}

	s.showMainMenu(admin)
	s.dispatchMenu(admin, "pending_registrations")
	if got := admin.State().Menu; got != "pending_registrations_menu" {
		t.Fatalf("admin selecting pending_registrations moved to %q, want pending_registrations_menu", got)
	}
}

func TestApprovingPendingRegistrationClearsIt(t *testing.T) {
	s := newTestServer(t)
	admin := registerAndLogin(t, s, "alice")
	registerAndLogin(t, s, "bob")

	pending, err := s.DB.PendingUsers()
	if err != nil {
		t.Fatalf("PendingUsers: %v", err)
	}
	if len(pending) != 1 || pending[0] != "bob" {
		t.Fatalf("PendingUsers = %v, want [bob]", pending)
	}

	s.showPendingRegistrationsMenu(admin)
	s.dispatchMenu(admin, "bob")

	pending, err = s.DB.PendingUsers()
	if err != nil {
		t.Fatalf("PendingUsers: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("PendingUsers after approval = %v, want none", pending)
	}
}

func TestCreateTableEntersInGameState(t *testing.T) {
	s := newTestServer(t)
	u := registerAndLogin(t, s, "alice")

	s.createAndEnterTable(u, "pig")
	state := u.State()
	if state.Menu != "in_game" {
		t.Fatalf("Menu after creating a table = %q, want in_game", state.Menu)
	}
	if state.TableID == "" {
		t.Fatal("expected a table id to be recorded")
	}

	if _, ok := s.Tables.TableForPlayer(u.UUID); !ok {
		t.Fatal("host was not bound to the created table")
	}
}

func TestCreateTableUnknownGameTypeFallsBackToMainMenu(t *testing.T) {
	s := newTestServer(t)
	u := registerAndLogin(t, s, "alice")

	s.createAndEnterTable(u, "not-a-real-game")
	if got := u.State().Menu; got != "main_menu" {
		t.Fatalf("Menu after failed table creation = %q, want main_menu", got)
	}
}

func TestOptionsMenuTogglesPersist(t *testing.T) {
	s := newTestServer(t)
	u := registerAndLogin(t, s, "alice")
	before := u.Preferences.PlayTurnSound

	s.showOptionsMenu(u)
	s.dispatchMenu(u, "toggle_turn_sound")

	if u.Preferences.PlayTurnSound == before {
		t.Fatal("toggle_turn_sound did not flip the in-memory preference")
	}

	rec, err := s.DB.LoadUser(u.Username)
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	saved := users.UnmarshalPreferences(rec.PreferencesRaw)
	if saved.PlayTurnSound != u.Preferences.PlayTurnSound {
		t.Fatal("toggled preference was not persisted")
	}
}

func TestLanguageMenuChangesLocaleAndPersists(t *testing.T) {
	s := newTestServer(t)
	u := registerAndLogin(t, s, "alice")

	s.showLanguageMenu(u)
	s.dispatchMenu(u, "en")

	if u.Locale != "en" {
		t.Fatalf("Locale = %q, want en", u.Locale)
	}
	rec, err := s.DB.LoadUser(u.Username)
	if err != nil {
		t.Fatalf("LoadUser: %v", err)
	}
	if rec.Locale != "en" {
		t.Fatalf("persisted locale = %q, want en", rec.Locale)
	}
}

func TestMyStatsNoDataBeforeAnyGames(t *testing.T) {
	s := newTestServer(t)
	u := registerAndLogin(t, s, "alice")

	s.showMyGameStats(u, "pig")
	if got := u.State().Menu; got != "my_game_stats" {
		t.Fatalf("Menu = %q, want my_game_stats", got)
	}
}

package tables

import (
	"testing"

	"playpalace/internal/gameframework"
	"playpalace/internal/games/pig"
)

// fakeStore is an in-memory stand-in for persistence.DB/GameStore, enough to
// exercise every TableManager path without a real database.
type fakeStore struct {
	saved   map[string]SavedTableRow
	results []gameframework.GameResult
}

func newFakeStore() *fakeStore {
	return &fakeStore{saved: make(map[string]SavedTableRow)}
}

func (f *fakeStore) SaveTable(tableID, gameType, host, membersJSON, gameJSON, status string) error {
	f.saved[tableID] = SavedTableRow{TableID: tableID, GameType: gameType, Host: host, GameJSON: gameJSON}
	return nil
}

func (f *fakeStore) DeleteSavedTable(tableID string) error {
	delete(f.saved, tableID)
	return nil
}

func (f *fakeStore) LoadSavedTables() ([]SavedTableRow, error) {
	out := make([]SavedTableRow, 0, len(f.saved))
	for _, row := range f.saved {
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeStore) LoadSavedTablesFor(host string) ([]SavedTableRow, error) {
	var out []SavedTableRow
	for _, row := range f.saved {
		if row.Host == host {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) LoadSavedTable(tableID string) (SavedTableRow, bool, error) {
	row, ok := f.saved[tableID]
	return row, ok, nil
}

func (f *fakeStore) SaveGameResult(result gameframework.GameResult) error {
	f.results = append(f.results, result)
	return nil
}

func (f *fakeStore) UpdateRatings(rankings [][]string, gameType string) error { return nil }

func newTestManager() (*TableManager, *fakeStore) {
	registry := gameframework.NewRegistry()
	pig.Register(registry)
	store := newFakeStore()
	return NewTableManager(store, registry), store
}

func TestCreateTableSeatsHost(t *testing.T) {
	mgr, _ := newTestManager()
	table, err := mgr.CreateTable("pig", "host-1", "Alice")
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	if table.Host() != "Alice" {
		t.Fatalf("Host() = %q, want Alice", table.Host())
	}
	if got, ok := mgr.TableForPlayer("host-1"); !ok || got.ID != table.ID {
		t.Fatalf("TableForPlayer did not return the created table")
	}
}

func TestCreateTableUnknownGameType(t *testing.T) {
	mgr, _ := newTestManager()
	if _, err := mgr.CreateTable("no-such-game", "host-1", "Alice"); err == nil {
		t.Fatal("expected an error for an unregistered game type")
	}
}

func TestWaitingTablesOnlyListsLobbies(t *testing.T) {
	mgr, _ := newTestManager()
	waiting, err := mgr.CreateTable("pig", "host-1", "Alice")
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}

	listed := mgr.WaitingTables("pig")
	if len(listed) != 1 || listed[0].ID != waiting.ID {
		t.Fatalf("WaitingTables = %v, want [%s]", listed, waiting.ID)
	}

	waiting.Game.Base().Status = "playing"
	if listed := mgr.WaitingTables("pig"); len(listed) != 0 {
		t.Fatalf("WaitingTables after start = %v, want none", listed)
	}
}

func TestJoinTableAsPlayerThenFull(t *testing.T) {
	mgr, _ := newTestManager()
	table, err := mgr.CreateTable("pig", "host-1", "Alice")
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	max := table.Game.GetMaxPlayers()

	for i := 1; i < max; i++ {
		id := idFor(i)
		_, outcome, err := mgr.JoinTable(table.ID, id, "Player"+id, false)
		if err != nil {
			t.Fatalf("JoinTable(%s): %v", id, err)
		}
		if outcome != JoinedAsPlayer {
			t.Fatalf("JoinTable(%s) outcome = %v, want JoinedAsPlayer", id, outcome)
		}
	}

	_, outcome, err := mgr.JoinTable(table.ID, "overflow", "Overflow", false)
	if err != nil {
		t.Fatalf("JoinTable(overflow): %v", err)
	}
	if outcome != TableIsFull {
		t.Fatalf("JoinTable(overflow) outcome = %v, want TableIsFull", outcome)
	}
}

func TestJoinTableAsSpectatorDoesNotCountTowardCapacity(t *testing.T) {
	mgr, _ := newTestManager()
	table, err := mgr.CreateTable("pig", "host-1", "Alice")
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	before := table.PlayerCount()

	_, outcome, err := mgr.JoinTable(table.ID, "spec-1", "Watcher", true)
	if err != nil {
		t.Fatalf("JoinTable: %v", err)
	}
	if outcome != JoinedAsSpectator {
		t.Fatalf("outcome = %v, want JoinedAsSpectator", outcome)
	}
	if table.PlayerCount() != before {
		t.Fatalf("PlayerCount changed after a spectator joined: %d -> %d", before, table.PlayerCount())
	}
}

func TestSaveAndRestoreTable(t *testing.T) {
	mgr, store := newTestManager()
	table, err := mgr.CreateTable("pig", "host-1", "Alice")
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	tableID := table.ID

	mgr.saveAndClose(table)
	if _, ok := mgr.Get(tableID); ok {
		t.Fatal("table still live after saveAndClose")
	}
	if _, ok := store.saved[tableID]; !ok {
		t.Fatal("saveAndClose did not persist a row")
	}

	restored, err := mgr.RestoreSavedTable(tableID)
	if err != nil {
		t.Fatalf("RestoreSavedTable: %v", err)
	}
	if restored.Host() != "Alice" {
		t.Fatalf("restored host = %q, want Alice", restored.Host())
	}
	if _, ok := store.saved[tableID]; ok {
		t.Fatal("saved row should be deleted once restored")
	}
	if _, ok := mgr.TableForPlayer("host-1"); !ok {
		t.Fatal("restored table did not rebind its host")
	}
}

func TestRestoreSavedTableMissingRow(t *testing.T) {
	mgr, _ := newTestManager()
	if _, err := mgr.RestoreSavedTable("does-not-exist"); err == nil {
		t.Fatal("expected an error restoring a nonexistent saved table")
	}
}

func TestRemoveDropsTableAndPlayerIndex(t *testing.T) {
	mgr, store := newTestManager()
	table, err := mgr.CreateTable("pig", "host-1", "Alice")
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	store.saved[table.ID] = SavedTableRow{TableID: table.ID}

	mgr.Remove(table.ID)
	if _, ok := mgr.Get(table.ID); ok {
		t.Fatal("table still present after Remove")
	}
	if _, ok := mgr.TableForPlayer("host-1"); ok {
		t.Fatal("player index not cleared after Remove")
	}
	if _, ok := store.saved[table.ID]; ok {
		t.Fatal("Remove did not delete the saved row")
	}
}

func idFor(i int) string {
	return string(rune('a' + i))
}

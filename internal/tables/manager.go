// Package tables owns every live game table: creation, lookup, the
// callback surface a game uses to persist its results and destroy itself,
// and cold-start save/restore of whatever was open when the server last
// shut down.
package tables

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"

	"playpalace/internal/gameframework"
)

// Store is the persistence surface TableManager needs: saved/loaded table
// rows, game results, and rating updates. internal/persistence implements
// this.
type Store interface {
	SaveTable(tableID, gameType, host, membersJSON, gameJSON, status string) error
	DeleteSavedTable(tableID string) error
	LoadSavedTables() ([]SavedTableRow, error)
	LoadSavedTablesFor(host string) ([]SavedTableRow, error)
	LoadSavedTable(tableID string) (SavedTableRow, bool, error)
	SaveGameResult(result gameframework.GameResult) error
	UpdateRatings(rankings [][]string, gameType string) error
}

// SavedTableRow is one row loaded back from the saved_tables table at
// startup.
type SavedTableRow struct {
	TableID  string
	GameType string
	Host     string
	GameJSON string
}

// Table wraps one live game plus the bookkeeping the manager needs: its id,
// game type, and a back-reference the game uses via TableHooks. The
// player-to-table index lives on TableManager.
type Table struct {
	ID       string
	GameType string
	Game     gameframework.GameImpl

	mgr *TableManager
}

func (t *Table) Destroy() {
	t.mgr.Remove(t.ID)
}

func (t *Table) SaveAndClose(hostUsername string) {
	t.mgr.saveAndClose(t)
}

func (t *Table) PersistResult(result gameframework.GameResult) {
	if err := t.mgr.store.SaveGameResult(result); err != nil {
		log.Printf("table %s: persist result: %v", t.ID, err)
	}
}

func (t *Table) UpdateRatings(rankings [][]string, gameType string) {
	if err := t.mgr.store.UpdateRatings(rankings, gameType); err != nil {
		log.Printf("table %s: update ratings: %v", t.ID, err)
	}
}

// TableManager holds every currently active table in memory, guarded by a
// single RWMutex (the same cache-over-store idiom used throughout this
// codebase's persistence-backed managers).
type TableManager struct {
	mu       sync.RWMutex
	tables   map[string]*Table
	byPlayer map[string]string // player/user id -> table id

	store     Store
	registry  *gameframework.Registry
	estimator gameframework.Estimator
	predictor gameframework.Predictor
	nextID    int
}

func NewTableManager(store Store, registry *gameframework.Registry) *TableManager {
	return &TableManager{
		tables:   make(map[string]*Table),
		byPlayer: make(map[string]string),
		store:    store,
		registry: registry,
	}
}

// Registry exposes the game type catalog, for session code building game
// selection menus.
func (m *TableManager) Registry() *gameframework.Registry { return m.registry }

// SetEstimator attaches the duration-estimation harness that every table
// created or restored from now on will offer its host. Optional: a
// TableManager with no estimator set simply reports the feature
// unavailable.
func (m *TableManager) SetEstimator(e gameframework.Estimator) { m.estimator = e }

// SetPredictor attaches the rating-based outcome predictor every table
// created or restored from now on will use.
func (m *TableManager) SetPredictor(p gameframework.Predictor) { m.predictor = p }

// wireHooks attaches this manager's table, estimator, and predictor hooks to
// a freshly constructed or restored game. Centralized so every entry point
// that brings a *Table to life does it identically.
func (m *TableManager) wireHooks(t *Table) {
	base := t.Game.Base()
	base.SetTable(t)
	if m.estimator != nil {
		base.SetEstimator(m.estimator)
	}
	if m.predictor != nil {
		base.SetPredictor(m.predictor)
	}
}

// CreateTable builds and registers a new table of gameType hosted by
// hostID/hostName, returning it ready for players to join.
func (m *TableManager) CreateTable(gameType, hostID, hostName string) (*Table, error) {
	impl, err := m.registry.Create(gameType)
	if err != nil {
		return nil, err
	}
	base := impl.Base()
	base.InitializeLobby(hostID, hostName)

	m.mu.Lock()
	m.nextID++
	id := fmt.Sprintf("table-%d", m.nextID)
	m.mu.Unlock()

	t := &Table{ID: id, GameType: gameType, Game: impl, mgr: m}
	m.wireHooks(t)

	m.mu.Lock()
	m.tables[id] = t
	m.byPlayer[hostID] = id
	m.mu.Unlock()

	return t, nil
}

// Get returns a live table by id.
func (m *TableManager) Get(tableID string) (*Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[tableID]
	return t, ok
}

// TableForPlayer returns the table a given player/user id is currently
// seated at, if any.
func (m *TableManager) TableForPlayer(playerID string) (*Table, bool) {
	m.mu.RLock()
	tableID, ok := m.byPlayer[playerID]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return m.Get(tableID)
}

// WaitingTables returns every live table of gameType still in its lobby
// (not yet started), for the "join a table" menu.
func (m *TableManager) WaitingTables(gameType string) []*Table {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Table
	for _, t := range m.tables {
		if t.GameType == gameType && t.Game.Base().Status == "waiting" {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Host returns the table's host username.
func (t *Table) Host() string { return t.Game.Base().Host }

// PlayerCount returns the number of non-spectator players currently seated.
func (t *Table) PlayerCount() int {
	return len(t.Game.Base().GetActivePlayers())
}

// JoinOutcome reports what kind of seat JoinTable found for a player, so the
// session layer can speak the right confirmation.
type JoinOutcome int

const (
	JoinedAsPlayer JoinOutcome = iota
	JoinedAsSpectator
	TookOverBot
	TableIsFull
)

// JoinTable seats playerID/playerName at an existing table, either as a
// full player or a spectator. A human rejoining a game already in progress
// takes over their own bot stand-in if one exists; otherwise, asking to
// join as a player against an in-progress table falls back to spectating.
// A lobby already at its maximum player count reports TableIsFull.
func (m *TableManager) JoinTable(tableID, playerID, playerName string, asSpectator bool) (*Table, JoinOutcome, error) {
	t, ok := m.Get(tableID)
	if !ok {
		return nil, 0, fmt.Errorf("no such table: %s", tableID)
	}
	base := t.Game.Base()

	if asSpectator {
		m.seatSpectator(base, playerID, playerName)
		m.bindPlayer(playerID, tableID)
		return t, JoinedAsSpectator, nil
	}

	if base.Status == "playing" {
		if p, ok := base.GetPlayerByID(playerID); ok && p.IsBot {
			p.IsBot = false
			// AttachUser still needs to be called with the live UserView;
			// this only flips bot status, since no socket identity is
			// available at this layer.
			base.BroadcastL("player-took-over", map[string]any{"player": playerName})
			base.RefreshAllMenus()
			m.bindPlayer(playerID, tableID)
			return t, TookOverBot, nil
		}
		m.seatSpectator(base, playerID, playerName)
		m.bindPlayer(playerID, tableID)
		return t, JoinedAsSpectator, nil
	}

	if len(base.GetActivePlayers()) >= t.Game.GetMaxPlayers() {
		return t, TableIsFull, nil
	}

	if _, exists := base.GetPlayerByID(playerID); !exists {
		p := base.CreatePlayer(playerID, playerName, false)
		base.Players = append(base.Players, p)
	}
	base.BroadcastL("table-joined", map[string]any{"player": playerName})
	if player, ok := base.GetPlayerByID(playerID); ok {
		base.AssembleActionSets(player)
	}
	base.RefreshAllMenus()
	m.bindPlayer(playerID, tableID)
	return t, JoinedAsPlayer, nil
}

func (m *TableManager) seatSpectator(base *gameframework.BaseGame, playerID, playerName string) {
	if _, exists := base.GetPlayerByID(playerID); exists {
		return
	}
	p := base.CreatePlayer(playerID, playerName, false)
	p.IsSpectator = true
	base.Players = append(base.Players, p)
}

func (m *TableManager) bindPlayer(playerID, tableID string) {
	m.mu.Lock()
	m.byPlayer[playerID] = tableID
	m.mu.Unlock()
}

// Remove drops a table from the live set entirely (used on lobby-empty and
// after an unrecoverable error).
func (m *TableManager) Remove(tableID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tables, tableID)
	for pid, tid := range m.byPlayer {
		if tid == tableID {
			delete(m.byPlayer, pid)
		}
	}
	if err := m.store.DeleteSavedTable(tableID); err != nil {
		log.Printf("remove table %s: %v", tableID, err)
	}
}

// saveAndClose serializes the table's game to JSON, persists it as a saved
// row, and removes it from the live set so it can be restored on the next
// server start.
func (m *TableManager) saveAndClose(t *Table) {
	base := t.Game.Base()
	data, err := gameframework.Serialize(t.Game)
	if err != nil {
		log.Printf("save table %s: %v", t.ID, err)
		return
	}
	membersJSON, _ := json.Marshal(playerIDs(base))
	if err := m.store.SaveTable(t.ID, t.GameType, base.Host, string(membersJSON), string(data), base.Status); err != nil {
		log.Printf("save table %s: %v", t.ID, err)
		return
	}
	base.BroadcastL("table-saved", nil)

	m.mu.Lock()
	delete(m.tables, t.ID)
	for pid, tid := range m.byPlayer {
		if tid == t.ID {
			delete(m.byPlayer, pid)
		}
	}
	m.mu.Unlock()
}

func playerIDs(base *gameframework.BaseGame) []string {
	ids := make([]string, 0, len(base.Players))
	for _, p := range base.Players {
		ids = append(ids, p.ID)
	}
	return ids
}

// LoadSavedTables restores every table that was open when the server last
// shut down. Per the source behavior this framework preserves, every saved
// row is deleted from the store immediately after being loaded into
// memory, whether or not the load succeeds: a save row is a one-shot
// hibernation record, never a durable backup.
func (m *TableManager) LoadSavedTables() {
	rows, err := m.store.LoadSavedTables()
	if err != nil {
		log.Printf("load saved tables: %v", err)
		return
	}

	for _, row := range rows {
		impl, err := m.registry.Restore(row.GameType, []byte(row.GameJSON))
		if err != nil {
			log.Printf("restore table %s: %v", row.TableID, err)
		} else {
			base := impl.Base()
			base.SetImpl(impl)
			t := &Table{ID: row.TableID, GameType: row.GameType, Game: impl, mgr: m}
			m.wireHooks(t)
			base.RestoreRuntime()

			m.mu.Lock()
			m.tables[row.TableID] = t
			for _, p := range base.Players {
				if !p.IsBot {
					m.byPlayer[p.ID] = row.TableID
				}
			}
			m.mu.Unlock()
		}

		if err := m.store.DeleteSavedTable(row.TableID); err != nil {
			log.Printf("delete saved table row %s: %v", row.TableID, err)
		}
	}
}

// RestoreSavedTable brings one specific hibernated table back to life on
// request (as opposed to LoadSavedTables, which restores every row found at
// startup). Used by the "saved tables" menu's restore action.
func (m *TableManager) RestoreSavedTable(tableID string) (*Table, error) {
	row, found, err := m.store.LoadSavedTable(tableID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no such saved table: %s", tableID)
	}

	impl, err := m.registry.Restore(row.GameType, []byte(row.GameJSON))
	if err != nil {
		m.store.DeleteSavedTable(tableID)
		return nil, err
	}
	base := impl.Base()
	base.SetImpl(impl)
	t := &Table{ID: row.TableID, GameType: row.GameType, Game: impl, mgr: m}
	m.wireHooks(t)
	base.RestoreRuntime()

	m.mu.Lock()
	m.tables[row.TableID] = t
	for _, p := range base.Players {
		if !p.IsBot {
			m.byPlayer[p.ID] = row.TableID
		}
	}
	m.mu.Unlock()

	if err := m.store.DeleteSavedTable(row.TableID); err != nil {
		log.Printf("delete saved table row %s: %v", row.TableID, err)
	}
	return t, nil
}

// Tick drains one tick for every live table. A panic from one table's Tick
// (a bug in a single misbehaving game) is recovered so it cannot take the
// whole scheduler down with it.
func (m *TableManager) Tick() {
	m.mu.RLock()
	current := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		current = append(current, t)
	}
	m.mu.RUnlock()

	for _, t := range current {
		m.tickOne(t)
	}
}

func (m *TableManager) tickOne(t *Table) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("table %s: recovered from panic in Tick: %v", t.ID, r)
		}
	}()
	t.Game.Base().Tick()
}

// SaveAllTables hibernates every live table, for a graceful server shutdown:
// every in-progress game is written to the saved_tables store so
// LoadSavedTables can bring it all back on the next start, instead of
// dropping whatever was mid-play.
func (m *TableManager) SaveAllTables() {
	m.mu.RLock()
	current := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		current = append(current, t)
	}
	m.mu.RUnlock()

	for _, t := range current {
		m.saveAndClose(t)
	}
}

// Count returns the number of currently live tables.
func (m *TableManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

package gameframework

import "testing"

func TestInitializeLobbySeatsHost(t *testing.T) {
	g := newFakeGame(2, 4)
	g.InitializeLobby("host-1", "Alice")

	if g.Host != "Alice" {
		t.Fatalf("Host = %q, want Alice", g.Host)
	}
	host, ok := g.GetPlayerByID("host-1")
	if !ok {
		t.Fatal("host not seated")
	}
	if len(g.ActionSetsFor(host)) == 0 {
		t.Fatal("host has no action sets assembled")
	}
}

func TestHandleAddBotAndRemoveBot(t *testing.T) {
	g := newFakeGame(2, 3)
	g.InitializeLobby("host-1", "Alice")
	host, _ := g.GetPlayerByID("host-1")

	g.HandleMenuSelection(host, "", actionAddBot)
	if g.GetBotCount() != 1 {
		t.Fatalf("GetBotCount() = %d, want 1", g.GetBotCount())
	}

	// table max is 3: host + 1 bot already seated, one more bot fits exactly.
	g.HandleMenuSelection(host, "", actionAddBot)
	if g.GetBotCount() != 2 {
		t.Fatalf("GetBotCount() after second add = %d, want 2", g.GetBotCount())
	}

	// table is now full; a third bot must not be seated.
	g.HandleMenuSelection(host, "", actionAddBot)
	if g.GetBotCount() != 2 {
		t.Fatalf("GetBotCount() after overflow add = %d, want still 2", g.GetBotCount())
	}

	var botID string
	for _, p := range g.Players {
		if p.IsBot {
			botID = p.ID
			break
		}
	}
	g.HandleMenuSelection(host, "", actionRemoveBot)
	// actionRemoveBot requires a MenuInput selection id (the bot's id), not
	// the bare action id; dispatch it the way a resolved menu choice would.
	if action, ok := g.FindAction(host, actionRemoveBot); ok {
		g.RunAction(host, action, botID, false, "", 0)
	}
	if g.GetBotCount() != 1 {
		t.Fatalf("GetBotCount() after remove = %d, want 1", g.GetBotCount())
	}
}

func TestHandleStartGameRequiresMinPlayers(t *testing.T) {
	g := newFakeGame(3, 6)
	g.InitializeLobby("host-1", "Alice")
	host, _ := g.GetPlayerByID("host-1")

	g.HandleMenuSelection(host, "", actionStartGame)
	if g.Status != "waiting" {
		t.Fatalf("Status = %q, want waiting (not enough players)", g.Status)
	}

	g.HandleMenuSelection(host, "", actionAddBot)
	g.HandleMenuSelection(host, "", actionAddBot)
	g.HandleMenuSelection(host, "", actionStartGame)
	if g.Status != "playing" {
		t.Fatalf("Status = %q, want playing", g.Status)
	}
	if !g.GameActive {
		t.Fatal("GameActive = false after start")
	}
	if g.onStartCalls != 1 {
		t.Fatalf("OnStart called %d times, want 1", g.onStartCalls)
	}
}

func TestHandleToggleSpectator(t *testing.T) {
	g := newFakeGame(2, 4)
	g.InitializeLobby("host-1", "Alice")
	host, _ := g.GetPlayerByID("host-1")

	g.HandleMenuSelection(host, "", actionToggleSpectator)
	if !host.IsSpectator {
		t.Fatal("expected host to become a spectator")
	}
	g.HandleMenuSelection(host, "", actionToggleSpectator)
	if host.IsSpectator {
		t.Fatal("expected host to stop spectating")
	}
}

func TestHandleLeaveGameMidGameReplacesWithBot(t *testing.T) {
	g := newFakeGame(2, 4)
	g.InitializeLobby("host-1", "Alice")
	host, _ := g.GetPlayerByID("host-1")
	g.HandleMenuSelection(host, "", actionAddBot)
	g.HandleMenuSelection(host, "", actionStartGame)

	g.HandleMenuSelection(host, "", actionLeaveGame)
	if !host.IsBot {
		t.Fatal("expected departing human to be converted to a bot mid-game")
	}
	if len(g.Players) != 2 {
		t.Fatalf("len(Players) = %d, want 2 (player replaced, not removed)", len(g.Players))
	}
}

func TestHandleLeaveGameInLobbyRemovesPlayerAndDestroysIfEmpty(t *testing.T) {
	g := newFakeGame(2, 4)
	table := &fakeTable{}
	g.SetTable(table)
	g.InitializeLobby("host-1", "Alice")
	host, _ := g.GetPlayerByID("host-1")

	g.HandleMenuSelection(host, "", actionLeaveGame)
	if len(g.Players) != 0 {
		t.Fatalf("len(Players) = %d, want 0", len(g.Players))
	}
	if !table.destroyed {
		t.Fatal("expected table.Destroy() to be called once the last human left")
	}
}

func TestEnabledSaveTableHostOnly(t *testing.T) {
	g := newFakeGame(2, 4)
	g.InitializeLobby("host-1", "Alice")
	host, _ := g.GetPlayerByID("host-1")
	g.HandleMenuSelection(host, "", actionAddBot)
	g.HandleMenuSelection(host, "", actionStartGame)

	bot, _ := g.GetPlayerByID(botIDOf(g))
	if reason := g.enabledSaveTable(bot); reason == "" {
		t.Fatal("expected save-table to be disabled for a non-host player")
	}
	if reason := g.enabledSaveTable(host); reason != "" {
		t.Fatalf("expected save-table to be enabled for the host, got %q", reason)
	}
}

func botIDOf(g *fakeGame) string {
	for _, p := range g.Players {
		if p.IsBot {
			return p.ID
		}
	}
	return ""
}

package pig

import (
	"testing"

	"playpalace/internal/gameframework"
)

func newReadyGame(t *testing.T, bots int) *Game {
	t.Helper()
	impl := New()
	g := impl.(*Game)
	g.InitializeLobby("host-1", "Alice")
	host, _ := g.GetPlayerByID("host-1")
	for i := 0; i < bots; i++ {
		g.HandleMenuSelection(host, "", "base.add_bot")
	}
	g.HandleMenuSelection(host, "", "base.start_game")
	return g
}

func TestNewGameHasDefaultWinningScore(t *testing.T) {
	impl := New()
	g := impl.(*Game)
	if g.Opts.WinningScore != defaultWinningScore {
		t.Fatalf("WinningScore = %d, want %d", g.Opts.WinningScore, defaultWinningScore)
	}
}

func TestStartGameSeedsScoresForActivePlayers(t *testing.T) {
	g := newReadyGame(t, 1)
	if g.Status != "playing" {
		t.Fatalf("Status = %q, want playing", g.Status)
	}
	if len(g.Scores) != 2 {
		t.Fatalf("len(Scores) = %d, want 2", len(g.Scores))
	}
}

func TestDoBankTransfersTurnTotalToScoreAndAdvancesTurn(t *testing.T) {
	g := newReadyGame(t, 1)
	cur, _ := g.CurrentTurnPlayer()
	st := g.scoreOf(cur.ID)
	st.TurnTotal = 12

	g.doBank(cur)

	if st.Score != 12 {
		t.Fatalf("Score = %d, want 12", st.Score)
	}
	if st.TurnTotal != 0 {
		t.Fatalf("TurnTotal = %d, want reset to 0", st.TurnTotal)
	}
	if next, _ := g.CurrentTurnPlayer(); next.ID == cur.ID {
		t.Fatal("expected the turn to advance after banking")
	}
}

func TestDoBankNoOpWhenNothingToBank(t *testing.T) {
	g := newReadyGame(t, 1)
	cur, _ := g.CurrentTurnPlayer()
	g.doBank(cur)
	if next, _ := g.CurrentTurnPlayer(); next.ID != cur.ID {
		t.Fatal("banking zero points must not advance the turn")
	}
}

func TestDoBankAtWinningScoreFinishesGame(t *testing.T) {
	g := newReadyGame(t, 1)
	g.Opts.WinningScore = 10
	cur, _ := g.CurrentTurnPlayer()
	g.scoreOf(cur.ID).TurnTotal = 10

	g.doBank(cur)

	if g.Status != "finished" {
		t.Fatalf("Status = %q, want finished", g.Status)
	}
}

func TestBotThinkBanksAtThreshold(t *testing.T) {
	g := newReadyGame(t, 1)
	cur, _ := g.CurrentTurnPlayer()
	st := g.scoreOf(cur.ID)

	st.TurnTotal = botBankThreshold - 1
	if action := g.BotThink(cur); action != "pig.roll" {
		t.Fatalf("BotThink below threshold = %q, want pig.roll", action)
	}

	st.TurnTotal = botBankThreshold
	if action := g.BotThink(cur); action != "pig.bank" {
		t.Fatalf("BotThink at threshold = %q, want pig.bank", action)
	}
}

func TestBuildGameResultOrdersByScoreAndRecordsWinner(t *testing.T) {
	g := newReadyGame(t, 1)
	var ids []string
	for id := range g.Scores {
		ids = append(ids, id)
	}
	g.Scores[ids[0]].Score = 50
	g.Scores[ids[1]].Score = 90

	result := g.BuildGameResult()
	if result.CustomData["winner_name"] == nil {
		t.Fatal("expected a winner_name entry in CustomData")
	}
	winnerName := result.CustomData["winner_name"].(string)
	finalScores := result.CustomData["final_scores"].(map[string]any)
	if finalScores[winnerName].(int) != 90 {
		t.Fatalf("winner's recorded score = %v, want 90", finalScores[winnerName])
	}
}

func TestUnmarshalRejectsInvalidJSON(t *testing.T) {
	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Fatal("expected an error unmarshaling invalid JSON")
	}
}

func TestUnmarshalRoundTripsOptionsAndScores(t *testing.T) {
	g := newReadyGame(t, 1)
	cur, _ := g.CurrentTurnPlayer()
	g.scoreOf(cur.ID).Score = 40
	g.Opts.WinningScore = 77

	data, err := gameframework.Serialize(g)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	impl, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	restored := impl.(*Game)
	if restored.Opts.WinningScore != 77 {
		t.Fatalf("restored WinningScore = %d, want 77", restored.Opts.WinningScore)
	}
	if restored.scoreOf(cur.ID).Score != 40 {
		t.Fatalf("restored score = %d, want 40", restored.scoreOf(cur.ID).Score)
	}
}

func TestGetRankingsForRatingDelegatesToDefault(t *testing.T) {
	g := newReadyGame(t, 1)
	result := g.BuildGameResult()
	tiers := g.GetRankingsForRating(result)
	if len(tiers) == 0 {
		t.Fatal("expected at least one ranking tier")
	}
}

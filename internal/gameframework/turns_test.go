package gameframework

import "testing"

func TestAdvanceTurnCyclesForward(t *testing.T) {
	g := newFakeGame(2, 4)
	g.SetTurnPlayers([]string{"a", "b", "c"})

	cur, ok := g.CurrentTurnPlayer()
	if ok {
		t.Fatalf("expected no current player before any players exist, got %v", cur)
	}

	g.Players = append(g.Players,
		NewPlayer("a", "Alice", false),
		NewPlayer("b", "Bob", false),
		NewPlayer("c", "Cleo", false),
	)

	cur, ok = g.CurrentTurnPlayer()
	if !ok || cur.ID != "a" {
		t.Fatalf("CurrentTurnPlayer = %v, want a", cur)
	}

	g.AdvanceTurn()
	if cur, _ := g.CurrentTurnPlayer(); cur.ID != "b" {
		t.Fatalf("after AdvanceTurn = %q, want b", cur.ID)
	}

	g.AdvanceTurn()
	if cur, _ := g.CurrentTurnPlayer(); cur.ID != "c" {
		t.Fatalf("after second AdvanceTurn = %q, want c", cur.ID)
	}

	g.AdvanceTurn()
	if cur, _ := g.CurrentTurnPlayer(); cur.ID != "a" {
		t.Fatalf("turn order did not wrap, got %q", cur.ID)
	}
}

func TestReverseTurnDirection(t *testing.T) {
	g := newFakeGame(2, 4)
	g.Players = append(g.Players, NewPlayer("a", "Alice", false), NewPlayer("b", "Bob", false), NewPlayer("c", "Cleo", false))
	g.SetTurnPlayers([]string{"a", "b", "c"})

	g.ReverseTurnDirection()
	g.AdvanceTurn()
	if cur, _ := g.CurrentTurnPlayer(); cur.ID != "c" {
		t.Fatalf("after reversing and advancing = %q, want c", cur.ID)
	}
}

func TestSkipNextPlayersAnnouncesAndSkips(t *testing.T) {
	g := newFakeGame(2, 4)
	g.Players = append(g.Players, NewPlayer("a", "Alice", false), NewPlayer("b", "Bob", false), NewPlayer("c", "Cleo", false))
	g.SetTurnPlayers([]string{"a", "b", "c"})

	g.SkipNextPlayers(1)
	g.AdvanceTurn()

	cur, _ := g.CurrentTurnPlayer()
	if cur.ID != "c" {
		t.Fatalf("expected b to be skipped, landed on %q", cur.ID)
	}
}

func TestIsPlayersTurn(t *testing.T) {
	g := newFakeGame(2, 4)
	alice := NewPlayer("a", "Alice", false)
	bob := NewPlayer("b", "Bob", false)
	g.Players = append(g.Players, alice, bob)
	g.SetTurnPlayers([]string{"a", "b"})

	if !g.IsPlayersTurn(alice) {
		t.Fatal("expected it to be Alice's turn")
	}
	if g.IsPlayersTurn(bob) {
		t.Fatal("expected it to not be Bob's turn")
	}
}

func TestResetTurnOrderKeepsPlayersButRewindsCursor(t *testing.T) {
	g := newFakeGame(2, 4)
	g.Players = append(g.Players, NewPlayer("a", "Alice", false), NewPlayer("b", "Bob", false))
	g.SetTurnPlayers([]string{"a", "b"})
	g.AdvanceTurn()

	g.ResetTurnOrder()
	if cur, _ := g.CurrentTurnPlayer(); cur.ID != "a" {
		t.Fatalf("ResetTurnOrder did not rewind to first player, got %q", cur.ID)
	}
}

package gameframework

import (
	"testing"

	"playpalace/internal/wire"
)

func TestDriveBotsSchedulesAndExecutesPendingAction(t *testing.T) {
	g := newFakeGame(2, 4)
	bot := NewPlayer("bot-1", "Ada", true)
	g.Players = append(g.Players, bot)
	g.botAction = "bot.act"
	ran := false
	g.RegisterHandler("bot.act", func(p *Player, value, actionID string) { ran = true })
	g.AddActionSet(bot, &ActionSet{Name: "turn", Actions: []*Action{{ID: "bot.act", HandlerID: "bot.act"}}})

	g.driveBots()
	if bot.BotPendingAction == "" {
		t.Fatal("expected jolt to schedule a pending action")
	}
	if bot.BotThinkTicks <= 0 {
		t.Fatal("expected a positive think delay")
	}

	thinkTicks := bot.BotThinkTicks
	for i := 0; i < thinkTicks+1; i++ {
		g.driveBots()
	}
	if !ran {
		t.Fatal("expected the bot's pending action to eventually run")
	}
}

func TestDriveBotsSkipsSpectatorsAndHumans(t *testing.T) {
	g := newFakeGame(2, 4)
	human := NewPlayer("h", "Hank", false)
	spectatingBot := NewPlayer("bot-1", "Ada", true)
	spectatingBot.IsSpectator = true
	g.Players = append(g.Players, human, spectatingBot)
	g.botAction = "bot.act"

	g.driveBots()
	if human.BotPendingAction != "" {
		t.Fatal("a human player must never get a bot pending action")
	}
	if spectatingBot.BotPendingAction != "" {
		t.Fatal("a spectating bot must not be driven")
	}
}

func TestJoltWithNoActionWaitsInstead(t *testing.T) {
	g := newFakeGame(2, 4)
	bot := NewPlayer("bot-1", "Ada", true)
	g.Players = append(g.Players, bot)
	g.botAction = ""

	g.jolt(bot)
	if bot.BotPendingAction != "" {
		t.Fatal("expected no pending action when BotThink returns empty")
	}
	if bot.BotThinkTicks != botJoltMinTicks {
		t.Fatalf("BotThinkTicks = %d, want %d", bot.BotThinkTicks, botJoltMinTicks)
	}
}

func TestExecuteBotActionSynthesizesMenuChoice(t *testing.T) {
	g := newFakeGame(2, 4)
	bot := NewPlayer("bot-1", "Ada", true)
	g.Players = append(g.Players, bot)

	var gotValue string
	g.RegisterHandler("bot.pick", func(p *Player, value, actionID string) { gotValue = value })
	g.RegisterMenuChoices("bot.choices", func(p *Player) []wire.MenuItem {
		return []wire.MenuItem{{Text: "First", ID: "first-id"}, {Text: "Second", ID: "second-id"}}
	})
	g.AddActionSet(bot, &ActionSet{Name: "turn", Actions: []*Action{
		{ID: "bot.pick", HandlerID: "bot.pick", MenuInput: &MenuInput{ChoicesFn: "bot.choices"}},
	}})

	g.executeBotAction(bot, "bot.pick")
	if gotValue != "first-id" {
		t.Fatalf("gotValue = %q, want first-id (first menu choice picked by default)", gotValue)
	}
}

func TestExecuteBotActionSynthesizesEditboxDefault(t *testing.T) {
	g := newFakeGame(2, 4)
	bot := NewPlayer("bot-1", "Ada", true)
	g.Players = append(g.Players, bot)

	var gotValue string
	g.RegisterHandler("bot.type", func(p *Player, value, actionID string) { gotValue = value })
	g.AddActionSet(bot, &ActionSet{Name: "turn", Actions: []*Action{
		{ID: "bot.type", HandlerID: "bot.type", EditboxInput: &EditboxInput{Default: "42"}},
	}})

	g.executeBotAction(bot, "bot.type")
	if gotValue != "42" {
		t.Fatalf("gotValue = %q, want 42 (the editbox default)", gotValue)
	}
}

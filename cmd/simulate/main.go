// Command simulate plays one game type to completion with bots only, and
// reports how many ticks it took. It is the subprocess internal/estimate's
// Harness shells out to in batches; it never talks to a database or a real
// client, and its entire interface is its flags in and one JSON line out.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"

	"playpalace/internal/games/pig"
	"playpalace/internal/gameframework"
)

// maxTicks bounds a single run so a stuck bot loop (or a genuinely
// pathological options combination) can't hang the harness forever.
const maxTicks = 200 * gameframework.TicksPerSecond * 60 // 200 simulated minutes

// simResult mirrors internal/estimate's unexported type; the two are
// connected only by this JSON shape, not by a shared Go type.
type simResult struct {
	Ticks int    `json:"ticks"`
	Error string `json:"error,omitempty"`
}

// noopHooks satisfies gameframework.TableHooks for a table that has no real
// table behind it: a bot-only run never has a human player, so FinishGame
// never reaches these in practice, but Tick must still have somewhere safe
// to call back into.
type noopHooks struct{}

func (noopHooks) Destroy()                                          {}
func (noopHooks) SaveAndClose(string)                                {}
func (noopHooks) PersistResult(gameframework.GameResult)             {}
func (noopHooks) UpdateRatings(rankings [][]string, gameType string) {}

func main() {
	gameType := flag.String("game", "", "registered game type id")
	optionsJSON := flag.String("options", "{}", "JSON object of option key/value pairs")
	botCount := flag.Int("bots", 2, "number of bot players to seat")
	seed := flag.Int("seed", 0, "random seed for this run")
	flag.Parse()

	result := run(*gameType, *optionsJSON, *botCount, *seed)
	data, err := json.Marshal(result)
	if err != nil {
		fmt.Println(`{"ticks":0,"error":"encode result"}`)
		return
	}
	fmt.Println(string(data))
}

func run(gameType, optionsJSON string, botCount, seed int) (result simResult) {
	defer func() {
		if r := recover(); r != nil {
			result = simResult{Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	rand.Seed(int64(seed))

	registry := gameframework.NewRegistry()
	pig.Register(registry)

	impl, err := registry.Create(gameType)
	if err != nil {
		return simResult{Error: err.Error()}
	}
	base := impl.Base()
	base.SetTable(noopHooks{})

	if botCount < impl.GetMinPlayers() {
		botCount = impl.GetMinPlayers()
	}
	if botCount > impl.GetMaxPlayers() {
		botCount = impl.GetMaxPlayers()
	}

	base.InitializeLobby("sim-host", "Host")
	host, _ := base.GetPlayerByID("sim-host")

	if err := applyOptions(impl, optionsJSON); err != nil {
		return simResult{Error: err.Error()}
	}

	for i := 1; i < botCount; i++ {
		base.HandleMenuSelection(host, "", "base.add_bot")
	}
	host.IsBot = true

	base.HandleMenuSelection(host, "", "base.start_game")
	if base.Status != "playing" {
		return simResult{Error: "game did not start (not enough players for this type?)"}
	}

	for tick := 0; tick < maxTicks; tick++ {
		base.Tick()
		if base.Status == "finished" {
			return simResult{Ticks: base.SoundSchedulerTick}
		}
	}
	return simResult{Error: "simulation exceeded the maximum tick budget"}
}

// applyOptions decodes the harness's option snapshot and feeds each value
// back through the game's own OptionField.Set, converting from JSON's
// generic numeric type to whatever the field actually expects.
func applyOptions(impl gameframework.GameImpl, optionsJSON string) error {
	provider := impl.Options()
	if provider == nil {
		return nil
	}
	var snapshot map[string]any
	if err := json.Unmarshal([]byte(optionsJSON), &snapshot); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	for _, field := range provider.Describe() {
		raw, ok := snapshot[field.Key]
		if !ok {
			continue
		}
		var value any
		switch field.Kind {
		case gameframework.OptionKindInt:
			f, ok := raw.(float64)
			if !ok {
				return fmt.Errorf("option %s: expected a number", field.Key)
			}
			value = int(f)
		case gameframework.OptionKindFloat:
			f, ok := raw.(float64)
			if !ok {
				return fmt.Errorf("option %s: expected a number", field.Key)
			}
			value = f
		case gameframework.OptionKindBool:
			b, ok := raw.(bool)
			if !ok {
				return fmt.Errorf("option %s: expected a boolean", field.Key)
			}
			value = b
		default:
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("option %s: expected a string", field.Key)
			}
			value = s
		}
		if err := field.Set(value); err != nil {
			return fmt.Errorf("option %s: %w", field.Key, err)
		}
	}
	return nil
}

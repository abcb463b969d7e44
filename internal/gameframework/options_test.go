package gameframework

import "testing"

func TestIntOptionValidateClampsToRange(t *testing.T) {
	value := 50
	field := IntOption("score", "Score", 10, 100,
		func() any { return value },
		func(v any) error { value = v.(int); return nil })

	got, errKey := field.Validate("500")
	if errKey != "" {
		t.Fatalf("errKey = %q, want none", errKey)
	}
	if got.(int) != 100 {
		t.Fatalf("got = %v, want clamped to 100", got)
	}

	got, errKey = field.Validate("-5")
	if got.(int) != 10 {
		t.Fatalf("got = %v, want clamped to 10", got)
	}

	if _, errKey := field.Validate("not-a-number"); errKey == "" {
		t.Fatal("expected an error key for a non-numeric value")
	}
}

func TestFloatOptionFormatValue(t *testing.T) {
	value := 1.5
	field := FloatOption("speed", "Speed", 0, 5, 2,
		func() any { return value },
		func(v any) error { value = v.(float64); return nil })

	if got := field.FormatValue(); got != "1.50" {
		t.Fatalf("FormatValue() = %q, want 1.50", got)
	}
}

func TestBoolOptionFormatValue(t *testing.T) {
	value := false
	field := BoolOption("sound", "Sound",
		func() any { return value },
		func(v any) error { value = v.(bool); return nil })

	if got := field.FormatValue(); got != "off" {
		t.Fatalf("FormatValue() = %q, want off", got)
	}
	value = true
	if got := field.FormatValue(); got != "on" {
		t.Fatalf("FormatValue() = %q, want on", got)
	}
}

func TestMenuOptionValidateRejectsUnknownChoice(t *testing.T) {
	value := "easy"
	field := MenuOption("difficulty", "Difficulty",
		func() []string { return []string{"easy", "hard"} },
		map[string]string{"easy": "Easy", "hard": "Hard"},
		func() any { return value },
		func(v any) error { value = v.(string); return nil })

	if _, errKey := field.Validate("impossible"); errKey == "" {
		t.Fatal("expected an error for an unlisted choice")
	}
	got, errKey := field.Validate("hard")
	if errKey != "" || got.(string) != "hard" {
		t.Fatalf("Validate(hard) = (%v, %q), want (hard, \"\")", got, errKey)
	}
}

func TestTeamModeOptionOffersValidModesOnly(t *testing.T) {
	mode := "individual"
	field := TeamModeOption(4, 6,
		func() any { return mode },
		func(v any) error { mode = v.(string); return nil })

	choices := field.Choices()
	if len(choices) == 0 || choices[0] != "individual" {
		t.Fatalf("Choices() = %v, want individual first", choices)
	}
}

func TestGetAllTeamModesRequiresEnoughPlayersForFixedTeams(t *testing.T) {
	modes := GetAllTeamModes(2, 3)
	for _, m := range modes {
		if m != "individual" {
			t.Fatalf("GetAllTeamModes(2,3) = %v, should only allow individual play with 3 max players", modes)
		}
	}

	modes = GetAllTeamModes(4, 4)
	found := false
	for _, m := range modes {
		if m == "2v2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("GetAllTeamModes(4,4) = %v, want 2v2 to be offered", modes)
	}
}

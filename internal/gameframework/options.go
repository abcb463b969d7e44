package gameframework

import (
	"fmt"
	"strconv"
)

// OptionKind distinguishes the value types an OptionField can carry.
type OptionKind string

const (
	OptionKindInt      OptionKind = "int"
	OptionKindFloat    OptionKind = "float"
	OptionKindBool     OptionKind = "bool"
	OptionKindMenu     OptionKind = "menu"
	OptionKindTeamMode OptionKind = "team_mode"
)

// OptionField is the declarative metadata for one tunable game option. Go
// has no dataclass-style field annotations, so each game's Options type
// implements OptionsProvider.Describe(), returning one OptionField per
// tunable field with Get/Set closures standing in for reflective field
// access (see SPEC_FULL.md Design Notes).
type OptionField struct {
	Key   string
	Kind  OptionKind
	Label string

	Get func() any
	Set func(any) error

	// int / float bounds
	Min, Max      float64
	DecimalPlaces int

	// menu / team_mode choices
	Choices      func() []string
	ChoiceLabels map[string]string
}

// OptionsProvider is implemented by a game's Options type to expose its
// tunable fields declaratively.
type OptionsProvider interface {
	Describe() []OptionField
}

// IntOption builds an OptionField for a clamped integer.
func IntOption(key, label string, min, max int, get func() any, set func(any) error) OptionField {
	return OptionField{Key: key, Kind: OptionKindInt, Label: label, Min: float64(min), Max: float64(max), Get: get, Set: set}
}

// FloatOption builds an OptionField for a clamped float.
func FloatOption(key, label string, min, max float64, decimalPlaces int, get func() any, set func(any) error) OptionField {
	return OptionField{Key: key, Kind: OptionKindFloat, Label: label, Min: min, Max: max, DecimalPlaces: decimalPlaces, Get: get, Set: set}
}

// BoolOption builds an OptionField for a toggle.
func BoolOption(key, label string, get func() any, set func(any) error) OptionField {
	return OptionField{Key: key, Kind: OptionKindBool, Label: label, Get: get, Set: set}
}

// MenuOption builds an OptionField for a choice among named options.
func MenuOption(key, label string, choices func() []string, choiceLabels map[string]string, get func() any, set func(any) error) OptionField {
	return OptionField{Key: key, Kind: OptionKindMenu, Label: label, Choices: choices, ChoiceLabels: choiceLabels, Get: get, Set: set}
}

// TeamModeOption is a MenuOption specialized to the game's valid team modes.
func TeamModeOption(minPlayers, maxPlayers int, get func() any, set func(any) error) OptionField {
	return OptionField{
		Key:   "team_mode",
		Kind:  OptionKindTeamMode,
		Label: "Team mode",
		Choices: func() []string {
			return GetAllTeamModes(minPlayers, maxPlayers)
		},
		Get: get,
		Set: set,
	}
}

// FormatValue renders the option's current value for interpolation into its
// action label.
func (f OptionField) FormatValue() string {
	v := f.Get()
	switch f.Kind {
	case OptionKindFloat:
		fv, _ := v.(float64)
		return strconv.FormatFloat(fv, 'f', f.DecimalPlaces, 64)
	case OptionKindBool:
		bv, _ := v.(bool)
		if bv {
			return "on"
		}
		return "off"
	case OptionKindMenu, OptionKindTeamMode:
		sv := fmt.Sprint(v)
		if label, ok := f.ChoiceLabels[sv]; ok {
			return label
		}
		return sv
	default:
		return fmt.Sprint(v)
	}
}

// Validate clamps/validates a raw submitted string against this field's
// kind, returning the typed value to store or an error localization key.
func (f OptionField) Validate(raw string) (any, string) {
	switch f.Kind {
	case OptionKindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, "option-invalid-number"
		}
		if n < int(f.Min) {
			n = int(f.Min)
		}
		if n > int(f.Max) {
			n = int(f.Max)
		}
		return n, ""
	case OptionKindFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, "option-invalid-number"
		}
		if n < f.Min {
			n = f.Min
		}
		if n > f.Max {
			n = f.Max
		}
		return n, ""
	case OptionKindMenu, OptionKindTeamMode:
		for _, c := range f.Choices() {
			if c == raw {
				return raw, ""
			}
		}
		return nil, "option-invalid-choice"
	default:
		return nil, "option-invalid-choice"
	}
}

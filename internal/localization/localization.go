// Package localization provides the opaque lookup(locale, key, args) -> string
// contract the game framework renders all user-facing text through. The
// message catalog itself is treated as an external collaborator (spec
// Non-goals); this package ships a minimal embedded English catalog plus the
// substitution mechanics so the module is runnable end to end.
package localization

import (
	"fmt"
	"strings"
	"sync"
)

// catalog maps locale -> message key -> template. Templates use {name} style
// placeholders, substituted by name from the args map.
var (
	mu      sync.RWMutex
	catalog = map[string]map[string]string{
		"en": defaultEnglishCatalog,
	}
)

// Get renders key in locale, substituting args. Unknown locales fall back to
// "en"; unknown keys render as the bracketed key itself so missing strings
// are visible rather than silently blank.
func Get(locale, key string, args map[string]any) string {
	mu.RLock()
	defer mu.RUnlock()

	bundle, ok := catalog[locale]
	if !ok {
		bundle = catalog["en"]
	}

	template, ok := bundle[key]
	if !ok {
		template = catalog["en"][key]
	}
	if template == "" {
		return "[" + key + "]"
	}

	return substitute(template, args)
}

// nativeNames gives each installed locale's name as written in that
// language itself, used when listing languages to choose from.
var nativeNames = map[string]string{
	"en": "English",
}

// AvailableLanguages returns every installed locale code mapped to its
// native name from nativeNames, or to the code itself when no native name is
// known. Names are not translated into the viewer's language.
func AvailableLanguages() map[string]string {
	mu.RLock()
	defer mu.RUnlock()
	out := make(map[string]string, len(catalog))
	for code := range catalog {
		if name, ok := nativeNames[code]; ok {
			out[code] = name
		} else {
			out[code] = code
		}
	}
	return out
}

// RegisterBundle installs or replaces the message bundle for a locale. Used
// to load additional locales at startup from a locales directory; a bundle
// not explicitly loaded simply falls back to English. nativeName is how the
// locale should be displayed in a language picker; pass "" to reuse the
// locale code verbatim.
func RegisterBundle(locale string, messages map[string]string, nativeName string) {
	mu.Lock()
	defer mu.Unlock()
	catalog[locale] = messages
	if nativeName != "" {
		nativeNames[locale] = nativeName
	}
}

func substitute(template string, args map[string]any) string {
	if len(args) == 0 {
		return template
	}
	out := template
	for k, v := range args {
		out = strings.ReplaceAll(out, "{"+k+"}", fmt.Sprint(v))
	}
	return out
}

var defaultEnglishCatalog = map[string]string{
	"user-online":              "{player} has come online.",
	"user-offline":             "{player} has gone offline.",
	"go-back":                  "Go back",
	"start-game":               "Start game",
	"add-bot":                  "Add bot",
	"remove-bot":               "Remove bot",
	"spectate":                 "Spectate",
	"leave-table":              "Leave table",
	"actions-menu":             "Actions menu",
	"save-table":               "Save table",
	"whose-turn":               "Whose turn is it?",
	"check-scores":             "Check scores",
	"check-scores-detailed":    "Check detailed scores",
	"predict-outcomes":         "Predict outcomes",
	"estimate-duration":        "Estimate duration",
	"enter-bot-name":           "Enter a name for the new bot",
	"no-bot-names-available":   "No bot names are available.",
	"table-joined":             "{player} has joined the table.",
	"table-left":               "{player} has left the table.",
	"now-spectating":           "{player} is now spectating.",
	"now-playing":              "{player} is now playing.",
	"player-replaced-by-bot":   "{player} has been replaced by a bot.",
	"new-host":                 "{player} is now the host.",
	"game-starting":            "The game is starting.",
	"game-over":                "Game over.",
	"game-turn-start":          "It is {player}'s turn.",
	"game-no-turn":             "No one is currently taking a turn.",
	"no-scores-available":      "No scores are available yet.",
	"no-actions-available":     "No actions are currently available.",
	"context-menu":             "Actions menu.",
	"predict-unavailable":      "Outcome prediction is not available for this table.",
	"predict-need-players":     "At least two human players are needed to predict outcomes.",
	"predict-header":           "Predicted outcomes:",
	"table-saved":              "The table has been saved. Goodbye!",
	"table-restored":           "The table has been restored.",
	"table-restore-missing":    "Not every saved player is currently available to rejoin.",
	"dice-locked":              "That die is locked and cannot be toggled.",
	"poker-raise-too-small":    "That raise is smaller than the minimum allowed raise.",
	"estimate-already-running": "A duration estimate is already running.",
	"estimate-failed":          "The duration estimate could not be completed.",
	"estimate-result":          "Estimated bot duration: {bot_duration}; estimated human duration: {human_duration}.",
	"estimate-unavailable":     "Duration estimation is not available on this server.",
	"estimate-started":         "Duration estimate started; results will be announced shortly.",
	"player-skipped":           "{player}'s turn was skipped.",
	"lobby-not-enough-players": "There are not enough players to start the game yet.",
	"lobby-table-full":         "This table is full.",
	"lobby-no-bots-to-remove":  "There are no bots at this table to remove.",
	"save-table-host-only":     "Only the host can save and close this table.",
	"option-invalid-number":    "That is not a valid number.",
	"option-invalid-choice":    "That is not a valid choice.",

	"play":                      "Play",
	"saved-tables":              "Saved tables",
	"leaderboards":              "Leaderboards",
	"my-stats":                  "My stats",
	"options":                   "Options",
	"logout":                    "Log out",
	"goodbye":                   "Goodbye!",
	"back":                      "Back",
	"create-table":              "Create a table",
	"table-listing":             "{host}'s table ({count} players)",
	"join-as-player":            "Join as a player",
	"join-as-spectator":         "Join as a spectator",
	"table-not-exists":          "That table no longer exists.",
	"table-created":             "You have created a {game} table.",
	"waiting-for-players":       "Waiting for players: {current} of {min} to {max}.",
	"table-full":                "That table is full.",
	"game-type-not-found":       "That game type is not recognized.",
	"spectator-joined":          "{host}'s table is now being spectated.",
	"player-took-over":          "{player} has taken over for a bot.",
	"no-saved-tables":           "You have no saved tables.",
	"restore-table":             "Restore this table",
	"delete-saved-table":        "Delete this saved table",
	"saved-table-deleted":       "The saved table has been deleted.",
	"missing-players":           "Not every player is available to rejoin: {players}.",
	"table-saved-destroying":    "The table has been saved and closed.",
	"language-option":           "Language: {language}",
	"turn-sound-option":         "Turn sound: {status}",
	"clear-kept-option":         "Clear kept dice on roll: {status}",
	"dice-keeping-style-option": "Dice keeping style: {style}",
	"option-on":                 "on",
	"option-off":                "off",
	"dice-keeping-style-indexes": "by screen position",
	"dice-keeping-style-values":  "by face value",
	"dice-keeping-style-changed": "Dice keeping style set to {style}.",
	"language-changed":          "Language changed to {language}.",
	"leaderboard-no-data":       "No results have been recorded for this game yet.",
	"leaderboard-no-ratings":    "No ratings have been recorded for this game yet.",
	"leaderboard-type-wins":     "Most wins",
	"leaderboard-type-rating":   "Skill rating",
	"leaderboard-type-total-score": "Total score",
	"leaderboard-type-high-score":  "High score",
	"leaderboard-type-games-played": "Games played",
	"leaderboard-wins-entry":    "{rank}. {player}: {wins} wins, {losses} losses ({percentage}%).",
	"leaderboard-rating-entry":  "{rank}. {player}: rating {rating} (mu {mu}, sigma {sigma}).",
	"leaderboard-score-entry":   "{rank}. {player}: {value}.",
	"leaderboard-games-entry":   "{rank}. {player}: {value} games.",
	"my-stats-no-games":         "You have not played any games yet.",
	"my-stats-no-data":          "No stats are available for this game yet.",
	"my-stats-games-played":     "Games played: {value}",
	"my-stats-wins":             "Wins: {value}",
	"my-stats-losses":           "Losses: {value}",
	"my-stats-winrate":          "Win rate: {value}%",
	"my-stats-total-score":      "Total score: {value}",
	"my-stats-high-score":       "High score: {value}",
	"my-stats-rating":           "Rating: {value} (mu {mu}, sigma {sigma})",
	"my-stats-no-rating":        "You have not yet played enough games to have a rating.",
	"welcome":                   "Welcome, {player}!",
	"login-failed":              "Incorrect username or password.",
	"login-not-approved":        "Your account is awaiting administrator approval.",
	"register-username-taken":  "That username is already registered.",
	"register-success":         "Registration successful. Welcome, {player}!",
	"pending-registrations":    "Pending registrations",
	"no-pending-registrations": "There are no pending registrations.",
	"registration-approved":    "{player}'s registration has been approved.",

	"pig-you-rolled-one":    "You rolled a 1 and lost {lost} unbanked points.",
	"pig-player-rolled-one": "{player} rolled a 1 and lost {lost} unbanked points.",
	"pig-you-rolled":        "You rolled a {roll}. Turn total: {total}.",
	"pig-player-rolled":     "{player} rolled a {roll}. Turn total: {total}.",
	"pig-you-banked":        "You banked {banked} points. Score: {score}.",
	"pig-player-banked":     "{player} banked {banked} points. Score: {score}.",
	"pig-player-won":        "{player} has won the game!",
	"pig-nothing-to-bank":   "There is nothing to bank yet.",
}

package session

import (
	"fmt"
	"sort"

	"playpalace/internal/localization"
	"playpalace/internal/tables"
	"playpalace/internal/users"
	"playpalace/internal/wire"
)

// dispatchMenu routes a menu selection packet against the shell's own state
// machine (as opposed to a game's), based on where the user currently is.
func (s *Server) dispatchMenu(u *users.User, selectionID string) {
	state := u.State()
	switch state.Menu {
	case "main_menu":
		s.onMainMenu(u, selectionID)
	case "categories_menu":
		s.onCategoriesMenu(u, selectionID)
	case "games_menu":
		s.onGamesMenu(u, selectionID, state)
	case "tables_menu":
		s.onTablesMenu(u, selectionID, state)
	case "join_menu":
		s.onJoinMenu(u, selectionID, state)
	case "saved_tables_menu":
		s.onSavedTablesMenu(u, selectionID)
	case "saved_table_actions_menu":
		s.onSavedTableActionsMenu(u, selectionID, state)
	case "options_menu":
		s.onOptionsMenu(u, selectionID)
	case "language_menu":
		s.onLanguageMenu(u, selectionID)
	case "dice_keeping_style_menu":
		s.onDiceKeepingStyleMenu(u, selectionID)
	case "leaderboards_menu":
		s.onLeaderboardsMenu(u, selectionID)
	case "leaderboard_types_menu":
		s.onLeaderboardTypesMenu(u, selectionID, state)
	case "game_leaderboard":
		s.onGameLeaderboard(u, selectionID)
	case "my_stats_menu":
		s.onMyStatsMenu(u, selectionID)
	case "my_game_stats":
		s.onMyGameStats(u, selectionID)
	case "pending_registrations_menu":
		s.onPendingRegistrationsMenu(u, selectionID)
	default:
		s.showMainMenu(u)
	}
}

func menuItems(pairs ...[2]string) []wire.MenuItem {
	items := make([]wire.MenuItem, 0, len(pairs))
	for _, p := range pairs {
		items = append(items, wire.MenuItem{Text: p[0], ID: p[1]})
	}
	return items
}

func goBackItem(u *users.User) [2]string {
	return [2]string{localization.Get(u.Locale, "go-back", nil), "go_back"}
}

func (s *Server) showMainMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "main_menu"})
	var items []wire.MenuItem
	items = append(items,
		wire.MenuItem{Text: localization.Get(u.Locale, "play", nil), ID: "play"},
		wire.MenuItem{Text: localization.Get(u.Locale, "saved-tables", nil), ID: "saved_tables"},
		wire.MenuItem{Text: localization.Get(u.Locale, "leaderboards", nil), ID: "leaderboards"},
		wire.MenuItem{Text: localization.Get(u.Locale, "my-stats", nil), ID: "my_stats"},
		wire.MenuItem{Text: localization.Get(u.Locale, "options", nil), ID: "options"},
	)
	if u.TrustLevel == users.TrustAdmin {
		items = append(items, wire.MenuItem{Text: localization.Get(u.Locale, "pending-registrations", nil), ID: "pending_registrations"})
	}
	items = append(items, wire.MenuItem{Text: localization.Get(u.Locale, "logout", nil), ID: "logout"})
	u.ShowMenu("main_menu", items, true, wire.EscapeNone)
}

func (s *Server) onMainMenu(u *users.User, selectionID string) {
	switch selectionID {
	case "play":
		s.showCategoriesMenu(u)
	case "saved_tables":
		s.showSavedTablesMenu(u)
	case "leaderboards":
		s.showLeaderboardsMenu(u)
	case "my_stats":
		s.showMyStatsMenu(u)
	case "options":
		s.showOptionsMenu(u)
	case "pending_registrations":
		if u.TrustLevel == users.TrustAdmin {
			s.showPendingRegistrationsMenu(u)
		}
	case "logout":
		u.SpeakL("goodbye", nil)
		u.Connection().Send(wire.Disconnect("", false))
	}
}

func (s *Server) showPendingRegistrationsMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "pending_registrations_menu"})
	pending, err := s.DB.PendingUsers()
	if err != nil || len(pending) == 0 {
		u.SpeakL("no-pending-registrations", nil)
	}
	sort.Strings(pending)

	var items []wire.MenuItem
	for _, username := range pending {
		items = append(items, wire.MenuItem{Text: username, ID: username})
	}
	items = append(items, wire.MenuItem{Text: localization.Get(u.Locale, "go-back", nil), ID: "go_back"})
	u.ShowMenu("pending_registrations_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onPendingRegistrationsMenu(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showMainMenu(u)
		return
	}
	if err := s.DB.ApproveUser(selectionID); err == nil {
		u.SpeakL("registration-approved", map[string]any{"player": selectionID})
	}
	s.showPendingRegistrationsMenu(u)
}

// categories lists the lobby categories concrete games are grouped under, in
// a fixed, stable display order.
var categories = []string{"dice", "cards", "other"}

func (s *Server) showCategoriesMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "categories_menu"})
	listings := s.Tables.Registry().List()
	present := map[string]bool{}
	for _, l := range listings {
		present[l.Category] = true
	}

	var items []wire.MenuItem
	for _, c := range categories {
		if present[c] {
			items = append(items, wire.MenuItem{Text: c, ID: c})
		}
	}
	items = append(items, wire.MenuItem{
		Text: localization.Get(u.Locale, "go-back", nil),
		ID:   "go_back",
	})
	u.ShowMenu("categories_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onCategoriesMenu(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showMainMenu(u)
		return
	}
	s.showGamesMenu(u, selectionID)
}

func (s *Server) showGamesMenu(u *users.User, category string) {
	u.SetState(users.MenuState{Menu: "games_menu", Category: category})
	var items []wire.MenuItem
	for _, l := range s.Tables.Registry().List() {
		if l.Category == category {
			items = append(items, wire.MenuItem{Text: l.Name, ID: l.Type})
		}
	}
	items = append(items, wire.MenuItem{Text: localization.Get(u.Locale, "go-back", nil), ID: "go_back"})
	u.ShowMenu("games_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onGamesMenu(u *users.User, selectionID string, state users.MenuState) {
	if selectionID == "go_back" {
		s.showCategoriesMenu(u)
		return
	}
	s.showTablesMenu(u, selectionID)
}

func (s *Server) showTablesMenu(u *users.User, gameType string) {
	name := s.gameNameFor(gameType)
	u.SetState(users.MenuState{Menu: "tables_menu", GameType: gameType, GameName: name})

	var items []wire.MenuItem
	for _, t := range s.Tables.WaitingTables(gameType) {
		text := localization.Get(u.Locale, "table-listing", map[string]any{
			"host":  t.Host(),
			"count": t.PlayerCount(),
		})
		items = append(items, wire.MenuItem{Text: text, ID: t.ID})
	}
	items = append(items,
		wire.MenuItem{Text: localization.Get(u.Locale, "create-table", nil), ID: "create_table"},
		wire.MenuItem{Text: localization.Get(u.Locale, "go-back", nil), ID: "go_back"},
	)
	u.ShowMenu("tables_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onTablesMenu(u *users.User, selectionID string, state users.MenuState) {
	switch selectionID {
	case "go_back":
		s.showGamesMenu(u, state.Category)
	case "create_table":
		s.createAndEnterTable(u, state.GameType)
	default:
		s.showJoinMenu(u, state.GameType, selectionID)
	}
}

func (s *Server) createAndEnterTable(u *users.User, gameType string) {
	t, err := s.Tables.CreateTable(gameType, u.UUID, u.Username)
	if err != nil {
		u.SpeakL("game-type-not-found", nil)
		s.showMainMenu(u)
		return
	}
	u.SpeakL("table-created", map[string]any{"game": s.gameNameFor(gameType)})
	s.enterTable(u, t)
}

func (s *Server) showJoinMenu(u *users.User, gameType, tableID string) {
	if _, ok := s.Tables.Get(tableID); !ok {
		u.SpeakL("table-not-exists", nil)
		s.showTablesMenu(u, gameType)
		return
	}
	u.SetState(users.MenuState{Menu: "join_menu", GameType: gameType, TableID: tableID})
	items := menuItems(
		[2]string{localization.Get(u.Locale, "join-as-player", nil), "join_player"},
		[2]string{localization.Get(u.Locale, "join-as-spectator", nil), "join_spectator"},
		goBackItem(u),
	)
	u.ShowMenu("join_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onJoinMenu(u *users.User, selectionID string, state users.MenuState) {
	switch selectionID {
	case "go_back":
		s.showTablesMenu(u, state.GameType)
	case "join_player", "join_spectator":
		s.joinAndEnterTable(u, state.TableID, selectionID == "join_spectator")
	}
}

func (s *Server) joinAndEnterTable(u *users.User, tableID string, asSpectator bool) {
	t, outcome, err := s.Tables.JoinTable(tableID, u.UUID, u.Username, asSpectator)
	if err != nil {
		u.SpeakL("table-not-exists", nil)
		s.showMainMenu(u)
		return
	}

	switch outcome {
	case tables.TableIsFull:
		u.SpeakL("table-full", nil)
		s.showMainMenu(u)
		return
	case tables.TookOverBot:
		u.SpeakL("player-took-over", map[string]any{"player": u.Username})
	case tables.JoinedAsSpectator:
		u.SpeakL("spectator-joined", map[string]any{"host": t.Host()})
	}

	s.enterTable(u, t)
}

func (s *Server) enterTable(u *users.User, t *tables.Table) {
	u.SetState(users.MenuState{Menu: "in_game", TableID: t.ID})
	base := t.Game.Base()
	if player, ok := base.GetPlayerByID(u.UUID); ok {
		base.AttachUser(player.ID, u)
		base.AssembleActionSets(player)
		base.RefreshMenu(player)
	}
}

func (s *Server) showSavedTablesMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "saved_tables_menu"})
	rows, err := s.DB.LoadSavedTablesFor(u.Username)
	if err != nil || len(rows) == 0 {
		u.SpeakL("no-saved-tables", nil)
	}

	var items []wire.MenuItem
	for _, row := range rows {
		items = append(items, wire.MenuItem{
			Text: localization.Get(u.Locale, "table-listing", map[string]any{"host": row.Host, "count": 0}),
			ID:   row.TableID,
		})
	}
	items = append(items, wire.MenuItem{Text: localization.Get(u.Locale, "go-back", nil), ID: "go_back"})
	u.ShowMenu("saved_tables_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onSavedTablesMenu(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showMainMenu(u)
		return
	}
	u.SetState(users.MenuState{Menu: "saved_table_actions_menu", SaveID: 0, TableID: selectionID})
	items := menuItems(
		[2]string{localization.Get(u.Locale, "restore-table", nil), "restore"},
		[2]string{localization.Get(u.Locale, "delete-saved-table", nil), "delete"},
		goBackItem(u),
	)
	u.ShowMenu("saved_table_actions_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onSavedTableActionsMenu(u *users.User, selectionID string, state users.MenuState) {
	switch selectionID {
	case "go_back":
		s.showSavedTablesMenu(u)
	case "restore":
		t, err := s.Tables.RestoreSavedTable(state.TableID)
		if err != nil {
			u.SpeakL("table-restore-missing", nil)
			s.showSavedTablesMenu(u)
			return
		}
		u.SpeakL("table-restored", nil)
		s.enterTable(u, t)
	case "delete":
		s.DB.DeleteSavedTable(state.TableID)
		u.SpeakL("saved-table-deleted", nil)
		s.showSavedTablesMenu(u)
	}
}

func (s *Server) showOptionsMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "options_menu"})
	langName := localization.AvailableLanguages()[u.Locale]
	status := func(on bool) string {
		if on {
			return localization.Get(u.Locale, "option-on", nil)
		}
		return localization.Get(u.Locale, "option-off", nil)
	}
	styleKey := "dice-keeping-style-indexes"
	if u.Preferences.DiceKeepingStyle == users.DiceKeepByFaceValue {
		styleKey = "dice-keeping-style-values"
	}

	items := menuItems(
		[2]string{localization.Get(u.Locale, "language-option", map[string]any{"language": langName}), "language"},
		[2]string{localization.Get(u.Locale, "turn-sound-option", map[string]any{"status": status(u.Preferences.PlayTurnSound)}), "toggle_turn_sound"},
		[2]string{localization.Get(u.Locale, "clear-kept-option", map[string]any{"status": status(u.Preferences.ClearKeptDiceOnRoll)}), "toggle_clear_kept"},
		[2]string{localization.Get(u.Locale, "dice-keeping-style-option", map[string]any{"style": localization.Get(u.Locale, styleKey, nil)}), "dice_keeping_style"},
		goBackItem(u),
	)
	u.ShowMenu("options_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onOptionsMenu(u *users.User, selectionID string) {
	switch selectionID {
	case "go_back":
		s.showMainMenu(u)
	case "language":
		s.showLanguageMenu(u)
	case "toggle_turn_sound":
		u.Preferences.PlayTurnSound = !u.Preferences.PlayTurnSound
		s.DB.SavePreferences(u.Username, u.Preferences)
		s.showOptionsMenu(u)
	case "toggle_clear_kept":
		u.Preferences.ClearKeptDiceOnRoll = !u.Preferences.ClearKeptDiceOnRoll
		s.DB.SavePreferences(u.Username, u.Preferences)
		s.showOptionsMenu(u)
	case "dice_keeping_style":
		s.showDiceKeepingStyleMenu(u)
	}
}

func (s *Server) showLanguageMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "language_menu"})
	langs := localization.AvailableLanguages()
	codes := make([]string, 0, len(langs))
	for code := range langs {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	var items []wire.MenuItem
	for _, code := range codes {
		items = append(items, wire.MenuItem{Text: langs[code], ID: code})
	}
	items = append(items, wire.MenuItem{Text: localization.Get(u.Locale, "go-back", nil), ID: "go_back"})
	u.ShowMenu("language_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onLanguageMenu(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showOptionsMenu(u)
		return
	}
	u.Locale = selectionID
	s.DB.SaveLocale(u.Username, selectionID)
	u.SpeakL("language-changed", map[string]any{"language": localization.AvailableLanguages()[selectionID]})
	s.showOptionsMenu(u)
}

func (s *Server) showDiceKeepingStyleMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "dice_keeping_style_menu"})
	items := menuItems(
		[2]string{localization.Get(u.Locale, "dice-keeping-style-indexes", nil), string(users.DiceKeepByIndex)},
		[2]string{localization.Get(u.Locale, "dice-keeping-style-values", nil), string(users.DiceKeepByFaceValue)},
		goBackItem(u),
	)
	u.ShowMenu("dice_keeping_style_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onDiceKeepingStyleMenu(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showOptionsMenu(u)
		return
	}
	style := users.DiceKeepingStyle(selectionID)
	u.Preferences.DiceKeepingStyle = style
	s.DB.SavePreferences(u.Username, u.Preferences)
	u.SpeakL("dice-keeping-style-changed", map[string]any{"style": localization.Get(u.Locale, selectionID, nil)})
	s.showOptionsMenu(u)
}

func (s *Server) showLeaderboardsMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "leaderboards_menu"})
	var items []wire.MenuItem
	for _, l := range s.Tables.Registry().List() {
		items = append(items, wire.MenuItem{Text: l.Name, ID: l.Type})
	}
	items = append(items, wire.MenuItem{Text: localization.Get(u.Locale, "go-back", nil), ID: "go_back"})
	u.ShowMenu("leaderboards_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onLeaderboardsMenu(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showMainMenu(u)
		return
	}
	u.SetState(users.MenuState{Menu: "leaderboard_types_menu", GameType: selectionID})
	items := menuItems(
		[2]string{localization.Get(u.Locale, "leaderboard-type-wins", nil), "wins"},
		[2]string{localization.Get(u.Locale, "leaderboard-type-rating", nil), "rating"},
		[2]string{localization.Get(u.Locale, "leaderboard-type-games-played", nil), "games_played"},
		goBackItem(u),
	)
	u.ShowMenu("leaderboard_types_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onLeaderboardTypesMenu(u *users.User, selectionID string, state users.MenuState) {
	if selectionID == "go_back" {
		s.showLeaderboardsMenu(u)
		return
	}
	s.showGameLeaderboard(u, state.GameType, selectionID)
}

// leaderboardRow is one aggregated standing computed by scanning every
// recorded result for a game type; small and infrequent enough to recompute
// on demand rather than maintain incrementally.
type leaderboardRow struct {
	player      string
	wins        int
	games       int
	ratingOrd   float64
	ratingMu    float64
	ratingSigma float64
}

func (s *Server) aggregateResults(gameType string) map[string]*leaderboardRow {
	results, err := s.DB.GameResultsFor(gameType, 10000)
	if err != nil {
		return nil
	}
	rows := map[string]*leaderboardRow{}
	for _, r := range results {
		for i, pr := range r.PlayerResults {
			if pr.IsBot {
				continue
			}
			row, ok := rows[pr.PlayerName]
			if !ok {
				row = &leaderboardRow{player: pr.PlayerName}
				rows[pr.PlayerName] = row
			}
			row.games++
			if i == 0 {
				row.wins++
			}
		}
	}
	return rows
}

func (s *Server) showGameLeaderboard(u *users.User, gameType, kind string) {
	u.SetState(users.MenuState{Menu: "game_leaderboard", GameType: gameType})
	rows := s.aggregateResults(gameType)
	if len(rows) == 0 {
		u.SpeakL("leaderboard-no-data", nil)
		u.ShowMenu("game_leaderboard", menuItems(goBackItem(u)), true, wire.EscapeSelectLast)
		return
	}

	list := make([]*leaderboardRow, 0, len(rows))
	for _, r := range rows {
		if kind == "rating" {
			rt := s.Ratings.GetRating(s.playerIDFor(r.player), gameType)
			r.ratingOrd, r.ratingMu, r.ratingSigma = rt.Ordinal(), rt.Mu, rt.Sigma
		}
		list = append(list, r)
	}

	switch kind {
	case "wins":
		sort.Slice(list, func(i, j int) bool { return list[i].wins > list[j].wins })
	case "rating":
		sort.Slice(list, func(i, j int) bool { return list[i].ratingOrd > list[j].ratingOrd })
	case "games_played":
		sort.Slice(list, func(i, j int) bool { return list[i].games > list[j].games })
	}

	lines := []string{fmt.Sprintf("%s - %s", s.gameNameFor(gameType), localization.Get(u.Locale, "leaderboard-type-"+dashed(kind), nil))}
	for i, r := range list {
		rank := i + 1
		switch kind {
		case "wins":
			losses := r.games - r.wins
			pct := 0
			if r.games > 0 {
				pct = r.wins * 100 / r.games
			}
			lines = append(lines, localization.Get(u.Locale, "leaderboard-wins-entry", map[string]any{
				"rank": rank, "player": r.player, "wins": r.wins, "losses": losses, "percentage": pct,
			}))
		case "rating":
			lines = append(lines, localization.Get(u.Locale, "leaderboard-rating-entry", map[string]any{
				"rank": rank, "player": r.player,
				"rating": fmt.Sprintf("%.1f", r.ratingOrd), "mu": fmt.Sprintf("%.1f", r.ratingMu), "sigma": fmt.Sprintf("%.1f", r.ratingSigma),
			}))
		case "games_played":
			lines = append(lines, localization.Get(u.Locale, "leaderboard-games-entry", map[string]any{
				"rank": rank, "player": r.player, "value": r.games,
			}))
		}
		if rank >= 25 {
			break
		}
	}
	for _, line := range lines {
		u.Speak(line)
	}
	u.ShowMenu("game_leaderboard", menuItems(goBackItem(u)), true, wire.EscapeSelectLast)
}

func dashed(kind string) string {
	switch kind {
	case "games_played":
		return "games-played"
	default:
		return kind
	}
}

func (s *Server) onGameLeaderboard(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showLeaderboardsMenu(u)
	}
}

func (s *Server) showMyStatsMenu(u *users.User) {
	u.SetState(users.MenuState{Menu: "my_stats_menu"})
	var items []wire.MenuItem
	for _, l := range s.Tables.Registry().List() {
		items = append(items, wire.MenuItem{Text: l.Name, ID: l.Type})
	}
	items = append(items, wire.MenuItem{Text: localization.Get(u.Locale, "go-back", nil), ID: "go_back"})
	u.ShowMenu("my_stats_menu", items, true, wire.EscapeSelectLast)
}

func (s *Server) onMyStatsMenu(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showMainMenu(u)
		return
	}
	s.showMyGameStats(u, selectionID)
}

func (s *Server) showMyGameStats(u *users.User, gameType string) {
	u.SetState(users.MenuState{Menu: "my_game_stats", GameType: gameType})
	rows := s.aggregateResults(gameType)
	row, ok := rows[u.Username]
	if !ok || row.games == 0 {
		u.SpeakL("my-stats-no-data", nil)
		u.ShowMenu("my_game_stats", menuItems(goBackItem(u)), true, wire.EscapeSelectLast)
		return
	}

	losses := row.games - row.wins
	winrate := 0
	if row.games > 0 {
		winrate = row.wins * 100 / row.games
	}
	u.Speak(localization.Get(u.Locale, "my-stats-games-played", map[string]any{"value": row.games}))
	u.Speak(localization.Get(u.Locale, "my-stats-wins", map[string]any{"value": row.wins}))
	u.Speak(localization.Get(u.Locale, "my-stats-losses", map[string]any{"value": losses}))
	u.Speak(localization.Get(u.Locale, "my-stats-winrate", map[string]any{"value": winrate}))

	rt := s.Ratings.GetRating(u.UUID, gameType)
	u.Speak(localization.Get(u.Locale, "my-stats-rating", map[string]any{
		"value": fmt.Sprintf("%.1f", rt.Ordinal()), "mu": fmt.Sprintf("%.1f", rt.Mu), "sigma": fmt.Sprintf("%.1f", rt.Sigma),
	}))

	u.ShowMenu("my_game_stats", menuItems(goBackItem(u)), true, wire.EscapeSelectLast)
}

func (s *Server) onMyGameStats(u *users.User, selectionID string) {
	if selectionID == "go_back" {
		s.showMyStatsMenu(u)
	}
}

// playerIDFor resolves a display name back to a player id for a rating
// lookup. The in-memory registry is checked first (a currently connected
// player knows its own uuid); otherwise the name itself stands in, since
// historical ratings were stored under whatever id that player used when
// they earned them and an offline player's uuid cannot otherwise be
// recovered from a leaderboard scan alone.
func (s *Server) playerIDFor(name string) string {
	if u, ok := s.Users.Get(name); ok {
		return u.UUID
	}
	return name
}

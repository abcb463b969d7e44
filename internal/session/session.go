// Package session is the shell: it authenticates connections, routes every
// inbound packet either to the menu state machine below or straight through
// to whatever game a user is seated at, and renders the main_menu ->
// categories -> games -> tables -> join flow plus options, saved tables,
// leaderboards, and personal stats.
package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"playpalace/internal/gameframework"
	"playpalace/internal/persistence"
	"playpalace/internal/presence"
	"playpalace/internal/rating"
	"playpalace/internal/tables"
	"playpalace/internal/transport"
	"playpalace/internal/users"
	"playpalace/internal/wire"
)

const protocolVersion = "1.0"

// Server owns every piece the shell needs: the live user registry, the
// table manager, persistence, and the rating engine, wired together at
// startup by cmd/server.
type Server struct {
	Transport *transport.Server
	Users     *users.Registry
	Tables    *tables.TableManager
	DB        *persistence.DB
	Ratings   *rating.Engine
	Presence  *presence.Cache
}

// New builds the transport.Handler hookup for a Server; call Transport.Start
// separately once wired.
func New(db *persistence.DB, ratingEngine *rating.Engine, registry *gameframework.Registry, presenceCache *presence.Cache) *Server {
	store := &persistence.GameStore{DB: db, Ratings: ratingEngine}
	s := &Server{
		Users:    users.NewRegistry(),
		Tables:   tables.NewTableManager(store, registry),
		DB:       db,
		Ratings:  ratingEngine,
		Presence: presenceCache,
	}
	s.Transport = transport.New(transport.Handler{
		OnConnect:    s.onConnect,
		OnDisconnect: s.onDisconnect,
		OnMessage:    s.onMessage,
	})
	return s
}

// LoadSavedTables restores whatever tables were open at last shutdown. Call
// once at startup, after New.
func (s *Server) LoadSavedTables() {
	s.Tables.LoadSavedTables()
}

func (s *Server) onConnect(conn *transport.Connection) {
	log.Printf("[session] connection from %s", conn.RemoteAddr())
}

func (s *Server) onDisconnect(conn *transport.Connection) {
	username := conn.Username()
	if username == "" {
		return
	}
	u, ok := s.Users.Get(username)
	if !ok {
		return
	}
	s.Users.Remove(username)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Presence.MarkOffline(ctx, username)

	if table, ok := s.Tables.TableForPlayer(u.UUID); ok {
		base := table.Game.Base()
		if player, ok := base.GetPlayerByID(u.UUID); ok && !player.IsBot {
			player.IsBot = true
			base.DetachUser(u.UUID)
			base.BroadcastL("player-replaced-by-bot", map[string]any{"player": u.Username})
			base.RefreshAllMenus()
		}
	}

	s.Users.BroadcastPresenceL("user-offline", u.Username, "logoff.ogg")
}

func (s *Server) onMessage(conn *transport.Connection, data []byte) {
	var pkt wire.Inbound
	if err := json.Unmarshal(data, &pkt); err != nil {
		return
	}

	switch pkt.Type {
	case "authorize":
		s.handleAuthorize(conn, pkt)
	case "register":
		s.handleRegister(conn, pkt)
	case "ping":
		conn.Send(wire.Pong())
	}

	if !conn.Authenticated() {
		return
	}
	u, ok := s.Users.Get(conn.Username())
	if !ok {
		return
	}

	switch pkt.Type {
	case "menu":
		s.handleMenuSelection(u, pkt)
	case "editbox":
		s.handleEditboxSubmit(u, pkt)
	case "keybind":
		s.handleKeybind(u, pkt)
	case "chat":
		s.handleChat(u, pkt)
	}
}

func (s *Server) handleAuthorize(conn *transport.Connection, pkt wire.Inbound) {
	rec, err := s.DB.Authenticate(pkt.Username, pkt.Password)
	if err == persistence.ErrUserNotFound {
		rec, err = s.DB.Register(uuid.NewString(), pkt.Username, pkt.Password, "en")
	}
	if err != nil {
		conn.Send(wire.Disconnect(authFailureMessage(err), false))
		return
	}
	s.finishLogin(conn, rec)
}

func (s *Server) handleRegister(conn *transport.Connection, pkt wire.Inbound) {
	rec, err := s.DB.Register(uuid.NewString(), pkt.Username, pkt.Password, "en")
	if err != nil {
		conn.Send(wire.Disconnect(err.Error(), false))
		return
	}
	s.finishLogin(conn, rec)
}

func authFailureMessage(err error) string {
	switch err {
	case persistence.ErrNotApproved:
		return "account awaiting approval"
	case persistence.ErrBadPassword, persistence.ErrUserNotFound:
		return "incorrect username or password"
	default:
		return "login failed"
	}
}

func (s *Server) finishLogin(conn *transport.Connection, rec users.Record) {
	if existing, ok := s.Users.Get(rec.Username); ok {
		existing.Connection().Send(wire.Disconnect("logged in elsewhere", false))
		s.Users.Remove(rec.Username)
	}

	conn.Authorize(rec.Username)
	u := users.New(rec, conn)
	s.Users.Put(u)

	conn.Send(wire.AuthorizeSuccess(rec.Username, protocolVersion))
	conn.Send(wire.UpdateOptionsLists(s.gameCatalog()))
	u.SpeakL("welcome", map[string]any{"player": rec.Username})

	s.showMainMenu(u)
	s.Users.BroadcastPresenceL("user-online", u.Username, "logon.ogg")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Presence.MarkOnline(ctx, u.Username, "")
}

// gameCatalog builds the authorize-time list of playable game types from the
// table manager's registry.
func (s *Server) gameCatalog() []wire.GameListing {
	listings := s.Tables.Registry().List()
	out := make([]wire.GameListing, 0, len(listings))
	for _, l := range listings {
		out = append(out, wire.GameListing{Type: l.Type, Name: l.Name})
	}
	return out
}

// routeToGame delivers a packet to the game a user is seated at, if any,
// returning true if it did. A game event can remove the user from the game
// (converted to a bot, or the table destroyed); in that case the shell
// falls the user back to the main menu.
func (s *Server) routeToGame(u *users.User, handle func(base *gameframework.BaseGame, player *gameframework.Player)) bool {
	table, ok := s.Tables.TableForPlayer(u.UUID)
	if !ok {
		return false
	}
	base := table.Game.Base()
	player, ok := base.GetPlayerByID(u.UUID)
	if !ok {
		return false
	}
	handle(base, player)

	if base.GetUser(player) != u {
		u.SetState(users.MenuState{Menu: "main_menu"})
		s.showMainMenu(u)
	}
	return true
}

func (s *Server) handleMenuSelection(u *users.User, pkt wire.Inbound) {
	routed := s.routeToGame(u, func(base *gameframework.BaseGame, player *gameframework.Player) {
		base.HandleMenuSelection(player, pkt.MenuID, pkt.SelectionID)
	})
	if routed {
		return
	}
	s.dispatchMenu(u, pkt.SelectionID)
}

func (s *Server) handleEditboxSubmit(u *users.User, pkt wire.Inbound) {
	s.routeToGame(u, func(base *gameframework.BaseGame, player *gameframework.Player) {
		base.HandleEditboxSubmit(player, pkt.InputID, pkt.Text)
	})
}

func (s *Server) handleKeybind(u *users.User, pkt wire.Inbound) {
	s.routeToGame(u, func(base *gameframework.BaseGame, player *gameframework.Player) {
		base.HandleKeybind(player, pkt.Key, pkt.Shift, pkt.Control, pkt.Alt, pkt.MenuItemID, pkt.MenuIndex)
	})
}

func (s *Server) handleChat(u *users.User, pkt wire.Inbound) {
	convo := pkt.Convo
	if convo == "" {
		convo = "table"
	}

	if convo == "table" {
		table, ok := s.Tables.TableForPlayer(u.UUID)
		if !ok {
			return
		}
		base := table.Game.Base()
		packet := wire.Chat(convo, u.Username, pkt.Message, pkt.Language)
		for _, p := range base.Players {
			if member, ok := s.Users.Get(p.Name); ok {
				member.Connection().Send(packet)
			}
		}
		return
	}

	s.Transport.Broadcast(wire.Chat(convo, u.Username, pkt.Message, pkt.Language), nil)
}

// gameNameFor resolves a registered game type to its display name, falling
// back to the raw type id if the registry doesn't recognize it (should not
// happen outside of a stale save row).
func (s *Server) gameNameFor(gameType string) string {
	for _, l := range s.Tables.Registry().List() {
		if l.Type == gameType {
			return l.Name
		}
	}
	return gameType
}

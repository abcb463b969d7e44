package session

import (
	"path/filepath"
	"testing"

	"playpalace/internal/config"
	"playpalace/internal/gameframework"
	"playpalace/internal/games/pig"
	"playpalace/internal/persistence"
	"playpalace/internal/presence"
	"playpalace/internal/rating"
	"playpalace/internal/users"
)

// newTestServer builds a Server against a scratch SQLite file, with pig
// registered as the only game type, and presence disabled (no Redis
// available in a test environment).
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		DBType:           "sqlite",
		DBDSN:            filepath.Join(t.TempDir(), "test.db"),
		DBMaxConnections: 5,
		DBMaxIdleConns:   1,
	}
	db, err := persistence.Open(cfg)
	if err != nil {
		t.Fatalf("persistence.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	registry := gameframework.NewRegistry()
	pig.Register(registry)

	engine := rating.New(db)
	presenceCache := presence.New("", 0)

	return New(db, engine, registry, presenceCache)
}

func registerAndLogin(t *testing.T, s *Server, username string) *users.User {
	t.Helper()
	rec, err := s.DB.Register(username+"-uuid", username, "hunter2", "en")
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	u := users.New(rec, nil)
	s.Users.Put(u)
	return u
}

func TestFirstRegistrationIsAutoApprovedAdmin(t *testing.T) {
	s := newTestServer(t)
	u := registerAndLogin(t, s, "alice")
	if u.TrustLevel != users.TrustAdmin {
		t.Fatalf("first registered user TrustLevel = %v, want TrustAdmin", u.TrustLevel)
	}

	second := registerAndLogin(t, s, "bob")
	if second.TrustLevel != users.TrustPlayer {
		t.Fatalf("second registered user TrustLevel = %v, want TrustPlayer", second.TrustLevel)
	}
}

func TestGameNameForKnownAndUnknownType(t *testing.T) {
	s := newTestServer(t)
	if got := s.gameNameFor("pig"); got == "pig" {
		t.Fatalf("gameNameFor(pig) returned the raw type id, expected a display name")
	}
	if got := s.gameNameFor("not-a-game"); got != "not-a-game" {
		t.Fatalf("gameNameFor(unknown) = %q, want the raw type id echoed back", got)
	}
}

package gameframework

import "testing"

func newFakeEntry() GameImpl { return newFakeGame(2, 4) }

func TestRegistryCreateAndList(t *testing.T) {
	r := NewRegistry()
	r.Register("fake", newFakeEntry, func(data []byte) (GameImpl, error) { return newFakeEntry(), nil })

	listing := r.List()
	if len(listing) != 1 || listing[0].Type != "fake" {
		t.Fatalf("List() = %v, want one fake entry", listing)
	}
	if listing[0].MinPlayers != 2 || listing[0].MaxPlayers != 4 {
		t.Fatalf("listing min/max = %d/%d, want 2/4", listing[0].MinPlayers, listing[0].MaxPlayers)
	}

	impl, err := r.Create("fake")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if impl.GetType() != "fake" {
		t.Fatalf("GetType() = %q, want fake", impl.GetType())
	}
}

func TestRegistryCreateUnknownType(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Create("no-such-type"); err == nil {
		t.Fatal("expected an error creating an unregistered game type")
	}
}

func TestRegistryRestoreUnknownType(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Restore("no-such-type", []byte(`{}`)); err == nil {
		t.Fatal("expected an error restoring an unregistered game type")
	}
}

func TestMustValidJSONRejectsGarbage(t *testing.T) {
	if err := MustValidJSON([]byte("not json")); err == nil {
		t.Fatal("expected an error for invalid JSON")
	}
	if err := MustValidJSON([]byte(`{"a":1}`)); err != nil {
		t.Fatalf("MustValidJSON rejected valid JSON: %v", err)
	}
}

package rating

import (
	"testing"

	"playpalace/internal/gameframework"
)

type fakeStore struct {
	ratings map[string]Rating
}

func newFakeStore() *fakeStore {
	return &fakeStore{ratings: make(map[string]Rating)}
}

func key(playerID, gameType string) string { return gameType + ":" + playerID }

func (s *fakeStore) GetRating(playerID, gameType string) (mu, sigma float64, found bool, err error) {
	r, ok := s.ratings[key(playerID, gameType)]
	if !ok {
		return 0, 0, false, nil
	}
	return r.Mu, r.Sigma, true, nil
}

func (s *fakeStore) SetRating(playerID, gameType string, mu, sigma float64) error {
	s.ratings[key(playerID, gameType)] = Rating{Mu: mu, Sigma: sigma}
	return nil
}

func TestGetRatingDefaultsForAnUnseenPlayer(t *testing.T) {
	e := New(newFakeStore())
	r := e.GetRating("alice", "pig")
	if r.Mu != defaultMu || r.Sigma != defaultSigma {
		t.Fatalf("GetRating = %+v, want default prior", r)
	}
}

func TestOrdinalPenalizesUncertainty(t *testing.T) {
	confident := Rating{Mu: 25, Sigma: 1}
	uncertain := Rating{Mu: 25, Sigma: 8}
	if confident.Ordinal() <= uncertain.Ordinal() {
		t.Fatalf("confident ordinal %v should exceed uncertain ordinal %v at equal mu", confident.Ordinal(), uncertain.Ordinal())
	}
}

func TestUpdateRatingsMovesWinnerAboveLoser(t *testing.T) {
	store := newFakeStore()
	e := New(store)

	e.UpdateRatings([][]string{{"winner"}, {"loser"}}, "pig")

	w := e.GetRating("winner", "pig")
	l := e.GetRating("loser", "pig")
	if w.Mu <= l.Mu {
		t.Fatalf("winner mu %v should exceed loser mu %v after one game", w.Mu, l.Mu)
	}
}

func TestUpdateRatingsSingleTierIsANoOp(t *testing.T) {
	store := newFakeStore()
	e := New(store)
	e.UpdateRatings([][]string{{"alice"}}, "pig")
	if len(store.ratings) != 0 {
		t.Fatalf("expected no rating writes for a single-tier result, got %v", store.ratings)
	}
}

func TestUpdateRatingsNarrowsSigmaOverRepeatedGames(t *testing.T) {
	store := newFakeStore()
	e := New(store)
	for i := 0; i < 5; i++ {
		e.UpdateRatings([][]string{{"a"}, {"b"}}, "pig")
	}
	if e.GetRating("a", "pig").Sigma >= defaultSigma {
		t.Fatalf("expected sigma to narrow after repeated games, got %v (started at %v)", e.GetRating("a", "pig").Sigma, defaultSigma)
	}
}

func TestPredictWinProbabilitySymmetric(t *testing.T) {
	store := newFakeStore()
	store.SetRating("strong", "pig", 35, 5)
	store.SetRating("weak", "pig", 15, 5)
	e := New(store)

	pStrong := e.PredictWinProbability("strong", "weak", "pig")
	pWeak := e.PredictWinProbability("weak", "strong", "pig")

	if pStrong <= 0.5 {
		t.Fatalf("expected the higher-rated player to be favored, got %v", pStrong)
	}
	if diff := (pStrong + pWeak) - 1.0; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("pStrong + pWeak = %v, want 1.0", pStrong+pWeak)
	}
}

func TestOutcomePredictorRequiresTwoHumans(t *testing.T) {
	e := New(newFakeStore())
	predictor := &OutcomePredictor{Engine: e}

	lines := predictor.PredictOutcomes("pig", []*gameframework.Player{
		gameframework.NewPlayer("a", "Alice", false),
		gameframework.NewPlayer("bot-1", "Bot", true),
	})
	if len(lines) != 1 {
		t.Fatalf("lines = %v, want a single not-enough-players message", lines)
	}
}

func TestOutcomePredictorRanksByOrdinal(t *testing.T) {
	store := newFakeStore()
	store.SetRating("a", "pig", 40, 3)
	store.SetRating("b", "pig", 20, 3)
	e := New(store)
	predictor := &OutcomePredictor{Engine: e}

	lines := predictor.PredictOutcomes("pig", []*gameframework.Player{
		gameframework.NewPlayer("b", "Bob", false),
		gameframework.NewPlayer("a", "Alice", false),
	})
	if len(lines) != 3 || lines[1] != "1. Alice" {
		t.Fatalf("lines = %v, want Alice ranked first", lines)
	}
}

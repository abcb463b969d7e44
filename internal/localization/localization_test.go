package localization

import "testing"

func TestGetSubstitutesArgs(t *testing.T) {
	got := Get("en", "user-online", map[string]any{"player": "Alice"})
	if got != "Alice has come online." {
		t.Fatalf("Get = %q, want the templated string with Alice substituted", got)
	}
}

func TestGetFallsBackToEnglishForUnknownLocale(t *testing.T) {
	got := Get("xx-unknown-locale", "go-back", nil)
	if got != "Go back" {
		t.Fatalf("Get = %q, want the English fallback", got)
	}
}

func TestGetUnknownKeyRendersBracketedKey(t *testing.T) {
	got := Get("en", "no-such-key-at-all", nil)
	if got != "[no-such-key-at-all]" {
		t.Fatalf("Get = %q, want the bracketed key", got)
	}
}

func TestRegisterBundleInstallsAndIsFound(t *testing.T) {
	RegisterBundle("xx", map[string]string{"go-back": "Retour"}, "Xxtest")

	got := Get("xx", "go-back", nil)
	if got != "Retour" {
		t.Fatalf("Get(xx) = %q, want Retour", got)
	}

	langs := AvailableLanguages()
	if langs["xx"] != "Xxtest" {
		t.Fatalf("AvailableLanguages()[xx] = %q, want Xxtest", langs["xx"])
	}
}

func TestRegisterBundleFallsBackToEnglishForMissingKeyInNewBundle(t *testing.T) {
	RegisterBundle("yy", map[string]string{}, "")
	got := Get("yy", "go-back", nil)
	if got != "Go back" {
		t.Fatalf("Get(yy, go-back) = %q, want the English fallback for a bundle missing that key", got)
	}
}

package i18n

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestDirectionFor(t *testing.T) {
	tests := []struct {
		lang string
		want Direction
	}{
		{"en", LTR},
		{"es", LTR},
		{"fr", LTR},
		{"ar", RTL},
		{"he", RTL},
		{"unknown", LTR},
	}

	for _, tt := range tests {
		if got := DirectionFor(tt.lang); got != tt.want {
			t.Errorf("DirectionFor(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

func TestLookupFallsBackToEnglish(t *testing.T) {
	if got := Lookup("es", "nav.invoices"); got != "Facturas" {
		t.Errorf("Lookup(es) = %q, want Facturas", got)
	}
	// Unknown language falls back to English.
	if got := Lookup("de", "nav.invoices"); got != "Invoices" {
		t.Errorf("Lookup(de) = %q, want Invoices", got)
	}
	// Unknown key comes back as the key itself.
	if got := Lookup("en", "nav.nope"); got != "nav.nope" {
		t.Errorf("Lookup unknown key = %q, want nav.nope", got)
	}
}

func TestDictionaryHasFullKeySet(t *testing.T) {
	en := Dictionary("en")
	for _, lang := range Languages() {
		dict := Dictionary(lang)
		if len(dict) != len(en) {
			t.Errorf("Dictionary(%q) has %d keys, want %d", lang, len(dict), len(en))
		}
		for key := range en {
			if dict[key] == "" {
				t.Errorf("Dictionary(%q) missing key %q", lang, key)
			}
		}
	}
}

func TestDictionaryRoute(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r)

	req := httptest.NewRequest("GET", "/api/i18n/ar", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Language  string            `json:"language"`
		Direction string            `json:"direction"`
		Strings   map[string]string `json:"strings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Direction != "rtl" {
		t.Errorf("expected rtl direction, got %q", body.Direction)
	}
	if body.Strings["nav.invoices"] == "" {
		t.Error("expected nav.invoices in dictionary")
	}
}

func TestUnsupportedLanguageRoute(t *testing.T) {
	r := chi.NewRouter()
	RegisterRoutes(r)

	req := httptest.NewRequest("GET", "/api/i18n/xx", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

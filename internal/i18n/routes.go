package i18n

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the dictionary endpoints.
func RegisterRoutes(r chi.Router) {
	r.Route("/api/i18n", func(r chi.Router) {
		r.Get("/", handleLanguages)
		r.Get("/{lang}", handleDictionary)
	})
}

func handleLanguages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"languages": Languages()})
}

func handleDictionary(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	if !Supported(lang) {
		http.Error(w, `{"error":"unsupported language"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"language":  lang,
		"direction": DirectionFor(lang),
		"strings":   Dictionary(lang),
	})
}

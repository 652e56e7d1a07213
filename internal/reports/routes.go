package reports

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finhorizon/horizon/internal/auth"
)

// RegisterRoutes mounts report endpoints under /api/reports. The period
// query parameter is a YYYY-MM month and is required.
func RegisterRoutes(r chi.Router, gen *Generator) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/summary", handleSummary(gen))
		r.Get("/export", handleExport(gen))
	})
}

func handleSummary(gen *Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := r.URL.Query().Get("period")
		if _, _, err := PeriodBounds(period); err != nil {
			http.Error(w, `{"error":"period must be YYYY-MM"}`, http.StatusBadRequest)
			return
		}

		summary, err := gen.Summarize(r.Context(), auth.UserIDFrom(r.Context()), period)
		if err != nil {
			http.Error(w, `{"error":"building summary failed"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func handleExport(gen *Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		period := r.URL.Query().Get("period")
		if _, _, err := PeriodBounds(period); err != nil {
			http.Error(w, `{"error":"period must be YYYY-MM"}`, http.StatusBadRequest)
			return
		}

		format := r.URL.Query().Get("format")
		if format == "" {
			format = "md"
		}
		if format != "md" && format != "html" {
			http.Error(w, `{"error":"format must be md or html"}`, http.StatusBadRequest)
			return
		}

		markdown, err := gen.Markdown(r.Context(), auth.UserIDFrom(r.Context()), period)
		if err != nil {
			http.Error(w, `{"error":"building report failed"}`, http.StatusInternalServerError)
			return
		}

		if format == "md" {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.Write([]byte(markdown))
			return
		}

		page, err := RenderHTML("Financial Report "+period, markdown)
		if err != nil {
			http.Error(w, `{"error":"rendering report failed"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

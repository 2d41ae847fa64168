package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Web routes serve HTML at / and /app/* paths.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("POST /connect", h.Connect)
	mux.HandleFunc("POST /logout", h.Logout)

	mux.HandleFunc("GET /app/dashboard", h.Dashboard)
	mux.HandleFunc("GET /app/analysis", h.Analysis)
	mux.HandleFunc("GET /app/repos/{owner}/{repo}", h.RepoDetail)
	mux.HandleFunc("POST /app/repos/{owner}/{repo}/analyze", h.Reanalyze)
	mux.HandleFunc("GET /app/streaks", h.Streaks)
	mux.HandleFunc("GET /app/settings", h.Settings)

	mux.HandleFunc("GET /app/generator", h.Generator)
	mux.HandleFunc("POST /app/generator/generate", h.GeneratorGenerate)
	mux.HandleFunc("POST /app/generator/draft", h.GeneratorDraft)
	mux.HandleFunc("POST /app/generator/pr", h.GeneratorPR)
}

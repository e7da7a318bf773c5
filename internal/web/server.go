// Package web serves the question form and the JSON side endpoints.
package web

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/talentsift/screener/internal/hf"
)

// Answerer answers a single resume question as display text.
type Answerer interface {
	Answer(ctx context.Context, question string) string
}

// Server is the HTTP front end: one text-in/text-out form plus health and
// stats endpoints.
type Server struct {
	router chi.Router
	ans    Answerer
	stats  *hf.Stats
	log    *slog.Logger
}

// NewServer creates and configures the HTTP server. stats may be nil.
func NewServer(ans Answerer, stats *hf.Stats, log *slog.Logger) *Server {
	s := &Server{
		ans:   ans,
		stats: stats,
		log:   log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Get("/api/stats/llm", s.handleLLMStats)

	r.Get("/", s.handleIndex)
	r.Post("/ask", s.handleAsk)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var snap hf.StatsSnapshot
	if s.stats != nil {
		snap = s.stats.Snapshot()
	}
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, pageData{})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	question := r.FormValue("question")
	answer := s.ans.Answer(r.Context(), question)
	s.renderPage(w, pageData{Question: question, Answer: answer})
}

type pageData struct {
	Question string
	Answer   string
}

func (s *Server) renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.log.Error("render page", "error", err)
	}
}

var pageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Resume Screener</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
textarea, input[type=text] { width: 100%; box-sizing: border-box; padding: 0.5rem; }
button { margin-top: 0.5rem; padding: 0.5rem 1.5rem; }
pre { background: #f4f4f4; padding: 1rem; white-space: pre-wrap; }
</style>
</head>
<body>
<h1>Resume Screener</h1>
<form method="post" action="/ask">
<input type="text" name="question" placeholder="Which candidate is best for Python?" value="{{.Question}}">
<button type="submit">Analyze</button>
</form>
{{if .Answer}}<h2>AI Report</h2><pre>{{.Answer}}</pre>{{end}}
</body>
</html>
`))

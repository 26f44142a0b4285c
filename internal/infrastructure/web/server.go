// Package web serves a small local UI and JSON API over a caption session.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/doeshing/recogaize/internal/application/session"
	"github.com/doeshing/recogaize/internal/domain"
	"github.com/doeshing/recogaize/internal/ports"
)

// multipart overhead allowed on top of the image limit
const formSlack = 1 << 20

// Server exposes a session over HTTP.
type Server struct {
	Session  *session.Session
	Client   ports.CaptionClient
	Metrics  http.Handler
	Logger   zerolog.Logger
	MaxBytes int64
}

type stateView struct {
	Caption string                 `json:"caption"`
	Loading bool                   `json:"isLoading"`
	Error   string                 `json:"error"`
	History []domain.CaptionResult `json:"history,omitempty"`
}

type errorView struct {
	Error string `json:"error"`
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hlog.NewHandler(s.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(localCORS)

	r.Get("/", s.index)
	r.Post("/upload", s.upload)
	r.Post("/history/clear", s.clearForm)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.state)
		r.Get("/history", s.history)
		r.Delete("/history", s.clearHistory)
		r.Get("/health", s.health)
	})

	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}
	return r
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	view := s.view(true)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, view); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("render page")
	}
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if s.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.MaxBytes+formSlack)
	}
	image, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		status := http.StatusBadRequest
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.fail(w, r, status, err.Error())
		return
	}

	_, err = s.Session.Generate(r.Context(), image)
	if errors.Is(err, session.ErrSuperseded) {
		hlog.FromRequest(r).Debug().Str("file", image.Name).Msg("upload superseded")
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, s.view(true))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) clearForm(w http.ResponseWriter, r *http.Request) {
	s.Session.ClearHistory()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.view(false))
}

func (s *Server) history(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Session.History())
}

func (s *Server) clearHistory(w http.ResponseWriter, _ *http.Request) {
	s.Session.ClearHistory()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.Client == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorView{Error: "no client configured"})
		return
	}
	resp, err := s.Client.CheckHealth(r.Context())
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorView{Error: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if len(resp.Raw) > 0 {
		_, _ = w.Write(resp.Raw)
		return
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	hlog.FromRequest(r).Warn().Str("error", msg).Msg("upload rejected")
	if wantsJSON(r) {
		writeJSON(w, status, errorView{Error: msg})
		return
	}
	http.Error(w, msg, status)
}

func (s *Server) view(withHistory bool) stateView {
	st := s.Session.State()
	v := stateView{Caption: st.Caption, Loading: st.Loading, Error: st.Error}
	if withHistory {
		v.History = s.Session.History()
	}
	return v
}

func readUpload(r *http.Request) (domain.ImageFile, error) {
	file, header, err := r.FormFile(domain.UploadFieldName)
	if err != nil {
		return domain.ImageFile{}, fmt.Errorf("read form field %q: %w", domain.UploadFieldName, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.ImageFile{}, fmt.Errorf("read upload: %w", err)
	}
	return domain.ImageFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// localCORS allows browser tools on localhost to call the API.
func localCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isLocalOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
			w.Header().Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isLocalOrigin(origin string) bool {
	for _, prefix := range []string{"http://localhost", "http://127.0.0.1"} {
		if origin == prefix || strings.HasPrefix(origin, prefix+":") {
			return true
		}
	}
	return false
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"stamp": func(t time.Time) string { return t.Local().Format(domain.DisplayTimeFormat) },
}).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>Image Caption Generator</title>
<style>
body { font-family: sans-serif; max-width: 40rem; margin: 2rem auto; }
.error { color: #b00020; }
.caption { font-size: 1.2rem; }
li small { color: #666; }
</style>
</head>
<body>
<h1>Image Caption Generator</h1>
<form method="post" action="/upload" enctype="multipart/form-data">
  <input type="file" name="file" accept="image/*" required />
  <button type="submit">Generate caption</button>
</form>
{{if .Loading}}<p>Generating caption...</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .Caption}}<p class="caption">{{.Caption}}</p>{{end}}
{{if .History}}
<h2>History</h2>
<ul>
{{range .History}}  <li>{{.Caption}} <small>{{stamp .GeneratedAt}}</small></li>
{{end}}</ul>
<form method="post" action="/history/clear"><button type="submit">Clear history</button></form>
{{end}}
</body>
</html>
`

package api

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var assets embed.FS

// Page names.
const (
	pageHome     = "home"
	pageLogin    = "login"
	pageSignup   = "signup"
	pageNoteHome = "notehome"
	pageCompose  = "compose"
	pageFullNote = "fullnote"
	pageError    = "error"
)

var pageNames = []string{pageHome, pageLogin, pageSignup, pageNoteHome, pageCompose, pageFullNote, pageError}

var pageFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Local().Format("Jan 2, 2006 15:04") },
}

// pageData is passed to every page template.
type pageData struct {
	Title         string
	Caller        *service.Identity
	CSRF          string
	Error         string
	GoogleEnabled bool

	// login and signup
	Username string

	// notehome
	Notes []*domain.Note
	Query string

	// compose
	NoteTitle   string
	NoteContent string
	MaxUpload   int64

	// fullnote
	Note *domain.Note

	// error
	Status  int
	Message string
}

// mustParsePages parses each page together with the shared layout.
func mustParsePages() map[string]*template.Template {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.New("layout.html").Funcs(pageFuncs).ParseFS(
			templateFS, "templates/layout.html", "templates/"+name+".html",
		))
	}
	return pages
}

func staticFS() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// cacheControl sets the Cache-Control header on every response.
func cacheControl(value string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}

// render writes page with status. Execution failures are logged; the
// status line has already been sent.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	tmpl, ok := s.pages[name]
	if !ok {
		s.logger.Error("Unknown page template", "page", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data.Caller = IdentityFrom(r.Context())
	data.GoogleEnabled = s.opts.Google != nil

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", CacheNoStore)
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		s.logger.Error("Failed to execute page template", "page", name, "error", err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, pageError, pageData{
		Title:   http.StatusText(status),
		Status:  status,
		Message: message,
	})
}

package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/NiGhtKinG17/LeafNote/internal/domain"
	domainerrors "github.com/NiGhtKinG17/LeafNote/internal/errors"
	"github.com/NiGhtKinG17/LeafNote/internal/normalize"
	"github.com/NiGhtKinG17/LeafNote/internal/service"
)

const (
	noteHomeListLimit = 50
	formOverhead      = 64 << 10
)

// GET /
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageHome, pageData{})
}

// GET /login
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if IdentityFrom(r.Context()) != nil {
		http.Redirect(w, r, "/notehome", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, pageLogin, pageData{
		Title: "Log in",
		CSRF:  s.csrfToken(w, r, csrfLogin),
	})
}

// GET /signup
func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if IdentityFrom(r.Context()) != nil {
		http.Redirect(w, r, "/notehome", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, pageSignup, pageData{
		Title: "Sign up",
		CSRF:  s.csrfToken(w, r, csrfSignup),
	})
}

// POST /login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, formOverhead)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	username := r.PostFormValue("username")
	data := pageData{Title: "Log in", Username: username}

	if !s.validCSRF(r, csrfLogin) {
		data.CSRF = s.csrfToken(w, r, csrfLogin)
		data.Error = "The form expired. Please try again."
		s.render(w, r, http.StatusForbidden, pageLogin, data)
		return
	}

	userID, err := s.services.Identity.ResolveLocal(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		switch domainerrors.CodeOf(err) {
		case domainerrors.CodeNotFound, domainerrors.CodeBadCredential:
			data.CSRF = s.csrfToken(w, r, csrfLogin)
			data.Error = "Invalid username or password."
			s.render(w, r, http.StatusUnauthorized, pageLogin, data)
		default:
			s.renderServiceError(w, r, err)
		}
		return
	}

	s.startSession(w, r, userID)
}

// POST /signup
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, formOverhead)
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	username := r.PostFormValue("username")
	data := pageData{Title: "Sign up", Username: username}

	if !s.validCSRF(r, csrfSignup) {
		data.CSRF = s.csrfToken(w, r, csrfSignup)
		data.Error = "The form expired. Please try again."
		s.render(w, r, http.StatusForbidden, pageSignup, data)
		return
	}

	userID, err := s.services.Identity.RegisterLocal(r.Context(), service.RegisterRequest{
		Username: username,
		Password: r.PostFormValue("password"),
	})
	if err != nil {
		switch domainerrors.CodeOf(err) {
		case domainerrors.CodeDuplicateUsername:
			data.CSRF = s.csrfToken(w, r, csrfSignup)
			data.Error = "That username is taken."
			s.render(w, r, http.StatusConflict, pageSignup, data)
		case domainerrors.CodeValidation:
			data.CSRF = s.csrfToken(w, r, csrfSignup)
			data.Error = validationMessage(err)
			s.render(w, r, http.StatusBadRequest, pageSignup, data)
		default:
			s.renderServiceError(w, r, err)
		}
		return
	}

	s.startSession(w, r, userID)
}

// GET /logout
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Sessions.Revoke(r.Context(), tokenFrom(r.Context())); err != nil {
		s.logger.Warn("Failed to revoke session", "error", err)
	}
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// GET /auth/google
func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.Google == nil {
		s.handleNotFound(w, r)
		return
	}

	state := uuid.NewString()
	s.setStateCookie(w, state)
	http.Redirect(w, r, s.opts.Google.AuthCodeURL(state), http.StatusFound)
}

// GET /auth/google/callback and the legacy /auth/google/notehome.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	provider := s.opts.Google
	if provider == nil {
		s.handleNotFound(w, r)
		return
	}

	query := r.URL.Query()
	cookie, err := r.Cookie(stateCookieName)
	http.SetCookie(w, s.expiredCookie(stateCookieName, "/auth/google"))

	if reason := query.Get("error"); reason != "" {
		s.logger.Info("Federated login declined", "reason", reason)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err != nil || cookie.Value == "" || query.Get("state") != cookie.Value {
		s.render(w, r, http.StatusBadRequest, pageLogin, pageData{
			Title: "Log in",
			CSRF:  s.csrfToken(w, r, csrfLogin),
			Error: "The sign-in attempt expired. Please try again.",
		})
		return
	}

	profile, err := provider.Exchange(r.Context(), query.Get("code"))
	if err != nil {
		s.logger.Warn("Federated code exchange failed", "provider", provider.Name(), "error", err)
		s.render(w, r, http.StatusBadGateway, pageLogin, pageData{
			Title: "Log in",
			CSRF:  s.csrfToken(w, r, csrfLogin),
			Error: "Sign-in with Google failed. Please try again.",
		})
		return
	}

	userID, err := s.services.Identity.ResolveFederated(r.Context(),
		domain.FederatedID(provider.Name(), profile.Subject), profile.Name)
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}

	s.startSession(w, r, userID)
}

// GET /notehome
func (s *Server) handleNoteHome(w http.ResponseWriter, r *http.Request) {
	caller := IdentityFrom(r.Context())
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		notes []*domain.Note
		err   error
	)
	if query != "" {
		notes, err = s.services.Notes.Search(r.Context(), caller, query, noteHomeListLimit)
	} else {
		notes, err = s.services.Notes.ListOwn(r.Context(), caller)
	}
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, pageNoteHome, pageData{
		Title: "Your notes",
		Notes: notes,
		Query: query,
	})
}

// GET /compose
func (s *Server) handleComposePage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageCompose, pageData{
		Title:     "New note",
		CSRF:      s.csrfToken(w, r, csrfCompose),
		MaxUpload: s.opts.MaxUpload,
	})
}

// POST /compose
func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUpload+formOverhead)

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(s.opts.MaxUpload)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.renderError(w, r, http.StatusRequestEntityTooLarge, "The upload is too large.")
			return
		}
		s.renderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}

	data := pageData{
		Title:       "New note",
		NoteTitle:   r.PostFormValue("title"),
		NoteContent: r.PostFormValue("content"),
		MaxUpload:   s.opts.MaxUpload,
	}

	if !s.validCSRF(r, csrfCompose) {
		data.CSRF = s.csrfToken(w, r, csrfCompose)
		data.Error = "The form expired. Please try again."
		s.render(w, r, http.StatusForbidden, pageCompose, data)
		return
	}

	if status, msg := s.readAttachment(r, &data); status != 0 {
		data.CSRF = s.csrfToken(w, r, csrfCompose)
		data.Error = msg
		s.render(w, r, status, pageCompose, data)
		return
	}

	_, err = s.services.Notes.Compose(r.Context(), IdentityFrom(r.Context()), service.ComposeRequest{
		Title:   data.NoteTitle,
		Content: data.NoteContent,
	})
	if err != nil {
		if domainerrors.CodeOf(err) == domainerrors.CodeValidation {
			data.CSRF = s.csrfToken(w, r, csrfCompose)
			data.Error = validationMessage(err)
			s.render(w, r, http.StatusBadRequest, pageCompose, data)
			return
		}
		s.renderServiceError(w, r, err)
		return
	}

	http.Redirect(w, r, "/notehome", http.StatusSeeOther)
}

// readAttachment replaces the note content with an uploaded text file,
// converting HTML to markdown. It returns a non-zero status on a bad upload.
func (s *Server) readAttachment(r *http.Request, data *pageData) (int, string) {
	if r.MultipartForm == nil {
		return 0, ""
	}

	file, header, err := r.FormFile("attachment")
	if errors.Is(err, http.ErrMissingFile) {
		return 0, ""
	}
	if err != nil {
		return http.StatusBadRequest, "The attachment could not be read."
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUpload+1))
	if err != nil {
		return http.StatusBadRequest, "The attachment could not be read."
	}
	if int64(len(raw)) > s.opts.MaxUpload {
		return http.StatusRequestEntityTooLarge, "The attachment is too large."
	}
	if len(raw) == 0 {
		return 0, ""
	}
	if !utf8.Valid(raw) {
		return http.StatusBadRequest, "Attachments must be text files."
	}

	data.NoteContent = normalize.HTMLToMarkdown(string(raw))
	if strings.TrimSpace(data.NoteTitle) == "" {
		name := filepath.Base(header.Filename)
		data.NoteTitle = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return 0, ""
}

// GET /fullnote without an id.
func (s *Server) handleFullNoteRedirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/notehome", http.StatusFound)
}

// GET /fullnote/{id}
func (s *Server) handleFullNote(w http.ResponseWriter, r *http.Request) {
	note, err := s.services.Notes.View(r.Context(), IdentityFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, pageFullNote, pageData{
		Title: note.Title,
		Note:  note,
	})
}

// GET /delete/{id}
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Notes.Delete(r.Context(), IdentityFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, "/notehome", http.StatusSeeOther)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeAPIError(w, &APIError{
			status:  http.StatusNotFound,
			Code:    string(domainerrors.CodeNotFound),
			Message: "route not found",
		})
		return
	}
	s.renderError(w, r, http.StatusNotFound, "This page does not exist.")
}

// startSession binds a session for userID, sets the cookie and sends the
// browser to its notes.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, userID string) {
	bound, err := s.services.Sessions.Bind(r.Context(), userID, sessionMeta(r))
	if err != nil {
		s.renderServiceError(w, r, err)
		return
	}
	s.setSessionCookie(w, bound)
	http.Redirect(w, r, "/notehome", http.StatusSeeOther)
}

// renderServiceError renders the page for an error returned by a service.
// A foreign note renders exactly like a missing one.
func (s *Server) renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch code := domainerrors.CodeOf(err); code {
	case domainerrors.CodeNotFound, domainerrors.CodeNotOwner:
		s.renderError(w, r, http.StatusNotFound, "Note not found.")
	case domainerrors.CodeUnauthenticated, domainerrors.CodeExpired:
		s.clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
	case domainerrors.CodeValidation:
		s.renderError(w, r, http.StatusBadRequest, validationMessage(err))
	default:
		s.logger.Error("Request failed", "path", r.URL.Path, "code", string(code), "error", err)
		s.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
	}
}

// validationMessage returns the user-facing part of a validation error.
func validationMessage(err error) string {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return domainErr.Message
	}
	return "The input is invalid."
}

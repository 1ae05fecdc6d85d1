package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"checkin/internal/adapters/http/middleware"
	"checkin/internal/application/listutil"
	"checkin/internal/domain/apperr"
	domainMember "checkin/internal/domain/member"
)

//go:embed templates/*.html static
var assets embed.FS

const layoutTemplate = "templates/layout.html"

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// pageSet holds one parsed template per page, each combined with the layout.
type pageSet struct {
	pages map[string]*template.Template
}

// requestFuncs are rebound per request in render; these stubs exist so
// the templates parse.
func requestFuncs() template.FuncMap {
	return template.FuncMap{
		"csrfField":     func() template.HTML { return "" },
		"csrfToken":     func() string { return "" },
		"currentMember": func() domainMember.Member { return domainMember.Member{} },
		"isLoggedIn":    func() bool { return false },
		"flash":         func() string { return "" },
	}
}

func staticFuncs() template.FuncMap {
	return template.FuncMap{
		"renderMarkdown": renderMarkdown,
		"add":            func(a, b int) int { return a + b },
		"sub":            func(a, b int) int { return a - b },
		"pageURL": func(f listutil.FilterState, page int) string {
			return listURL(f.WithPage(page))
		},
		"sortURL": func(f listutil.FilterState) string {
			f.SortOrder = f.SortOrder.Toggle()
			return listURL(f.WithPage(1))
		},
	}
}

func parsePages() (*pageSet, error) {
	names, err := fs.Glob(assets, "templates/*.html")
	if err != nil {
		return nil, err
	}
	ps := &pageSet{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if name == layoutTemplate {
			continue
		}
		tpl, err := template.New(path.Base(layoutTemplate)).
			Funcs(requestFuncs()).
			Funcs(staticFuncs()).
			ParseFS(assets, layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		ps.pages[path.Base(name)] = tpl
	}
	return ps, nil
}

// render executes a page into a buffer, then writes it with status.
// The pending flash message is consumed.
func (s *server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	base, ok := s.pages.pages[name]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %q", name))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}

	sess, loggedIn := middleware.GetSessionFromContext(r.Context())
	flash := popFlash(w, r)
	tpl.Funcs(template.FuncMap{
		"csrfField":     func() template.HTML { return csrf.TemplateField(r) },
		"csrfToken":     func() string { return csrf.Token(r) },
		"currentMember": func() domainMember.Member { return sess.Member },
		"isLoggedIn":    func() bool { return loggedIn },
		"flash":         func() string { return flash },
	})

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// listURL links to the attendance list in state f.
func listURL(f listutil.FilterState) string {
	q := f.Query().Encode()
	if q == "" {
		return "/attendances"
	}
	return "/attendances?" + q
}

// errorPage is the data for error.html.
type errorPage struct {
	Status  int
	Message string
	Back    string
}

// errorBody is the JSON error shape, matching the upstream API's.
type errorBody struct {
	Error string `json:"error"`
}

// statusFor maps an error's kind to the HTTP status shown to the browser.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNetwork:
		return http.StatusBadGateway
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// renderError shows err as a page-level message (or JSON) with a link
// back to where the user came from. Unclassified errors are logged and
// shown generically.
func (s *server) renderError(w http.ResponseWriter, r *http.Request, err error, back string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	} else {
		slog.Warn("request_failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err.Error())
	}
	msg := apperr.MessageOf(err)
	if !isHTMLRequest(r) {
		writeJSON(w, status, errorBody{Error: msg})
		return
	}
	s.render(w, r, status, "error.html", errorPage{Status: status, Message: msg, Back: back})
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json_encode_failed", "error", err.Error())
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func isJSONRequest(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// redirect answers a successful POST: 303 for browsers, or v as JSON.
func redirect(w http.ResponseWriter, r *http.Request, to string, status int, v any) {
	if isHTMLRequest(r) || v == nil {
		http.Redirect(w, r, to, http.StatusSeeOther)
		return
	}
	writeJSON(w, status, v)
}

const flashCookieName = "checkin_flash"

// setFlash queues a one-shot message for the next rendered page.
func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash returns the queued message, if any, and clears it.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   middleware.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	msg, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return msg
}

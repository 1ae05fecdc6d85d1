package web

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"checkin/internal/adapters/http/middleware"
	"checkin/internal/adapters/http/perf"
	sessionStore "checkin/internal/adapters/storage/session"
	"checkin/internal/application/orchestrators"
)

// DefaultRateLimitPerSecond is the per-IP request budget when Deps leaves it zero.
const DefaultRateLimitPerSecond = 10

// API is the REST client surface the handlers call.
type API interface {
	orchestrators.AttendanceAPI
	orchestrators.MemberAPI
}

// Deps holds everything NewMux wires together.
type Deps struct {
	API                API
	Sessions           sessionStore.Store
	Collector          *perf.Collector // optional
	CSRFKey            []byte          // 32 bytes; nil generates one per process (development only)
	Production         bool
	TrustedOrigins     []string
	SlowRequest        time.Duration
	RateLimitPerSecond int
	Now                func() time.Time // optional: defaults to time.Now
}

// server carries handler dependencies. Handlers are its methods.
type server struct {
	api       API
	sessions  sessionStore.Store
	collector *perf.Collector
	pages     *pageSet
	now       func() time.Time
}

func newServer(deps Deps) (*server, error) {
	if deps.API == nil || deps.Sessions == nil {
		return nil, errors.New("web: API and Sessions are required")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &server{
		api:       deps.API,
		sessions:  deps.Sessions,
		collector: deps.Collector,
		pages:     pages,
		now:       now,
	}, nil
}

// NewMux wires HTTP handlers for the app. Background work started here
// (rate-limiter pruning) stops when ctx is done.
func NewMux(ctx context.Context, deps Deps) (http.Handler, error) {
	s, err := newServer(deps)
	if err != nil {
		return nil, err
	}
	middleware.SecureCookies = deps.Production

	csrfKey, err := resolveCSRFKey(deps.CSRFKey, deps.Production)
	if err != nil {
		return nil, err
	}
	rate := deps.RateLimitPerSecond
	if rate <= 0 {
		rate = DefaultRateLimitPerSecond
	}
	limiter := middleware.NewRateLimiter(ctx, rate, time.Second)

	// Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Recover -> mux
	return middleware.Chain(s.routes(),
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey, middleware.CSRFOptions{Secure: deps.Production, TrustedOrigins: deps.TrustedOrigins}),
		middleware.Auth(deps.Sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(deps.Collector, deps.SlowRequest),
	), nil
}

// routes registers every page and action. Pages that act as the
// logged-in member require a session.
func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	member := func(h http.HandlerFunc) http.Handler { return middleware.RequireSession(h) }

	static, _ := fs.Sub(assets, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /members", s.handleCreateMember)
	mux.HandleFunc("POST /members/{id}/rename", s.handleRenameMember)
	mux.HandleFunc("POST /members/{id}/delete", s.handleDeleteMember)
	mux.HandleFunc("POST /session", s.handleLogin)
	mux.HandleFunc("POST /session/delete", s.handleLogout)

	mux.Handle("GET /dashboard", member(s.handleDashboard))
	mux.Handle("POST /checkin", member(s.handleCheckIn))

	mux.HandleFunc("GET /attendances", s.handleAttendanceList)
	mux.HandleFunc("GET /attendances/{id}", s.handleAttendanceDetail)
	mux.Handle("POST /attendances/{id}/delete", member(s.handleDeleteAttendance))
	mux.Handle("POST /attendances/{id}/like", member(s.handleToggleLike))
	mux.Handle("POST /attendances/{id}/comments", member(s.handleAddComment))
	mux.Handle("POST /comments/{id}/edit", member(s.handleEditComment))
	mux.Handle("POST /comments/{id}/delete", member(s.handleDeleteComment))

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /admin/perf", s.handlePerf)

	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

// resolveCSRFKey returns key, or a random key outside production.
func resolveCSRFKey(key []byte, production bool) ([]byte, error) {
	if len(key) == 32 {
		return key, nil
	}
	if len(key) != 0 {
		return nil, fmt.Errorf("web: CSRF key must be 32 bytes, got %d", len(key))
	}
	if production {
		return nil, errors.New("web: CSRF key is required in production")
	}
	key = make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate CSRF key: %w", err)
	}
	slog.Warn("using random CSRF key; forms break across restarts. Set CHECKIN_CSRF_KEY for production.")
	return key, nil
}

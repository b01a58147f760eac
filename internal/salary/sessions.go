package salary

import (
	"context"
	"net/http"
	"sync"
	"time"

	"salary-predictor/internal/form"
	"salary-predictor/internal/observability"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const DefaultCookieName = "salary_session"

// activeSessions is exported on /metrics through the default registry.
var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "salary",
	Name:      "active_sessions",
	Help:      "Number of browser sessions holding a form controller.",
})

type session struct {
	ctrl     *form.Controller
	lastSeen time.Time
}

// Sessions maps a browser cookie to its form controller. Controllers idle
// for longer than the TTL are closed and forgotten.
type Sessions struct {
	newController func() *form.Controller
	cookieName    string
	idleTTL       time.Duration
	now           func() time.Time

	mu      sync.Mutex
	entries map[string]*session
}

// NewSessions builds an empty store. newController is called once per new
// session.
func NewSessions(newController func() *form.Controller, cookieName string, idleTTL time.Duration) *Sessions {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Sessions{
		newController: newController,
		cookieName:    cookieName,
		idleTTL:       idleTTL,
		now:           time.Now,
		entries:       make(map[string]*session),
	}
}

// Controller returns the caller's controller, starting a session and setting
// the cookie when the request carries no live one.
func (s *Sessions) Controller(w http.ResponseWriter, r *http.Request) *form.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.sessionID(r); ok {
		if e, ok := s.entries[id]; ok {
			if !e.ctrl.Closed() {
				e.lastSeen = s.now()
				return e.ctrl
			}
			delete(s.entries, id)
		}
	}

	id := uuid.NewString()
	e := &session{ctrl: s.newController(), lastSeen: s.now()}
	s.entries[id] = e
	activeSessions.Set(float64(len(s.entries)))

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	observability.LoggerWithTrace(r.Context()).Debug("session started",
		zap.String("session_id", id),
	)
	return e.ctrl
}

// Discard closes the caller's controller and expires the cookie. It reports
// whether a session existed.
func (s *Sessions) Discard(w http.ResponseWriter, r *http.Request) bool {
	id, ok := s.sessionID(r)
	if !ok {
		return false
	}

	s.mu.Lock()
	e, found := s.entries[id]
	delete(s.entries, id)
	activeSessions.Set(float64(len(s.entries)))
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if !found {
		return false
	}
	e.ctrl.Close()
	return true
}

func (s *Sessions) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cookieName)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return "", false
	}
	return c.Value, true
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep closes every session not seen within the idle TTL and returns how
// many were evicted.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	var expired []*form.Controller
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			expired = append(expired, e.ctrl)
			delete(s.entries, id)
		}
	}
	activeSessions.Set(float64(len(s.entries)))
	s.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Close()
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	interval := s.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				observability.Logger.Info("idle sessions evicted", zap.Int("count", n))
			}
		}
	}
}

// CloseAll closes every controller, cancelling in-flight predictions.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*session)
	activeSessions.Set(0)
	s.mu.Unlock()

	for _, e := range entries {
		e.ctrl.Close()
	}
}

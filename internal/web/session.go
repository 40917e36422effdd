package web

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName    = "weatherview"
	collectDataKey = "collect_data"
)

func init() {
	// Flash values are gob-encoded into the session cookie.
	gob.Register(Flash{})
}

// SessionManager wraps the cookie store carrying the per-session
// data-collection flag and flash messages. The flag defaults to off and
// lives only as long as the session cookie.
type SessionManager struct {
	store *sessions.CookieStore
}

func NewSessionManager(secret []byte) *SessionManager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store}
}

// CollectFlag reads the data-collection flag. An absent or undecodable
// session reads as the default: off.
func (s *SessionManager) CollectFlag(r *http.Request) bool {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return false
	}
	v, ok := session.Values[collectDataKey].(bool)
	return ok && v
}

// ToggleCollectFlag flips the flag and returns the new value.
func (s *SessionManager) ToggleCollectFlag(w http.ResponseWriter, r *http.Request) (bool, error) {
	session, _ := s.store.Get(r, sessionName)
	current, _ := session.Values[collectDataKey].(bool)
	next := !current
	session.Values[collectDataKey] = next
	if err := session.Save(r, w); err != nil {
		return current, err
	}
	return next, nil
}

// AddFlash queues a flash message for the next rendered page.
func (s *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	session, _ := s.store.Get(r, sessionName)
	session.AddFlash(Flash{Category: category, Message: message})
	return session.Save(r, w)
}

// ConsumeFlashes returns queued flash messages and clears them from the
// session.
func (s *SessionManager) ConsumeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	session, err := s.store.Get(r, sessionName)
	if err != nil {
		return nil
	}
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	// Flashes() mutates the session; persist the removal.
	_ = session.Save(r, w)

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

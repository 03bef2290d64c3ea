// Package session holds the per-visitor application state: which view is
// shown, the study preferences, the admin flag and the in-flight operations.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mirrorsensei/sensei/internal/auth"
	"github.com/mirrorsensei/sensei/internal/study"
)

// View is the view a visitor asked for.
type View string

const (
	ViewUser  View = "user"
	ViewLogin View = "login"
	ViewAdmin View = "admin"
)

// ParseView validates a view name.
func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewUser, ViewLogin, ViewAdmin:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// ErrNotOnLogin is returned by Login outside the login view.
var ErrNotOnLogin = errors.New("login is only available from the login view")

// Screen is what actually gets rendered for the current view.
type Screen string

const (
	ScreenUser         Screen = "user"
	ScreenLogin        Screen = "login"
	ScreenAdmin        Screen = "admin"
	ScreenUnauthorized Screen = "unauthorized"
)

// Op names an operation that can be in flight.
type Op string

const (
	OpStudy     Op = "study"
	OpTranslate Op = "translate"
	OpInstantQA Op = "instant-qa"
)

// State is a point-in-time copy of a Session.
type State struct {
	ID            string         `json:"id"`
	View          View           `json:"view"`
	Screen        Screen         `json:"screen"`
	Language      study.Language `json:"language"`
	Category      study.Category `json:"category"`
	Level         study.Level    `json:"level"`
	Authenticated bool           `json:"authenticated"`
	LoginError    string         `json:"loginError,omitempty"`
	Response      string         `json:"response,omitempty"`
	Translation   string         `json:"translation,omitempty"`
	Answer        string         `json:"answer,omitempty"`
	Pending       []Op           `json:"pending,omitempty"`
}

// Session is safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	id   string
	auth auth.Authenticator

	view          View
	language      study.Language
	category      study.Category
	level         study.Level
	authenticated bool
	loginError    string

	response    string
	translation string
	answer      string

	pending map[Op]bool
	touched time.Time
}

// New creates a session in the default state: user view, English, Poem,
// Level 1, not authenticated.
func New(id string, a auth.Authenticator) *Session {
	return &Session{
		id:       id,
		auth:     a,
		view:     ViewUser,
		language: study.English,
		category: study.CategoryPoem,
		level:    study.Level1,
		pending:  make(map[Op]bool),
		touched:  time.Now(),
	}
}

func (s *Session) ID() string { return s.id }

// Screen resolves the current view. An admin view without the
// authenticated flag renders the unauthorized fallback.
func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screenLocked()
}

func (s *Session) screenLocked() Screen {
	switch s.view {
	case ViewLogin:
		return ScreenLogin
	case ViewAdmin:
		if s.authenticated {
			return ScreenAdmin
		}
		return ScreenUnauthorized
	default:
		return ScreenUser
	}
}

// State returns a snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		ID:            s.id,
		View:          s.view,
		Screen:        s.screenLocked(),
		Language:      s.language,
		Category:      s.category,
		Level:         s.level,
		Authenticated: s.authenticated,
		LoginError:    s.loginError,
		Response:      s.response,
		Translation:   s.translation,
		Answer:        s.answer,
	}
	for _, op := range []Op{OpStudy, OpTranslate, OpInstantQA} {
		if s.pending[op] {
			st.Pending = append(st.Pending, op)
		}
	}
	return st
}

// OpenLogin moves to the login view.
func (s *Session) OpenLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.view = ViewLogin
	s.loginError = ""
}

// Login checks creds. It only runs from the login view and returns
// ErrNotOnLogin elsewhere without changing anything. On success the session
// becomes authenticated and moves to the admin view; otherwise it stays on
// the login view with the inline error set and any earlier admin access is
// dropped. An authenticator failure is returned and treated as a rejection.
func (s *Session) Login(ctx context.Context, creds auth.Credentials) (bool, error) {
	s.mu.Lock()
	onLogin := s.view == ViewLogin
	s.mu.Unlock()
	if !onLogin {
		return false, ErrNotOnLogin
	}

	res, err := s.auth.Authenticate(ctx, creds)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if err != nil || res != auth.Authenticated {
		s.view = ViewLogin
		s.authenticated = false
		s.loginError = auth.InvalidCredentialsMessage
		if err != nil {
			return false, fmt.Errorf("authenticate: %w", err)
		}
		return false, nil
	}

	s.authenticated = true
	s.loginError = ""
	s.view = ViewAdmin
	return true, nil
}

// Logout clears the authenticated flag and returns to the user view.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.authenticated = false
	s.view = ViewUser
}

// Back leaves the login view for the user view. It does nothing elsewhere.
func (s *Session) Back() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.view == ViewLogin {
		s.view = ViewUser
		s.loginError = ""
	}
}

// Navigate sets the view directly, the way an external link would.
// Asking for the admin view is allowed; Screen decides what is shown.
func (s *Session) Navigate(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if v == ViewLogin && s.view != ViewLogin {
		s.loginError = ""
	}
	s.view = v
}

// Authenticated reports the admin flag.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Preferences returns the study selection used for generation.
func (s *Session) Preferences() (study.Category, study.Level, study.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.category, s.level, s.language
}

func (s *Session) SetLanguage(l study.Language) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.language = l
}

// ToggleLanguage flips between English and Bengali and returns the new value.
func (s *Session) ToggleLanguage() study.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.language = s.language.Other()
	return s.language
}

func (s *Session) SetCategory(c study.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.category = c
}

func (s *Session) SetLevel(l study.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.level = l
}

// Begin marks op as in flight. It returns false when op is already pending,
// in which case the caller must not start it again.
func (s *Session) Begin(op Op) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.pending[op] {
		return false
	}
	s.pending[op] = true
	return true
}

// End returns op to idle. Always pair it with a successful Begin.
func (s *Session) End(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, op)
}

// Pending reports whether op is in flight.
func (s *Session) Pending(op Op) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[op]
}

// SetResponse records a new main response. Earlier translation and answer
// results belong to the previous response and are cleared.
func (s *Session) SetResponse(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.response = text
	s.translation = ""
	s.answer = ""
}

// Response is the latest main response, which doubles as the Q&A context.
func (s *Session) Response() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.response
}

func (s *Session) SetTranslation(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translation = text
}

func (s *Session) SetAnswer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answer = text
}

// LastActive is when the session was last touched.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

func (s *Session) touch() { s.touched = time.Now() }

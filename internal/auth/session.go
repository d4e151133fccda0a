// Package auth tracks the signed-in user and announces login and logout on
// the event bus so views can react without polling.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/event"
)

// Errors returned by Login.
var (
	ErrMalformedToken = errors.New("auth: malformed token")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrNoSubject      = errors.New("auth: token has no subject")
)

// User is the identity carried by a session token.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// Claims are the token fields the client reads. Signatures are checked by
// the API, not here.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// TokenSink receives the bearer token to attach to API requests.
type TokenSink interface {
	SetToken(token string)
}

// Session holds at most one signed-in user.
type Session struct {
	bus    event.Publisher
	sink   TokenSink
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	user   *User
	expiry *time.Timer
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a signed-out session.
func NewSession(bus event.Publisher, sink TokenSink, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{
		bus:    bus,
		sink:   sink,
		logger: logger.Named("auth"),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ParseToken reads the user from token without verifying its signature.
func ParseToken(token string, now time.Time) (User, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if claims.Subject == "" {
		return User{}, ErrNoSubject
	}
	u := User{ID: claims.Subject, Name: claims.Name, Email: claims.Email}
	if claims.ExpiresAt != nil {
		u.ExpiresAt = claims.ExpiresAt.Time
		if !u.ExpiresAt.After(now) {
			return User{}, ErrTokenExpired
		}
	}
	return u, nil
}

// Login signs in with token, replacing any current user, and publishes
// event.TopicLogin. The session logs out by itself when the token expires.
func (s *Session) Login(ctx context.Context, token string) (User, error) {
	u, err := ParseToken(token, s.now())
	if err != nil {
		return User{}, err
	}

	s.mu.Lock()
	s.stopTimerLocked()
	s.user = &u
	if !u.ExpiresAt.IsZero() {
		s.expiry = time.AfterFunc(u.ExpiresAt.Sub(s.now()), func() {
			if s.logout(context.Background(), func(cur *User) bool { return *cur == u }) {
				s.logger.Info("session expired", zap.String("user", u.ID))
			}
		})
	}
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.SetToken(token)
	}
	s.logger.Info("signed in", zap.String("user", u.ID))
	s.publish(ctx, event.TopicLogin, u)
	return u, nil
}

// Logout signs out and publishes event.TopicLogout. It is a no-op when
// nobody is signed in.
func (s *Session) Logout(ctx context.Context) {
	s.logout(ctx, nil)
}

// logout signs out the current user if match accepts it, reporting
// whether anyone was signed out.
func (s *Session) logout(ctx context.Context, match func(*User) bool) bool {
	s.mu.Lock()
	u := s.user
	if u == nil || (match != nil && !match(u)) {
		s.mu.Unlock()
		return false
	}
	s.user = nil
	s.stopTimerLocked()
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.SetToken("")
	}
	s.logger.Info("signed out", zap.String("user", u.ID))
	s.publish(ctx, event.TopicLogout, *u)
	return true
}

// Current returns the signed-in user.
func (s *Session) Current() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Close stops the expiry timer without publishing anything.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

func (s *Session) stopTimerLocked() {
	if s.expiry != nil {
		s.expiry.Stop()
		s.expiry = nil
	}
}

func (s *Session) publish(ctx context.Context, topic string, u User) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event.Event{Topic: topic, Source: "auth", Payload: u}); err != nil {
		s.logger.Warn("publish auth event", zap.String("topic", topic), zap.Error(err))
	}
}

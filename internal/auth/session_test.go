package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/HerbHall/pricescout/internal/event"
	"github.com/HerbHall/pricescout/internal/testutil"
)

type tokenRecorder struct {
	mu     sync.Mutex
	tokens []string
}

func (r *tokenRecorder) SetToken(tok string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, tok)
}

func (r *tokenRecorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.tokens) == 0 {
		return ""
	}
	return r.tokens[len(r.tokens)-1]
}

func makeToken(t *testing.T, sub string, exp time.Time) string {
	t.Helper()
	claims := Claims{Name: "Test User", Email: "t@example.test"}
	claims.Subject = sub
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return tok
}

func TestParseToken(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	u, err := ParseToken(makeToken(t, "user-1", now.Add(time.Hour)), now)
	require.NoError(t, err)
	require.Equal(t, "user-1", u.ID)
	require.Equal(t, "Test User", u.Name)
	require.Equal(t, now.Add(time.Hour), u.ExpiresAt.UTC())

	_, err = ParseToken(makeToken(t, "user-1", now.Add(-time.Second)), now)
	require.ErrorIs(t, err, ErrTokenExpired)

	_, err = ParseToken(makeToken(t, "", time.Time{}), now)
	require.ErrorIs(t, err, ErrNoSubject)

	_, err = ParseToken("not-a-jwt", now)
	require.ErrorIs(t, err, ErrMalformedToken)
}

func TestSession_LoginLogoutEvents(t *testing.T) {
	bus := testutil.NewMockBus()
	sink := &tokenRecorder{}
	clock := testutil.NewClock()
	s := NewSession(bus, sink, zap.NewNop(), WithClock(clock.Now))
	defer s.Close()

	tok := makeToken(t, "user-1", clock.Now().Add(24*time.Hour))
	u, err := s.Login(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, "user-1", u.ID)
	require.Equal(t, tok, sink.last())

	cur, ok := s.Current()
	require.True(t, ok)
	require.Equal(t, "user-1", cur.ID)

	s.Logout(context.Background())
	s.Logout(context.Background()) // second logout is silent
	_, ok = s.Current()
	require.False(t, ok)
	require.Equal(t, "", sink.last())

	require.Equal(t, []string{event.TopicLogin, event.TopicLogout}, bus.Topics())
	require.Equal(t, "user-1", bus.Events()[0].Payload.(User).ID)
}

func TestSession_LoginRejectsBadToken(t *testing.T) {
	bus := testutil.NewMockBus()
	s := NewSession(bus, nil, zap.NewNop())
	_, err := s.Login(context.Background(), "garbage")
	require.Error(t, err)
	require.Empty(t, bus.Events())
}

func TestSession_ExpiresWithoutPolling(t *testing.T) {
	bus := event.NewBus(zap.NewNop())
	loggedOut := make(chan User, 1)
	bus.Subscribe(event.TopicLogout, func(_ context.Context, e event.Event) {
		loggedOut <- e.Payload.(User)
	})

	s := NewSession(bus, nil, zap.NewNop())
	defer s.Close()

	// JWT expiry has one-second resolution; a token that expires about a
	// second from now is the shortest usable one.
	exp := time.Now().Add(1500 * time.Millisecond).Truncate(time.Second).Add(time.Second)
	_, err := s.Login(context.Background(), makeToken(t, "user-2", exp))
	require.NoError(t, err)

	select {
	case u := <-loggedOut:
		require.Equal(t, "user-2", u.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("session did not expire")
	}
	_, ok := s.Current()
	require.False(t, ok)
}

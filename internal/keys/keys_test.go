package keys

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readToken(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	kind, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, kind)
	return string(msg)
}

func TestHubBroadcastsTokens(t *testing.T) {
	t.Parallel()

	hub, url := startHub(t)
	first := dial(t, url)
	second := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, 2*time.Second, 5*time.Millisecond)

	ctx := context.Background()
	require.NoError(t, hub.Press(ctx, board.Up))
	require.NoError(t, hub.Press(ctx, board.None))
	require.NoError(t, hub.Press(ctx, board.Left))

	for _, conn := range []*websocket.Conn{first, second} {
		assert.Equal(t, "up", readToken(t, conn))
		assert.Equal(t, "left", readToken(t, conn))
	}
}

func TestHubForgetsClosedListeners(t *testing.T) {
	t.Parallel()

	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)

	// Nobody listening is not an error
	assert.NoError(t, hub.Press(context.Background(), board.Down))
}

func TestHubPressAfterStop(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub()
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	for range 32 {
		assert.NoError(t, hub.Press(context.Background(), board.Right))
	}
}

func TestTerminalPostsArrowKeys(t *testing.T) {
	t.Parallel()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)

	term := NewTerminal(screen)
	require.NoError(t, term.Press(context.Background(), board.None))
	require.NoError(t, term.Press(context.Background(), board.Left))

	var got []board.Direction
	for len(got) == 0 {
		if ev, ok := screen.PollEvent().(*tcell.EventKey); ok {
			got = append(got, DirectionForKey(ev))
		}
	}
	assert.Equal(t, []board.Direction{board.Left}, got)
}

func TestDirectionForKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, board.Up, DirectionForKey(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)))
	assert.Equal(t, board.Right, DirectionForKey(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone)))
	assert.Equal(t, board.None, DirectionForKey(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone)))
}

type recorder struct {
	mu     sync.Mutex
	tokens []string
}

func (r *recorder) Press(_ context.Context, dir board.Direction) error {
	token, ok := dir.Token()
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens = append(r.tokens, token)
	return nil
}

func (r *recorder) Tokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens...)
}

type failingBackend struct{}

func (failingBackend) Press(context.Context, board.Direction) error {
	return errors.New("unplugged")
}

func TestMultiPressesEveryBackend(t *testing.T) {
	t.Parallel()

	first, second := &recorder{}, &recorder{}
	m := Multi{first, failingBackend{}, second}

	err := m.Press(context.Background(), board.Down)
	assert.ErrorContains(t, err, "unplugged")
	assert.Equal(t, []string{"down"}, first.Tokens())
	assert.Equal(t, []string{"down"}, second.Tokens())

	require.NoError(t, Multi{first}.Press(context.Background(), board.None))
	assert.Equal(t, []string{"down"}, first.Tokens())
}

func TestListenerReceivesHubPresses(t *testing.T) {
	t.Parallel()

	hub, url := startHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewListener(url)
	require.NoError(t, l.Connect(ctx))
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	got := make(chan board.Direction, 4)
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, func(d board.Direction) { got <- d }) }()

	for _, dir := range []board.Direction{board.Up, board.Right, board.Down} {
		require.NoError(t, hub.Press(ctx, dir))
		select {
		case d := <-got:
			assert.Equal(t, dir, d)
		case <-time.After(2 * time.Second):
			t.Fatalf("listener never received %v", dir)
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestListenerRetriesUntilCancelled(t *testing.T) {
	t.Parallel()

	l := NewListener("ws://127.0.0.1:1/")
	l.RetryDelay = time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := l.Run(ctx, func(board.Direction) { t.Error("nothing should be pressed") })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

package keys

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/leonitousconforti/basilisk/internal/board"
)

// Listener is the receiving end of a Hub. It runs on the machine with the game
// and hands every received direction to a callback that does the real key press.
type Listener struct {
	URL string
	// RetryDelay is how long to wait before reconnecting after the hub goes away
	RetryDelay time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewListener creates a listener for the hub at url
func NewListener(url string) *Listener {
	return &Listener{URL: url, RetryDelay: 5 * time.Second}
}

// Connect dials the hub
func (l *Listener) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", l.URL, err)
	}
	l.setConn(conn)
	if ctx.Err() != nil {
		conn.Close()
		return ctx.Err()
	}
	log.Printf("[Listener] Connected to %s", l.URL)
	return nil
}

func (l *Listener) setConn(conn *websocket.Conn) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conn = conn
}

func (l *Listener) current() *websocket.Conn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

// Run receives tokens until ctx is done, reconnecting whenever the connection
// drops. Tokens that are not directions are logged and skipped.
func (l *Listener) Run(ctx context.Context, press func(board.Direction)) error {
	stop := context.AfterFunc(ctx, func() {
		if conn := l.current(); conn != nil {
			conn.Close()
		}
	})
	defer stop()

	for {
		conn := l.current()
		if conn == nil {
			if err := l.Connect(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Printf("[Listener] %v", err)
				if !l.wait(ctx) {
					return ctx.Err()
				}
			}
			continue
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			l.setConn(nil)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Listener] Read error: %v, reconnecting", err)
			if !l.wait(ctx) {
				return ctx.Err()
			}
			continue
		}

		dir := board.ParseDirection(string(msg))
		if dir == board.None {
			log.Printf("[Listener] Ignoring unknown token %q", msg)
			continue
		}
		press(dir)
	}
}

func (l *Listener) wait(ctx context.Context) bool {
	t := time.NewTimer(l.RetryDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

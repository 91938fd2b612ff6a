package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

const (
	writeDeadline = 10 * time.Second
	pingInterval  = 30 * time.Second
)

// Client is one subscribed real-time connection. The clock only drives the
// ping ticker; socket deadlines always use wall time.
type Client struct {
	conn  *websocket.Conn
	clock clockwork.Clock
	log   *slog.Logger
	box   *mailbox

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func newClient(conn *websocket.Conn, clock clockwork.Clock, log *slog.Logger) *Client {
	c := &Client{
		conn:  conn,
		clock: clock,
		log:   log,
		box:   newMailbox(),
		done:  make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run()
	return c
}

// run is the only goroutine writing data frames to the connection. It exits on
// the first write error; closing the connection then ends the read loop, which
// unsubscribes the client.
func (c *Client) run() {
	defer c.wg.Done()
	defer c.conn.Close()

	ticker := c.clock.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.box.wake:
			f, ok := c.box.take()
			if !ok {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, f.data); err != nil {
				c.log.Debug("state delivery failed",
					slog.String("remote_addr", c.conn.RemoteAddr().String()),
					slog.Uint64("version", f.version),
					slog.String("error", err.Error()))
				return
			}
		case <-ticker.Chan():
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline)); err != nil {
				c.log.Debug("ping failed",
					slog.String("remote_addr", c.conn.RemoteAddr().String()),
					slog.String("error", err.Error()))
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
	c.wg.Wait()
}

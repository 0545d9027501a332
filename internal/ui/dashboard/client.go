package dashboard

import (
	"fmt"

	"github.com/gorilla/websocket"

	"posturetrack/internal/modules/stream/domain"
)

// Client is the observer side of the dashboard socket. It only listens; the
// server ignores anything an observer sends.
type Client struct {
	conn   *websocket.Conn
	events chan domain.StatusEvent
	errs   chan error
}

func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial dashboard socket: %w", err)
	}
	c := &Client{
		conn:   conn,
		events: make(chan domain.StatusEvent, 16),
		errs:   make(chan error, 1),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.events)
	for {
		var event domain.StatusEvent
		if err := c.conn.ReadJSON(&event); err != nil {
			c.errs <- err
			return
		}
		c.events <- event
	}
}

func (c *Client) Events() <-chan domain.StatusEvent {
	return c.events
}

func (c *Client) Errs() <-chan error {
	return c.errs
}

func (c *Client) Close() error {
	return c.conn.Close()
}

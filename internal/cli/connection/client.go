package connection

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/calliope-space/telemhist/internal/server/linkserver"
)

// DefaultTimeout is the default per-operation deadline.
const DefaultTimeout = 10 * time.Second

// Client is a ground link frame client.
type Client struct {
	conn    net.Conn
	timeout time.Duration
}

// Dial connects to the server link address.
func Dial(addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, timeout: timeout}, nil
}

// Send writes one request frame.
func (c *Client) Send(payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return err
	}
	return linkserver.WriteFrame(c.conn, payload)
}

// Receive reads one response frame within the client timeout.
func (c *Client) Receive() ([]byte, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return nil, err
	}
	return linkserver.ReadFrame(c.conn, linkserver.MaxFrameSize)
}

// ReceiveStream reads response frames until maxFrames arrive or the
// stream goes quiet. The link protocol carries no end-of-stream marker
// for history pages shorter than the requested limit, so a read
// timeout after at least one frame is a normal end of stream.
func (c *Client) ReceiveStream(maxFrames int, idle time.Duration) ([][]byte, error) {
	if idle <= 0 {
		idle = 500 * time.Millisecond
	}

	frames := make([][]byte, 0, maxFrames)
	deadline := c.timeout
	for len(frames) < maxFrames {
		if err := c.conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
			return frames, err
		}

		frame, err := linkserver.ReadFrame(c.conn, linkserver.MaxFrameSize)
		if err != nil {
			if len(frames) > 0 && errors.Is(err, os.ErrDeadlineExceeded) {
				return frames, nil
			}
			return frames, err
		}
		frames = append(frames, frame)

		// First frame arrived; subsequent frames of the same page
		// follow immediately or not at all.
		deadline = idle
	}
	return frames, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

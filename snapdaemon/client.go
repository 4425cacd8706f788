package snapdaemon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
)

// Client talks to a running Daemon over its Unix socket.
type Client struct {
	session string
	conn    net.Conn
}

// NewClient constructs a client for session; call Connect before Send.
func NewClient(session string) *Client {
	return &Client{session: session}
}

func (c *Client) Connect() error {
	conn, err := net.Dial("unix", SocketPath(c.session))
	if err != nil {
		return fmt.Errorf("snapdaemon: connect: %w", err)
	}
	c.conn = conn
	return nil
}

// Send serializes cmd, writes it newline-terminated, and waits for the
// matching newline-terminated JSON response.
func (c *Client) Send(cmd Command) (Response, error) {
	data, err := json.Marshal(cmd)
	if err != nil {
		return Response{}, fmt.Errorf("snapdaemon: serialize command: %w", err)
	}
	data = append(data, '\n')

	if _, err := c.conn.Write(data); err != nil {
		return Response{}, fmt.Errorf("snapdaemon: send command: %w", err)
	}

	reader := bufio.NewReader(c.conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("snapdaemon: read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return Response{}, fmt.Errorf("snapdaemon: parse response: %w", err)
	}
	return resp, nil
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

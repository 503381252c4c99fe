package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/webshim/internal/runtimepath"
)

// Client talks to a running embedder over its control socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default socket path.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to webshim: %w (is it running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("webshim error: %s", resp.Error)
	}

	return &resp, nil
}

// GetStatus retrieves the driver status.
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandGetStatus})
	if err != nil {
		return nil, err
	}

	var status StatusData
	if err := json.Unmarshal(resp.Data, &status); err != nil {
		return nil, fmt.Errorf("failed to parse status data: %w", err)
	}
	return &status, nil
}

// ListViews retrieves the live views.
func (c *Client) ListViews() (*ViewsData, error) {
	resp, err := c.sendRequest(&Request{Command: CommandListViews})
	if err != nil {
		return nil, err
	}

	var data ViewsData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		return nil, fmt.Errorf("failed to parse views data: %w", err)
	}
	return &data, nil
}

// Close asks the embedder to shut down.
func (c *Client) Close() error {
	_, err := c.sendRequest(&Request{Command: CommandClose})
	return err
}

// Navigate asks the top view to load url.
func (c *Client) Navigate(url string) error {
	payload, err := json.Marshal(NavigatePayload{URL: url})
	if err != nil {
		return fmt.Errorf("failed to marshal navigate payload: %w", err)
	}

	_, err = c.sendRequest(&Request{
		Command: CommandNavigate,
		Payload: payload,
	})
	return err
}

// Ping checks if the embedder is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

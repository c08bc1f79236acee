// Package client is a Go client for cmd/sgns-server's HTTP and WebSocket
// API: start a batch run, poll its status, and stream the
// population-sample events it produces.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/achemlab/sgnssim/internal/notify"
	"github.com/gorilla/websocket"
)

// Client talks to a single sgns-server instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client against baseURL (e.g. "http://localhost:8090").
func New(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{}}
}

// StartRun asks the server to begin a batch run. Returns an error if a run
// is already in progress (HTTP 409).
func (c *Client) StartRun(ctx context.Context) error {
	u, err := url.JoinPath(c.baseURL, "run")
	if err != nil {
		return fmt.Errorf("client: building URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return fmt.Errorf("client: creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("client: server returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Status is the decoded form of GET /status.
type Status struct {
	Running bool
	Error   string
	Results []StatusResult
}

// StatusResult is one replicate's outcome as reported by the server.
type StatusResult struct {
	ID    string
	Run   int
	Seed  int64
	Steps int64
	Took  string
	Error string
}

type statusWire struct {
	Running bool   `json:"running"`
	Error   string `json:"error,omitempty"`
	Results []struct {
		ID    string `json:"id"`
		Run   int    `json:"run"`
		Seed  int64  `json:"seed"`
		Steps int64  `json:"steps"`
		Took  string `json:"took"`
		Error string `json:"error,omitempty"`
	} `json:"results,omitempty"`
}

// Status polls GET /status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	u, err := url.JoinPath(c.baseURL, "status")
	if err != nil {
		return Status{}, fmt.Errorf("client: building URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Status{}, fmt.Errorf("client: creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Status{}, fmt.Errorf("client: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Status{}, fmt.Errorf("client: server returned status %d: %s", resp.StatusCode, string(body))
	}

	var wire statusWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return Status{}, fmt.Errorf("client: decoding response: %w", err)
	}

	status := Status{Running: wire.Running, Error: wire.Error}
	for _, r := range wire.Results {
		status.Results = append(status.Results, StatusResult{
			ID: r.ID, Run: r.Run, Seed: r.Seed, Steps: r.Steps, Took: r.Took, Error: r.Error,
		})
	}
	return status, nil
}

// Stream connects to GET /ws and delivers every population-sample Event
// the server broadcasts until ctx is cancelled or the connection drops.
// The returned channel is closed when the stream ends; the caller must
// drain it to avoid leaking the reader goroutine.
func (c *Client) Stream(ctx context.Context) (<-chan notify.Event, error) {
	wsURL, err := toWebSocketURL(c.baseURL, "ws")
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("client: dialing %s: %w", wsURL, err)
	}

	events := make(chan notify.Event, 64)
	go func() {
		defer close(events)
		defer conn.Close()

		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var event notify.Event
			if err := json.Unmarshal(data, &event); err != nil {
				continue
			}
			select {
			case events <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func toWebSocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("client: parsing base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = path
	return u.String(), nil
}

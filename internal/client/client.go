// Package client talks to a running chat gateway over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AKH-221/Daly-College-AI-Assistant/internal/api"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/envutil"
	"github.com/AKH-221/Daly-College-AI-Assistant/internal/platform/sse"
)

const DefaultBaseURL = "http://localhost:8080"

type Options struct {
	BaseURL string

	Timeout time.Duration
	// StreamTimeout bounds a whole streamed reply. Zero relies on ctx.
	StreamTimeout time.Duration
	// MaxRetries applies to transport errors and 502/503/504 only.
	MaxRetries int

	HTTPClient *http.Client
}

type Client struct {
	baseURL       string
	timeout       time.Duration
	streamTimeout time.Duration
	maxRetries    int
	httpClient    *http.Client
}

func New(opts Options) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("baseURL required")
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("baseURL must be http(s): %q", baseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:       baseURL,
		timeout:       timeout,
		streamTimeout: max(opts.StreamTimeout, 0),
		maxRetries:    max(opts.MaxRetries, 0),
		httpClient:    hc,
	}, nil
}

// NewFromEnv reads DALY_API_URL, DALY_CLIENT_TIMEOUT and DALY_CLIENT_MAX_RETRIES.
func NewFromEnv() (*Client, error) {
	return New(Options{
		BaseURL:    envutil.String("DALY_API_URL", DefaultBaseURL),
		Timeout:    envutil.Duration("DALY_CLIENT_TIMEOUT", 60*time.Second),
		MaxRetries: envutil.Int("DALY_CLIENT_MAX_RETRIES", 0),
	})
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) Chat(ctx context.Context, message string, history []api.HistoryTurn) (api.ChatReply, error) {
	var out api.ChatReply
	err := c.doJSON(ctx, c.timeout, http.MethodPost, "/api/chat", api.NewChatRequest(message, history), &out)
	return out, err
}

// ChatStream posts to the streaming endpoint and calls onDelta per chunk.
// The returned reply is the server's final done event.
func (c *Client) ChatStream(ctx context.Context, message string, history []api.HistoryTurn, onDelta func(string)) (api.ChatReply, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(api.NewChatRequest(message, history)); err != nil {
		return api.ChatReply{}, err
	}

	ctx2 := ctx
	if c.streamTimeout > 0 {
		var cancel context.CancelFunc
		ctx2, cancel = context.WithTimeout(ctx, c.streamTimeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx2, http.MethodPost, c.baseURL+"/api/chat/stream", &buf)
	if err != nil {
		return api.ChatReply{}, err
	}
	setHeaders(req, "application/json", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.ChatReply{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return api.ChatReply{}, parseHTTPError(resp.StatusCode, raw)
	}

	var (
		full strings.Builder
		done *api.ChatReply
	)
	err = sse.Read(resp.Body, func(event string, data string) error {
		switch event {
		case api.EventDelta:
			var d api.Delta
			if err := json.Unmarshal([]byte(data), &d); err != nil || d.Text == "" {
				return nil
			}
			full.WriteString(d.Text)
			if onDelta != nil {
				onDelta(d.Text)
			}
		case api.EventDone:
			var r api.ChatReply
			if err := json.Unmarshal([]byte(data), &r); err != nil {
				return fmt.Errorf("decode done event: %w", err)
			}
			done = &r
		case api.EventError:
			return parseHTTPError(http.StatusInternalServerError, []byte(data))
		}
		return nil
	})
	if err != nil {
		return api.ChatReply{}, err
	}
	if done == nil {
		return api.ChatReply{}, fmt.Errorf("stream ended without a reply after %d bytes", full.Len())
	}
	return *done, nil
}

// Ready calls /readyz.
func (c *Client) Ready(ctx context.Context) error {
	return c.doJSON(ctx, c.timeout, http.MethodGet, "/readyz", nil, nil)
}

func setHeaders(req *http.Request, contentType string, accept string) {
	if strings.TrimSpace(contentType) != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if strings.TrimSpace(accept) != "" {
		req.Header.Set("Accept", accept)
	}
}

func (c *Client) doJSON(ctx context.Context, timeout time.Duration, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2 := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		ctx2, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var lastErr error
	backoff := 250 * time.Millisecond
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx2.Err() != nil {
			return ctx2.Err()
		}

		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(buf.Bytes())
		}
		req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, rdr)
		if err != nil {
			return err
		}
		contentType := ""
		if body != nil {
			contentType = "application/json"
		}
		setHeaders(req, contentType, "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				return readErr
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				if out == nil {
					return nil
				}
				return json.Unmarshal(raw, out)
			}
			lastErr = parseHTTPError(resp.StatusCode, raw)
			if !retryableStatus(resp.StatusCode) {
				return lastErr
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-ctx2.Done():
				return ctx2.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	if lastErr == nil {
		lastErr = errors.New("request failed")
	}
	return lastErr
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

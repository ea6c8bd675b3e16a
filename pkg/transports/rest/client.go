// Package rest provides the HTTP/JSON transport to the megaverse API.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/megaverse/megaverse/pkg/engine"
)

// Client talks to the megaverse API. Every method issues exactly one request.
type Client struct {
	config Config
	http   *http.Client
}

// goalResponse is the body of GET /map/{candidateId}/goal.
type goalResponse struct {
	Goal engine.GoalGrid `json:"goal"`
}

// NewClient creates a client. A nil httpClient selects one with the
// configured timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{config: cfg, http: httpClient}, nil
}

// FetchGoal retrieves the goal grid for a candidate.
func (c *Client) FetchGoal(ctx context.Context, candidateID string) (engine.GoalGrid, error) {
	endpoint := fmt.Sprintf("%s/map/%s/goal", c.config.BaseURL, url.PathEscape(candidateID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build goal request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, withOperation(err, engine.OperationFetchGoal)
	}

	var resp goalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &engine.EngineError{
			Class:     engine.ErrorClassPermanent,
			Code:      engine.ErrCodeRemoteHTTP,
			Message:   "malformed goal response",
			Operation: engine.OperationFetchGoal,
			Err:       err,
		}
	}
	if resp.Goal == nil {
		return nil, &engine.EngineError{
			Class:     engine.ErrorClassPermanent,
			Code:      engine.ErrCodeRemoteHTTP,
			Message:   "goal response has no goal field",
			Operation: engine.OperationFetchGoal,
		}
	}
	return resp.Goal, nil
}

// Create issues POST {base}/{resource} with a JSON body.
func (c *Client) Create(ctx context.Context, resource string, body any) error {
	return c.send(ctx, http.MethodPost, resource, body)
}

// Delete issues DELETE {base}/{resource} with a JSON body.
func (c *Client) Delete(ctx context.Context, resource string, body any) error {
	return c.send(ctx, http.MethodDelete, resource, body)
}

// GoalSource binds the client to a candidate so it satisfies engine.GoalSource.
func (c *Client) GoalSource(candidateID string) engine.GoalSource {
	return goalSource{client: c, candidateID: candidateID}
}

type goalSource struct {
	client      *Client
	candidateID string
}

func (g goalSource) FetchGoal(ctx context.Context) (engine.GoalGrid, error) {
	return g.client.FetchGoal(ctx, g.candidateID)
}

func (c *Client) send(ctx context.Context, method, resource string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return engine.NewValidationError("failed to encode %s payload: %v", resource, err)
	}

	endpoint := c.config.BaseURL + "/" + strings.TrimLeft(resource, "/")
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.do(req)
	return err
}

// do executes req and classifies the outcome.
func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, engine.NewTransportError(
			fmt.Sprintf("%s %s failed", req.Method, req.URL.Path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxErrorBody))
		var cause error
		if msg := strings.TrimSpace(string(snippet)); msg != "" {
			cause = fmt.Errorf("%s %s: %s", req.Method, req.URL.Path, msg)
		} else {
			cause = fmt.Errorf("%s %s", req.Method, req.URL.Path)
		}
		return nil, engine.NewRemoteHTTPError(resp.StatusCode, cause)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, engine.NewTransportError("failed to read response body", err)
	}
	return body, nil
}

func withOperation(err error, op string) error {
	if e, ok := err.(*engine.EngineError); ok {
		e.Operation = op
	}
	return err
}

// Package calendar talks to the calendar provider over its JSON API.
package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/trainhub/session-booking/internal/provisioning"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type eventRequest struct {
	Start       string   `json:"start"`
	End         string   `json:"end"`
	Attendees   []string `json:"attendees,omitempty"`
	Description string   `json:"description,omitempty"`
}

type eventResponse struct {
	ID string `json:"id"`
}

func (c *Client) CreateEvent(
	ctx context.Context,
	start, end time.Time,
	attendees []string,
	description string,
) (*provisioning.CalendarEvent, error) {

	body := eventRequest{
		Start:       start.UTC().Format(time.RFC3339),
		End:         end.UTC().Format(time.RFC3339),
		Attendees:   attendees,
		Description: description,
	}

	var resp eventResponse
	if err := c.do(ctx, http.MethodPost, "/v1/events", body, &resp); err != nil {
		return nil, err
	}

	return &provisioning.CalendarEvent{ID: resp.ID}, nil
}

func (c *Client) UpdateEvent(
	ctx context.Context,
	id string,
	start, end time.Time,
) error {

	body := eventRequest{
		Start: start.UTC().Format(time.RFC3339),
		End:   end.UTC().Format(time.RFC3339),
	}

	return c.do(ctx, http.MethodPatch, "/v1/events/"+id, body, nil)
}

// DeleteEvent treats a missing event as already deleted.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/v1/events/"+id, nil, nil)
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

// --------------------------------------------------
// HTTP plumbing
// --------------------------------------------------

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("calendar provider returned status %d", e.code)
}

func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Compile-time check
var _ provisioning.Calendar = (*Client)(nil)

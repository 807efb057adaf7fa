// Package meetings talks to the video-meeting provider over its JSON API.
package meetings

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

type createMeetingRequest struct {
	Topic           string `json:"topic"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
}

type meetingResponse struct {
	ID          string `json:"id"`
	JoinURL     string `json:"join_url"`
	Credentials string `json:"credentials"`
}

func (c *Client) Create(
	ctx context.Context,
	topic string,
	scheduledAt time.Time,
	duration time.Duration,
) (*provisioning.Meeting, error) {

	body := createMeetingRequest{
		Topic:           topic,
		ScheduledAt:     scheduledAt.UTC().Format(time.RFC3339),
		DurationMinutes: int(duration.Minutes()),
	}

	var resp meetingResponse
	if err := c.do(ctx, http.MethodPost, "/v1/meetings", body, &resp); err != nil {
		return nil, err
	}

	return &provisioning.Meeting{
		ID:          resp.ID,
		JoinURL:     resp.JoinURL,
		Credentials: resp.Credentials,
	}, nil
}

func (c *Client) Update(
	ctx context.Context,
	id string,
	scheduledAt time.Time,
	duration time.Duration,
) error {

	body := createMeetingRequest{
		ScheduledAt:     scheduledAt.UTC().Format(time.RFC3339),
		DurationMinutes: int(duration.Minutes()),
	}

	return c.do(ctx, http.MethodPatch, "/v1/meetings/"+id, body, nil)
}

// Delete treats a missing meeting as already deleted.
func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.do(ctx, http.MethodDelete, "/v1/meetings/"+id, nil, nil)
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
	return fmt.Sprintf("meeting provider returned status %d", e.code)
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
		return fmt.Errorf("meeting provider request failed: %w", err)
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
var _ provisioning.Meetings = (*Client)(nil)

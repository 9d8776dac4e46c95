package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/harrisonrobin/aide/pkg/auth"
	"google.golang.org/api/calendar/v3"
)

type eventsResponse struct {
	Events  []*calendar.Event `json:"events"`
	AuthURL string            `json:"auth_url"`
}

// Events fetches upcoming calendar events. When the server has no calendar
// authorization it answers with a redirect or an auth_url, reported as
// *auth.RequiredError.
func (c *Client) Events(ctx context.Context) ([]*calendar.Event, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "calendar/events", nil, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if loc := resp.Header.Get("Location"); loc != "" {
			return nil, &auth.RequiredError{URL: loc}
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(req, resp)
	}

	var body eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode calendar events: %w", err)
	}
	if body.AuthURL != "" {
		return nil, &auth.RequiredError{URL: body.AuthURL}
	}
	return body.Events, nil
}

package rest

import (
	"context"
	"net/http"

	"github.com/harrisonrobin/aide/pkg/prompt"
)

var _ prompt.Service = (*Client)(nil)

// DailyPrompts fetches today's reflective prompts.
func (c *Client) DailyPrompts(ctx context.Context) ([]prompt.Prompt, error) {
	var out []prompt.Prompt
	if err := c.do(ctx, http.MethodGet, "prompts/daily", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type promptResponse struct {
	PromptID int    `json:"prompt_id"`
	Response string `json:"response"`
}

// Respond records the user's answer to a prompt.
func (c *Client) Respond(ctx context.Context, promptID int, text string) error {
	return c.do(ctx, http.MethodPost, "prompts/respond", nil, promptResponse{PromptID: promptID, Response: text}, nil)
}

type autonomyRequest struct {
	Autonomous bool `json:"autonomous"`
}

// SetAutonomy stores whether the assistant may act without confirmation.
func (c *Client) SetAutonomy(ctx context.Context, autonomous bool) error {
	return c.do(ctx, http.MethodPost, "ai-autonomy", nil, autonomyRequest{Autonomous: autonomous}, nil)
}

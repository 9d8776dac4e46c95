package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/aide/pkg/auth"
	"google.golang.org/api/option"
)

// AuthorizedOption returns a client option carrying the cached OAuth token,
// or an *auth.RequiredError when the user has not authorized yet.
func AuthorizedOption(ctx context.Context) (option.ClientOption, error) {
	client, err := auth.Client(ctx, auth.Scopes)
	if err != nil {
		return nil, fmt.Errorf("google client: %w", err)
	}
	return option.WithHTTPClient(client), nil
}

package debbugs

import (
	"context"
	"fmt"

	"github.com/Tomas-vilte/dbts/internal/dot"
)

// FetchVersionGraph downloads the DOT source of the version graph linked
// from a report page.
func (c *Client) FetchVersionGraph(ctx context.Context, graphURL string) (*dot.Graph, error) {
	body, err := c.http.Get(ctx, graphURL+";dot=1")
	if err != nil {
		return nil, fmt.Errorf("version graph: %w", err)
	}
	return dot.Parse(string(body))
}

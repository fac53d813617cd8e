package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type conversationsPage struct {
	Data *[]Conversation `json:"data"`
	Meta *struct {
		CurrentPage int `json:"currentPage"`
		TotalPages  int `json:"totalPages"`
	} `json:"meta"`
}

// FetchConversations retrieves the complete conversation collection across
// all pages. The loop trusts its own counter rather than the server's
// currentPage echo, so a stale echo cannot loop indefinitely.
func (c *Client) FetchConversations(ctx context.Context) ([]Conversation, error) {
	var all []Conversation

	for page := 1; ; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("conversations: exceeded %d pages without exhausting the collection", maxPages)
		}

		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(c.limit))
		u := c.endpoint("/v1/me/conversations", q)

		var pr conversationsPage
		if err := c.getJSON(ctx, u, &pr); err != nil {
			return nil, err
		}
		if pr.Data == nil {
			return nil, c.shapeError(u, "response missing data field")
		}
		if pr.Meta == nil || pr.Meta.TotalPages < 1 {
			return nil, c.shapeError(u, "response missing pagination metadata")
		}

		all = append(all, *pr.Data...)

		if page >= pr.Meta.TotalPages {
			break
		}
	}

	return all, nil
}

// Ping issues a single limit-1 conversations request to verify that the API
// is reachable and the key is accepted.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("page", "1")
	q.Set("limit", "1")
	u := c.endpoint("/v1/me/conversations", q)

	var pr conversationsPage
	if err := c.getJSON(ctx, u, &pr); err != nil {
		return err
	}
	if pr.Data == nil {
		return c.shapeError(u, "response missing data field")
	}
	return nil
}

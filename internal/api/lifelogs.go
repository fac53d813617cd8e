package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

type lifelogsPage struct {
	Data *struct {
		Lifelogs *[]Lifelog `json:"lifelogs"`
	} `json:"data"`
	Meta *struct {
		Lifelogs struct {
			NextCursor string `json:"nextCursor"`
		} `json:"lifelogs"`
	} `json:"meta"`
}

// FetchLifelogs retrieves the complete lifelog collection by following the
// server's opaque cursor until it is exhausted. start, when non-empty, is an
// ISO date passed through as the collection's lower bound.
func (c *Client) FetchLifelogs(ctx context.Context, start string) ([]Lifelog, error) {
	var all []Lifelog

	cursor := ""
	seen := make(map[string]bool)

	for i := 0; ; i++ {
		if i >= maxPages {
			return nil, fmt.Errorf("lifelogs: exceeded %d pages without exhausting the collection", maxPages)
		}

		q := url.Values{}
		q.Set("limit", strconv.Itoa(c.limit))
		if start != "" {
			q.Set("start", start)
		}
		if cursor != "" {
			q.Set("cursor", cursor)
		}
		u := c.endpoint("/v1/lifelogs", q)

		var pr lifelogsPage
		if err := c.getJSON(ctx, u, &pr); err != nil {
			return nil, err
		}
		if pr.Data == nil || pr.Data.Lifelogs == nil {
			return nil, c.shapeError(u, "response missing data.lifelogs field")
		}

		all = append(all, *pr.Data.Lifelogs...)

		next := ""
		if pr.Meta != nil {
			next = pr.Meta.Lifelogs.NextCursor
		}
		if next == "" {
			break
		}
		if seen[next] {
			return nil, c.shapeError(u, "server repeated cursor "+strconv.Quote(next))
		}
		seen[next] = true
		cursor = next
	}

	return all, nil
}

package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/smb564/21-points/internal/model"
)

// SearchCriteria is passed through to the search backend untouched. The
// query parameter is always sent, even when empty.
type SearchCriteria struct {
	ID    int64
	Query string
	Page  *PageRequest
}

func (c SearchCriteria) values() url.Values {
	v := c.Page.values()
	v.Set("query", c.Query)
	return v
}

// UserSettingsSearchClient queries api/_search/user-settings/:id.
type UserSettingsSearchClient struct {
	c *Client
}

// Query returns the matching records. Zero matches is an empty slice.
func (s *UserSettingsSearchClient) Query(ctx context.Context, criteria SearchCriteria) ([]model.UserSettings, error) {
	resp, err := s.c.do(ctx, http.MethodGet, expandPath(userSettingsSearchPath, criteria.ID), criteria.values(), nil)
	if err != nil {
		return nil, err
	}
	return decodeList(resp.body)
}

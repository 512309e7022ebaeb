package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smb564/21-points/internal/model"
)

// UserSettingsClient maps the user settings CRUD operations onto
// api/user-settings/:id. It keeps no state between calls.
type UserSettingsClient struct {
	c *Client
}

// Query lists user settings.
func (u *UserSettingsClient) Query(ctx context.Context, p *PageRequest) ([]model.UserSettings, error) {
	page, err := u.QueryPage(ctx, p)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// QueryPage lists user settings along with the pagination headers.
func (u *UserSettingsClient) QueryPage(ctx context.Context, p *PageRequest) (*Page, error) {
	resp, err := u.c.do(ctx, http.MethodGet, expandPath(userSettingsPath, 0), p.values(), nil)
	if err != nil {
		return nil, err
	}
	return newPage(resp)
}

// Get fetches one record. An empty or null body is passed through as a nil
// entity with no error.
func (u *UserSettingsClient) Get(ctx context.Context, id int64) (*model.UserSettings, error) {
	resp, err := u.c.do(ctx, http.MethodGet, expandPath(userSettingsPath, id), nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOptional(resp.body)
}

// Create persists a new record. The entity must not carry an id.
func (u *UserSettingsClient) Create(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	if !s.IsNew() {
		return nil, errors.New("create: entity already has an id")
	}
	resp, err := u.c.do(ctx, http.MethodPost, expandPath(userSettingsPath, 0), nil, s)
	if err != nil {
		return nil, err
	}
	return decodeRequired(resp.body)
}

// Update replaces a record and returns the server's copy. An entity without
// an id is sent to the collection path, where the server creates it.
func (u *UserSettingsClient) Update(ctx context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	resp, err := u.c.do(ctx, http.MethodPut, expandPath(userSettingsPath, s.ID), nil, s)
	if err != nil {
		return nil, err
	}
	return decodeRequired(resp.body)
}

// Delete removes a record.
func (u *UserSettingsClient) Delete(ctx context.Context, id int64) error {
	_, err := u.c.do(ctx, http.MethodDelete, expandPath(userSettingsPath, id), nil, nil)
	return err
}

func isAbsent(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeOptional(body []byte) (*model.UserSettings, error) {
	if isAbsent(body) {
		return nil, nil
	}
	var s model.UserSettings
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, &DecodeError{Body: string(body), Err: err}
	}
	return &s, nil
}

func decodeRequired(body []byte) (*model.UserSettings, error) {
	if isAbsent(body) {
		return nil, &DecodeError{Body: string(body), Err: errors.New("empty body")}
	}
	return decodeOptional(body)
}

func decodeList(body []byte) ([]model.UserSettings, error) {
	items := []model.UserSettings{}
	if isAbsent(body) {
		return items, nil
	}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &DecodeError{Body: string(body), Err: err}
	}
	if items == nil {
		items = []model.UserSettings{}
	}
	return items, nil
}

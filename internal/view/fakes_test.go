package view

import (
	"context"
	"sync"

	"github.com/smb564/21-points/internal/client"
	"github.com/smb564/21-points/internal/model"
)

type fakeDialog struct {
	mu        sync.Mutex
	closed    []any
	dismissed []string
}

func (d *fakeDialog) Close(result any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = append(d.closed, result)
}

func (d *fakeDialog) Dismiss(reason string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dismissed = append(d.dismissed, reason)
}

type call struct {
	method string
	id     int64
}

type fakeResource struct {
	mu    sync.Mutex
	calls []call
	err   error
	page  *client.Page
	saved *model.UserSettings
}

func (r *fakeResource) record(method string, id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{method, id})
}

func (r *fakeResource) Delete(_ context.Context, id int64) error {
	r.record("DELETE", id)
	return r.err
}

func (r *fakeResource) Create(_ context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	r.record("POST", s.ID)
	if r.err != nil {
		return nil, r.err
	}
	return r.saved, nil
}

func (r *fakeResource) Update(_ context.Context, s *model.UserSettings) (*model.UserSettings, error) {
	r.record("PUT", s.ID)
	if r.err != nil {
		return nil, r.err
	}
	return r.saved, nil
}

func (r *fakeResource) QueryPage(_ context.Context, p *client.PageRequest) (*client.Page, error) {
	r.record("GET", int64(p.Page))
	if r.err != nil {
		return nil, r.err
	}
	return r.page, nil
}

type fakeSearcher struct {
	criteria []client.SearchCriteria
	results  []model.UserSettings
	err      error
}

func (s *fakeSearcher) Query(_ context.Context, c client.SearchCriteria) ([]model.UserSettings, error) {
	s.criteria = append(s.criteria, c)
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

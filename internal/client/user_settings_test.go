package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smb564/21-points/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return New(Config{BaseURL: server.URL + "/"})
}

func TestExpandPath(t *testing.T) {
	assert.Equal(t, "api/user-settings", expandPath(userSettingsPath, 0))
	assert.Equal(t, "api/user-settings/42", expandPath(userSettingsPath, 42))
	assert.Equal(t, "api/_search/user-settings", expandPath(userSettingsSearchPath, 0))
}

func TestGetParsesBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/user-settings/5", r.URL.Path)
		io.WriteString(w, `{"id":5,"reminderTime":"08:00"}`)
	})

	got, err := c.UserSettings().Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, &model.UserSettings{ID: 5, ReminderTime: "08:00"}, got)
}

func TestGetPassesAbsentBodyThrough(t *testing.T) {
	for name, body := range map[string]string{"empty": "", "null": "null", "null with newline": "null\n"} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			})

			got, err := c.UserSettings().Get(context.Background(), 1)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestGetMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":`)
	})

	_, err := c.UserSettings().Get(context.Background(), 1)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, `{"id":`, decodeErr.Body)
}

func TestGetNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"data":null,"error":{"code":"NOT_FOUND","message":"User settings not found."}}`)
	})

	_, err := c.UserSettings().Get(context.Background(), 99)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "NOT_FOUND", httpErr.Code)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestServerErrorWithoutEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	err := c.UserSettings().Delete(context.Background(), 1)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Empty(t, httpErr.Code)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "502")
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	c := New(Config{BaseURL: server.URL})

	_, err := c.UserSettings().Query(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "send request")
}

func TestQueryPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user-settings", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "2", r.URL.Query().Get("size"))
		assert.Equal(t, []string{"id,desc"}, r.URL.Query()["sort"])
		w.Header().Set("X-Total-Count", "5")
		w.Header().Set("Link", `</api/user-settings?page=2&size=2>; rel="next",</api/user-settings?page=0&size=2>; rel="prev",</api/user-settings?page=2&size=2>; rel="last",</api/user-settings?page=0&size=2>; rel="first"`)
		io.WriteString(w, `[{"id":3},{"id":4}]`)
	})

	page, err := c.UserSettings().QueryPage(context.Background(), &PageRequest{Page: 1, Size: 2, Sort: []string{"id,desc"}})
	require.NoError(t, err)

	assert.Len(t, page.Items, 2)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, map[string]int{"next": 2, "prev": 0, "last": 2, "first": 0}, page.Links)
}

func TestQueryWithoutPagination(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		io.WriteString(w, `null`)
	})

	page, err := c.UserSettings().QueryPage(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, -1, page.TotalCount)
}

func TestUpdateUsesPut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/user-settings/5", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in model.UserSettings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in.ReminderTime = "09:00"
		json.NewEncoder(w).Encode(in)
	})

	got, err := c.UserSettings().Update(context.Background(), &model.UserSettings{ID: 5, ReminderTime: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, &model.UserSettings{ID: 5, ReminderTime: "09:00"}, got)
}

func TestUpdateWithoutIDTargetsCollection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user-settings", r.URL.Path)
		io.WriteString(w, `{"id":7}`)
	})

	got, err := c.UserSettings().Update(context.Background(), &model.UserSettings{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.ID)
}

func TestUpdateEmptyEcho(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := c.UserSettings().Update(context.Background(), &model.UserSettings{ID: 1})

	var decodeErr *DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestCreate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/user-settings", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":11,"weeklyGoal":10}`)
	})

	got, err := c.UserSettings().Create(context.Background(), &model.UserSettings{})
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)

	_, err = c.UserSettings().Create(context.Background(), &model.UserSettings{ID: 3})
	assert.Error(t, err, "client never sends an id on create")
}

func TestDeleteIssuesOneCall(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/user-settings/8", r.URL.Path)
	})

	require.NoError(t, c.UserSettings().Delete(context.Background(), 8))
	assert.Equal(t, int32(1), calls.Load())
}

func TestParseLinkHeaderSkipsGarbage(t *testing.T) {
	links := parseLinkHeader(`garbage, <no-page>; rel="next", </x?page=3>; rel="last"`)
	assert.Equal(t, map[string]int{"last": 3}, links)
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smb564/21-points/internal/client"
	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
	"github.com/smb564/21-points/internal/view"
)

func newTestApp(t *testing.T, h http.HandlerFunc, stdin string, interactive bool) (*app, *bytes.Buffer) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	out := &bytes.Buffer{}
	return &app{
		client:      client.New(client.Config{BaseURL: server.URL}),
		bus:         eventbus.New(zerolog.Nop()),
		topic:       "21PointsApp:userSettingsUpdate",
		log:         zerolog.Nop(),
		in:          strings.NewReader(stdin),
		out:         out,
		interactive: interactive,
	}, out
}

func TestListPrintsTable(t *testing.T) {
	a, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user-settings", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		w.Header().Set("X-Total-Count", "21")
		io.WriteString(w, `[{"id":21,"weeklyGoal":10,"weightUnit":"KG","reminderTime":"08:00","user":{"id":1,"login":"admin"}}]`)
	}, "", false)

	require.NoError(t, a.run(context.Background(), []string{"list", "-page", "1"}))

	assert.Contains(t, out.String(), "admin")
	assert.Contains(t, out.String(), "08:00")
	assert.Contains(t, out.String(), "page 1, 21 total")
}

func TestSearchSendsQuery(t *testing.T) {
	a, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/_search/user-settings", r.URL.Path)
		assert.Equal(t, "weightUnit:LB reminderTime:07*", r.URL.Query().Get("query"))
		io.WriteString(w, `[{"id":3,"weightUnit":"LB"}]`)
	}, "", false)

	require.NoError(t, a.run(context.Background(), []string{"search", "weightUnit:LB", "reminderTime:07*"}))
	assert.Contains(t, out.String(), "LB")
}

func TestSetCreatesRecord(t *testing.T) {
	a, out := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var got model.UserSettings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, 12, *got.WeeklyGoal)
		assert.Equal(t, model.WeightUnitLB, *got.WeightUnit)
		got.ID = 8
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(got)
	}, "", false)

	var broadcast *model.UserSettings
	eventbus.Subscribe(a.bus, a.topic, func(s *model.UserSettings) { broadcast = s })

	require.NoError(t, a.run(context.Background(), []string{"set", "-goal", "12", "-unit", "lb"}))

	require.NotNil(t, broadcast)
	assert.Equal(t, int64(8), broadcast.ID)
	assert.Contains(t, out.String(), "12")
}

func TestSetRejectsUnknownUnit(t *testing.T) {
	a, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	}, "", false)

	err := a.run(context.Background(), []string{"set", "-unit", "stone"})
	assert.ErrorContains(t, err, "unknown weight unit")
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	deleted := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `{"id":5}`)
		case http.MethodDelete:
			deleted = true
		}
	}

	a, out := newTestApp(t, handler, "n\n", true)
	require.NoError(t, a.run(context.Background(), []string{"delete", "5"}))
	assert.False(t, deleted)
	assert.Contains(t, out.String(), "Cancelled.")

	a, _ = newTestApp(t, handler, "yes\n", true)
	require.NoError(t, a.run(context.Background(), []string{"delete", "5"}))
	assert.True(t, deleted)
}

func TestDeleteNonInteractiveNeedsFlag(t *testing.T) {
	deleted := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = true
			return
		}
		io.WriteString(w, `{"id":5}`)
	}

	a, _ := newTestApp(t, handler, "", false)
	assert.Error(t, a.run(context.Background(), []string{"delete", "5"}))
	assert.False(t, deleted)

	require.NoError(t, a.run(context.Background(), []string{"delete", "-y", "5"}))
	assert.True(t, deleted)
}

func TestGetMissingRecord(t *testing.T) {
	a, _ := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, "", false)

	err := a.run(context.Background(), []string{"get", "9"})
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestUsageErrors(t *testing.T) {
	a, _ := newTestApp(t, func(http.ResponseWriter, *http.Request) {}, "", false)

	assert.ErrorIs(t, a.run(context.Background(), nil), errUsage)
	assert.ErrorIs(t, a.run(context.Background(), []string{"frobnicate"}), errUsage)
	assert.ErrorIs(t, a.run(context.Background(), []string{"get"}), errUsage)
}

func TestFollowRecordOnlyForwardsWatchedID(t *testing.T) {
	src := eventbus.New(zerolog.Nop())
	dst := eventbus.New(zerolog.Nop())
	const topic = "21PointsApp:userSettingsUpdate"

	scope := view.NewScope()
	scope.OnDestroy(followRecord(src, dst, topic, 5).Unsubscribe)
	dc := view.NewDetailController(scope, dst, topic, &model.UserSettings{ID: 5, ReminderTime: "08:00"}, "list", zerolog.Nop())

	src.Publish(topic, &model.UserSettings{ID: 6, ReminderTime: "06:00"})
	assert.Equal(t, int64(5), dc.UserSettings().ID)
	assert.Equal(t, "08:00", dc.UserSettings().ReminderTime)

	src.Publish(topic, &model.UserSettings{ID: 5, ReminderTime: "09:00"})
	assert.Equal(t, "09:00", dc.UserSettings().ReminderTime)

	scope.Destroy()
	assert.Equal(t, 0, src.SubscriberCount(topic))
	assert.Equal(t, 0, dst.SubscriberCount(topic))
}

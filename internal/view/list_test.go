package view

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smb564/21-points/internal/client"
	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
)

func newList(res *fakeResource, search *fakeSearcher) (*ListController, *eventbus.Bus, *Scope) {
	bus := eventbus.New(zerolog.Nop())
	scope := NewScope()
	return NewListController(scope, bus, topic, res, search, 2, zerolog.Nop()), bus, scope
}

func TestListLoadAll(t *testing.T) {
	res := &fakeResource{page: &client.Page{
		Items:      []model.UserSettings{{ID: 1}, {ID: 2}},
		TotalCount: 3,
		Links:      map[string]int{"next": 1, "last": 1},
	}}
	list, _, _ := newList(res, &fakeSearcher{})

	require.NoError(t, list.LoadAll(context.Background()))

	assert.Len(t, list.UserSettings(), 2)
	assert.Equal(t, 3, list.TotalItems())
	assert.Equal(t, 1, list.Links()["next"])

	require.NoError(t, list.Transition(context.Background(), 1))
	assert.Equal(t, 1, list.Page())
	assert.Equal(t, call{"GET", 1}, res.calls[len(res.calls)-1])
}

func TestListSearchAndClear(t *testing.T) {
	res := &fakeResource{page: &client.Page{Items: []model.UserSettings{}, TotalCount: -1}}
	search := &fakeSearcher{results: []model.UserSettings{{ID: 4}}}
	list, _, _ := newList(res, search)

	require.NoError(t, list.Transition(context.Background(), 3))
	require.NoError(t, list.Search(context.Background(), "weightUnit:KG"))

	assert.Equal(t, "weightUnit:KG", list.CurrentSearch())
	assert.Equal(t, 0, list.Page())
	require.Len(t, search.criteria, 1)
	assert.Equal(t, "weightUnit:KG", search.criteria[0].Query)
	assert.Equal(t, 1, list.TotalItems())

	require.NoError(t, list.Search(context.Background(), ""))
	assert.Empty(t, list.CurrentSearch())
	assert.Equal(t, 0, list.TotalItems(), "missing total falls back to row count")
}

func TestListLoadFailure(t *testing.T) {
	res := &fakeResource{err: errors.New("down")}
	list, _, _ := newList(res, &fakeSearcher{})

	assert.Error(t, list.LoadAll(context.Background()))
	assert.NotNil(t, list.UserSettings())
}

func TestListAppliesUpdates(t *testing.T) {
	res := &fakeResource{page: &client.Page{Items: []model.UserSettings{{ID: 1}, {ID: 2}}, TotalCount: 2}}
	list, bus, scope := newList(res, &fakeSearcher{})
	require.NoError(t, list.LoadAll(context.Background()))
	before := list.UserSettings()

	bus.Publish(topic, &model.UserSettings{ID: 2, ReminderTime: "07:00"})
	assert.Equal(t, "07:00", list.UserSettings()[1].ReminderTime)
	assert.Empty(t, before[1].ReminderTime, "previous snapshot untouched")
	assert.False(t, list.Stale())

	bus.Publish(topic, model.UserSettings{ID: 1, ReminderTime: "06:30"})
	assert.Equal(t, "06:30", list.UserSettings()[0].ReminderTime, "value payloads apply too")

	bus.Publish(topic, &model.UserSettings{ID: 9})
	assert.True(t, list.Stale())

	scope.Destroy()
	assert.Equal(t, 0, bus.SubscriberCount(topic))
}

package view

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
)

func TestEditControllerUpdatesAndBroadcasts(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	saved := &model.UserSettings{ID: 5, ReminderTime: "09:00"}
	res := &fakeResource{saved: saved}
	dialog := &fakeDialog{}

	detail := NewDetailController(NewScope(), bus, topic, &model.UserSettings{ID: 5, ReminderTime: "08:00"}, "", zerolog.Nop())
	original := &model.UserSettings{ID: 5, ReminderTime: "08:00"}
	edit := NewEditController(original, res, bus, topic, dialog, zerolog.Nop())

	edit.UserSettings().ReminderTime = "09:00"
	assert.Equal(t, "08:00", original.ReminderTime, "form edits a copy")

	require.NoError(t, edit.Save(context.Background()))

	assert.Equal(t, []call{{"PUT", 5}}, res.calls)
	assert.Equal(t, []any{saved}, dialog.closed)
	assert.Same(t, saved, detail.UserSettings())
	assert.Equal(t, DialogConfirmed, edit.State())
	assert.False(t, edit.IsSaving())
}

func TestEditControllerCreatesNewRecord(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	res := &fakeResource{saved: &model.UserSettings{ID: 12}}
	dialog := &fakeDialog{}
	edit := NewEditController(nil, res, bus, topic, dialog, zerolog.Nop())

	require.NoError(t, edit.Save(context.Background()))

	assert.Equal(t, []call{{"POST", 0}}, res.calls)
	assert.Equal(t, int64(12), edit.UserSettings().ID)
}

func TestEditControllerFailureKeepsDialogOpen(t *testing.T) {
	bus := eventbus.New(zerolog.Nop())
	published := 0
	bus.Subscribe(topic, func(any) { published++ })
	res := &fakeResource{err: errors.New("invalid")}
	dialog := &fakeDialog{}
	edit := NewEditController(&model.UserSettings{ID: 1}, res, bus, topic, dialog, zerolog.Nop())

	assert.Error(t, edit.Save(context.Background()))

	assert.Equal(t, DialogOpen, edit.State())
	assert.False(t, edit.IsSaving())
	assert.Empty(t, dialog.closed)
	assert.Equal(t, 0, published)

	edit.Clear()
	assert.Equal(t, []string{"cancel"}, dialog.dismissed)
}

package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/model"
)

// EditController backs the create/edit dialog. It works on a copy of the
// entity so cancelling leaves the caller's value untouched.
type EditController struct {
	saver  Saver
	bus    *eventbus.Bus
	topic  string
	dialog Dialog
	log    zerolog.Logger

	mu       sync.Mutex
	entity   *model.UserSettings
	isSaving bool
	state    DialogState
}

// NewEditController opens the dialog on a copy of entity; a nil entity starts
// a new record.
func NewEditController(
	entity *model.UserSettings,
	saver Saver,
	bus *eventbus.Bus,
	topic string,
	dialog Dialog,
	log zerolog.Logger,
) *EditController {
	working := entity.Clone()
	if working == nil {
		working = &model.UserSettings{}
	}
	return &EditController{
		saver:  saver,
		bus:    bus,
		topic:  topic,
		dialog: dialog,
		entity: working,
		log:    log.With().Str("component", "user_settings_edit").Logger(),
	}
}

// UserSettings returns the working copy the form edits.
func (c *EditController) UserSettings() *model.UserSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entity
}

// IsSaving reports whether a save is in flight.
func (c *EditController) IsSaving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isSaving
}

// State reports whether the dialog is still open.
func (c *EditController) State() DialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Clear dismisses the dialog with DismissCancel.
func (c *EditController) Clear() {
	c.mu.Lock()
	if c.state != DialogOpen {
		c.mu.Unlock()
		return
	}
	c.state = DialogCancelled
	c.mu.Unlock()

	c.dialog.Dismiss(DismissCancel)
}

// Save creates or updates the working copy. On success the saved entity is
// broadcast on the update topic and the dialog closes with it.
func (c *EditController) Save(ctx context.Context) error {
	c.mu.Lock()
	if c.state != DialogOpen || c.isSaving {
		c.mu.Unlock()
		return nil
	}
	c.isSaving = true
	entity := c.entity
	c.mu.Unlock()

	var (
		saved *model.UserSettings
		err   error
	)
	if entity.IsNew() {
		saved, err = c.saver.Create(ctx, entity)
	} else {
		saved, err = c.saver.Update(ctx, entity)
	}

	c.mu.Lock()
	c.isSaving = false
	if err != nil {
		c.mu.Unlock()
		c.log.Warn().Err(err).Int64("id", entity.ID).Msg("save failed")
		return err
	}
	c.entity = saved
	c.state = DialogConfirmed
	c.mu.Unlock()

	c.bus.Publish(c.topic, saved)
	c.dialog.Close(saved)
	return nil
}

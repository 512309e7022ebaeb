package view

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/model"
)

// DeleteController backs the delete confirmation dialog.
type DeleteController struct {
	entity   *model.UserSettings
	resource Deleter
	dialog   Dialog
	log      zerolog.Logger

	mu    sync.Mutex
	state DialogState
}

// NewDeleteController binds the candidate entity to the dialog.
func NewDeleteController(entity *model.UserSettings, resource Deleter, dialog Dialog, log zerolog.Logger) *DeleteController {
	return &DeleteController{
		entity:   entity,
		resource: resource,
		dialog:   dialog,
		log:      log.With().Str("component", "user_settings_delete").Logger(),
	}
}

// UserSettings returns the entity offered for deletion.
func (c *DeleteController) UserSettings() *model.UserSettings {
	return c.entity
}

// State reports whether the dialog is still open.
func (c *DeleteController) State() DialogState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Clear dismisses the dialog with DismissCancel. No network call.
func (c *DeleteController) Clear() {
	c.mu.Lock()
	if c.state != DialogOpen {
		c.mu.Unlock()
		return
	}
	c.state = DialogCancelled
	c.mu.Unlock()

	c.dialog.Dismiss(DismissCancel)
}

// ConfirmDelete deletes id and closes the dialog with true. On failure the
// dialog stays open and the error is returned.
func (c *DeleteController) ConfirmDelete(ctx context.Context, id int64) error {
	if c.State() != DialogOpen {
		return nil
	}

	if err := c.resource.Delete(ctx, id); err != nil {
		c.log.Warn().Err(err).Int64("id", id).Msg("delete failed")
		return err
	}

	c.mu.Lock()
	if c.state != DialogOpen {
		c.mu.Unlock()
		return nil
	}
	c.state = DialogConfirmed
	c.mu.Unlock()

	c.log.Debug().Int64("id", id).Msg("deleted")
	c.dialog.Close(true)
	return nil
}
